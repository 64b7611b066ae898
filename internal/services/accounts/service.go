// Package accounts exposes read-side account operations.
package accounts

import (
	"context"
	"sort"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

// Service implements the AccountService interface.
type Service struct {
	registry interfaces.AccountRegistry
	logger   *common.Logger
}

// NewService creates a new account service.
func NewService(registry interfaces.AccountRegistry, logger *common.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// GetAccount returns a snapshot of the named account.
func (s *Service) GetAccount(ctx context.Context, username string) (*models.Account, error) {
	return s.registry.Get(username)
}

// GetTrades returns the account's settled trade log.
func (s *Service) GetTrades(ctx context.Context, username string) ([]models.Trade, error) {
	acct, err := s.registry.Get(username)
	if err != nil {
		return nil, err
	}
	return acct.Trades, nil
}

// GetHistory returns the account's balance snapshots in order.
func (s *Service) GetHistory(ctx context.Context, username string) ([]models.BalancePoint, error) {
	acct, err := s.registry.Get(username)
	if err != nil {
		return nil, err
	}
	return acct.History, nil
}

// RenderBalanceChart renders the balance history as a PNG line chart.
func (s *Service) RenderBalanceChart(ctx context.Context, username string) ([]byte, error) {
	acct, err := s.registry.Get(username)
	if err != nil {
		return nil, err
	}
	return RenderBalanceChart(acct.Username, acct.History)
}

// DefaultLeaderboardSize is how many rows Leaderboard returns when the
// caller does not ask for a specific count.
const DefaultLeaderboardSize = 5

// Leaderboard returns the top accounts ranked by balance, richest first.
// Ties break alphabetically so the ranking is stable across calls.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	accounts := s.registry.List()
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].Balance != accounts[j].Balance {
			return accounts[i].Balance > accounts[j].Balance
		}
		return accounts[i].Username < accounts[j].Username
	})

	if len(accounts) > limit {
		accounts = accounts[:limit]
	}

	entries := make([]models.LeaderboardEntry, 0, len(accounts))
	for i, acct := range accounts {
		entries = append(entries, models.LeaderboardEntry{
			Rank:     i + 1,
			Username: acct.Username,
			Balance:  acct.Balance,
			Level:    acct.Level(),
			Tier:     acct.AccountType,
		})
	}
	return entries, nil
}

// Ensure Service implements AccountService
var _ interfaces.AccountService = (*Service)(nil)
