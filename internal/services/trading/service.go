// Package trading settles up-or-down wagers.
package trading

import (
	"context"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

// Service implements the TradingService interface.
type Service struct {
	registry interfaces.AccountRegistry
	oracle   interfaces.TrendOracle
	logger   *common.Logger
}

// NewService creates a new trading service.
func NewService(registry interfaces.AccountRegistry, oracle interfaces.TrendOracle, logger *common.Logger) *Service {
	return &Service{
		registry: registry,
		oracle:   oracle,
		logger:   logger,
	}
}

// PlaceTrade validates the stake, consults the oracle, settles the wager,
// and persists the updated account. A winning wager pays out a fraction of
// the stake; a losing wager forfeits it entirely. The oracle is consulted
// before taking the registry lock, so a slow feed never blocks other
// accounts.
func (s *Service) PlaceTrade(ctx context.Context, username string, amount float64, prediction models.Direction) (*models.TradeResult, error) {
	if prediction != models.DirectionUp && prediction != models.DirectionDown {
		return nil, models.ErrInvalidDirection
	}
	if amount < models.MinStake {
		return nil, models.ErrInvalidStake
	}
	if !s.registry.Exists(username) {
		return nil, models.ErrAccountNotFound
	}

	trend := s.oracle.GetTrend(ctx)
	won := prediction == trend.Direction

	delta := -amount
	if won {
		delta = amount * models.WinMultiplier
	}

	var result models.TradeResult
	_, err := s.registry.Mutate(username, func(a *models.Account) error {
		// The stake cap is checked against the live balance under lock,
		// not the snapshot the caller saw.
		if amount > a.Balance {
			return models.ErrInsufficientFunds
		}

		a.Trades = append(a.Trades, models.NewTrade(amount, prediction, trend.Direction))
		a.UpdateBalance(delta)

		result = models.TradeResult{
			Won:         won,
			Outcome:     trend.Direction,
			Delta:       delta,
			Balance:     a.Balance,
			Level:       a.Level(),
			TrendSource: trend.Source,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("username", username).
		Float64("amount", amount).
		Str("prediction", string(prediction)).
		Bool("won", won).
		Str("trend_source", string(trend.Source)).
		Float64("balance", result.Balance).
		Msg("Trade settled")

	return &result, nil
}

// Ensure Service implements TradingService
var _ interfaces.TradingService = (*Service)(nil)
