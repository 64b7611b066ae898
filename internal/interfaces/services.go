// Package interfaces defines service contracts for tradepit
package interfaces

import (
	"context"

	"tradepit/internal/models"
)

// TrendOracle produces the market verdict a wager is judged against.
type TrendOracle interface {
	// GetTrend returns the current trend direction. A feed failure never
	// surfaces as an error: the oracle falls back to a random verdict and
	// records the fallback in the returned trend.
	GetTrend(ctx context.Context) models.Trend
}

// TradingService settles up-or-down wagers against the trend oracle.
type TradingService interface {
	// PlaceTrade validates the stake, consults the oracle, settles the
	// wager, and persists the updated account.
	PlaceTrade(ctx context.Context, username string, amount float64, prediction models.Direction) (*models.TradeResult, error)
}

// AccountService exposes read-side account operations.
type AccountService interface {
	// GetAccount returns a snapshot of the named account.
	GetAccount(ctx context.Context, username string) (*models.Account, error)

	// GetTrades returns the account's settled trade log.
	GetTrades(ctx context.Context, username string) ([]models.Trade, error)

	// GetHistory returns the account's balance snapshots in order.
	GetHistory(ctx context.Context, username string) ([]models.BalancePoint, error)

	// RenderBalanceChart renders the balance history as a PNG line chart.
	RenderBalanceChart(ctx context.Context, username string) ([]byte, error)

	// Leaderboard returns the top accounts ranked by balance.
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// UnlockService manages the one-time premium purchase.
type UnlockService interface {
	// StartCheckout creates a hosted checkout session for the unlock fee.
	// email optionally prefills the hosted payment page.
	StartCheckout(ctx context.Context, username, email string) (*models.CheckoutSession, error)

	// VerifyAndUnlock polls recent payments and, on a matching completed
	// payment, flips the account to premium. Returns whether the unlock
	// happened on this call.
	VerifyAndUnlock(ctx context.Context, username, notifyEmail string) (bool, error)
}
