// Package interfaces defines service contracts for tradepit
package interfaces

import (
	"context"

	"tradepit/internal/models"
)

// MarketDataClient provides access to the intraday price feed
type MarketDataClient interface {
	// GetIntradaySeries retrieves recent intraday bars for a symbol,
	// newest first.
	GetIntradaySeries(ctx context.Context, symbol, interval string) ([]models.IntradayBar, error)
}

// PaymentClient provides access to the hosted payment processor
type PaymentClient interface {
	// CreateCheckoutSession creates a hosted checkout page for the
	// premium unlock purchase.
	CreateCheckoutSession(ctx context.Context, params models.CheckoutParams) (*models.CheckoutSession, error)

	// ListPaymentIntents retrieves the most recent payment attempts,
	// newest first.
	ListPaymentIntents(ctx context.Context, limit int) ([]models.PaymentIntent, error)
}

// EmailSender delivers outbound notification mail
type EmailSender interface {
	// Send delivers a plain-text message to a single recipient.
	Send(ctx context.Context, to, subject, body string) error
}
