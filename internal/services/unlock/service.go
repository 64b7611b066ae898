// Package unlock manages the one-time premium purchase.
package unlock

import (
	"context"
	"errors"
	"fmt"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

// ErrAlreadyUnlocked is returned when a premium account starts a new checkout.
var ErrAlreadyUnlocked = errors.New("premium already unlocked")

// ErrPaymentsUnavailable is returned when no payment client is configured.
var ErrPaymentsUnavailable = errors.New("payments are not configured")

// intentPollLimit is how many recent payment attempts the verification
// poll inspects.
const intentPollLimit = 20

// Service implements the UnlockService interface.
type Service struct {
	registry interfaces.AccountRegistry
	payments interfaces.PaymentClient
	mailer   interfaces.EmailSender
	config   *common.StripeConfig
	logger   *common.Logger
}

// NewService creates a new unlock service. payments may be nil when no
// secret key is configured; both operations then fail cleanly.
func NewService(registry interfaces.AccountRegistry, payments interfaces.PaymentClient, mailer interfaces.EmailSender, config *common.StripeConfig, logger *common.Logger) *Service {
	return &Service{
		registry: registry,
		payments: payments,
		mailer:   mailer,
		config:   config,
		logger:   logger,
	}
}

// StartCheckout creates a hosted checkout session for the unlock fee.
// email is optional; when present it prefills the hosted payment page.
func (s *Service) StartCheckout(ctx context.Context, username, email string) (*models.CheckoutSession, error) {
	if s.payments == nil {
		return nil, ErrPaymentsUnavailable
	}

	acct, err := s.registry.Get(username)
	if err != nil {
		return nil, err
	}
	if acct.PremiumUnlocked {
		return nil, ErrAlreadyUnlocked
	}

	session, err := s.payments.CreateCheckoutSession(ctx, models.CheckoutParams{
		Username:      username,
		CustomerEmail: email,
		AmountCents:   models.UnlockPriceCents,
		Currency:      "usd",
		ProductName:   "Premium unlock",
		SuccessURL:    s.config.SuccessURL,
		CancelURL:     s.config.CancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	s.logger.Info().Str("username", username).Str("session_id", session.ID).Msg("Checkout started")
	return session, nil
}

// VerifyAndUnlock polls recent payments for a completed unlock purchase by
// this username. On a match the account flips to premium: real tier, the
// signup bonus as the new balance, and a best-effort confirmation email.
// Returns whether the unlock happened on this call, so a repeat poll after
// a successful unlock reports false without touching the account.
func (s *Service) VerifyAndUnlock(ctx context.Context, username, notifyEmail string) (bool, error) {
	if s.payments == nil {
		return false, ErrPaymentsUnavailable
	}

	acct, err := s.registry.Get(username)
	if err != nil {
		return false, err
	}
	if acct.PremiumUnlocked {
		return false, nil
	}

	intents, err := s.payments.ListPaymentIntents(ctx, intentPollLimit)
	if err != nil {
		return false, fmt.Errorf("failed to list payments: %w", err)
	}

	paid := false
	for _, intent := range intents {
		if intent.Paid(username) {
			paid = true
			break
		}
	}
	if !paid {
		return false, nil
	}

	_, err = s.registry.Mutate(username, func(a *models.Account) error {
		if a.PremiumUnlocked {
			return nil
		}
		a.PremiumUnlocked = true
		a.AccountType = models.TierReal
		a.SetBalance(models.SignupBonus)
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info().Str("username", username).Msg("Premium unlocked")

	if notifyEmail != "" {
		body := fmt.Sprintf(
			"Hi %s,\n\nYour premium unlock is confirmed. Your account is now on the real tier with a $%.0f starting balance.\n\nGood luck in the pit.\n",
			username, models.SignupBonus)
		if err := s.mailer.Send(ctx, notifyEmail, "Premium unlocked", body); err != nil {
			// The purchase already settled; a mail failure must not undo it.
			s.logger.Warn().Err(err).Str("username", username).Msg("Unlock confirmation email failed")
		}
	}

	return true, nil
}

// Ensure Service implements UnlockService
var _ interfaces.UnlockService = (*Service)(nil)
