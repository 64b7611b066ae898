package server

import (
	"errors"
	"net/http"

	"tradepit/internal/models"
	"tradepit/internal/services/unlock"
)

// unlockRequest is the optional body of both unlock endpoints. The email
// prefills the checkout page and receives the unlock confirmation; it is
// never persisted.
type unlockRequest struct {
	Email string `json:"email"`
}

func (s *Server) decodeUnlockRequest(w http.ResponseWriter, r *http.Request) (unlockRequest, bool) {
	var req unlockRequest
	if r.Body != nil && r.ContentLength != 0 {
		if !DecodeJSON(w, r, &req) {
			return req, false
		}
	}
	return req, true
}

// handleUnlockCheckout handles POST /api/accounts/{username}/unlock/checkout:
// start a hosted checkout session for the premium unlock.
func (s *Server) handleUnlockCheckout(w http.ResponseWriter, r *http.Request, username string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := s.decodeUnlockRequest(w, r)
	if !ok {
		return
	}

	session, err := s.app.UnlockService.StartCheckout(r.Context(), username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, unlock.ErrAlreadyUnlocked):
			WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, unlock.ErrPaymentsUnavailable):
			WriteError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, models.ErrAccountNotFound):
			WriteError(w, http.StatusNotFound, "account not found")
		default:
			s.logger.Error().Err(err).Str("username", username).Msg("Checkout session failed")
			WriteError(w, http.StatusBadGateway, "failed to start checkout")
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"session_id":   session.ID,
			"checkout_url": session.URL,
		},
	})
}

// handleUnlockVerify handles POST /api/accounts/{username}/unlock/verify:
// look for a completed payment and flip the account to the real tier.
func (s *Server) handleUnlockVerify(w http.ResponseWriter, r *http.Request, username string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	req, ok := s.decodeUnlockRequest(w, r)
	if !ok {
		return
	}

	unlocked, err := s.app.UnlockService.VerifyAndUnlock(r.Context(), username, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, unlock.ErrPaymentsUnavailable):
			WriteError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, models.ErrAccountNotFound):
			WriteError(w, http.StatusNotFound, "account not found")
		default:
			s.logger.Error().Err(err).Str("username", username).Msg("Unlock verification failed")
			WriteError(w, http.StatusBadGateway, "failed to verify payment")
		}
		return
	}

	account, err := s.app.AccountService.GetAccount(r.Context(), username)
	if err != nil {
		s.writeAccountError(w, username, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"unlocked": unlocked,
			"account":  accountPayload(account),
		},
	})
}
