package server

import (
	"errors"
	"net/http"
	"strconv"

	"tradepit/internal/common"
	"tradepit/internal/models"
)

// requireAccountAccess checks that the request carries a token whose
// subject matches the account in the path. Anonymous requests get 401,
// authenticated requests for someone else's account get 403.
func (s *Server) requireAccountAccess(w http.ResponseWriter, r *http.Request, username string) bool {
	authed := common.UsernameFromContext(r.Context())
	if authed == "" {
		writeBearerChallenge(w, "authentication required")
		return false
	}
	if authed != username {
		WriteError(w, http.StatusForbidden, "token subject does not match account")
		return false
	}
	return true
}

// handleAccountGet handles GET /api/accounts/{username}: the dashboard snapshot.
func (s *Server) handleAccountGet(w http.ResponseWriter, r *http.Request, username string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	account, err := s.app.AccountService.GetAccount(r.Context(), username)
	if err != nil {
		s.writeAccountError(w, username, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   accountPayload(account),
	})
}

// handleAccountTrades handles GET /api/accounts/{username}/trades:
// the trade log, newest first, optionally capped by ?limit=N.
func (s *Server) handleAccountTrades(w http.ResponseWriter, r *http.Request, username string) {
	trades, err := s.app.AccountService.GetTrades(r.Context(), username)
	if err != nil {
		s.writeAccountError(w, username, err)
		return
	}

	// Stored oldest-first; the log reads newest-first.
	reversed := make([]models.Trade, len(trades))
	for i, tr := range trades {
		reversed[len(trades)-1-i] = tr
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit < len(reversed) {
			reversed = reversed[:limit]
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"trades": reversed,
			"count":  len(reversed),
			"total":  len(trades),
		},
	})
}

// handleAccountHistory handles GET /api/accounts/{username}/history.
func (s *Server) handleAccountHistory(w http.ResponseWriter, r *http.Request, username string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	history, err := s.app.AccountService.GetHistory(r.Context(), username)
	if err != nil {
		s.writeAccountError(w, username, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"history": history,
			"count":   len(history),
		},
	})
}

// handleAccountChart handles GET /api/accounts/{username}/chart: a PNG
// of the balance history.
func (s *Server) handleAccountChart(w http.ResponseWriter, r *http.Request, username string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.AccountService.RenderBalanceChart(r.Context(), username)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			WriteError(w, http.StatusNotFound, "account not found")
			return
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to render balance chart")
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// handleLeaderboard handles GET /api/leaderboard?limit=N: top balances.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := s.app.AccountService.Leaderboard(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Leaderboard failed")
		WriteError(w, http.StatusInternalServerError, "leaderboard failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"leaderboard": entries,
			"count":       len(entries),
		},
	})
}

// writeAccountError maps registry lookup failures to HTTP responses.
func (s *Server) writeAccountError(w http.ResponseWriter, username string, err error) {
	if errors.Is(err, models.ErrAccountNotFound) {
		WriteError(w, http.StatusNotFound, "account not found")
		return
	}
	s.logger.Error().Err(err).Str("username", username).Msg("Account lookup failed")
	WriteError(w, http.StatusInternalServerError, "account lookup failed")
}
