package server

import (
	"errors"
	"net/http"

	"tradepit/internal/models"
)

// handleTradePlace handles POST /api/accounts/{username}/trades: stake
// an amount on the next move.
func (s *Server) handleTradePlace(w http.ResponseWriter, r *http.Request, username string) {
	var req struct {
		Amount     float64 `json:"amount"`
		Prediction string  `json:"prediction"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	direction, err := models.ParseDirection(req.Prediction)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.app.TradingService.PlaceTrade(r.Context(), username, req.Amount, direction)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidStake):
			WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, models.ErrInsufficientFunds):
			WriteError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, models.ErrAccountNotFound):
			WriteError(w, http.StatusNotFound, "account not found")
		default:
			s.logger.Error().Err(err).Str("username", username).Msg("Trade failed")
			WriteError(w, http.StatusInternalServerError, "trade failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data":   result,
	})
}
