package server

import (
	"net/http"
	"strings"
	"time"

	"tradepit/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Users
	mux.HandleFunc("/api/users", s.handleUserCreate)

	// Auth
	mux.HandleFunc("/api/auth/login", s.handleAuthLogin)

	// Leaderboard
	mux.HandleFunc("/api/leaderboard", s.handleLeaderboard)

	// Accounts
	mux.HandleFunc("/api/accounts/", s.routeAccounts)
}

// routeAccounts dispatches /api/accounts/{username}/* to the appropriate
// handler. Every route under here requires a token whose subject matches
// the account in the path.
func (s *Server) routeAccounts(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/accounts/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "username is required in path")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	username := parts[0]
	subpath := ""
	if len(parts) > 1 {
		subpath = parts[1]
	}

	if !s.requireAccountAccess(w, r, username) {
		return
	}

	switch subpath {
	case "":
		s.handleAccountGet(w, r, username)
	case "trades":
		switch r.Method {
		case http.MethodGet:
			s.handleAccountTrades(w, r, username)
		case http.MethodPost:
			s.handleTradePlace(w, r, username)
		default:
			RequireMethod(w, r, http.MethodGet, http.MethodPost)
		}
	case "history":
		s.handleAccountHistory(w, r, username)
	case "chart":
		s.handleAccountChart(w, r, username)
	case "unlock/checkout":
		s.handleUnlockCheckout(w, r, username)
	case "unlock/verify":
		s.handleUnlockVerify(w, r, username)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uptime := time.Since(s.app.StartupTime).Round(time.Second)

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"environment":       s.app.Config.Environment,
		"data_file":         s.app.Config.Storage.File.Path,
		"logging_level":     s.app.Config.Logging.Level,
		"market_symbol":     s.app.Config.Clients.MarketData.Symbol,
		"market_interval":   s.app.Config.Clients.MarketData.Interval,
		"feed_configured":   s.app.MarketClient != nil,
		"stripe_configured": s.app.PaymentClient != nil,
		"email_configured":  s.app.Config.Email.Enabled(),
		"uptime":            uptime.String(),
		"started_at":        s.app.StartupTime,
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
