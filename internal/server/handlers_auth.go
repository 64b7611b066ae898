package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tradepit/internal/common"
	"tradepit/internal/models"
)

// --- JWT helpers ---

// signJWT creates a signed token for the given username.
func signJWT(username string, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": username,
		"iss": "tradepit-server",
		"iat": now.Unix(),
		"exp": now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// validateUsername checks that a username is safe for storage.
// Rejects empty, too long, null bytes, and control characters.
func validateUsername(username string) string {
	if username == "" {
		return "username is required"
	}
	if len(username) > 128 {
		return "username must be 128 characters or fewer"
	}
	for _, c := range username {
		if c < 0x20 || c == 0x7f {
			return "username contains invalid control characters"
		}
	}
	return ""
}

// accountPayload builds the standard account summary for API responses.
func accountPayload(a *models.Account) map[string]interface{} {
	return map[string]interface{}{
		"username":         a.Username,
		"account_type":     a.AccountType,
		"balance":          a.Balance,
		"level":            a.Level(),
		"trade_count":      len(a.Trades),
		"premium_unlocked": a.PremiumUnlocked,
	}
}

// --- User and auth handlers ---

// handleUserCreate handles POST /api/users: register an account and
// return a signed token for it. The email is optional; it only receives
// a best-effort welcome message and is never persisted.
func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		Email       string `json:"email"`
		AccountType string `json:"account_type"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if errMsg := validateUsername(req.Username); errMsg != "" {
		WriteError(w, http.StatusBadRequest, errMsg)
		return
	}
	if req.Password == "" {
		WriteError(w, http.StatusBadRequest, "password is required")
		return
	}

	tier := models.Tier(req.AccountType)
	if req.AccountType == "" {
		tier = models.TierDemo
	}
	if !models.ValidTier(tier) {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid account type '%s'", req.AccountType))
		return
	}

	if s.app.Registry.Exists(req.Username) {
		WriteError(w, http.StatusConflict, fmt.Sprintf("user '%s' already exists", req.Username))
		return
	}

	// Hash password with bcrypt (truncate to 72 bytes, the bcrypt input limit)
	passwordBytes := []byte(req.Password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(passwordBytes, 10)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	account := models.NewAccount(req.Username, string(hash), tier)

	if err := s.app.Registry.Create(account); err != nil {
		if err == models.ErrAccountExists {
			WriteError(w, http.StatusConflict, fmt.Sprintf("user '%s' already exists", req.Username))
			return
		}
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Failed to save account")
		WriteError(w, http.StatusInternalServerError, "failed to save account")
		return
	}

	token, err := signJWT(req.Username, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for registration")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.logger.Info().Str("username", req.Username).Str("tier", string(tier)).Msg("Account registered")

	if req.Email != "" {
		body := fmt.Sprintf("Hi %s,\n\nYour tradepit account is ready. Call the market and good luck in the pit.\n", req.Username)
		if err := s.app.Mailer.Send(r.Context(), req.Email, "Welcome to tradepit", body); err != nil {
			s.logger.Warn().Err(err).Str("username", req.Username).Msg("Welcome email failed")
		}
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token":   token,
			"account": accountPayload(account),
		},
	})
}

// handleAuthLogin handles POST /api/auth/login.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	account, err := s.app.Registry.Get(req.Username)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	passwordBytes := []byte(req.Password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.HashedPassword), passwordBytes); err != nil {
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := signJWT(req.Username, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token":   token,
			"account": accountPayload(account),
		},
	})
}
