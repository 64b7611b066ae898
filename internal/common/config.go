// Package common provides shared utilities for tradepit
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for tradepit
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Email       EmailConfig   `toml:"email"`
	Auth        AuthConfig    `toml:"auth"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds durable storage configuration.
type StorageConfig struct {
	File FileConfig `toml:"file"`
}

// FileConfig holds the path of the single user data file.
type FileConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	MarketData MarketDataConfig `toml:"market_data"`
	Stripe     StripeConfig     `toml:"stripe"`
}

// MarketDataConfig holds the intraday market data feed configuration
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Symbol    string `toml:"symbol"`
	Interval  string `toml:"interval"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// StripeConfig holds payment processor configuration
type StripeConfig struct {
	BaseURL    string `toml:"base_url"`
	SecretKey  string `toml:"secret_key"`
	SuccessURL string `toml:"success_url"`
	CancelURL  string `toml:"cancel_url"`
	Timeout    string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *StripeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EmailConfig holds SMTP configuration for outbound notifications
type EmailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Sender   string `toml:"sender"`
	Password string `toml:"password"`
}

// Enabled reports whether outbound email is configured.
func (c *EmailConfig) Enabled() bool {
	return c.Host != "" && c.Sender != ""
}

// AuthConfig holds JWT authentication configuration.
type AuthConfig struct {
	JWTSecret   string `toml:"jwt_secret"`
	TokenExpiry string `toml:"token_expiry"` // duration string, default "24h"
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			File: FileConfig{Path: "data/users.json"},
		},
		Clients: ClientsConfig{
			MarketData: MarketDataConfig{
				BaseURL:   "https://www.alphavantage.co",
				Symbol:    "SPY",
				Interval:  "1min",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Stripe: StripeConfig{
				BaseURL:    "https://api.stripe.com",
				SuccessURL: "http://localhost:8080/unlock/success",
				CancelURL:  "http://localhost:8080/unlock/cancel",
				Timeout:    "30s",
			},
		},
		Email: EmailConfig{
			Port: 465,
		},
		Auth: AuthConfig{
			JWTSecret:   "dev-jwt-secret-change-in-production",
			TokenExpiry: "24h",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRADEPIT_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TRADEPIT_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TRADEPIT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TRADEPIT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TRADEPIT_DATA_FILE"); path != "" {
		config.Storage.File.Path = path
	}

	if v := os.Getenv("TRADEPIT_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}

	// Credentials follow the names the hosted deployments already use.
	for _, name := range []string{"ALPHAVANTAGE_API_KEY", "ALPHA_API"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.MarketData.APIKey = v
			break
		}
	}

	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		config.Clients.Stripe.SecretKey = v
	}

	if v := os.Getenv("EMAIL_SENDER"); v != "" {
		config.Email.Sender = v
	}
	if v := os.Getenv("EMAIL_PASSWORD"); v != "" {
		config.Email.Password = v
	}
	if v := os.Getenv("EMAIL_HOST"); v != "" {
		config.Email.Host = v
	}
	if v := os.Getenv("EMAIL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Email.Port = p
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ValidateRequired returns the names of credentials still missing or left
// at placeholder values. The server starts anyway: the trend oracle falls
// back to random without a feed key, and unlock/email endpoints report the
// gap at call time.
func (c *Config) ValidateRequired() []string {
	var missing []string

	if c.Auth.JWTSecret == "" || strings.Contains(c.Auth.JWTSecret, "change-in-production") {
		missing = append(missing, "auth.jwt_secret")
	}
	if c.Clients.MarketData.APIKey == "" {
		missing = append(missing, "clients.market_data.api_key")
	}
	if c.Clients.Stripe.SecretKey == "" {
		missing = append(missing, "clients.stripe.secret_key")
	}
	if !c.Email.Enabled() {
		missing = append(missing, "email.host/sender")
	}

	return missing
}
