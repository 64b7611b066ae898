package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradepit/internal/clients/alphavantage"
	"tradepit/internal/clients/stripe"
	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/notify"
	"tradepit/internal/services/accounts"
	"tradepit/internal/services/market"
	"tradepit/internal/services/trading"
	"tradepit/internal/services/unlock"
	"tradepit/internal/storage"
)

// App holds all initialized clients, services, and the account registry.
// It is the shared core wired by cmd/tradepit-server.
type App struct {
	Config         *common.Config
	Logger         *common.Logger
	Registry       *storage.Registry
	MarketClient   interfaces.MarketDataClient
	PaymentClient  interfaces.PaymentClient
	Mailer         interfaces.EmailSender
	Oracle         interfaces.TrendOracle
	TradingService interfaces.TradingService
	AccountService interfaces.AccountService
	UnlockService  interfaces.UnlockService
	StartupTime    time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	// Get binary directory for self-contained operation
	binDir := getBinaryDir()

	// Load configuration - check provided path, TRADEPIT_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TRADEPIT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "tradepit.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/tradepit.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative data file path to binary directory
	if config.Storage.File.Path != "" && !filepath.IsAbs(config.Storage.File.Path) {
		config.Storage.File.Path = filepath.Join(binDir, config.Storage.File.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	if missing := config.ValidateRequired(); len(missing) > 0 {
		logger.Warn().Strs("missing", missing).Msg("Running with incomplete credentials - dependent features degrade")
	}

	store, err := storage.NewFileStore(logger, &config.Storage.File)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize account store: %w", err)
	}

	registry, err := storage.NewRegistry(logger, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	var marketClient *alphavantage.Client
	if config.Clients.MarketData.APIKey != "" {
		marketClient = alphavantage.NewClient(config.Clients.MarketData.APIKey,
			alphavantage.WithBaseURL(config.Clients.MarketData.BaseURL),
			alphavantage.WithLogger(logger),
			alphavantage.WithRateLimit(config.Clients.MarketData.RateLimit),
			alphavantage.WithTimeout(config.Clients.MarketData.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("Market data API key not configured - trend verdicts fall back to coin flips")
	}

	var paymentClient *stripe.Client
	if config.Clients.Stripe.SecretKey != "" {
		paymentClient = stripe.NewClient(config.Clients.Stripe.SecretKey,
			stripe.WithBaseURL(config.Clients.Stripe.BaseURL),
			stripe.WithLogger(logger),
			stripe.WithTimeout(config.Clients.Stripe.GetTimeout()),
		)
	} else {
		logger.Warn().Msg("Stripe secret key not configured - premium unlock will be unavailable")
	}

	mailer := notify.NewMailer(logger, &config.Email)

	// Keep interface fields nil rather than holding typed nil pointers.
	var feed interfaces.MarketDataClient
	if marketClient != nil {
		feed = marketClient
	}
	var payments interfaces.PaymentClient
	if paymentClient != nil {
		payments = paymentClient
	}

	oracle := market.NewService(feed, &config.Clients.MarketData, logger)
	tradingService := trading.NewService(registry, oracle, logger)
	accountService := accounts.NewService(registry, logger)
	unlockService := unlock.NewService(registry, payments, mailer, &config.Clients.Stripe, logger)

	a := &App{
		Config:         config,
		Logger:         logger,
		Registry:       registry,
		MarketClient:   feed,
		PaymentClient:  payments,
		Mailer:         mailer,
		Oracle:         oracle,
		TradingService: tradingService,
		AccountService: accountService,
		UnlockService:  unlockService,
		StartupTime:    startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases resources held by the App.
func (a *App) Close() {
	if a.Logger != nil {
		a.Logger.Debug().Msg("App closed")
	}
}
