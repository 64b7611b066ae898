// Package market derives the trend verdict wagers are judged against.
package market

import (
	"context"
	"math/rand"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

// Service implements the TrendOracle interface with a live feed primary
// and a coin-flip fallback.
type Service struct {
	client   interfaces.MarketDataClient
	symbol   string
	interval string
	logger   *common.Logger
	coinFlip func() models.Direction // injectable randomness for testing
}

// NewService creates a new trend oracle. client may be nil when no feed
// key is configured; every verdict is then a fallback.
func NewService(client interfaces.MarketDataClient, config *common.MarketDataConfig, logger *common.Logger) *Service {
	return &Service{
		client:   client,
		symbol:   config.Symbol,
		interval: config.Interval,
		logger:   logger,
		coinFlip: randomDirection,
	}
}

func randomDirection() models.Direction {
	if rand.Intn(2) == 0 {
		return models.DirectionUp
	}
	return models.DirectionDown
}

// GetTrend returns the current trend direction. The feed branch compares
// the two most recent closes; anything that prevents that comparison
// (no client, a feed error, a short series) yields a random verdict with
// the reason recorded on the trend.
func (s *Service) GetTrend(ctx context.Context) models.Trend {
	if s.client == nil {
		return s.fallback("no market data client configured")
	}

	bars, err := s.client.GetIntradaySeries(ctx, s.symbol, s.interval)
	if err != nil {
		return s.fallback("feed error: " + err.Error())
	}
	if len(bars) < 2 {
		return s.fallback("series too short to compare")
	}

	// Up only on a strict rise; a flat market reads as down.
	latest, previous := bars[0].Close, bars[1].Close
	direction := models.DirectionDown
	if latest > previous {
		direction = models.DirectionUp
	}

	s.logger.Debug().
		Str("symbol", s.symbol).
		Float64("latest", latest).
		Float64("previous", previous).
		Str("direction", string(direction)).
		Msg("Trend from feed")

	return models.Trend{Direction: direction, Source: models.TrendSourceFeed}
}

func (s *Service) fallback(reason string) models.Trend {
	direction := s.coinFlip()
	s.logger.Warn().
		Str("reason", reason).
		Str("direction", string(direction)).
		Msg("Trend fallback to random")

	return models.Trend{
		Direction: direction,
		Source:    models.TrendSourceFallback,
		Reason:    reason,
	}
}

// Ensure Service implements TrendOracle
var _ interfaces.TrendOracle = (*Service)(nil)
