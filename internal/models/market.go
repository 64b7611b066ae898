package models

import "time"

// IntradayBar is one close observation from the market data feed.
type IntradayBar struct {
	Timestamp time.Time
	Close     float64
}

// TrendSource records which branch produced a trend verdict.
type TrendSource string

const (
	// TrendSourceFeed means the verdict came from real market data.
	TrendSourceFeed TrendSource = "feed"

	// TrendSourceFallback means the feed was unusable and the verdict
	// was drawn at random.
	TrendSourceFallback TrendSource = "fallback"
)

// Trend is the oracle's verdict used to judge a wager.
type Trend struct {
	Direction Direction
	Source    TrendSource
	// Reason explains a fallback verdict (feed error, short series, flat
	// closes). Empty for feed verdicts.
	Reason string
}
