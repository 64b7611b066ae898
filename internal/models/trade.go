package models

import "strings"

// Direction is the side of a binary wager.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection normalizes user input to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionUp:
		return DirectionUp, nil
	case DirectionDown:
		return DirectionDown, nil
	default:
		return "", ErrInvalidDirection
	}
}

// Trade is one settled wager as it appears in the durable trade log.
// Result records the direction the market actually moved; whether the
// wager won is derived, never stored.
type Trade struct {
	Amount     float64   `json:"amount"`
	Prediction Direction `json:"prediction"`
	Result     Direction `json:"result"`
}

// NewTrade records a settled wager against the realized market direction.
func NewTrade(amount float64, prediction, outcome Direction) Trade {
	return Trade{Amount: amount, Prediction: prediction, Result: outcome}
}

// Won reports whether the prediction matched the realized direction.
func (t Trade) Won() bool { return t.Prediction == t.Result }

// TradeResult is the engine's answer to a placed wager. Outcome is the
// realized market direction, not the win/loss verdict.
type TradeResult struct {
	Won         bool        `json:"won"`
	Outcome     Direction   `json:"outcome"`
	Delta       float64     `json:"delta"`
	Balance     float64     `json:"balance"`
	Level       string      `json:"level"`
	TrendSource TrendSource `json:"trend_source"`
}
