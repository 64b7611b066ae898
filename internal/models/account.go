// Package models defines the domain types for tradepit.
package models

import (
	"errors"
	"time"
)

// Tier is the account funding tier.
type Tier string

const (
	TierDemo Tier = "demo"
	TierReal Tier = "real"
)

const (
	// DemoStartingBalance is the paper stake a new demo account opens with.
	DemoStartingBalance = 10000.0

	// SignupBonus is the balance a premium unlock resets the account to.
	SignupBonus = 100.0

	// WinMultiplier is the payout fraction on a winning wager (10% house edge).
	WinMultiplier = 0.9

	// MinStake is the smallest wager the engine accepts.
	MinStake = 1.0
)

// Level thresholds: trade count at which each rank begins.
const (
	LevelIntermediateMin = 11
	LevelProMin          = 31
)

const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelPro          = "Pro"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account already exists")
	ErrInvalidTier       = errors.New("account type must be demo or real")
	ErrInvalidDirection  = errors.New("prediction must be up or down")
	ErrInvalidStake      = errors.New("stake must be at least 1")
	ErrInsufficientFunds = errors.New("stake exceeds current balance")
)

// ValidTier reports whether t is a known account tier.
func ValidTier(t Tier) bool {
	return t == TierDemo || t == TierReal
}

// LeaderboardEntry is one row of the top-balances ranking.
type LeaderboardEntry struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Balance  float64 `json:"balance"`
	Level    string  `json:"level"`
	Tier     Tier    `json:"account_type"`
}

// BalancePoint is one append-only snapshot of an account balance.
type BalancePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Balance   float64   `json:"balance"`
}

// Account is one user's identity, credential, balance, trade log, and
// premium flag. The username is the primary key and lives in the
// Population map, not in the serialized record.
type Account struct {
	Username        string         `json:"-"`
	AccountType     Tier           `json:"account_type"`
	Balance         float64        `json:"balance"`
	Trades          []Trade        `json:"trades"`
	History         []BalancePoint `json:"history"`
	HashedPassword  string         `json:"hashed_password"`
	PremiumUnlocked bool           `json:"premium_unlocked"`
}

// NewAccount creates an account for a never-seen username. Demo accounts
// open with the starting paper stake, real accounts with zero. The opening
// balance is recorded as the first history snapshot so the history tail
// always matches the current balance.
func NewAccount(username, hashedPassword string, tier Tier) *Account {
	balance := 0.0
	if tier == TierDemo {
		balance = DemoStartingBalance
	}
	return &Account{
		Username:       username,
		AccountType:    tier,
		Balance:        balance,
		HashedPassword: hashedPassword,
		History: []BalancePoint{
			{Timestamp: time.Now(), Balance: balance},
		},
	}
}

// UpdateBalance adds delta to the balance and appends a history snapshot.
// It performs no floor check: a losing wager larger than the balance would
// drive it negative, so the Trading Engine caps stakes before calling this.
func (a *Account) UpdateBalance(delta float64) {
	a.Balance += delta
	a.History = append(a.History, BalancePoint{Timestamp: time.Now(), Balance: a.Balance})
}

// SetBalance assigns the balance outright and appends a history snapshot.
// Used by the premium unlock, which resets the balance to the signup bonus.
func (a *Account) SetBalance(balance float64) {
	a.Balance = balance
	a.History = append(a.History, BalancePoint{Timestamp: time.Now(), Balance: a.Balance})
}

// Level derives the cosmetic rank from the trade-log length alone.
func (a *Account) Level() string {
	switch n := len(a.Trades); {
	case n >= LevelProMin:
		return LevelPro
	case n >= LevelIntermediateMin:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// Clone returns a deep copy safe to read outside the registry lock.
func (a *Account) Clone() *Account {
	c := *a
	c.Trades = append([]Trade(nil), a.Trades...)
	c.History = append([]BalancePoint(nil), a.History...)
	return &c
}
