// Package storage persists the account population as a single JSON file.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradepit/internal/common"
	"tradepit/internal/models"
)

// FileStore reads and writes the entire population to one JSON file.
// Writes are atomic: temp file in the same directory, then rename.
type FileStore struct {
	path   string
	logger *common.Logger
}

// NewFileStore creates a FileStore and ensures the parent directory exists.
func NewFileStore(logger *common.Logger, config *common.FileConfig) (*FileStore, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	fs := &FileStore{path: config.Path, logger: logger}
	logger.Debug().Str("path", config.Path).Msg("FileStore opened")
	return fs, nil
}

// accountRecord mirrors the on-disk account shape with pointer fields so
// Load can tell a missing field from a zero value and reject malformed files
// instead of silently defaulting.
type accountRecord struct {
	AccountType     *string         `json:"account_type"`
	Balance         *float64        `json:"balance"`
	Trades          []tradeRecord   `json:"trades"`
	History         []historyRecord `json:"history"`
	HashedPassword  *string         `json:"hashed_password"`
	PremiumUnlocked *bool           `json:"premium_unlocked"`
}

type tradeRecord struct {
	Amount     *float64 `json:"amount"`
	Prediction *string  `json:"prediction"`
	Result     *string  `json:"result"`
}

type historyRecord struct {
	Timestamp *time.Time `json:"timestamp"`
	Balance   *float64   `json:"balance"`
}

// Load reads and validates the population file. A missing file yields an
// empty population. Any malformed account is an error naming the username
// and field, never a silently-defaulted record.
func (fs *FileStore) Load() (models.Population, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.logger.Debug().Str("path", fs.path).Msg("No data file, starting with empty population")
			return models.Population{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", fs.path, err)
	}
	if len(data) == 0 {
		return models.Population{}, nil
	}

	var records map[string]accountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fs.path, err)
	}

	population := make(models.Population, len(records))
	for username, rec := range records {
		acct, err := rec.toAccount(username)
		if err != nil {
			return nil, fmt.Errorf("invalid record for %q in %s: %w", username, fs.path, err)
		}
		population[username] = acct
	}

	fs.logger.Debug().Int("accounts", len(population)).Msg("Population loaded")
	return population, nil
}

func (r accountRecord) toAccount(username string) (*models.Account, error) {
	if r.AccountType == nil {
		return nil, fmt.Errorf("missing account_type")
	}
	tier := models.Tier(*r.AccountType)
	if !models.ValidTier(tier) {
		return nil, fmt.Errorf("unknown account_type %q", *r.AccountType)
	}
	if r.Balance == nil {
		return nil, fmt.Errorf("missing balance")
	}
	// hashed_password may be null for legacy records created before
	// credentials were required; such accounts can never log in.
	password := ""
	if r.HashedPassword != nil {
		password = *r.HashedPassword
	}

	acct := &models.Account{
		Username:       username,
		AccountType:    tier,
		Balance:        *r.Balance,
		HashedPassword: password,
		Trades:         make([]models.Trade, 0, len(r.Trades)),
		History:        make([]models.BalancePoint, 0, len(r.History)),
	}
	if r.PremiumUnlocked != nil {
		acct.PremiumUnlocked = *r.PremiumUnlocked
	}

	for i, tr := range r.Trades {
		if tr.Amount == nil || tr.Prediction == nil || tr.Result == nil {
			return nil, fmt.Errorf("trade %d is missing a field", i)
		}
		if *tr.Amount <= 0 {
			return nil, fmt.Errorf("trade %d: amount %v is not positive", i, *tr.Amount)
		}
		prediction, err := models.ParseDirection(*tr.Prediction)
		if err != nil {
			return nil, fmt.Errorf("trade %d: unknown prediction %q", i, *tr.Prediction)
		}
		outcome, err := models.ParseDirection(*tr.Result)
		if err != nil {
			return nil, fmt.Errorf("trade %d: unknown result %q", i, *tr.Result)
		}
		acct.Trades = append(acct.Trades, models.Trade{
			Amount:     *tr.Amount,
			Prediction: prediction,
			Result:     outcome,
		})
	}

	for i, h := range r.History {
		if h.Timestamp == nil || h.Balance == nil {
			return nil, fmt.Errorf("history point %d is missing a field", i)
		}
		acct.History = append(acct.History, models.BalancePoint{
			Timestamp: *h.Timestamp,
			Balance:   *h.Balance,
		})
	}

	return acct, nil
}

// Save writes the entire population atomically.
func (fs *FileStore) Save(population models.Population) error {
	jsonData, err := json.MarshalIndent(population, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal population: %w", err)
	}
	jsonData = append(jsonData, '\n')

	dir := filepath.Dir(fs.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, fs.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	fs.logger.Debug().Int("accounts", len(population)).Msg("Population saved")
	return nil
}
