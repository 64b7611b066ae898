// Package interfaces defines service contracts for tradepit
package interfaces

import "tradepit/internal/models"

// PopulationStore persists the full account population as one durable file.
type PopulationStore interface {
	// Load reads and validates the population. A missing file yields an
	// empty population; a corrupt or malformed file is an error.
	Load() (models.Population, error)

	// Save writes the entire population atomically.
	Save(population models.Population) error
}

// AccountRegistry is the concurrency-safe view of the population that
// services operate on. Every mutation is written through to the store
// before it returns.
type AccountRegistry interface {
	// Get returns a deep copy of the named account.
	Get(username string) (*models.Account, error)

	// Exists reports whether a username is registered.
	Exists(username string) bool

	// Create adds a new account and persists the population.
	Create(account *models.Account) error

	// List returns a deep copy of every account.
	List() []*models.Account

	// Mutate applies fn to the live account under lock, then persists.
	// If fn returns an error the account is left unchanged and nothing
	// is written.
	Mutate(username string, fn func(*models.Account) error) (*models.Account, error)
}
