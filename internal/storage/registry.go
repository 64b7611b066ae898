package storage

import (
	"fmt"
	"sync"

	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
)

// Registry is the concurrency-safe account registry backed by a
// PopulationStore. It holds the population in memory and writes the whole
// file through on every mutation.
type Registry struct {
	mu         sync.RWMutex
	population models.Population
	store      interfaces.PopulationStore
	logger     *common.Logger
}

// NewRegistry loads the population from the store. A corrupt file fails
// startup rather than silently resetting anyone's balance.
func NewRegistry(logger *common.Logger, store interfaces.PopulationStore) (*Registry, error) {
	population, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load population: %w", err)
	}

	logger.Info().Int("accounts", len(population)).Msg("Account registry loaded")
	return &Registry{
		population: population,
		store:      store,
		logger:     logger,
	}, nil
}

// Get returns a deep copy of the named account.
func (r *Registry) Get(username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.population[username]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	return acct.Clone(), nil
}

// Exists reports whether a username is registered.
func (r *Registry) Exists(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.population[username]
	return ok
}

// List returns a deep copy of every account, in no particular order.
func (r *Registry) List() []*models.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*models.Account, 0, len(r.population))
	for _, acct := range r.population {
		accounts = append(accounts, acct.Clone())
	}
	return accounts
}

// Create adds a new account and persists the population.
func (r *Registry) Create(account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.population[account.Username]; ok {
		return models.ErrAccountExists
	}

	r.population[account.Username] = account.Clone()
	if err := r.store.Save(r.population); err != nil {
		delete(r.population, account.Username)
		return fmt.Errorf("failed to persist new account: %w", err)
	}

	r.logger.Info().Str("username", account.Username).Str("tier", string(account.AccountType)).Msg("Account created")
	return nil
}

// Mutate applies fn to the live account under lock, then persists the
// population. If fn or the save fails, the in-memory account is rolled
// back and the error returned.
func (r *Registry) Mutate(username string, fn func(*models.Account) error) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.population[username]
	if !ok {
		return nil, models.ErrAccountNotFound
	}

	backup := acct.Clone()
	if err := fn(acct); err != nil {
		r.population[username] = backup
		return nil, err
	}

	if err := r.store.Save(r.population); err != nil {
		r.population[username] = backup
		return nil, fmt.Errorf("failed to persist account update: %w", err)
	}

	return acct.Clone(), nil
}

// Ensure Registry implements AccountRegistry
var _ interfaces.AccountRegistry = (*Registry)(nil)
