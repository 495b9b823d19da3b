// Package memory provides in-memory store implementations, used for tests and
// throwaway environments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/creditgate/creditgate/domain/credit"
	"github.com/creditgate/creditgate/ports"
)

// AccountStore is an in-memory implementation of ports.AccountStore.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]credit.Account // by ID
	byKey    map[string]string         // api key -> ID

	lookups int64 // GetByKey call count (for testing)
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]credit.Account),
		byKey:    make(map[string]string),
	}
}

// GetByKey retrieves the account owning an API key.
func (s *AccountStore) GetByKey(ctx context.Context, apiKey string) (credit.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	id, ok := s.byKey[apiKey]
	if !ok {
		return credit.Account{}, ports.ErrNotFound
	}
	return s.accounts[id], nil
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return credit.Account{}, ports.ErrNotFound
	}
	return acct, nil
}

// DecrementIfPositive atomically removes one credit. The check and the write
// happen under one lock, matching the single conditional UPDATE of the SQL
// store.
func (s *AccountStore) DecrementIfPositive(ctx context.Context, accountID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return 0, ports.ErrNotFound
	}
	if acct.Credits <= 0 {
		return 0, ports.ErrInsufficientCredits
	}

	acct.Credits--
	s.accounts[accountID] = acct
	return acct.Credits, nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, acct credit.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[acct.APIKey]; exists {
		return ports.ErrDuplicate
	}
	if _, exists := s.accounts[acct.ID]; exists {
		return ports.ErrDuplicate
	}

	s.accounts[acct.ID] = acct
	s.byKey[acct.APIKey] = acct.ID
	return nil
}

// AddCredits tops up the balance and returns the new balance.
func (s *AccountStore) AddCredits(ctx context.Context, accountID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[accountID]
	if !ok {
		return 0, ports.ErrNotFound
	}

	acct.Credits += amount
	s.accounts[accountID] = acct
	return acct.Credits, nil
}

// List returns accounts with pagination, ordered by ID for determinism.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]credit.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]credit.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		all = append(all, a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]

	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Lookups returns how many times GetByKey was called (for testing).
func (s *AccountStore) Lookups() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookups
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
