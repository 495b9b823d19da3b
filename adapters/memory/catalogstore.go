package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/creditgate/creditgate/domain/catalog"
	"github.com/creditgate/creditgate/ports"
)

// CatalogStore is an in-memory implementation of ports.CatalogStore.
type CatalogStore struct {
	mu      sync.RWMutex
	entries map[string]catalog.Entry // by method+" "+path

	failErr error // injected failure (for testing)
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		entries: make(map[string]catalog.Entry),
	}
}

func entryKey(path, method string) string {
	return strings.ToUpper(method) + " " + path
}

// FindEntry retrieves the entry for a (path, method) pair.
func (s *CatalogStore) FindEntry(ctx context.Context, path, method string) (catalog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failErr != nil {
		return catalog.Entry{}, s.failErr
	}

	e, ok := s.entries[entryKey(path, method)]
	if !ok {
		return catalog.Entry{}, ports.ErrNotFound
	}
	return e, nil
}

// CreateEntry stores a new entry, enforcing (path, method) uniqueness.
func (s *CatalogStore) CreateEntry(ctx context.Context, e catalog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	key := entryKey(e.Path, e.Method)
	if _, exists := s.entries[key]; exists {
		return ports.ErrDuplicate
	}
	s.entries[key] = e
	return nil
}

// Len returns the number of entries (for testing).
func (s *CatalogStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// FailWith makes every subsequent operation return err (for testing).
// Pass nil to clear.
func (s *CatalogStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Ensure interface compliance.
var _ ports.CatalogStore = (*CatalogStore)(nil)
