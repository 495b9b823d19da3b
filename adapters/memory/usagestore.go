package memory

import (
	"context"
	"sync"
	"time"

	"github.com/creditgate/creditgate/domain/usage"
	"github.com/creditgate/creditgate/ports"
)

// UsageStore is an in-memory implementation of ports.UsageStore.
type UsageStore struct {
	mu      sync.RWMutex
	records []usage.Record

	failErr error // injected failure (for testing)
}

// NewUsageStore creates a new in-memory usage store.
func NewUsageStore() *UsageStore {
	return &UsageStore{}
}

// Insert appends one usage record.
func (s *UsageStore) Insert(ctx context.Context, rec usage.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}
	s.records = append(s.records, rec)
	return nil
}

// RecentByAccount returns the latest records for an account, newest first.
func (s *UsageStore) RecentByAccount(ctx context.Context, accountID string, limit int) ([]usage.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []usage.Record
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].AccountID != accountID {
			continue
		}
		out = append(out, s.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Summary returns aggregated usage for a period.
func (s *UsageStore) Summary(ctx context.Context, accountID string, start, end time.Time) (usage.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return usage.Aggregate(s.records, accountID, start, end), nil
}

// GetAll returns a copy of all records (for testing).
func (s *UsageStore) GetAll() []usage.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]usage.Record, len(s.records))
	copy(out, s.records)
	return out
}

// FailWith makes every subsequent Insert return err (for testing).
// Pass nil to clear.
func (s *UsageStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
