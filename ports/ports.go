// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/creditgate/creditgate/domain/catalog"
	"github.com/creditgate/creditgate/domain/credit"
	"github.com/creditgate/creditgate/domain/usage"
)

// Sentinel errors shared by all store implementations.
var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("already exists")

	// ErrInsufficientCredits is returned by the conditional decrement when the
	// balance was already zero at the moment of the write.
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}

// -----------------------------------------------------------------------------
// Data Store Ports
// -----------------------------------------------------------------------------

// AccountStore persists prepaid accounts.
type AccountStore interface {
	// GetByKey retrieves the account owning an API key.
	// Returns ErrNotFound when the key is not recognized.
	GetByKey(ctx context.Context, apiKey string) (credit.Account, error)

	// Get retrieves an account by ID.
	Get(ctx context.Context, id string) (credit.Account, error)

	// DecrementIfPositive atomically removes one credit, conditioned on the
	// balance being positive at the moment of the write. It must be a single
	// indivisible store operation, never a read followed by a write.
	// Returns the post-decrement balance, or ErrInsufficientCredits when the
	// balance was already exhausted.
	DecrementIfPositive(ctx context.Context, accountID string) (int64, error)

	// Create stores a new account. Returns ErrDuplicate on API key collision.
	Create(ctx context.Context, acct credit.Account) error

	// AddCredits tops up the balance out-of-band and returns the new balance.
	AddCredits(ctx context.Context, accountID string, amount int64) (int64, error)

	// List returns accounts with pagination.
	List(ctx context.Context, limit, offset int) ([]credit.Account, error)
}

// CatalogStore persists endpoint catalog entries.
type CatalogStore interface {
	// FindEntry retrieves the entry for a (path, method) pair.
	// Returns ErrNotFound when the endpoint has never been seen.
	FindEntry(ctx context.Context, path, method string) (catalog.Entry, error)

	// CreateEntry stores a new entry. The store enforces uniqueness on
	// (path, method) and returns ErrDuplicate when a concurrent creator won.
	CreateEntry(ctx context.Context, e catalog.Entry) error
}

// UsageStore persists the append-only usage log.
type UsageStore interface {
	// Insert appends one usage record.
	Insert(ctx context.Context, rec usage.Record) error

	// RecentByAccount returns the latest records for an account.
	RecentByAccount(ctx context.Context, accountID string, limit int) ([]usage.Record, error)

	// Summary returns aggregated usage for a period.
	Summary(ctx context.Context, accountID string, start, end time.Time) (usage.Summary, error)
}

// -----------------------------------------------------------------------------
// Event Ports
// -----------------------------------------------------------------------------

// UsageRecorder accepts completed calls for asynchronous bookkeeping.
// Recording must never block or fail the response path.
type UsageRecorder interface {
	// Record queues a completed call for processing. Non-blocking.
	Record(c usage.Call)

	// Flush waits until all queued calls have been processed.
	Flush(ctx context.Context) error

	// Close stops the recorder after draining queued calls.
	Close() error
}
