package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/creditgate/creditgate/domain/catalog"
	"github.com/creditgate/creditgate/domain/usage"
	"github.com/creditgate/creditgate/ports"
	"github.com/rs/zerolog"
)

// RecorderService consumes completed calls off the response path, resolves
// their catalog entry and appends a usage record. Failures are logged and
// swallowed: the credit is already charged and stays charged.
type RecorderService struct {
	catalog ports.CatalogStore
	usage   ports.UsageStore
	clock   ports.Clock
	idGen   ports.IDGenerator
	logger  zerolog.Logger

	queue     chan usage.Call
	pending   atomic.Int64
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// RecorderDeps contains dependencies for RecorderService.
type RecorderDeps struct {
	Catalog ports.CatalogStore
	Usage   ports.UsageStore
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  zerolog.Logger
}

// storeTimeout bounds each bookkeeping write. A timed-out write is a swallowed
// error, never a retry.
const storeTimeout = 10 * time.Second

// NewRecorderService creates a recorder and starts its worker.
func NewRecorderService(deps RecorderDeps, queueSize int) *RecorderService {
	if queueSize <= 0 {
		queueSize = 1024
	}

	r := &RecorderService{
		catalog: deps.Catalog,
		usage:   deps.Usage,
		clock:   deps.Clock,
		idGen:   deps.IDGen,
		logger:  deps.Logger,
		queue:   make(chan usage.Call, queueSize),
		stopCh:  make(chan struct{}),
	}

	r.wg.Add(1)
	go r.loop()

	return r
}

// Record queues a completed call. Non-blocking: when the queue is full the
// call is dropped with a warning.
func (r *RecorderService) Record(c usage.Call) {
	select {
	case r.queue <- c:
		r.pending.Add(1)
	default:
		r.logger.Warn().
			Str("account_id", c.AccountID).
			Str("path", c.Path).
			Msg("usage queue full, dropping record")
	}
}

// Flush waits until every queued call has been processed.
func (r *RecorderService) Flush(ctx context.Context) error {
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()

	for {
		if r.pending.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// Close stops the worker after draining queued calls.
func (r *RecorderService) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
	})
	return nil
}

func (r *RecorderService) loop() {
	defer r.wg.Done()

	for {
		select {
		case c := <-r.queue:
			r.process(c)
		case <-r.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case c := <-r.queue:
					r.process(c)
				default:
					return
				}
			}
		}
	}
}

// process runs on a background context: a caller disconnecting early must not
// prevent the record from being written, since the credit was already charged.
func (r *RecorderService) process(c usage.Call) {
	defer r.pending.Add(-1)

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	entry, err := r.resolveEntry(ctx, c.Path, c.Method)
	if err != nil {
		// No usage record is written under a missing endpoint id.
		r.logger.Error().Err(err).
			Str("path", c.Path).
			Str("method", c.Method).
			Msg("catalog resolve failed, skipping usage record")
		return
	}

	rec := usage.NewRecord(r.idGen.New(), entry.ID, c, r.clock.Now())
	if err := r.usage.Insert(ctx, rec); err != nil {
		r.logger.Error().Err(err).
			Str("account_id", c.AccountID).
			Str("endpoint_id", entry.ID).
			Msg("usage insert failed")
	}
}

// resolveEntry finds or lazily creates the catalog entry for an endpoint.
// Under concurrent first use the store's uniqueness constraint picks a single
// winner; losers fall back to re-reading the surviving entry.
func (r *RecorderService) resolveEntry(ctx context.Context, path, method string) (catalog.Entry, error) {
	entry, err := r.catalog.FindEntry(ctx, path, method)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, ports.ErrNotFound) {
		return catalog.Entry{}, err
	}

	entry = catalog.New(r.idGen.New(), path, method, r.clock.Now())
	err = r.catalog.CreateEntry(ctx, entry)
	if err == nil {
		return entry, nil
	}
	if errors.Is(err, ports.ErrDuplicate) {
		return r.catalog.FindEntry(ctx, path, method)
	}
	return catalog.Entry{}, err
}

// Ensure interface compliance.
var _ ports.UsageRecorder = (*RecorderService)(nil)
