package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/creditgate/creditgate/adapters/clock"
	"github.com/creditgate/creditgate/adapters/idgen"
	"github.com/creditgate/creditgate/adapters/memory"
	"github.com/creditgate/creditgate/app"
	"github.com/creditgate/creditgate/domain/usage"
)

type recorderFixture struct {
	catalog *memory.CatalogStore
	usage   *memory.UsageStore
	rec     *app.RecorderService
}

func newRecorderFixture(t *testing.T) *recorderFixture {
	t.Helper()

	f := &recorderFixture{
		catalog: memory.NewCatalogStore(),
		usage:   memory.NewUsageStore(),
	}
	f.rec = app.NewRecorderService(app.RecorderDeps{
		Catalog: f.catalog,
		Usage:   f.usage,
		Clock:   clock.NewFake(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
		IDGen:   idgen.NewSequential("id_"),
		Logger:  zerolog.Nop(),
	}, 64)
	t.Cleanup(func() { f.rec.Close() })
	return f
}

func flush(t *testing.T, rec *app.RecorderService) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestRecorderService_RecordsCallWithCatalogEntry(t *testing.T) {
	f := newRecorderFixture(t)

	f.rec.Record(usage.Call{
		AccountID:  "acct-1",
		Path:       "/api/v1/example",
		Method:     "GET",
		StatusCode: 200,
		LatencyMs:  12,
	})
	flush(t, f.rec)

	records := f.usage.GetAll()
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}

	r := records[0]
	if r.AccountID != "acct-1" || r.Path != "/api/v1/example" || r.StatusCode != 200 {
		t.Errorf("record = %+v", r)
	}
	if r.CreditsUsed != 1 {
		t.Errorf("CreditsUsed = %d, want 1", r.CreditsUsed)
	}
	if r.EndpointID == "" {
		t.Error("record must reference a catalog entry")
	}

	entry, err := f.catalog.FindEntry(context.Background(), "/api/v1/example", "GET")
	if err != nil {
		t.Fatalf("catalog entry not created: %v", err)
	}
	if entry.ID != r.EndpointID {
		t.Errorf("EndpointID = %q, want %q", r.EndpointID, entry.ID)
	}
	if entry.Name != "GET /api/v1/example" {
		t.Errorf("entry name = %q", entry.Name)
	}
}

func TestRecorderService_ReusesExistingEntry(t *testing.T) {
	f := newRecorderFixture(t)

	for i := 0; i < 5; i++ {
		f.rec.Record(usage.Call{AccountID: "acct-1", Path: "/api/v1/example", Method: "GET", StatusCode: 200})
	}
	flush(t, f.rec)

	if f.catalog.Len() != 1 {
		t.Errorf("catalog entries = %d, want 1", f.catalog.Len())
	}
	if len(f.usage.GetAll()) != 5 {
		t.Errorf("records = %d, want 5", len(f.usage.GetAll()))
	}
}

func TestRecorderService_DistinctMethodsGetDistinctEntries(t *testing.T) {
	f := newRecorderFixture(t)

	f.rec.Record(usage.Call{AccountID: "a", Path: "/api/v1/example", Method: "GET", StatusCode: 200})
	f.rec.Record(usage.Call{AccountID: "a", Path: "/api/v1/example", Method: "POST", StatusCode: 200})
	flush(t, f.rec)

	if f.catalog.Len() != 2 {
		t.Errorf("catalog entries = %d, want 2", f.catalog.Len())
	}
}

func TestRecorderService_CatalogFailureSkipsRecord(t *testing.T) {
	f := newRecorderFixture(t)
	f.catalog.FailWith(errors.New("catalog down"))

	f.rec.Record(usage.Call{AccountID: "acct-1", Path: "/x", Method: "GET", StatusCode: 200})
	flush(t, f.rec)

	// No record is written under a missing endpoint id.
	if got := len(f.usage.GetAll()); got != 0 {
		t.Errorf("records = %d, want 0", got)
	}
}

func TestRecorderService_InsertFailureIsSwallowed(t *testing.T) {
	f := newRecorderFixture(t)
	f.usage.FailWith(errors.New("disk full"))

	f.rec.Record(usage.Call{AccountID: "acct-1", Path: "/x", Method: "GET", StatusCode: 200})
	flush(t, f.rec)

	// The failure must not propagate; later calls still work.
	f.usage.FailWith(nil)
	f.rec.Record(usage.Call{AccountID: "acct-1", Path: "/x", Method: "GET", StatusCode: 200})
	flush(t, f.rec)

	if got := len(f.usage.GetAll()); got != 1 {
		t.Errorf("records = %d, want 1", got)
	}
}

func TestRecorderService_ConcurrentFirstTrafficCreatesOneEntry(t *testing.T) {
	// Bypass the single-worker serialization by racing resolve through
	// many recorders sharing one catalog.
	catalogStore := memory.NewCatalogStore()
	usageStore := memory.NewUsageStore()

	const workers = 8
	var recs []*app.RecorderService
	for i := 0; i < workers; i++ {
		recs = append(recs, app.NewRecorderService(app.RecorderDeps{
			Catalog: catalogStore,
			Usage:   usageStore,
			Clock:   clock.Real{},
			IDGen:   idgen.UUID{},
			Logger:  zerolog.Nop(),
		}, 8))
	}

	var wg sync.WaitGroup
	for _, r := range recs {
		wg.Add(1)
		go func(r *app.RecorderService) {
			defer wg.Done()
			r.Record(usage.Call{AccountID: "a", Path: "/api/v1/example", Method: "GET", StatusCode: 200})
		}(r)
	}
	wg.Wait()

	for _, r := range recs {
		if err := r.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	if catalogStore.Len() != 1 {
		t.Errorf("catalog entries = %d, want exactly 1", catalogStore.Len())
	}
	if got := len(usageStore.GetAll()); got != workers {
		t.Errorf("records = %d, want %d (losers re-read the winning entry)", got, workers)
	}
}

func TestRecorderService_CloseDrainsQueue(t *testing.T) {
	catalogStore := memory.NewCatalogStore()
	usageStore := memory.NewUsageStore()
	rec := app.NewRecorderService(app.RecorderDeps{
		Catalog: catalogStore,
		Usage:   usageStore,
		Clock:   clock.Real{},
		IDGen:   idgen.NewSequential("id_"),
		Logger:  zerolog.Nop(),
	}, 128)

	for i := 0; i < 50; i++ {
		rec.Record(usage.Call{AccountID: "a", Path: "/x", Method: "GET", StatusCode: 200})
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got := len(usageStore.GetAll()); got != 50 {
		t.Errorf("records after close = %d, want 50", got)
	}
}
