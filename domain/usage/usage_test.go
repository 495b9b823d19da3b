package usage_test

import (
	"testing"
	"time"

	"github.com/creditgate/creditgate/domain/usage"
)

func TestNewRecord(t *testing.T) {
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	call := usage.Call{
		AccountID:  "acct-1",
		Path:       "/api/v1/example",
		Method:     "GET",
		StatusCode: 200,
		LatencyMs:  42,
	}

	rec := usage.NewRecord("rec-1", "ep-1", call, at)

	if rec.ID != "rec-1" || rec.EndpointID != "ep-1" {
		t.Errorf("ids not set: %+v", rec)
	}
	if rec.CreditsUsed != usage.CreditsPerRequest {
		t.Errorf("CreditsUsed = %d, want %d", rec.CreditsUsed, usage.CreditsPerRequest)
	}
	if rec.StatusCode != 200 || rec.LatencyMs != 42 {
		t.Errorf("call fields not carried: %+v", rec)
	}
}

func TestAggregate(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	mk := func(acct string, status int, latency int64, at time.Time) usage.Record {
		return usage.Record{
			AccountID:   acct,
			StatusCode:  status,
			LatencyMs:   latency,
			CreditsUsed: 1,
			CreatedAt:   at,
		}
	}

	records := []usage.Record{
		mk("acct-1", 200, 10, base.Add(1*time.Hour)),
		mk("acct-1", 404, 20, base.Add(2*time.Hour)),
		mk("acct-1", 500, 30, base.Add(3*time.Hour)),
		mk("acct-2", 200, 99, base.Add(1*time.Hour)),              // other account
		mk("acct-1", 200, 99, base.Add(-1*time.Hour)),             // before window
		mk("acct-1", 200, 99, base.Add(24*time.Hour)),             // at window end, excluded
		mk("acct-1", 200, 99, base.Add(24*time.Hour+time.Minute)), // after window
	}

	s := usage.Aggregate(records, "acct-1", base, base.Add(24*time.Hour))

	if s.RequestCount != 3 {
		t.Errorf("RequestCount = %d, want 3", s.RequestCount)
	}
	if s.CreditsSpent != 3 {
		t.Errorf("CreditsSpent = %d, want 3", s.CreditsSpent)
	}
	if s.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d, want 2 (404 and 500)", s.ErrorCount)
	}
	if s.AvgLatencyMs != 20 {
		t.Errorf("AvgLatencyMs = %d, want 20", s.AvgLatencyMs)
	}
}

func TestAggregate_Empty(t *testing.T) {
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s := usage.Aggregate(nil, "acct-1", base, base.Add(time.Hour))

	if s.RequestCount != 0 || s.CreditsSpent != 0 || s.AvgLatencyMs != 0 {
		t.Errorf("empty aggregate should be zero: %+v", s)
	}
}
