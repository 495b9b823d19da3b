// Package usage provides usage record types and aggregation functions.
// All functions are pure - no side effects.
package usage

import "time"

// CreditsPerRequest is the fixed charge for one authorized request.
const CreditsPerRequest int64 = 1

// Call describes one completed, authorized request as observed by the
// pipeline, before catalog resolution (immutable value type).
type Call struct {
	AccountID  string
	Path       string
	Method     string
	StatusCode int
	LatencyMs  int64
}

// Record is one append-only usage row. A record exists for a request if and
// only if that request cleared the credit gate.
type Record struct {
	ID          string
	AccountID   string
	EndpointID  string
	Path        string
	Method      string
	StatusCode  int
	LatencyMs   int64
	CreditsUsed int64
	CreatedAt   time.Time
}

// NewRecord builds a record for a completed call with the fixed per-request
// charge.
func NewRecord(id, endpointID string, c Call, at time.Time) Record {
	return Record{
		ID:          id,
		AccountID:   c.AccountID,
		EndpointID:  endpointID,
		Path:        c.Path,
		Method:      c.Method,
		StatusCode:  c.StatusCode,
		LatencyMs:   c.LatencyMs,
		CreditsUsed: CreditsPerRequest,
		CreatedAt:   at,
	}
}

// Summary represents aggregated usage for a period (value type).
type Summary struct {
	AccountID    string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	RequestCount int64
	CreditsSpent int64
	ErrorCount   int64 // 4xx + 5xx responses
	AvgLatencyMs int64
}

// Aggregate folds records into a summary for the given period. Records outside
// [start, end) are ignored.
func Aggregate(records []Record, accountID string, start, end time.Time) Summary {
	s := Summary{
		AccountID:   accountID,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	var totalLatency int64
	for _, r := range records {
		if r.AccountID != accountID {
			continue
		}
		if r.CreatedAt.Before(start) || !r.CreatedAt.Before(end) {
			continue
		}
		s.RequestCount++
		s.CreditsSpent += r.CreditsUsed
		totalLatency += r.LatencyMs
		if r.StatusCode >= 400 {
			s.ErrorCount++
		}
	}

	if s.RequestCount > 0 {
		s.AvgLatencyMs = totalLatency / s.RequestCount
	}
	return s
}
