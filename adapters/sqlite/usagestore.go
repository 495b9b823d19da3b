package sqlite

import (
	"context"
	"time"

	"github.com/creditgate/creditgate/domain/usage"
	"github.com/creditgate/creditgate/ports"
)

// UsageStore implements ports.UsageStore using SQLite.
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new SQLite usage store.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// Insert appends one usage record.
func (s *UsageStore) Insert(ctx context.Context, rec usage.Record) error {
	// Store timestamp in UTC for consistent querying
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (
			id, account_id, endpoint_id, path, method, status_code,
			response_time_ms, credits_used, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.AccountID, rec.EndpointID, rec.Path, rec.Method,
		rec.StatusCode, rec.LatencyMs, rec.CreditsUsed, rec.CreatedAt.UTC())
	return err
}

// RecentByAccount returns the latest records for an account, newest first.
func (s *UsageStore) RecentByAccount(ctx context.Context, accountID string, limit int) ([]usage.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, endpoint_id, path, method, status_code,
		       response_time_ms, credits_used, created_at
		FROM usage_records
		WHERE account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []usage.Record
	for rows.Next() {
		var r usage.Record
		err := rows.Scan(&r.ID, &r.AccountID, &r.EndpointID, &r.Path, &r.Method,
			&r.StatusCode, &r.LatencyMs, &r.CreditsUsed, &r.CreatedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summary returns aggregated usage for a period.
func (s *UsageStore) Summary(ctx context.Context, accountID string, start, end time.Time) (usage.Summary, error) {
	// Format times as ISO8601 strings for SQLite comparison
	startStr := start.UTC().Format("2006-01-02 15:04:05")
	endStr := end.UTC().Format("2006-01-02 15:04:05")
	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as request_count,
			COALESCE(SUM(credits_used), 0) as credits_spent,
			COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0) as error_count,
			CAST(COALESCE(AVG(response_time_ms), 0) AS INTEGER) as avg_latency
		FROM usage_records
		WHERE account_id = ? AND datetime(created_at) >= datetime(?) AND datetime(created_at) < datetime(?)
	`, accountID, startStr, endStr)

	summary := usage.Summary{
		AccountID:   accountID,
		PeriodStart: start,
		PeriodEnd:   end,
	}
	err := row.Scan(
		&summary.RequestCount,
		&summary.CreditsSpent,
		&summary.ErrorCount,
		&summary.AvgLatencyMs,
	)
	if err != nil {
		return usage.Summary{}, err
	}
	return summary, nil
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
