package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/creditgate/creditgate/domain/credit"
	"github.com/creditgate/creditgate/ports"
)

// AccountStore implements ports.AccountStore using SQLite.
type AccountStore struct {
	db    *DB
	clock ports.Clock
}

// NewAccountStore creates a new SQLite account store.
func NewAccountStore(db *DB, clock ports.Clock) *AccountStore {
	return &AccountStore{db: db, clock: clock}
}

const accountColumns = "id, email, api_key, credits, created_at, updated_at"

// GetByKey retrieves the account owning an API key.
func (s *AccountStore) GetByKey(ctx context.Context, apiKey string) (credit.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE api_key = ?
	`, apiKey)
	return scanAccount(row)
}

// Get retrieves an account by ID.
func (s *AccountStore) Get(ctx context.Context, id string) (credit.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = ?
	`, id)
	return scanAccount(row)
}

// DecrementIfPositive atomically removes one credit. The condition lives in the
// UPDATE itself, so two racing requests can never both spend the last credit.
func (s *AccountStore) DecrementIfPositive(ctx context.Context, accountID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET credits = credits - 1, updated_at = ?
		WHERE id = ? AND credits > 0
	`, s.clock.Now().UTC(), accountID)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		// Either the account is gone or the balance hit zero. Distinguish so
		// the gate can answer 402 rather than 401.
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id = ?", accountID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ports.ErrNotFound
		}
		if err != nil {
			return 0, err
		}
		return 0, ports.ErrInsufficientCredits
	}

	var balance int64
	if err := tx.QueryRowContext(ctx, "SELECT credits FROM accounts WHERE id = ?", accountID).Scan(&balance); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

// Create stores a new account.
func (s *AccountStore) Create(ctx context.Context, acct credit.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, api_key, credits, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, acct.ID, acct.Email, acct.APIKey, acct.Credits, acct.CreatedAt.UTC(), acct.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return ports.ErrDuplicate
	}
	return err
}

// AddCredits tops up the balance and returns the new balance.
func (s *AccountStore) AddCredits(ctx context.Context, accountID string, amount int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET credits = credits + ?, updated_at = ?
		WHERE id = ?
	`, amount, s.clock.Now().UTC(), accountID)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if rows == 0 {
		return 0, ports.ErrNotFound
	}

	var balance int64
	if err := tx.QueryRowContext(ctx, "SELECT credits FROM accounts WHERE id = ?", accountID).Scan(&balance); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

// List returns accounts with pagination.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]credit.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		ORDER BY created_at
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []credit.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (credit.Account, error) {
	var a credit.Account
	err := row.Scan(&a.ID, &a.Email, &a.APIKey, &a.Credits, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return credit.Account{}, ports.ErrNotFound
	}
	if err != nil {
		return credit.Account{}, err
	}
	return a, nil
}

// Ensure interface compliance.
var _ ports.AccountStore = (*AccountStore)(nil)
