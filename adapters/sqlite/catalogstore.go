package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/creditgate/creditgate/domain/catalog"
	"github.com/creditgate/creditgate/ports"
)

// CatalogStore implements ports.CatalogStore using SQLite.
type CatalogStore struct {
	db *DB
}

// NewCatalogStore creates a new SQLite catalog store.
func NewCatalogStore(db *DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// FindEntry retrieves the entry for a (path, method) pair.
func (s *CatalogStore) FindEntry(ctx context.Context, path, method string) (catalog.Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, path, method, name, description, category, status, version, created_at
		FROM endpoint_catalog
		WHERE path = ? AND method = ?
	`, path, strings.ToUpper(method))

	var e catalog.Entry
	err := row.Scan(&e.ID, &e.Path, &e.Method, &e.Name, &e.Description,
		&e.Category, &e.Status, &e.Version, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Entry{}, ports.ErrNotFound
	}
	if err != nil {
		return catalog.Entry{}, err
	}
	return e, nil
}

// CreateEntry stores a new entry. The UNIQUE(path, method) constraint makes
// concurrent first-traffic creators race safely; losers get ErrDuplicate.
func (s *CatalogStore) CreateEntry(ctx context.Context, e catalog.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO endpoint_catalog (id, path, method, name, description, category, status, version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Path, e.Method, e.Name, e.Description, e.Category, e.Status, e.Version, e.CreatedAt.UTC())
	if isUniqueViolation(err) {
		return ports.ErrDuplicate
	}
	return err
}

// Ensure interface compliance.
var _ ports.CatalogStore = (*CatalogStore)(nil)
