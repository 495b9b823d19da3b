// Package catalog provides the endpoint catalog value types. Entries identify
// one distinct (path, method) endpoint for reporting. All functions are pure.
package catalog

import (
	"strings"
	"time"
)

// Defaults applied to lazily created entries.
const (
	DefaultCategory = "general"
	DefaultStatus   = "active"
	DefaultVersion  = "v1"
)

// Entry represents one distinct (path, method) endpoint (immutable value type).
// At most one entry per (path, method) ever exists; entries are created lazily
// on first observed traffic and never mutated afterwards.
type Entry struct {
	ID          string
	Path        string
	Method      string
	Name        string
	Description string
	Category    string
	Status      string
	Version     string
	CreatedAt   time.Time
}

// DisplayName generates the default entry name, e.g. "GET /api/v1/example".
func DisplayName(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// New builds an entry for a previously unseen endpoint with generated metadata.
func New(id, path, method string, now time.Time) Entry {
	return Entry{
		ID:          id,
		Path:        path,
		Method:      strings.ToUpper(method),
		Name:        DisplayName(method, path),
		Description: "Auto-registered from live traffic",
		Category:    DefaultCategory,
		Status:      DefaultStatus,
		Version:     DefaultVersion,
		CreatedAt:   now,
	}
}
