// Package store is the data access layer for clipboard history.
//
// The store receives an already-opened *sql.DB (see dbopen) and owns the
// clipboard_entries table plus its FTS5 shadow index. All timestamps are
// unix milliseconds.
package store

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when an entry id does not exist.
var ErrNotFound = errors.New("store: entry not found")

// Store wraps the history database.
type Store struct {
	DB *sql.DB
}

// New creates a Store from an already-opened database connection.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// nullString maps "" to NULL so unset text columns stay distinguishable
// from empty ones.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
