package store

import (
	"context"
	"fmt"
	"strings"
)

// sanitizeFTSQuery rewrites free-form user input into quoted prefix tokens
// so FTS5 operator characters cannot break the MATCH expression.
// `hello wor` becomes `"hello"* "wor"*`. Returns "" when nothing survives.
func sanitizeFTSQuery(q string) string {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		switch r {
		case '"', '\'', '(', ')', '*', ':', '^', '-', '+', '~', '{', '}', '[', ']':
			return true
		}
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	toks := make([]string, 0, len(fields))
	for _, f := range fields {
		toks = append(toks, `"`+f+`"*`)
	}
	return strings.Join(toks, " ")
}

// Search runs a full-text query over content, url_title, url_description and
// url_content. Results keep FTS5 relevance order with recency as tiebreak.
// Read-only: access accounting is not touched.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	match := sanitizeFTSQuery(query)
	if match == "" {
		return s.searchLike(ctx, query, limit)
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+entryCols+`
		FROM clipboard_entries
		JOIN (SELECT rowid, rank FROM entries_fts WHERE entries_fts MATCH ? ORDER BY rank LIMIT ?) m
			ON clipboard_entries.id = m.rowid
		ORDER BY m.rank, created_at DESC, clipboard_entries.id DESC`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// searchLike is the fallback when the query sanitizes to nothing useful
// for FTS5 (pure punctuation input).
func (s *Store) searchLike(ctx context.Context, query string, limit int) ([]*Entry, error) {
	pat := "%" + strings.TrimSpace(query) + "%"
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+entryCols+`
		FROM clipboard_entries
		WHERE content LIKE ? OR url_title LIKE ? OR url_description LIKE ? OR url_content LIKE ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, pat, pat, pat, pat, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// Recent returns the newest entries, optionally filtered by content type.
func (s *Store) Recent(ctx context.Context, limit int, contentType string) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + entryCols + ` FROM clipboard_entries`
	args := []any{}
	if contentType != "" {
		q += ` WHERE content_type = ?`
		args = append(args, contentType)
	}
	// created_at has millisecond resolution, so back-to-back inserts can tie;
	// id breaks the tie in insertion order.
	q += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// URLEntries returns the newest URL-bearing entries.
func (s *Store) URLEntries(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+entryCols+`
		FROM clipboard_entries
		WHERE is_url = 1
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("url entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

type queryRows interface {
	rowScanner
	Next() bool
	Err() error
}

func collectEntries(rows queryRows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
