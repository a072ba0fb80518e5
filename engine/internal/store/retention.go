package store

import (
	"context"
	"fmt"
	"time"
)

// Prune enforces the retention policy. maxAge deletes rows created before
// now-maxAge; maxEntries keeps only the newest N rows. Zero values disable
// the respective rule. Returns the number of rows removed.
func (s *Store) Prune(ctx context.Context, maxAge time.Duration, maxEntries int) (int64, error) {
	var removed int64

	if maxAge > 0 {
		cutoff := time.Now().Add(-maxAge).UnixMilli()
		res, err := s.DB.ExecContext(ctx,
			`DELETE FROM clipboard_entries WHERE created_at < ?`, cutoff)
		if err != nil {
			return removed, fmt.Errorf("prune by age: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	if maxEntries > 0 {
		res, err := s.DB.ExecContext(ctx,
			`DELETE FROM clipboard_entries
			WHERE id NOT IN (
				SELECT id FROM clipboard_entries ORDER BY created_at DESC, id DESC LIMIT ?
			)`, maxEntries)
		if err != nil {
			return removed, fmt.Errorf("prune by count: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}

	return removed, nil
}
