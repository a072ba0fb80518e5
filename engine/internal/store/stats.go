package store

import (
	"context"
	"fmt"
	"time"
)

// Stats returns aggregate counters over the history. Pending enrichment
// counts URL entries that have neither a status code nor a recorded error.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByType: map[string]int64{}}

	dayAgo := time.Now().Add(-24 * time.Hour).UnixMilli()
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(is_url), 0),
			COALESCE(SUM(CASE WHEN is_url = 1 AND url_status_code IS NULL AND url_fetch_error IS NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN url_fetch_error IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(LENGTH(COALESCE(content, '')) + LENGTH(COALESCE(image_data, '')) + LENGTH(COALESCE(url_content, ''))), 0),
			COALESCE(MIN(created_at), 0),
			COALESCE(MAX(created_at), 0)
		FROM clipboard_entries`, dayAgo).Scan(
		&st.TotalEntries, &st.URLEntries, &st.PendingEnrichment,
		&st.ErroredEnrichment, &st.EntriesLast24h, &st.ApproxBytes,
		&st.OldestCreatedAt, &st.NewestCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT content_type, COUNT(*) FROM clipboard_entries GROUP BY content_type`)
	if err != nil {
		return nil, fmt.Errorf("stats by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		st.ByType[kind] = n
	}
	return st, rows.Err()
}
