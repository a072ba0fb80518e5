package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// entryCols is the shared read column list. Blobs are reduced to a
// presence flag and NULLs collapse to zero values at the SQL layer.
const entryCols = `id, content_hash, content_type,
	COALESCE(content, ''), COALESCE(content_preview, ''),
	image_data IS NOT NULL, COALESCE(image_format, ''), COALESCE(image_size, ''),
	is_url, COALESCE(url_title, ''), COALESCE(url_description, ''),
	COALESCE(url_content, ''), COALESCE(url_status_code, 0), COALESCE(url_fetch_error, ''),
	COALESCE(source_app, ''), created_at, accessed_at, access_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*Entry, error) {
	var e Entry
	err := s.Scan(&e.ID, &e.ContentHash, &e.ContentType,
		&e.Content, &e.Preview,
		&e.HasImage, &e.ImageFormat, &e.ImageSize,
		&e.IsURL, &e.URLTitle, &e.URLDescription,
		&e.URLContent, &e.URLStatusCode, &e.URLFetchError,
		&e.SourceApp, &e.CreatedAt, &e.AccessedAt, &e.AccessCount)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertOrTouch inserts a new entry or, when the hash already exists,
// bumps its access accounting. A single statement keeps racing ingestions
// serialized on the content_hash uniqueness constraint. A touch never
// mutates identity, payload or enrichment fields.
func (s *Store) InsertOrTouch(ctx context.Context, e *NewEntry) (*UpsertResult, error) {
	now := time.Now().UnixMilli()
	row := s.DB.QueryRowContext(ctx,
		`INSERT INTO clipboard_entries
		(content_hash, content_type, content, content_preview, image_data,
		image_format, image_size, is_url, source_app, created_at, accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE SET
			accessed_at = excluded.accessed_at,
			access_count = access_count + 1
		RETURNING id, access_count, COALESCE(url_fetch_error, ''), COALESCE(url_status_code, 0)`,
		e.ContentHash, e.ContentType, nullString(e.Content), nullString(e.Preview),
		nullBytes(e.ImageData), nullString(e.ImageFormat), nullString(e.ImageSize),
		e.IsURL, nullString(e.SourceApp), now, now)

	var res UpsertResult
	if err := row.Scan(&res.ID, &res.AccessCount, &res.URLFetchError, &res.URLStatusCode); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	res.Created = res.AccessCount == 0
	return &res, nil
}

// GetByID retrieves one entry and bumps its access accounting in the
// same statement. Returns ErrNotFound when the id does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.DB.QueryRowContext(ctx,
		`UPDATE clipboard_entries
		SET accessed_at = ?, access_count = access_count + 1
		WHERE id = ?
		RETURNING `+entryCols,
		time.Now().UnixMilli(), id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return entry, nil
}

// SetEnrichment records a successful URL fetch. Clears any prior error.
func (s *Store) SetEnrichment(ctx context.Context, id int64, statusCode int, title, description, content string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE clipboard_entries
		SET url_status_code = ?, url_title = ?, url_description = ?,
			url_content = ?, url_fetch_error = NULL
		WHERE id = ?`,
		statusCode, nullString(title), nullString(description), nullString(content), id)
	if err != nil {
		return fmt.Errorf("set enrichment %d: %w", id, err)
	}
	return nil
}

// SetEnrichmentError records a failed URL fetch. Title, description and
// content from an earlier successful fetch are left intact.
func (s *Store) SetEnrichmentError(ctx context.Context, id int64, statusCode int, fetchErr string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE clipboard_entries
		SET url_fetch_error = ?, url_status_code = COALESCE(NULLIF(?, 0), url_status_code)
		WHERE id = ?`,
		fetchErr, statusCode, id)
	if err != nil {
		return fmt.Errorf("set enrichment error %d: %w", id, err)
	}
	return nil
}

// Delete removes one entry. Returns ErrNotFound when the id does not exist.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM clipboard_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
