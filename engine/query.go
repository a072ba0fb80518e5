package engine

import (
	"context"
	"errors"

	"github.com/hazyhaar/clipd/engine/internal/store"
)

// Entry and Stats are the engine's read types.
type (
	Entry = store.Entry
	Stats = store.Stats
)

// GetByID retrieves one entry and bumps its access accounting.
func (e *Engine) GetByID(ctx context.Context, id int64) (*Entry, error) {
	entry, err := e.store.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return entry, err
}

// Search runs a full-text query over history. Relevance order, recency as
// tiebreak. Does not touch access accounting.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]*Entry, error) {
	return e.store.Search(ctx, query, limit)
}

// Recent returns the newest entries, optionally filtered by content type.
func (e *Engine) Recent(ctx context.Context, limit int, contentType string) ([]*Entry, error) {
	return e.store.Recent(ctx, limit, contentType)
}

// URLEntries returns the newest URL-bearing entries.
func (e *Engine) URLEntries(ctx context.Context, limit int) ([]*Entry, error) {
	return e.store.URLEntries(ctx, limit)
}

// Stats returns aggregate history counters.
func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	return e.store.Stats(ctx)
}

// Delete removes one entry.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	err := e.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
