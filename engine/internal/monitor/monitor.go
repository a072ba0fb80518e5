// Package monitor polls the system clipboard and hands changed content to
// the ingestion pipeline. Change detection is hash-based and lives in the
// Monitor value, so independent monitors never share state.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/clipd/clipboard"
	"github.com/hazyhaar/clipd/engine/internal/classify"
)

// IngestFunc receives every changed snapshot. Errors are logged and do not
// stop the loop.
type IngestFunc func(ctx context.Context, snap clipboard.Snapshot) error

// Monitor watches one clipboard adapter.
type Monitor struct {
	adapter  clipboard.Adapter
	interval time.Duration
	ingest   IngestFunc
	log      *slog.Logger

	lastHash string
}

// New creates a monitor polling adapter every interval (default 1s).
func New(adapter clipboard.Adapter, interval time.Duration, ingest IngestFunc, log *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{adapter: adapter, interval: interval, ingest: ingest, log: log}
}

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("monitor: started", "interval", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor: stopped")
			return
		case <-ticker.C:
			m.poll(ctx)
		}
	}
}

// poll reads the clipboard once. Read errors count as no change; the hash
// advances on every detected change whether or not ingestion succeeds, so a
// persistently failing entry is not retried every tick.
func (m *Monitor) poll(ctx context.Context) {
	snap, err := m.adapter.Read(ctx)
	if err != nil {
		m.log.Debug("monitor: clipboard read failed", "error", err)
		return
	}
	if snap.Empty() {
		return
	}

	res, err := classify.Snapshot(snap)
	if err != nil {
		return
	}
	if res.Hash == m.lastHash {
		return
	}
	m.lastHash = res.Hash

	if err := m.ingest(ctx, snap); err != nil {
		m.log.Warn("monitor: ingest failed", "error", err, "hash", res.Hash)
	}
}
