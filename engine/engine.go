// Package engine ties clipboard capture, deduplicated storage, URL
// enrichment and querying together behind one orchestrator. Front ends
// (MCP tools, the optional HTTP surface) are thin layers over Engine
// methods.
package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/clipd/clipboard"
	"github.com/hazyhaar/clipd/dbopen"
	"github.com/hazyhaar/clipd/engine/internal/classify"
	"github.com/hazyhaar/clipd/engine/internal/enrich"
	"github.com/hazyhaar/clipd/engine/internal/fetch"
	"github.com/hazyhaar/clipd/engine/internal/monitor"
	"github.com/hazyhaar/clipd/engine/internal/store"
	"github.com/hazyhaar/clipd/idgen"
	"github.com/hazyhaar/clipd/vtq"
)

const (
	enrichQueue       = "enrich"
	retentionInterval = 10 * time.Minute
	maxFetchAttempts  = 5
)

// Engine is the clipboard history orchestrator.
type Engine struct {
	cfg     *Config
	log     *slog.Logger
	adapter clipboard.Adapter

	db     *sql.DB
	ownsDB bool
	store  *store.Store
	queue  *vtq.Q
	pool   *enrich.Pool

	newID        func() string
	allowPrivate bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option customises Engine construction.
type Option func(*Engine)

// WithDB uses an already-opened database instead of opening cfg.DBPath.
// The caller keeps ownership and closes it.
func WithDB(db *sql.DB) Option {
	return func(e *Engine) { e.db = db }
}

// WithIDGen overrides job ID generation.
func WithIDGen(f func() string) Option {
	return func(e *Engine) { e.newID = f }
}

// WithAllowPrivateURLs disables SSRF filtering on enrichment fetches, for
// setups that copy intranet links and want them enriched anyway.
func WithAllowPrivateURLs() Option {
	return func(e *Engine) { e.allowPrivate = true }
}

// New builds an Engine. Start must be called before the monitor and the
// enrichment workers do anything; query methods work immediately.
func New(cfg *Config, adapter clipboard.Adapter, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:     cfg,
		log:     logger,
		adapter: adapter,
		newID:   idgen.Prefixed("job_", idgen.Default),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.db == nil {
		db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll(), dbopen.WithSchema(store.Schema))
		if err != nil {
			return nil, fmt.Errorf("open history db: %w", err)
		}
		e.db = db
		e.ownsDB = true
	} else if err := store.ApplySchema(e.db); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	e.store = store.New(e.db)
	e.queue = vtq.New(e.db, vtq.Options{
		Queue:        enrichQueue,
		Capacity:     cfg.QueueDepth,
		PollInterval: cfg.PollInterval,
		MaxAttempts:  maxFetchAttempts,
		Logger:       logger,
	})
	if err := e.queue.EnsureTable(context.Background()); err != nil {
		if e.ownsDB {
			e.db.Close()
		}
		return nil, fmt.Errorf("ensure queue table: %w", err)
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:      cfg.Fetch.Timeout,
		MaxBody:      cfg.Fetch.MaxBytes,
		UserAgent:    cfg.Fetch.UserAgent,
		AllowPrivate: e.allowPrivate,
	})
	e.pool = enrich.NewPool(e.queue, e.store, enrich.Options{
		Workers:      cfg.Workers,
		FetchTimeout: cfg.Fetch.Timeout,
		Fetcher:      fetcher,
		Logger:       logger,
	})
	return e, nil
}

// Start launches the monitor loop, the enrichment workers and, when
// configured, the retention sweeper. They stop when ctx is cancelled.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)

	e.pool.Start(ctx)

	mon := monitor.New(e.adapter, e.cfg.PollInterval, func(ctx context.Context, snap clipboard.Snapshot) error {
		_, err := e.Ingest(ctx, snap, "")
		return err
	}, e.log)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		mon.Run(ctx)
	}()

	if e.cfg.Retention.Enabled() {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.retentionLoop(ctx)
		}()
	}
}

// Close stops all background work and releases the database if the engine
// opened it.
func (e *Engine) Close() error {
	if e.cancel != nil {
		e.cancel()
	}
	e.pool.Wait()
	e.wg.Wait()
	if e.ownsDB {
		return e.db.Close()
	}
	return nil
}

// EntryRef identifies the outcome of one ingestion.
type EntryRef struct {
	ID      int64  `json:"id"`
	Hash    string `json:"content_hash"`
	Created bool   `json:"created"`
}

// Ingest classifies a snapshot and stores it, deduplicating on content
// hash. URL-bearing entries get an enrichment job; a touched entry whose
// previous fetch failed is rescheduled. A full queue drops the job and the
// ingestion still succeeds.
func (e *Engine) Ingest(ctx context.Context, snap clipboard.Snapshot, sourceApp string) (*EntryRef, error) {
	res, err := classify.Snapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}

	up, err := e.store.InsertOrTouch(ctx, &store.NewEntry{
		ContentHash: res.Hash,
		ContentType: string(res.Kind),
		Content:     res.Content,
		Preview:     res.Preview,
		ImageData:   res.ImageData,
		ImageFormat: res.ImageFormat,
		ImageSize:   res.ImageSize,
		IsURL:       res.IsURL,
		SourceApp:   sourceApp,
	})
	if err != nil {
		return nil, err
	}

	if res.DetectedURL != "" && (up.Created || up.URLFetchError != "") {
		e.scheduleEnrichment(ctx, up.ID, res.DetectedURL)
	}

	if up.Created {
		e.log.Info("entry stored", "id", up.ID, "type", res.Kind, "is_url", res.IsURL)
	} else {
		e.log.Debug("entry touched", "id", up.ID, "access_count", up.AccessCount)
	}
	return &EntryRef{ID: up.ID, Hash: res.Hash, Created: up.Created}, nil
}

func (e *Engine) scheduleEnrichment(ctx context.Context, entryID int64, url string) {
	payload, err := json.Marshal(enrich.Job{EntryID: entryID, URL: url})
	if err != nil {
		e.log.Error("marshal enrichment job", "entry", entryID, "error", err)
		return
	}
	switch err := e.queue.Publish(ctx, e.newID(), payload); {
	case errors.Is(err, vtq.ErrQueueFull):
		e.log.Warn("enrichment queue full, dropping job", "entry", entryID, "url", url)
	case err != nil:
		e.log.Error("publish enrichment job", "entry", entryID, "error", err)
	}
}

func (e *Engine) retentionLoop(ctx context.Context) {
	e.prune(ctx)
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.prune(ctx)
		}
	}
}

func (e *Engine) prune(ctx context.Context) {
	n, err := e.store.Prune(ctx, e.cfg.Retention.MaxAge, e.cfg.Retention.MaxEntries)
	if err != nil {
		e.log.Warn("retention prune failed", "error", err)
		return
	}
	if n > 0 {
		e.log.Info("retention pruned entries", "removed", n)
	}
}
