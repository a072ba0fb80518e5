// Package enrich turns URL-bearing entries into titled, summarised,
// searchable content. Jobs arrive on a vtq queue published by ingestion;
// a pool of workers claims them, fetches the page, extracts title,
// description and main text, and writes the result back to the entry.
//
// Fetch failures are data, not faults: they are recorded on the entry
// (url_fetch_error) and the job is acked. Only write-back failures nack
// so the visibility timeout redelivers the job.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/clipd/engine/internal/fetch"
	"github.com/hazyhaar/clipd/engine/internal/store"
	"github.com/hazyhaar/clipd/extract"
	"github.com/hazyhaar/clipd/vtq"
)

// Job is the queue payload linking an entry to the URL to fetch.
type Job struct {
	EntryID int64  `json:"entry_id"`
	URL     string `json:"url"`
}

// Options configure the worker pool.
type Options struct {
	Workers      int           // default 3
	FetchTimeout time.Duration // per-job deadline, default 30s
	Fetcher      *fetch.Fetcher
	Logger       *slog.Logger
}

// Pool runs N claim loops over a shared queue.
type Pool struct {
	queue   *vtq.Q
	store   *store.Store
	fetcher *fetch.Fetcher
	workers int
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewPool(q *vtq.Q, st *store.Store, opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Fetcher == nil {
		opts.Fetcher = fetch.New(fetch.Options{Timeout: opts.FetchTimeout})
	}
	return &Pool{
		queue:   q,
		store:   st,
		fetcher: opts.Fetcher,
		workers: opts.Workers,
		timeout: opts.FetchTimeout,
		log:     opts.Logger,
	}
}

// Start launches the workers. They stop when ctx is cancelled; Wait blocks
// until all of them have returned.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(worker int) {
			defer p.wg.Done()
			p.log.Debug("enrich: worker started", "worker", worker)
			p.queue.Run(ctx, p.handle)
		}(i)
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// handle processes one claimed job. A non-nil return nacks the job for
// redelivery; recorded fetch failures return nil.
func (p *Pool) handle(ctx context.Context, job *vtq.Job) error {
	var j Job
	if err := json.Unmarshal(job.Payload, &j); err != nil {
		// Malformed payload can never succeed; ack it away.
		p.log.Error("enrich: dropping malformed job", "id", job.ID, "error", err)
		return nil
	}

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res, err := p.fetcher.Fetch(fctx, j.URL)
	if err != nil {
		status := 0
		if res != nil {
			status = res.StatusCode
		}
		p.log.Info("enrich: fetch failed", "entry", j.EntryID, "url", j.URL,
			"status", status, "error", err)
		if werr := p.store.SetEnrichmentError(ctx, j.EntryID, status, err.Error()); werr != nil {
			return fmt.Errorf("record fetch failure: %w", werr)
		}
		return nil
	}

	page, err := extract.FromHTML(res.Body, extract.Options{})
	if err != nil {
		p.log.Info("enrich: extraction failed", "entry", j.EntryID, "url", j.URL, "error", err)
		if werr := p.store.SetEnrichmentError(ctx, j.EntryID, res.StatusCode, "extraction failed: "+err.Error()); werr != nil {
			return fmt.Errorf("record extraction failure: %w", werr)
		}
		return nil
	}

	content := page.Markdown
	if content == "" {
		content = page.Text
	}
	if err := p.store.SetEnrichment(ctx, j.EntryID, res.StatusCode,
		page.Title, page.Description, content); err != nil {
		return fmt.Errorf("write enrichment: %w", err)
	}

	p.log.Debug("enrich: entry enriched", "entry", j.EntryID,
		"status", res.StatusCode, "title", page.Title)
	return nil
}
