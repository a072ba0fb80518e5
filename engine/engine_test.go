package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hazyhaar/clipd/clipboard"
	"github.com/hazyhaar/clipd/dbopen"
	_ "modernc.org/sqlite"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testEngine(t *testing.T, cfg *Config) (*Engine, *clipboard.Memory) {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Millisecond
	}
	cb := clipboard.NewMemory()
	eng, err := New(cfg, cb, quietLogger(),
		WithDB(dbopen.OpenMemory(t)), WithAllowPrivateURLs())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng, cb
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestIngestDedup(t *testing.T) {
	eng, _ := testEngine(t, nil)
	ctx := context.Background()

	first, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "same text"}, "app")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Created {
		t.Error("first ingest should create")
	}

	second, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "same text"}, "other")
	if err != nil {
		t.Fatal(err)
	}
	if second.Created {
		t.Error("duplicate ingest should touch, not create")
	}
	if second.ID != first.ID || second.Hash != first.Hash {
		t.Errorf("refs diverged: %+v vs %+v", first, second)
	}
}

func TestIngestInvalidContent(t *testing.T) {
	eng, _ := testEngine(t, nil)
	_, err := eng.Ingest(context.Background(), clipboard.Snapshot{}, "")
	if !errors.Is(err, ErrInvalidContent) {
		t.Errorf("got %v, want ErrInvalidContent", err)
	}
}

func TestIngestSchedulesEnrichment(t *testing.T) {
	eng, _ := testEngine(t, nil)
	ctx := context.Background()

	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "https://example.com/page"}, ""); err != nil {
		t.Fatal(err)
	}
	n, err := eng.queue.Len(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("queue depth: got %d, want 1", n)
	}

	// Plain text does not enqueue.
	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "no links here"}, ""); err != nil {
		t.Fatal(err)
	}
	n, _ = eng.queue.Len(ctx)
	if n != 1 {
		t.Errorf("queue depth after text: got %d, want 1", n)
	}
}

func TestIngestRetriesFailedEnrichmentOnTouch(t *testing.T) {
	// WHAT: Recopying a URL whose fetch failed reschedules the job; one
	// whose fetch succeeded does not.
	eng, _ := testEngine(t, nil)
	ctx := context.Background()

	ref, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "https://example.com/flaky"}, "")
	if err != nil {
		t.Fatal(err)
	}
	// Drain the initial job and mark the fetch failed.
	job, err := eng.queue.Claim(ctx)
	if err != nil || job == nil {
		t.Fatalf("claim: %v %v", job, err)
	}
	eng.queue.Ack(ctx, job.ID)
	if err := eng.store.SetEnrichmentError(ctx, ref.ID, 0, "connection refused"); err != nil {
		t.Fatal(err)
	}

	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "https://example.com/flaky"}, ""); err != nil {
		t.Fatal(err)
	}
	n, _ := eng.queue.Len(ctx)
	if n != 1 {
		t.Errorf("failed entry not rescheduled: queue depth %d", n)
	}

	// Successful enrichment: no retry on further touches.
	job, _ = eng.queue.Claim(ctx)
	eng.queue.Ack(ctx, job.ID)
	if err := eng.store.SetEnrichment(ctx, ref.ID, 200, "T", "", "C"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "https://example.com/flaky"}, ""); err != nil {
		t.Fatal(err)
	}
	n, _ = eng.queue.Len(ctx)
	if n != 0 {
		t.Errorf("enriched entry rescheduled: queue depth %d", n)
	}
}

func TestIngestSurvivesFullQueue(t *testing.T) {
	eng, _ := testEngine(t, &Config{QueueDepth: 1})
	ctx := context.Background()

	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "https://example.com/one"}, ""); err != nil {
		t.Fatal(err)
	}
	ref, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "https://example.com/two"}, "")
	if err != nil {
		t.Fatalf("ingest with full queue must still succeed: %v", err)
	}
	if !ref.Created {
		t.Error("entry should have been stored despite the dropped job")
	}
	n, _ := eng.queue.Len(ctx)
	if n != 1 {
		t.Errorf("queue depth: got %d, want 1", n)
	}
}

func TestCopyToClipboard(t *testing.T) {
	eng, cb := testEngine(t, nil)
	ctx := context.Background()

	ref, err := eng.CopyToClipboard(ctx, "shared snippet")
	if err != nil {
		t.Fatal(err)
	}
	if writes := cb.Writes(); len(writes) != 1 || writes[0] != "shared snippet" {
		t.Errorf("adapter writes: %v", writes)
	}
	entry, err := eng.GetByID(ctx, ref.ID)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Content != "shared snippet" || entry.SourceApp != "clipd" {
		t.Errorf("stored entry: %+v", entry)
	}

	if _, err := eng.CopyToClipboard(ctx, ""); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("empty copy: got %v, want ErrInvalidContent", err)
	}

	cb.FailWrites(errors.New("clipboard locked"))
	if _, err := eng.CopyToClipboard(ctx, "doomed"); !errors.Is(err, ErrAdapter) {
		t.Errorf("failed write: got %v, want ErrAdapter", err)
	}
	// A failed write never reaches history.
	hits, _ := eng.Search(ctx, "doomed", 10)
	if len(hits) != 0 {
		t.Error("failed copy was stored")
	}
}

func TestClipboardInfo(t *testing.T) {
	eng, cb := testEngine(t, nil)
	ctx := context.Background()

	info, err := eng.ClipboardInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Empty {
		t.Error("fresh clipboard should be empty")
	}

	cb.SetText("read the docs at https://example.com/docs today")
	info, err = eng.ClipboardInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Empty || info.ContentType != "text" || !info.IsURL {
		t.Errorf("info: %+v", info)
	}
	if info.DetectedURL != "https://example.com/docs" {
		t.Errorf("detected url: %q", info.DetectedURL)
	}

	// Info never stores.
	stats, _ := eng.Stats(ctx)
	if stats.TotalEntries != 0 {
		t.Errorf("info stored an entry: %d", stats.TotalEntries)
	}
}

func TestCaptureClipboard(t *testing.T) {
	eng, cb := testEngine(t, nil)
	ctx := context.Background()

	cb.SetText("captured content")
	cap1, err := eng.CaptureClipboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !cap1.Entry.Created || cap1.ContentType != "text" {
		t.Errorf("capture: %+v", cap1)
	}

	cap2, err := eng.CaptureClipboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cap2.Entry.Created || cap2.Entry.ID != cap1.Entry.ID {
		t.Errorf("second capture should touch: %+v", cap2)
	}

	cb.FailReads(errors.New("no display"))
	if _, err := eng.CaptureClipboard(ctx); !errors.Is(err, ErrAdapter) {
		t.Errorf("read failure: got %v, want ErrAdapter", err)
	}
}

func TestNotFoundMapping(t *testing.T) {
	eng, _ := testEngine(t, nil)
	ctx := context.Background()

	if _, err := eng.GetByID(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: got %v, want ErrNotFound", err)
	}
	if err := eng.Delete(ctx, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: got %v, want ErrNotFound", err)
	}
}

func TestMonitorToStorePipeline(t *testing.T) {
	// WHAT: Content placed on the (fake) system clipboard ends up in
	// history without any explicit ingest call.
	eng, cb := testEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)

	cb.SetText("typed somewhere, copied once")
	waitFor(t, func() bool {
		hits, err := eng.Search(context.Background(), "copied", 10)
		return err == nil && len(hits) == 1
	})

	// Same content again: still one entry.
	time.Sleep(50 * time.Millisecond)
	hits, _ := eng.Search(context.Background(), "copied", 10)
	if len(hits) != 1 {
		t.Errorf("entries: got %d, want 1", len(hits))
	}
}

func TestEnrichmentEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Landing</title>
			<meta name="description" content="A page worth keeping"></head>
			<body><main><p>The searchable body of the landing page.</p></main></body></html>`))
	}))
	defer srv.Close()

	eng, _ := testEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng.Start(ctx)

	ref, err := eng.Ingest(ctx, clipboard.Snapshot{Text: srv.URL}, "")
	if err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		e, err := eng.GetByID(context.Background(), ref.ID)
		return err == nil && e.URLStatusCode == 200
	})

	e, _ := eng.GetByID(ctx, ref.ID)
	if e.URLTitle != "Landing" {
		t.Errorf("title: %q", e.URLTitle)
	}
	if e.URLDescription != "A page worth keeping" {
		t.Errorf("description: %q", e.URLDescription)
	}

	// Enriched content is searchable.
	waitFor(t, func() bool {
		hits, err := eng.Search(context.Background(), "searchable body", 10)
		return err == nil && len(hits) == 1
	})
}

func TestRetentionPrunesOnStart(t *testing.T) {
	eng, _ := testEngine(t, &Config{Retention: RetentionConfig{MaxEntries: 1}})
	ctx := context.Background()

	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "older entry"}, ""); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, err := eng.Ingest(ctx, clipboard.Snapshot{Text: "newer entry"}, ""); err != nil {
		t.Fatal(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	eng.Start(runCtx)

	waitFor(t, func() bool {
		stats, err := eng.Stats(context.Background())
		return err == nil && stats.TotalEntries == 1
	})
	entries, _ := eng.Recent(ctx, 10, "")
	if len(entries) != 1 || entries[0].Content != "newer entry" {
		t.Errorf("survivor: %+v", entries)
	}
}
