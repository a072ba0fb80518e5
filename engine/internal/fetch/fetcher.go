// Package fetch retrieves URL-bearing clipboard entries for enrichment.
// One Fetcher is shared by all workers; per-request deadlines come from
// the caller's context.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/hazyhaar/clipd/horosafe"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultMaxBody   = 5 << 20
	defaultUserAgent = "clipd/1.0"
	maxRedirects     = 10
)

// ErrUnsupportedContentType marks responses that are not HTML; the worker
// records it as a fetch failure rather than attempting extraction.
var ErrUnsupportedContentType = errors.New("fetch: unsupported content type")

// Result is a completed HTTP fetch. StatusCode is set whenever a response
// was received, including on error paths.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
	FinalURL    string
}

// Options configure a Fetcher. Zero values pick the defaults above.
type Options struct {
	Timeout      time.Duration
	MaxBody      int64
	UserAgent    string
	AllowPrivate bool // skip SSRF validation, for loopback test servers
}

// Fetcher downloads pages with SSRF validation on the initial URL and on
// every redirect hop, and a hard cap on body size.
type Fetcher struct {
	client    *http.Client
	maxBody   int64
	userAgent string
	validate  func(string) error
}

func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = defaultMaxBody
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	validate := horosafe.ValidateURL
	if opts.AllowPrivate {
		validate = func(string) error { return nil }
	}

	f := &Fetcher{
		maxBody:   opts.MaxBody,
		userAgent: opts.UserAgent,
		validate:  validate,
	}
	f.client = &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("fetch: stopped after %d redirects", maxRedirects)
			}
			return f.validate(req.URL.String())
		},
	}
	return f
}

// Fetch downloads rawURL. Transport and validation failures return a nil
// Result; HTTP-level failures (bad status, non-HTML) return the Result
// alongside the error so the status code can still be recorded.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if err := f.validate(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	res := &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, fmt.Errorf("fetch: http status %d", resp.StatusCode)
	}
	if !isHTML(res.ContentType) {
		return res, fmt.Errorf("%w: %s", ErrUnsupportedContentType, res.ContentType)
	}

	body, err := horosafe.LimitedReadAll(resp.Body, f.maxBody)
	if err != nil {
		return res, fmt.Errorf("fetch: read body: %w", err)
	}
	res.Body = body
	return res, nil
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Some servers omit the header entirely; treat as HTML and let
		// the parser decide.
		return contentType == ""
	}
	return mt == "text/html" || mt == "application/xhtml+xml" ||
		strings.HasSuffix(mt, "+html")
}
