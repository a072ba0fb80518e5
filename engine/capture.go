package engine

import (
	"context"
	"fmt"

	"github.com/hazyhaar/clipd/clipboard"
	"github.com/hazyhaar/clipd/engine/internal/classify"
)

// Info describes the current clipboard without storing anything.
type Info struct {
	Empty       bool   `json:"empty"`
	ContentType string `json:"content_type,omitempty"`
	Length      int    `json:"length"`
	Preview     string `json:"preview,omitempty"`
	IsURL       bool   `json:"is_url"`
	DetectedURL string `json:"detected_url,omitempty"`
	ImageSize   string `json:"image_size,omitempty"`
}

// Capture is the result of observing and storing the current clipboard.
type Capture struct {
	Entry       EntryRef `json:"entry"`
	ContentType string   `json:"content_type"`
	Preview     string   `json:"preview,omitempty"`
	IsURL       bool     `json:"is_url"`
}

// ClipboardInfo inspects the current clipboard. Read-only: no entry is
// created or touched.
func (e *Engine) ClipboardInfo(ctx context.Context) (*Info, error) {
	snap, err := e.adapter.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	if snap.Empty() {
		return &Info{Empty: true}, nil
	}
	res, err := classify.Snapshot(snap)
	if err != nil {
		return &Info{Empty: true}, nil
	}
	return &Info{
		ContentType: string(res.Kind),
		Length:      len(res.Content) + len(res.ImageData),
		Preview:     res.Preview,
		IsURL:       res.IsURL,
		DetectedURL: res.DetectedURL,
		ImageSize:   res.ImageSize,
	}, nil
}

// CaptureClipboard reads the current clipboard and ingests it.
func (e *Engine) CaptureClipboard(ctx context.Context) (*Capture, error) {
	snap, err := e.adapter.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	res, err := classify.Snapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	ref, err := e.Ingest(ctx, snap, "")
	if err != nil {
		return nil, err
	}
	return &Capture{
		Entry:       *ref,
		ContentType: string(res.Kind),
		Preview:     res.Preview,
		IsURL:       res.IsURL,
	}, nil
}

// CopyToClipboard writes text to the system clipboard and records it in
// history. An adapter failure is reported, never silently swallowed.
func (e *Engine) CopyToClipboard(ctx context.Context, text string) (*EntryRef, error) {
	if text == "" {
		return nil, ErrInvalidContent
	}
	if err := e.adapter.Write(ctx, text); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAdapter, err)
	}
	return e.Ingest(ctx, clipboard.Snapshot{Text: text}, "clipd")
}
