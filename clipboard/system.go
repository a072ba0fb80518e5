package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync"

	_ "image/png"

	xclip "golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

// System reads and writes the OS clipboard via golang.design/x/clipboard.
type System struct{}

// NewSystem initialises platform clipboard access. Initialisation happens
// once per process; a failure (e.g. no display server) is returned to every
// caller.
func NewSystem() (*System, error) {
	initOnce.Do(func() {
		initErr = xclip.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("clipboard init: %w", initErr)
	}
	return &System{}, nil
}

// Read returns the current clipboard snapshot. Image content wins over text
// when both formats are present, matching how desktop environments populate
// the clipboard for screenshot/copy-image actions.
func (s *System) Read(_ context.Context) (Snapshot, error) {
	if img := xclip.Read(xclip.FmtImage); len(img) > 0 {
		return Snapshot{Image: img, ImageSize: pngSize(img)}, nil
	}
	if text := xclip.Read(xclip.FmtText); len(text) > 0 {
		return Snapshot{Text: string(text)}, nil
	}
	return Snapshot{}, nil
}

// Write replaces the clipboard text.
func (s *System) Write(_ context.Context, text string) error {
	xclip.Write(xclip.FmtText, []byte(text))
	return nil
}

// pngSize decodes the PNG header and returns "WxH", or "" if undecodable.
func pngSize(data []byte) string {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
}
