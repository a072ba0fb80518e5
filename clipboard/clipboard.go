// Package clipboard defines the OS clipboard contract the engine consumes
// and provides two implementations: System (golang.design/x/clipboard) and
// Memory (an in-process fake for tests).
package clipboard

import "context"

// Snapshot is one typed observation of the clipboard. The OS reports the
// payload type; the engine never sniffs bytes to tell text from image.
type Snapshot struct {
	// Text is the textual payload. Empty when the clipboard holds an image.
	Text string
	// Image is the PNG-encoded image payload, nil for text snapshots.
	Image []byte
	// ImageSize is "WxH" when known, e.g. "800x600".
	ImageSize string
	// Files holds absolute paths when the platform reports a file-list
	// payload (copied files in a file manager). Not all platforms can.
	Files []string
}

// Empty reports whether the snapshot carries no payload at all.
func (s Snapshot) Empty() bool {
	return s.Text == "" && len(s.Image) == 0 && len(s.Files) == 0
}

// Adapter is the platform clipboard access contract.
// Read returns the current snapshot; Write replaces the clipboard text.
// Both report platform failures as errors; the callers decide whether a
// failure is fatal (explicit copy) or skippable (monitor tick).
type Adapter interface {
	Read(ctx context.Context) (Snapshot, error)
	Write(ctx context.Context, text string) error
}
