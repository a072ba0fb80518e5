package classify

import (
	"errors"
	"strings"
	"testing"

	"github.com/hazyhaar/clipd/clipboard"
)

func TestClassifyPlainText(t *testing.T) {
	r, err := Snapshot(clipboard.Snapshot{Text: "hello world"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != KindText {
		t.Errorf("kind: got %s, want text", r.Kind)
	}
	if r.IsURL {
		t.Error("IsURL should be false")
	}
	if r.Preview != "hello world" {
		t.Errorf("preview: got %q", r.Preview)
	}
}

func TestClassifyWholeURL(t *testing.T) {
	r, err := Snapshot(clipboard.Snapshot{Text: "https://example.com/docs?q=1"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != KindURL {
		t.Errorf("kind: got %s, want url", r.Kind)
	}
	if !r.IsURL {
		t.Error("IsURL should be true")
	}
	if r.DetectedURL != "https://example.com/docs?q=1" {
		t.Errorf("detected: got %q", r.DetectedURL)
	}
}

func TestClassifyEmbeddedURL(t *testing.T) {
	// WHAT: A URL inside a longer text keeps kind=text but sets IsURL.
	// WHY: Detection is independent of kind per the data model.
	r, err := Snapshot(clipboard.Snapshot{Text: "see https://example.com/api for docs"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != KindText {
		t.Errorf("kind: got %s, want text", r.Kind)
	}
	if !r.IsURL {
		t.Error("IsURL should be true for embedded URL")
	}
	if r.DetectedURL != "https://example.com/api" {
		t.Errorf("detected: got %q", r.DetectedURL)
	}
}

func TestClassifyNonHTTPScheme(t *testing.T) {
	r, err := Snapshot(clipboard.Snapshot{Text: "ftp://example.com/file"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != KindText {
		t.Errorf("kind: got %s, want text", r.Kind)
	}
	if r.IsURL {
		t.Error("ftp is not an enrichable URL")
	}
}

func TestHashStability(t *testing.T) {
	a, _ := Snapshot(clipboard.Snapshot{Text: "same content"})
	b, _ := Snapshot(clipboard.Snapshot{Text: "same content"})
	if a.Hash != b.Hash {
		t.Errorf("identical input hashed differently: %s vs %s", a.Hash, b.Hash)
	}

	c, _ := Snapshot(clipboard.Snapshot{Text: "same contenT"})
	if a.Hash == c.Hash {
		t.Error("different input hashed identically")
	}
}

func TestHashNormalizesTrailingWhitespace(t *testing.T) {
	a, _ := Snapshot(clipboard.Snapshot{Text: "copied text"})
	b, _ := Snapshot(clipboard.Snapshot{Text: "copied text \n"})
	if a.Hash != b.Hash {
		t.Error("trailing whitespace should not change the hash")
	}

	c, _ := Snapshot(clipboard.Snapshot{Text: " copied text"})
	if a.Hash == c.Hash {
		t.Error("leading whitespace is significant")
	}
}

func TestClassifyImage(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	r, err := Snapshot(clipboard.Snapshot{Image: png, ImageSize: "10x10"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != KindImage {
		t.Errorf("kind: got %s, want image", r.Kind)
	}
	if r.Content != "" {
		t.Errorf("image content should be empty, got %q", r.Content)
	}
	if r.ImageSize != "10x10" || r.ImageFormat != "png" {
		t.Errorf("image meta: %s %s", r.ImageSize, r.ImageFormat)
	}
	if len(r.ImageData) != len(png) {
		t.Error("image data not carried through")
	}
}

func TestClassifyFiles(t *testing.T) {
	r, err := Snapshot(clipboard.Snapshot{Files: []string{"/tmp/a.txt", "/tmp/b.txt"}})
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind != KindFile {
		t.Errorf("kind: got %s, want file", r.Kind)
	}
	if r.Content != "/tmp/a.txt\n/tmp/b.txt" {
		t.Errorf("content: got %q", r.Content)
	}
}

func TestClassifyEmpty(t *testing.T) {
	_, err := Snapshot(clipboard.Snapshot{})
	if !errors.Is(err, ErrUnclassifiable) {
		t.Errorf("got %v, want ErrUnclassifiable", err)
	}

	_, err = Snapshot(clipboard.Snapshot{Text: "   \n\t"})
	if !errors.Is(err, ErrUnclassifiable) {
		t.Errorf("whitespace-only: got %v, want ErrUnclassifiable", err)
	}
}

func TestPreviewBounded(t *testing.T) {
	long := strings.Repeat("x", 500)
	r, _ := Snapshot(clipboard.Snapshot{Text: long})
	if len([]rune(r.Preview)) != PreviewLen {
		t.Errorf("preview length: got %d, want %d", len([]rune(r.Preview)), PreviewLen)
	}
}
