// Package classify turns raw clipboard snapshots into content identity:
// kind, canonical hash, preview, and URL detection. The same snapshot
// always classifies identically, which is what makes the hash usable as
// the dedup key.
package classify

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/hazyhaar/clipd/clipboard"
)

// PreviewLen is the maximum preview length in runes.
const PreviewLen = 200

// ErrUnclassifiable is returned for empty or undecodable payloads.
var ErrUnclassifiable = errors.New("classify: empty or undecodable payload")

// Kind is the content type of a clipboard entry.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindURL   Kind = "url"
	KindFile  Kind = "file"
)

// urlPattern finds URL substrings embedded in larger text.
var urlPattern = regexp.MustCompile(`https?://(?:[-\w.])+(?:\.[a-zA-Z]{2,})(?:[-/?#\[\]@!$&'()*+,;=.\w]*)?`)

// Result is the classification of one snapshot.
type Result struct {
	Kind    Kind
	Hash    string // SHA-256 hex over "kind:normalized-payload"
	Content string // normalized text payload; empty for images
	Preview string // first PreviewLen runes of Content

	// IsURL is true when the payload is a URL or contains one. Independent
	// of Kind: a URL embedded in a longer text keeps Kind == text.
	IsURL bool
	// DetectedURL is the URL to enrich: the whole payload for Kind == url,
	// otherwise the first URL substring found.
	DetectedURL string

	ImageData   []byte
	ImageFormat string
	ImageSize   string
}

// Snapshot classifies a raw clipboard snapshot. The payload type reported by
// the adapter decides text vs image vs file; bytes are never sniffed.
func Snapshot(snap clipboard.Snapshot) (*Result, error) {
	switch {
	case len(snap.Image) > 0:
		return classifyImage(snap), nil
	case len(snap.Files) > 0:
		return classifyFiles(snap.Files), nil
	case strings.TrimSpace(snap.Text) != "":
		return classifyText(snap.Text), nil
	default:
		return nil, ErrUnclassifiable
	}
}

func classifyText(text string) *Result {
	// Trailing whitespace is noise from terminals and editors; trimming it
	// makes visually identical recopies hash identically.
	normalized := strings.TrimRight(text, " \t\r\n")

	r := &Result{
		Kind:    KindText,
		Content: normalized,
		Preview: preview(normalized),
	}

	trimmed := strings.TrimSpace(normalized)
	if isAbsoluteURL(trimmed) {
		r.Kind = KindURL
		r.IsURL = true
		r.DetectedURL = trimmed
	} else if m := urlPattern.FindString(normalized); m != "" {
		r.IsURL = true
		r.DetectedURL = m
	}

	r.Hash = hash(string(r.Kind), []byte(normalized))
	return r
}

func classifyImage(snap clipboard.Snapshot) *Result {
	return &Result{
		Kind:        KindImage,
		Hash:        hash(string(KindImage), snap.Image),
		ImageData:   snap.Image,
		ImageFormat: "png",
		ImageSize:   snap.ImageSize,
	}
}

func classifyFiles(files []string) *Result {
	content := strings.Join(files, "\n")
	return &Result{
		Kind:    KindFile,
		Hash:    hash(string(KindFile), []byte(content)),
		Content: content,
		Preview: preview(content),
	}
}

// isAbsoluteURL reports whether s, as a whole, is an absolute http(s) URL.
func isAbsoluteURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLen {
		return content
	}
	return string(runes[:PreviewLen])
}

func hash(kind string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{':'})
	h.Write(payload)
	return fmt.Sprintf("%x", h.Sum(nil))
}
