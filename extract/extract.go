// Package extract pulls the parts of a web page worth keeping in clipboard
// history: the title, a short description, and the main text content.
//
// The pipeline: raw HTML → parse → locate the main content region
// (semantic landmarks first, text density as fallback) → clean text +
// sanitized markdown. Both outputs are capped so one pathological page
// cannot bloat the history database.
package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Truncated is appended when extracted text is cut at MaxTextLen.
const Truncated = "\n\n[Content truncated...]"

// Result is the output of page extraction.
type Result struct {
	Title       string // <title> text
	Description string // meta description, og:description, or first paragraph
	Text        string // clean main text, capped at MaxTextLen
	Markdown    string // sanitized main content as markdown, capped at MaxTextLen
}

// Options controls extraction behaviour.
type Options struct {
	// MaxTextLen caps Text and Markdown. Default: 10000.
	MaxTextLen int
	// MinTextLen is the minimum main-region text length to accept before
	// falling back to the next strategy. Default: 50.
	MinTextLen int
}

func (o *Options) defaults() {
	if o.MaxTextLen <= 0 {
		o.MaxTextLen = 10_000
	}
	if o.MinTextLen <= 0 {
		o.MinTextLen = 50
	}
}

// FromHTML runs the extraction pipeline on raw HTML.
func FromHTML(rawHTML []byte, opts Options) (*Result, error) {
	opts.defaults()

	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	res := &Result{
		Title:       findTitle(doc),
		Description: findMetaDescription(doc),
	}

	main := findMainContent(doc, opts.MinTextLen)
	if main == nil {
		main = findBody(doc)
	}
	if main == nil {
		main = doc
	}

	res.Text = truncate(collectText(main), opts.MaxTextLen)
	res.Markdown = truncate(toMarkdown(renderNode(main)), opts.MaxTextLen)

	// No meta description: fall back to the first substantial line of text.
	if res.Description == "" {
		res.Description = firstParagraph(res.Text)
	}

	return res, nil
}

// findTitle extracts the page <title> text.
func findTitle(doc *html.Node) string {
	var title string
	var walk func(*html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc)
	return title
}

// findMetaDescription returns <meta name="description">, falling back to
// the OpenGraph description.
func findMetaDescription(doc *html.Node) string {
	var desc, ogDesc string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
			var name, property, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "property":
					property = a.Val
				case "content":
					content = a.Val
				}
			}
			if name == "description" && desc == "" {
				desc = strings.TrimSpace(content)
			}
			if property == "og:description" && ogDesc == "" {
				ogDesc = strings.TrimSpace(content)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if desc != "" {
		return desc
	}
	return ogDesc
}

// firstParagraph returns the first line of text long enough to serve as a
// description, capped at 300 characters.
func firstParagraph(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 {
			if len(line) > 300 {
				cut := line[:300]
				for len(cut) > 0 && !utf8.ValidString(cut) {
					cut = cut[:len(cut)-1]
				}
				return cut + "..."
			}
			return line
		}
	}
	return ""
}

// truncate caps s at max bytes on a rune boundary, marking the cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut + Truncated
}

// renderNode serialises an HTML node subtree back to a string.
func renderNode(n *html.Node) string {
	var buf bytes.Buffer
	html.Render(&buf, n)
	return buf.String()
}
