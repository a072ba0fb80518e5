package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// contentClassNames and contentIDs are common markers for the main content
// region, tried after semantic landmarks and before density scoring.
var contentClassNames = []string{
	"content", "main-content", "article-content", "post-content", "entry-content",
}

var contentIDs = []string{"content", "main", "article", "post"}

var hiddenStylePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)display\s*:\s*none`),
	regexp.MustCompile(`(?i)visibility\s*:\s*hidden`),
	regexp.MustCompile(`(?i)font-size\s*:\s*0[^1-9]`),
	regexp.MustCompile(`(?i)opacity\s*:\s*0[^.]`),
}

// findMainContent locates the main content node of the page. Strategy order:
// semantic landmarks (<main>, <article>), well-known class/id markers, then
// the densest block-level subtree.
func findMainContent(doc *html.Node, minLen int) *html.Node {
	for _, a := range []atom.Atom{atom.Main, atom.Article} {
		if n := findFirstByTag(doc, a); n != nil && len(collectText(n)) >= minLen {
			return n
		}
	}

	for _, class := range contentClassNames {
		if n := findFirstByAttr(doc, "class", class); n != nil && len(collectText(n)) >= minLen {
			return n
		}
	}
	for _, id := range contentIDs {
		if n := findFirstByAttr(doc, "id", id); n != nil && len(collectText(n)) >= minLen {
			return n
		}
	}

	body := findBody(doc)
	if body == nil {
		return nil
	}
	if best := findDensestNode(body, minLen); best != nil {
		return best
	}
	return body
}

// findDensestNode walks block-level elements and picks the subtree with the
// most non-link text. Link-heavy subtrees (navigation, footers) are skipped.
func findDensestNode(root *html.Node, minLen int) *html.Node {
	var best *html.Node
	bestScore := 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if isBoilerplate(n) || hasHiddenStyle(n) {
				return
			}
			switch n.DataAtom {
			case atom.Div, atom.Section, atom.Td:
				text := collectText(n)
				link := collectLinkText(n)
				score := len(text) - 2*len(link)
				if len(text) >= minLen && score > bestScore {
					best = n
					bestScore = score
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return best
}

// collectText extracts visible text from a subtree, one trimmed line per
// text run, skipping boilerplate and hidden elements. Very short runs are
// dropped; they are almost always widget labels.
func collectText(n *html.Node) string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if len(text) > 3 {
				lines = append(lines, text)
			}
			return
		}
		if n.Type == html.ElementNode {
			if isBoilerplate(n) || hasHiddenStyle(n) {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(lines, "\n")
}

// collectLinkText extracts text inside <a> tags only.
func collectLinkText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node, bool)
	walk = func(n *html.Node, inLink bool) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			inLink = true
		}
		if n.Type == html.TextNode && inLink {
			sb.WriteString(strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inLink)
		}
	}
	walk(n, false)
	return sb.String()
}

func isBoilerplate(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Nav, atom.Header, atom.Footer, atom.Aside:
		return true
	}
	return false
}

func hasHiddenStyle(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key != "style" {
			continue
		}
		for _, pat := range hiddenStylePatterns {
			if pat.MatchString(a.Val) {
				return true
			}
		}
	}
	return false
}

func findBody(doc *html.Node) *html.Node {
	return findFirstByTag(doc, atom.Body)
}

func findFirstByTag(root *html.Node, a atom.Atom) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// findFirstByAttr finds the first element whose class list or id contains val.
func findFirstByAttr(root *html.Node, key, val string) *html.Node {
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			for _, a := range n.Attr {
				if a.Key != key {
					continue
				}
				if key == "class" {
					for _, c := range strings.Fields(a.Val) {
						if c == val {
							found = n
							return
						}
					}
				} else if a.Val == val {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}
