// Package htmltext holds the node-level helpers shared by the listing parser
// and the field extractors: whitespace-stripped text joining, document-order
// navigation and width-insensitive label matching.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Text joins every descendant text node of the given nodes, each trimmed of
// surrounding whitespace, with no separator. Script and style bodies are skipped.
func Text(nodes ...*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		appendText(&b, n)
	}
	return b.String()
}

// SelectionText is Text over a goquery selection
func SelectionText(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	return Text(sel.Nodes...)
}

func appendText(b *strings.Builder, n *html.Node) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		if s := strings.TrimSpace(n.Data); s != "" {
			b.WriteString(s)
		}
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(b, c)
	}
}

// IsElement reports whether n is an element with the given tag name
func IsElement(n *html.Node, tag string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == tag
}

// NextElement returns the first element with the given tag that follows n in
// document order, descending into n's own children first.
func NextElement(n *html.Node, tag string) *html.Node {
	for cur := following(n); cur != nil; cur = following(cur) {
		if IsElement(cur, tag) {
			return cur
		}
	}
	return nil
}

// NextSibling returns the first following sibling element with the given tag
func NextSibling(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if IsElement(s, tag) {
			return s
		}
	}
	return nil
}

// Descendants returns every descendant element of n with the given tag, in
// document order.
func Descendants(n *html.Node, tag string) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if IsElement(c, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func following(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.NextSibling != nil {
			return cur.NextSibling
		}
	}
	return nil
}

// Normalize folds full-width digits, letters and punctuation to their ASCII
// forms (NFKC) so label and number matching is width-insensitive.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

// ContainsLabel reports whether text contains label, ignoring character width
func ContainsLabel(text, label string) bool {
	return strings.Contains(Normalize(text), Normalize(label))
}

// StripLabel removes the first occurrence of label from text together with
// any separator colons and whitespace that follow it.
func StripLabel(text, label string) string {
	if i := strings.Index(text, label); i >= 0 {
		text = text[:i] + text[i+len(label):]
	}
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(text), ":："))
}
