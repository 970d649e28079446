package markup

import (
	"bytes"
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLExtractor handles loose HTML documents: title from <title> or the
// first heading, body from the <body> element.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (e *HTMLExtractor) Extract(doc []byte) (Fields, error) {
	root, err := xhtml.Parse(bytes.NewReader(doc))
	if err != nil {
		return Fields{}, fmt.Errorf("markup: parse html: %w", err)
	}

	var f Fields
	if n := findHTMLElement(root, atom.Title); n != nil {
		f.Title = strings.TrimSpace(htmlText(n))
	}
	if f.Title == "" {
		if n := findHTMLElement(root, atom.H1); n != nil {
			f.Title = strings.TrimSpace(htmlText(n))
		}
	}

	if body := findHTMLElement(root, atom.Body); body != nil {
		var b strings.Builder
		for c := body.FirstChild; c != nil; c = c.NextSibling {
			if err := xhtml.Render(&b, c); err != nil {
				return Fields{}, fmt.Errorf("markup: render html body: %w", err)
			}
		}
		f.Body = strings.TrimSpace(b.String())
	}

	// html.Parse always synthesizes a body; an empty one means the file
	// held no markup worth keeping, so fall back to visible text.
	if f.Body == "" {
		f.Body = wrapParagraphs(htmlTextRuns(root))
	}
	return f, nil
}

func findHTMLElement(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findHTMLElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func htmlText(n *xhtml.Node) string {
	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func htmlTextRuns(n *xhtml.Node) []string {
	var out []string
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == xhtml.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				out = append(out, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
