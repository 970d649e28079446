package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one element of a parsed markup document. Children keeps text
// runs and child elements interleaved in document order so inner markup
// can be rendered back faithfully.
type Node struct {
	Name     string
	Attrs    []xml.Attr
	Children []Child
}

// Child is either a text run (Text != "") or a child element (Node != nil).
type Child struct {
	Text string
	Node *Node
}

// ParseXML parses a semi-structured XML document into a Node tree.
// Parsing is deliberately lenient: unknown entities pass through and
// HTML entities are resolved, because Canvas content files routinely mix
// HTML fragments into XML. A document that is not well-formed markup at
// all returns an error.
func ParseXML(data []byte) (*Node, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = false
	d.AutoClose = xml.HTMLAutoClose
	d.Entity = xml.HTMLEntity

	var root *Node
	var stack []*Node

	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("markup: parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					// Multiple roots; keep the first, ignore trailing junk.
					return root, nil
				}
				root = n
			} else {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, Child{Node: n})
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			s := string(t)
			if strings.TrimSpace(s) == "" {
				continue
			}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, Child{Text: s})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("markup: parse xml: no root element")
	}
	return root, nil
}

// FindFirst returns the first element with the given local name in
// document order, searching the node itself and all descendants.
func (n *Node) FindFirst(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if c.Node == nil {
			continue
		}
		if found := c.Node.FindFirst(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element with the given local name in document
// order.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	if n.Name == name {
		out = append(out, n)
	}
	for _, c := range n.Children {
		if c.Node != nil {
			out = append(out, c.Node.FindAll(name)...)
		}
	}
	return out
}

// Attr returns the value of the named attribute, "" when absent.
func (n *Node) Attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// Text returns all text content of the node and its descendants joined
// in document order, whitespace-trimmed.
func (n *Node) Text() string {
	var b strings.Builder
	n.collectText(&b)
	return strings.TrimSpace(b.String())
}

func (n *Node) collectText(b *strings.Builder) {
	for _, c := range n.Children {
		if c.Node != nil {
			c.Node.collectText(b)
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strings.TrimSpace(c.Text))
	}
}

// TextRuns returns the contiguous text runs of the subtree in document
// order, used by the fallback extraction path.
func (n *Node) TextRuns() []string {
	var out []string
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.Node != nil {
				walk(c.Node)
				continue
			}
			if s := strings.TrimSpace(c.Text); s != "" {
				out = append(out, s)
			}
		}
	}
	walk(n)
	return out
}

// Inner renders the node's children (text and elements) back to markup,
// leaving the node's own tag out.
func (n *Node) Inner() string {
	var b strings.Builder
	for _, c := range n.Children {
		renderChild(&b, c)
	}
	return strings.TrimSpace(b.String())
}

func renderChild(b *strings.Builder, c Child) {
	if c.Node == nil {
		b.WriteString(escapeText(c.Text))
		return
	}
	n := c.Node
	b.WriteString("<" + n.Name)
	for _, a := range n.Attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		b.WriteString(fmt.Sprintf(" %s=%q", a.Name.Local, a.Value))
	}
	if len(n.Children) == 0 {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
	for _, cc := range n.Children {
		renderChild(b, cc)
	}
	b.WriteString("</" + n.Name + ">")
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
