package markup

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownExtractor converts loose Markdown files into HTML lesson
// bodies. Course exports occasionally carry instructor notes as .md.
type MarkdownExtractor struct {
	md goldmark.Markdown
}

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

func (e *MarkdownExtractor) Extract(doc []byte) (Fields, error) {
	var buf bytes.Buffer
	if err := e.md.Convert(doc, &buf); err != nil {
		return Fields{}, fmt.Errorf("markup: convert markdown: %w", err)
	}

	return Fields{
		Title: firstMarkdownHeading(doc),
		Body:  strings.TrimSpace(buf.String()),
	}, nil
}

// firstMarkdownHeading returns the text of the first ATX heading, "" when
// the document has none (callers fall back to the humanized file name).
func firstMarkdownHeading(doc []byte) string {
	for _, line := range strings.Split(string(doc), "\n") {
		s := strings.TrimSpace(line)
		if !strings.HasPrefix(s, "#") {
			continue
		}
		return strings.TrimSpace(strings.TrimLeft(s, "#"))
	}
	return ""
}
