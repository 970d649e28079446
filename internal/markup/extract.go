package markup

import (
	"fmt"
	"strings"
)

// Fields are the structured fields pulled out of one content document.
type Fields struct {
	Title string
	Body  string
	Notes string
}

// Extractor is the single contract every document variant implements:
// one document in, structured fields out. Extractors are pure; callers
// own all file access.
type Extractor interface {
	Extract(doc []byte) (Fields, error)
}

// Candidate element names tried in order per logical field. These come
// from the shapes Canvas and slide-deck exports actually use.
var (
	DefaultTitleTags = []string{"title", "h1", "heading", "name", "slide-title", "presentation-title"}
	DefaultBodyTags  = []string{"body", "content", "text", "description", "slide-content"}
	DefaultNotesTags = []string{"notes"}
)

// XMLExtractor handles semi-structured XML content documents with a
// prioritized-tag-then-fallback strategy.
type XMLExtractor struct {
	TitleTags []string
	BodyTags  []string
	NotesTags []string
}

func NewXMLExtractor() *XMLExtractor {
	return &XMLExtractor{
		TitleTags: DefaultTitleTags,
		BodyTags:  DefaultBodyTags,
		NotesTags: DefaultNotesTags,
	}
}

func (e *XMLExtractor) Extract(doc []byte) (Fields, error) {
	root, err := ParseXML(doc)
	if err != nil {
		return Fields{}, err
	}

	var f Fields
	for _, tag := range e.TitleTags {
		if n := root.FindFirst(tag); n != nil {
			if t := n.Text(); t != "" {
				f.Title = t
				break
			}
		}
	}
	for _, tag := range e.BodyTags {
		if n := root.FindFirst(tag); n != nil {
			if inner := n.Inner(); inner != "" {
				f.Body = inner
				break
			}
		}
	}
	for _, tag := range e.NotesTags {
		if n := root.FindFirst(tag); n != nil {
			if inner := n.Inner(); inner != "" {
				f.Notes = inner
				break
			}
		}
	}

	// No recognized body tag: recover every text run in document order
	// and wrap each as a paragraph block.
	if f.Body == "" {
		f.Body = wrapParagraphs(root.TextRuns())
	}
	return f, nil
}

func wrapParagraphs(runs []string) string {
	if len(runs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, run := range runs {
		b.WriteString("<p>")
		b.WriteString(escapeText(run))
		b.WriteString("</p>")
	}
	return b.String()
}

// ForPath picks the extractor variant for a file path by extension.
// The second return is false when the extension is not recognized
// content.
func ForPath(path string) (Extractor, bool) {
	switch strings.ToLower(ext(path)) {
	case ".xml":
		return NewXMLExtractor(), true
	case ".html", ".htm":
		return NewHTMLExtractor(), true
	case ".md", ".markdown":
		return NewMarkdownExtractor(), true
	case ".pptx":
		return NewPptxExtractor(), true
	default:
		return nil, false
	}
}

// RecognizedContentPath reports whether a file path has an extension in
// the recognized content set.
func RecognizedContentPath(path string) bool {
	_, ok := ForPath(path)
	return ok
}

func ext(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || strings.ContainsRune(path[i:], '/') {
		return ""
	}
	return path[i:]
}

// ExtractFields runs the extractor for the path's content kind. Unknown
// extensions are an error so callers never silently drop a file.
func ExtractFields(path string, doc []byte) (Fields, error) {
	e, ok := ForPath(path)
	if !ok {
		return Fields{}, fmt.Errorf("markup: no extractor for %s", path)
	}
	return e.Extract(doc)
}
