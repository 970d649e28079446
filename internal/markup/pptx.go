package markup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	slideNameRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	notesNameRe = regexp.MustCompile(`^ppt/notesSlides/notesSlide(\d+)\.xml$`)
)

// PptxExtractor converts a PowerPoint deck to an HTML page, one section
// per slide. A .pptx file is a zip container of per-slide DrawingML
// documents, so the lenient XML parser can walk the slides directly.
// Title stays empty; callers fall back to the deck's file name.
type PptxExtractor struct{}

func NewPptxExtractor() *PptxExtractor {
	return &PptxExtractor{}
}

func (e *PptxExtractor) Extract(doc []byte) (Fields, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return Fields{}, fmt.Errorf("markup: open pptx: %w", err)
	}

	slides := numberedEntries(zr, slideNameRe)
	if len(slides) == 0 {
		return Fields{}, fmt.Errorf("markup: pptx carries no slides")
	}

	notes := map[int]string{}
	for _, entry := range numberedEntries(zr, notesNameRe) {
		shapes, err := shapeParagraphs(entry.file)
		if err != nil {
			continue
		}
		var runs []string
		for _, shape := range shapes {
			runs = append(runs, shape...)
		}
		if len(runs) > 0 {
			notes[entry.num] = strings.Join(runs, " ")
		}
	}

	var f Fields
	var b strings.Builder
	var noteLines []string
	b.WriteString(`<div class="ppt-presentation">`)
	for i, entry := range slides {
		shapes, err := shapeParagraphs(entry.file)
		if err != nil {
			return Fields{}, fmt.Errorf("markup: pptx slide %s: %w", entry.file.Name, err)
		}
		fmt.Fprintf(&b, `<div class="ppt-slide" id="slide-%d">`, i+1)
		writeSlide(&b, shapes)
		b.WriteString("</div>")
		if n, ok := notes[entry.num]; ok {
			noteLines = append(noteLines, fmt.Sprintf("Slide %d: %s", i+1, n))
		}
	}
	b.WriteString("</div>")

	f.Body = b.String()
	f.Notes = strings.Join(noteLines, "\n")
	return f, nil
}

// writeSlide renders one slide: the first paragraph of the first shape
// is the slide title, multi-paragraph shapes become bullet lists.
func writeSlide(b *strings.Builder, shapes [][]string) {
	if len(shapes) == 0 {
		return
	}
	b.WriteString("<h2>" + escapeText(shapes[0][0]) + "</h2>")
	writeShapeParagraphs(b, shapes[0][1:])
	for _, shape := range shapes[1:] {
		writeShapeParagraphs(b, shape)
	}
}

func writeShapeParagraphs(b *strings.Builder, paras []string) {
	switch {
	case len(paras) == 0:
	case len(paras) == 1:
		b.WriteString("<p>" + escapeText(paras[0]) + "</p>")
	default:
		b.WriteString("<ul>")
		for _, p := range paras {
			b.WriteString("<li>" + escapeText(p) + "</li>")
		}
		b.WriteString("</ul>")
	}
}

type zipEntry struct {
	num  int
	file *zip.File
}

// numberedEntries returns the archive files matching the pattern sorted
// by their slide number, so slide10 follows slide9 instead of slide1.
func numberedEntries(zr *zip.Reader, re *regexp.Regexp) []zipEntry {
	var out []zipEntry
	for _, f := range zr.File {
		m := re.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, zipEntry{num: n, file: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].num < out[j].num })
	return out
}

// shapeParagraphs extracts the text of one slide document grouped by
// shape: one slice of paragraph strings per txBody element.
func shapeParagraphs(f *zip.File) ([][]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	root, err := ParseXML(data)
	if err != nil {
		return nil, err
	}

	var shapes [][]string
	for _, tx := range root.FindAll("txBody") {
		var paras []string
		for _, p := range tx.FindAll("p") {
			if s := paragraphText(p); s != "" {
				paras = append(paras, s)
			}
		}
		if len(paras) > 0 {
			shapes = append(shapes, paras)
		}
	}
	return shapes, nil
}

// paragraphText joins the text runs of one paragraph. Runs concatenate
// without separators because DrawingML splits mid-word on formatting
// boundaries.
func paragraphText(p *Node) string {
	var b strings.Builder
	for _, t := range p.FindAll("t") {
		collectRaw(t, &b)
	}
	return strings.TrimSpace(b.String())
}

func collectRaw(n *Node, b *strings.Builder) {
	for _, c := range n.Children {
		if c.Node != nil {
			collectRaw(c.Node, b)
			continue
		}
		b.WriteString(c.Text)
	}
}
