package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Canvas writes asset references against a placeholder file base, plain
// or URL-encoded.
var (
	fileBaseRe        = regexp.MustCompile(`\$IMS-CC-FILEBASE\$/([^"')\s]+)`)
	fileBaseEncodedRe = regexp.MustCompile(`%24IMS-CC-FILEBASE%24/([^"')\s]+)`)
	spaceRunRe        = regexp.MustCompile(`\s+`)
	preBlockRe        = regexp.MustCompile(`(?is)<pre\b.*?</pre>|<code\b.*?</code>`)
)

// CleanBody normalizes a body payload: unescape HTML entities, rewrite
// the internal file-base placeholder to the target asset base path, and
// collapse whitespace runs. Safe to apply repeatedly.
func CleanBody(content, assetBase string) string {
	if content == "" {
		return ""
	}
	content = html.UnescapeString(content)
	content = RewriteAssetPaths(content, assetBase)
	return strings.TrimSpace(collapseWhitespace(content))
}

// collapseWhitespace reduces whitespace runs to single spaces outside of
// preformatted blocks. Line breaks inside pre and code are content.
func collapseWhitespace(content string) string {
	var b strings.Builder
	last := 0
	for _, loc := range preBlockRe.FindAllStringIndex(content, -1) {
		b.WriteString(spaceRunRe.ReplaceAllString(content[last:loc[0]], " "))
		b.WriteString(content[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(spaceRunRe.ReplaceAllString(content[last:], " "))
	return b.String()
}

// RewriteAssetPaths rewrites internal placeholder asset references to the
// target asset path convention.
func RewriteAssetPaths(content, assetBase string) string {
	if content == "" {
		return ""
	}
	if assetBase != "" && !strings.HasSuffix(assetBase, "/") {
		assetBase += "/"
	}
	content = fileBaseRe.ReplaceAllString(content, assetBase+"$1")
	content = fileBaseEncodedRe.ReplaceAllString(content, assetBase+"$1")
	return content
}

var lessonPolicy = buildLessonPolicy()

func buildLessonPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// LMS lesson bodies legitimately embed media.
	p.AllowElements("iframe", "video", "audio", "source", "figure", "figcaption")
	p.AllowAttrs("src", "width", "height", "frameborder", "allowfullscreen").OnElements("iframe")
	p.AllowAttrs("src", "controls", "width", "height").OnElements("video")
	p.AllowAttrs("src", "controls").OnElements("audio")
	p.AllowAttrs("src", "type").OnElements("source")
	p.AllowAttrs("class", "id").OnElements("div", "span", "p", "table")
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowRelativeURLs(true)
	return p
}

// Sanitize strips markup that is unsafe to import into the target LMS.
func Sanitize(content string) string {
	if content == "" {
		return ""
	}
	return lessonPolicy.Sanitize(content)
}

// AssetRefs returns src/href attribute values in the fragment that point
// under the given asset base, with the base prefix stripped. Used to
// validate that rewritten references resolve against the file inventory.
func AssetRefs(content, assetBase string) []string {
	if content == "" || assetBase == "" {
		return nil
	}
	if !strings.HasSuffix(assetBase, "/") {
		assetBase += "/"
	}

	nodes, err := xhtml.ParseFragment(strings.NewReader(content), bodyContext())
	if err != nil {
		return nil
	}

	var out []string
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			for _, a := range n.Attr {
				if a.Key != "src" && a.Key != "href" {
					continue
				}
				if rest, ok := strings.CutPrefix(a.Val, assetBase); ok && rest != "" {
					out = append(out, rest)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func bodyContext() *xhtml.Node {
	return &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
}

// HumanizeFilename turns a file name into a readable fallback title:
// extension stripped, separators to spaces, words title-cased.
func HumanizeFilename(name string) string {
	base := name
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
