// Package dom holds a parsed HTML report and resolves its sections.
//
// Lookups go through XPath (htmlquery) on the golang.org/x/net/html tree.
// Three lookup strategies are provided so that both current documents and
// pages written for legacy layer-based browsers can be handled:
//
//   - ByID: standard id lookup; display lives in the inline style attribute.
//   - Layers: <layer>/<ilayer> elements by id or name; display is an
//     attribute on the element itself.
//   - All: first element whose id or name matches.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document. It is safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// Parse parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile reads and parses an HTML file.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path) //#nosec G304 -- user-provided report file
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return html.Render(w, d.root)
}

// String returns the rendered document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// WriteFile renders the document to path.
func (d *Document) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// Sections returns the ids of elements marked with data-section, in document order.
func (d *Document) Sections() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var ids []string
	for _, n := range htmlquery.Find(d.root, "//*[@data-section]") {
		if id := htmlquery.SelectAttr(n, "id"); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// InlineScripts returns the source of every <script> element without a src attribute.
func (d *Document) InlineScripts() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var scripts []string
	for _, n := range htmlquery.Find(d.root, "//script[not(@src)]") {
		if src := htmlquery.InnerText(n); strings.TrimSpace(src) != "" {
			scripts = append(scripts, src)
		}
	}
	return scripts
}

// queryOne runs an XPath expression and returns the first match. Caller holds d.mu.
func (d *Document) queryOne(expr string) *html.Node {
	n, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return nil
	}
	return n
}

// xpathLiteral quotes s as an XPath string literal.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}
