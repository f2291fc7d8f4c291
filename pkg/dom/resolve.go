package dom

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/devicelab-dev/reportsections/pkg/visibility"
)

// ByID resolves elements by their id attribute. Display is read from and
// written to the element's inline style attribute.
func (d *Document) ByID() visibility.Resolver {
	return visibility.ResolverFunc(func(id visibility.ElementID) (visibility.Style, bool) {
		n := d.find(fmt.Sprintf("//*[@id=%s]", xpathLiteral(string(id))))
		if n == nil {
			return nil, false
		}
		return &inlineStyle{doc: d, node: n}, true
	})
}

// Layers resolves <layer> and <ilayer> elements by id or name. Display is an
// attribute on the element itself.
func (d *Document) Layers() visibility.Resolver {
	return visibility.ResolverFunc(func(id visibility.ElementID) (visibility.Style, bool) {
		lit := xpathLiteral(string(id))
		n := d.find(fmt.Sprintf("//*[(local-name()='layer' or local-name()='ilayer') and (@id=%s or @name=%s)]", lit, lit))
		if n == nil {
			return nil, false
		}
		return &attrStyle{doc: d, node: n}, true
	})
}

// All resolves the first element, in document order, whose id or name matches.
func (d *Document) All() visibility.Resolver {
	return visibility.ResolverFunc(func(id visibility.ElementID) (visibility.Style, bool) {
		lit := xpathLiteral(string(id))
		n := d.find(fmt.Sprintf("//*[@id=%s or @name=%s]", lit, lit))
		if n == nil {
			return nil, false
		}
		return &inlineStyle{doc: d, node: n}, true
	})
}

// Legacy tries Layers, then All, then ByID.
func (d *Document) Legacy() visibility.Resolver {
	return visibility.FirstOf(d.Layers(), d.All(), d.ByID())
}

// Resolver returns Legacy when legacy is set and ByID otherwise.
func (d *Document) Resolver(legacy bool) visibility.Resolver {
	if legacy {
		return d.Legacy()
	}
	return d.ByID()
}

func (d *Document) find(expr string) *html.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.queryOne(expr)
}

// inlineStyle is the display property inside an element's style attribute.
type inlineStyle struct {
	doc  *Document
	node *html.Node
}

func (s *inlineStyle) Display() string {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()

	style, _ := getAttr(s.node, "style")
	return displayValue(style)
}

func (s *inlineStyle) SetDisplay(value string) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	style, _ := getAttr(s.node, "style")
	decls := setStyleProperty(ParseStyle(style), "display", value)
	if len(decls) == 0 {
		removeAttr(s.node, "style")
		return
	}
	setAttr(s.node, "style", FormatStyle(decls))
}

// attrStyle is a display attribute set directly on a layer element.
type attrStyle struct {
	doc  *Document
	node *html.Node
}

func (s *attrStyle) Display() string {
	s.doc.mu.RLock()
	defer s.doc.mu.RUnlock()

	v, _ := getAttr(s.node, "display")
	return keyword(v)
}

func (s *attrStyle) SetDisplay(value string) {
	s.doc.mu.Lock()
	defer s.doc.mu.Unlock()

	if value == "" {
		removeAttr(s.node, "display")
		return
	}
	setAttr(s.node, "display", value)
}
