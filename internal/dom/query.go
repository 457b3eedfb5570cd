package dom

import (
	"fmt"
	"strings"
	"sync"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// maxCompiled bounds the expression cache; lookups built from ids and names
// are unbounded in number.
const maxCompiled = 512

var (
	compiledMu sync.RWMutex
	compiled   = make(map[string]*xpath.Expr)
)

// Compile returns the compiled form of expr, reusing earlier compilations.
func Compile(expr string) (*xpath.Expr, error) {
	compiledMu.RLock()
	e, ok := compiled[expr]
	compiledMu.RUnlock()
	if ok {
		return e, nil
	}
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", expr, err)
	}
	compiledMu.Lock()
	if len(compiled) < maxCompiled {
		compiled[expr] = e
	}
	compiledMu.Unlock()
	return e, nil
}

// ElementByID returns the first element in the document with the given id.
func (d *Document) ElementByID(id string) *html.Node {
	return FindByID(d.root, id)
}

// FindByID returns the first descendant of scope whose id equals id, like
// scope.querySelector('#'+id) without selector escaping concerns.
func FindByID(scope *html.Node, id string) *html.Node {
	if scope == nil || id == "" {
		return nil
	}
	n, err := htmlquery.Query(scope, "descendant::*[@id="+XPathLiteral(id)+"]")
	if err != nil {
		return nil
	}
	return n
}

// FindAll evaluates an XPath expression relative to scope.
func FindAll(scope *html.Node, expr string) ([]*html.Node, error) {
	if scope == nil {
		return nil, nil
	}
	e, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return htmlquery.QuerySelectorAll(scope, e), nil
}

// WithAttribute returns scope (when it matches) followed by all descendant
// elements carrying the attribute, in document order.
func WithAttribute(scope *html.Node, name string) []*html.Node {
	nodes, err := FindAll(scope, "descendant-or-self::*[@"+name+"]")
	if err != nil {
		return nil
	}
	return nodes
}

// InnerText returns the text of n as htmlquery renders it.
func InnerText(n *html.Node) string {
	return htmlquery.InnerText(n)
}

// XPathLiteral quotes s for use inside an XPath expression. Values holding
// both quote characters become a concat() call.
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
