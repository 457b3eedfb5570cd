package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Style is the subset of computed style the reader depends on.
type Style struct {
	Display    string
	Visibility string
}

// Hidden reports whether the style removes the element from rendering.
func (s Style) Hidden() bool {
	return s.Display == "none" || s.Visibility == "hidden" || s.Visibility == "collapse"
}

// hiddenByDefault lists elements that are display:none in the UA stylesheet.
var hiddenByDefault = map[string]bool{
	"head": true, "script": true, "style": true, "template": true,
	"title": true, "meta": true, "link": true, "base": true,
	"noscript": true, "datalist": true, "param": true, "source": true,
	"track": true,
}

// ComputedStyle resolves display and visibility for an element from the
// user-agent defaults and inline style declarations. Visibility is
// inherited; display is not.
func (d *Document) ComputedStyle(n *html.Node) (Style, error) {
	if !IsElement(n) {
		return Style{}, ErrNotElement
	}
	s := Style{Display: defaultDisplay(n), Visibility: "visible"}
	decls := parseInlineStyle(AttrValue(n, "style"))
	if v, ok := decls["display"]; ok {
		s.Display = v
	}
	for c := n; c != nil; c = c.Parent {
		if !IsElement(c) {
			continue
		}
		if v, ok := parseInlineStyle(AttrValue(c, "style"))["visibility"]; ok && v != "inherit" {
			s.Visibility = v
			break
		}
	}
	return s, nil
}

func defaultDisplay(n *html.Node) string {
	tag := Tag(n)
	if hiddenByDefault[tag] {
		return "none"
	}
	if HasAttr(n, "hidden") && !strings.EqualFold(AttrValue(n, "hidden"), "until-found") {
		return "none"
	}
	switch tag {
	case "input":
		if InputType(n) == "hidden" {
			return "none"
		}
	case "dialog":
		if !HasAttr(n, "open") {
			return "none"
		}
	}
	if p := ParentElement(n); p != nil && Tag(p) == "details" && !HasAttr(p, "open") {
		if !(tag == "summary" && firstSummary(p) == n) {
			return "none"
		}
	}
	if blockElements[tag] {
		return "block"
	}
	return "inline"
}

func firstSummary(details *html.Node) *html.Node {
	for c := details.FirstChild; c != nil; c = c.NextSibling {
		if Tag(c) == "summary" {
			return c
		}
	}
	return nil
}

// IsBlock reports whether the element renders as a block box by default.
func IsBlock(n *html.Node) bool {
	return blockElements[Tag(n)]
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "dd": true, "details": true, "dialog": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "html": true, "li": true, "main": true, "nav": true,
	"ol": true, "p": true, "pre": true, "section": true, "summary": true,
	"table": true, "tr": true, "td": true, "th": true, "ul": true,
	"legend": true, "caption": true, "search": true, "menu": true,
}

// parseInlineStyle parses a style attribute into lower-cased declarations.
func parseInlineStyle(src string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(src, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(value))
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if name == "" || value == "" {
			continue
		}
		out[name] = value
	}
	return out
}
