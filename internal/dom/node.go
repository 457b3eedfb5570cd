package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// IsText reports whether n is a text node.
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// Tag returns the lower-cased local name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute and whether it is present.
func Attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrValue returns the attribute value or "" when absent.
func AttrValue(n *html.Node, name string) string {
	v, _ := Attr(n, name)
	return v
}

// HasAttr reports whether the attribute is present, regardless of value.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// Tokens splits a whitespace separated attribute (role, aria-owns, ...) into tokens.
func Tokens(n *html.Node, name string) []string {
	return strings.Fields(AttrValue(n, name))
}

// TextContent mirrors the DOM textContent getter: the concatenated data of
// all descendant text nodes.
func TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ch := c.FirstChild; ch != nil; ch = ch.NextSibling {
			switch ch.Type {
			case html.TextNode:
				b.WriteString(ch.Data)
			case html.ElementNode, html.DocumentNode:
				walk(ch)
			}
		}
	}
	walk(n)
	return b.String()
}

// Contains reports whether other is ancestor itself or one of its descendants.
func Contains(ancestor, other *html.Node) bool {
	for n := other; n != nil; n = n.Parent {
		if n == ancestor {
			return true
		}
	}
	return false
}

// Closest returns the nearest inclusive ancestor element matching fn.
func Closest(n *html.Node, fn func(*html.Node) bool) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if IsElement(c) && fn(c) {
			return c
		}
	}
	return nil
}

// ParentElement returns the parent node when it is an element.
func ParentElement(n *html.Node) *html.Node {
	if n == nil || !IsElement(n.Parent) {
		return nil
	}
	return n.Parent
}

// Children returns the child nodes of n in document order.
func Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the subtree below the visited node.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// IsFocusable reports whether an element can receive focus: native
// interactive controls that are not disabled, anything with a tabindex and
// editing hosts.
func IsFocusable(n *html.Node) bool {
	if !IsElement(n) {
		return false
	}
	if HasAttr(n, "tabindex") {
		return true
	}
	if v, ok := Attr(n, "contenteditable"); ok && !strings.EqualFold(v, "false") {
		return true
	}
	switch Tag(n) {
	case "a", "area":
		return HasAttr(n, "href")
	case "button", "select", "textarea":
		return !HasAttr(n, "disabled")
	case "input":
		return !HasAttr(n, "disabled") && !strings.EqualFold(AttrValue(n, "type"), "hidden")
	case "summary":
		return true
	case "iframe", "embed", "object":
		return true
	}
	return false
}

// InputType returns the normalised type of an input element ("text" by default).
func InputType(n *html.Node) string {
	if Tag(n) != "input" {
		return ""
	}
	t := strings.ToLower(strings.TrimSpace(AttrValue(n, "type")))
	if t == "" {
		return "text"
	}
	return t
}

// IsTextEntry reports whether typing into n edits its value.
func IsTextEntry(n *html.Node) bool {
	switch Tag(n) {
	case "textarea":
		return true
	case "input":
		switch InputType(n) {
		case "text", "search", "email", "tel", "url", "password", "number":
			return true
		}
	}
	if v, ok := Attr(n, "contenteditable"); ok && !strings.EqualFold(v, "false") {
		return true
	}
	return false
}
