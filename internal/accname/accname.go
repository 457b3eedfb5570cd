// Package accname computes accessible names and descriptions for host
// document nodes following a simplified form of the accname 1.2 algorithm.
//
// Known gaps: CSS generated content is ignored, the "hidden but referenced"
// rule applies to the referenced root only, and inline/block whitespace is
// approximated from the element's default display.
package accname

import (
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/aria"
	"vsr/internal/dom"
)

// Resolver computes names and descriptions. Its hooks let the caller plug in
// the same hidden and role semantics the accessibility tree uses.
type Resolver struct {
	hidden func(*html.Node) bool
	role   func(*html.Node) string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHidden sets the predicate used to skip hidden nodes.
func WithHidden(fn func(*html.Node) bool) Option {
	return func(r *Resolver) { r.hidden = fn }
}

// WithRole sets the function used to resolve an element's role.
func WithRole(fn func(*html.Node) string) Option {
	return func(r *Resolver) { r.role = fn }
}

// New returns a Resolver. Without options, only the hidden attribute and
// aria-hidden hide nodes and only explicit roles are considered.
func New(opts ...Option) *Resolver {
	r := &Resolver{hidden: defaultHidden, role: explicitRole}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultHidden(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	return dom.HasAttr(n, "hidden") || strings.EqualFold(dom.AttrValue(n, "aria-hidden"), "true")
}

func explicitRole(n *html.Node) string {
	for _, tok := range dom.Tokens(n, "role") {
		if aria.IsValid(tok) {
			return aria.Canonical(tok)
		}
	}
	return ""
}

type state struct {
	visited    map[*html.Node]bool
	referenced bool
	recursing  bool
	labelledBy bool
}

func (s state) with(fn func(*state)) state {
	fn(&s)
	return s
}

// Name returns the trimmed accessible name of n.
func (r *Resolver) Name(n *html.Node) string {
	if dom.IsText(n) {
		return Normalize(n.Data)
	}
	return Normalize(r.name(n, state{visited: make(map[*html.Node]bool)}))
}

// Description returns the trimmed accessible description of n.
func (r *Resolver) Description(n *html.Node) string {
	if !dom.IsElement(n) {
		return ""
	}
	if ids := dom.Tokens(n, "aria-describedby"); len(ids) > 0 {
		if d := r.fromIDRefs(n, ids, state{visited: make(map[*html.Node]bool)}); d != "" {
			return Normalize(d)
		}
	}
	if d := Normalize(dom.AttrValue(n, "aria-description")); d != "" {
		return d
	}
	if t := Normalize(dom.AttrValue(n, "title")); t != "" && t != r.Name(n) {
		return t
	}
	return ""
}

func (r *Resolver) name(n *html.Node, st state) string {
	if n == nil {
		return ""
	}
	if dom.IsText(n) {
		return n.Data
	}
	if !dom.IsElement(n) || st.visited[n] {
		return ""
	}
	st.visited[n] = true

	if !st.referenced && r.hidden(n) {
		return ""
	}
	st.referenced = false

	if !st.labelledBy {
		if ids := dom.Tokens(n, "aria-labelledby"); len(ids) > 0 {
			if s := r.fromIDRefs(n, ids, st.with(func(s *state) { s.labelledBy = true })); strings.TrimSpace(s) != "" {
				return s
			}
		}
	}

	role := r.role(n)
	if st.recursing {
		if v, ok := r.embeddedControl(n, role); ok {
			return v
		}
	}

	if l := strings.TrimSpace(dom.AttrValue(n, "aria-label")); l != "" {
		return l
	}

	if !aria.IsPresentational(role) {
		if s, ok := r.native(n, st); ok {
			return s
		}
	}

	if st.recursing || allowsNameFromContent(role) {
		if s := r.fromContent(n, st.with(func(s *state) { s.recursing = true })); strings.TrimSpace(s) != "" {
			return s
		}
	}

	if t := strings.TrimSpace(dom.AttrValue(n, "title")); t != "" {
		return t
	}
	if dom.IsTextEntry(n) {
		return strings.TrimSpace(dom.AttrValue(n, "placeholder"))
	}
	return ""
}

func allowsNameFromContent(role string) bool {
	r, ok := aria.Lookup(role)
	return ok && r.NameFrom == aria.NameFromContents
}

func (r *Resolver) fromIDRefs(n *html.Node, ids []string, st state) string {
	root := rootOf(n)
	var parts []string
	for _, id := range ids {
		target := dom.FindByID(root, id)
		if target == nil {
			continue
		}
		if target == n {
			if l := strings.TrimSpace(dom.AttrValue(n, "aria-label")); l != "" {
				parts = append(parts, l)
			}
			continue
		}
		if s := strings.TrimSpace(r.name(target, st.with(func(s *state) {
			s.referenced = true
			s.recursing = true
		}))); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (r *Resolver) fromContent(n *html.Node, st state) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case dom.IsText(c):
			b.WriteString(c.Data)
		case dom.IsElement(c):
			s := r.name(c, st)
			if dom.IsBlock(c) {
				b.WriteString(" " + s + " ")
			} else {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

// embeddedControl returns the value of a control when it is part of another
// element's name.
func (r *Resolver) embeddedControl(n *html.Node, role string) (string, bool) {
	switch role {
	case "textbox", "searchbox":
		if dom.Tag(n) == "textarea" {
			return dom.TextContent(n), true
		}
		if dom.Tag(n) == "input" {
			return dom.AttrValue(n, "value"), true
		}
		return dom.TextContent(n), true
	case "combobox", "listbox":
		var selected []string
		dom.Walk(n, func(c *html.Node) bool {
			if dom.Tag(c) == "option" && (dom.HasAttr(c, "selected") || strings.EqualFold(dom.AttrValue(c, "aria-selected"), "true")) {
				selected = append(selected, Normalize(dom.TextContent(c)))
				return false
			}
			return true
		})
		if len(selected) == 0 && dom.Tag(n) == "input" {
			return dom.AttrValue(n, "value"), true
		}
		return strings.Join(selected, " "), true
	case "slider", "spinbutton", "progressbar", "scrollbar", "meter":
		if v := dom.AttrValue(n, "aria-valuetext"); v != "" {
			return v, true
		}
		if v := dom.AttrValue(n, "aria-valuenow"); v != "" {
			return v, true
		}
		return dom.AttrValue(n, "value"), true
	}
	return "", false
}

// native returns the name from host language label sources.
func (r *Resolver) native(n *html.Node, st state) (string, bool) {
	child := st.with(func(s *state) {
		s.recursing = true
		s.referenced = false
	})
	switch dom.Tag(n) {
	case "input":
		switch dom.InputType(n) {
		case "button", "submit", "reset":
			if v, ok := dom.Attr(n, "value"); ok {
				return v, true
			}
			switch dom.InputType(n) {
			case "submit":
				return "Submit", true
			case "reset":
				return "Reset", true
			}
		case "image":
			if v := dom.AttrValue(n, "alt"); v != "" {
				return v, true
			}
			if v := dom.AttrValue(n, "value"); v != "" {
				return v, true
			}
			return "Submit", true
		}
		return r.labels(n, child)
	case "textarea", "select", "meter", "progress", "output", "button":
		if s, ok := r.labels(n, child); ok {
			return s, true
		}
	case "img", "area":
		if v, ok := dom.Attr(n, "alt"); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	case "fieldset":
		if c := firstChildTag(n, "legend"); c != nil {
			if s := r.fromContent(c, child); strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	case "figure":
		if c := firstChildTag(n, "figcaption"); c != nil {
			if s := r.fromContent(c, child); strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	case "table":
		if c := firstChildTag(n, "caption"); c != nil {
			if s := r.fromContent(c, child); strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	case "svg":
		if c := firstChildTag(n, "title"); c != nil {
			return dom.TextContent(c), true
		}
	case "optgroup":
		if v := dom.AttrValue(n, "label"); v != "" {
			return v, true
		}
	}
	return "", false
}

// labels names a labelable element from its associated label elements.
func (r *Resolver) labels(n *html.Node, st state) (string, bool) {
	var found []*html.Node
	if id := dom.AttrValue(n, "id"); id != "" {
		if nodes, err := dom.FindAll(rootOf(n), "//label[@for="+dom.XPathLiteral(id)+"]"); err == nil {
			found = append(found, nodes...)
		}
	}
	if l := dom.Closest(n.Parent, func(c *html.Node) bool { return dom.Tag(c) == "label" }); l != nil {
		if !containsNode(found, l) && (!dom.HasAttr(l, "for") || dom.AttrValue(l, "for") == dom.AttrValue(n, "id")) {
			found = append(found, l)
		}
	}
	var parts []string
	for _, l := range found {
		if s := strings.TrimSpace(r.fromContent(l, st)); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func firstChildTag(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.Tag(c) == tag {
			return c
		}
	}
	return nil
}

func containsNode(nodes []*html.Node, n *html.Node) bool {
	for _, c := range nodes {
		if c == n {
			return true
		}
	}
	return false
}

func rootOf(n *html.Node) *html.Node {
	for n != nil && n.Parent != nil {
		n = n.Parent
	}
	return n
}

// Normalize collapses whitespace runs into single spaces and trims.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
