package a11y

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/aria"
	"vsr/internal/dom"
)

// RoleInput carries what role resolution needs to know about a node.
type RoleInput struct {
	Node           *html.Node
	AccessibleName string
	// InheritedImplicitPresentational is set when an ancestor's
	// presentational role propagates to this node.
	InheritedImplicitPresentational bool
	// AllowedChildRoles limits inheritance to nodes whose implicit role is
	// one of the roles the presentational parent owns. Nil means any role.
	AllowedChildRoles []string
}

// RoleResult is the outcome of role resolution.
type RoleResult struct {
	Role         string
	ExplicitRole string
	ImplicitRole string
}

// GetRole resolves the ARIA role of a node.
func GetRole(in RoleInput) RoleResult {
	n := in.Node
	if !dom.IsElement(n) {
		return RoleResult{}
	}
	implicit := ImplicitRole(n, in.AccessibleName != "")

	var tokens []string
	for _, tok := range dom.Tokens(n, "role") {
		if !aria.IsValid(tok) {
			continue
		}
		role := aria.Canonical(tok)
		if (role == "form" || role == "region") && in.AccessibleName == "" {
			continue
		}
		tokens = append(tokens, role)
	}

	if in.InheritedImplicitPresentational && !hasNonPresentational(tokens) && inheritsFrom(implicit, in.AllowedChildRoles) {
		tokens = []string{"none"}
	}

	if dom.IsFocusable(n) || hasGlobalAttribute(n) {
		filtered := tokens[:0:0]
		for _, role := range tokens {
			if !aria.IsPresentational(role) {
				filtered = append(filtered, role)
			}
		}
		tokens = filtered
	}

	explicit := ""
	if len(tokens) > 0 {
		explicit = tokens[0]
	}
	role := explicit
	if role == "" {
		role = implicit
	}
	return RoleResult{Role: role, ExplicitRole: explicit, ImplicitRole: implicit}
}

func hasNonPresentational(tokens []string) bool {
	for _, t := range tokens {
		if !aria.IsPresentational(t) {
			return true
		}
	}
	return false
}

func inheritsFrom(implicit string, allowed []string) bool {
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == implicit {
			return true
		}
	}
	return false
}

func hasGlobalAttribute(n *html.Node) bool {
	for _, g := range aria.GlobalStatesAndProperties {
		if dom.HasAttr(n, g) {
			return true
		}
	}
	return false
}

// SpokenRole returns the role as announced: empty for generic and
// presentational roles, or the author's aria-roledescription.
func SpokenRole(n *html.Node, role string) string {
	if aria.IsGeneric(role) {
		return ""
	}
	if d := strings.TrimSpace(dom.AttrValue(n, "aria-roledescription")); d != "" {
		return d
	}
	return role
}

var sectioning = map[string]bool{"article": true, "aside": true, "main": true, "nav": true, "section": true}

// ImplicitRole returns the native role of an HTML element.
func ImplicitRole(n *html.Node, named bool) string {
	switch tag := dom.Tag(n); tag {
	case "":
		return ""
	case "a", "area":
		if dom.HasAttr(n, "href") {
			return "link"
		}
		return "generic"
	case "html", "body":
		return "document"
	case "article":
		return "article"
	case "aside":
		return "complementary"
	case "blockquote":
		return "blockquote"
	case "button", "summary":
		return "button"
	case "caption":
		return "caption"
	case "code":
		return "code"
	case "datalist":
		return "listbox"
	case "dd":
		return "definition"
	case "del", "s":
		return "deletion"
	case "details", "fieldset", "optgroup", "hgroup", "address":
		return "group"
	case "dfn", "dt":
		return "term"
	case "dialog":
		return "dialog"
	case "em":
		return "emphasis"
	case "figure":
		return "figure"
	case "footer", "header":
		if dom.Closest(n.Parent, func(c *html.Node) bool { return sectioning[dom.Tag(c)] }) != nil {
			return "generic"
		}
		if tag == "header" {
			return "banner"
		}
		return "contentinfo"
	case "form":
		if named {
			return "form"
		}
		return "generic"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "hr":
		return "separator"
	case "img":
		if v, ok := dom.Attr(n, "alt"); ok && v == "" {
			return "presentation"
		}
		return "img"
	case "input":
		return inputRole(n)
	case "ins":
		return "insertion"
	case "li":
		return "listitem"
	case "main":
		return "main"
	case "mark":
		return "mark"
	case "math":
		return "math"
	case "menu", "ol", "ul":
		return "list"
	case "meter":
		return "meter"
	case "nav":
		return "navigation"
	case "option":
		return "option"
	case "output":
		return "status"
	case "p":
		return "paragraph"
	case "progress":
		return "progressbar"
	case "search":
		return "search"
	case "section":
		if named {
			return "region"
		}
		return "generic"
	case "select":
		size, _ := strconv.Atoi(dom.AttrValue(n, "size"))
		if dom.HasAttr(n, "multiple") || size > 1 {
			return "listbox"
		}
		return "combobox"
	case "strong", "b":
		return "strong"
	case "sub":
		return "subscript"
	case "sup":
		return "superscript"
	case "svg":
		return "graphics-document"
	case "table":
		return "table"
	case "tbody", "thead", "tfoot":
		return "rowgroup"
	case "td":
		if tableRole(n) == "grid" || tableRole(n) == "treegrid" {
			return "gridcell"
		}
		return "cell"
	case "textarea":
		return "textbox"
	case "th":
		if strings.EqualFold(dom.AttrValue(n, "scope"), "row") {
			return "rowheader"
		}
		return "columnheader"
	case "time":
		return "time"
	case "tr":
		return "row"
	case "head", "script", "style", "template", "title", "meta", "link", "br", "wbr":
		return ""
	}
	return "generic"
}

func inputRole(n *html.Node) string {
	switch dom.InputType(n) {
	case "button", "image", "reset", "submit":
		return "button"
	case "checkbox":
		return "checkbox"
	case "radio":
		return "radio"
	case "range":
		return "slider"
	case "number":
		return "spinbutton"
	case "search":
		if dom.HasAttr(n, "list") {
			return "combobox"
		}
		return "searchbox"
	case "email", "tel", "text", "url":
		if dom.HasAttr(n, "list") {
			return "combobox"
		}
		return "textbox"
	case "password":
		return "textbox"
	case "hidden":
		return ""
	}
	return "generic"
}

func tableRole(cell *html.Node) string {
	t := dom.Closest(cell, func(c *html.Node) bool { return dom.Tag(c) == "table" })
	if t == nil {
		return ""
	}
	for _, tok := range dom.Tokens(t, "role") {
		if aria.IsValid(tok) {
			return aria.Canonical(tok)
		}
	}
	return "table"
}
