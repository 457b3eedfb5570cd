// Package aria holds the WAI-ARIA 1.2 role and attribute model the reader is
// computed from: which attributes each role supports or prohibits, which
// roles own which children, how names are sourced and how attribute values
// are spoken.
package aria

import (
	"sort"
	"strings"
)

// NameFrom says where a role's accessible name may come from.
type NameFrom int

const (
	NameFromAuthor NameFrom = iota
	NameFromContents
	NameFromProhibited
)

// Role describes one WAI-ARIA role.
type Role struct {
	Name     string
	Abstract bool
	// Props are the role-specific supported states and properties, sorted.
	Props []string
	// Prohibited attributes may not be used on the role.
	Prohibited []string
	// AllowedChildren are the roles the role owns (required owned elements).
	AllowedChildren []string
	// ChildrenPresentational roles hide the semantics of their descendants.
	ChildrenPresentational bool
	NameFrom               NameFrom
	// Defaults are implicit attribute values defined for the role.
	Defaults map[string]string
}

// Supports reports whether attr is a role-specific property of the role.
func (r Role) Supports(attr string) bool {
	i := sort.SearchStrings(r.Props, attr)
	return i < len(r.Props) && r.Props[i] == attr
}

// Prohibits reports whether attr is prohibited on the role.
func (r Role) Prohibits(attr string) bool {
	for _, p := range r.Prohibited {
		if p == attr {
			return true
		}
	}
	return false
}

// Allows reports whether child is one of the role's allowed child roles.
func (r Role) Allows(child string) bool {
	for _, c := range r.AllowedChildren {
		if c == child {
			return true
		}
	}
	return false
}

// GlobalStatesAndProperties apply to every role, in canonical order.
var GlobalStatesAndProperties = []string{
	"aria-atomic",
	"aria-busy",
	"aria-controls",
	"aria-current",
	"aria-describedby",
	"aria-details",
	"aria-disabled",
	"aria-dropeffect",
	"aria-errormessage",
	"aria-flowto",
	"aria-grabbed",
	"aria-haspopup",
	"aria-hidden",
	"aria-invalid",
	"aria-keyshortcuts",
	"aria-label",
	"aria-labelledby",
	"aria-live",
	"aria-owns",
	"aria-relevant",
	"aria-roledescription",
}

var nameProhibited = []string{"aria-label", "aria-labelledby"}

var (
	rangeProps    = []string{"aria-valuemax", "aria-valuemin", "aria-valuenow", "aria-valuetext"}
	cellProps     = []string{"aria-colindex", "aria-colindextext", "aria-colspan", "aria-rowindex", "aria-rowindextext", "aria-rowspan"}
	headerProps   = []string{"aria-disabled", "aria-errormessage", "aria-expanded", "aria-haspopup", "aria-invalid", "aria-readonly", "aria-required", "aria-selected", "aria-sort"}
	gridcellProps = []string{"aria-disabled", "aria-errormessage", "aria-expanded", "aria-haspopup", "aria-invalid", "aria-readonly", "aria-required", "aria-selected"}
	textboxProps  = []string{"aria-activedescendant", "aria-autocomplete", "aria-disabled", "aria-errormessage", "aria-haspopup", "aria-invalid", "aria-multiline", "aria-placeholder", "aria-readonly", "aria-required"}
	menuProps     = []string{"aria-activedescendant", "aria-disabled", "aria-orientation"}
	menuitemProps = []string{"aria-disabled", "aria-expanded", "aria-haspopup", "aria-posinset", "aria-setsize"}
	gridProps     = []string{"aria-activedescendant", "aria-colcount", "aria-disabled", "aria-multiselectable", "aria-readonly", "aria-rowcount"}
	treeProps     = []string{"aria-activedescendant", "aria-disabled", "aria-errormessage", "aria-invalid", "aria-multiselectable", "aria-orientation", "aria-required"}
)

func props(groups ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range groups {
		for _, p := range g {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}

func list(xs ...string) []string { return xs }

var roles = map[string]Role{}

func define(r Role) {
	if r.Props != nil {
		r.Props = props(r.Props)
	}
	roles[r.Name] = r
}

func init() {
	for _, name := range []string{"command", "composite", "input", "landmark", "range", "roletype", "section", "sectionhead", "select", "structure", "widget", "window"} {
		define(Role{Name: name, Abstract: true})
	}

	define(Role{Name: "alert"})
	define(Role{Name: "alertdialog", Props: list("aria-modal")})
	define(Role{Name: "application", Props: list("aria-activedescendant", "aria-disabled", "aria-errormessage", "aria-expanded", "aria-haspopup", "aria-invalid")})
	define(Role{Name: "article", Props: list("aria-posinset", "aria-setsize")})
	define(Role{Name: "banner"})
	define(Role{Name: "blockquote"})
	define(Role{Name: "button", Props: list("aria-disabled", "aria-expanded", "aria-haspopup", "aria-pressed"), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "caption", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "cell", Props: cellProps, NameFrom: NameFromContents})
	define(Role{Name: "checkbox", Props: list("aria-checked", "aria-disabled", "aria-errormessage", "aria-expanded", "aria-invalid", "aria-readonly", "aria-required"), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "code", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "columnheader", Props: props(cellProps, headerProps), NameFrom: NameFromContents})
	define(Role{Name: "combobox", Props: list("aria-activedescendant", "aria-autocomplete", "aria-disabled", "aria-errormessage", "aria-expanded", "aria-haspopup", "aria-invalid", "aria-readonly", "aria-required")})
	define(Role{Name: "comment", Props: list("aria-level", "aria-posinset", "aria-setsize"), NameFrom: NameFromContents})
	define(Role{Name: "complementary"})
	define(Role{Name: "contentinfo"})
	define(Role{Name: "definition"})
	define(Role{Name: "deletion", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "dialog", Props: list("aria-modal")})
	define(Role{Name: "document", Props: list("aria-expanded")})
	define(Role{Name: "emphasis", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "feed", AllowedChildren: list("article")})
	define(Role{Name: "figure"})
	define(Role{Name: "form"})
	define(Role{Name: "generic", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "graphics-document"})
	define(Role{Name: "graphics-object"})
	define(Role{Name: "graphics-symbol", ChildrenPresentational: true})
	define(Role{Name: "grid", Props: gridProps, AllowedChildren: list("row", "rowgroup")})
	define(Role{Name: "gridcell", Props: props(cellProps, gridcellProps), NameFrom: NameFromContents})
	define(Role{Name: "group", Props: list("aria-activedescendant", "aria-disabled")})
	define(Role{Name: "heading", Props: list("aria-level"), NameFrom: NameFromContents, Defaults: map[string]string{"aria-level": "2"}})
	define(Role{Name: "img", ChildrenPresentational: true})
	define(Role{Name: "insertion", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "link", Props: list("aria-disabled", "aria-expanded", "aria-haspopup"), NameFrom: NameFromContents})
	define(Role{Name: "list", AllowedChildren: list("listitem")})
	define(Role{Name: "listbox", Props: list("aria-activedescendant", "aria-disabled", "aria-errormessage", "aria-expanded", "aria-invalid", "aria-multiselectable", "aria-orientation", "aria-readonly", "aria-required"), AllowedChildren: list("group", "option")})
	define(Role{Name: "listitem", Props: list("aria-level", "aria-posinset", "aria-setsize")})
	define(Role{Name: "log"})
	define(Role{Name: "main"})
	define(Role{Name: "mark"})
	define(Role{Name: "marquee"})
	define(Role{Name: "math"})
	define(Role{Name: "menu", Props: menuProps, AllowedChildren: list("group", "menuitem", "menuitemcheckbox", "menuitemradio")})
	define(Role{Name: "menubar", Props: menuProps, AllowedChildren: list("group", "menuitem", "menuitemcheckbox", "menuitemradio")})
	define(Role{Name: "menuitem", Props: menuitemProps, NameFrom: NameFromContents})
	define(Role{Name: "menuitemcheckbox", Props: props(menuitemProps, list("aria-checked")), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "menuitemradio", Props: props(menuitemProps, list("aria-checked")), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "meter", Props: rangeProps, ChildrenPresentational: true})
	define(Role{Name: "navigation"})
	define(Role{Name: "none", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "note"})
	define(Role{Name: "option", Props: list("aria-checked", "aria-disabled", "aria-posinset", "aria-selected", "aria-setsize"), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "paragraph", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "presentation", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "progressbar", Props: rangeProps, ChildrenPresentational: true})
	define(Role{Name: "radio", Props: list("aria-checked", "aria-disabled", "aria-posinset", "aria-setsize"), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "radiogroup", Props: list("aria-activedescendant", "aria-disabled", "aria-errormessage", "aria-invalid", "aria-readonly", "aria-required"), AllowedChildren: list("radio")})
	define(Role{Name: "region"})
	define(Role{Name: "row", Props: list("aria-activedescendant", "aria-colindex", "aria-disabled", "aria-expanded", "aria-level", "aria-posinset", "aria-rowindex", "aria-rowindextext", "aria-selected", "aria-setsize"), AllowedChildren: list("cell", "columnheader", "gridcell", "rowheader"), NameFrom: NameFromContents})
	define(Role{Name: "rowgroup", AllowedChildren: list("row")})
	define(Role{Name: "rowheader", Props: props(cellProps, headerProps), NameFrom: NameFromContents})
	define(Role{Name: "scrollbar", Props: props(rangeProps, list("aria-controls", "aria-disabled", "aria-orientation")), ChildrenPresentational: true, Defaults: map[string]string{"aria-orientation": "vertical", "aria-valuemax": "100", "aria-valuemin": "0"}})
	define(Role{Name: "search"})
	define(Role{Name: "searchbox", Props: textboxProps})
	define(Role{Name: "separator", Props: props(rangeProps, list("aria-disabled", "aria-orientation")), ChildrenPresentational: true})
	define(Role{Name: "slider", Props: props(rangeProps, list("aria-disabled", "aria-errormessage", "aria-haspopup", "aria-invalid", "aria-orientation", "aria-readonly")), ChildrenPresentational: true, Defaults: map[string]string{"aria-orientation": "horizontal", "aria-valuemax": "100", "aria-valuemin": "0"}})
	define(Role{Name: "spinbutton", Props: props(rangeProps, list("aria-activedescendant", "aria-disabled", "aria-errormessage", "aria-invalid", "aria-readonly", "aria-required"))})
	define(Role{Name: "status"})
	define(Role{Name: "strong", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "subscript", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "suggestion", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "superscript", Prohibited: nameProhibited, NameFrom: NameFromProhibited})
	define(Role{Name: "switch", Props: list("aria-checked", "aria-disabled", "aria-expanded", "aria-haspopup", "aria-readonly", "aria-required"), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "tab", Props: list("aria-disabled", "aria-expanded", "aria-haspopup", "aria-posinset", "aria-selected", "aria-setsize"), ChildrenPresentational: true, NameFrom: NameFromContents})
	define(Role{Name: "table", Props: list("aria-colcount", "aria-rowcount"), AllowedChildren: list("row", "rowgroup")})
	define(Role{Name: "tablist", Props: list("aria-activedescendant", "aria-disabled", "aria-multiselectable", "aria-orientation"), AllowedChildren: list("tab")})
	define(Role{Name: "tabpanel"})
	define(Role{Name: "term", NameFrom: NameFromContents})
	define(Role{Name: "textbox", Props: textboxProps})
	define(Role{Name: "time"})
	define(Role{Name: "timer"})
	define(Role{Name: "toolbar", Props: menuProps})
	define(Role{Name: "tooltip", NameFrom: NameFromContents})
	define(Role{Name: "tree", Props: treeProps, AllowedChildren: list("group", "treeitem")})
	define(Role{Name: "treegrid", Props: props(gridProps, treeProps), AllowedChildren: list("row", "rowgroup")})
	define(Role{Name: "treeitem", Props: list("aria-checked", "aria-disabled", "aria-expanded", "aria-haspopup", "aria-level", "aria-posinset", "aria-selected", "aria-setsize"), NameFrom: NameFromContents})
}

// PermittedAttributes returns the role-specific properties in sorted order
// followed by the global states and properties, minus those the role
// prohibits. Unknown roles get the globals only.
func PermittedAttributes(role string) []string {
	r, _ := Lookup(role)
	out := make([]string, 0, len(r.Props)+len(GlobalStatesAndProperties))
	out = append(out, r.Props...)
	for _, g := range GlobalStatesAndProperties {
		if r.Prohibits(g) || r.Supports(g) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// synonyms maps deprecated or alias role tokens to their canonical role.
var synonyms = map[string]string{
	"image":     "img",
	"directory": "list",
}

// Canonical lower-cases a role token and resolves synonyms.
func Canonical(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if c, ok := synonyms[token]; ok {
		return c
	}
	return token
}

// Lookup returns the role definition for a (canonicalised) role name.
func Lookup(name string) (Role, bool) {
	r, ok := roles[Canonical(name)]
	return r, ok
}

// IsValid reports whether token names a concrete (non-abstract) role.
func IsValid(token string) bool {
	r, ok := Lookup(token)
	return ok && !r.Abstract
}

// IsAbstract reports whether token names an abstract role.
func IsAbstract(token string) bool {
	r, ok := Lookup(token)
	return ok && r.Abstract
}

// IsPresentational reports whether role removes the element's semantics.
func IsPresentational(role string) bool {
	return role == "none" || role == "presentation"
}

// IsGeneric reports whether role carries no announced semantics.
func IsGeneric(role string) bool {
	return role == "" || role == "generic" || IsPresentational(role)
}

// LandmarkRoles are the roles reachable through landmark navigation.
var LandmarkRoles = []string{"banner", "complementary", "contentinfo", "form", "main", "navigation", "region", "search"}

// HeadingRoles are roles announced as headings.
var HeadingRoles = []string{"heading"}

// Roles returns all concrete role names, sorted.
func Roles() []string {
	var out []string
	for name, r := range roles {
		if !r.Abstract {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
