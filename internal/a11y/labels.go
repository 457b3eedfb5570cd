package a11y

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/aria"
	"vsr/internal/dom"
)

// label computes attribute labels for t and its subtree. It runs after the
// whole tree is built so structural values can see siblings and ancestors.
func (b *builder) label(t *Tree) {
	if dom.IsElement(t.Node) {
		t.AccessibleAttributeLabels, t.AccessibleAttributeToLabelMap = b.attributeLabels(t)
	}
	for _, c := range t.Children {
		b.label(c)
	}
}

func (b *builder) attributeLabels(t *Tree) ([]string, map[string]AttributeLabel) {
	rangeRole := t.Role == "progressbar" || t.Role == "scrollbar"
	hasValue := t.AccessibleValue != ""

	var order []string
	labels := make(map[string]AttributeLabel)
	for _, name := range aria.PermittedAttributes(t.Role) {
		if hasValue && (name == "aria-placeholder" || (name == "aria-valuenow" && !rangeRole)) {
			continue
		}
		value, ok := b.attributeValue(t, name)
		if !ok {
			continue
		}
		attr, _ := aria.LookupAttribute(name)
		label := attr.Format(value)
		if label == "" {
			continue
		}
		labels[name] = AttributeLabel{Label: label, Value: value}
		order = append(order, name)
	}

	for text, index := range map[string]string{
		"aria-valuetext":    "aria-valuenow",
		"aria-colindextext": "aria-colindex",
		"aria-rowindextext": "aria-rowindex",
	} {
		if _, ok := labels[text]; ok {
			delete(labels, index)
		}
	}
	if _, ok := labels["aria-errormessage"]; ok {
		if v, ok := b.attributeValue(t, "aria-invalid"); !ok || strings.EqualFold(v, "false") {
			delete(labels, "aria-errormessage")
		}
	}
	if now, ok := labels["aria-valuenow"]; ok && rangeRole {
		now.Label = "current value " + Percentage(now.Value, labels["aria-valuemin"].Value, labels["aria-valuemax"].Value)
		labels["aria-valuenow"] = now
	}

	out := make([]string, 0, len(order)+1)
	for _, name := range order {
		if l, ok := labels[name]; ok {
			out = append(out, l.Label)
		}
	}
	if n := len(t.AlternateReadingOrderParents); n > 0 {
		out = append(out, previousReadingOrderLabel(n))
	}
	return out, labels
}

func previousReadingOrderLabel(n int) string {
	if n == 1 {
		return "1 previous alternate reading order"
	}
	return fmt.Sprintf("%d previous alternate reading orders", n)
}

// attributeValue resolves a state or property from, in order, the HTML
// equivalent, the ARIA attribute, the document structure and the role default.
func (b *builder) attributeValue(t *Tree, name string) (string, bool) {
	if v, ok := htmlEquivalent(t.Node, name); ok {
		return v, true
	}
	if v, ok := dom.Attr(t.Node, name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), true
	}
	if v, ok := b.implicitValue(t, name); ok {
		return v, true
	}
	if r, ok := aria.Lookup(t.Role); ok {
		if v, ok := r.Defaults[name]; ok {
			return v, true
		}
	}
	return "", false
}

var disableable = map[string]bool{"button": true, "fieldset": true, "input": true, "optgroup": true, "option": true, "select": true, "textarea": true}

func htmlEquivalent(n *html.Node, name string) (string, bool) {
	tag := dom.Tag(n)
	switch name {
	case "aria-checked":
		if t := dom.InputType(n); (t == "checkbox" || t == "radio") && dom.HasAttr(n, "checked") {
			return "true", true
		}
	case "aria-disabled":
		if disableable[tag] && dom.HasAttr(n, "disabled") {
			return "true", true
		}
	case "aria-readonly":
		if (tag == "input" || tag == "textarea") && dom.HasAttr(n, "readonly") {
			return "true", true
		}
		if v, ok := dom.Attr(n, "contenteditable"); ok {
			if strings.EqualFold(v, "false") {
				return "true", true
			}
			return "false", true
		}
	case "aria-required":
		if (tag == "input" || tag == "select" || tag == "textarea") && dom.HasAttr(n, "required") {
			return "true", true
		}
	case "aria-colspan":
		if tag == "td" || tag == "th" {
			return nonEmptyAttr(n, "colspan")
		}
	case "aria-rowspan":
		if tag == "td" || tag == "th" {
			return nonEmptyAttr(n, "rowspan")
		}
	case "aria-selected":
		if tag == "option" && dom.HasAttr(n, "selected") {
			return "true", true
		}
	case "aria-multiselectable":
		if tag == "select" && dom.HasAttr(n, "multiple") {
			return "true", true
		}
	case "aria-placeholder":
		if tag == "input" || tag == "textarea" {
			return nonEmptyAttr(n, "placeholder")
		}
	case "aria-valuemax":
		switch {
		case isNumericInput(n):
			return nonEmptyAttr(n, "max")
		case tag == "progress", tag == "meter":
			if v, ok := nonEmptyAttr(n, "max"); ok {
				return v, true
			}
			return "1", true
		}
	case "aria-valuemin":
		switch {
		case isNumericInput(n), tag == "meter":
			if v, ok := nonEmptyAttr(n, "min"); ok {
				return v, true
			}
			if tag == "meter" {
				return "0", true
			}
		case tag == "progress":
			return "0", true
		}
	case "aria-valuenow":
		if isNumericInput(n) || tag == "progress" || tag == "meter" {
			return nonEmptyAttr(n, "value")
		}
	case "aria-level":
		if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
			return tag[1:], true
		}
	}
	return "", false
}

func nonEmptyAttr(n *html.Node, name string) (string, bool) {
	v := strings.TrimSpace(dom.AttrValue(n, name))
	return v, v != ""
}

func isNumericInput(n *html.Node) bool {
	t := dom.InputType(n)
	return t == "range" || t == "number"
}

// implicitValue derives level, position and set size from the tree.
func (b *builder) implicitValue(t *Tree, name string) (string, bool) {
	switch name {
	case "aria-level":
		if level := b.level(t); level > 0 {
			return strconv.Itoa(level), true
		}
	case "aria-posinset", "aria-setsize":
		set := b.siblings(t)
		for i, s := range set {
			if s == t {
				if name == "aria-posinset" {
					return strconv.Itoa(i + 1), true
				}
				return strconv.Itoa(len(set)), true
			}
		}
	}
	return "", false
}

func (b *builder) level(t *Tree) int {
	switch t.Role {
	case "listitem":
		return countAncestors(t, func(a *Tree) bool { return a.Role == "list" }, nil)
	case "treeitem":
		if ancestorWithRole(t, "tree") == nil {
			return 0
		}
		return countAncestors(t, func(a *Tree) bool { return a.Role == "group" }, func(a *Tree) bool { return a.Role == "tree" }) + 1
	case "row":
		if ancestorWithRole(t, "treegrid") == nil {
			return 0
		}
		return countAncestors(t, func(a *Tree) bool { return a.Role == "row" }, func(a *Tree) bool { return a.Role == "treegrid" }) + 1
	case "comment":
		return countAncestors(t, func(a *Tree) bool { return a.Role == "comment" }, nil) + 1
	}
	return 0
}

func countAncestors(t *Tree, match, stop func(*Tree) bool) int {
	n := 0
	for a := t.Parent; a != nil; a = a.Parent {
		if stop != nil && stop(a) {
			break
		}
		if match(a) {
			n++
		}
	}
	return n
}

func ancestorWithRole(t *Tree, role string) *Tree {
	for a := t.Parent; a != nil; a = a.Parent {
		if a.Role == role {
			return a
		}
	}
	return nil
}

// siblings returns the set t belongs to for position and set size, in
// reading order.
func (b *builder) siblings(t *Tree) []*Tree {
	switch {
	case t.Role == "row" && ancestorWithRole(t, "treegrid") == nil:
		return nil
	case dom.InputType(t.Node) == "radio" && dom.AttrValue(t.Node, "name") != "":
		return b.radioGroup(t)
	}

	scope := t.Parent
	descend := func(c *Tree) bool { return aria.IsGeneric(c.Role) }
	if t.Role == "treeitem" {
		for a := t.Parent; a != nil; a = a.Parent {
			if a.Role == "group" || a.Role == "tree" {
				scope = a
				break
			}
		}
		descend = func(c *Tree) bool {
			return c.Role != "group" && c.Role != "tree" && c.Role != "treeitem"
		}
	}
	if scope == nil {
		return nil
	}

	var set []*Tree
	var collect func(*Tree)
	collect = func(p *Tree) {
		for _, c := range p.Children {
			switch {
			case c.Role == t.Role:
				set = append(set, c)
			case dom.IsElement(c.Node) && descend(c):
				collect(c)
			}
		}
	}
	collect(scope)
	return set
}

func (b *builder) radioGroup(t *Tree) []*Tree {
	name := dom.AttrValue(t.Node, "name")
	nodes, err := dom.FindAll(b.container, ".//input[@name="+dom.XPathLiteral(name)+"]")
	if err != nil {
		return nil
	}
	form := dom.Closest(t.Node, func(c *html.Node) bool { return dom.Tag(c) == "form" })
	var set []*Tree
	for _, n := range nodes {
		if dom.InputType(n) != "radio" {
			continue
		}
		if dom.Closest(n, func(c *html.Node) bool { return dom.Tag(c) == "form" }) != form {
			continue
		}
		if r, ok := b.nodes[n]; ok {
			set = append(set, r)
		}
	}
	return set
}
