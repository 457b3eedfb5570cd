// Package a11y builds the accessibility tree the virtual screen reader walks:
// role resolution, value and attribute labels, the owns-aware tree and its
// flattened reading order.
package a11y

import (
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/aria"
	"vsr/internal/dom"
)

// Host is the part of the host document the tree builder reads.
type Host interface {
	ComputedStyle(n *html.Node) (dom.Style, error)
}

// IsHiddenFromAccessibilityTree reports whether n has no accessibility tree
// node of its own.
func IsHiddenFromAccessibilityTree(host Host, n *html.Node) bool {
	hidden, _ := hiddenState(host, n)
	return hidden
}

// hiddenState reports whether n is hidden and whether its whole subtree is
// hidden with it. Inertness hides only the node: a modal dialog inside an
// inert subtree is still exposed.
func hiddenState(host Host, n *html.Node) (hidden, prune bool) {
	if n == nil {
		return true, true
	}
	if dom.IsText(n) {
		empty := strings.TrimSpace(n.Data) == ""
		return empty, empty
	}
	if !dom.IsElement(n) {
		return true, true
	}
	if dom.HasAttr(n, "hidden") && !strings.EqualFold(dom.AttrValue(n, "hidden"), "until-found") {
		return true, true
	}
	if strings.EqualFold(strings.TrimSpace(dom.AttrValue(n, "aria-hidden")), "true") {
		return true, true
	}
	style, err := host.ComputedStyle(n)
	if err != nil || style.Display == "none" {
		return true, true
	}
	if style.Hidden() {
		// Visibility is inherited but descendants may override it.
		return true, false
	}
	if isInert(n) {
		return true, false
	}
	return false, false
}

func isInert(n *html.Node) bool {
	for c := n; dom.IsElement(c); c = c.Parent {
		if IsModalDialog(c) {
			return false
		}
		if dom.HasAttr(c, "inert") {
			return true
		}
	}
	return false
}

// IsModalDialog reports whether n is a dialog or alertdialog with
// aria-modal="true".
func IsModalDialog(n *html.Node) bool {
	if !strings.EqualFold(strings.TrimSpace(dom.AttrValue(n, "aria-modal")), "true") {
		return false
	}
	for _, tok := range dom.Tokens(n, "role") {
		if aria.IsValid(tok) {
			role := aria.Canonical(tok)
			return role == "dialog" || role == "alertdialog"
		}
	}
	return dom.Tag(n) == "dialog"
}
