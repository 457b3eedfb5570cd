package a11y

import (
	"golang.org/x/net/html"

	"vsr/internal/dom"
)

// ModalScope returns the inclusive index range of the open modal dialog that
// contains active, so navigation can be confined to it. ok is false when
// active is not inside a modal dialog that is part of the tree.
func ModalScope(flat []AccessibilityNode, active *html.Node) (start, end int, ok bool) {
	modal := dom.Closest(active, IsModalDialog)
	if modal == nil {
		return 0, 0, false
	}
	start = -1
	for i, n := range flat {
		if n.Node != modal {
			continue
		}
		if !n.IsBoundary() {
			start = i
			end = i
			continue
		}
		if start >= 0 {
			end = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}
