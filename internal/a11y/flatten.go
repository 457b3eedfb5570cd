package a11y

import (
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/accname"
	"vsr/internal/dom"
)

const endOfPrefix = "end of "

// AccessibilityNode is one stop of the virtual cursor.
type AccessibilityNode struct {
	Node                          *html.Node
	Role                          string
	SpokenRole                    string
	AccessibleName                string
	AccessibleDescription         string
	AccessibleValue               string
	AccessibleAttributeLabels     []string
	AccessibleAttributeToLabelMap map[string]AttributeLabel
	AlternateReadingOrderParents  []*html.Node
	ChildrenPresentational        bool
	// Parent is the host node of the nearest tree ancestor.
	Parent *html.Node
	// ParentTree is a non-owning back-reference into the nested tree.
	ParentTree *Tree
}

// IsBoundary reports whether the node is a synthetic "end of" marker.
func (n AccessibilityNode) IsBoundary() bool {
	return strings.HasPrefix(n.SpokenRole, endOfPrefix)
}

// FlattenTree linearizes the tree in reading order, adding an "end of ROLE"
// node after every announced container that produced children.
func FlattenTree(t *Tree) []AccessibilityNode {
	if t == nil {
		return nil
	}
	var children []AccessibilityNode
	if !coveredByName(t) {
		for _, c := range t.Children {
			children = append(children, FlattenTree(c)...)
		}
	}

	announced := t.AccessibleName != "" || t.AccessibleDescription != "" ||
		len(t.AccessibleAttributeLabels) > 0 || t.SpokenRole != ""
	if !announced {
		return children
	}

	self := toAccessibilityNode(t)
	out := make([]AccessibilityNode, 0, len(children)+2)
	out = append(out, self)
	out = append(out, children...)
	if len(children) > 0 && t.SpokenRole != "" {
		end := self
		end.SpokenRole = endOfPrefix + t.SpokenRole
		out = append(out, end)
	}
	return out
}

// coveredByName reports whether the node's name already says everything its
// descendants would.
func coveredByName(t *Tree) bool {
	if t.AccessibleName == "" || !dom.IsElement(t.Node) {
		return false
	}
	return t.AccessibleName == accname.Normalize(dom.TextContent(t.Node)) ||
		t.AccessibleName == strings.TrimSpace(t.AccessibleValue)
}

func toAccessibilityNode(t *Tree) AccessibilityNode {
	n := AccessibilityNode{
		Node:                          t.Node,
		Role:                          t.Role,
		SpokenRole:                    t.SpokenRole,
		AccessibleName:                t.AccessibleName,
		AccessibleDescription:         t.AccessibleDescription,
		AccessibleValue:               t.AccessibleValue,
		AccessibleAttributeLabels:     t.AccessibleAttributeLabels,
		AccessibleAttributeToLabelMap: t.AccessibleAttributeToLabelMap,
		AlternateReadingOrderParents:  t.AlternateReadingOrderParents,
		ChildrenPresentational:        t.ChildrenPresentational,
		ParentTree:                    t.Parent,
	}
	if t.Parent != nil {
		n.Parent = t.Parent.Node
	}
	return n
}
