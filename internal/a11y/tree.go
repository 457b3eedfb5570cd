package a11y

import (
	"golang.org/x/net/html"

	"vsr/internal/accname"
	"vsr/internal/aria"
	"vsr/internal/dom"
	"vsr/internal/logging"
)

// AttributeLabel is the spoken label of a state or property together with
// the raw value it was derived from.
type AttributeLabel struct {
	Label string
	Value string
}

// Tree is a node of the nested accessibility tree.
type Tree struct {
	Node                          *html.Node
	Role                          string
	SpokenRole                    string
	AccessibleName                string
	AccessibleDescription         string
	AccessibleValue               string
	AccessibleAttributeLabels     []string
	AccessibleAttributeToLabelMap map[string]AttributeLabel
	// AlternateReadingOrderParents are the nodes whose aria-flowto targets this node.
	AlternateReadingOrderParents []*html.Node
	ChildrenPresentational       bool
	// Parent is a non-owning back-reference.
	Parent   *Tree
	Children []*Tree
}

// inheritance is what a node passes down to its children.
type inheritance struct {
	presentational bool
	allowed        []string
}

type builder struct {
	host      Host
	container *html.Node
	names     *accname.Resolver

	ownedBy  map[*html.Node]*html.Node
	owns     map[*html.Node][]*html.Node
	flowFrom map[*html.Node][]*html.Node
	visited  map[*html.Node]bool
	nodes    map[*html.Node]*Tree
	count    int
}

// BuildTree grows the accessibility tree rooted at container. It returns nil
// when the container itself is hidden.
func BuildTree(host Host, container *html.Node) *Tree {
	timer := logging.StartTimer(logging.CategoryTree, "build tree")
	defer timer.Stop()

	b := &builder{
		host:      host,
		container: container,
		ownedBy:   make(map[*html.Node]*html.Node),
		owns:      make(map[*html.Node][]*html.Node),
		flowFrom:  make(map[*html.Node][]*html.Node),
		visited:   make(map[*html.Node]bool),
		nodes:     make(map[*html.Node]*Tree),
	}
	b.names = accname.New(
		accname.WithHidden(func(n *html.Node) bool { return IsHiddenFromAccessibilityTree(host, n) }),
		accname.WithRole(func(n *html.Node) string { return GetRole(RoleInput{Node: n}).Role }),
	)
	b.claimOwned()
	b.indexFlowTo()

	var root *Tree
	b.grow(container, nil, inheritance{}, func(t *Tree) { root = t })
	if root == nil {
		logging.TreeDebug("container hidden, empty tree")
		return nil
	}
	b.label(root)
	logging.TreeDebug("built tree with %d nodes, %d owned, %d flowto targets", b.count, len(b.ownedBy), len(b.flowFrom))
	return root
}

// claimOwned resolves aria-owns in document order. A target is attached to
// the first owner that claims it; claims that would put a node under itself
// are dropped.
func (b *builder) claimOwned() {
	for _, owner := range dom.WithAttribute(b.container, "aria-owns") {
		if !b.reachable(owner) {
			continue
		}
		for _, id := range dom.Tokens(owner, "aria-owns") {
			target := dom.FindByID(b.container, id)
			switch {
			case target == nil, target == owner, target == b.container:
				continue
			case b.ownedBy[target] != nil:
				logging.TreeDebug("aria-owns %q already claimed", id)
				continue
			case b.isEffectiveAncestor(target, owner):
				logging.TreeDebug("aria-owns %q would create a cycle", id)
				continue
			case !b.reachable(target):
				continue
			}
			b.ownedBy[target] = owner
			b.owns[owner] = append(b.owns[owner], target)
		}
	}
}

// reachable reports whether the tree walk can reach n: neither n nor any
// ancestor up to the container hides its whole subtree.
func (b *builder) reachable(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if _, prune := hiddenState(b.host, c); prune {
			return false
		}
		if c == b.container {
			return true
		}
	}
	return false
}

// textHidden reports whether a text node inherits inertness or hidden
// visibility from its parent element.
func (b *builder) textHidden(n *html.Node) bool {
	p := dom.ParentElement(n)
	if p == nil {
		return false
	}
	if isInert(p) {
		return true
	}
	style, err := b.host.ComputedStyle(p)
	return err == nil && style.Hidden()
}

// isEffectiveAncestor reports whether candidate is on n's parent chain once
// existing aria-owns claims are taken into account.
func (b *builder) isEffectiveAncestor(candidate, n *html.Node) bool {
	seen := make(map[*html.Node]bool)
	for c := n; c != nil && !seen[c]; {
		if c == candidate {
			return true
		}
		seen[c] = true
		if c == b.container {
			return false
		}
		if owner, ok := b.ownedBy[c]; ok {
			c = owner
		} else {
			c = c.Parent
		}
	}
	return false
}

func (b *builder) indexFlowTo() {
	for _, source := range dom.WithAttribute(b.container, "aria-flowto") {
		if !b.reachable(source) {
			continue
		}
		seen := make(map[*html.Node]bool)
		for _, id := range dom.Tokens(source, "aria-flowto") {
			target := dom.FindByID(b.container, id)
			if target == nil || target == source || seen[target] {
				continue
			}
			seen[target] = true
			b.flowFrom[target] = append(b.flowFrom[target], source)
		}
	}
}

// children returns the accessibility children of n: DOM children that are
// not owned elsewhere followed by owned targets in aria-owns token order.
func (b *builder) children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if _, owned := b.ownedBy[c]; owned {
			continue
		}
		out = append(out, c)
	}
	return append(out, b.owns[n]...)
}

// grow builds the tree node for n and hands it to attach. Nodes hidden only
// by inertness pass their children to attach directly.
func (b *builder) grow(n *html.Node, parent *Tree, inh inheritance, attach func(*Tree)) {
	if b.visited[n] {
		return
	}
	b.visited[n] = true

	hidden, prune := hiddenState(b.host, n)
	if hidden {
		if !prune {
			for _, c := range b.children(n) {
				b.grow(c, parent, inh, attach)
			}
		}
		return
	}

	if dom.IsText(n) && b.textHidden(n) {
		return
	}

	t := &Tree{Node: n, Parent: parent}
	b.nodes[n] = t
	b.count++
	if dom.IsText(n) {
		t.AccessibleName = accname.Normalize(n.Data)
		attach(t)
		return
	}

	t.AccessibleName = b.names.Name(n)
	res := GetRole(RoleInput{
		Node:                            n,
		AccessibleName:                  t.AccessibleName,
		InheritedImplicitPresentational: inh.presentational,
		AllowedChildRoles:               inh.allowed,
	})
	t.Role = res.Role
	t.SpokenRole = SpokenRole(n, t.Role)
	if d := b.names.Description(n); d != t.AccessibleName {
		t.AccessibleDescription = d
	}
	t.AccessibleValue = AccessibleValue(n)
	t.AlternateReadingOrderParents = b.flowFrom[n]

	role, _ := aria.Lookup(t.Role)
	t.ChildrenPresentational = role.ChildrenPresentational || (inh.presentational && inh.allowed == nil)

	var next inheritance
	switch {
	case t.ChildrenPresentational:
		next = inheritance{presentational: true}
	case aria.IsPresentational(t.Role):
		implicit, _ := aria.Lookup(res.ImplicitRole)
		if len(implicit.AllowedChildren) > 0 {
			next = inheritance{presentational: true, allowed: implicit.AllowedChildren}
		}
	}

	attach(t)
	for _, c := range b.children(n) {
		b.grow(c, t, next, func(child *Tree) { t.Children = append(t.Children, child) })
	}
}
