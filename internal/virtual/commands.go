package virtual

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"vsr/internal/a11y"
	"vsr/internal/aria"
	"vsr/internal/dom"
)

// Command is a navigation command understood by Engine.Perform.
type Command int

const (
	MoveToNextBanner Command = iota + 1
	MoveToPreviousBanner
	MoveToNextComplementary
	MoveToPreviousComplementary
	MoveToNextContentinfo
	MoveToPreviousContentinfo
	MoveToNextFigure
	MoveToPreviousFigure
	MoveToNextForm
	MoveToPreviousForm
	MoveToNextMain
	MoveToPreviousMain
	MoveToNextNavigation
	MoveToPreviousNavigation
	MoveToNextRegion
	MoveToPreviousRegion
	MoveToNextSearch
	MoveToPreviousSearch
	MoveToNextLandmark
	MoveToPreviousLandmark
	MoveToNextHeading
	MoveToPreviousHeading
	MoveToNextLink
	MoveToPreviousLink
	MoveToNextList
	MoveToPreviousList
	MoveToNextTable
	MoveToPreviousTable
	MoveToNextGraphic
	MoveToPreviousGraphic
	MoveToNextHeadingLevel1
	MoveToPreviousHeadingLevel1
	MoveToNextHeadingLevel2
	MoveToPreviousHeadingLevel2
	MoveToNextHeadingLevel3
	MoveToPreviousHeadingLevel3
	MoveToNextHeadingLevel4
	MoveToPreviousHeadingLevel4
	MoveToNextHeadingLevel5
	MoveToPreviousHeadingLevel5
	MoveToNextHeadingLevel6
	MoveToPreviousHeadingLevel6
	JumpToControlledElement
	JumpToDetailsElement
	JumpToErrorMessageElement
	MoveToNextAlternateReadingOrderElement
	MoveToPreviousAlternateReadingOrderElement
)

// CommandOptions parameterises a command.
type CommandOptions struct {
	// Index selects among several ID references (aria-controls="a b") or
	// alternate reading order parents. Zero is the first.
	Index int
}

type commandArgs struct {
	CommandOptions
	container    *html.Node
	currentIndex int
	tree         []a11y.AccessibilityNode
	active       *a11y.AccessibilityNode
}

type commandKind int

const (
	kindScan commandKind = iota
	kindIDRef
	kindReadingOrderParent
)

type commandSpec struct {
	name      string
	kind      commandKind
	roles     []string
	level     string
	backwards bool
	attr      string
}

var commands = map[Command]commandSpec{}

func scanPair(next, prev Command, noun string, roles ...string) {
	commands[next] = commandSpec{name: "moveToNext" + noun, kind: kindScan, roles: roles}
	commands[prev] = commandSpec{name: "moveToPrevious" + noun, kind: kindScan, roles: roles, backwards: true}
}

func init() {
	scanPair(MoveToNextBanner, MoveToPreviousBanner, "Banner", "banner")
	scanPair(MoveToNextComplementary, MoveToPreviousComplementary, "Complementary", "complementary")
	scanPair(MoveToNextContentinfo, MoveToPreviousContentinfo, "Contentinfo", "contentinfo")
	scanPair(MoveToNextFigure, MoveToPreviousFigure, "Figure", "figure")
	scanPair(MoveToNextForm, MoveToPreviousForm, "Form", "form")
	scanPair(MoveToNextMain, MoveToPreviousMain, "Main", "main")
	scanPair(MoveToNextNavigation, MoveToPreviousNavigation, "Navigation", "navigation")
	scanPair(MoveToNextRegion, MoveToPreviousRegion, "Region", "region")
	scanPair(MoveToNextSearch, MoveToPreviousSearch, "Search", "search")
	scanPair(MoveToNextLandmark, MoveToPreviousLandmark, "Landmark", aria.LandmarkRoles...)
	scanPair(MoveToNextHeading, MoveToPreviousHeading, "Heading", aria.HeadingRoles...)
	scanPair(MoveToNextLink, MoveToPreviousLink, "Link", "link")
	scanPair(MoveToNextList, MoveToPreviousList, "List", "list")
	scanPair(MoveToNextTable, MoveToPreviousTable, "Table", "table", "grid", "treegrid")
	scanPair(MoveToNextGraphic, MoveToPreviousGraphic, "Graphic", "img", "graphics-document", "graphics-object", "graphics-symbol")

	for level := 1; level <= 6; level++ {
		next := MoveToNextHeadingLevel1 + Command(2*(level-1))
		l := strconv.Itoa(level)
		scanPair(next, next+1, "HeadingLevel"+l, aria.HeadingRoles...)
		for _, c := range []Command{next, next + 1} {
			spec := commands[c]
			spec.level = l
			commands[c] = spec
		}
	}

	commands[JumpToControlledElement] = commandSpec{name: "jumpToControlledElement", kind: kindIDRef, attr: "aria-controls"}
	commands[JumpToDetailsElement] = commandSpec{name: "jumpToDetailsElement", kind: kindIDRef, attr: "aria-details"}
	commands[JumpToErrorMessageElement] = commandSpec{name: "jumpToErrorMessageElement", kind: kindIDRef, attr: "aria-errormessage"}
	commands[MoveToNextAlternateReadingOrderElement] = commandSpec{name: "moveToNextAlternateReadingOrderElement", kind: kindIDRef, attr: "aria-flowto"}
	commands[MoveToPreviousAlternateReadingOrderElement] = commandSpec{name: "moveToPreviousAlternateReadingOrderElement", kind: kindReadingOrderParent}
}

func (c Command) String() string {
	if spec, ok := commands[c]; ok {
		return spec.name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// ParseCommand maps a command name such as "moveToNextHeading" to its
// Command.
func ParseCommand(name string) (Command, error) {
	for c, spec := range commands {
		if spec.name == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q: %w", name, ErrNotImplemented)
}

// Commands lists every command in declaration order.
func Commands() []Command {
	out := make([]Command, 0, len(commands))
	for c := MoveToNextBanner; c <= MoveToPreviousAlternateReadingOrderElement; c++ {
		out = append(out, c)
	}
	return out
}

// run returns the tree index the command moves to. ok is false when there is
// no target.
func (c Command) run(args commandArgs) (idx int, ok bool, err error) {
	spec, found := commands[c]
	if !found {
		return 0, false, ErrNotImplemented
	}
	switch spec.kind {
	case kindScan:
		idx, ok = scan(args, spec)
	case kindIDRef:
		idx, ok = jumpToIDRef(args, spec.attr)
	case kindReadingOrderParent:
		idx, ok = jumpToReadingOrderParent(args)
	default:
		return 0, false, ErrNotImplemented
	}
	return idx, ok, nil
}

// scan walks the tree from just after the current node, wrapping once, and
// returns the first node whose role is in spec.roles.
func scan(args commandArgs, spec commandSpec) (int, bool) {
	n := len(args.tree)
	if n == 0 {
		return 0, false
	}
	current := args.currentIndex
	if spec.backwards && current < 0 {
		current = n
	}
	for k := 1; k <= n; k++ {
		var i int
		if spec.backwards {
			i = ((current-k)%n + n) % n
		} else {
			i = (current + k) % n
		}
		node := args.tree[i]
		if node.IsBoundary() || !contains(spec.roles, node.Role) {
			continue
		}
		if spec.level != "" && headingLevel(node) != spec.level {
			continue
		}
		return i, true
	}
	return 0, false
}

func headingLevel(n a11y.AccessibilityNode) string {
	return n.AccessibleAttributeToLabelMap["aria-level"].Value
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func jumpToIDRef(args commandArgs, attr string) (int, bool) {
	if args.active == nil {
		return 0, false
	}
	ids := dom.Tokens(args.active.Node, attr)
	if args.Index < 0 || args.Index >= len(ids) {
		return 0, false
	}
	target := dom.FindByID(args.container, ids[args.Index])
	if target == nil {
		return 0, false
	}
	return indexOf(args.tree, target)
}

func jumpToReadingOrderParent(args commandArgs) (int, bool) {
	if args.active == nil {
		return 0, false
	}
	parents := args.active.AlternateReadingOrderParents
	if args.Index < 0 || args.Index >= len(parents) {
		return 0, false
	}
	return indexOf(args.tree, parents[args.Index])
}

// indexOf finds target in the tree, falling back to the first node whose
// tree parent is target when target itself has no node of its own.
func indexOf(tree []a11y.AccessibilityNode, target *html.Node) (int, bool) {
	for i, n := range tree {
		if n.Node == target && !n.IsBoundary() {
			return i, true
		}
	}
	for i, n := range tree {
		if n.Parent == target && !n.IsBoundary() {
			return i, true
		}
	}
	return 0, false
}
