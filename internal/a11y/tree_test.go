package a11y

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsr/internal/dom"
)

func flatten(t *testing.T, src string) []AccessibilityNode {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return FlattenTree(BuildTree(doc, doc.Body()))
}

func phrases(nodes []AccessibilityNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = SpokenPhrase(n)
	}
	return out
}

func byID(t *testing.T, nodes []AccessibilityNode, id string) AccessibilityNode {
	t.Helper()
	for _, n := range nodes {
		if !n.IsBoundary() && dom.AttrValue(n.Node, "id") == id {
			return n
		}
	}
	t.Fatalf("no accessibility node for #%s", id)
	return AccessibilityNode{}
}

func TestFlatten_BasicTraversal(t *testing.T) {
	got := phrases(flatten(t, `<nav>Nav Text</nav><footer>Footer</footer>`))
	want := []string{"document", "navigation", "Nav Text", "end of navigation", "contentinfo", "Footer", "end of contentinfo", "end of document"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spoken phrases mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_BoundaryPairing(t *testing.T) {
	nodes := flatten(t, `<main><ul><li>One</li><li>Two</li></ul><button>Go</button></main>`)
	open := 0
	for _, n := range nodes {
		if n.IsBoundary() {
			open--
			continue
		}
		if n.SpokenRole != "" && hasChildren(nodes, n) {
			open++
		}
	}
	assert.Zero(t, open)
	assert.Equal(t, []string{
		"document", "main", "list",
		"listitem, level 1, position 1, set size 2", "One", "end of listitem, level 1, position 1, set size 2",
		"listitem, level 1, position 2, set size 2", "Two", "end of listitem, level 1, position 2, set size 2",
		"end of list", "button, Go", "end of main", "end of document",
	}, phrases(nodes))
}

func hasChildren(nodes []AccessibilityNode, n AccessibilityNode) bool {
	for _, c := range nodes {
		if c.IsBoundary() && c.Node == n.Node {
			return true
		}
	}
	return false
}

func TestFlatten_NameCoversChildren(t *testing.T) {
	assert.Equal(t, []string{"document", "button, Save", "end of document"},
		phrases(flatten(t, `<button>Save</button>`)))
	assert.Equal(t, []string{"document", "button, Close dialog", "x", "end of button, Close dialog", "end of document"},
		phrases(flatten(t, `<button aria-label="Close dialog">x</button>`)))
}

func TestAriaOwns_Reorder(t *testing.T) {
	nodes := flatten(t, `<div aria-owns="child1 child4 child2"><div id="child1">1</div><div id="child2">2</div><div id="child3">3</div><div id="child4">4</div></div>`)
	assert.Equal(t, []string{"document", "3", "1", "4", "2", "end of document"}, phrases(nodes))
}

func TestAriaOwns_CyclesTerminate(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "self",
			src:  `<div id="a" aria-owns="a">A</div>`,
			want: []string{"document", "A", "end of document"},
		},
		{
			name: "mutual",
			src:  `<div id="a" aria-owns="b">A</div><div id="b" aria-owns="a">B</div>`,
			want: []string{"document", "A", "B", "end of document"},
		},
		{
			name: "owner owns its ancestor",
			src:  `<div id="a"><div id="b" aria-owns="a">B</div></div>`,
			want: []string{"document", "B", "end of document"},
		},
		{
			name: "multi hop",
			src: `<div id="a" aria-owns="b">A</div><div id="b" aria-owns="c d">B</div>` +
				`<div id="c">C</div><div id="d" aria-owns="e">D</div><div id="e" aria-owns="c a">E</div>`,
			want: []string{"document", "A", "B", "C", "D", "E", "end of document"},
		},
		{
			name: "missing and hidden targets",
			src:  `<div aria-owns="nope h">A</div><div id="h" hidden>H</div>`,
			want: []string{"document", "A", "end of document"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, phrases(flatten(t, tt.src)))
		})
	}
}

func TestHiddenContent(t *testing.T) {
	nodes := flatten(t, `<div hidden>x</div><div style="display:none">y</div><div aria-hidden="true">z</div>`+
		`<div style="visibility:hidden">v<span style="visibility:visible">shown</span></div><span>w</span>`)
	assert.Equal(t, []string{"document", "shown", "w", "end of document"}, phrases(nodes))
}

func TestInert_ModalEscapes(t *testing.T) {
	nodes := flatten(t, `<div inert><p>Behind</p><div role="dialog" aria-modal="true" aria-label="Confirm"><button>OK</button></div></div>`)
	assert.Equal(t, []string{"document", "dialog, Confirm, modal", "button, OK", "end of dialog, Confirm, modal", "end of document"}, phrases(nodes))
}

func TestPresentationalInheritance(t *testing.T) {
	assert.Equal(t, []string{"document", "One", "end of document"},
		phrases(flatten(t, `<ul role="presentation"><li>One</li></ul>`)))
	assert.Equal(t, []string{"document", "listitem, position 1, set size 1", "One", "end of listitem, position 1, set size 1", "end of document"},
		phrases(flatten(t, `<ul role="none"><li role="listitem">One</li></ul>`)),
		"explicit roles survive inherited presentation")
	assert.Equal(t, []string{"document", "button, Go", "end of document"},
		phrases(flatten(t, `<button role="presentation">Go</button>`)),
		"focusable elements ignore presentation")
}

func TestChildrenPresentational(t *testing.T) {
	nodes := flatten(t, `<div role="button" aria-label="Menu"><h2>Heading</h2></div>`)
	assert.Equal(t, []string{"document", "button, Menu", "Heading", "end of button, Menu", "end of document"}, phrases(nodes))
	assert.True(t, nodes[1].ChildrenPresentational)
}

func TestCheckboxState(t *testing.T) {
	doc, err := dom.ParseString(`<label for="c">Accept terms</label><input id="c" type="checkbox" checked>`)
	require.NoError(t, err)
	nodes := FlattenTree(BuildTree(doc, doc.Body()))
	assert.Equal(t, "checkbox, Accept terms, checked", SpokenPhrase(byID(t, nodes, "c")))

	require.NoError(t, doc.RemoveAttribute(doc.ElementByID("c"), "checked"))
	nodes = FlattenTree(BuildTree(doc, doc.Body()))
	assert.Equal(t, "checkbox, Accept terms", SpokenPhrase(byID(t, nodes, "c")))

	nodes = flatten(t, `<div id="c" role="checkbox" aria-checked="mixed" tabindex="0">All</div>`)
	assert.Equal(t, "checkbox, All, partially checked", SpokenPhrase(byID(t, nodes, "c")))
}

func TestProgressbarPercentage(t *testing.T) {
	nodes := flatten(t, `<div id="p" role="progressbar" aria-valuenow="2" aria-valuemin="0" aria-valuemax="3"></div>`)
	p := byID(t, nodes, "p")
	assert.Contains(t, p.AccessibleAttributeLabels, "current value 66.67%")
	assert.Equal(t, "2", p.AccessibleAttributeToLabelMap["aria-valuenow"].Value)

	nodes = flatten(t, `<progress id="p" value="0.5"></progress>`)
	assert.Equal(t, "progressbar, 0.5, max value 1, min value 0, current value 50%", SpokenPhrase(byID(t, nodes, "p")))
}

func TestValueText_SuppressesValueNow(t *testing.T) {
	nodes := flatten(t, `<div id="s" role="slider" tabindex="0" aria-label="Volume" aria-valuenow="3" aria-valuetext="three"></div>`)
	assert.Equal(t, []string{"orientated horizontally", "max value 100", "min value 0", "current value three"},
		byID(t, nodes, "s").AccessibleAttributeLabels)
}

func TestErrorMessageNeedsInvalid(t *testing.T) {
	nodes := flatten(t, `<input id="a" aria-label="A" aria-errormessage="e" aria-invalid="true">`+
		`<input id="b" aria-label="B" aria-errormessage="e" aria-invalid="false">`+
		`<input id="c" aria-label="C" aria-errormessage="e"><p id="e">Bad</p>`)
	assert.Equal(t, []string{"1 error message", "invalid input"}, byID(t, nodes, "a").AccessibleAttributeLabels)
	assert.Empty(t, byID(t, nodes, "b").AccessibleAttributeLabels)
	assert.Empty(t, byID(t, nodes, "c").AccessibleAttributeLabels)
}

func TestFlowTo(t *testing.T) {
	nodes := flatten(t, `<a id="x" href="#" aria-flowto="y">Go</a><p id="y">Target</p>`)
	assert.Equal(t, "link, Go, 1 alternate reading order", SpokenPhrase(byID(t, nodes, "x")))
	y := byID(t, nodes, "y")
	assert.Equal(t, "paragraph, 1 previous alternate reading order", SpokenPhrase(y))
	require.Len(t, y.AlternateReadingOrderParents, 1)
	assert.Equal(t, "x", dom.AttrValue(y.AlternateReadingOrderParents[0], "id"))
}

func TestHeadingLevels(t *testing.T) {
	nodes := flatten(t, `<h3 id="a">Three</h3><div id="b" role="heading">Two</div><div id="c" role="heading" aria-level="5">Five</div>`)
	assert.Equal(t, "heading, Three, level 3", SpokenPhrase(byID(t, nodes, "a")))
	assert.Equal(t, "heading, Two, level 2", SpokenPhrase(byID(t, nodes, "b")))
	assert.Equal(t, "heading, Five, level 5", SpokenPhrase(byID(t, nodes, "c")))
}

func TestTreeItemLevelsAndPositions(t *testing.T) {
	nodes := flatten(t, `<ul role="tree" aria-label="Files"><li id="a" role="treeitem">A<ul role="group">`+
		`<li id="a1" role="treeitem">A1</li><li id="a2" role="treeitem">A2</li></ul></li>`+
		`<li id="b" role="treeitem">B</li></ul>`)
	assert.Equal(t, []string{"level 1", "position 1", "set size 2"}, byID(t, nodes, "a").AccessibleAttributeLabels)
	assert.Equal(t, []string{"level 2", "position 2", "set size 2"}, byID(t, nodes, "a2").AccessibleAttributeLabels)
	assert.Equal(t, []string{"level 1", "position 2", "set size 2"}, byID(t, nodes, "b").AccessibleAttributeLabels)
}

func TestRowsOnlyPositionedInTreegrid(t *testing.T) {
	nodes := flatten(t, `<table><tr id="r"><td>x</td></tr></table>`+
		`<div role="treegrid" aria-label="T"><div id="t1" role="row"><div role="gridcell">a</div></div><div id="t2" role="row"><div role="gridcell">b</div></div></div>`)
	assert.Empty(t, byID(t, nodes, "r").AccessibleAttributeLabels)
	assert.Equal(t, []string{"level 1", "position 2", "set size 2"}, byID(t, nodes, "t2").AccessibleAttributeLabels)
}

func TestNativeRadioGroup(t *testing.T) {
	nodes := flatten(t, `<input type="radio" name="g" aria-label="A"><p>between</p><input id="b" type="radio" name="g" aria-label="B" checked><input type="radio" name="other" aria-label="C">`)
	assert.Equal(t, "radio, B, checked, position 2, set size 2", SpokenPhrase(byID(t, nodes, "b")))
}

func TestNativeRadioGroup_QuotedName(t *testing.T) {
	nodes := flatten(t, `<input type="radio" name="it's &quot;on&quot;" aria-label="A"><input id="b" type="radio" name="it's &quot;on&quot;" aria-label="B">`)
	assert.Equal(t, "radio, B, position 2, set size 2", SpokenPhrase(byID(t, nodes, "b")))
}

func TestDescription(t *testing.T) {
	nodes := flatten(t, `<button id="a" aria-describedby="d">Save</button><span id="d">Save</span><button id="b" title="Tip">Open</button>`)
	assert.Empty(t, byID(t, nodes, "a").AccessibleDescription)
	assert.Equal(t, "button, Open, Tip", SpokenPhrase(byID(t, nodes, "b")))
}

func TestRoleDescription(t *testing.T) {
	nodes := flatten(t, `<div id="x" role="button" aria-roledescription="toggle">Mute</div>`)
	x := byID(t, nodes, "x")
	assert.Equal(t, "button", x.Role)
	assert.Equal(t, "toggle, Mute", SpokenPhrase(x))
}

func TestContentEditableInvertsReadOnly(t *testing.T) {
	nodes := flatten(t, `<div id="e" role="textbox" aria-label="Notes" contenteditable="true"></div><div id="r" role="textbox" aria-label="Locked" contenteditable="false"></div>`)
	assert.Equal(t, []string{"not read only"}, byID(t, nodes, "e").AccessibleAttributeLabels)
	assert.Equal(t, []string{"read only"}, byID(t, nodes, "r").AccessibleAttributeLabels)
}

func TestPlaceholderDroppedWhenValuePresent(t *testing.T) {
	nodes := flatten(t, `<input id="a" aria-label="Name" placeholder="Jane"><input id="b" aria-label="Name" placeholder="Jane" value="Bob">`)
	assert.Equal(t, "textbox, Name, placeholder Jane", SpokenPhrase(byID(t, nodes, "a")))
	assert.Equal(t, "textbox, Name, Bob", SpokenPhrase(byID(t, nodes, "b")))
}

func TestModalScope(t *testing.T) {
	doc, err := dom.ParseString(`<p>Outside</p><div id="d" role="dialog" aria-modal="true" aria-label="Confirm"><button id="ok">OK</button></div><p>After</p>`)
	require.NoError(t, err)
	nodes := FlattenTree(BuildTree(doc, doc.Body()))

	start, end, ok := ModalScope(nodes, doc.ElementByID("ok"))
	require.True(t, ok)
	assert.Equal(t, "dialog, Confirm, modal", SpokenPhrase(nodes[start]))
	assert.Equal(t, "end of dialog, Confirm, modal", SpokenPhrase(nodes[end]))

	_, _, ok = ModalScope(nodes, doc.Body())
	assert.False(t, ok)
}

func TestBuildTree_HiddenContainer(t *testing.T) {
	doc, err := dom.ParseString(`<div id="c" hidden>x</div>`)
	require.NoError(t, err)
	assert.Nil(t, BuildTree(doc, doc.ElementByID("c")))
	assert.Nil(t, FlattenTree(nil))
}
