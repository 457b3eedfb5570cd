package input

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsr/internal/dom"
)

func setup(t *testing.T, src string) (*dom.Document, *Simulator) {
	t.Helper()
	doc, err := dom.ParseString(src)
	require.NoError(t, err)
	return doc, New(doc)
}

func TestParseChord(t *testing.T) {
	tests := []struct {
		in   string
		want Chord
	}{
		{"a", Chord{Key: "a"}},
		{"Enter", Chord{Key: "Enter"}},
		{"Control+Shift+a", Chord{Key: "a", Modifiers: dom.Modifiers{Control: true, Shift: true}}},
		{"Meta+Alt+ArrowDown", Chord{Key: "ArrowDown", Modifiers: dom.Modifiers{Meta: true, Alt: true}}},
		{"+", Chord{Key: "+"}},
		{"Shift++", Chord{Key: "+", Modifiers: dom.Modifiers{Shift: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseChord(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "Hyper+a", "Shift+"} {
		_, err := ParseChord(bad)
		assert.Error(t, err, bad)
	}
}

func TestClick_TogglesCheckbox(t *testing.T) {
	doc, sim := setup(t, `<input id="c" type="checkbox">`)
	c := doc.ElementByID("c")
	var events []string
	for _, typ := range []string{"mousedown", "mouseup", "click", "change"} {
		typ := typ
		doc.AddEventListener(c, typ, func(*dom.Event) { events = append(events, typ) })
	}

	require.NoError(t, sim.Click(context.Background(), c, ClickOptions{}))
	assert.True(t, dom.HasAttr(c, "checked"))
	assert.Equal(t, c, doc.ActiveElement())
	assert.Equal(t, []string{"mousedown", "mouseup", "click", "change"}, events)

	require.NoError(t, sim.Click(context.Background(), c, ClickOptions{}))
	assert.False(t, dom.HasAttr(c, "checked"))
}

func TestClick_PreventDefault(t *testing.T) {
	doc, sim := setup(t, `<input id="c" type="checkbox">`)
	c := doc.ElementByID("c")
	doc.AddEventListener(c, "click", func(ev *dom.Event) { ev.PreventDefault() })
	require.NoError(t, sim.Click(context.Background(), c, ClickOptions{}))
	assert.False(t, dom.HasAttr(c, "checked"))
}

func TestClick_RadioGroupAndLabel(t *testing.T) {
	doc, sim := setup(t, `<input id="a" type="radio" name="g" checked><label id="l" for="b">B</label><input id="b" type="radio" name="g">`)
	require.NoError(t, sim.Click(context.Background(), doc.ElementByID("l"), ClickOptions{}))
	assert.True(t, dom.HasAttr(doc.ElementByID("b"), "checked"))
	assert.False(t, dom.HasAttr(doc.ElementByID("a"), "checked"))
	assert.Equal(t, doc.ElementByID("b"), doc.ActiveElement())
}

func TestClick_ButtonsAndCount(t *testing.T) {
	doc, sim := setup(t, `<div id="d" tabindex="0">x</div>`)
	d := doc.ElementByID("d")
	counts := map[string]int{}
	for _, typ := range []string{"click", "dblclick", "contextmenu", "auxclick"} {
		typ := typ
		doc.AddEventListener(d, typ, func(*dom.Event) { counts[typ]++ })
	}

	require.NoError(t, sim.Click(context.Background(), d, ClickOptions{ClickCount: 2}))
	require.NoError(t, sim.Click(context.Background(), d, ClickOptions{Button: ButtonRight}))
	require.NoError(t, sim.Click(context.Background(), d, ClickOptions{Button: ButtonMiddle}))
	assert.Equal(t, map[string]int{"click": 2, "dblclick": 1, "contextmenu": 1, "auxclick": 1}, counts)

	assert.ErrorIs(t, sim.Click(context.Background(), nil, ClickOptions{}), ErrNoTarget)
}

func TestClick_SummaryTogglesDetails(t *testing.T) {
	doc, sim := setup(t, `<details id="d"><summary id="s">More</summary><p>Body</p></details>`)
	require.NoError(t, sim.Click(context.Background(), doc.ElementByID("s"), ClickOptions{}))
	assert.True(t, dom.HasAttr(doc.ElementByID("d"), "open"))
}

func TestType_EditsTextEntry(t *testing.T) {
	doc, sim := setup(t, `<input id="i" value="ab"><textarea id="t"></textarea>`)
	i := doc.ElementByID("i")
	require.NoError(t, sim.Type(context.Background(), i, "cd"))
	assert.Equal(t, "abcd", dom.AttrValue(i, "value"))
	assert.Equal(t, i, doc.ActiveElement())

	require.NoError(t, sim.Press(context.Background(), i, "Backspace"))
	require.NoError(t, sim.Press(context.Background(), i, "Shift+e"))
	require.NoError(t, sim.Press(context.Background(), i, "Control+a"))
	assert.Equal(t, "abcE", dom.AttrValue(i, "value"))

	ta := doc.ElementByID("t")
	require.NoError(t, sim.Type(context.Background(), ta, "hi"))
	assert.Equal(t, "hi", dom.TextContent(ta))
}

func TestPress_TabMovesFocus(t *testing.T) {
	doc, sim := setup(t, `<button id="a">A</button><div tabindex="-1">skip</div><a id="b" href="#">B</a><input id="c">`)
	ctx := context.Background()

	require.NoError(t, sim.Press(ctx, nil, "Tab"))
	assert.Equal(t, "a", dom.AttrValue(doc.ActiveElement(), "id"))
	require.NoError(t, sim.Press(ctx, nil, "Tab"))
	assert.Equal(t, "b", dom.AttrValue(doc.ActiveElement(), "id"))
	require.NoError(t, sim.Press(ctx, nil, "Shift+Tab"))
	assert.Equal(t, "a", dom.AttrValue(doc.ActiveElement(), "id"))
	require.NoError(t, sim.Press(ctx, nil, "Shift+Tab"))
	assert.Equal(t, "c", dom.AttrValue(doc.ActiveElement(), "id"), "focus wraps")
}

func TestPress_EnterAndSpaceActivate(t *testing.T) {
	doc, sim := setup(t, `<button id="b">Go</button><input id="c" type="checkbox">`)
	clicks := 0
	doc.AddEventListener(doc.ElementByID("b"), "click", func(*dom.Event) { clicks++ })
	require.NoError(t, sim.Press(context.Background(), doc.ElementByID("b"), "Enter"))
	require.NoError(t, sim.Press(context.Background(), doc.ElementByID("b"), " "))
	assert.Equal(t, 2, clicks)

	require.NoError(t, sim.Press(context.Background(), doc.ElementByID("c"), " "))
	assert.True(t, dom.HasAttr(doc.ElementByID("c"), "checked"))
}

func TestCancelledContext(t *testing.T) {
	doc, sim := setup(t, `<button id="b">Go</button>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sim.Click(ctx, doc.ElementByID("b"), ClickOptions{}), context.Canceled)
	assert.ErrorIs(t, sim.Press(ctx, doc.ElementByID("b"), "a"), context.Canceled)
}

func TestParseButton(t *testing.T) {
	b, err := ParseButton("Right")
	require.NoError(t, err)
	assert.Equal(t, ButtonRight, b)
	_, err = ParseButton("fourth")
	assert.Error(t, err)
}
