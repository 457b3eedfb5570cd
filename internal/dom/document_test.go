package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseString(src)
	require.NoError(t, err)
	return doc
}

func TestParseString_FragmentLandsInBody(t *testing.T) {
	doc := mustParse(t, `<nav>Nav Text</nav><footer>Footer</footer>`)
	body := doc.Body()
	require.NotNil(t, body)
	assert.Equal(t, "nav", Tag(body.FirstChild))
	assert.Equal(t, "Nav TextFooter", TextContent(body))
	assert.NotNil(t, doc.Head())
}

func TestElementByID(t *testing.T) {
	doc := mustParse(t, `<div id="a"><span id="it's">x</span></div>`)
	assert.Equal(t, "div", Tag(doc.ElementByID("a")))
	assert.Equal(t, "span", Tag(doc.ElementByID("it's")))
	assert.Nil(t, doc.ElementByID("missing"))
	assert.Nil(t, doc.ElementByID(""))
}

func TestFindByID_ExcludesScope(t *testing.T) {
	doc := mustParse(t, `<div id="outer"><p id="inner"></p></div>`)
	outer := doc.ElementByID("outer")
	assert.Nil(t, FindByID(outer, "outer"))
	assert.Equal(t, "p", Tag(FindByID(outer, "inner")))
}

func TestWithAttribute(t *testing.T) {
	doc := mustParse(t, `<div id="a" aria-owns="b"><span id="b" aria-owns="c"></span><i id="c"></i></div>`)
	nodes := WithAttribute(doc.ElementByID("a"), "aria-owns")
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", AttrValue(nodes[0], "id"))
	assert.Equal(t, "b", AttrValue(nodes[1], "id"))
}

func TestObserve_DeliversOnFlush(t *testing.T) {
	doc := mustParse(t, `<div id="live">a</div><div id="other"></div>`)
	live := doc.ElementByID("live")

	var got []MutationRecord
	unsubscribe := doc.Observe(live, func(records []MutationRecord) {
		got = append(got, records...)
	})

	require.NoError(t, doc.SetData(live.FirstChild, "ab"))
	require.NoError(t, doc.SetAttribute(doc.ElementByID("other"), "class", "x"))
	assert.Empty(t, got, "records are queued until flush")

	require.NoError(t, doc.Flush(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, CharacterData, got[0].Type)
	assert.Equal(t, "a", got[0].OldValue)

	unsubscribe()
	require.NoError(t, doc.SetTextContent(live, "c"))
	require.NoError(t, doc.Flush(context.Background()))
	assert.Len(t, got, 1)
}

func TestFlush_ObserverMutationsAreDelivered(t *testing.T) {
	doc := mustParse(t, `<div id="a"></div>`)
	a := doc.ElementByID("a")
	calls := 0
	doc.Observe(doc.Root(), func(records []MutationRecord) {
		calls++
		if calls == 1 {
			_ = doc.SetAttribute(a, "data-seen", "1")
		}
	})
	require.NoError(t, doc.SetAttribute(a, "class", "x"))
	require.NoError(t, doc.Flush(context.Background()))
	assert.Equal(t, 2, calls)
	assert.Zero(t, doc.Pending())
}

func TestFlush_Overflow(t *testing.T) {
	doc := mustParse(t, `<div id="a"></div>`)
	a := doc.ElementByID("a")
	doc.Observe(doc.Root(), func([]MutationRecord) {
		_ = doc.SetAttribute(a, "data-n", "again")
	})
	require.NoError(t, doc.SetAttribute(a, "data-n", "start"))
	assert.ErrorIs(t, doc.Flush(context.Background()), ErrFlushOverflow)
}

func TestFlush_CancelledContext(t *testing.T) {
	doc := mustParse(t, `<div></div>`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, doc.Flush(ctx), context.Canceled)
}

func TestTreeMutations(t *testing.T) {
	doc := mustParse(t, `<ul id="list"><li id="one">1</li></ul>`)
	list := doc.ElementByID("list")
	two := doc.CreateElement("LI")
	require.NoError(t, doc.SetTextContent(two, "2"))
	require.NoError(t, doc.AppendChild(list, two))
	assert.Equal(t, "12", TextContent(list))

	require.NoError(t, doc.InsertBefore(list, two, doc.ElementByID("one")))
	assert.Equal(t, "21", TextContent(list))

	assert.ErrorIs(t, doc.AppendChild(two, list), ErrHierarchy)
	assert.ErrorIs(t, doc.RemoveChild(two, list), ErrNotChild)

	require.NoError(t, doc.Remove(two))
	assert.Equal(t, "1", TextContent(list))

	require.NoError(t, doc.SetInnerHTML(list, `<li>a</li><li>b</li>`))
	assert.Equal(t, "ab", TextContent(list))
}

func TestAttributes(t *testing.T) {
	doc := mustParse(t, `<input id="c" type="checkbox">`)
	c := doc.ElementByID("c")
	require.NoError(t, doc.ToggleAttribute(c, "checked", true))
	assert.True(t, HasAttr(c, "checked"))
	require.NoError(t, doc.ToggleAttribute(c, "checked", false))
	assert.False(t, HasAttr(c, "checked"))
	require.NoError(t, doc.RemoveAttribute(c, "absent"))
	assert.ErrorIs(t, doc.SetAttribute(c.Parent.Parent.Parent, "x", "y"), ErrNotElement)
}

func TestFocusAndEvents(t *testing.T) {
	doc := mustParse(t, `<div id="wrap"><button id="b">Go</button><span id="s">text</span></div>`)
	b := doc.ElementByID("b")
	wrap := doc.ElementByID("wrap")

	var order []string
	doc.AddEventListener(wrap, "focus", func(ev *Event) {
		order = append(order, "bubbled:"+AttrValue(ev.Target, "id"))
	})
	var focused []string
	unsubscribe := doc.OnFocus(func(target *html.Node) {
		focused = append(focused, AttrValue(target, "id"))
	})

	assert.Equal(t, doc.Body(), doc.ActiveElement())
	assert.True(t, doc.Focus(b))
	assert.False(t, doc.Focus(b), "refocusing is a no-op")
	assert.False(t, doc.Focus(doc.ElementByID("s")), "span is not focusable")
	assert.Equal(t, b, doc.ActiveElement())
	assert.Equal(t, []string{"bubbled:b"}, order)
	assert.Equal(t, []string{"b"}, focused)

	unsubscribe()
	doc.Blur()
	assert.Equal(t, doc.Body(), doc.ActiveElement())
}

func TestDispatch_PreventDefaultAndStop(t *testing.T) {
	doc := mustParse(t, `<div id="outer"><a id="link" href="#">x</a></div>`)
	link := doc.ElementByID("link")
	outerCalled := false
	doc.AddEventListener(doc.ElementByID("outer"), "click", func(*Event) { outerCalled = true })
	remove := doc.AddEventListener(link, "click", func(ev *Event) {
		ev.PreventDefault()
		ev.StopPropagation()
	})

	assert.False(t, doc.Dispatch(&Event{Type: "click", Target: link}))
	assert.False(t, outerCalled)

	remove()
	assert.True(t, doc.Dispatch(&Event{Type: "click", Target: link}))
	assert.True(t, outerCalled)
}

func TestRemovingFocusedElementResetsActive(t *testing.T) {
	doc := mustParse(t, `<button id="b">Go</button>`)
	b := doc.ElementByID("b")
	require.True(t, doc.Focus(b))
	require.NoError(t, doc.Remove(b))
	assert.Equal(t, doc.Body(), doc.ActiveElement())
}

func TestFindAll(t *testing.T) {
	doc := mustParse(t, `<ul><li id="a">1</li><li id="it's">2</li></ul>`)

	items, err := FindAll(doc.Root(), "//li")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2", InnerText(items[1]))
	assert.Same(t, items[1], doc.ElementByID("it's"))

	first, err := Compile("//li")
	require.NoError(t, err)
	again, err := Compile("//li")
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = FindAll(doc.Root(), "//li[")
	assert.Error(t, err)
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `'plain'`, XPathLiteral("plain"))
	assert.Equal(t, `"it's"`, XPathLiteral("it's"))
	assert.Equal(t, `concat('it', "'", 's "x"')`, XPathLiteral(`it's "x"`))

	doc := mustParse(t, `<p id="it's &quot;x&quot;">found</p>`)
	nodes, err := FindAll(doc.Root(), `//p[@id=`+XPathLiteral(`it's "x"`)+`]`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "found", InnerText(nodes[0]))
}
