package accname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"vsr/internal/dom"
)

func roleOf(n *html.Node) string {
	if r := explicitRole(n); r != "" {
		return r
	}
	switch dom.Tag(n) {
	case "button":
		return "button"
	case "a":
		return "link"
	case "h1", "h2":
		return "heading"
	case "input":
		if dom.InputType(n) == "text" {
			return "textbox"
		}
	case "select":
		return "combobox"
	}
	return "generic"
}

func TestName(t *testing.T) {
	doc, err := dom.ParseString(`
		<button id="content">Save <b>all</b></button>
		<button id="label" aria-label="  Close  ">x</button>
		<span id="first">Billing</span><span id="second">Address</span>
		<div id="labelledby" role="region" aria-labelledby="first missing second"></div>
		<div id="self-ref" aria-labelledby="self-ref other" aria-label="Fallback"></div><span id="other">Other</span>
		<label for="email">Email</label><input id="email" type="text">
		<label>Volume <input id="wrapped" type="text"></label>
		<input id="submit" type="submit"><input id="valued" type="button" value="Go">
		<img id="img" alt="A cat"><img id="img-empty" alt="">
		<fieldset id="fs"><legend>Shipping</legend></fieldset>
		<figure id="fig"><figcaption>Chart</figcaption></figure>
		<table id="tbl"><caption>Prices</caption></table>
		<div id="titled" title="Tooltip"></div>
		<input id="ph" type="text" placeholder="Search">
		<div id="generic">no name from content</div>
		<a id="hidden-part" href="#">Read <span hidden>secret</span>more</a>
		<div id="embed-ref">Qty</div>
		<div id="embedded" role="button" aria-labelledby="embed-ref sel"></div>
		<select id="sel"><option>1</option><option selected>2</option></select>
		<span id="hidden-ref" hidden>Hidden label</span><button id="by-hidden" aria-labelledby="hidden-ref">x</button>
	`)
	require.NoError(t, err)
	r := New(WithRole(roleOf))

	tests := map[string]string{
		"content":     "Save all",
		"label":       "Close",
		"labelledby":  "Billing Address",
		"self-ref":    "Fallback Other",
		"email":       "Email",
		"wrapped":     "Volume",
		"submit":      "Submit",
		"valued":      "Go",
		"img":         "A cat",
		"img-empty":   "",
		"fs":          "Shipping",
		"fig":         "Chart",
		"tbl":         "Prices",
		"titled":      "Tooltip",
		"ph":          "Search",
		"generic":     "",
		"hidden-part": "Read more",
		"embedded":    "Qty 2",
		"by-hidden":   "Hidden label",
	}
	for id, want := range tests {
		t.Run(id, func(t *testing.T) {
			assert.Equal(t, want, r.Name(doc.ElementByID(id)))
		})
	}
}

func TestName_TextNode(t *testing.T) {
	doc, err := dom.ParseString(`<p id="p">  Hello
		world </p>`)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", New().Name(doc.ElementByID("p").FirstChild))
}

func TestName_LabelledByCycle(t *testing.T) {
	doc, err := dom.ParseString(`<div id="a" role="button" aria-labelledby="b">A</div><div id="b" role="button" aria-labelledby="a">B</div>`)
	require.NoError(t, err)
	assert.Equal(t, "B", New().Name(doc.ElementByID("a")))
}

func TestDescription(t *testing.T) {
	doc, err := dom.ParseString(`
		<button id="described" aria-describedby="d1 d2">Go</button><span id="d1">Opens</span><span id="d2">a dialog</span>
		<button id="aria-desc" aria-description=" Extra ">Go</button>
		<button id="title" title="Tip">Go</button>
		<div id="title-is-name" title="Only"></div>
	`)
	require.NoError(t, err)
	r := New(WithRole(roleOf))

	assert.Equal(t, "Opens a dialog", r.Description(doc.ElementByID("described")))
	assert.Equal(t, "Extra", r.Description(doc.ElementByID("aria-desc")))
	assert.Equal(t, "Tip", r.Description(doc.ElementByID("title")))
	assert.Equal(t, "", r.Description(doc.ElementByID("title-is-name")))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("  a\n\tb   c "))
	assert.Equal(t, "", Normalize(" \n "))
}

func TestName_LabelForQuotedID(t *testing.T) {
	doc, err := dom.ParseString(`<label for="it's &quot;x&quot;">Quoted</label><input id="it's &quot;x&quot;" type="text">`)
	require.NoError(t, err)
	assert.Equal(t, "Quoted", New(WithRole(roleOf)).Name(doc.ElementByID(`it's "x"`)))
}
