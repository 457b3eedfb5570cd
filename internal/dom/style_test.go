package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputedStyle(t *testing.T) {
	doc := mustParse(t, `
		<div id="none" style="display: none !important">x</div>
		<div id="hidden-vis" style="visibility:hidden"><span id="inherits">y</span><span id="visible-again" style="visibility: visible">z</span></div>
		<p id="attr" hidden>h</p>
		<p id="until" hidden="until-found">u</p>
		<input id="hidden-input" type="hidden">
		<dialog id="closed"></dialog>
		<dialog id="open" open></dialog>
		<details id="details"><summary id="summary">S</summary><p id="content">C</p></details>
		<span id="plain">p</span>
	`)

	tests := []struct {
		id     string
		hidden bool
	}{
		{"none", true},
		{"hidden-vis", true},
		{"inherits", true},
		{"visible-again", false},
		{"attr", true},
		{"until", false},
		{"hidden-input", true},
		{"closed", true},
		{"open", false},
		{"summary", false},
		{"content", true},
		{"plain", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := doc.ComputedStyle(doc.ElementByID(tt.id))
			require.NoError(t, err)
			assert.Equal(t, tt.hidden, s.Hidden())
		})
	}

	head, err := doc.ComputedStyle(doc.Head())
	require.NoError(t, err)
	assert.Equal(t, "none", head.Display)

	_, err = doc.ComputedStyle(doc.ElementByID("plain").FirstChild)
	assert.ErrorIs(t, err, ErrNotElement)
}

func TestParseInlineStyle(t *testing.T) {
	got := parseInlineStyle(" Display : BLOCK ; ; color:red;bogus")
	assert.Equal(t, map[string]string{"display": "block", "color": "red"}, got)
}

func TestIsFocusable(t *testing.T) {
	doc := mustParse(t, `
		<a id="a" href="/">a</a><a id="a-nohref">b</a>
		<button id="btn">b</button><button id="btn-disabled" disabled>b</button>
		<div id="tab" tabindex="-1"></div><div id="editable" contenteditable="true"></div>
		<div id="plain"></div><input id="in"><input id="in-hidden" type="hidden">
	`)
	for id, want := range map[string]bool{
		"a": true, "a-nohref": false, "btn": true, "btn-disabled": false,
		"tab": true, "editable": true, "plain": false, "in": true, "in-hidden": false,
	} {
		assert.Equal(t, want, IsFocusable(doc.ElementByID(id)), id)
	}
}
