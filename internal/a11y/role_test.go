package a11y

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsr/internal/dom"
)

func TestGetRole(t *testing.T) {
	doc, err := dom.ParseString(`
		<div id="image" role="image"></div>
		<div id="directory" role="directory"></div>
		<div id="abstract" role="widget button"></div>
		<div id="garbage" role="foo link"></div>
		<div id="region" role="region"></div>
		<nav id="pres" role="presentation"></nav>
		<nav id="pres-global" role="presentation" aria-describedby="x"></nav>
		<a id="pres-focus" role="none" href="#">x</a>
		<input id="range" type="range">
		<select id="multi" multiple></select>
		<select id="sized" size="4"></select>
		<select id="single"></select>
		<img id="decorative" alt="">
		<img id="photo" alt="Cat">
		<a id="anchor">x</a>
		<header id="banner"></header>
		<article><header id="scoped"></header></article>
	`)
	require.NoError(t, err)

	tests := []struct {
		id       string
		name     string
		role     string
		explicit string
	}{
		{id: "image", role: "img", explicit: "img"},
		{id: "directory", role: "list", explicit: "list"},
		{id: "abstract", role: "button", explicit: "button"},
		{id: "garbage", role: "link", explicit: "link"},
		{id: "region", role: "generic"},
		{id: "region", name: "Named", role: "region", explicit: "region"},
		{id: "pres", role: "presentation", explicit: "presentation"},
		{id: "pres-global", role: "navigation"},
		{id: "pres-focus", role: "link"},
		{id: "range", role: "slider"},
		{id: "multi", role: "listbox"},
		{id: "sized", role: "listbox"},
		{id: "single", role: "combobox"},
		{id: "decorative", role: "presentation"},
		{id: "photo", role: "img"},
		{id: "anchor", role: "generic"},
		{id: "banner", role: "banner"},
		{id: "scoped", role: "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.name, func(t *testing.T) {
			got := GetRole(RoleInput{Node: doc.ElementByID(tt.id), AccessibleName: tt.name})
			assert.Equal(t, tt.role, got.Role)
			assert.Equal(t, tt.explicit, got.ExplicitRole)
		})
	}
}

func TestGetRole_InheritedPresentation(t *testing.T) {
	doc, err := dom.ParseString(`<ul><li id="li">x</li><li id="explicit" role="option">y</li></ul><div id="div"></div>`)
	require.NoError(t, err)

	got := GetRole(RoleInput{Node: doc.ElementByID("li"), InheritedImplicitPresentational: true, AllowedChildRoles: []string{"listitem"}})
	assert.Equal(t, "none", got.Role)
	assert.Equal(t, "listitem", got.ImplicitRole)

	got = GetRole(RoleInput{Node: doc.ElementByID("explicit"), InheritedImplicitPresentational: true, AllowedChildRoles: []string{"listitem"}})
	assert.Equal(t, "option", got.Role)

	got = GetRole(RoleInput{Node: doc.ElementByID("div"), InheritedImplicitPresentational: true, AllowedChildRoles: []string{"listitem"}})
	assert.Equal(t, "generic", got.Role, "only owned child roles inherit")

	got = GetRole(RoleInput{Node: doc.ElementByID("div"), InheritedImplicitPresentational: true})
	assert.Equal(t, "none", got.Role)
}

func TestSpokenRole(t *testing.T) {
	doc, err := dom.ParseString(`<div id="a" aria-roledescription=" slide "></div>`)
	require.NoError(t, err)
	a := doc.ElementByID("a")
	assert.Equal(t, "", SpokenRole(a, "generic"))
	assert.Equal(t, "", SpokenRole(a, "none"))
	assert.Equal(t, "slide", SpokenRole(a, "group"))
	assert.Equal(t, "list", SpokenRole(doc.Body(), "list"))
}

func TestIsHiddenFromAccessibilityTree(t *testing.T) {
	doc, err := dom.ParseString(`<p id="p">text</p><p id="ws"> </p><div inert><div id="inert"></div>` +
		`<div id="modal" role="alertdialog" aria-modal="true"><span id="in-modal"></span></div></div>`)
	require.NoError(t, err)

	assert.False(t, IsHiddenFromAccessibilityTree(doc, doc.ElementByID("p").FirstChild))
	assert.True(t, IsHiddenFromAccessibilityTree(doc, doc.ElementByID("ws").FirstChild))
	assert.True(t, IsHiddenFromAccessibilityTree(doc, doc.ElementByID("inert")))
	assert.False(t, IsHiddenFromAccessibilityTree(doc, doc.ElementByID("modal")))
	assert.False(t, IsHiddenFromAccessibilityTree(doc, doc.ElementByID("in-modal")))
	assert.True(t, IsHiddenFromAccessibilityTree(doc, doc.Root()), "document node is not an element")
}
