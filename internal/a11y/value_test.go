package a11y

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vsr/internal/dom"
)

func TestAccessibleValue(t *testing.T) {
	doc, err := dom.ParseString(`
		<select id="none"><option>A</option></select>
		<select id="single"><option>A</option><option selected value="b">B</option></select>
		<select id="multi" multiple><option selected>One</option><option>Two</option><option selected value="3">Three</option></select>
		<input id="check" type="checkbox" value="on" checked>
		<input id="text" value="hello">
		<textarea id="area">multi
line</textarea>
		<progress id="progress" value="2" max="3"></progress>
		<div id="div">x</div>
	`)
	require.NoError(t, err)

	for id, want := range map[string]string{
		"none":     "",
		"single":   "b",
		"multi":    "One;3",
		"check":    "",
		"text":     "hello",
		"area":     "multi\nline",
		"progress": "2",
		"div":      "",
	} {
		assert.Equal(t, want, AccessibleValue(doc.ElementByID(id)), id)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		now, min, max, want string
	}{
		{"2", "0", "3", "66.67%"},
		{"50", "0", "100", "50%"},
		{"1", "0", "8", "12.5%"},
		{"15", "10", "20", "50%"},
		{"5", "", "", "5%"},
		{"5", "0", "x", "5%"},
		{"5", "1", "1", "5%"},
		{"1.005", "0", "100", "1.01%"},
		{"0.00125", "0", "1", "0.13%"},
		{"-1", "0", "3", "-33.33%"},
		{"0", "0", "3", "0%"},
		{"1/3", "0", "1", "1/3"},
		{"half", "0", "1", "half"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.now, tt.min, tt.max), "%s in [%s,%s]", tt.now, tt.min, tt.max)
	}
}

func TestSpokenPhraseAndItemText(t *testing.T) {
	n := AccessibilityNode{
		SpokenRole:                "textbox",
		AccessibleName:            "Email",
		AccessibleValue:           "a@b.c",
		AccessibleDescription:     "Work address",
		AccessibleAttributeLabels: []string{"required", "invalid input"},
	}
	assert.Equal(t, "textbox, Email, a@b.c, Work address, required, invalid input", SpokenPhrase(n))
	assert.Equal(t, "Email, a@b.c", ItemText(n))

	same := AccessibilityNode{SpokenRole: "option", AccessibleName: "Red", AccessibleValue: "Red", AccessibleDescription: "Red"}
	assert.Equal(t, "option, Red", SpokenPhrase(same))
	assert.Equal(t, "Red", ItemText(same))
	assert.Equal(t, "", SpokenPhrase(AccessibilityNode{}))
}
