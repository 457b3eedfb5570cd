package aria

import (
	"strconv"
	"strings"
)

// Kind is the formatting family of an ARIA state or property.
type Kind int

const (
	// KindSilent attributes are never announced.
	KindSilent Kind = iota
	KindState
	KindTristate
	KindToken
	KindInteger
	KindNumber
	KindString
	KindIDRefs
)

// Attribute describes how a state or property is spoken.
type Attribute struct {
	Name  string
	Kind  Kind
	Label string
	// Plural is the label used by KindIDRefs when more than one id is referenced.
	Plural string
	// Mixed is the KindTristate label for "mixed".
	Mixed string
	// Tokens maps KindToken values to labels; missing tokens are silent.
	Tokens map[string]string
}

var attributes = map[string]Attribute{}

func attr(a Attribute) { attributes[a.Name] = a }

func init() {
	for _, name := range []string{
		"aria-activedescendant", "aria-atomic", "aria-describedby",
		"aria-description", "aria-dropeffect", "aria-grabbed", "aria-hidden",
		"aria-label", "aria-labelledby", "aria-live", "aria-owns",
		"aria-relevant", "aria-roledescription",
	} {
		attr(Attribute{Name: name, Kind: KindSilent})
	}

	attr(Attribute{Name: "aria-busy", Kind: KindState, Label: "busy"})
	attr(Attribute{Name: "aria-disabled", Kind: KindState, Label: "disabled"})
	attr(Attribute{Name: "aria-expanded", Kind: KindState, Label: "expanded"})
	attr(Attribute{Name: "aria-modal", Kind: KindState, Label: "modal"})
	attr(Attribute{Name: "aria-multiline", Kind: KindState, Label: "multi-line"})
	attr(Attribute{Name: "aria-multiselectable", Kind: KindState, Label: "multi-selectable"})
	attr(Attribute{Name: "aria-readonly", Kind: KindState, Label: "read only"})
	attr(Attribute{Name: "aria-required", Kind: KindState, Label: "required"})
	attr(Attribute{Name: "aria-selected", Kind: KindState, Label: "selected"})

	attr(Attribute{Name: "aria-checked", Kind: KindTristate, Label: "checked", Mixed: "partially checked"})
	attr(Attribute{Name: "aria-pressed", Kind: KindTristate, Label: "pressed", Mixed: "partially pressed"})

	attr(Attribute{Name: "aria-autocomplete", Kind: KindToken, Tokens: map[string]string{
		"inline": "autocomplete inlined",
		"list":   "autocomplete in list",
		"both":   "autocomplete inlined and in list",
		"none":   "no autocomplete",
	}})
	attr(Attribute{Name: "aria-current", Kind: KindToken, Tokens: map[string]string{
		"page":     "current page",
		"step":     "current step",
		"location": "current location",
		"date":     "current date",
		"time":     "current time",
		"true":     "current item",
	}})
	attr(Attribute{Name: "aria-haspopup", Kind: KindToken, Tokens: map[string]string{
		"dialog":  "opens dialog",
		"grid":    "opens grid",
		"listbox": "opens listbox",
		"menu":    "opens menu",
		"tree":    "opens tree",
		"true":    "opens menu",
	}})
	attr(Attribute{Name: "aria-invalid", Kind: KindToken, Tokens: map[string]string{
		"true":     "invalid input",
		"grammar":  "grammatical error detected",
		"spelling": "spelling error detected",
	}})
	attr(Attribute{Name: "aria-orientation", Kind: KindToken, Tokens: map[string]string{
		"horizontal": "orientated horizontally",
		"vertical":   "orientated vertically",
	}})
	attr(Attribute{Name: "aria-sort", Kind: KindToken, Tokens: map[string]string{
		"ascending":  "sorted in ascending order",
		"descending": "sorted in descending order",
		"none":       "no defined sort order",
		"other":      "non ascending / descending sort order applied",
	}})

	attr(Attribute{Name: "aria-colcount", Kind: KindInteger, Label: "column count"})
	attr(Attribute{Name: "aria-colindex", Kind: KindInteger, Label: "column index"})
	attr(Attribute{Name: "aria-colspan", Kind: KindInteger, Label: "column span"})
	attr(Attribute{Name: "aria-level", Kind: KindInteger, Label: "level"})
	attr(Attribute{Name: "aria-posinset", Kind: KindInteger, Label: "position"})
	attr(Attribute{Name: "aria-rowcount", Kind: KindInteger, Label: "row count"})
	attr(Attribute{Name: "aria-rowindex", Kind: KindInteger, Label: "row index"})
	attr(Attribute{Name: "aria-rowspan", Kind: KindInteger, Label: "row span"})
	attr(Attribute{Name: "aria-setsize", Kind: KindInteger, Label: "set size"})

	attr(Attribute{Name: "aria-valuemax", Kind: KindNumber, Label: "max value"})
	attr(Attribute{Name: "aria-valuemin", Kind: KindNumber, Label: "min value"})
	attr(Attribute{Name: "aria-valuenow", Kind: KindNumber, Label: "current value"})

	attr(Attribute{Name: "aria-colindextext", Kind: KindString, Label: "column index"})
	attr(Attribute{Name: "aria-keyshortcuts", Kind: KindString, Label: "key shortcuts"})
	attr(Attribute{Name: "aria-placeholder", Kind: KindString, Label: "placeholder"})
	attr(Attribute{Name: "aria-rowindextext", Kind: KindString, Label: "row index"})
	attr(Attribute{Name: "aria-valuetext", Kind: KindString, Label: "current value"})

	attr(Attribute{Name: "aria-controls", Kind: KindIDRefs, Label: "control", Plural: "controls"})
	attr(Attribute{Name: "aria-details", Kind: KindIDRefs, Label: "linked details", Plural: "linked details"})
	attr(Attribute{Name: "aria-errormessage", Kind: KindIDRefs, Label: "error message", Plural: "error messages"})
	attr(Attribute{Name: "aria-flowto", Kind: KindIDRefs, Label: "alternate reading order", Plural: "alternate reading orders"})
}

// LookupAttribute returns the formatting rules for an ARIA attribute.
func LookupAttribute(name string) (Attribute, bool) {
	a, ok := attributes[strings.ToLower(name)]
	return a, ok
}

// Format renders value as a spoken label. An empty result means the value
// is not announced.
func (a Attribute) Format(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	switch a.Kind {
	case KindState:
		switch strings.ToLower(value) {
		case "true":
			return a.Label
		case "false":
			return "not " + a.Label
		}
	case KindTristate:
		switch strings.ToLower(value) {
		case "true":
			return a.Label
		case "false":
			return "not " + a.Label
		case "mixed":
			return a.Mixed
		}
	case KindToken:
		return a.Tokens[strings.ToLower(value)]
	case KindInteger, KindNumber, KindString:
		return a.Label + " " + value
	case KindIDRefs:
		return a.Count(len(strings.Fields(value)))
	}
	return ""
}

// Count renders an ID-ref count label such as "2 controls". The details
// relation is announced without a count.
func (a Attribute) Count(n int) string {
	if n <= 0 {
		return ""
	}
	if a.Name == "aria-details" {
		return a.Label
	}
	label := a.Label
	if n > 1 {
		label = a.Plural
	}
	return strconv.Itoa(n) + " " + label
}
