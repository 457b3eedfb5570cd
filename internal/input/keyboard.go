package input

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"vsr/internal/dom"
	"vsr/internal/logging"
)

// Chord is a key with the modifiers held while it is pressed.
type Chord struct {
	Key       string
	Modifiers dom.Modifiers
}

var modifierNames = map[string]func(*dom.Modifiers){
	"alt":     func(m *dom.Modifiers) { m.Alt = true },
	"option":  func(m *dom.Modifiers) { m.Alt = true },
	"control": func(m *dom.Modifiers) { m.Control = true },
	"ctrl":    func(m *dom.Modifiers) { m.Control = true },
	"meta":    func(m *dom.Modifiers) { m.Meta = true },
	"command": func(m *dom.Modifiers) { m.Meta = true },
	"cmd":     func(m *dom.Modifiers) { m.Meta = true },
	"shift":   func(m *dom.Modifiers) { m.Shift = true },
}

// ParseChord parses key combinations such as "Control+Shift+a". A literal
// "+" may be given as the final key ("Shift++").
func ParseChord(s string) (Chord, error) {
	if s == "" {
		return Chord{}, fmt.Errorf("empty key")
	}
	if s == "+" {
		return Chord{Key: "+"}, nil
	}
	var c Chord
	parts := strings.Split(s, "+")
	if strings.HasSuffix(s, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}
	for i, p := range parts {
		if i == len(parts)-1 {
			if p == "" {
				return Chord{}, fmt.Errorf("missing key in %q", s)
			}
			c.Key = p
			break
		}
		set, ok := modifierNames[strings.ToLower(p)]
		if !ok {
			return Chord{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
		set(&c.Modifiers)
	}
	return c, nil
}

// Press sends keydown/keyup for a chord to n (or the focused element when n
// is nil) and applies the key's default action.
func (s *Simulator) Press(ctx context.Context, n *html.Node, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	chord, err := ParseChord(key)
	if err != nil {
		return err
	}
	if n == nil {
		n = s.doc.ActiveElement()
	}
	if !dom.IsElement(n) {
		return ErrNoTarget
	}
	logging.InputDebug("press %q on <%s>", key, dom.Tag(n))

	down := &dom.Event{Type: "keydown", Target: n, Key: chord.Key, Modifiers: chord.Modifiers}
	if s.doc.Dispatch(down) {
		s.keyDefault(n, chord)
	}
	s.doc.Dispatch(&dom.Event{Type: "keyup", Target: n, Key: chord.Key, Modifiers: chord.Modifiers})
	return nil
}

func (s *Simulator) keyDefault(n *html.Node, c Chord) {
	mods := c.Modifiers
	switch c.Key {
	case "Tab":
		s.moveFocus(n, mods.Shift)
		return
	case "Enter":
		if dom.Tag(n) == "a" && dom.HasAttr(n, "href") || dom.Tag(n) == "button" || isButtonInput(n) || dom.Tag(n) == "summary" {
			s.clickFromKeyboard(n)
			return
		}
	case " ":
		if dom.Tag(n) == "button" || isButtonInput(n) || dom.InputType(n) == "checkbox" || dom.InputType(n) == "radio" || dom.Tag(n) == "summary" {
			s.clickFromKeyboard(n)
			return
		}
	case "Backspace":
		if dom.IsTextEntry(n) {
			s.editText(n, func(v string) string {
				if v == "" {
					return v
				}
				_, size := utf8.DecodeLastRuneInString(v)
				return v[:len(v)-size]
			})
		}
		return
	}
	if utf8.RuneCountInString(c.Key) == 1 && !mods.Control && !mods.Meta && !mods.Alt && dom.IsTextEntry(n) {
		key := c.Key
		if mods.Shift {
			key = strings.ToUpper(key)
		}
		s.editText(n, func(v string) string { return v + key })
	}
}

func isButtonInput(n *html.Node) bool {
	switch dom.InputType(n) {
	case "button", "submit", "reset", "image":
		return true
	}
	return false
}

func (s *Simulator) clickFromKeyboard(n *html.Node) {
	if s.doc.Dispatch(&dom.Event{Type: "click", Target: n, Detail: 0}) {
		s.activate(n)
	}
}

func (s *Simulator) editText(n *html.Node, edit func(string) string) {
	if dom.HasAttr(n, "readonly") || dom.HasAttr(n, "disabled") {
		return
	}
	switch dom.Tag(n) {
	case "input":
		_ = s.doc.SetAttribute(n, "value", edit(dom.AttrValue(n, "value")))
	default:
		_ = s.doc.SetTextContent(n, edit(dom.TextContent(n)))
	}
	s.doc.Dispatch(&dom.Event{Type: "input", Target: n})
}

// moveFocus moves focus to the next (or previous) focusable element in
// document order, wrapping at either end.
func (s *Simulator) moveFocus(from *html.Node, backwards bool) {
	var order []*html.Node
	dom.Walk(s.doc.Root(), func(c *html.Node) bool {
		if dom.IsFocusable(c) && dom.AttrValue(c, "tabindex") != "-1" {
			order = append(order, c)
		}
		return true
	})
	if len(order) == 0 {
		return
	}
	idx := -1
	for i, c := range order {
		if c == from {
			idx = i
			break
		}
	}
	var next int
	switch {
	case idx < 0 && backwards:
		next = len(order) - 1
	case idx < 0:
		next = 0
	case backwards:
		next = (idx - 1 + len(order)) % len(order)
	default:
		next = (idx + 1) % len(order)
	}
	s.doc.Focus(order[next])
}
