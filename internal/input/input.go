// Package input simulates pointer and keyboard input against a host
// document: events are dispatched first and, unless a listener cancels them,
// the browser's default action follows.
package input

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"vsr/internal/dom"
	"vsr/internal/logging"
)

// ErrNoTarget is returned when an input primitive is given no element.
var ErrNoTarget = errors.New("input: no target element")

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return "left"
}

// ParseButton maps "left", "middle" and "right" to a Button.
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return ButtonLeft, nil
	case "middle":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	}
	return ButtonLeft, fmt.Errorf("unknown mouse button %q", s)
}

// ClickOptions configures a simulated click.
type ClickOptions struct {
	Button     Button
	ClickCount int
}

// Simulator drives input into one document.
type Simulator struct {
	doc *dom.Document
}

// New returns a Simulator for doc.
func New(doc *dom.Document) *Simulator {
	return &Simulator{doc: doc}
}

// Click presses and releases a pointer button over n ClickCount times.
func (s *Simulator) Click(ctx context.Context, n *html.Node, opts ClickOptions) error {
	if !dom.IsElement(n) {
		return ErrNoTarget
	}
	count := opts.ClickCount
	if count <= 0 {
		count = 1
	}
	logging.InputDebug("click %s x%d on <%s>", opts.Button, count, dom.Tag(n))

	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		button := int(opts.Button)
		s.doc.Dispatch(&dom.Event{Type: "mousedown", Target: n, Button: button, Detail: i})
		if opts.Button == ButtonLeft {
			if f := focusTarget(n); f != nil {
				s.doc.Focus(f)
			}
		}
		s.doc.Dispatch(&dom.Event{Type: "mouseup", Target: n, Button: button, Detail: i})

		switch opts.Button {
		case ButtonLeft:
			if s.doc.Dispatch(&dom.Event{Type: "click", Target: n, Detail: i}) {
				s.activate(n)
			}
			if i == 2 {
				s.doc.Dispatch(&dom.Event{Type: "dblclick", Target: n, Detail: i})
			}
		case ButtonMiddle:
			s.doc.Dispatch(&dom.Event{Type: "auxclick", Target: n, Button: button, Detail: i})
		case ButtonRight:
			s.doc.Dispatch(&dom.Event{Type: "contextmenu", Target: n, Button: button, Detail: i})
		}
	}
	return nil
}

func focusTarget(n *html.Node) *html.Node {
	return dom.Closest(n, dom.IsFocusable)
}

// activate runs the default action of a click.
func (s *Simulator) activate(n *html.Node) {
	switch dom.Tag(n) {
	case "input":
		if dom.HasAttr(n, "disabled") {
			return
		}
		switch dom.InputType(n) {
		case "checkbox":
			_ = s.doc.ToggleAttribute(n, "checked", !dom.HasAttr(n, "checked"))
			s.changed(n)
		case "radio":
			if dom.HasAttr(n, "checked") {
				return
			}
			s.uncheckGroup(n)
			_ = s.doc.ToggleAttribute(n, "checked", true)
			s.changed(n)
		}
	case "summary":
		if details := dom.ParentElement(n); dom.Tag(details) == "details" {
			_ = s.doc.ToggleAttribute(details, "open", !dom.HasAttr(details, "open"))
			s.doc.Dispatch(&dom.Event{Type: "toggle", Target: details})
		}
	case "label":
		if control := labelledControl(n); control != nil {
			s.doc.Dispatch(&dom.Event{Type: "click", Target: control})
			s.activate(control)
			s.doc.Focus(control)
		}
	}
}

func (s *Simulator) changed(n *html.Node) {
	s.doc.Dispatch(&dom.Event{Type: "input", Target: n})
	s.doc.Dispatch(&dom.Event{Type: "change", Target: n})
}

func (s *Simulator) uncheckGroup(n *html.Node) {
	name := dom.AttrValue(n, "name")
	if name == "" {
		return
	}
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	dom.Walk(root, func(c *html.Node) bool {
		if c != n && dom.InputType(c) == "radio" && dom.AttrValue(c, "name") == name {
			_ = s.doc.RemoveAttribute(c, "checked")
		}
		return true
	})
}

func labelledControl(label *html.Node) *html.Node {
	if id := dom.AttrValue(label, "for"); id != "" {
		root := label
		for root.Parent != nil {
			root = root.Parent
		}
		return dom.FindByID(root, id)
	}
	var control *html.Node
	dom.Walk(label, func(c *html.Node) bool {
		if control != nil {
			return false
		}
		switch dom.Tag(c) {
		case "input", "select", "textarea", "button", "meter", "output", "progress":
			control = c
			return false
		}
		return true
	})
	return control
}

// Type focuses n and types text into it one character at a time.
func (s *Simulator) Type(ctx context.Context, n *html.Node, text string) error {
	if !dom.IsElement(n) {
		return ErrNoTarget
	}
	s.doc.Focus(n)
	for _, r := range text {
		if err := s.Press(ctx, n, string(r)); err != nil {
			return err
		}
	}
	return nil
}
