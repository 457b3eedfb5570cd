package dom

import (
	"sort"

	"golang.org/x/net/html"
)

// Modifiers held while an event is dispatched.
type Modifiers struct {
	Alt, Control, Meta, Shift bool
}

// Event is a minimal DOM event. Events bubble from Target to the document.
type Event struct {
	Type          string
	Target        *html.Node
	CurrentTarget *html.Node
	Key           string
	Button        int
	Detail        int
	Modifiers     Modifiers

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the default action that follows dispatch.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation stops bubbling after the current node.
func (e *Event) StopPropagation() { e.stopped = true }

// EventListener handles a dispatched event.
type EventListener func(ev *Event)

// FocusCallback is notified after focus moves to target.
type FocusCallback func(target *html.Node)

type listener struct {
	id int
	fn EventListener
}

// AddEventListener registers fn for events of typ reaching n (including
// bubbled ones). The returned function removes the listener.
func (d *Document) AddEventListener(n *html.Node, typ string, fn EventListener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[string][]listener)
		d.listeners[n] = byType
	}
	byType[typ] = append(byType[typ], listener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		ls := d.listeners[n][typ]
		for i, l := range ls {
			if l.id == id {
				d.listeners[n][typ] = append(ls[:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Dispatch runs listeners for ev from its target up to the document root and
// reports whether the default action should run.
func (d *Document) Dispatch(ev *Event) bool {
	for n := ev.Target; n != nil; n = n.Parent {
		d.mu.Lock()
		ls := append([]listener(nil), d.listeners[n][ev.Type]...)
		d.mu.Unlock()
		ev.CurrentTarget = n
		for _, l := range ls {
			l.fn(ev)
		}
		if ev.stopped {
			break
		}
	}
	return !ev.defaultPrevented
}

// OnFocus subscribes cb to focus changes. The returned function unsubscribes.
func (d *Document) OnFocus(cb FocusCallback) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.focusCbs[id] = cb
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.focusCbs, id)
	}
}

// ActiveElement returns the focused element, defaulting to <body>.
func (d *Document) ActiveElement() *html.Node {
	d.mu.Lock()
	active := d.active
	d.mu.Unlock()
	if active != nil {
		return active
	}
	return d.Body()
}

// Focus moves focus to n when it is focusable, dispatching blur/focus events
// and notifying focus subscribers. It reports whether focus moved.
func (d *Document) Focus(n *html.Node) bool {
	if !IsFocusable(n) && !(IsElement(n) && n == d.Body()) {
		return false
	}
	d.mu.Lock()
	prev := d.active
	if prev == n {
		d.mu.Unlock()
		return false
	}
	d.active = n
	cbs := make([]FocusCallback, 0, len(d.focusCbs))
	ids := make([]int, 0, len(d.focusCbs))
	for id := range d.focusCbs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		cbs = append(cbs, d.focusCbs[id])
	}
	d.mu.Unlock()

	if prev != nil {
		d.Dispatch(&Event{Type: "blur", Target: prev})
	}
	d.Dispatch(&Event{Type: "focus", Target: n})
	for _, cb := range cbs {
		cb(n)
	}
	return true
}

// Blur clears focus back to <body>.
func (d *Document) Blur() {
	d.mu.Lock()
	prev := d.active
	d.active = nil
	d.mu.Unlock()
	if prev != nil {
		d.Dispatch(&Event{Type: "blur", Target: prev})
	}
}
