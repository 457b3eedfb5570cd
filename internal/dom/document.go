// Package dom provides the host document the virtual screen reader reads:
// an HTML tree backed by golang.org/x/net/html nodes, plus the pieces a
// browser would normally supply (mutation observation, focus, computed style
// and event dispatch).
//
// All tree writes must go through Document methods so observers see them.
// Reads may use the *html.Node fields directly.
package dom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	// ErrNotElement is returned for operations that need an element node.
	ErrNotElement = errors.New("dom: not an element")
	// ErrNotChild is returned when a reference node is not a child of the parent.
	ErrNotChild = errors.New("dom: node is not a child of parent")
	// ErrHierarchy is returned when an insertion would create a cycle.
	ErrHierarchy = errors.New("dom: hierarchy request error")
	// ErrFlushOverflow is returned when observers keep mutating the tree.
	ErrFlushOverflow = errors.New("dom: mutation delivery did not settle")
)

// maxFlushRounds bounds observer re-entrancy during Flush.
const maxFlushRounds = 64

// MutationType tags a MutationRecord.
type MutationType int

const (
	ChildList MutationType = iota
	Attributes
	CharacterData
)

func (t MutationType) String() string {
	switch t {
	case ChildList:
		return "childList"
	case Attributes:
		return "attributes"
	case CharacterData:
		return "characterData"
	}
	return fmt.Sprintf("MutationType(%d)", int(t))
}

// MutationRecord describes one change to the tree.
type MutationRecord struct {
	Type          MutationType
	Target        *html.Node
	AddedNodes    []*html.Node
	RemovedNodes  []*html.Node
	AttributeName string
	OldValue      string
}

// MutationCallback receives the records queued since the previous delivery.
type MutationCallback func(records []MutationRecord)

type observer struct {
	id   int
	root *html.Node
	cb   MutationCallback
}

// Document is a mutable HTML document.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	active    *html.Node
	nextID    int
	observers []*observer
	pending   []MutationRecord
	focusCbs  map[int]FocusCallback
	listeners map[*html.Node]map[string][]listener
}

// NewDocument wraps an already parsed document node.
func NewDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		focusCbs:  make(map[int]FocusCallback),
		listeners: make(map[*html.Node]map[string][]listener),
	}
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return NewDocument(root), nil
}

// ParseString parses src as an HTML document. Fragments are placed in <body>.
func ParseString(src string) (*Document, error) {
	return Parse(strings.NewReader(src))
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *html.Node {
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c) {
			return c
		}
	}
	return nil
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *html.Node {
	return d.childOfDocumentElement(atom.Body)
}

// Head returns the <head> element, or nil.
func (d *Document) Head() *html.Node {
	return d.childOfDocumentElement(atom.Head)
}

func (d *Document) childOfDocumentElement(a atom.Atom) *html.Node {
	de := d.DocumentElement()
	if de == nil {
		return nil
	}
	for c := de.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

// Render serialises the document.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// CreateElement returns a detached element.
func (d *Document) CreateElement(tag string, attrs ...html.Attribute) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// CreateTextNode returns a detached text node.
func (d *Document) CreateTextNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// SetAttribute sets or replaces an attribute.
func (d *Document) SetAttribute(n *html.Node, name, value string) error {
	if !IsElement(n) {
		return ErrNotElement
	}
	name = strings.ToLower(name)
	old, had := Attr(n, name)
	if had {
		for i := range n.Attr {
			if n.Attr[i].Namespace == "" && strings.EqualFold(n.Attr[i].Key, name) {
				n.Attr[i].Val = value
				break
			}
		}
	} else {
		n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
	}
	d.enqueue(MutationRecord{Type: Attributes, Target: n, AttributeName: name, OldValue: old})
	return nil
}

// RemoveAttribute deletes an attribute. Removing an absent attribute is a no-op.
func (d *Document) RemoveAttribute(n *html.Node, name string) error {
	if !IsElement(n) {
		return ErrNotElement
	}
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			d.enqueue(MutationRecord{Type: Attributes, Target: n, AttributeName: strings.ToLower(name), OldValue: a.Val})
			return nil
		}
	}
	return nil
}

// ToggleAttribute adds (empty value) or removes a boolean attribute.
func (d *Document) ToggleAttribute(n *html.Node, name string, on bool) error {
	if on {
		if HasAttr(n, name) {
			return nil
		}
		return d.SetAttribute(n, name, "")
	}
	return d.RemoveAttribute(n, name)
}

// AppendChild moves or inserts child as the last child of parent.
func (d *Document) AppendChild(parent, child *html.Node) error {
	return d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child before ref (or at the end when ref is nil),
// detaching it from any previous parent first.
func (d *Document) InsertBefore(parent, child, ref *html.Node) error {
	if parent == nil || child == nil {
		return ErrHierarchy
	}
	if Contains(child, parent) {
		return ErrHierarchy
	}
	if ref != nil && ref.Parent != parent {
		return ErrNotChild
	}
	if child.Parent != nil {
		if err := d.RemoveChild(child.Parent, child); err != nil {
			return err
		}
	}
	parent.InsertBefore(child, ref)
	d.enqueue(MutationRecord{Type: ChildList, Target: parent, AddedNodes: []*html.Node{child}})
	return nil
}

// RemoveChild detaches child from parent.
func (d *Document) RemoveChild(parent, child *html.Node) error {
	if child == nil || child.Parent != parent {
		return ErrNotChild
	}
	parent.RemoveChild(child)
	d.mu.Lock()
	if d.active != nil && Contains(child, d.active) {
		d.active = nil
	}
	d.mu.Unlock()
	d.enqueue(MutationRecord{Type: ChildList, Target: parent, RemovedNodes: []*html.Node{child}})
	return nil
}

// Remove detaches n from its parent, if any.
func (d *Document) Remove(n *html.Node) error {
	if n == nil || n.Parent == nil {
		return nil
	}
	return d.RemoveChild(n.Parent, n)
}

// SetData changes the data of a text node (a character data mutation).
func (d *Document) SetData(text *html.Node, data string) error {
	if !IsText(text) {
		return fmt.Errorf("dom: set data on %s node", nodeKind(text))
	}
	old := text.Data
	text.Data = data
	d.enqueue(MutationRecord{Type: CharacterData, Target: text, OldValue: old})
	return nil
}

// SetTextContent replaces all children of n with a single text node. Setting
// the text of a text node is a character data mutation.
func (d *Document) SetTextContent(n *html.Node, text string) error {
	if IsText(n) {
		return d.SetData(n, text)
	}
	if n == nil {
		return ErrNotElement
	}
	removed := Children(n)
	for _, c := range removed {
		n.RemoveChild(c)
	}
	var added []*html.Node
	if text != "" {
		t := d.CreateTextNode(text)
		n.AppendChild(t)
		added = append(added, t)
	}
	d.enqueue(MutationRecord{Type: ChildList, Target: n, AddedNodes: added, RemovedNodes: removed})
	return nil
}

// SetInnerHTML replaces the children of n with the parsed fragment.
func (d *Document) SetInnerHTML(n *html.Node, src string) error {
	if !IsElement(n) {
		return ErrNotElement
	}
	nodes, err := html.ParseFragment(strings.NewReader(src), n)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	removed := Children(n)
	for _, c := range removed {
		n.RemoveChild(c)
	}
	for _, c := range nodes {
		n.AppendChild(c)
	}
	d.enqueue(MutationRecord{Type: ChildList, Target: n, AddedNodes: nodes, RemovedNodes: removed})
	return nil
}

// Observe subscribes cb to mutations inside root (inclusive). Records are
// queued and delivered on Flush. The returned function unsubscribes.
func (d *Document) Observe(root *html.Node, cb MutationCallback) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	o := &observer{id: d.nextID, root: root, cb: cb}
	d.observers = append(d.observers, o)
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, cur := range d.observers {
			if cur.id == o.id {
				d.observers = append(d.observers[:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

// Pending returns the number of undelivered mutation records.
func (d *Document) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush delivers queued mutation records to observers until the queue is
// empty. It is the point where host updates become visible to the reader.
func (d *Document) Flush(ctx context.Context) error {
	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.mu.Lock()
		records := d.pending
		d.pending = nil
		observers := append([]*observer(nil), d.observers...)
		d.mu.Unlock()

		if len(records) == 0 {
			return nil
		}
		if round >= maxFlushRounds {
			return ErrFlushOverflow
		}
		for _, o := range observers {
			var mine []MutationRecord
			for _, r := range records {
				if Contains(o.root, r.Target) {
					mine = append(mine, r)
				}
			}
			if len(mine) > 0 {
				o.cb(mine)
			}
		}
	}
}

func (d *Document) enqueue(r MutationRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.observers) == 0 {
		return
	}
	d.pending = append(d.pending, r)
}

func nodeKind(n *html.Node) string {
	if n == nil {
		return "nil"
	}
	switch n.Type {
	case html.ElementNode:
		return "element"
	case html.TextNode:
		return "text"
	case html.DocumentNode:
		return "document"
	case html.CommentNode:
		return "comment"
	case html.DoctypeNode:
		return "doctype"
	}
	return "unknown"
}
