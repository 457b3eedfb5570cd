// Package virtual implements the virtual screen reader: a cursor over the
// flattened accessibility tree of a host document that records what a screen
// reader would announce.
//
// An Engine is single-flight. Callers must wait for each operation to return
// before issuing the next one.
package virtual

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"vsr/internal/a11y"
	"vsr/internal/dom"
	"vsr/internal/input"
	"vsr/internal/logging"
)

var (
	// ErrNotStarted is returned by operations invoked outside Start..Stop.
	ErrNotStarted = errors.New("not started")
	// ErrMissingContainer is returned by Start without a container.
	ErrMissingContainer = errors.New("missing container")
	// ErrNotImplemented is returned for commands without a strategy.
	ErrNotImplemented = errors.New("not implemented")
)

// Host is the document the engine reads and drives.
type Host interface {
	a11y.Host
	// Flush applies pending host updates and delivers mutation records.
	Flush(ctx context.Context) error
	OnFocus(cb dom.FocusCallback) func()
	ActiveElement() *html.Node
	Focus(n *html.Node) bool
}

// Observer is implemented by hosts that can report mutations. Hosts without
// it still work; live regions are then silent.
type Observer interface {
	Observe(root *html.Node, cb dom.MutationCallback) func()
}

// Input simulates user input against host elements.
type Input interface {
	Click(ctx context.Context, n *html.Node, opts input.ClickOptions) error
	Press(ctx context.Context, n *html.Node, key string) error
	Type(ctx context.Context, n *html.Node, text string) error
}

// StartOptions configures a reading session.
type StartOptions struct {
	// Container is the root of the region the reader walks.
	Container *html.Node
}

// ClickOptions configures Click.
type ClickOptions = input.ClickOptions

// Option configures an Engine.
type Option func(*Engine)

// WithInput sets the input simulator. Hosts that are *dom.Document get one
// by default.
func WithInput(in Input) Option {
	return func(e *Engine) { e.input = in }
}

// Engine is the navigation state machine.
type Engine struct {
	host  Host
	input Input

	started     bool
	interacting bool
	container   *html.Node
	activeNode  *a11y.AccessibilityNode
	treeCache   []a11y.AccessibilityNode
	cacheValid  bool

	spokenPhraseLog []string
	itemTextLog     []string

	unobserve func()
	unfocus   func()
}

// New returns a stopped Engine reading host.
func New(host Host, opts ...Option) *Engine {
	e := &Engine{host: host}
	if doc, ok := host.(*dom.Document); ok {
		e.input = input.New(doc)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Detect reports whether the reader is available. It always is.
func (e *Engine) Detect() bool { return true }

// Default reports whether this is the platform's default screen reader.
func (e *Engine) Default() bool { return false }

// Start begins a session over opts.Container and moves the cursor to the
// first node of the tree.
func (e *Engine) Start(ctx context.Context, opts StartOptions) error {
	if opts.Container == nil {
		return ErrMissingContainer
	}
	if e.started {
		e.teardown()
	}
	if err := e.tick(ctx); err != nil {
		return err
	}
	timer := logging.StartTimer(logging.CategoryEngine, "Start")
	defer timer.Stop()

	e.container = opts.Container
	e.started = true
	if obs, ok := e.host.(Observer); ok {
		e.unobserve = obs.Observe(e.container, e.handleMutations)
	} else {
		logging.EngineWarn("host cannot observe mutations, live regions disabled")
		e.unobserve = func() {}
	}
	e.unfocus = e.host.OnFocus(e.handleFocusChange)

	tree := e.tree()
	logging.Engine("started on <%s> with %d nodes", dom.Tag(e.container), len(tree))
	if len(tree) == 0 {
		return nil
	}
	e.updateState(tree[0], false)
	return nil
}

// Stop ends the session and clears its state.
func (e *Engine) Stop(ctx context.Context) error {
	if !e.started {
		return ErrNotStarted
	}
	e.teardown()
	logging.Engine("stopped")
	return nil
}

func (e *Engine) teardown() {
	if e.unobserve != nil {
		e.unobserve()
	}
	if e.unfocus != nil {
		e.unfocus()
	}
	e.unobserve, e.unfocus = nil, nil
	e.started = false
	e.interacting = false
	e.container = nil
	e.activeNode = nil
	e.invalidate()
	e.spokenPhraseLog = nil
	e.itemTextLog = nil
}

// Next moves the cursor to the following node, wrapping to the root.
func (e *Engine) Next(ctx context.Context) error {
	return e.step(ctx, 1)
}

// Previous moves the cursor to the preceding node, wrapping from the root to
// the last node.
func (e *Engine) Previous(ctx context.Context) error {
	return e.step(ctx, -1)
}

func (e *Engine) step(ctx context.Context, delta int) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	e.invalidate()
	tree := e.navigable(e.tree())
	if len(tree) == 0 {
		return nil
	}
	current := e.currentIndex(tree)
	var target int
	switch {
	case current < 0:
		target = 0
	case delta > 0:
		target = (current + 1) % len(tree)
	case current == 0:
		target = len(tree) - 1
	default:
		target = current - 1
	}
	e.updateState(tree[target], false)
	return nil
}

// Act runs the default action of the active node.
func (e *Engine) Act(ctx context.Context) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	el := e.activeElement()
	if el == nil || e.input == nil {
		return nil
	}
	if err := e.input.Click(ctx, el, ClickOptions{}); err != nil {
		return fmt.Errorf("act: %w", err)
	}
	return nil
}

// Interact starts interacting with the active node. The virtual cursor has no
// separate interaction mode, so this only records the request.
func (e *Engine) Interact(ctx context.Context) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	e.interacting = true
	return nil
}

// StopInteracting ends an Interact.
func (e *Engine) StopInteracting(ctx context.Context) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	e.interacting = false
	return nil
}

// Press focuses the active node and presses key, e.g. "Shift+Tab".
func (e *Engine) Press(ctx context.Context, key string) error {
	return e.withInput(ctx, "press", func(el *html.Node) error {
		return e.input.Press(ctx, el, key)
	})
}

// Type focuses the active node and types text into it.
func (e *Engine) Type(ctx context.Context, text string) error {
	return e.withInput(ctx, "type", func(el *html.Node) error {
		return e.input.Type(ctx, el, text)
	})
}

func (e *Engine) withInput(ctx context.Context, op string, fn func(el *html.Node) error) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	el := e.activeElement()
	if el == nil || e.input == nil {
		return nil
	}
	e.host.Focus(el)
	if err := fn(el); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := e.tick(ctx); err != nil {
		return err
	}
	e.refreshState()
	return nil
}

// Click clicks the active node.
func (e *Engine) Click(ctx context.Context, opts ClickOptions) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	el := e.activeElement()
	if el == nil || e.input == nil {
		return nil
	}
	if err := e.input.Click(ctx, el, opts); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

// Perform runs a navigation command and moves the cursor to its result.
func (e *Engine) Perform(ctx context.Context, cmd Command, opts CommandOptions) error {
	if err := e.begin(ctx); err != nil {
		return err
	}
	e.invalidate()
	tree := e.navigable(e.tree())
	if len(tree) == 0 {
		return nil
	}
	idx, ok, err := cmd.run(commandArgs{
		CommandOptions: opts,
		container:      e.container,
		currentIndex:   e.currentIndex(tree),
		tree:           tree,
		active:         e.activeNode,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if !ok {
		logging.EngineDebug("%s: no target", cmd)
		return nil
	}
	e.updateState(tree[idx], false)
	return nil
}

// LastSpokenPhrase returns the most recent announcement.
func (e *Engine) LastSpokenPhrase() (string, error) {
	if !e.started {
		return "", ErrNotStarted
	}
	return last(e.spokenPhraseLog), nil
}

// ItemText returns the text of the most recently announced item.
func (e *Engine) ItemText() (string, error) {
	if !e.started {
		return "", ErrNotStarted
	}
	return last(e.itemTextLog), nil
}

// SpokenPhraseLog returns a copy of every announcement of the session.
func (e *Engine) SpokenPhraseLog() ([]string, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	return append([]string{}, e.spokenPhraseLog...), nil
}

// ItemTextLog returns a copy of every item text of the session.
func (e *Engine) ItemTextLog() ([]string, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	return append([]string{}, e.itemTextLog...), nil
}

// ClearSpokenPhraseLog empties the announcement log.
func (e *Engine) ClearSpokenPhraseLog() error {
	if !e.started {
		return ErrNotStarted
	}
	e.spokenPhraseLog = nil
	return nil
}

// ClearItemTextLog empties the item text log.
func (e *Engine) ClearItemTextLog() error {
	if !e.started {
		return ErrNotStarted
	}
	e.itemTextLog = nil
	return nil
}

// ActiveNode returns a copy of the node under the cursor, or nil.
func (e *Engine) ActiveNode() (*a11y.AccessibilityNode, error) {
	if !e.started {
		return nil, ErrNotStarted
	}
	if e.activeNode == nil {
		return nil, nil
	}
	n := *e.activeNode
	return &n, nil
}

// Tree returns the current flattened tree.
func (e *Engine) Tree(ctx context.Context) ([]a11y.AccessibilityNode, error) {
	if err := e.begin(ctx); err != nil {
		return nil, err
	}
	return append([]a11y.AccessibilityNode(nil), e.tree()...), nil
}

// Interacting reports whether Interact is in effect.
func (e *Engine) Interacting() bool { return e.interacting }

func last(log []string) string {
	if len(log) == 0 {
		return ""
	}
	return log[len(log)-1]
}

// begin checks the session and applies pending host updates.
func (e *Engine) begin(ctx context.Context) error {
	if !e.started {
		return ErrNotStarted
	}
	return e.tick(ctx)
}

func (e *Engine) tick(ctx context.Context) error {
	if err := e.host.Flush(ctx); err != nil {
		return fmt.Errorf("flush host: %w", err)
	}
	return nil
}

func (e *Engine) invalidate() {
	e.cacheValid = false
	e.treeCache = nil
}

func (e *Engine) tree() []a11y.AccessibilityNode {
	if e.cacheValid {
		return e.treeCache
	}
	e.treeCache = a11y.FlattenTree(a11y.BuildTree(e.host, e.container))
	e.cacheValid = true
	return e.treeCache
}

// navigable narrows tree to the open modal dialog holding the cursor.
func (e *Engine) navigable(tree []a11y.AccessibilityNode) []a11y.AccessibilityNode {
	if e.activeNode == nil {
		return tree
	}
	start, end, ok := a11y.ModalScope(tree, e.activeNode.Node)
	if !ok {
		return tree
	}
	return tree[start : end+1]
}

// currentIndex locates the active node by its announced fields and host
// node, so a node whose computed fields changed is treated as new.
func (e *Engine) currentIndex(tree []a11y.AccessibilityNode) int {
	if e.activeNode == nil {
		return -1
	}
	a := e.activeNode
	for i, n := range tree {
		if n.Node == a.Node &&
			n.Role == a.Role &&
			n.SpokenRole == a.SpokenRole &&
			n.AccessibleName == a.AccessibleName &&
			n.AccessibleValue == a.AccessibleValue &&
			n.AccessibleDescription == a.AccessibleDescription {
			return i
		}
	}
	return -1
}

// activeElement is the element the active node stands for. Text nodes act
// through their parent element.
func (e *Engine) activeElement() *html.Node {
	if e.activeNode == nil {
		return nil
	}
	n := e.activeNode.Node
	if dom.IsText(n) {
		return dom.ParentElement(n)
	}
	if dom.IsElement(n) {
		return n
	}
	return nil
}

// updateState moves the cursor to node and logs it. With ignoreIfNoChange
// the logs are left alone when the announcement repeats the previous one.
func (e *Engine) updateState(node a11y.AccessibilityNode, ignoreIfNoChange bool) {
	e.activeNode = &node
	spoken := a11y.SpokenPhrase(node)
	item := a11y.ItemText(node)
	if ignoreIfNoChange && spoken == last(e.spokenPhraseLog) && item == last(e.itemTextLog) {
		return
	}
	logging.EngineDebug("announce %q", spoken)
	e.spokenPhraseLog = append(e.spokenPhraseLog, spoken)
	e.itemTextLog = append(e.itemTextLog, item)
}

// refreshState re-reads the active node after its host node may have changed.
func (e *Engine) refreshState() {
	if e.activeNode == nil {
		return
	}
	e.invalidate()
	boundary := e.activeNode.IsBoundary()
	for _, n := range e.tree() {
		if n.Node == e.activeNode.Node && n.IsBoundary() == boundary {
			e.updateState(n, true)
			return
		}
	}
}

func (e *Engine) handleFocusChange(target *html.Node) {
	if !e.started || !dom.Contains(e.container, target) {
		return
	}
	e.invalidate()
	for _, n := range e.tree() {
		if n.Node == target && !n.IsBoundary() {
			logging.EngineDebug("focus moved to <%s>", dom.Tag(target))
			e.updateState(n, true)
			return
		}
	}
}
