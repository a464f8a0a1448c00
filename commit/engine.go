// Package commit applies dirty slot values to their addressed DOM
// locations. The Engine owns everything a repaint needs beyond the tree
// itself: the template registry for nested views, the listener table for
// event slots, the element-to-instance bindings that route updates into
// nested components, and the mutation counter tests observe.
//
// Repaints are synchronous and single-threaded; the Engine is not safe
// for concurrent use. Call stack discipline guarantees no two repaints of
// the same component overlap.
package commit

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/core"
	"github.com/atilaykosker/Mosaic/diff"
	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/internal/logging"
	"github.com/atilaykosker/Mosaic/markup"
	"github.com/atilaykosker/Mosaic/memory"
	"github.com/atilaykosker/Mosaic/registry"
)

// Engine commits slot values and cascades updates into nested components.
type Engine struct {
	registry    *registry.TemplateRegistry
	logger      logging.Logger
	isComponent func(tag string) bool

	// bindings maps host elements to the component instances upgraded
	// onto them, so attribute slots on component tags route through the
	// instance instead of the raw DOM.
	bindings map[*html.Node]core.Renderable

	// listeners holds the bound handler per node and event name.
	listeners map[*html.Node]map[string]core.Handler

	commits int
}

// pendingUpdate is one enqueued child change, flushed after the owning
// repaint's slot walk completes.
type pendingUpdate struct {
	child core.Renderable
	key   string
	value interface{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithComponentCheck supplies the predicate identifying registered
// component type ids, backing the unknown-component guard.
func WithComponentCheck(fn func(tag string) bool) Option {
	return func(e *Engine) {
		e.isComponent = fn
	}
}

// NewEngine creates an Engine over the given template registry.
func NewEngine(reg *registry.TemplateRegistry, opts ...Option) *Engine {
	e := &Engine{
		registry:  reg,
		logger:    logging.NewNopLogger(),
		bindings:  make(map[*html.Node]core.Renderable),
		listeners: make(map[*html.Node]map[string]core.Handler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CommitCount returns the number of DOM-mutating commits performed since
// the engine was created. A repaint over unchanged values leaves it where
// it was.
func (e *Engine) CommitCount() int {
	return e.commits
}

// Bind associates a host element with the component instance upgraded
// onto it.
func (e *Engine) Bind(el *html.Node, child core.Renderable) {
	e.bindings[el] = child
}

// Unbind drops a host element's instance binding.
func (e *Engine) Unbind(el *html.Node) {
	delete(e.bindings, el)
}

// Bound returns the instance upgraded onto el, if any.
func (e *Engine) Bound(el *html.Node) (core.Renderable, bool) {
	child, ok := e.bindings[el]
	return child, ok
}

// BoundUnder collects the instances bound to nodes strictly below n,
// without descending into them: each returned instance owns its own
// subtree.
func (e *Engine) BoundUnder(n *html.Node) []core.Renderable {
	var out []core.Renderable
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if child, ok := e.bindings[c]; ok {
				out = append(out, child)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// DispatchEvent invokes the handler bound to node for the named event and
// reports whether one was bound. The event name is the bare form, without
// the attribute's "on" prefix.
func (e *Engine) DispatchEvent(node *html.Node, event string, payload interface{}) bool {
	handlers, ok := e.listeners[node]
	if !ok {
		return false
	}
	handler, ok := handlers[event]
	if !ok {
		return false
	}
	handler(core.Event{Name: event, Target: node, Payload: payload})
	return true
}

// DetachListeners removes every handler bound to nodes in the subtree
// rooted at n, including n itself.
func (e *Engine) DetachListeners(n *html.Node) {
	e.dropListeners(n)
}

// Repaint pairs the slot list with the aligned value arrays, commits the
// dirty slots, and then flushes the child updates the walk enqueued. Per-
// slot failures are logged and skipped so one bad slot cannot take down
// the independent regions around it; only a malformed value array fails
// the whole call.
func (e *Engine) Repaint(ctx context.Context, owner core.Renderable, root *html.Node, memories []*memory.Memory, oldValues, newValues []interface{}, initial bool) error {
	if len(newValues) != len(memories) {
		return mosaicerrors.NewTemplateMismatch(ownerID(owner), len(memories), len(newValues))
	}

	var pending []pendingUpdate
	for i, mem := range memories {
		oldValue := valueAt(oldValues, i)
		newValue := newValues[i]

		dirty, err := diff.Dirty(oldValue, newValue, false, initial)
		if err != nil {
			e.logger.Warn(ctx, err, "slot comparison failed, slot skipped",
				"slot", mosaicerrors.PathString(mem.Path))
			continue
		}
		if !dirty {
			continue
		}

		if err := e.commitSlot(ctx, owner, root, mem, oldValue, newValue, &pending); err != nil {
			e.logger.Warn(ctx, err, "slot commit failed, slot skipped",
				"slot", mosaicerrors.PathString(mem.Path), "kind", mem.Kind.String())
		}
	}

	for _, p := range pending {
		if err := p.child.Receive(ctx, p.key, p.value); err != nil {
			e.logger.Error(ctx, err, "pending child update failed",
				"key", p.key, "child", p.child.TypeID())
		}
	}
	return nil
}

// commitSlot dispatches one dirty slot on its kind.
func (e *Engine) commitSlot(ctx context.Context, owner core.Renderable, root *html.Node, mem *memory.Memory, oldValue, newValue interface{}, pending *[]pendingUpdate) error {
	node := dom.AtPath(root, mem.Path)
	if node == nil {
		return mosaicerrors.NewCommit("no node at slot path", nil).WithSlot(mem.Path, mem.Attr)
	}

	switch mem.Kind {
	case memory.KindAttribute:
		e.commitAttribute(node, mem, oldValue, newValue, pending)
		return nil
	case memory.KindEvent:
		return e.commitEvent(node, mem, newValue)
	case memory.KindNode:
		return e.commitNode(ctx, owner, root, mem, node, oldValue, newValue, pending)
	default:
		return mosaicerrors.NewInternal(fmt.Sprintf("unhandled slot kind %d", mem.Kind), nil)
	}
}

// booleanAttrs are attributes whose semantics are presence, not value.
var booleanAttrs = map[string]bool{
	"async":     true,
	"autofocus": true,
	"autoplay":  true,
	"checked":   true,
	"controls":  true,
	"defer":     true,
	"disabled":  true,
	"hidden":    true,
	"loop":      true,
	"multiple":  true,
	"muted":     true,
	"open":      true,
	"readonly":  true,
	"required":  true,
	"reversed":  true,
	"selected":  true,
}

// commitAttribute writes an attribute slot. Component-owned slots are
// routed into the bound instance as pending updates instead of touching
// the DOM. Boolean attributes toggle on presence; everything else rewrites
// the slot's own hole against the attribute's compiled shape, so the
// static text and the neighboring holes of a shared attribute survive.
func (e *Engine) commitAttribute(node *html.Node, mem *memory.Memory, oldValue, newValue interface{}, pending *[]pendingUpdate) {
	if mem.OwnerIsComponent {
		if child, ok := e.bindings[node]; ok {
			*pending = append(*pending, pendingUpdate{child: child, key: mem.Attr, value: newValue})
			return
		}
	}

	if booleanAttrs[mem.Attr] {
		if b, ok := newValue.(bool); ok && b {
			dom.SetAttr(node, mem.Attr, "true")
		} else {
			dom.RemoveAttr(node, mem.Attr)
		}
		e.commits++
		return
	}

	newForm := stringForm(newValue)
	current, _ := dom.GetAttr(node, mem.Attr)

	if patched, ok := patchAttrValue(mem.AttrTemplate, current, mem.Ordinal, newForm); ok {
		dom.SetAttr(node, mem.Attr, patched)
		e.commits++
		return
	}

	// The current value no longer fits the compiled shape (or the slot
	// carries no template): fall back to marker or prior-value patching.
	switch {
	case strings.Contains(current, markup.Token):
		dom.SetAttr(node, mem.Attr, strings.Replace(current, markup.Token, newForm, 1))
	case oldValue != nil && stringForm(oldValue) != "" && strings.Contains(current, stringForm(oldValue)):
		dom.SetAttr(node, mem.Attr, strings.Replace(current, stringForm(oldValue), newForm, 1))
	default:
		dom.SetAttr(node, mem.Attr, newForm)
	}
	e.commits++
}

// patchAttrValue rewrites hole ordinal of an attribute whose compiled
// value is template. The current value is parsed back into per-hole
// values by matching the static segments between markers; holes not yet
// committed still hold the marker and parse like any other value. Returns
// false when current has drifted from the compiled shape, when adjacent
// holes share no separating static text, or when no template is known.
func patchAttrValue(template, current string, ordinal int, newForm string) (string, bool) {
	if !strings.Contains(template, markup.Token) {
		return "", false
	}
	segs := strings.Split(template, markup.Token)
	holes := len(segs) - 1
	if ordinal < 0 || ordinal >= holes {
		return "", false
	}

	rest, ok := strings.CutPrefix(current, segs[0])
	if !ok {
		return "", false
	}
	values := make([]string, holes)
	for i := 1; i < holes; i++ {
		if segs[i] == "" {
			return "", false
		}
		idx := strings.Index(rest, segs[i])
		if idx < 0 {
			return "", false
		}
		values[i-1] = rest[:idx]
		rest = rest[idx+len(segs[i]):]
	}
	tail := segs[holes]
	if !strings.HasSuffix(rest, tail) {
		return "", false
	}
	values[holes-1] = rest[:len(rest)-len(tail)]
	values[ordinal] = newForm

	var b strings.Builder
	for i, v := range values {
		b.WriteString(segs[i])
		b.WriteString(v)
	}
	b.WriteString(tail)
	return b.String(), true
}

// commitEvent rebinds the slot's listener and strips the placeholder
// attribute so handlers never surface as markup.
func (e *Engine) commitEvent(node *html.Node, mem *memory.Memory, newValue interface{}) error {
	handler, ok := asHandler(newValue)
	if !ok {
		return mosaicerrors.NewCommit(
			fmt.Sprintf("event slot %q needs a Handler, got %s", mem.Attr, core.Classify(newValue)), nil,
		).WithSlot(mem.Path, mem.Attr)
	}

	event := strings.TrimPrefix(mem.Attr, "on")
	handlers, ok := e.listeners[node]
	if !ok {
		handlers = make(map[string]core.Handler)
		e.listeners[node] = handlers
	}
	handlers[event] = handler

	if dom.HasAttr(node, mem.Attr) {
		dom.RemoveAttr(node, mem.Attr)
	}
	e.commits++
	return nil
}

func asHandler(v interface{}) (core.Handler, bool) {
	switch h := v.(type) {
	case core.Handler:
		return h, h != nil
	case func(core.Event):
		return h, h != nil
	}
	return nil, false
}

// replaceNode swaps old for repl, dropping listeners bound under the
// outgoing subtree, and counts the mutation.
func (e *Engine) replaceNode(old, repl *html.Node) {
	e.dropListeners(old)
	dom.ReplaceWith(old, repl)
	e.commits++
}

// removeNode detaches n, dropping listeners bound under it.
func (e *Engine) removeNode(n *html.Node) {
	e.dropListeners(n)
	dom.Detach(n)
	e.commits++
}

func (e *Engine) dropListeners(n *html.Node) {
	if n == nil {
		return
	}
	delete(e.listeners, n)
	delete(e.bindings, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.dropListeners(c)
	}
}

// valueAt reads the prior value snapshot, treating a missing entry as the
// absence of a prior value.
func valueAt(values []interface{}, i int) interface{} {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func stringForm(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func ownerID(owner core.Renderable) string {
	if owner == nil {
		return "anonymous"
	}
	return owner.TypeID()
}
