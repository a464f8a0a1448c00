package commit

import (
	"context"
	"fmt"

	"github.com/a-h/templ"
	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/core"
	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/memory"
	"github.com/atilaykosker/Mosaic/registry"
)

// commitNode applies a node-kind slot: the addressed node (the marker on
// first commit, the previously committed node afterwards) is replaced by
// the new value's rendering.
func (e *Engine) commitNode(ctx context.Context, owner core.Renderable, root *html.Node, mem *memory.Memory, node *html.Node, oldValue, newValue interface{}, pending *[]pendingUpdate) error {
	// A keyed list renders as a run of siblings. When the slot moves to a
	// non-keyed value, collapse the run back to a single marker so the
	// one-for-one replacement below cannot orphan trailing items.
	if oldList, wasKeyed := core.AsKeyedList(oldValue); wasKeyed && oldList.Len() > 0 {
		if _, stillKeyed := core.AsKeyedList(newValue); !stillKeyed {
			e.restoreMarker(ctx, root, mem, oldList)
			if node = dom.AtPath(root, mem.Path); node == nil {
				return mosaicerrors.NewCommit("no node at slot path", nil).WithSlot(mem.Path, mem.Attr)
			}
		}
	}

	// templ components sit outside the value kinds; render and splice them
	// before classification, which would otherwise read them as funcs.
	if tc, ok := newValue.(templ.Component); ok {
		rendered, err := e.renderTempl(ctx, tc)
		if err != nil {
			return err
		}
		e.teardownOutgoing(ctx, node, newValue)
		e.replaceNode(node, rendered)
		return nil
	}

	switch core.Classify(newValue) {
	case core.KindNil, core.KindPrimitive:
		if mem.OwnerIsComponent && node.Parent != nil {
			if child, ok := e.bindings[node.Parent]; ok {
				*pending = append(*pending, pendingUpdate{child: child, key: "content", value: newValue})
				return nil
			}
		}
		e.teardownOutgoing(ctx, node, newValue)
		e.replaceNode(node, dom.TextNode(stringForm(newValue)))
		return nil

	case core.KindView:
		view, _ := core.AsView(newValue)
		rendered, err := e.instantiateView(ctx, owner, view)
		if err != nil {
			return err
		}
		e.teardownOutgoing(ctx, node, newValue)
		e.replaceNode(node, rendered)
		return nil

	case core.KindComponent:
		return e.mountComponent(ctx, owner, node, newValue.(core.Renderable))

	case core.KindList:
		return e.commitList(ctx, owner, node, newValue)

	case core.KindKeyedList:
		return e.commitKeyed(ctx, owner, root, mem, oldValue, newValue)

	case core.KindFunc:
		return mosaicerrors.NewCommit("function value in node position", nil).WithSlot(mem.Path, mem.Attr)

	default:
		e.teardownOutgoing(ctx, node, newValue)
		e.replaceNode(node, dom.TextNode(stringForm(newValue)))
		return nil
	}
}

// instantiateView compiles (or fetches) the anonymous template behind a
// nested view value, paints a fresh clone against the view's values, and
// returns its single root, wrapping multi-root content in a container.
func (e *Engine) instantiateView(ctx context.Context, owner core.Renderable, view core.View) (*html.Node, error) {
	tmpl, err := e.registry.GetOrCreate(registry.ViewID(view.Segments), func() core.View {
		return core.View{
			Segments: view.Segments,
			Values:   make([]interface{}, len(view.Values)),
		}
	})
	if err != nil {
		return nil, err
	}

	frag := tmpl.NewFragment()
	if err := e.Repaint(ctx, owner, frag, tmpl.Memories, nil, view.Values, true); err != nil {
		return nil, err
	}
	return fragmentRoot(frag), nil
}

// mountComponent splices a component value's root in place of the
// addressed node and fires its creation hook.
func (e *Engine) mountComponent(ctx context.Context, owner core.Renderable, node *html.Node, comp core.Renderable) error {
	if e.isComponent != nil && !e.isComponent(comp.TypeID()) {
		return mosaicerrors.NewUnknownComponentType(comp.TypeID())
	}
	if bound, ok := e.bindings[node]; ok && bound == comp {
		return nil
	}

	comp.SetParent(owner)
	if err := comp.Paint(ctx); err != nil {
		return mosaicerrors.NewCommit(fmt.Sprintf("painting nested component %q", comp.TypeID()), err)
	}
	croot := comp.Root()
	if croot == nil {
		return mosaicerrors.NewCommit(fmt.Sprintf("component %q has no root after paint", comp.TypeID()), nil)
	}

	e.teardownOutgoing(ctx, node, comp)
	// An instance carried over from elsewhere in the tree may still be
	// attached there; detach before splicing or the insert panics.
	dom.Detach(croot)
	e.replaceNode(node, croot)
	e.Bind(croot, comp)
	comp.Mounted(ctx)
	return nil
}

// commitList renders every item of a plain list into one container and
// swaps it in atomically. No per-item diffing happens here; unchanged
// items re-render every time, which is the documented cost of not keying
// the list.
func (e *Engine) commitList(ctx context.Context, owner core.Renderable, node *html.Node, newValue interface{}) error {
	items := core.ListItems(newValue)

	container := dom.Container()
	for _, item := range items {
		rendered, err := e.renderItem(ctx, owner, item)
		if err != nil {
			return err
		}
		container.AppendChild(rendered)
	}

	e.teardownDroppedItems(ctx, node, items)
	e.replaceNode(node, container)
	for _, item := range items {
		notifyMounted(ctx, item)
	}
	return nil
}

// renderItem turns one list item into a detached node. Creation hooks are
// not fired here; callers invoke notifyMounted once the node is in the
// tree.
func (e *Engine) renderItem(ctx context.Context, owner core.Renderable, item interface{}) (*html.Node, error) {
	if tc, ok := item.(templ.Component); ok {
		return e.renderTempl(ctx, tc)
	}

	switch core.Classify(item) {
	case core.KindView:
		view, _ := core.AsView(item)
		return e.instantiateView(ctx, owner, view)

	case core.KindComponent:
		comp := item.(core.Renderable)
		if e.isComponent != nil && !e.isComponent(comp.TypeID()) {
			return nil, mosaicerrors.NewUnknownComponentType(comp.TypeID())
		}
		comp.SetParent(owner)
		if err := comp.Paint(ctx); err != nil {
			return nil, mosaicerrors.NewCommit(fmt.Sprintf("painting list item %q", comp.TypeID()), err)
		}
		if comp.Root() == nil {
			return nil, mosaicerrors.NewCommit(fmt.Sprintf("list item %q has no root after paint", comp.TypeID()), nil)
		}
		dom.Detach(comp.Root())
		e.Bind(comp.Root(), comp)
		return comp.Root(), nil

	case core.KindNil, core.KindPrimitive, core.KindObject:
		return dom.TextNode(stringForm(item)), nil

	default:
		return nil, mosaicerrors.NewCommit(
			fmt.Sprintf("unsupported list item kind %s", core.Classify(item)), nil)
	}
}

// notifyMounted fires the creation hook for component items after their
// nodes entered the tree.
func notifyMounted(ctx context.Context, item interface{}) {
	if comp, ok := item.(core.Renderable); ok {
		comp.Mounted(ctx)
	}
}

// teardownOutgoing fires destroy hooks on whatever instances are mounted
// on or below the node a commit is about to replace. The bindings table,
// not the previous value array, decides what was mounted: hosts rebuild
// their value arrays on every view call, so old values may be unpainted
// twins of the instances actually in the tree.
func (e *Engine) teardownOutgoing(ctx context.Context, node *html.Node, newValue interface{}) {
	newComp, _ := newValue.(core.Renderable)
	for _, bound := range e.boundWithin(node) {
		if bound != newComp {
			bound.Teardown(ctx)
		}
	}
}

// teardownDroppedItems tears down instances mounted in an outgoing list
// region unless the new list carries the same instance forward.
func (e *Engine) teardownDroppedItems(ctx context.Context, old *html.Node, newItems []interface{}) {
	for _, bound := range e.boundWithin(old) {
		kept := false
		for _, item := range newItems {
			if comp, isComp := item.(core.Renderable); isComp && comp == bound {
				kept = true
				break
			}
		}
		if !kept {
			bound.Teardown(ctx)
		}
	}
}

// boundWithin returns the instance bound to the node itself, or failing
// that the top-level instances bound below it.
func (e *Engine) boundWithin(node *html.Node) []core.Renderable {
	if node == nil {
		return nil
	}
	if bound, ok := e.bindings[node]; ok {
		return []core.Renderable{bound}
	}
	return e.BoundUnder(node)
}

// fragmentRoot extracts the single spliceable node from an instantiated
// fragment, wrapping multi-root content in a container so node slots stay
// one-for-one replacements.
func fragmentRoot(frag *html.Node) *html.Node {
	if dom.ChildCount(frag) == 1 {
		only := frag.FirstChild
		dom.Detach(only)
		return only
	}
	container := dom.Container()
	for frag.FirstChild != nil {
		child := frag.FirstChild
		dom.Detach(child)
		container.AppendChild(child)
	}
	return container
}
