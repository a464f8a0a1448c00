package commit

import (
	"context"

	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/core"
	"github.com/atilaykosker/Mosaic/diff"
	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/markup"
	"github.com/atilaykosker/Mosaic/memory"
)

// KeyAttr is the attribute carrying an item's key on its rendered root,
// the retrievable identity the reconciler locates nodes by.
const KeyAttr = "data-key"

// commitKeyed patches a keyed list's membership instead of re-rendering
// it. Items live as siblings starting at the slot's recorded path; the
// node at that path (the marker while the list is empty, the first item
// otherwise) anchors every positional walk. Reordering surviving keys is
// not detected; a moved key re-renders as one removal plus one insertion
// only when its key actually leaves and re-enters the list.
func (e *Engine) commitKeyed(ctx context.Context, owner core.Renderable, root *html.Node, mem *memory.Memory, oldValue, newValue interface{}) error {
	newList, ok := core.AsKeyedList(newValue)
	if !ok {
		return mosaicerrors.NewCommit("keyed slot received a non-keyed value", nil).WithSlot(mem.Path, mem.Attr)
	}
	if err := newList.Validate(); err != nil {
		return mosaicerrors.NewCommit("invalid keyed list", err).WithSlot(mem.Path, mem.Attr)
	}

	oldList, hadList := core.AsKeyedList(oldValue)
	if !hadList || oldList.Len() == 0 {
		return e.renderKeyedInitial(ctx, owner, root, mem, newList)
	}

	deletions, additions := diff.Keys(oldList.Keys, newList.Keys)
	if len(deletions) == 0 && len(additions) == 0 {
		return nil
	}

	survivors := oldList.Len() - len(deletions)
	if survivors == 0 {
		// Nothing carries over: restore the marker so the region has an
		// anchor again, then render the new membership from scratch.
		e.restoreMarker(ctx, root, mem, oldList)
		return e.renderKeyedInitial(ctx, owner, root, mem, newList)
	}

	remaining := oldList.Len()
	for _, key := range deletions {
		node := e.findKeyedItem(root, mem, key, remaining)
		if node == nil {
			e.logger.Debug(ctx, "keyed deletion found no node", "key", key)
			continue
		}
		e.teardownOutgoing(ctx, node, nil)
		e.removeNode(node)
		remaining--
	}

	regionLen := survivors
	for _, addition := range additions {
		item := newList.Items[addition.Index]
		rendered, err := e.renderKeyedItem(ctx, owner, item, addition.Key)
		if err != nil {
			return err
		}

		anchor := dom.AtPath(root, mem.Path)
		if anchor == nil {
			return mosaicerrors.NewCommit("keyed list lost its anchor", nil).WithSlot(mem.Path, mem.Attr)
		}
		e.insertAtRegionIndex(anchor, rendered, addition.Index, regionLen)
		regionLen++
		notifyMounted(ctx, item)
	}
	return nil
}

// renderKeyedInitial replaces the marker at the slot path with the first
// item and chains the rest after it. An empty list keeps the marker so
// later additions still have an anchor.
func (e *Engine) renderKeyedInitial(ctx context.Context, owner core.Renderable, root *html.Node, mem *memory.Memory, list *core.KeyedList) error {
	if list.Len() == 0 {
		return nil
	}

	anchor := dom.AtPath(root, mem.Path)
	if anchor == nil {
		return mosaicerrors.NewCommit("no anchor at keyed slot path", nil).WithSlot(mem.Path, mem.Attr)
	}

	var prev *html.Node
	for i, key := range list.Keys {
		rendered, err := e.renderKeyedItem(ctx, owner, list.Items[i], key)
		if err != nil {
			return err
		}
		if i == 0 {
			e.replaceNode(anchor, rendered)
		} else {
			dom.InsertAfter(prev, rendered)
			e.commits++
		}
		prev = rendered
		notifyMounted(ctx, list.Items[i])
	}
	return nil
}

// restoreMarker collapses a keyed region back to a single marker comment,
// tearing down whatever was mounted on its item nodes.
func (e *Engine) restoreMarker(ctx context.Context, root *html.Node, mem *memory.Memory, oldList *core.KeyedList) {
	restored := false
	remaining := oldList.Len()
	for _, key := range oldList.Keys {
		node := e.findKeyedItem(root, mem, key, remaining)
		if node == nil {
			e.logger.Debug(ctx, "keyed removal found no node", "key", key)
			continue
		}
		e.teardownOutgoing(ctx, node, nil)
		if restored {
			e.removeNode(node)
			remaining--
		} else {
			e.replaceNode(node, dom.CommentNode(markup.Token))
			restored = true
		}
	}
}

// findKeyedItem locates a key inside the list region anchored at the
// slot's path: the anchor node and at most regionLen-1 of its following
// siblings. Keys are only unique within one list, so the lookup never
// leaves the region; a sibling list reusing the key stays untouched.
func (e *Engine) findKeyedItem(root *html.Node, mem *memory.Memory, key string, regionLen int) *html.Node {
	node := dom.AtPath(root, mem.Path)
	for i := 0; node != nil && i < regionLen; i++ {
		if got, ok := dom.GetAttr(node, KeyAttr); ok && got == key {
			return node
		}
		node = node.NextSibling
	}
	return nil
}

// renderKeyedItem renders one item and tags its root with the key. Roots
// that cannot carry attributes are wrapped first.
func (e *Engine) renderKeyedItem(ctx context.Context, owner core.Renderable, item interface{}, key string) (*html.Node, error) {
	rendered, err := e.renderItem(ctx, owner, item)
	if err != nil {
		return nil, err
	}
	if !dom.IsElement(rendered) {
		wrapper := dom.Container()
		wrapper.AppendChild(rendered)
		rendered = wrapper
	}
	dom.SetAttr(rendered, KeyAttr, key)
	return rendered, nil
}

// insertAtRegionIndex places a rendered item at the given index of the
// list region anchored at anchor. Indexes at or past the region length
// append after the last item instead of erroring.
func (e *Engine) insertAtRegionIndex(anchor, rendered *html.Node, index, regionLen int) {
	if index >= regionLen {
		last := anchor
		for i := 0; i < regionLen-1 && last.NextSibling != nil; i++ {
			last = last.NextSibling
		}
		dom.InsertAfter(last, rendered)
		e.commits++
		return
	}

	target := anchor
	for i := 0; i < index && target.NextSibling != nil; i++ {
		target = target.NextSibling
	}
	if target.Parent != nil {
		target.Parent.InsertBefore(rendered, target)
	}
	e.commits++
}
