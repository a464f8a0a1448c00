package mosaic

import (
	"context"

	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/core"
	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/registry"
)

// Component is one live instance of a defined component type. Instances
// are single-threaded: repaints happen synchronously on the caller's
// stack, and no two repaints of the same instance ever overlap.
type Component struct {
	def     *Definition
	runtime *Runtime
	id      string

	data     map[string]interface{}
	injected map[string]interface{}

	template   *registry.CompiledTemplate
	root       *html.Node
	parent     core.Renderable
	lastValues []interface{}

	mounted   bool
	destroyed bool
}

// TypeID returns the component's element tag.
func (c *Component) TypeID() string { return c.def.name }

// ID returns the instance identifier, unique within the runtime.
func (c *Component) ID() string { return c.id }

// Root returns the instance's host element, nil before the first paint.
func (c *Component) Root() *html.Node { return c.root }

// Parent returns the owning instance, nil for roots.
func (c *Component) Parent() core.Renderable { return c.parent }

// SetParent records the owning instance.
func (c *Component) SetParent(p core.Renderable) { c.parent = p }

// InjectedData returns the data the instance was created with. Change
// detection compares it to decide whether a slot's component value moved.
func (c *Component) InjectedData() map[string]interface{} { return c.injected }

// Get reads one tracked data key.
func (c *Component) Get(key string) (interface{}, bool) {
	v, ok := c.data[key]
	return v, ok
}

// Data returns a copy of the tracked data.
func (c *Component) Data() map[string]interface{} {
	out := make(map[string]interface{}, len(c.data))
	for k, v := range c.data {
		out[k] = v
	}
	return out
}

// Set writes one tracked data key and synchronously repaints. Writes
// before the first paint only store the value. N writes mean N repaints;
// there is no batching.
func (c *Component) Set(ctx context.Context, key string, value interface{}) error {
	if c.destroyed {
		return nil
	}
	c.data[key] = value
	return c.repaint(ctx)
}

// Mount paints the instance onto a fresh host element and fires its
// creation hook. Use Root or Render to reach the result.
func (c *Component) Mount(ctx context.Context) error {
	if err := c.Paint(ctx); err != nil {
		return err
	}
	c.Mounted(ctx)
	return nil
}

// Render serializes the instance's current tree.
func (c *Component) Render() (string, error) {
	if c.root == nil {
		return "", mosaicerrors.NewInternal("component has not been painted", nil)
	}
	return dom.Render(c.root)
}

// Paint builds the instance's tree: compile (or fetch) the type's
// template, clone it into a host element, upgrade literal child component
// tags, and commit the initial values. A live instance that has already
// painted keeps its tree; use Repaint to recompute the view.
func (c *Component) Paint(ctx context.Context) error {
	if c.root != nil && !c.destroyed {
		return nil
	}
	return c.paintInto(ctx, dom.Element(c.def.name))
}

// paintInto paints onto the given host element, replacing its content.
// The host's existing children belong to the parent's template; the
// component's view owns the element's content from here on.
func (c *Component) paintInto(ctx context.Context, host *html.Node) error {
	tmpl, err := c.runtime.templates.GetOrCreate(c.def.name, c.def.viewFn(c))
	if err != nil {
		return err
	}
	c.template = tmpl

	for host.FirstChild != nil {
		dom.Detach(host.FirstChild)
	}
	frag := tmpl.NewFragment()
	for frag.FirstChild != nil {
		child := frag.FirstChild
		dom.Detach(child)
		host.AppendChild(child)
	}
	c.root = host
	c.destroyed = false

	c.upgradeChildren(ctx)

	values := c.viewValues()
	if err := c.runtime.engine.Repaint(ctx, c, c.root, tmpl.Memories, nil, values, true); err != nil {
		return err
	}
	c.lastValues = values
	return nil
}

// Mounted marks the instance live and fires Created once per mount.
func (c *Component) Mounted(ctx context.Context) {
	if c.mounted {
		return
	}
	c.mounted = true
	if h := c.def.options.Created; h != nil {
		h(c)
	}
}

// Receive handles one injected update from the owning component: the
// Received hook sees the raw update, then the value merges into the data
// and the instance repaints.
func (c *Component) Receive(ctx context.Context, key string, value interface{}) error {
	if c.destroyed {
		return nil
	}
	if h := c.def.options.Received; h != nil {
		h(c, key, value)
	}
	c.data[key] = value
	return c.repaint(ctx)
}

// Repaint recomputes the view and commits the changed slots.
func (c *Component) Repaint(ctx context.Context) error {
	return c.repaint(ctx)
}

// Teardown fires WillDestroy, tears down every instance mounted below
// this one, and clears the listener and binding tables for the subtree.
func (c *Component) Teardown(ctx context.Context) {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.mounted = false

	if h := c.def.options.WillDestroy; h != nil {
		h(c)
	}
	if c.root == nil {
		return
	}
	for _, child := range c.runtime.engine.BoundUnder(c.root) {
		child.Teardown(ctx)
	}
	c.runtime.engine.DetachListeners(c.root)
}

// DispatchEvent delivers an event to the handler bound on node, if any.
func (c *Component) DispatchEvent(node *html.Node, name string, payload interface{}) bool {
	return c.runtime.engine.DispatchEvent(node, name, payload)
}

func (c *Component) repaint(ctx context.Context) error {
	if c.destroyed || c.root == nil || c.template == nil {
		return nil
	}

	values := c.viewValues()
	if err := c.runtime.engine.Repaint(ctx, c, c.root, c.template.Memories, c.lastValues, values, false); err != nil {
		return err
	}
	c.lastValues = values

	if h := c.def.options.Updated; h != nil {
		h(c)
	}
	c.runtime.notifyRepaint(c)
	return nil
}

func (c *Component) viewValues() []interface{} {
	if c.def.options.View == nil {
		return nil
	}
	return c.def.options.View(c).Values
}

// upgradeChildren instantiates component definitions for the literal
// component tags in the freshly cloned template, one level deep: an
// upgraded child owns everything below it.
func (c *Component) upgradeChildren(ctx context.Context) {
	var hosts []*html.Node
	set := make(map[*html.Node]bool)
	dom.Walk(c.root, func(n *html.Node, path []int) bool {
		if dom.IsElement(n) && c.runtime.isRegistered(n.Data) {
			hosts = append(hosts, n)
			set[n] = true
		}
		return true
	})

	for _, host := range hosts {
		if nestedInUpgraded(host, set) {
			continue
		}
		def, ok := c.runtime.Definition(host.Data)
		if !ok {
			continue
		}
		child := def.New()
		child.SetParent(c)
		if err := child.paintInto(ctx, host); err != nil {
			c.runtime.logger.Warn(ctx, err, "child upgrade failed", "tag", host.Data)
			continue
		}
		c.runtime.engine.Bind(host, child)
		child.Mounted(ctx)
	}
}

func nestedInUpgraded(n *html.Node, set map[*html.Node]bool) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if set[p] {
			return true
		}
	}
	return false
}
