package core

import (
	"context"

	"golang.org/x/net/html"
)

// Renderable is the surface a component instance exposes to the engine.
// The lifecycle host owns construction and state; the engine only needs
// enough to mount, diff, cascade updates into, and tear down nested
// components it encounters as slot values.
type Renderable interface {
	// TypeID identifies the component's type, not the instance. The
	// change detector treats two values with equal TypeIDs and
	// structurally equal injected data as unchanged.
	TypeID() string

	// Root returns the instance's root node, nil before the first paint.
	Root() *html.Node

	// Paint renders the instance's own template if it has not been
	// rendered yet. It is idempotent.
	Paint(ctx context.Context) error

	// SetParent records the owning instance when the engine mounts this
	// one as a nested value.
	SetParent(parent Renderable)

	// Mounted fires the creation hook. The engine calls it after
	// splicing the root in; implementations must make it once-per-mount.
	Mounted(ctx context.Context)

	// Receive delivers one pending update from a parent repaint: the
	// update hook runs, the data key is merged, and the instance
	// repaints synchronously before Receive returns.
	Receive(ctx context.Context, key string, value interface{}) error

	// Teardown detaches listeners and recursively tears down nested
	// children. The engine calls it before replacing the instance with
	// a different value.
	Teardown(ctx context.Context)

	// InjectedData exposes the externally supplied data the change
	// detector compares structurally.
	InjectedData() map[string]interface{}
}

// Event is the payload delivered to an event-kind slot's handler.
type Event struct {
	Name    string
	Target  *html.Node
	Payload interface{}
}

// Handler is the function shape event-kind slot values must have. Views
// bind component state by closing over the instance.
type Handler func(Event)
