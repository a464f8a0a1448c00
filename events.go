package mosaic

import "github.com/atilaykosker/Mosaic/core"

// Event is delivered to a bound event handler: the bare event name (no
// "on" prefix), the element it was bound on, and an arbitrary payload.
type Event = core.Event

// Handler is the value shape an event slot accepts.
type Handler = core.Handler
