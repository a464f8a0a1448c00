package mosaic

import "github.com/atilaykosker/Mosaic/core"

// KeyedList pairs stable keys with rendered items so list repaints can
// patch membership instead of re-rendering everything.
type KeyedList = core.KeyedList

// BuildList renders items into a KeyedList. keyFn must produce a unique,
// stable key per item; render produces the item's slot value.
func BuildList[T any](items []T, keyFn func(T) string, render func(T) interface{}) *KeyedList {
	return core.BuildList(items, keyFn, render)
}
