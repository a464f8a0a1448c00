package core

import "fmt"

// KeyedList is an ordered collection whose items carry stable string keys.
// Keys address DOM nodes across renders regardless of position, so the
// commit engine can patch membership changes instead of re-rendering the
// whole list. Keys and Items are parallel and keys must be unique within
// one list.
type KeyedList struct {
	Keys  []string
	Items []interface{}
}

// Len returns the number of items.
func (l *KeyedList) Len() int {
	return len(l.Keys)
}

// Validate checks the parallel-slices invariant and key uniqueness.
func (l *KeyedList) Validate() error {
	if len(l.Keys) != len(l.Items) {
		return fmt.Errorf("keyed list: %d keys for %d items", len(l.Keys), len(l.Items))
	}
	seen := make(map[string]struct{}, len(l.Keys))
	for _, k := range l.Keys {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("keyed list: duplicate key %q", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// BuildList renders items into a KeyedList for use as a node-slot value.
// key must return a stable identity for each item; render produces the
// item's slot value (a primitive, a View, or a Renderable).
func BuildList[T any](items []T, key func(T) string, render func(T) interface{}) *KeyedList {
	list := &KeyedList{
		Keys:  make([]string, len(items)),
		Items: make([]interface{}, len(items)),
	}
	for i, item := range items {
		list.Keys[i] = key(item)
		list.Items[i] = render(item)
	}
	return list
}
