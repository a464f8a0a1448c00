// Package diff decides, per slot, whether a freshly computed value needs a
// DOM commit. Rules run in a fixed precedence over the closed value
// taxonomy in core; lists and keyed lists are conservatively always dirty,
// with keyed lists getting their fine-grained membership diff later in the
// commit engine.
package diff

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/atilaykosker/Mosaic/core"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
)

// Dirty reports whether a slot must be committed. force is the node-kind
// force flag; initial marks the first render of the slot, when no prior
// value exists. Both short-circuit to dirty. The error return is only
// non-nil for component values whose injected data cannot be compared
// structurally; callers isolate such slots instead of aborting the walk.
func Dirty(oldValue, newValue interface{}, force, initial bool) (bool, error) {
	if initial || force {
		return true, nil
	}

	switch core.Classify(newValue) {
	case core.KindNil, core.KindPrimitive:
		return oldValue != newValue, nil

	case core.KindFunc:
		if core.Classify(oldValue) != core.KindFunc {
			return true, nil
		}
		// Two closures over the same code compare equal even when their
		// captured state differs; a known limitation carried over from
		// source-text comparison.
		return funcID(oldValue) != funcID(newValue), nil

	case core.KindList:
		return true, nil

	case core.KindKeyedList:
		return true, nil

	case core.KindComponent:
		newComp := newValue.(core.Renderable)
		oldComp, ok := oldValue.(core.Renderable)
		if !ok {
			return true, nil
		}
		if oldComp.TypeID() != newComp.TypeID() {
			return true, nil
		}
		oldData, newData := oldComp.InjectedData(), newComp.InjectedData()
		if key, unstable := unstableDataKey(oldData, newData); unstable {
			return false, mosaicerrors.NewUnstableDataComparison(key)
		}
		return !reflect.DeepEqual(oldData, newData), nil

	case core.KindView:
		newView, _ := core.AsView(newValue)
		oldView, ok := core.AsView(oldValue)
		if !ok {
			return true, nil
		}
		// Branching views swap whole templates while their value lists
		// can match, so template identity is part of the comparison.
		if !segmentsEqual(oldView.Segments, newView.Segments) {
			return true, nil
		}
		return stringifyValues(oldView.Values) != stringifyValues(newView.Values), nil

	default:
		return !reflect.DeepEqual(oldValue, newValue), nil
	}
}

// funcID returns the code pointer identifying a function value.
func funcID(v interface{}) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func segmentsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// stringifyValues renders a value list to a comparison string. Functions
// contribute their code pointer so a view is not considered changed merely
// because its handlers were rebuilt on this render.
func stringifyValues(values []interface{}) string {
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		if core.Classify(v) == core.KindFunc {
			fmt.Fprintf(&b, "func@%x", funcID(v))
			continue
		}
		fmt.Fprintf(&b, "%v", v)
	}
	return b.String()
}

// unstableDataKey scans both injected-data maps for values that break
// structural comparison (functions, channels, unsafe pointers) and returns
// the first offending key in sorted order.
func unstableDataKey(oldData, newData map[string]interface{}) (string, bool) {
	for _, data := range []map[string]interface{}{oldData, newData} {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if unstable(reflect.ValueOf(data[k]), make(map[uintptr]bool)) {
				return k, true
			}
		}
	}
	return "", false
}

// unstable walks a value looking for kinds with no structural equality.
// Pointer cycles are cut with the seen set.
func unstable(v reflect.Value, seen map[uintptr]bool) bool {
	if !v.IsValid() {
		return false
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return !v.IsNil()
	case reflect.Ptr:
		if v.IsNil() || seen[v.Pointer()] {
			return false
		}
		seen[v.Pointer()] = true
		return unstable(v.Elem(), seen)
	case reflect.Interface:
		if v.IsNil() {
			return false
		}
		return unstable(v.Elem(), seen)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if unstable(iter.Key(), seen) || unstable(iter.Value(), seen) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if unstable(v.Index(i), seen) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if unstable(v.Field(i), seen) {
				return true
			}
		}
	}
	return false
}
