// Package core defines the value model shared by the Mosaic engine: the
// segments+values pair a view produces, the closed set of value shapes the
// commit engine dispatches on, and the contract component instances expose
// to the core.
package core

import "reflect"

// View is what a view function produces: len(Segments) == len(Values)+1,
// with Values[i] interpolated between Segments[i] and Segments[i+1].
type View struct {
	Segments []string
	Values   []interface{}
}

// Empty reports whether the view carries no markup at all.
func (v View) Empty() bool {
	return len(v.Segments) == 0
}

// Kind is the shape of a slot value. The commit engine and change detector
// switch exhaustively over it instead of duck-typing at each call site.
type Kind int

const (
	KindNil Kind = iota
	KindPrimitive
	KindFunc
	KindList
	KindKeyedList
	KindComponent
	KindView
	KindObject
)

// String returns the kind name for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindPrimitive:
		return "primitive"
	case KindFunc:
		return "func"
	case KindList:
		return "list"
	case KindKeyedList:
		return "keyed-list"
	case KindComponent:
		return "component"
	case KindView:
		return "view"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Classify maps a slot value onto its Kind. Strings, booleans, and all
// numeric types are primitives; funcs of any signature are KindFunc;
// slices and arrays other than keyed lists are plain lists; everything
// left is a generic object compared by deep equality.
func Classify(v interface{}) Kind {
	if v == nil {
		return KindNil
	}

	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return KindPrimitive
	case View, *View:
		return KindView
	case KeyedList, *KeyedList:
		return KindKeyedList
	case Renderable:
		return KindComponent
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Func:
		return KindFunc
	case reflect.Slice, reflect.Array:
		return KindList
	default:
		return KindObject
	}
}

// AsView normalizes the two accepted view value forms.
func AsView(v interface{}) (View, bool) {
	switch view := v.(type) {
	case View:
		return view, true
	case *View:
		if view == nil {
			return View{}, false
		}
		return *view, true
	}
	return View{}, false
}

// AsKeyedList normalizes the two accepted keyed list value forms.
func AsKeyedList(v interface{}) (*KeyedList, bool) {
	switch list := v.(type) {
	case KeyedList:
		return &list, true
	case *KeyedList:
		return list, list != nil
	}
	return nil, false
}

// ListItems returns the elements of a plain list value as a flat slice.
func ListItems(v interface{}) []interface{} {
	if items, ok := v.([]interface{}); ok {
		return items
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items
}
