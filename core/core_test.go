package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

type fakeComponent struct {
	id   string
	data map[string]interface{}
}

func (f *fakeComponent) TypeID() string                                   { return f.id }
func (f *fakeComponent) Root() *html.Node                                 { return nil }
func (f *fakeComponent) Paint(context.Context) error                      { return nil }
func (f *fakeComponent) SetParent(Renderable)                             {}
func (f *fakeComponent) Mounted(context.Context)                          {}
func (f *fakeComponent) Receive(context.Context, string, interface{}) error { return nil }
func (f *fakeComponent) Teardown(context.Context)                         {}
func (f *fakeComponent) InjectedData() map[string]interface{}             { return f.data }

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected Kind
	}{
		{"nil", nil, KindNil},
		{"string", "hello", KindPrimitive},
		{"bool", true, KindPrimitive},
		{"int", 42, KindPrimitive},
		{"int64", int64(42), KindPrimitive},
		{"uint8", uint8(7), KindPrimitive},
		{"float", 3.14, KindPrimitive},
		{"view value", View{Segments: []string{"<p>", "</p>"}}, KindView},
		{"view pointer", &View{}, KindView},
		{"keyed list value", KeyedList{}, KindKeyedList},
		{"keyed list pointer", &KeyedList{}, KindKeyedList},
		{"component", &fakeComponent{id: "x"}, KindComponent},
		{"handler", Handler(func(Event) {}), KindFunc},
		{"plain func", func() {}, KindFunc},
		{"func with args", func(int) string { return "" }, KindFunc},
		{"interface slice", []interface{}{1, 2}, KindList},
		{"typed slice", []string{"a"}, KindList},
		{"array", [2]int{1, 2}, KindList},
		{"map", map[string]int{"a": 1}, KindObject},
		{"struct", struct{ X int }{1}, KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.value))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "nil", KindNil.String())
	assert.Equal(t, "primitive", KindPrimitive.String())
	assert.Equal(t, "func", KindFunc.String())
	assert.Equal(t, "list", KindList.String())
	assert.Equal(t, "keyed-list", KindKeyedList.String())
	assert.Equal(t, "component", KindComponent.String())
	assert.Equal(t, "view", KindView.String())
	assert.Equal(t, "object", KindObject.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestAsView(t *testing.T) {
	v := View{Segments: []string{"<p>", "</p>"}, Values: []interface{}{1}}

	got, ok := AsView(v)
	require.True(t, ok)
	assert.Equal(t, v, got)

	got, ok = AsView(&v)
	require.True(t, ok)
	assert.Equal(t, v, got)

	_, ok = AsView((*View)(nil))
	assert.False(t, ok)

	_, ok = AsView("not a view")
	assert.False(t, ok)
}

func TestAsKeyedList(t *testing.T) {
	l := KeyedList{Keys: []string{"a"}, Items: []interface{}{1}}

	got, ok := AsKeyedList(l)
	require.True(t, ok)
	assert.Equal(t, l.Keys, got.Keys)

	got, ok = AsKeyedList(&l)
	require.True(t, ok)
	assert.Same(t, &l, got)

	_, ok = AsKeyedList((*KeyedList)(nil))
	assert.False(t, ok)

	_, ok = AsKeyedList([]string{"a"})
	assert.False(t, ok)
}

func TestListItems(t *testing.T) {
	assert.Equal(t, []interface{}{1, "b"}, ListItems([]interface{}{1, "b"}))
	assert.Equal(t, []interface{}{"a", "b"}, ListItems([]string{"a", "b"}))
	assert.Equal(t, []interface{}{1, 2}, ListItems([2]int{1, 2}))
	assert.Nil(t, ListItems(42))
}

func TestViewEmpty(t *testing.T) {
	assert.True(t, View{}.Empty())
	assert.False(t, View{Segments: []string{"<hr>"}}.Empty())
}

func TestKeyedListValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		l := &KeyedList{Keys: []string{"a", "b"}, Items: []interface{}{1, 2}}
		assert.NoError(t, l.Validate())
	})

	t.Run("length mismatch", func(t *testing.T) {
		l := &KeyedList{Keys: []string{"a"}, Items: []interface{}{1, 2}}
		assert.Error(t, l.Validate())
	})

	t.Run("duplicate key", func(t *testing.T) {
		l := &KeyedList{Keys: []string{"a", "a"}, Items: []interface{}{1, 2}}
		assert.Error(t, l.Validate())
	})

	t.Run("empty", func(t *testing.T) {
		l := &KeyedList{}
		assert.NoError(t, l.Validate())
		assert.Equal(t, 0, l.Len())
	})
}

type todo struct {
	ID    int
	Title string
}

func TestBuildList(t *testing.T) {
	todos := []todo{{1, "write"}, {2, "test"}}

	list := BuildList(todos,
		func(td todo) string { return "todo-" + td.Title },
		func(td todo) interface{} { return td.Title },
	)

	require.NoError(t, list.Validate())
	assert.Equal(t, []string{"todo-write", "todo-test"}, list.Keys)
	assert.Equal(t, []interface{}{"write", "test"}, list.Items)
	assert.Equal(t, 2, list.Len())
}
