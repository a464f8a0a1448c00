package mosaic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
)

func TestDefineValidation(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr bool
	}{
		{name: "valid", tag: "my-counter", wantErr: false},
		{name: "uppercase is normalized", tag: "My-Counter", wantErr: false},
		{name: "surrounding space is trimmed", tag: " my-counter ", wantErr: false},
		{name: "empty", tag: "", wantErr: true},
		{name: "no hyphen", tag: "counter", wantErr: true},
		{name: "underscore", tag: "my_counter", wantErr: true},
		{name: "space inside", tag: "my counter", wantErr: true},
		{name: "leading digit", tag: "1my-counter", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime()
			def, err := rt.Define(Options{Name: tt.tag})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, mosaicerrors.IsInvalidDefinition(err))
				assert.Nil(t, def)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "my-counter", def.Name())
		})
	}
}

func TestDefineFirstWriterWins(t *testing.T) {
	rt := NewRuntime()

	first, err := rt.Define(Options{Name: "my-counter", Data: map[string]interface{}{"count": 1}})
	require.NoError(t, err)
	second, err := rt.Define(Options{Name: "MY-COUNTER", Data: map[string]interface{}{"count": 99}})
	require.NoError(t, err)

	assert.Same(t, first, second)
	c := second.New()
	count, _ := c.Get("count")
	assert.Equal(t, 1, count)
}

func TestDefinitionLookup(t *testing.T) {
	rt := NewRuntime()
	def := rt.MustDefine(Options{Name: "my-counter"})

	found, ok := rt.Definition("MY-COUNTER")
	require.True(t, ok)
	assert.Same(t, def, found)

	_, ok = rt.Definition("never-defined")
	assert.False(t, ok)
}

func TestMustDefinePanics(t *testing.T) {
	rt := NewRuntime()
	assert.Panics(t, func() {
		rt.MustDefine(Options{Name: "nohyphen"})
	})
}

func TestRepaintObservers(t *testing.T) {
	rt := NewRuntime()
	counter := rt.MustDefine(Options{
		Name: "my-counter",
		Data: map[string]interface{}{"count": 0},
		View: func(c *Component) View {
			count, _ := c.Get("count")
			return NewView([]string{"<b>", "</b>"}, count)
		},
	})

	var seen []string
	remove := rt.AddRepaintObserver(func(c *Component) {
		seen = append(seen, c.ID())
	})

	ctx := context.Background()
	c := counter.New()
	require.NoError(t, c.Mount(ctx))
	assert.Empty(t, seen, "the initial paint is not a repaint")

	require.NoError(t, c.Set(ctx, "count", 1))
	require.Len(t, seen, 1)
	assert.Equal(t, c.ID(), seen[0])

	remove()
	require.NoError(t, c.Set(ctx, "count", 2))
	assert.Len(t, seen, 1)
}

func TestNewView(t *testing.T) {
	v := NewView([]string{"<p>", "</p>"}, "x")
	assert.Equal(t, []string{"<p>", "</p>"}, v.Segments)
	assert.Equal(t, []interface{}{"x"}, v.Values)
}

func TestDefaultRuntimeHelpers(t *testing.T) {
	def, err := Define(Options{Name: "default-smoke"})
	require.NoError(t, err)
	assert.Same(t, def, MustDefine(Options{Name: "default-smoke"}))

	found, ok := Default().Definition("default-smoke")
	require.True(t, ok)
	assert.Same(t, def, found)
}
