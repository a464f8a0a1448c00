// Package registry caches compiled templates by component type. A type is
// compiled and discovered at most once for the process lifetime; every
// instance of that type then paints onto a clone of the cached fragment.
package registry

import (
	"fmt"
	"hash/crc32"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/atilaykosker/Mosaic/core"
	"github.com/atilaykosker/Mosaic/dom"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/markup"
	"github.com/atilaykosker/Mosaic/memory"
)

// CompiledTemplate is the cached compile-once product for one component
// type: its static markup and the ordered slot list. The pristine fragment
// never mutates; instances paint onto clones.
type CompiledTemplate struct {
	TypeID   string
	Markup   string
	Memories []*memory.Memory

	fragment *html.Node
}

// NewFragment returns a fresh clone of the compiled fragment for one
// instance to own and mutate.
func (t *CompiledTemplate) NewFragment() *html.Node {
	return dom.Clone(t.fragment)
}

// SlotCount returns the number of dynamic slots, which equals the number
// of values the view interpolates.
func (t *CompiledTemplate) SlotCount() int {
	return len(t.Memories)
}

// ViewFn produces a representative view for compilation. Only the
// segments matter at compile time; the values establish the expected slot
// count.
type ViewFn func() core.View

// TemplateRegistry is the process-wide template cache. Reads are
// concurrent; writes happen at most once per type id with first-writer-
// wins semantics.
type TemplateRegistry struct {
	templates   map[string]*CompiledTemplate
	mutex       sync.RWMutex
	isComponent func(tag string) bool
}

// Option configures a TemplateRegistry.
type Option func(*TemplateRegistry)

// WithComponentCheck supplies the predicate slot discovery uses to mark
// slot owners that are registered component types.
func WithComponentCheck(fn func(tag string) bool) Option {
	return func(r *TemplateRegistry) {
		r.isComponent = fn
	}
}

// NewTemplateRegistry creates an empty template registry.
func NewTemplateRegistry(opts ...Option) *TemplateRegistry {
	r := &TemplateRegistry{
		templates: make(map[string]*CompiledTemplate),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the compiled template for typeID, compiling and
// discovering it on first use. A nil view yields an empty, valueless
// template. Compilation errors cache nothing, so a corrected view can
// retry under the same id.
func (r *TemplateRegistry) GetOrCreate(typeID string, view ViewFn) (*CompiledTemplate, error) {
	r.mutex.RLock()
	cached, ok := r.templates[typeID]
	r.mutex.RUnlock()
	if ok {
		return cached, nil
	}

	compiled, err := r.compile(typeID, view)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if winner, ok := r.templates[typeID]; ok {
		return winner, nil
	}
	r.templates[typeID] = compiled
	return compiled, nil
}

// Get returns a cached template without compiling.
func (r *TemplateRegistry) Get(typeID string) (*CompiledTemplate, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	t, ok := r.templates[typeID]
	return t, ok
}

// Len returns the number of cached templates.
func (r *TemplateRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.templates)
}

func (r *TemplateRegistry) compile(typeID string, view ViewFn) (*CompiledTemplate, error) {
	if view == nil {
		return r.emptyTemplate(typeID)
	}

	v := view()
	if v.Empty() {
		return r.emptyTemplate(typeID)
	}

	expected := markup.ValueCount(v.Segments)
	if len(v.Values) != expected {
		return nil, mosaicerrors.NewTemplateMismatch(typeID, expected, len(v.Values))
	}

	compiledMarkup := markup.Compile(v.Segments)
	fragment, err := dom.ParseFragment(compiledMarkup)
	if err != nil {
		return nil, mosaicerrors.NewMalformedMarkup(typeID, err)
	}

	memories := memory.Discover(fragment, r.isComponent)
	if len(memories) != expected {
		// Markers were swallowed by the parser, typically inside raw
		// text elements like script or textarea.
		return nil, mosaicerrors.NewTemplateMismatch(typeID, len(memories), expected)
	}

	return &CompiledTemplate{
		TypeID:   typeID,
		Markup:   compiledMarkup,
		Memories: memories,
		fragment: fragment,
	}, nil
}

func (r *TemplateRegistry) emptyTemplate(typeID string) (*CompiledTemplate, error) {
	fragment, err := dom.ParseFragment("")
	if err != nil {
		return nil, mosaicerrors.NewMalformedMarkup(typeID, err)
	}
	return &CompiledTemplate{TypeID: typeID, fragment: fragment}, nil
}

// ViewID derives a template identity for an anonymous nested view from its
// literal segments. Identical segment sequences share one compiled
// template.
func ViewID(segments []string) string {
	joined := strings.Join(segments, markup.Token)
	return fmt.Sprintf("view-%x", crc32.ChecksumIEEE([]byte(joined)))
}
