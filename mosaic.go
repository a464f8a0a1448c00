package mosaic

import (
	"fmt"
	"strings"
	"sync"

	"github.com/atilaykosker/Mosaic/commit"
	"github.com/atilaykosker/Mosaic/core"
	mosaicerrors "github.com/atilaykosker/Mosaic/errors"
	"github.com/atilaykosker/Mosaic/internal/logging"
	"github.com/atilaykosker/Mosaic/registry"
)

// View is the segments-plus-values pair a component's view function
// produces. The segment list must be identical on every call for a given
// component type; the values change freely between repaints.
type View = core.View

// NewView pairs literal markup segments with the values interpolated
// between them. len(segments) must be len(values)+1.
func NewView(segments []string, values ...interface{}) View {
	return View{Segments: segments, Values: values}
}

// Options describes a component type for Define.
type Options struct {
	// Name is the component's element tag. It is lowercased to match
	// parsed tag names and must contain a hyphen so it can never collide
	// with a standard element.
	Name string

	// View produces the component's markup segments and current values.
	// Nil yields an empty component.
	View func(c *Component) View

	// Data seeds every instance's tracked data.
	Data map[string]interface{}

	// Created fires once per mount, Updated after every repaint, Received
	// before an injected update merges into the data, WillDestroy before
	// teardown.
	Created     func(c *Component)
	Updated     func(c *Component)
	Received    func(c *Component, key string, value interface{})
	WillDestroy func(c *Component)
}

// Definition is a registered component type. It creates instances; the
// underlying template compiles once, on the first paint.
type Definition struct {
	runtime *Runtime
	name    string
	options Options
}

// Name returns the definition's element tag.
func (d *Definition) Name() string { return d.name }

// New creates an instance with the definition's default data.
func (d *Definition) New() *Component { return d.With(nil) }

// With creates an instance whose injected data overlays the defaults.
// Injected data is what change detection compares when the instance is
// used as a slot value.
func (d *Definition) With(injected map[string]interface{}) *Component {
	data := make(map[string]interface{}, len(d.options.Data)+len(injected))
	for k, v := range d.options.Data {
		data[k] = v
	}
	inj := make(map[string]interface{}, len(injected))
	for k, v := range injected {
		inj[k] = v
		data[k] = v
	}
	return &Component{
		def:      d,
		runtime:  d.runtime,
		id:       d.runtime.nextInstanceID(d.name),
		data:     data,
		injected: inj,
	}
}

func (d *Definition) viewFn(c *Component) registry.ViewFn {
	if d.options.View == nil {
		return nil
	}
	return func() core.View { return d.options.View(c) }
}

// Runtime owns the template cache, the commit engine, and the component
// definitions that share them. The zero value is not usable; create one
// with NewRuntime or use the package-level Default.
type Runtime struct {
	logger    logging.Logger
	templates *registry.TemplateRegistry
	engine    *commit.Engine

	mutex       sync.RWMutex
	definitions map[string]*Definition
	instances   int

	observerMutex sync.RWMutex
	observers     map[int]func(*Component)
	nextObserver  int
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the runtime's logger. The default discards everything.
func WithLogger(l logging.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates an isolated runtime with its own template cache and
// engine.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		logger:      logging.NewNopLogger(),
		definitions: make(map[string]*Definition),
		observers:   make(map[int]func(*Component)),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.templates = registry.NewTemplateRegistry(registry.WithComponentCheck(r.isRegistered))
	r.engine = commit.NewEngine(r.templates,
		commit.WithComponentCheck(r.isRegistered),
		commit.WithLogger(r.logger.WithComponent("engine")))
	return r
}

// ValidateName checks a component tag name after normalization: names
// are lowercased, need a hyphen to stay out of HTML's built-in tag space,
// and may only use letters, digits, and hyphens with a leading letter.
func ValidateName(rawName string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(rawName))
	if name == "" {
		return "", mosaicerrors.NewInvalidDefinition(rawName, "component name is required")
	}
	if !strings.Contains(name, "-") {
		return "", mosaicerrors.NewInvalidDefinition(name, "component names need a hyphen, like \"my-counter\"")
	}
	if !validTagName(name) {
		return "", mosaicerrors.NewInvalidDefinition(name, "component names may only use letters, digits, and hyphens")
	}
	return name, nil
}

// Define registers a component type. Registering a name twice returns the
// first definition unchanged.
func (r *Runtime) Define(opts Options) (*Definition, error) {
	name, err := ValidateName(opts.Name)
	if err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if existing, ok := r.definitions[name]; ok {
		return existing, nil
	}
	def := &Definition{runtime: r, name: name, options: opts}
	r.definitions[name] = def
	return def, nil
}

// MustDefine is Define, panicking on invalid options.
func (r *Runtime) MustDefine(opts Options) *Definition {
	def, err := r.Define(opts)
	if err != nil {
		panic(err)
	}
	return def
}

// Definition looks up a registered component type by tag name.
func (r *Runtime) Definition(name string) (*Definition, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	def, ok := r.definitions[strings.ToLower(name)]
	return def, ok
}

// Engine exposes the runtime's commit engine for event dispatch and DOM
// interop.
func (r *Runtime) Engine() *commit.Engine { return r.engine }

// Templates exposes the runtime's compiled template cache.
func (r *Runtime) Templates() *registry.TemplateRegistry { return r.templates }

// AddRepaintObserver registers fn to run after every component repaint on
// this runtime. The returned function removes the observer.
func (r *Runtime) AddRepaintObserver(fn func(*Component)) func() {
	r.observerMutex.Lock()
	id := r.nextObserver
	r.nextObserver++
	r.observers[id] = fn
	r.observerMutex.Unlock()

	return func() {
		r.observerMutex.Lock()
		delete(r.observers, id)
		r.observerMutex.Unlock()
	}
}

func (r *Runtime) notifyRepaint(c *Component) {
	r.observerMutex.RLock()
	defer r.observerMutex.RUnlock()
	for _, fn := range r.observers {
		fn(c)
	}
}

func (r *Runtime) isRegistered(tag string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.definitions[tag]
	return ok
}

func (r *Runtime) nextInstanceID(name string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.instances++
	return fmt.Sprintf("%s-%d", name, r.instances)
}

func validTagName(name string) bool {
	for _, ru := range name {
		switch {
		case ru >= 'a' && ru <= 'z':
		case ru >= '0' && ru <= '9':
		case ru == '-':
		default:
			return false
		}
	}
	return name[0] >= 'a' && name[0] <= 'z'
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide runtime behind the package-level
// helpers.
func Default() *Runtime { return defaultRuntime }

// Define registers a component type on the default runtime.
func Define(opts Options) (*Definition, error) { return defaultRuntime.Define(opts) }

// MustDefine is Define on the default runtime, panicking on invalid
// options.
func MustDefine(opts Options) *Definition { return defaultRuntime.MustDefine(opts) }

// AddRepaintObserver observes repaints on the default runtime.
func AddRepaintObserver(fn func(*Component)) func() {
	return defaultRuntime.AddRepaintObserver(fn)
}
