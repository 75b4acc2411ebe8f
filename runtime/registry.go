package runtime

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Registry: the platform import machinery
// ---------------------------------------------------------------------------

// LoaderFunc builds a module when it is first loaded. It is the module's
// top level: nothing in it runs until someone actually loads the module.
type LoaderFunc func(b *Builder) error

// Observer receives load and resolution events. Callbacks run
// synchronously on the importing goroutine; a nil observer is allowed.
type Observer interface {
	// ModuleLoaded fires once per successful load, with the loader's
	// wall time. Cache hits do not fire.
	ModuleLoaded(path string, d time.Duration)

	// ImportResolved fires for every import of a name, eager or
	// proxy-driven, with the outcome.
	ImportResolved(module, name string, err error)
}

// entry is one registered module. The per-entry mutex serializes its
// load, so loads of distinct modules never contend with each other.
type entry struct {
	path string
	load LoaderFunc

	mu     sync.Mutex
	module *Module // non-nil once loaded
}

// Registry maps module paths to loaders and caches loaded modules.
// Successful loads are cached permanently; failed loads are not cached,
// so a later load may retry.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string

	observer Observer
}

// Option configures a new registry.
type Option func(*Registry)

// WithObserver installs an observer for load and resolution events.
func WithObserver(o Observer) Option {
	return func(r *Registry) { r.observer = o }
}

// WithModules pre-registers a catalog of loaders.
func WithModules(loaders map[string]LoaderFunc) Option {
	return func(r *Registry) {
		paths := make([]string, 0, len(loaders))
		for path := range loaders {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			if err := r.Register(path, loaders[path]); err != nil {
				panic(err)
			}
		}
	}
}

// WithBuiltins registers the std module catalog.
func WithBuiltins() Option {
	return func(r *Registry) {
		if err := InstallBuiltins(r); err != nil {
			panic(err)
		}
	}
}

// NewRegistry creates a registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a module loader under a path. Registering a path twice
// is an error.
func (r *Registry) Register(path string, load LoaderFunc) error {
	if path == "" {
		return fmt.Errorf("runtime: register: empty module path")
	}
	if load == nil {
		return fmt.Errorf("runtime: register %s: nil loader", path)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[path]; ok {
		return fmt.Errorf("runtime: module %q: %w", path, ErrRedefined)
	}
	r.entries[path] = &entry{path: path, load: load}
	r.order = append(r.order, path)
	return nil
}

// Has returns true if a loader is registered under the path.
func (r *Registry) Has(path string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[path]
	return ok
}

// Paths returns all registered module paths in registration order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, len(r.order))
	copy(paths, r.order)
	return paths
}

// Loaded returns true if the module has been loaded and cached.
func (r *Registry) Loaded(path string) bool {
	r.mu.RLock()
	e := r.entries[path]
	r.mu.RUnlock()
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.module != nil
}

// Load loads a module, running its loader on first use and caching the
// result. Concurrent loads of one module serialize; exactly one loader
// run succeeds and is shared.
//
// The loading chain is per call: two goroutines whose loaders eagerly
// import each other's module can deadlock, exactly as two mutually
// eager imports in one goroutine fail with a circular import error.
// Deferring one side of the cycle avoids both.
func (r *Registry) Load(path string) (*Module, error) {
	return r.load(path, nil)
}

// Import loads a module and returns one of its exports.
func (r *Registry) Import(path, name string) (Object, error) {
	mod, err := r.Load(path)
	if err != nil {
		r.observeImport(path, name, err)
		return nil, err
	}
	v, err := mod.Attr(name)
	r.observeImport(path, name, err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Tracker creates a scope tracker that installs proxies into the given
// scope when closed. Each call creates an independent tracker.
func (r *Registry) Tracker(scope *Scope) *Tracker {
	return &Tracker{reg: r, scope: scope}
}

// load resolves a path against the loading chain, then loads under the
// entry lock. The chain check runs before the lock is taken, so a
// loader that eagerly re-imports its own chain fails instead of
// self-deadlocking.
func (r *Registry) load(path string, chain []string) (*Module, error) {
	r.mu.RLock()
	e := r.entries[path]
	r.mu.RUnlock()
	if e == nil {
		return nil, fmt.Errorf("runtime: module %q: %w", path, ErrModuleNotFound)
	}

	for _, p := range chain {
		if p == path {
			cycle := append(append([]string{}, chain...), path)
			return nil, fmt.Errorf("runtime: %s: %w", chainString(cycle), ErrCircularImport)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.module != nil {
		return e.module, nil
	}

	b := &Builder{
		reg:     r,
		path:    path,
		chain:   append(append([]string{}, chain...), path),
		exports: make(map[string]Object),
	}

	start := time.Now()
	if err := e.load(b); err != nil {
		return nil, fmt.Errorf("runtime: load %s: %w", path, err)
	}
	e.module = b.build()

	if r.observer != nil {
		r.observer.ModuleLoaded(path, time.Since(start))
	}
	return e.module, nil
}

// observeImport reports an import outcome to the observer, if any.
func (r *Registry) observeImport(module, name string, err error) {
	if r.observer != nil {
		r.observer.ImportResolved(module, name, err)
	}
}
