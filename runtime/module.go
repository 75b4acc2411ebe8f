package runtime

import (
	"fmt"

	"github.com/lazykit/lazykit/syntax"
)

// ---------------------------------------------------------------------------
// Module
// ---------------------------------------------------------------------------

// Module is a loaded module: a named, immutable set of exported objects.
// The registry caches modules, so repeated loads of one path return the
// same *Module.
type Module struct {
	Path string
	Doc  string

	exports map[string]Object
	names   []string // export order
}

func (m *Module) Kind() Kind     { return KindModule }
func (m *Module) String() string { return fmt.Sprintf("<module %s>", m.Path) }

// Export returns an exported object by name.
func (m *Module) Export(name string) (Object, bool) {
	v, ok := m.exports[name]
	return v, ok
}

// Attr returns an exported object, as an attribute access.
func (m *Module) Attr(name string) (Object, error) {
	if v, ok := m.exports[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("runtime: module %s does not export %q: %w", m.Path, name, ErrNameNotFound)
}

// Names returns the exported names in export order.
func (m *Module) Names() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// ---------------------------------------------------------------------------
// Builder: loader-side module assembly
// ---------------------------------------------------------------------------

// Builder assembles a module inside its loader function. It carries the
// loading chain, so eager imports made during the load detect cycles;
// lazy imports start a fresh chain, which is what lets two modules
// defer-import each other.
type Builder struct {
	reg   *Registry
	path  string
	chain []string

	doc     string
	exports map[string]Object
	names   []string
}

// Path returns the module path being built.
func (b *Builder) Path() string { return b.path }

// SetDoc sets the module docstring.
func (b *Builder) SetDoc(doc string) {
	b.doc = doc
}

// Export binds an object under an exported name. A repeated name
// overwrites the previous binding, like reassignment at module top
// level.
func (b *Builder) Export(name string, v Object) {
	if _, ok := b.exports[name]; !ok {
		b.names = append(b.names, name)
	}
	b.exports[name] = v
}

// ExportFunc exports a native function.
func (b *Builder) ExportFunc(name, doc string, fn BuiltinFunc) {
	b.Export(name, &Builtin{Name: b.path + "." + name, Doc: doc, Fn: fn})
}

// ExportGo exports a bridged Go value.
func (b *Builder) ExportGo(name string, v interface{}) {
	b.Export(name, FromGo(v))
}

// Import eagerly loads another module and returns one of its exports.
// The loading chain extends through the call, so mutually eager modules
// fail with a circular import error instead of deadlocking.
func (b *Builder) Import(path, name string) (Object, error) {
	mod, err := b.Load(path)
	if err != nil {
		b.reg.observeImport(path, name, err)
		return nil, err
	}
	v, err := mod.Attr(name)
	b.reg.observeImport(path, name, err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Load eagerly loads another module, extending the loading chain.
func (b *Builder) Load(path string) (*Module, error) {
	return b.reg.load(path, b.chain)
}

// Lazy returns a proxy for another module's export without loading
// anything. The proxy resolves on first attribute access or call, on a
// fresh loading chain.
func (b *Builder) Lazy(path, name string) *Proxy {
	return newProxy(b.reg, syntax.ImportRef{
		Module:  path,
		Name:    name,
		Binding: name,
	})
}

// Tracker creates a scope tracker for deferred imports made at module
// top level. Its proxies resolve on fresh loading chains, like Lazy, so
// two modules may defer-import each other.
func (b *Builder) Tracker(scope *Scope) *Tracker {
	return b.reg.Tracker(scope)
}

// build freezes the builder into a module.
func (b *Builder) build() *Module {
	return &Module{
		Path:    b.path,
		Doc:     b.doc,
		exports: b.exports,
		names:   b.names,
	}
}
