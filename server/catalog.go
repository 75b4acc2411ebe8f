package server

import (
	"sort"
	"strings"
	"sync"

	"github.com/lazykit/lazykit/manifest"
	"github.com/lazykit/lazykit/runtime"
)

// ---------------------------------------------------------------------------
// Module catalog
// ---------------------------------------------------------------------------

// ModuleInfo describes one importable module for editor features.
type ModuleInfo struct {
	Path    string
	Doc     string
	Exports []string
}

// HasExport reports whether the module is known to export name.
func (m ModuleInfo) HasExport(name string) bool {
	for _, e := range m.Exports {
		if e == name {
			return true
		}
	}
	return false
}

// Catalog is the set of modules the language server can answer questions
// about. Safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]ModuleInfo
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]ModuleInfo)}
}

// Add records a module, replacing any previous entry for its path.
func (c *Catalog) Add(info ModuleInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modules[info.Path] = info
}

// Lookup returns the module recorded under path.
func (c *Catalog) Lookup(path string) (ModuleInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.modules[path]
	return info, ok
}

// Has reports whether path is a known module.
func (c *Catalog) Has(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.modules[path]
	return ok
}

// Covers reports whether path is a known module or falls under a known
// namespace: "app.models.user" is covered by an entry for "app.models".
func (c *Catalog) Covers(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.modules[path]; ok {
		return true
	}
	for known := range c.modules {
		if strings.HasPrefix(path, known+".") {
			return true
		}
	}
	return false
}

// Paths returns all known module paths, sorted.
func (c *Catalog) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	paths := make([]string, 0, len(c.modules))
	for path := range c.modules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of known modules.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modules)
}

// AddManifest records every module namespace a manifest declares.
func (c *Catalog) AddManifest(m *manifest.Manifest) {
	for path, decl := range m.Modules {
		c.Add(ModuleInfo{Path: path, Doc: decl.Doc})
	}
}

// AddRegistry records every module registered with a runtime registry.
// Modules that have already loaded contribute their docstrings and
// export lists; unloaded ones stay path-only, since enumerating their
// exports would force the loads the registry exists to defer.
func (c *Catalog) AddRegistry(r *runtime.Registry) {
	for _, path := range r.Paths() {
		info := ModuleInfo{Path: path}
		if r.Loaded(path) {
			if mod, err := r.Load(path); err == nil {
				info.Doc = mod.Doc
				info.Exports = mod.Names()
			}
		}
		c.Add(info)
	}
}
