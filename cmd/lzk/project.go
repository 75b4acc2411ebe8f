package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lazykit/lazykit/manifest"
	"github.com/lazykit/lazykit/runtime"
	"github.com/lazykit/lazykit/server"
	"github.com/lazykit/lazykit/store"
)

// loadProject finds the manifest above the --dir directory. A nil
// manifest with a nil error means no project was found.
func loadProject() (*manifest.Manifest, error) {
	return manifest.FindAndLoad(flagDir)
}

func requireProject() (*manifest.Manifest, error) {
	m, err := loadProject()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found in or above %s", manifest.Filename, flagDir)
	}
	return m, nil
}

// buildCatalog assembles the module catalog for checks, completion, and
// hover: the builtin std modules plus the project's declared namespaces.
func buildCatalog(m *manifest.Manifest) *server.Catalog {
	c := server.NewCatalog()

	r := runtime.NewRegistry(runtime.WithBuiltins())
	for _, path := range r.Paths() {
		_, _ = r.Load(path) // builtin loads are cheap; fills docs and exports
	}
	c.AddRegistry(r)

	if m != nil {
		c.AddManifest(m)
	}
	return c
}

// openProjectStore opens (creating if needed) the project usage store.
func openProjectStore(m *manifest.Manifest) (*store.Store, error) {
	path := flagDB
	if path == "" {
		path = filepath.Join(m.Dir, ".lazykit", "usage.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	s, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// displayPath shortens path relative to the project directory.
func displayPath(m *manifest.Manifest, path string) string {
	if m == nil {
		return path
	}
	rel, err := filepath.Rel(m.Dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func docSummary(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}
