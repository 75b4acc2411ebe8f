// Package manifest handles lazykit.toml project configuration.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Filename is the project manifest file name.
const Filename = "lazykit.toml"

// SourceExt is the file extension of import manifest sources.
const SourceExt = ".li"

// Manifest represents a lazykit.toml project configuration.
type Manifest struct {
	Project Project               `toml:"project"`
	Source  Source                `toml:"source"`
	Modules map[string]ModuleDecl `toml:"modules"`
	Index   IndexConfig           `toml:"index"`

	// Dir is the directory containing the lazykit.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
}

// Source configures where .li import manifests live.
type Source struct {
	Dirs []string `toml:"dirs"`
}

// ModuleDecl declares a module namespace owned by the project.
type ModuleDecl struct {
	Doc string `toml:"doc"`
	Dir string `toml:"dir"`
}

// IndexConfig configures index image output.
type IndexConfig struct {
	Output string `toml:"output"`
}

// Load parses a lazykit.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"imports"}
	}
	if m.Index.Output == "" {
		m.Index.Output = filepath.Join(".lazykit", "index.lzi")
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &m, nil
}

// validate checks the declared module namespaces.
func (m *Manifest) validate() error {
	for ns := range m.Modules {
		if !IsValidModulePath(ns) {
			return fmt.Errorf("invalid module namespace %q in [modules]", ns)
		}
		if IsReservedNamespace(ns) {
			return fmt.Errorf("module namespace %q in [modules] is reserved for the builtin catalog", ns)
		}
	}
	return nil
}

// FindAndLoad walks up from startDir to find a lazykit.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, Filename)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// IndexPath returns the absolute path of the index image output.
func (m *Manifest) IndexPath() string {
	if filepath.IsAbs(m.Index.Output) {
		return m.Index.Output
	}
	return filepath.Join(m.Dir, m.Index.Output)
}

// Namespaces returns the declared module namespaces, sorted.
func (m *Manifest) Namespaces() []string {
	out := make([]string, 0, len(m.Modules))
	for ns := range m.Modules {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// Sources walks the configured source directories and returns all .li
// files, sorted. Directories that do not exist yet are skipped.
func (m *Manifest) Sources() ([]string, error) {
	var files []string
	for _, root := range m.SourceDirPaths() {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == SourceExt {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
