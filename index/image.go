// Package index implements the import index image. A project's .li
// import manifests are snapshotted into one deterministic CBOR image
// carrying per-file sha256 digests, so tooling can detect drift between
// the sources on disk and a previously built index.
package index

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/lazykit/lazykit/syntax"
)

// ImageMagic is the magic number identifying a Lazykit index image.
var ImageMagic = [4]byte{'L', 'Z', 'K', 'I'}

// Image format version
// v1: initial format
const ImageVersion uint32 = 1

// Image is a snapshot of a project's deferred import graph.
type Image struct {
	Project string        `cbor:"1,keyasint"`
	Version string        `cbor:"2,keyasint,omitempty"`
	Files   []FileEntry   `cbor:"3,keyasint,omitempty"`
	Modules []ModuleEntry `cbor:"4,keyasint,omitempty"`
}

// FileEntry records one .li source and the import references it declares.
type FileEntry struct {
	Path   string     `cbor:"1,keyasint"` // relative to the project root
	Digest [32]byte   `cbor:"2,keyasint"` // sha256 of the source bytes
	Refs   []RefEntry `cbor:"3,keyasint,omitempty"`
}

// RefEntry is one import reference, in source order.
type RefEntry struct {
	Module string `cbor:"1,keyasint"`
	Name   string `cbor:"2,keyasint"`
	Line   int    `cbor:"3,keyasint"`
}

// ModuleEntry aggregates reference counts per module path.
type ModuleEntry struct {
	Path string `cbor:"1,keyasint"`
	Refs int    `cbor:"2,keyasint"`
}

// HashSource computes the sha256 digest of source bytes.
func HashSource(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Build parses the given .li files and assembles an image. File paths
// are stored relative to root; entries are sorted by path and module
// aggregates by module path, so the same sources always produce the
// same image bytes.
func Build(project, version, root string, files []string) (*Image, error) {
	img := &Image{
		Project: project,
		Version: version,
	}

	moduleRefs := make(map[string]int)

	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, fmt.Errorf("index: %s is not under %s: %w", file, root, err)
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("index: read %s: %w", file, err)
		}

		parsed, err := syntax.Parse(string(data))
		if err != nil {
			return nil, fmt.Errorf("index: parse %s: %w", rel, err)
		}

		entry := FileEntry{
			Path:   rel,
			Digest: HashSource(data),
		}
		for _, ref := range parsed.Refs() {
			entry.Refs = append(entry.Refs, RefEntry{
				Module: ref.Module,
				Name:   ref.Name,
				Line:   ref.Pos.Line,
			})
			moduleRefs[ref.Module]++
		}
		img.Files = append(img.Files, entry)
	}

	sort.Slice(img.Files, func(i, j int) bool {
		return img.Files[i].Path < img.Files[j].Path
	})

	for path, n := range moduleRefs {
		img.Modules = append(img.Modules, ModuleEntry{Path: path, Refs: n})
	}
	sort.Slice(img.Modules, func(i, j int) bool {
		return img.Modules[i].Path < img.Modules[j].Path
	})

	return img, nil
}

// FindFile returns the entry for the given relative path, or nil.
func (img *Image) FindFile(path string) *FileEntry {
	for i := range img.Files {
		if img.Files[i].Path == path {
			return &img.Files[i]
		}
	}
	return nil
}

// TotalRefs returns the number of import references across all files.
func (img *Image) TotalRefs() int {
	n := 0
	for _, f := range img.Files {
		n += len(f.Refs)
	}
	return n
}

// ---------------------------------------------------------------------------
// Verification
// ---------------------------------------------------------------------------

// Drift describes one divergence between an image and the sources on disk.
type Drift struct {
	Path   string
	Reason string // "changed", "missing", or "not indexed"
}

func (d Drift) String() string {
	return fmt.Sprintf("%s: %s", d.Path, d.Reason)
}

// Verify compares the image against the given current .li files. It
// reports files whose content digest changed, indexed files that no
// longer exist, and files on disk the image does not cover. Drift
// entries come back sorted by path; an empty slice means the image is
// current.
func (img *Image) Verify(root string, files []string) ([]Drift, error) {
	var drift []Drift

	current := make(map[string]string, len(files))
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil, fmt.Errorf("index: %s is not under %s: %w", file, root, err)
		}
		current[filepath.ToSlash(rel)] = file
	}

	for _, entry := range img.Files {
		file, ok := current[entry.Path]
		if !ok {
			drift = append(drift, Drift{Path: entry.Path, Reason: "missing"})
			continue
		}
		delete(current, entry.Path)

		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				drift = append(drift, Drift{Path: entry.Path, Reason: "missing"})
				continue
			}
			return nil, fmt.Errorf("index: read %s: %w", file, err)
		}
		if HashSource(data) != entry.Digest {
			drift = append(drift, Drift{Path: entry.Path, Reason: "changed"})
		}
	}

	for rel := range current {
		drift = append(drift, Drift{Path: rel, Reason: "not indexed"})
	}

	sort.Slice(drift, func(i, j int) bool {
		return drift[i].Path < drift[j].Path
	})
	return drift, nil
}
