package server

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lazykit/lazykit/manifest"
	"github.com/lazykit/lazykit/runtime"
)

func TestCatalogAddLookup(t *testing.T) {
	c := NewCatalog()
	c.Add(ModuleInfo{Path: "app.models", Doc: "Models."})

	info, ok := c.Lookup("app.models")
	if !ok || info.Doc != "Models." {
		t.Fatalf("Lookup = %+v, %v", info, ok)
	}
	if !c.Has("app.models") || c.Has("app.other") {
		t.Error("Has mismatch")
	}

	// Re-adding replaces.
	c.Add(ModuleInfo{Path: "app.models", Doc: "Replaced."})
	info, _ = c.Lookup("app.models")
	if info.Doc != "Replaced." {
		t.Errorf("Doc = %q after replace", info.Doc)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCatalogCovers(t *testing.T) {
	c := NewCatalog()
	c.Add(ModuleInfo{Path: "app.models"})

	tests := []struct {
		path string
		want bool
	}{
		{"app.models", true},
		{"app.models.user", true},
		{"app", false},
		{"app.modelsx", false},
		{"other", false},
	}
	for _, tt := range tests {
		if got := c.Covers(tt.path); got != tt.want {
			t.Errorf("Covers(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCatalogPathsSorted(t *testing.T) {
	c := NewCatalog()
	c.Add(ModuleInfo{Path: "std.strings"})
	c.Add(ModuleInfo{Path: "app.models"})
	c.Add(ModuleInfo{Path: "app.services"})

	want := []string{"app.models", "app.services", "std.strings"}
	if got := c.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}

func TestModuleInfoHasExport(t *testing.T) {
	info := ModuleInfo{Exports: []string{"User", "Company"}}
	if !info.HasExport("User") {
		t.Error("HasExport(User) = false")
	}
	if info.HasExport("Ghost") {
		t.Error("HasExport(Ghost) = true")
	}
}

func TestCatalogAddManifest(t *testing.T) {
	dir := t.TempDir()
	data := `[project]
name = "demo"

[modules]
"app.models" = { doc = "Domain models." }
"app.services" = {}
`
	if err := os.WriteFile(filepath.Join(dir, manifest.Filename), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	c := NewCatalog()
	c.AddManifest(m)

	if !c.Has("app.models") || !c.Has("app.services") {
		t.Fatalf("paths = %v", c.Paths())
	}
	info, _ := c.Lookup("app.models")
	if info.Doc != "Domain models." {
		t.Errorf("Doc = %q", info.Doc)
	}
}

func TestCatalogAddRegistry(t *testing.T) {
	r := runtime.NewRegistry()
	err := r.Register("app.models", func(b *runtime.Builder) error {
		b.SetDoc("Domain models.")
		b.Export("User", runtime.Str("user"))
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Register("app.heavy", func(b *runtime.Builder) error {
		b.Export("Engine", runtime.Str("engine"))
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	// Load one module; the other stays deferred.
	if _, err := r.Load("app.models"); err != nil {
		t.Fatal(err)
	}

	c := NewCatalog()
	c.AddRegistry(r)

	loaded, _ := c.Lookup("app.models")
	if loaded.Doc != "Domain models." || !loaded.HasExport("User") {
		t.Errorf("loaded info = %+v", loaded)
	}

	deferred, ok := c.Lookup("app.heavy")
	if !ok {
		t.Fatal("deferred module missing from catalog")
	}
	if len(deferred.Exports) != 0 {
		t.Errorf("deferred exports = %v, want none recorded", deferred.Exports)
	}
	if r.Loaded("app.heavy") {
		t.Error("cataloging must not load deferred modules")
	}
}
