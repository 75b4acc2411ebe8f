package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, Filename), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "shop"
version = "0.3.1"
description = "Deferred imports for the shop services"

[source]
dirs = ["imports", "extra"]

[modules]
app = { doc = "Application modules", dir = "app" }
"app.models" = { doc = "Domain models" }

[index]
output = "build/shop.lzi"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "shop" {
		t.Errorf("project name = %q, want shop", m.Project.Name)
	}
	if m.Project.Version != "0.3.1" {
		t.Errorf("project version = %q, want 0.3.1", m.Project.Version)
	}
	if m.Project.Description == "" {
		t.Error("project description empty")
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if len(m.Modules) != 2 {
		t.Errorf("modules count = %d, want 2", len(m.Modules))
	}
	if decl, ok := m.Modules["app"]; !ok || decl.Doc != "Application modules" || decl.Dir != "app" {
		t.Errorf("app module decl = %v", m.Modules["app"])
	}
	if m.Index.Output != "build/shop.lzi" {
		t.Errorf("index output = %q, want build/shop.lzi", m.Index.Output)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "minimal"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "imports" {
		t.Errorf("default source dirs = %v, want [imports]", m.Source.Dirs)
	}
	if m.Index.Output != filepath.Join(".lazykit", "index.lzi") {
		t.Errorf("default index output = %q", m.Index.Output)
	}
}

func TestLoadManifestRejectsReservedNamespace(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "bad"

[modules]
std = { doc = "not yours" }
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("reserved namespace accepted")
	}
	if !strings.Contains(err.Error(), "reserved") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadManifestRejectsInvalidNamespace(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "bad"

[modules]
"app..models" = { }
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("invalid namespace accepted")
	}
	if !strings.Contains(err.Error(), "invalid module namespace") {
		t.Errorf("err = %v", err)
	}
}

func TestFindAndLoad(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	writeManifest(t, dir, `[project]
name = "found-project"
`)

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no lazykit.toml exists")
	}
}

func TestSourceDirPaths(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Source: Source{
			Dirs: []string{"imports", "extra"},
		},
	}

	paths := m.SourceDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/imports" {
		t.Errorf("paths[0] = %q, want /app/imports", paths[0])
	}
	if paths[1] != "/app/extra" {
		t.Errorf("paths[1] = %q, want /app/extra", paths[1])
	}
}

func TestIndexPath(t *testing.T) {
	m := &Manifest{Dir: "/app", Index: IndexConfig{Output: "build/out.lzi"}}
	if got := m.IndexPath(); got != "/app/build/out.lzi" {
		t.Errorf("IndexPath = %q", got)
	}

	m.Index.Output = "/elsewhere/out.lzi"
	if got := m.IndexPath(); got != "/elsewhere/out.lzi" {
		t.Errorf("absolute IndexPath = %q", got)
	}
}

func TestNamespaces(t *testing.T) {
	m := &Manifest{Modules: map[string]ModuleDecl{
		"web":    {},
		"app":    {},
		"models": {},
	}}
	got := m.Namespaces()
	want := []string{"app", "models", "web"}
	if len(got) != len(want) {
		t.Fatalf("Namespaces = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Namespaces[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSources(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[project]
name = "srcs"

[source]
dirs = ["imports", "missing"]
`)

	impDir := filepath.Join(dir, "imports", "nested")
	if err := os.MkdirAll(impDir, 0755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{
		filepath.Join(dir, "imports", "b.li"),
		filepath.Join(dir, "imports", "a.li"),
		filepath.Join(impDir, "c.li"),
		filepath.Join(dir, "imports", "ignored.txt"),
	} {
		if err := os.WriteFile(f, []byte("# empty\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	files, err := m.Sources()
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("Sources = %v, want 3 .li files", files)
	}
	// Sorted, .txt excluded, missing dir skipped.
	if filepath.Base(files[0]) != "a.li" || filepath.Base(files[1]) != "b.li" || filepath.Base(files[2]) != "c.li" {
		t.Errorf("Sources order = %v", files)
	}
}
