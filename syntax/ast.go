package syntax

// ---------------------------------------------------------------------------
// AST for deferred-import declarations
// ---------------------------------------------------------------------------

// Position represents a position in source text.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based
	Column int // 1-based
}

// ImportRef is one recovered deferred import: the Name exported by the
// dotted Module path, held in the enclosing scope under Binding.
// Binding always equals Name; no rename form exists.
type ImportRef struct {
	Module  string // dotted module path ("app.models")
	Name    string // exported name requested from the module
	Binding string // identifier the scope will hold the proxy under
	Pos     Position
}

// ImportDecl is one "from <module> import <name>, ..." declaration.
type ImportDecl struct {
	Module string   // dotted module path
	Names  []string // imported names, in source order
	Pos    Position // position of the "from" keyword
}

// File is a parsed block of declarations.
type File struct {
	Decls []*ImportDecl
}

// Refs flattens the file into import references in source order.
// A (module, name) pair that appears more than once yields a single
// reference, at its first position.
func (f *File) Refs() []ImportRef {
	var refs []ImportRef
	seen := make(map[[2]string]bool)

	for _, decl := range f.Decls {
		for _, name := range decl.Names {
			key := [2]string{decl.Module, name}
			if seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, ImportRef{
				Module:  decl.Module,
				Name:    name,
				Binding: name,
				Pos:     decl.Pos,
			})
		}
	}
	return refs
}

// Modules returns the distinct module paths referenced by the file,
// in source order.
func (f *File) Modules() []string {
	var paths []string
	seen := make(map[string]bool)
	for _, decl := range f.Decls {
		if seen[decl.Module] {
			continue
		}
		seen[decl.Module] = true
		paths = append(paths, decl.Module)
	}
	return paths
}
