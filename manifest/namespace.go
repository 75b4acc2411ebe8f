package manifest

import (
	"strings"
	"unicode"
)

// reservedNamespaces lists namespace roots owned by the runtime that
// cannot be declared as project modules.
var reservedNamespaces = map[string]bool{
	"std":     true,
	"lazykit": true,
}

// IsReservedNamespace reports whether path begins with a namespace root
// owned by the runtime. Only the root segment is checked: "app.std" is
// fine because the root is "app".
func IsReservedNamespace(path string) bool {
	root := path
	if idx := strings.Index(path, "."); idx >= 0 {
		root = path[:idx]
	}
	return reservedNamespaces[root]
}

// IsValidModulePath reports whether path is a well-formed dotted module
// path: one or more identifier segments separated by single dots.
func IsValidModulePath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if !isIdent(seg) {
			return false
		}
	}
	return true
}

// isIdent reports whether s is a valid module path segment: a letter or
// underscore followed by letters, digits and underscores.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}
