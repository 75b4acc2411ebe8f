package runtime

import (
	"sort"
	"sync"
)

// ---------------------------------------------------------------------------
// Scope: explicit binding table
// ---------------------------------------------------------------------------

// Scope is a mutable binding table with an optional parent. It stands
// in for the caller's enclosing namespace: a tracker is handed the
// scope it should install proxies into, so no frame reflection is
// involved anywhere.
type Scope struct {
	parent *Scope

	mu    sync.RWMutex
	names map[string]Object
}

// NewScope creates a scope. A nil parent makes a root scope.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent: parent,
		names:  make(map[string]Object),
	}
}

// Get resolves a name in this scope or any ancestor.
func (s *Scope) Get(name string) (Object, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		sc.mu.RLock()
		v, ok := sc.names[name]
		sc.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

// GetLocal resolves a name in this scope only.
func (s *Scope) GetLocal(name string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.names[name]
	return v, ok
}

// Set binds a name in this scope, shadowing any ancestor binding.
func (s *Scope) Set(name string, v Object) {
	s.mu.Lock()
	s.names[name] = v
	s.mu.Unlock()
}

// Delete removes a local binding.
func (s *Scope) Delete(name string) {
	s.mu.Lock()
	delete(s.names, name)
	s.mu.Unlock()
}

// Names returns the local binding names, sorted.
func (s *Scope) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of local bindings.
func (s *Scope) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}
