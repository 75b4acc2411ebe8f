package runtime

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lazykit/lazykit/syntax"
)

// ---------------------------------------------------------------------------
// Tracker: scoped deferred-import block
// ---------------------------------------------------------------------------

// Tracker brackets a block of deferred import declarations. Declaration
// text added with Block is never executed; Close parses the accumulated
// block in a single pass, builds one proxy per recovered import
// reference and installs the proxies into the tracker's scope, in
// source order.
//
// A tracker is single-shot: Close works once, and Block after Close is
// a misuse. Each (module, name) pair in the block yields one shared
// proxy; a name imported from two modules is bound to the later
// declaration.
type Tracker struct {
	reg   *Registry
	scope *Scope

	mu     sync.Mutex
	src    strings.Builder
	closed bool
}

// Block appends declaration text to the tracked block. No parsing and
// no loading happens here.
func (t *Tracker) Block(src string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("runtime: block added to closed tracker: %w", ErrTrackerMisuse)
	}
	t.src.WriteString(src)
	t.src.WriteByte('\n')
	return nil
}

// Close exits the block: parse the declarations, validate their forms
// and install one proxy per import reference into the scope. On any
// error nothing is installed.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("runtime: tracker closed twice: %w", ErrTrackerMisuse)
	}
	t.closed = true

	if t.scope == nil {
		return fmt.Errorf("runtime: tracker has no scope: %w", ErrTrackerMisuse)
	}

	p := syntax.NewParser(t.src.String())
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		if first.Kind == syntax.UnsupportedImport {
			return fmt.Errorf("runtime: %s: %w", first.Error(), ErrUnsupportedForm)
		}
		return fmt.Errorf("runtime: %s: %w", first.Error(), ErrTrackerMisuse)
	}

	for _, ref := range file.Refs() {
		t.scope.Set(ref.Binding, newProxy(t.reg, ref))
	}
	return nil
}
