package runtime

import (
	"fmt"
	"sync"

	"github.com/lazykit/lazykit/syntax"
)

// ---------------------------------------------------------------------------
// Proxy: deferred import stand-in
// ---------------------------------------------------------------------------

// Proxy stands in for one deferred import. It stays unresolved until
// the first attribute access or call, then performs the real import
// exactly once and forwards everything to the resolved object.
//
// The proxy is transparent for Attr and Call only. Its Kind is
// KindProxy, not the kind of the eventual target, and it never compares
// equal to the target; callers that need identity must Resolve first.
//
// Resolution is guarded by a per-proxy mutex, so concurrent first use
// from several goroutines still imports once. A failed resolution is
// pinned: every later use returns the same error, and the underlying
// import is never retried through this proxy. (The registry itself does
// not cache failures, so a fresh proxy or an eager import may retry.)
type Proxy struct {
	ref syntax.ImportRef
	reg *Registry

	mu       sync.Mutex
	resolved bool
	value    Object
	err      error
}

// newProxy creates an unresolved proxy.
func newProxy(reg *Registry, ref syntax.ImportRef) *Proxy {
	return &Proxy{ref: ref, reg: reg}
}

func (p *Proxy) Kind() Kind { return KindProxy }

func (p *Proxy) String() string {
	return fmt.Sprintf("<lazy %s.%s>", p.ref.Module, p.ref.Name)
}

// Ref returns the import reference the proxy defers.
func (p *Proxy) Ref() syntax.ImportRef { return p.ref }

// Resolved reports whether resolution has been attempted.
func (p *Proxy) Resolved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved
}

// Resolve forces resolution and returns the real object. Safe to call
// any number of times; the import runs at most once.
func (p *Proxy) Resolve() (Object, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.resolved {
		v, err := p.reg.Import(p.ref.Module, p.ref.Name)
		p.resolved = true
		if err != nil {
			p.err = fmt.Errorf("runtime: resolve %s.%s: %w: %w", p.ref.Module, p.ref.Name, ErrResolution, err)
		} else {
			p.value = v
		}
	}
	return p.value, p.err
}

// Attr resolves on first use, then forwards the attribute access.
func (p *Proxy) Attr(name string) (Object, error) {
	v, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	return AttrOf(v, name)
}

// Call resolves on first use, then forwards the invocation.
func (p *Proxy) Call(args []Object) (Object, error) {
	v, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	return CallOf(v, args)
}
