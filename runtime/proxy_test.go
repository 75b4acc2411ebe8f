package runtime

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/lazykit/lazykit/syntax"
)

// lazyProxyFor closes a one-declaration tracker over a fresh scope and
// returns the installed proxy.
func lazyProxyFor(t *testing.T, r *Registry, module, name string) *Proxy {
	t.Helper()

	scope := NewScope(nil)
	tr := r.Tracker(scope)
	if err := tr.Block("from " + module + " import " + name); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	v, ok := scope.Get(name)
	if !ok {
		t.Fatalf("proxy for %s not installed", name)
	}
	p, ok := v.(*Proxy)
	if !ok {
		t.Fatalf("scope holds %T, want *Proxy", v)
	}
	return p
}

func TestProxyNoEagerLoad(t *testing.T) {
	log := &loadLog{}
	r := NewRegistry()
	r.Register("heavy", func(b *Builder) error {
		log.add("loaded heavy")
		b.Export("Engine", NewClass("Engine"))
		return nil
	})

	p := lazyProxyFor(t, r, "heavy", "Engine")

	if len(log.all()) != 0 {
		t.Fatalf("module loaded before first use: %v", log.all())
	}
	if r.Loaded("heavy") {
		t.Fatalf("Loaded(heavy) before first use")
	}
	if p.Resolved() {
		t.Fatalf("proxy resolved before first use")
	}
}

func TestProxyResolvesOnFirstAttr(t *testing.T) {
	log := &loadLog{}
	r := NewRegistry()
	r.Register("a", func(b *Builder) error {
		log.add("loaded a")
		b.Export("X", NewClass("X").AddAttr("Name", Str("x")))
		return nil
	})

	p := lazyProxyFor(t, r, "a", "X")

	v, err := p.Attr("Name")
	if err != nil {
		t.Fatalf("Attr(Name): %v", err)
	}
	if v != Str("x") {
		t.Errorf("X.Name = %v, want x", v)
	}
	if !p.Resolved() {
		t.Errorf("proxy still unresolved after use")
	}
	if n := log.count("loaded a"); n != 1 {
		t.Errorf("module loaded %d times, want 1", n)
	}
}

func TestProxyResolvesOnFirstCall(t *testing.T) {
	log := &loadLog{}
	r := NewRegistry()
	r.Register("b", func(b *Builder) error {
		log.add("imported!")
		b.Export("Module", NewClass("Module"))
		return nil
	})

	p := lazyProxyFor(t, r, "b", "Module")
	if len(log.all()) != 0 {
		t.Fatalf("loaded at block exit")
	}

	obj, err := p.Call(nil)
	if err != nil {
		t.Fatalf("Module(): %v", err)
	}
	if _, ok := obj.(*Instance); !ok {
		t.Fatalf("Module() = %T, want *Instance", obj)
	}
	if n := log.count("imported!"); n != 1 {
		t.Errorf("top-level ran %d times, want exactly once at the call site", n)
	}
}

func TestProxyResolvesAtMostOnce(t *testing.T) {
	log := &loadLog{}
	r := NewRegistry()
	r.Register("a", func(b *Builder) error {
		log.add("loaded")
		b.Export("X", NewClass("X").AddAttr("Name", Str("x")))
		return nil
	})

	p := lazyProxyFor(t, r, "a", "X")
	for i := 0; i < 10; i++ {
		if _, err := p.Attr("Name"); err != nil {
			t.Fatalf("Attr: %v", err)
		}
		if _, err := p.Call(nil); err != nil {
			t.Fatalf("Call: %v", err)
		}
	}

	if n := log.count("loaded"); n != 1 {
		t.Errorf("underlying import ran %d times, want 1", n)
	}
}

func TestProxyConcurrentFirstUse(t *testing.T) {
	log := &loadLog{}
	r := NewRegistry()
	r.Register("a", func(b *Builder) error {
		log.add("loaded")
		b.Export("X", NewClass("X").AddAttr("Name", Str("x")))
		return nil
	})

	p := lazyProxyFor(t, r, "a", "X")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Attr("Name"); err != nil {
				t.Errorf("Attr: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := log.count("loaded"); n != 1 {
		t.Errorf("underlying import ran %d times, want 1", n)
	}
}

func TestProxyDeferredErrorSurfacing(t *testing.T) {
	r := NewRegistry()
	r.Register("bad", func(b *Builder) error {
		return fmt.Errorf("boom at import time")
	})

	// Block exit succeeds even though resolving would fail.
	scope := NewScope(nil)
	tr := r.Tracker(scope)
	tr.Block("from bad import Thing")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close surfaced a resolution error early: %v", err)
	}

	v, _ := scope.Get("Thing")
	p := v.(*Proxy)

	_, err := p.Attr("anything")
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("first use: err = %v, want ErrResolution", err)
	}
	if !strings.Contains(err.Error(), "boom at import time") {
		t.Errorf("error lost its cause: %v", err)
	}
}

func TestProxyFailurePinned(t *testing.T) {
	attempts := 0
	r := NewRegistry()
	r.Register("bad", func(b *Builder) error {
		attempts++
		return fmt.Errorf("attempt %d failed", attempts)
	})

	p := lazyProxyFor(t, r, "bad", "Thing")

	_, err1 := p.Attr("x")
	_, err2 := p.Call(nil)
	_, err3 := p.Resolve()

	if err1 == nil || err2 == nil || err3 == nil {
		t.Fatalf("uses after failure: %v %v %v", err1, err2, err3)
	}
	if err2.Error() != err1.Error() || err3.Error() != err1.Error() {
		t.Errorf("pinned error changed between uses:\n%v\n%v\n%v", err1, err2, err3)
	}
	if attempts != 1 {
		t.Errorf("proxy retried the import %d times, want 1", attempts)
	}
}

func TestFreshProxyMayRetryAfterFailure(t *testing.T) {
	broken := true
	r := NewRegistry()
	r.Register("flaky", func(b *Builder) error {
		if broken {
			return fmt.Errorf("not yet")
		}
		b.Export("Thing", Str("ok"))
		return nil
	})

	p1 := lazyProxyFor(t, r, "flaky", "Thing")
	if _, err := p1.Resolve(); err == nil {
		t.Fatalf("expected first proxy to fail")
	}

	// The registry does not cache failures, so a new proxy can succeed.
	broken = false
	p2 := lazyProxyFor(t, r, "flaky", "Thing")
	v, err := p2.Resolve()
	if err != nil {
		t.Fatalf("fresh proxy: %v", err)
	}
	if v != Str("ok") {
		t.Errorf("fresh proxy resolved %v", v)
	}

	// The first proxy stays pinned to its failure.
	if _, err := p1.Resolve(); err == nil {
		t.Errorf("pinned proxy recovered")
	}
}

func TestProxyTransparentForwarding(t *testing.T) {
	cls := NewClass("Greeter").
		AddStatic("Hello", "", func(args []Object) (Object, error) {
			return Str("hello " + args[0].String()), nil
		}).
		AddAttr("Version", Int(3))

	r := NewRegistry()
	r.Register("greet", func(b *Builder) error {
		b.Export("Greeter", cls)
		return nil
	})

	p := lazyProxyFor(t, r, "greet", "Greeter")

	// Attribute access through the proxy matches direct access.
	direct, _ := cls.Attr("Version")
	viaProxy, err := p.Attr("Version")
	if err != nil {
		t.Fatalf("Attr(Version): %v", err)
	}
	if viaProxy != direct {
		t.Errorf("proxy attr %v != direct attr %v", viaProxy, direct)
	}

	// Deep chains work: proxy -> static -> call.
	fn, err := p.Attr("Hello")
	if err != nil {
		t.Fatalf("Attr(Hello): %v", err)
	}
	out, err := CallOf(fn, []Object{Str("there")})
	if err != nil {
		t.Fatalf("Hello(): %v", err)
	}
	if out != Str("hello there") {
		t.Errorf("Hello() = %v", out)
	}

	// The resolved object is the class itself, identical to a direct
	// import.
	v, err := p.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != cls {
		t.Errorf("resolved object is not the module export")
	}
}

func TestProxyIdentityDivergence(t *testing.T) {
	r := NewRegistry()
	r.Register("a", constLoader("X", NewClass("X")))

	p := lazyProxyFor(t, r, "a", "X")

	// The proxy is not the target: its kind stays KindProxy even after
	// resolution, and only Attr/Call are transparent.
	if p.Kind() != KindProxy {
		t.Errorf("Kind() = %v, want KindProxy", p.Kind())
	}
	if _, err := p.Resolve(); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Kind() != KindProxy {
		t.Errorf("Kind() after resolve = %v, want KindProxy", p.Kind())
	}
	if p.String() != "<lazy a.X>" {
		t.Errorf("String() = %q", p.String())
	}
}

func TestProxyRef(t *testing.T) {
	r := NewRegistry()
	r.Register("app.models", constLoader("Company", NewClass("Company")))

	p := lazyProxyFor(t, r, "app.models", "Company")

	want := syntax.ImportRef{Module: "app.models", Name: "Company", Binding: "Company"}
	got := p.Ref()
	got.Pos = syntax.Position{}
	if got != want {
		t.Errorf("Ref() = %+v, want %+v", got, want)
	}
}
