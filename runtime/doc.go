// Package runtime implements the Lazykit deferred-import runtime.
//
// This package contains:
//   - Module registry with load-once caching and cycle detection
//   - Scope trackers that turn import declarations into lazy proxies
//   - Proxies that resolve a deferred import on first use and forward
//   - A small object model: classes, instances, modules, builtins
//   - A reflection bridge for exporting native Go values
//
// A host registers modules with a Registry, brackets deferred imports
// in a Tracker block, and hands the tracker the Scope the proxies
// should land in:
//
//	reg := runtime.NewRegistry(runtime.WithBuiltins())
//	scope := runtime.NewScope(nil)
//
//	tr := reg.Tracker(scope)
//	tr.Block("from std.strings import Fields")
//	if err := tr.Close(); err != nil { ... }
//
//	// Nothing has loaded yet. First use resolves, exactly once:
//	fields, _ := scope.Get("Fields")
//	out, err := runtime.CallOf(fields, []runtime.Object{runtime.Str("a b")})
package runtime
