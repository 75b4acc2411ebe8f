package runtime

import (
	"math"
	"os"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Builtin std modules
// ---------------------------------------------------------------------------

// InstallBuiltins registers the std module catalog. Like any other
// module, a std module's exports are built only when it is first
// loaded.
func InstallBuiltins(r *Registry) error {
	builtins := []struct {
		path string
		load LoaderFunc
	}{
		{"std.strings", loadStrings},
		{"std.math", loadMath},
		{"std.time", loadTime},
		{"std.os", loadOS},
	}

	for _, m := range builtins {
		if err := r.Register(m.path, m.load); err != nil {
			return err
		}
	}
	return nil
}

func loadStrings(b *Builder) error {
	b.SetDoc("String utilities bridged from the Go standard library.")

	b.ExportGo("Fields", strings.Fields)
	b.ExportGo("Join", strings.Join)
	b.ExportGo("Split", strings.Split)
	b.ExportGo("Upper", strings.ToUpper)
	b.ExportGo("Lower", strings.ToLower)
	b.ExportGo("Contains", strings.Contains)
	b.ExportGo("HasPrefix", strings.HasPrefix)
	b.ExportGo("HasSuffix", strings.HasSuffix)
	b.ExportGo("TrimSpace", strings.TrimSpace)
	b.ExportGo("Repeat", strings.Repeat)
	return nil
}

func loadMath(b *Builder) error {
	b.SetDoc("Floating point math bridged from the Go standard library.")

	b.Export("Pi", Float(math.Pi))
	b.Export("E", Float(math.E))
	b.ExportGo("Sqrt", math.Sqrt)
	b.ExportGo("Pow", math.Pow)
	b.ExportGo("Abs", math.Abs)
	b.ExportGo("Floor", math.Floor)
	b.ExportGo("Ceil", math.Ceil)
	b.ExportGo("Log", math.Log)
	return nil
}

func loadTime(b *Builder) error {
	b.SetDoc("Clock access. Times bridge as Go time.Time values, so all of their methods are reachable as attributes.")

	b.ExportGo("Now", time.Now)
	b.ExportGo("Unix", time.Unix)
	b.ExportGo("Since", time.Since)
	b.Export("RFC3339", Str(time.RFC3339))
	return nil
}

func loadOS(b *Builder) error {
	b.SetDoc("Process environment access.")

	b.ExportGo("Getwd", os.Getwd)
	b.ExportGo("Hostname", os.Hostname)
	b.ExportGo("Getenv", os.Getenv)
	b.ExportGo("Environ", os.Environ)
	return nil
}
