package runtime

import (
	"errors"
	"strings"
)

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

// Sentinel errors, matched with errors.Is. Wrap sites add the failing
// module path, name or chain.
var (
	// ErrResolution marks a deferred import that failed when first used.
	// It never surfaces at block exit; only from proxy access.
	ErrResolution = errors.New("deferred import failed")

	// ErrUnsupportedForm marks a bare or aliased import inside a tracked
	// block. Only from-imports can be deferred.
	ErrUnsupportedForm = errors.New("unsupported import form")

	// ErrTrackerMisuse marks incoherent tracker use: closing twice,
	// adding declarations after close, or declaration text that is not
	// import-shaped.
	ErrTrackerMisuse = errors.New("scope tracker misuse")

	// ErrCircularImport marks an eager import cycle found during a load.
	ErrCircularImport = errors.New("circular import")

	ErrModuleNotFound = errors.New("module not found")
	ErrNameNotFound   = errors.New("name not found")
	ErrRedefined      = errors.New("already registered")

	ErrNotCallable = errors.New("not callable")
	ErrNoSuchAttr  = errors.New("no such attribute")
)

// chainString renders a loading chain as "a -> b -> c".
func chainString(chain []string) string {
	return strings.Join(chain, " -> ")
}
