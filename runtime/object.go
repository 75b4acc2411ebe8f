package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Object model
// ---------------------------------------------------------------------------

// Kind identifies the runtime type of an Object.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindBuiltin
	KindClass
	KindInstance
	KindBoundMethod
	KindModule
	KindProxy
	KindGoValue
)

var kindNames = map[Kind]string{
	KindNil:         "nil",
	KindBool:        "boolean",
	KindInt:         "integer",
	KindFloat:       "float",
	KindString:      "string",
	KindList:        "list",
	KindBuiltin:     "builtin",
	KindClass:       "class",
	KindInstance:    "instance",
	KindBoundMethod: "bound method",
	KindModule:      "module",
	KindProxy:       "lazy proxy",
	KindGoValue:     "go value",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Object is a runtime value.
type Object interface {
	Kind() Kind
	String() string
}

// Callable is an object that can be invoked with arguments.
type Callable interface {
	Object
	Call(args []Object) (Object, error)
}

// Attributable is an object that exposes named attributes.
type Attributable interface {
	Object
	Attr(name string) (Object, error)
}

// ---------------------------------------------------------------------------
// Capability helpers
// ---------------------------------------------------------------------------

// AttrOf returns the named attribute of obj.
func AttrOf(obj Object, name string) (Object, error) {
	if a, ok := obj.(Attributable); ok {
		return a.Attr(name)
	}
	return nil, fmt.Errorf("runtime: %s %s has no attributes: %w", obj.Kind(), obj, ErrNoSuchAttr)
}

// CallOf invokes obj with the given arguments.
func CallOf(obj Object, args []Object) (Object, error) {
	if c, ok := obj.(Callable); ok {
		return c.Call(args)
	}
	return nil, fmt.Errorf("runtime: %s %s: %w", obj.Kind(), obj, ErrNotCallable)
}

// ---------------------------------------------------------------------------
// Primitive values
// ---------------------------------------------------------------------------

// NilType is the type of Nil.
type NilType struct{}

// Nil is the sole nil value.
var Nil = NilType{}

func (NilType) Kind() Kind     { return KindNil }
func (NilType) String() string { return "nil" }

// Bool is a boolean value.
type Bool bool

const (
	True  = Bool(true)
	False = Bool(false)
)

func (b Bool) Kind() Kind { return KindBool }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int is an integer value.
type Int int64

func (i Int) Kind() Kind     { return KindInt }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a floating point value.
type Float float64

func (f Float) Kind() Kind     { return KindFloat }
func (f Float) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }

// Str is a string value.
type Str string

func (s Str) Kind() Kind     { return KindString }
func (s Str) String() string { return string(s) }

// List is an ordered collection of values.
type List struct {
	Items []Object
}

func NewList(items ...Object) *List {
	return &List{Items: items}
}

func (l *List) Kind() Kind { return KindList }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(item.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.Items) }

// ---------------------------------------------------------------------------
// Builtin functions
// ---------------------------------------------------------------------------

// BuiltinFunc is the Go signature of a native function exported by a module.
type BuiltinFunc func(args []Object) (Object, error)

// Builtin is a named native function.
type Builtin struct {
	Name string
	Doc  string
	Fn   BuiltinFunc
}

func (b *Builtin) Kind() Kind     { return KindBuiltin }
func (b *Builtin) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }

// Call invokes the native function.
func (b *Builtin) Call(args []Object) (Object, error) {
	return b.Fn(args)
}
