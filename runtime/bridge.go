package runtime

import (
	"fmt"
	"reflect"
)

// ---------------------------------------------------------------------------
// Bridge: Go values as runtime objects
// ---------------------------------------------------------------------------

// errorType is the reflect.Type of the error interface.
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FromGo converts a Go value to a runtime Object. Basic kinds map to
// native values; funcs, structs, pointers and maps are wrapped as
// GoValue and keep their behavior through the bridge. Unsigned integers
// above math.MaxInt64 wrap around, since Int is a signed 64-bit value.
func FromGo(v interface{}) Object {
	if v == nil {
		return Nil
	}
	if obj, ok := v.(Object); ok {
		return obj
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint()))

	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())

	case reflect.String:
		return Str(rv.String())

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			// []byte reads as a string
			return Str(rv.Bytes())
		}
		items := make([]Object, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = FromGo(rv.Index(i).Interface())
		}
		return NewList(items...)

	default:
		// funcs, structs, pointers, maps, channels
		return &GoValue{v: rv}
	}
}

// ToGo unwraps a runtime Object to a plain Go value. Runtime-only
// objects (classes, instances, modules, proxies) pass through as
// themselves.
func ToGo(obj Object) interface{} {
	switch o := obj.(type) {
	case NilType:
		return nil
	case Bool:
		return bool(o)
	case Int:
		return int64(o)
	case Float:
		return float64(o)
	case Str:
		return string(o)
	case *List:
		items := make([]interface{}, len(o.Items))
		for i, item := range o.Items {
			items[i] = ToGo(item)
		}
		return items
	case *GoValue:
		return o.v.Interface()
	default:
		return obj
	}
}

// ---------------------------------------------------------------------------
// GoValue
// ---------------------------------------------------------------------------

// GoValue wraps a native Go value. Attributes reach exported struct
// fields, methods and string-keyed map entries; Call invokes a wrapped
// func through reflection.
type GoValue struct {
	v reflect.Value
}

func (g *GoValue) Kind() Kind     { return KindGoValue }
func (g *GoValue) String() string { return fmt.Sprintf("<go %s>", g.v.Type()) }

// Unwrap returns the underlying Go value.
func (g *GoValue) Unwrap() interface{} { return g.v.Interface() }

// Attr resolves methods first, then exported struct fields, then
// string-keyed map entries. Pointer-receiver methods need the value to
// have been bridged as a pointer.
func (g *GoValue) Attr(name string) (Object, error) {
	if m := g.v.MethodByName(name); m.IsValid() {
		return &GoValue{v: m}, nil
	}

	v := g.v
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("runtime: attribute %q of nil %s: %w", name, v.Type(), ErrNoSuchAttr)
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		if f := v.FieldByName(name); f.IsValid() && f.CanInterface() {
			return FromGo(f.Interface()), nil
		}

	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
			if mv.IsValid() {
				return FromGo(mv.Interface()), nil
			}
		}
	}

	return nil, fmt.Errorf("runtime: %s has no attribute %q: %w", g, name, ErrNoSuchAttr)
}

// Call invokes the wrapped func.
func (g *GoValue) Call(args []Object) (Object, error) {
	if g.v.Kind() != reflect.Func {
		return nil, fmt.Errorf("runtime: %s: %w", g, ErrNotCallable)
	}
	return callGoFunc(g.v, args)
}

// ---------------------------------------------------------------------------
// Reflective invocation
// ---------------------------------------------------------------------------

// callGoFunc converts arguments, calls fn, and maps the results back:
// a trailing return of the error interface type becomes the call's
// error, zero results map to Nil, one result converts directly, several
// become a list. A concrete type implementing error is an ordinary
// result.
func callGoFunc(fn reflect.Value, args []Object) (Object, error) {
	t := fn.Type()

	if t.IsVariadic() {
		if len(args) < t.NumIn()-1 {
			return nil, fmt.Errorf("runtime: %s wants at least %d arguments, got %d", t, t.NumIn()-1, len(args))
		}
	} else if len(args) != t.NumIn() {
		return nil, fmt.Errorf("runtime: %s wants %d arguments, got %d", t, t.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		gv, err := toGoValue(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("runtime: argument %d: %w", i+1, err)
		}
		in[i] = gv
	}

	out := fn.Call(in)

	if n := len(out); n > 0 && t.Out(n-1) == errorType {
		if ev := out[n-1]; !ev.IsNil() {
			return nil, ev.Interface().(error)
		}
		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return Nil, nil
	case 1:
		return FromGo(out[0].Interface()), nil
	default:
		items := make([]Object, len(out))
		for i, o := range out {
			items[i] = FromGo(o.Interface())
		}
		return NewList(items...), nil
	}
}

// toGoValue converts a runtime Object to a reflect.Value of type t.
// A proxy argument resolves first, so deferred imports flow into Go
// calls like any other first use.
func toGoValue(obj Object, t reflect.Type) (reflect.Value, error) {
	if p, ok := obj.(*Proxy); ok {
		v, err := p.Resolve()
		if err != nil {
			return reflect.Value{}, err
		}
		obj = v
	}

	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		if _, ok := obj.(NilType); ok {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(ToGo(obj)), nil
	}

	switch o := obj.(type) {
	case NilType:
		switch t.Kind() {
		case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}

	case Bool:
		if t.Kind() == reflect.Bool {
			return reflect.ValueOf(bool(o)).Convert(t), nil
		}

	case Int:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return reflect.ValueOf(int64(o)).Convert(t), nil
		}

	case Float:
		switch t.Kind() {
		case reflect.Float32, reflect.Float64:
			return reflect.ValueOf(float64(o)).Convert(t), nil
		}

	case Str:
		if t.Kind() == reflect.String {
			return reflect.ValueOf(string(o)).Convert(t), nil
		}
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte(o)), nil
		}

	case *List:
		if t.Kind() == reflect.Slice {
			sv := reflect.MakeSlice(t, len(o.Items), len(o.Items))
			for i, item := range o.Items {
				ev, err := toGoValue(item, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				sv.Index(i).Set(ev)
			}
			return sv, nil
		}

	case *GoValue:
		if o.v.Type().AssignableTo(t) {
			return o.v, nil
		}
		if o.v.Type().ConvertibleTo(t) {
			return o.v.Convert(t), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", obj.Kind(), t)
}
