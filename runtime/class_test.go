package runtime

import (
	"errors"
	"fmt"
	"testing"
)

// sampleCompanyClass builds a class with a constant attribute, a class
// variable, a static function, a constructor and an instance method.
func sampleCompanyClass() *Class {
	return NewClass("Company").
		SetDoc("A company with a name.").
		AddAttr("Kind", Str("llc")).
		AddVar("Registry", Nil).
		AddStatic("Describe", "Describe the class.", func(args []Object) (Object, error) {
			return Str("companies have names"), nil
		}).
		SetInit(func(self *Instance, args []Object) error {
			if len(args) != 1 {
				return fmt.Errorf("Company wants 1 argument, got %d", len(args))
			}
			self.SetField("name", args[0])
			return nil
		}).
		AddMethod("GetName", func(self *Instance, args []Object) (Object, error) {
			v, _ := self.Field("name")
			return v, nil
		})
}

func TestClassAttr(t *testing.T) {
	c := sampleCompanyClass()

	v, err := c.Attr("Kind")
	if err != nil {
		t.Fatalf("Attr(Kind): %v", err)
	}
	if v != Str("llc") {
		t.Errorf("Kind = %v, want llc", v)
	}

	if _, err := c.Attr("Missing"); !errors.Is(err, ErrNoSuchAttr) {
		t.Errorf("Attr(Missing): err = %v, want ErrNoSuchAttr", err)
	}
}

func TestClassStatic(t *testing.T) {
	c := sampleCompanyClass()

	fn, err := c.Attr("Describe")
	if err != nil {
		t.Fatalf("Attr(Describe): %v", err)
	}
	out, err := CallOf(fn, nil)
	if err != nil {
		t.Fatalf("Describe(): %v", err)
	}
	if out != Str("companies have names") {
		t.Errorf("Describe() = %v", out)
	}
}

func TestClassVars(t *testing.T) {
	c := sampleCompanyClass()

	v, err := c.Attr("Registry")
	if err != nil {
		t.Fatalf("Attr(Registry): %v", err)
	}
	if v != Nil {
		t.Errorf("Registry default = %v, want nil", v)
	}

	if err := c.SetVar("Registry", Str("main")); err != nil {
		t.Fatalf("SetVar: %v", err)
	}
	v, _ = c.Attr("Registry")
	if v != Str("main") {
		t.Errorf("Registry = %v, want main", v)
	}

	if err := c.SetVar("Undeclared", Int(1)); !errors.Is(err, ErrNoSuchAttr) {
		t.Errorf("SetVar(Undeclared): err = %v, want ErrNoSuchAttr", err)
	}
	if !c.HasVar("Registry") || c.HasVar("Undeclared") {
		t.Errorf("HasVar mismatch")
	}
}

func TestClassConstruct(t *testing.T) {
	c := sampleCompanyClass()

	obj, err := c.Call([]Object{Str("acme")})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	inst, ok := obj.(*Instance)
	if !ok {
		t.Fatalf("Call returned %T, want *Instance", obj)
	}
	if !inst.IsA(c) {
		t.Errorf("instance class mismatch")
	}
	if inst.String() != "<a Company>" {
		t.Errorf("String() = %q", inst.String())
	}
}

func TestClassConstructError(t *testing.T) {
	c := sampleCompanyClass()

	_, err := c.Call(nil)
	if err == nil {
		t.Fatalf("expected constructor error for missing argument")
	}
}

func TestInstanceMethodBinding(t *testing.T) {
	c := sampleCompanyClass()
	obj, err := c.Call([]Object{Str("acme")})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	inst := obj.(*Instance)

	m, err := inst.Attr("GetName")
	if err != nil {
		t.Fatalf("Attr(GetName): %v", err)
	}
	bound, ok := m.(*BoundMethod)
	if !ok {
		t.Fatalf("GetName is %T, want *BoundMethod", m)
	}
	if bound.String() != "<bound Company.GetName>" {
		t.Errorf("String() = %q", bound.String())
	}

	out, err := bound.Call(nil)
	if err != nil {
		t.Fatalf("GetName(): %v", err)
	}
	if out != Str("acme") {
		t.Errorf("GetName() = %v, want acme", out)
	}
}

func TestInstanceAttrPrecedence(t *testing.T) {
	c := sampleCompanyClass()
	obj, _ := c.Call([]Object{Str("acme")})
	inst := obj.(*Instance)

	// Fields win over class attributes of the same name.
	inst.SetField("Kind", Str("field"))
	v, err := inst.Attr("Kind")
	if err != nil {
		t.Fatalf("Attr(Kind): %v", err)
	}
	if v != Str("field") {
		t.Errorf("Kind = %v, want field value", v)
	}

	// Class attributes are reachable through instances.
	v, err = inst.Attr("Registry")
	if err != nil {
		t.Fatalf("Attr(Registry): %v", err)
	}
	if v != Nil {
		t.Errorf("Registry via instance = %v, want nil", v)
	}

	if _, err := inst.Attr("nothing"); !errors.Is(err, ErrNoSuchAttr) {
		t.Errorf("Attr(nothing): err = %v, want ErrNoSuchAttr", err)
	}
}

func TestClassAttrNames(t *testing.T) {
	c := sampleCompanyClass()
	names := c.AttrNames()

	want := []string{"Describe", "Kind", "Registry"}
	if len(names) != len(want) {
		t.Fatalf("AttrNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("AttrNames[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
