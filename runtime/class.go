package runtime

import (
	"fmt"
	"sort"
	"sync"
)

// ---------------------------------------------------------------------------
// Class: named value types exported by modules
// ---------------------------------------------------------------------------

// MethodFunc is the Go signature of an instance method.
type MethodFunc func(self *Instance, args []Object) (Object, error)

// InitFunc initializes a freshly constructed instance.
type InitFunc func(self *Instance, args []Object) error

// Class is a named value type exported by a module. Class attributes
// (constants and static functions) live on the class itself; class
// variables are mutable and shared by all instances; instance fields
// live on each Instance.
type Class struct {
	Name string
	Doc  string

	attrs   map[string]Object
	methods map[string]MethodFunc
	init    InitFunc

	varMu sync.RWMutex
	vars  map[string]Object
}

// NewClass creates an empty class with the given name.
func NewClass(name string) *Class {
	return &Class{
		Name:    name,
		attrs:   make(map[string]Object),
		methods: make(map[string]MethodFunc),
		vars:    make(map[string]Object),
	}
}

// SetDoc sets the class docstring.
func (c *Class) SetDoc(doc string) *Class {
	c.Doc = doc
	return c
}

// AddAttr adds a class attribute (a constant or any fixed object).
func (c *Class) AddAttr(name string, v Object) *Class {
	c.attrs[name] = v
	return c
}

// AddStatic adds a static function callable on the class itself.
func (c *Class) AddStatic(name, doc string, fn BuiltinFunc) *Class {
	c.attrs[name] = &Builtin{Name: c.Name + "." + name, Doc: doc, Fn: fn}
	return c
}

// AddVar declares a class variable with a default value.
func (c *Class) AddVar(name string, def Object) *Class {
	c.varMu.Lock()
	c.vars[name] = def
	c.varMu.Unlock()
	return c
}

// AddMethod adds an instance method.
func (c *Class) AddMethod(name string, fn MethodFunc) *Class {
	c.methods[name] = fn
	return c
}

// SetInit sets the constructor body run by Call on the new instance.
func (c *Class) SetInit(fn InitFunc) *Class {
	c.init = fn
	return c
}

func (c *Class) Kind() Kind     { return KindClass }
func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }

// HasVar returns true if the class declares the named class variable.
func (c *Class) HasVar(name string) bool {
	c.varMu.RLock()
	defer c.varMu.RUnlock()
	_, ok := c.vars[name]
	return ok
}

// SetVar assigns a declared class variable.
func (c *Class) SetVar(name string, v Object) error {
	c.varMu.Lock()
	defer c.varMu.Unlock()
	if _, ok := c.vars[name]; !ok {
		return fmt.Errorf("runtime: class %s has no class variable %q: %w", c.Name, name, ErrNoSuchAttr)
	}
	c.vars[name] = v
	return nil
}

// Attr returns a class attribute, static function or class variable.
// Instance methods are not reachable through the class; they bind on
// instances.
func (c *Class) Attr(name string) (Object, error) {
	if v, ok := c.attrs[name]; ok {
		return v, nil
	}
	c.varMu.RLock()
	v, ok := c.vars[name]
	c.varMu.RUnlock()
	if ok {
		return v, nil
	}
	return nil, fmt.Errorf("runtime: class %s has no attribute %q: %w", c.Name, name, ErrNoSuchAttr)
}

// AttrNames returns the names reachable through Attr, sorted.
func (c *Class) AttrNames() []string {
	names := make([]string, 0, len(c.attrs)+len(c.vars))
	for name := range c.attrs {
		names = append(names, name)
	}
	c.varMu.RLock()
	for name := range c.vars {
		names = append(names, name)
	}
	c.varMu.RUnlock()
	sort.Strings(names)
	return names
}

// Call constructs a new instance, running the init body if one is set.
func (c *Class) Call(args []Object) (Object, error) {
	inst := &Instance{
		class:  c,
		fields: make(map[string]Object),
	}
	if c.init != nil {
		if err := c.init(inst, args); err != nil {
			return nil, fmt.Errorf("runtime: new %s: %w", c.Name, err)
		}
	}
	return inst, nil
}

// ---------------------------------------------------------------------------
// Instance
// ---------------------------------------------------------------------------

// Instance is one object of a Class.
type Instance struct {
	class *Class

	mu     sync.RWMutex
	fields map[string]Object
}

func (i *Instance) Kind() Kind     { return KindInstance }
func (i *Instance) String() string { return fmt.Sprintf("<a %s>", i.class.Name) }

// Class returns the instance's class.
func (i *Instance) Class() *Class { return i.class }

// IsA returns true if the instance was constructed from the given class.
func (i *Instance) IsA(c *Class) bool { return i.class == c }

// SetField assigns an instance field.
func (i *Instance) SetField(name string, v Object) {
	i.mu.Lock()
	i.fields[name] = v
	i.mu.Unlock()
}

// Field returns an instance field.
func (i *Instance) Field(name string) (Object, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	return v, ok
}

// Attr resolves an attribute on the instance: fields first, then
// methods (bound to the instance), then class attributes and variables.
func (i *Instance) Attr(name string) (Object, error) {
	if v, ok := i.Field(name); ok {
		return v, nil
	}
	if fn, ok := i.class.methods[name]; ok {
		return &BoundMethod{Recv: i, Name: name, fn: fn}, nil
	}
	if v, err := i.class.Attr(name); err == nil {
		return v, nil
	}
	return nil, fmt.Errorf("runtime: %s has no attribute %q: %w", i, name, ErrNoSuchAttr)
}

// ---------------------------------------------------------------------------
// BoundMethod
// ---------------------------------------------------------------------------

// BoundMethod is an instance method paired with its receiver.
type BoundMethod struct {
	Recv *Instance
	Name string
	fn   MethodFunc
}

func (m *BoundMethod) Kind() Kind { return KindBoundMethod }

func (m *BoundMethod) String() string {
	return fmt.Sprintf("<bound %s.%s>", m.Recv.class.Name, m.Name)
}

// Call invokes the method on its receiver.
func (m *BoundMethod) Call(args []Object) (Object, error) {
	return m.fn(m.Recv, args)
}
