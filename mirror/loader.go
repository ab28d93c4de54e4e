package mirror

import (
	"fmt"
	"reflect"
	"sync"
)

// Loader is a class namespace: a boundary in which qualified names resolve
// to classes. Two loaders may bind the same name to unrelated Go types.
// Lookups delegate to the parent loader first.
type Loader struct {
	name   string
	parent *Loader

	mu      sync.RWMutex
	byName  map[string]*Class
	byType  map[reflect.Type]*Class
	defined map[reflect.Type]bool
}

// System is the root loader. It knows the predeclared types by name.
var System = newSystemLoader()

// ObjectClass is the class of values wrapped from nil.
var ObjectClass = System.ClassOf(anyType)

var (
	anyType   = reflect.TypeFor[any]()
	errorType = reflect.TypeFor[error]()
)

// NewLoader creates a loader delegating to parent, or to System when
// parent is nil.
func NewLoader(name string, parent *Loader) *Loader {
	if parent == nil {
		parent = System
	}
	return &Loader{
		name:   name,
		parent: parent,
		byName:  make(map[string]*Class),
		byType:  make(map[reflect.Type]*Class),
		defined: make(map[reflect.Type]bool),
	}
}

func newSystemLoader() *Loader {
	l := &Loader{
		name:    "system",
		byName:  make(map[string]*Class),
		byType:  make(map[reflect.Type]*Class),
		defined: make(map[reflect.Type]bool),
	}
	for name, t := range map[string]reflect.Type{
		"any":        anyType,
		"error":      errorType,
		"bool":       reflect.TypeFor[bool](),
		"string":     reflect.TypeFor[string](),
		"int":        reflect.TypeFor[int](),
		"int8":       reflect.TypeFor[int8](),
		"int16":      reflect.TypeFor[int16](),
		"int32":      reflect.TypeFor[int32](),
		"int64":      reflect.TypeFor[int64](),
		"uint":       reflect.TypeFor[uint](),
		"uint8":      reflect.TypeFor[uint8](),
		"uint16":     reflect.TypeFor[uint16](),
		"uint32":     reflect.TypeFor[uint32](),
		"uint64":     reflect.TypeFor[uint64](),
		"uintptr":    reflect.TypeFor[uintptr](),
		"float32":    reflect.TypeFor[float32](),
		"float64":    reflect.TypeFor[float64](),
		"complex64":  reflect.TypeFor[complex64](),
		"complex128": reflect.TypeFor[complex128](),
		"byte":       reflect.TypeFor[byte](),
		"rune":       reflect.TypeFor[rune](),
	} {
		l.Define(name, t)
	}
	return l
}

// Name returns the loader's name.
func (l *Loader) Name() string { return l.name }

// Parent returns the delegation parent, nil for System.
func (l *Loader) Parent() *Loader { return l.parent }

func (l *Loader) String() string { return "loader " + l.name }

// Define binds name to t in this loader and returns a builder for
// registering the members Go reflection cannot see. An empty name uses
// TypeName(t). Instances of t wrapped through this loader, or a loader
// delegating to it, resolve to this class even when a parent loader
// already holds a class for t.
func (l *Loader) Define(name string, t reflect.Type) *ClassBuilder {
	if name == "" {
		name = TypeName(t)
	}
	l.mu.Lock()
	c, ok := l.byType[t]
	if !ok {
		c = newClass(l, t)
		l.byType[t] = c
	}
	l.defined[t] = true
	l.byName[name] = c
	l.mu.Unlock()
	return &ClassBuilder{class: c}
}

// Load resolves a qualified name, asking the parent loader first.
func (l *Loader) Load(name string) (*Class, error) {
	if c := l.find(name); c != nil {
		return c, nil
	}
	return nil, fail(ErrTypeLoading, "load", name, nil, nil, fmt.Errorf("no class %q in %s", name, l))
}

func (l *Loader) find(name string) *Class {
	if l.parent != nil {
		if c := l.parent.find(name); c != nil {
			return c
		}
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byName[name]
}

// findType asks the parent first, except for types defined in l itself.
func (l *Loader) findType(t reflect.Type) *Class {
	l.mu.RLock()
	c, own := l.byType[t]
	defined := l.defined[t]
	l.mu.RUnlock()
	if defined {
		return c
	}
	if l.parent != nil {
		if pc := l.parent.findType(t); pc != nil {
			return pc
		}
	}
	if own {
		return c
	}
	return nil
}

// ClassOf returns the class for t, creating it in this loader when no
// loader in the delegation chain knows t yet.
func (l *Loader) ClassOf(t reflect.Type) *Class {
	if c := l.findType(t); c != nil {
		return c
	}
	c := newClass(l, t)

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.byType[t]; ok {
		return existing
	}
	l.byType[t] = c
	if _, taken := l.byName[c.name]; !taken {
		l.byName[c.name] = c
	}
	return c
}

// On wraps an instance, resolving its class through this loader. A
// non-nil pointer to a struct is wrapped as the struct it points to, so
// field writes reach the caller's value; other values are copied.
func (l *Loader) On(obj any) Value {
	if obj == nil {
		return Value{class: l.ClassOf(anyType)}
	}
	return l.wrap(addressable(reflect.ValueOf(obj)))
}

func (l *Loader) wrap(rv reflect.Value) Value {
	t := rv.Type()
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct && !rv.IsNil() {
		return Value{class: l.ClassOf(t.Elem()), val: rv.Elem(), ref: true}
	}
	return Value{class: l.ClassOf(t), val: rv}
}

// TypeName returns the qualified name used for t when no explicit name was
// defined: "pkg/path.Name", "*pkg/path.Name" or the type literal.
func TypeName(t reflect.Type) string {
	if t.Name() != "" {
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.Name()
	}
	if t.Kind() == reflect.Pointer {
		return "*" + TypeName(t.Elem())
	}
	return t.String()
}

// addressable copies a value into fresh storage so that its fields can be
// written and its pointer methods called.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	p := reflect.New(v.Type()).Elem()
	p.Set(v)
	return p
}
