// Package mirror gives name-addressed access to Go values whose types are
// not known at compile time: reading and writing fields, calling methods
// with overload resolution, constructing instances and exposing a value
// through an interface it does not implement.
//
//	v := mirror.On(obj)
//	name, err := v.Field("name")
//	v, err = v.Set("count", 3)
//	r, err := v.Call("Greet", "world")
//
// Every failure is a *Error whose Kind is one of the Err sentinels.
//
// Reflection only sees struct fields and exported methods. Constructors,
// overloads, non-public methods and type-level (static) members are
// registered on a Loader with Define.
package mirror

import (
	"fmt"
	"hash/maphash"
	"reflect"

	"github.com/tliron/commonlog"

	"github.com/osgifx/console-agent/internal/access"
)

var log = commonlog.GetLogger("agent.mirror")

// Value is a wrapped instance or a wrapped type. Values are immutable;
// every operation returns a new Value.
type Value struct {
	class    *Class
	val      reflect.Value
	typeOnly bool
	ref      bool // val is the target of a pointer the caller wrapped
}

// NamedValue is one entry of Fields.
type NamedValue struct {
	Name  string
	Value Value
}

// On wraps an instance using the System loader.
func On(obj any) Value { return System.On(obj) }

// OnType wraps a type for static member access and construction.
func OnType(t reflect.Type) Value { return OnClass(System.ClassOf(t)) }

// OnClass wraps a class for static member access and construction.
func OnClass(c *Class) Value { return Value{class: c, typeOnly: true} }

// OnClassName wraps the class bound to name in the System loader.
func OnClassName(name string) (Value, error) { return OnClassNameIn(name, System) }

// OnClassNameIn wraps the class bound to name in loader l.
func OnClassNameIn(name string, l *Loader) (Value, error) {
	c, err := l.Load(name)
	if err != nil {
		return Value{}, err
	}
	return OnClass(c), nil
}

func (v Value) cls() *Class {
	if v.class == nil {
		return ObjectClass
	}
	return v.class
}

// Class returns the class of the wrapped value.
func (v Value) Class() *Class { return v.cls() }

// IsType reports whether v wraps a type rather than an instance.
func (v Value) IsType() bool { return v.typeOnly }

// Get returns the wrapped instance, the *Class for a wrapped type, or nil.
// A pointer passed to On is returned as that pointer.
func (v Value) Get() any {
	switch {
	case v.typeOnly:
		return v.cls()
	case !v.val.IsValid():
		return nil
	case v.ref:
		return v.val.Addr().Interface()
	}
	return v.val.Interface()
}

// Field reads the named field. Public fields of the class and its
// ancestors are preferred over non-public ones, nearest class first.
func (v Value) Field(name string) (Value, error) {
	c := v.cls()
	f := c.lookupField(name)
	if f == nil {
		return Value{}, fail(ErrMemberNotFound, "field", name, c, nil, nil)
	}
	f.makeAccessible()
	rv, err := f.read(v)
	if err != nil {
		return Value{}, fail(ErrInvocation, "field", name, c, nil, err)
	}
	return f.class.loader.wrap(rv), nil
}

// GetField is Field followed by Get.
func (v Value) GetField(name string) (any, error) {
	f, err := v.Field(name)
	if err != nil {
		return nil, err
	}
	return f.Get(), nil
}

// Set writes the named field and returns v. A Value argument is unwrapped.
func (v Value) Set(name string, value any) (Value, error) {
	c := v.cls()
	f := c.lookupField(name)
	if f == nil {
		return Value{}, fail(ErrMemberNotFound, "set", name, c, nil, nil)
	}
	f.makeAccessible()
	f.clearFinal()

	rv, err := f.read(v)
	if err != nil {
		return Value{}, fail(ErrInvocation, "set", name, c, nil, err)
	}
	if !rv.CanSet() {
		return Value{}, fail(ErrInvocation, "set", name, c, nil, fmt.Errorf("field %s is not settable", f))
	}
	x, err := convertArg(value, f.typ)
	if err != nil {
		return Value{}, fail(ErrInvocation, "set", name, c, nil, err)
	}
	rv.Set(x)
	return v, nil
}

// Fields returns the fields matching the receiver, most-derived class
// first: instance fields for an instance, static fields for a type. A
// name shadowed by a nearer class is reported once.
func (v Value) Fields() ([]NamedValue, error) {
	var all []NamedValue
	seen := make(map[string]bool)
	for _, cl := range v.cls().ancestry() {
		for _, f := range cl.Fields() {
			if f.isStatic() != v.typeOnly || seen[f.name] {
				continue
			}
			seen[f.name] = true
			f.makeAccessible()
			rv, err := f.read(v)
			if err != nil {
				return nil, fail(ErrInvocation, "fields", f.name, v.cls(), nil, err)
			}
			all = append(all, NamedValue{Name: f.name, Value: cl.loader.wrap(rv)})
		}
	}
	return all, nil
}

// FieldMap is Fields keyed by name.
func (v Value) FieldMap() (map[string]Value, error) {
	all, err := v.Fields()
	if err != nil {
		return nil, err
	}
	m := make(map[string]Value, len(all))
	for _, nv := range all {
		m[nv.Name] = nv.Value
	}
	return m, nil
}

// Call invokes the named method with overload resolution. A method with
// no results returns v; otherwise the result, or a []any of all results,
// is wrapped. A non-nil trailing error result or a panic fails the call
// with ErrInvocation.
func (v Value) Call(name string, args ...any) (Value, error) {
	c := v.cls()
	types := argTypes(args)
	m := resolveMethod(c, name, types)
	if m == nil {
		return Value{}, fail(ErrNoMatchingMethod, "call", name, c, types, nil)
	}
	m.makeAccessible()
	out, err := m.call(v, args)
	if err != nil {
		return Value{}, fail(ErrInvocation, "call", name, c, types, err)
	}
	return v.results(m, out)
}

// New constructs an instance of the class.
func (v Value) New(args ...any) (Value, error) {
	c := v.cls()
	types := argTypes(args)
	k := resolveConstructor(c, types)
	if k == nil {
		return Value{}, fail(ErrNoMatchingConstructor, "new", "", c, types, nil)
	}
	k.makeAccessible()
	rv, err := k.construct(args)
	if err != nil {
		return Value{}, fail(ErrInvocation, "new", "", c, types, err)
	}
	return Value{class: c, val: rv}, nil
}

// receiver returns the storage of the part of v declared by decl.
func (v Value) receiver(decl *Class) (reflect.Value, error) {
	if v.typeOnly {
		return reflect.Value{}, fmt.Errorf("%s: no instance for a type value", decl)
	}
	if !v.val.IsValid() {
		return reflect.Value{}, fmt.Errorf("%s: nil receiver", decl)
	}
	rv, cl := v.val, v.cls()
	for cl != decl {
		if cl.superIndex < 0 {
			return reflect.Value{}, fmt.Errorf("%s is not an ancestor of %s", decl, v.cls())
		}
		sv, err := structValue(rv)
		if err != nil {
			return reflect.Value{}, err
		}
		if rv, err = access.Elevate(sv.Field(cl.superIndex)); err != nil {
			return reflect.Value{}, err
		}
		cl = cl.Super()
	}
	return rv, nil
}

// structValue follows pointers and interfaces down to a struct.
func structValue(rv reflect.Value) (reflect.Value, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s", rv.Type())
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%s is not a struct", rv.Type())
	}
	return rv, nil
}

// Equal reports whether both values wrap equal instances, or the same type.
func (v Value) Equal(other Value) bool {
	if v.typeOnly || other.typeOnly {
		return v.typeOnly == other.typeOnly && v.cls() == other.cls()
	}
	a, b := v.Get(), other.Get()
	if eq, ok := comparableEqual(a, b); ok {
		return eq
	}
	return reflect.DeepEqual(a, b)
}

func comparableEqual(a, b any) (eq, ok bool) {
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return a == b, true
}

var hashSeed = maphash.MakeSeed()

// Hash returns a hash consistent with Equal.
func (v Value) Hash() uint64 {
	if v.typeOnly {
		return maphash.String(hashSeed, v.cls().name)
	}
	x := v.Get()
	if h, ok := comparableHash(x); ok {
		return h
	}
	return maphash.String(hashSeed, fmt.Sprintf("%#v", x))
}

func comparableHash(x any) (h uint64, ok bool) {
	defer func() {
		if recover() != nil {
			h, ok = 0, false
		}
	}()
	return maphash.Comparable(hashSeed, x), true
}

func (v Value) String() string {
	switch {
	case v.typeOnly:
		return v.cls().name
	case !v.val.IsValid():
		return "nil"
	}
	return fmt.Sprint(v.Get())
}
