package mirror

import (
	"fmt"
	"reflect"
)

// ClassBuilder registers the members of a class that reflection does not
// report. Builder methods panic on malformed registrations, which are
// programming errors, and return the builder for chaining.
//
//	mirror.System.Define("acme.Greeter", reflect.TypeFor[Greeter]()).
//		Constructor(NewGreeter).
//		Method("Greet", (*Greeter).greetAll).
//		StaticField("Count", &greeterCount)
type ClassBuilder struct {
	class *Class
}

// Class returns the class being built.
func (b *ClassBuilder) Class() *Class { return b.class }

// Constructor registers a public constructor. fn returns the class type,
// a pointer to it, or either of those plus an error.
func (b *ClassBuilder) Constructor(fn any) *ClassBuilder {
	return b.constructor(fn, Public)
}

// PrivateConstructor registers a non-public constructor.
func (b *ClassBuilder) PrivateConstructor(fn any) *ClassBuilder {
	return b.constructor(fn, 0)
}

func (b *ClassBuilder) constructor(fn any, mods Modifier) *ClassBuilder {
	c := b.class
	fv := funcValue("constructor", c, fn)
	ft := fv.Type()

	ok := ft.NumOut() == 1 || (ft.NumOut() == 2 && ft.Out(1) == errorType)
	if ok {
		r := ft.Out(0)
		ok = r == c.typ || r == reflect.PointerTo(c.typ) ||
			(c.typ.Kind() == reflect.Pointer && r == c.typ.Elem())
	}
	if !ok {
		panic(fmt.Sprintf("mirror: constructor %s does not return %s", ft, c.typ))
	}

	k := &Constructor{class: c, mods: mods, params: paramTypes(ft, 0), variadic: ft.IsVariadic(), fn: fv}
	c.mu.Lock()
	c.ctors = append(c.ctors, k)
	c.mu.Unlock()
	return b
}

// Method registers a public method. The first parameter of fn receives
// the instance; it may be the class type, a pointer to it, or an
// interface the class implements. Several registrations under one name
// are overloads.
func (b *ClassBuilder) Method(name string, fn any) *ClassBuilder {
	return b.method(name, fn, Public)
}

// PrivateMethod registers a non-public method.
func (b *ClassBuilder) PrivateMethod(name string, fn any) *ClassBuilder {
	return b.method(name, fn, 0)
}

func (b *ClassBuilder) method(name string, fn any, mods Modifier) *ClassBuilder {
	c := b.class
	fv := funcValue(name, c, fn)
	ft := fv.Type()
	if ft.NumIn() == 0 || !receiverCompatible(c.typ, ft.In(0)) {
		panic(fmt.Sprintf("mirror: method %s.%s: %s has no %s receiver", c, name, ft, c.typ))
	}
	b.add(&Method{
		name:     name,
		class:    c,
		mods:     mods,
		params:   paramTypes(ft, 1),
		variadic: ft.IsVariadic(),
		results:  resultTypes(ft),
		fn:       fv,
		recv:     ft.In(0),
	})
	return b
}

// StaticMethod registers a public type-level function.
func (b *ClassBuilder) StaticMethod(name string, fn any) *ClassBuilder {
	c := b.class
	fv := funcValue(name, c, fn)
	ft := fv.Type()
	b.add(&Method{
		name:     name,
		class:    c,
		mods:     Public | Static,
		params:   paramTypes(ft, 0),
		variadic: ft.IsVariadic(),
		results:  resultTypes(ft),
		fn:       fv,
	})
	return b
}

func (b *ClassBuilder) add(m *Method) {
	b.class.mu.Lock()
	b.class.methods = append(b.class.methods, m)
	b.class.mu.Unlock()
}

// StaticField registers a public type-level variable. ptr points to its
// storage.
func (b *ClassBuilder) StaticField(name string, ptr any) *ClassBuilder {
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		panic(fmt.Sprintf("mirror: static field %s.%s: %T is not a non-nil pointer", b.class, name, ptr))
	}
	b.addField(name, pv.Elem(), Public|Static)
	return b
}

// Const registers a public final type-level value.
func (b *ClassBuilder) Const(name string, value any) *ClassBuilder {
	if value == nil {
		panic(fmt.Sprintf("mirror: const %s.%s is nil", b.class, name))
	}
	b.addField(name, addressable(reflect.ValueOf(value)), Public|Static|Final)
	return b
}

func (b *ClassBuilder) addField(name string, storage reflect.Value, mods Modifier) {
	f := &Field{name: name, class: b.class, typ: storage.Type(), index: -1, static: storage}
	f.mods.Store(uint32(mods))
	b.class.mu.Lock()
	b.class.fields = append(b.class.fields, f)
	b.class.mu.Unlock()
}

func funcValue(name string, c *Class, fn any) reflect.Value {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		panic(fmt.Sprintf("mirror: %s.%s: %T is not a function", c, name, fn))
	}
	return fv
}

func paramTypes(ft reflect.Type, from int) []reflect.Type {
	var params []reflect.Type
	for i := from; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	return params
}

func resultTypes(ft reflect.Type) []reflect.Type {
	var results []reflect.Type
	for i := 0; i < ft.NumOut(); i++ {
		results = append(results, ft.Out(i))
	}
	return results
}

// receiverCompatible reports whether a value of class type t can be passed
// as receiver parameter r.
func receiverCompatible(t, r reflect.Type) bool {
	switch {
	case t == r, reflect.PointerTo(t) == r:
		return true
	case t.Kind() == reflect.Pointer && t.Elem() == r:
		return true
	case r.Kind() == reflect.Interface:
		return t.Implements(r) || reflect.PointerTo(t).Implements(r)
	}
	return false
}

// adaptReceiver turns the receiver storage rv into the value fn expects.
func adaptReceiver(rv reflect.Value, want reflect.Type) (reflect.Value, error) {
	t := rv.Type()
	switch {
	case t.AssignableTo(want):
		return rv, nil
	case t.Kind() == reflect.Pointer && t.Elem() == want:
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s receiver", t)
		}
		return rv.Elem(), nil
	case rv.CanAddr() && reflect.PointerTo(t).AssignableTo(want):
		return rv.Addr(), nil
	}
	return reflect.Value{}, fmt.Errorf("receiver %s cannot be used as %s", t, want)
}

// boundMethod returns the Go method name bound to rv, using the pointer
// method set when rv is addressable.
func boundMethod(rv reflect.Value, name string) (reflect.Value, error) {
	if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface && rv.CanAddr() {
		rv = rv.Addr()
	}
	if rv.Kind() == reflect.Interface && rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("method %s on nil %s", name, rv.Type())
	}
	fn := rv.MethodByName(name)
	if !fn.IsValid() {
		return reflect.Value{}, fmt.Errorf("%s has no method %s", rv.Type(), name)
	}
	return fn, nil
}
