package mirror

import (
	"reflect"
)

type null struct{}

// NullType stands for the type of a nil argument during overload
// resolution. A nil argument is compatible with every parameter.
var NullType = reflect.TypeFor[null]()

// argTypes derives the argument type vector used for resolution.
func argTypes(args []any) []reflect.Type {
	types := make([]reflect.Type, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case nil:
			types[i] = NullType
		case Value:
			if a.val.IsValid() && !a.typeOnly {
				types[i] = a.val.Type()
				if a.ref {
					types[i] = reflect.PointerTo(types[i])
				}
			} else {
				types[i] = NullType
			}
		default:
			types[i] = reflect.TypeOf(a)
		}
	}
	return types
}

// isPrimitive reports whether t is a predeclared boolean or numeric type.
func isPrimitive(t reflect.Type) bool {
	if t.PkgPath() != "" || t.Name() == "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// wrapper returns the boxed form of a primitive type, *T for T, and t
// itself otherwise.
func wrapper(t reflect.Type) reflect.Type {
	if isPrimitive(t) {
		return reflect.PointerTo(t)
	}
	return t
}

func exact(params, types []reflect.Type) bool {
	if len(params) != len(types) {
		return false
	}
	for i, p := range params {
		if types[i] != p {
			return false
		}
	}
	return true
}

func similar(params, types []reflect.Type) bool {
	if len(params) != len(types) {
		return false
	}
	for i, p := range params {
		if types[i] == NullType {
			continue
		}
		if !wrapper(types[i]).AssignableTo(wrapper(p)) {
			return false
		}
	}
	return true
}

// findMethod runs one exact or similar pass: public methods of the whole
// ancestry first, then methods of any visibility nearest first.
func findMethod(c *Class, name string, types []reflect.Type, match func(params, types []reflect.Type) bool) *Method {
	chain := c.ancestry()
	for _, cl := range chain {
		for _, m := range cl.Methods() {
			if m.name == name && m.mods&Public != 0 && match(m.params, types) {
				return m
			}
		}
	}
	for _, cl := range chain {
		for _, m := range cl.Methods() {
			if m.name == name && match(m.params, types) {
				return m
			}
		}
	}
	return nil
}

// resolveMethod applies the four resolution tiers in order.
func resolveMethod(c *Class, name string, types []reflect.Type) *Method {
	if m := findMethod(c, name, types, exact); m != nil {
		return m
	}
	if m := findMethod(c, name, types, similar); m != nil {
		log.Debugf("%s: similar match for %s(%s)", m, name, typeList(types))
		return m
	}
	return nil
}

// resolveConstructor prefers an exact constructor, then the first similar
// one in declaration order.
func resolveConstructor(c *Class, types []reflect.Type) *Constructor {
	ctors := c.Constructors()
	for _, k := range ctors {
		if exact(k.params, types) {
			return k
		}
	}
	for _, k := range ctors {
		if similar(k.params, types) {
			return k
		}
	}
	return nil
}
