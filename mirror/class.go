package mirror

import (
	"go/token"
	"reflect"
	"strings"
	"sync"
)

// Class describes a Go type for name-addressed access. It combines what
// reflection reports (struct fields, exported methods) with members
// registered through a ClassBuilder (constructors, overloads, non-public
// methods, static members).
//
// The ancestor of a struct class is the class of its first embedded struct
// field; that field is not listed among the declared fields.
type Class struct {
	name   string
	typ    reflect.Type
	loader *Loader

	strct      reflect.Type // struct holding the instance fields, nil if none
	superIndex int          // field index of the embedded ancestor, -1 if none

	superOnce sync.Once
	super     *Class

	mu      sync.RWMutex
	fields  []*Field
	methods []*Method
	ctors   []*Constructor
}

func newClass(l *Loader, t reflect.Type) *Class {
	c := &Class{
		name:       TypeName(t),
		typ:        t,
		loader:     l,
		superIndex: -1,
	}
	switch {
	case t.Kind() == reflect.Struct:
		c.strct = t
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		c.strct = t.Elem()
	}
	if c.strct != nil {
		c.superIndex = ancestorField(c.strct)
		c.fields = structFields(c)
	}
	c.methods = reflectMethods(c)
	return c
}

// ancestorField returns the index of the first embedded struct field.
func ancestorField(st reflect.Type) int {
	for i := 0; i < st.NumField(); i++ {
		sf := st.Field(i)
		if !sf.Anonymous {
			continue
		}
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct && ft != st {
			return i
		}
	}
	return -1
}

func structFields(c *Class) []*Field {
	var fields []*Field
	for i := 0; i < c.strct.NumField(); i++ {
		if i == c.superIndex {
			continue
		}
		sf := c.strct.Field(i)
		if sf.Name == "_" {
			continue
		}
		var mods Modifier
		if sf.IsExported() {
			mods |= Public
		}
		if hasTagOption(sf.Tag.Get("mirror"), "final") {
			mods |= Final
		}
		f := &Field{name: sf.Name, class: c, typ: sf.Type, index: i}
		f.mods.Store(uint32(mods))
		fields = append(fields, f)
	}
	return fields
}

func hasTagOption(tag, option string) bool {
	for _, opt := range strings.Split(tag, ",") {
		if strings.TrimSpace(opt) == option {
			return true
		}
	}
	return false
}

// reflectMethods lists the exported methods Go reflection reports. Value
// classes use the pointer method set since wrapped values are addressable.
func reflectMethods(c *Class) []*Method {
	mt := c.typ
	if mt.Kind() != reflect.Interface && mt.Kind() != reflect.Pointer {
		mt = reflect.PointerTo(mt)
	}
	start := 1
	if mt.Kind() == reflect.Interface {
		start = 0
	}

	methods := make([]*Method, 0, mt.NumMethod())
	for i := 0; i < mt.NumMethod(); i++ {
		rm := mt.Method(i)
		ft := rm.Type
		m := &Method{
			name:     rm.Name,
			class:    c,
			mods:     Public,
			variadic: ft.IsVariadic(),
		}
		for j := start; j < ft.NumIn(); j++ {
			m.params = append(m.params, ft.In(j))
		}
		for j := 0; j < ft.NumOut(); j++ {
			m.results = append(m.results, ft.Out(j))
		}
		methods = append(methods, m)
	}
	return methods
}

// Name returns the qualified class name.
func (c *Class) Name() string { return c.name }

// Type returns the Go type the class describes.
func (c *Class) Type() reflect.Type { return c.typ }

// Loader returns the loader that created the class.
func (c *Class) Loader() *Loader { return c.loader }

func (c *Class) String() string { return c.name }

// Super returns the ancestor class, or nil.
func (c *Class) Super() *Class {
	c.superOnce.Do(func() {
		if c.superIndex >= 0 {
			c.super = c.loader.ClassOf(c.strct.Field(c.superIndex).Type)
		}
	})
	return c.super
}

// ancestry lists the class followed by its ancestors, nearest first.
func (c *Class) ancestry() []*Class {
	var chain []*Class
	seen := make(map[*Class]bool)
	for cl := c; cl != nil && !seen[cl]; cl = cl.Super() {
		seen[cl] = true
		chain = append(chain, cl)
	}
	return chain
}

// Fields returns the fields declared on this class, instance fields first.
func (c *Class) Fields() []*Field {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Field(nil), c.fields...)
}

// Methods returns the methods declared on this class.
func (c *Class) Methods() []*Method {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Method(nil), c.methods...)
}

// Constructors returns the constructors of this class in declaration
// order. A class without registered constructors has an implicit one
// producing the zero value; interfaces have none.
func (c *Class) Constructors() []*Constructor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.ctors) > 0 {
		return append([]*Constructor(nil), c.ctors...)
	}
	if c.typ.Kind() == reflect.Interface {
		return nil
	}
	return []*Constructor{{class: c, mods: Public}}
}

// exported reports whether the class's type name is exported.
func (c *Class) exported() bool {
	t := c.typ
	for t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	return t.Name() == "" || token.IsExported(t.Name())
}

// lookupField finds a public field anywhere in the ancestry, then a field
// of any visibility, nearest first.
func (c *Class) lookupField(name string) *Field {
	chain := c.ancestry()
	for _, cl := range chain {
		for _, f := range cl.Fields() {
			if f.name == name && f.Modifiers()&Public != 0 {
				return f
			}
		}
	}
	for _, cl := range chain {
		for _, f := range cl.Fields() {
			if f.name == name {
				return f
			}
		}
	}
	return nil
}
