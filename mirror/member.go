package mirror

import (
	"fmt"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/osgifx/console-agent/internal/access"
)

// Modifier flags describe member visibility and kind.
type Modifier uint32

const (
	Public Modifier = 1 << iota
	Static
	Final
)

func (m Modifier) String() string {
	var parts []string
	if m&Public != 0 {
		parts = append(parts, "public")
	}
	if m&Static != 0 {
		parts = append(parts, "static")
	}
	if m&Final != 0 {
		parts = append(parts, "final")
	}
	return strings.Join(parts, " ")
}

// Field is an instance struct field or a registered static field.
type Field struct {
	name  string
	class *Class
	typ   reflect.Type
	index int // struct field index; unused for static fields

	// static holds the storage of a static field: the element of the
	// registered pointer, or the constant value.
	static reflect.Value

	mods     atomic.Uint32
	override atomic.Bool
}

func (f *Field) Name() string { return f.name }
func (f *Field) DeclaringClass() *Class { return f.class }
func (f *Field) Type() reflect.Type { return f.typ }
func (f *Field) Modifiers() Modifier { return Modifier(f.mods.Load()) }
func (f *Field) isStatic() bool { return f.Modifiers()&Static != 0 }
func (f *Field) String() string { return f.class.name + "." + f.name }
func (f *Field) makeAccessible() { override(&f.override, f.Modifiers(), f.class, f) }

// clearFinal drops the final modifier from the shared field metadata. It
// quietly does nothing when the build cannot elevate access.
func (f *Field) clearFinal() {
	if !access.Supported() {
		log.Debugf("cannot clear final on %s: %v", f, access.ErrUnsupported)
		return
	}
	for {
		old := f.mods.Load()
		if old&uint32(Final) == 0 || f.mods.CompareAndSwap(old, old&^uint32(Final)) {
			return
		}
	}
}

// read returns the storage of the field for receiver v.
func (f *Field) read(v Value) (reflect.Value, error) {
	if f.isStatic() {
		return f.static, nil
	}
	rv, err := v.receiver(f.class)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("field %s: %w", f.name, err)
	}
	sv, err := structValue(rv)
	if err != nil {
		return reflect.Value{}, err
	}
	return access.Elevate(sv.Field(f.index))
}

// Method is a method found by reflection or registered on a class.
type Method struct {
	name     string
	class    *Class
	mods     Modifier
	params   []reflect.Type
	variadic bool
	results  []reflect.Type

	// fn is the registered function; invalid for reflected methods, which
	// are bound on the receiver by name.
	fn   reflect.Value
	recv reflect.Type // receiver parameter of fn, nil for static functions

	override atomic.Bool
}

func (m *Method) Name() string { return m.name }
func (m *Method) DeclaringClass() *Class { return m.class }
func (m *Method) Modifiers() Modifier { return m.mods }
func (m *Method) ParamTypes() []reflect.Type { return append([]reflect.Type(nil), m.params...) }
func (m *Method) ResultTypes() []reflect.Type { return append([]reflect.Type(nil), m.results...) }
func (m *Method) makeAccessible() { override(&m.override, m.mods, m.class, m) }

func (m *Method) String() string {
	return fmt.Sprintf("%s.%s(%s)", m.class.name, m.name, typeList(m.params))
}

// call invokes the method for receiver v.
func (m *Method) call(v Value, args []any) (out []reflect.Value, err error) {
	in, err := convertArgs(args, m.params)
	if err != nil {
		return nil, err
	}
	defer recoverInvocation(&err)

	fn := m.fn
	switch {
	case fn.IsValid() && m.recv == nil:
	case fn.IsValid():
		rv, rerr := v.receiver(m.class)
		if rerr != nil {
			return nil, rerr
		}
		r, rerr := adaptReceiver(rv, m.recv)
		if rerr != nil {
			return nil, rerr
		}
		in = append([]reflect.Value{r}, in...)
	default:
		rv, rerr := v.receiver(m.class)
		if rerr != nil {
			return nil, rerr
		}
		if fn, err = boundMethod(rv, m.name); err != nil {
			return nil, err
		}
	}

	if m.variadic {
		return fn.CallSlice(in), nil
	}
	return fn.Call(in), nil
}

// Constructor builds instances of its class. A Constructor without a
// function is the implicit zero-value constructor.
type Constructor struct {
	class    *Class
	mods     Modifier
	params   []reflect.Type
	variadic bool
	fn       reflect.Value
	override atomic.Bool
}

func (k *Constructor) DeclaringClass() *Class { return k.class }
func (k *Constructor) Modifiers() Modifier { return k.mods }
func (k *Constructor) ParamTypes() []reflect.Type { return append([]reflect.Type(nil), k.params...) }
func (k *Constructor) makeAccessible() { override(&k.override, k.mods, k.class, k) }

func (k *Constructor) String() string {
	return fmt.Sprintf("%s(%s)", k.class.name, typeList(k.params))
}

// construct returns an addressable instance of the class type.
func (k *Constructor) construct(args []any) (rv reflect.Value, err error) {
	t := k.class.typ
	if !k.fn.IsValid() {
		if t.Kind() == reflect.Pointer {
			return reflect.New(t.Elem()), nil
		}
		return reflect.New(t).Elem(), nil
	}

	in, err := convertArgs(args, k.params)
	if err != nil {
		return reflect.Value{}, err
	}
	defer recoverInvocation(&err)

	var out []reflect.Value
	if k.variadic {
		out = k.fn.CallSlice(in)
	} else {
		out = k.fn.Call(in)
	}
	if len(out) == 2 && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	r := out[0]
	switch {
	case r.Type() == t:
		return addressable(r), nil
	case r.Type() == reflect.PointerTo(t):
		if r.IsNil() {
			return reflect.Value{}, fmt.Errorf("constructor %s returned nil", k)
		}
		return r.Elem(), nil
	default: // t is *T and the function returned T
		return addressable(r).Addr(), nil
	}
}

// override applies the access override to a non-public member. Setting the
// flag is idempotent, so concurrent first uses race harmlessly.
func override(flag *atomic.Bool, mods Modifier, c *Class, member fmt.Stringer) {
	if mods&Public != 0 && c.exported() {
		return
	}
	if flag.CompareAndSwap(false, true) {
		log.Debugf("access override on %s", member)
	}
}

func recoverInvocation(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = fmt.Errorf("panic: %w", e)
			return
		}
		*err = fmt.Errorf("panic: %v", r)
	}
}
