package proxy

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/osgifx/console-agent/internal/access"
)

var log = commonlog.GetLogger("agent.proxy")

// companion holds the default method bodies of one contract.
type companion struct {
	contract reflect.Type
	typ      reflect.Type  // struct type
	field    int           // index of the contract-typed field, -1 with ctor
	ctor     reflect.Value // func(contract) typ or *typ
}

var defaults = struct {
	mu         sync.RWMutex
	byContract map[reflect.Type]*companion
}{byContract: make(map[reflect.Type]*companion)}

// RegisterDefaults records the default method bodies of contract.
//
// companion is either a struct value (or pointer to one) with exactly one
// exported, non-embedded field of the contract type, or a constructor
// func(C) T where T is such a struct or a pointer to one. The methods of
// the struct whose name and signature match a contract method are the
// default bodies. When a default runs, a fresh companion is created bound
// to the proxy the call was made on, so the body can call back into the
// contract:
//
//	type greeterDefaults struct{ Self Greeter }
//
//	func (d greeterDefaults) Greeting() string { return "hello " + d.Self.Name() }
//
// A companion that keeps the contract in an unexported field registers a
// constructor instead:
//
//	proxy.MustRegisterDefaults[Greeter](func(g Greeter) greeterDefaults {
//		return greeterDefaults{self: g}
//	})
func RegisterDefaults(contract reflect.Type, companionValue any) error {
	if contract == nil || contract.Kind() != reflect.Interface {
		return fmt.Errorf("%v: %w", contract, ErrNotInterface)
	}
	if companionValue == nil {
		return errors.New("nil defaults companion")
	}

	var c *companion
	var err error
	if fn := reflect.ValueOf(companionValue); fn.Kind() == reflect.Func {
		c, err = constructedCompanion(contract, fn)
	} else {
		c, err = fieldCompanion(contract, fn.Type())
	}
	if err != nil {
		return err
	}

	defaults.mu.Lock()
	defaults.byContract[contract] = c
	defaults.mu.Unlock()
	return nil
}

func constructedCompanion(contract reflect.Type, fn reflect.Value) (*companion, error) {
	ft := fn.Type()
	if fn.IsNil() || ft.NumIn() != 1 || ft.In(0) != contract || ft.NumOut() != 1 || ft.IsVariadic() {
		return nil, fmt.Errorf("defaults constructor %s must have the form func(%s) T", ft, contract)
	}
	t := ft.Out(0)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("defaults constructor %s does not return a struct", ft)
	}
	return &companion{contract: contract, typ: t, field: -1, ctor: fn}, nil
}

func fieldCompanion(contract, t reflect.Type) (*companion, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("defaults companion %s is not a struct", t)
	}

	field := -1
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type != contract {
			continue
		}
		if sf.Anonymous {
			return nil, fmt.Errorf("defaults companion %s embeds %s; use a named field", t, contract)
		}
		if field >= 0 {
			return nil, fmt.Errorf("defaults companion %s has more than one %s field", t, contract)
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("defaults companion field %s.%s is unexported; export it or register a constructor", t, sf.Name)
		}
		field = i
	}
	if field < 0 {
		return nil, fmt.Errorf("defaults companion %s has no %s field", t, contract)
	}
	return &companion{contract: contract, typ: t, field: field}, nil
}

// MustRegisterDefaults is RegisterDefaults for contract C, panicking on error.
func MustRegisterDefaults[C any](companionValue any) {
	if err := RegisterDefaults(reflect.TypeFor[C](), companionValue); err != nil {
		panic("proxy.MustRegisterDefaults: " + err.Error())
	}
}

func lookupDefaults(contract reflect.Type) *companion {
	defaults.mu.RLock()
	defer defaults.mu.RUnlock()
	return defaults.byContract[contract]
}

// method returns the companion method implementing m, if any.
func (c *companion) method(m *Method) *reflect.Method {
	rm, ok := reflect.PointerTo(c.typ).MethodByName(m.Name)
	if !ok {
		return nil
	}
	ft := rm.Type
	if ft.NumIn()-1 != len(m.In) || ft.IsVariadic() != m.Variadic {
		return nil
	}
	for i, t := range m.In {
		if ft.In(i+1) != t {
			return nil
		}
	}
	want := len(m.Out)
	if m.ReturnsErr {
		want++
	}
	if ft.NumOut() != want {
		return nil
	}
	for i, t := range m.Out {
		if ft.Out(i) != t {
			return nil
		}
	}
	if m.ReturnsErr && ft.Out(want-1) != errorType {
		return nil
	}
	return &rm
}

func (c *companion) invoke(b binder, m *Method, self any, args []any) (out []any, err error) {
	if self == nil || !reflect.TypeOf(self).Implements(c.contract) {
		return nil, fmt.Errorf("default %s: receiver %T does not implement %s", m, self, c.contract)
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("default %s panicked: %v", m, r)
		}
	}()

	recv, err := b.bind(c, self)
	if err != nil {
		return nil, fmt.Errorf("binding default %s (%s): %w", m, b, err)
	}

	fn := recv.MethodByName(m.Name)
	vals := argValues(args, m.In)
	var results []reflect.Value
	if m.Variadic {
		results = fn.CallSlice(vals)
	} else {
		results = fn.Call(vals)
	}
	return splitResults(results, m.ReturnsErr)
}

// construct calls the registered constructor and returns a pointer to
// the companion it built.
func (c *companion) construct(self any) reflect.Value {
	v := c.ctor.Call([]reflect.Value{reflect.ValueOf(self)})[0]
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.New(c.typ)
		}
		return v
	}
	recv := reflect.New(c.typ)
	recv.Elem().Set(v)
	return recv
}

// binder creates a companion bound to a live proxy.
type binder interface {
	bind(c *companion, self any) (reflect.Value, error)
	String() string
}

// directBinder sets the contract field through an elevated value.
type directBinder struct{}

func (directBinder) String() string { return "direct" }

func (directBinder) bind(c *companion, self any) (reflect.Value, error) {
	if c.ctor.IsValid() {
		return c.construct(self), nil
	}
	recv := reflect.New(c.typ)
	f, err := access.Elevate(recv.Elem().Field(c.field))
	if err != nil {
		return reflect.Value{}, err
	}
	f.Set(reflect.ValueOf(self))
	return recv, nil
}

// negotiatedBinder is used when access elevation is unavailable. It looks
// the companion up again scoped to its contract, then narrows the binding
// to the constructor or the exported contract-typed field.
type negotiatedBinder struct{}

func (negotiatedBinder) String() string { return "negotiated" }

func (negotiatedBinder) bind(c *companion, self any) (reflect.Value, error) {
	scoped := lookupDefaults(c.contract)
	if scoped == nil || scoped.typ != c.typ {
		return reflect.Value{}, fmt.Errorf("companion %s is not registered for %s", c.typ, c.contract)
	}
	if scoped.ctor.IsValid() {
		return scoped.construct(self), nil
	}
	f := reflect.New(scoped.typ)
	field := f.Elem().Field(scoped.field)
	if !field.CanSet() {
		return reflect.Value{}, fmt.Errorf("companion field %s.%s: %w", scoped.typ, scoped.typ.Field(scoped.field).Name, access.ErrUnsupported)
	}
	field.Set(reflect.ValueOf(self))
	return f, nil
}

// defaultBinder is chosen once per process; the outcome is deterministic.
var defaultBinder = sync.OnceValue(func() binder {
	var sample struct{ restricted int }
	if _, err := access.Elevate(reflect.ValueOf(&sample).Elem().Field(0)); err != nil {
		log.Debugf("default methods use negotiated binding: %v", err)
		return negotiatedBinder{}
	}
	return directBinder{}
})
