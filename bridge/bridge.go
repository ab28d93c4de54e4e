// Package bridge exposes values from another module boundary, typically a
// Go plugin, through locally declared interfaces.
//
// A value built in a separately compiled plugin rarely implements the
// caller's interfaces even when its methods look the same, because named
// types in their signatures differ. Bridge relays each call by method name
// to the foreign value instead, and bridges interface results the same
// way, so a whole foreign object graph can be walked through local
// contracts.
package bridge

import (
	"fmt"
	"reflect"

	"github.com/tliron/commonlog"

	"github.com/osgifx/console-agent/mirror"
	"github.com/osgifx/console-agent/proxy"
)

var log = commonlog.GetLogger("agent.bridge")

var errorType = reflect.TypeFor[error]()

// Bridge returns foreign as an implementation of contract. A foreign value
// that already implements contract is returned unchanged. Otherwise a
// proxy is created that calls the foreign method with the same name and
// parameter types. A stub for contract must be registered with the proxy
// package.
func Bridge(contract reflect.Type, foreign any) (any, error) {
	if foreign == nil {
		return nil, fmt.Errorf("bridge %v: nil foreign value", contract)
	}
	if contract == nil || contract.Kind() != reflect.Interface {
		return nil, fmt.Errorf("bridge %v: %w", contract, proxy.ErrNotInterface)
	}
	ft := reflect.TypeOf(foreign)
	if ft.Implements(contract) {
		return foreign, nil
	}

	p, err := proxy.New(&relay{foreign: reflect.ValueOf(foreign)}, contract)
	if err != nil {
		return nil, fmt.Errorf("bridge %s to %s: %w", ft, contract, err)
	}
	log.Debugf("bridged %s to %s", ft, contract)
	return p, nil
}

// To is Bridge for contract T.
func To[T any](foreign any) (T, error) {
	var zero T
	p, err := Bridge(reflect.TypeFor[T](), foreign)
	if err != nil {
		return zero, err
	}
	return p.(T), nil
}

// relay forwards proxy calls to a foreign value.
type relay struct {
	foreign reflect.Value
}

func (r *relay) Invoke(self any, m *proxy.Method, args []any) (out []any, err error) {
	fn, err := r.method(m)
	if err != nil {
		return nil, err
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(m.In[i])
			continue
		}
		in[i] = reflect.ValueOf(a)
	}

	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, &mirror.Error{
				Kind:  mirror.ErrInvocation,
				Op:    "bridge",
				Name:  m.Name,
				Class: mirror.TypeName(r.foreign.Type()),
				Err:   fmt.Errorf("panic: %v", rec),
			}
		}
	}()

	var res []reflect.Value
	if m.Variadic {
		res = fn.CallSlice(in)
	} else {
		res = fn.Call(in)
	}
	ftyp := fn.Type()

	n := len(res)
	if n > 0 && ftyp.Out(n-1) == errorType {
		if last := res[n-1]; !last.IsNil() {
			return nil, last.Interface().(error)
		}
		n--
	}
	if n < len(m.Out) {
		return nil, fmt.Errorf("%s: foreign method returns %d results, want %d", m, n, len(m.Out))
	}

	out = make([]any, len(m.Out))
	for i, local := range m.Out {
		out[i] = r.result(res[i], ftyp.Out(i), local)
	}
	return out, nil
}

// method finds the foreign method matching m by name and parameter types.
func (r *relay) method(m *proxy.Method) (reflect.Value, error) {
	fn := r.foreign.MethodByName(m.Name)
	if !fn.IsValid() || !sameParams(fn.Type(), m) {
		return reflect.Value{}, &mirror.Error{
			Kind:  mirror.ErrNoMatchingMethod,
			Op:    "bridge",
			Name:  m.Name,
			Class: mirror.TypeName(r.foreign.Type()),
			Types: m.In,
		}
	}
	return fn, nil
}

func sameParams(ft reflect.Type, m *proxy.Method) bool {
	if ft.NumIn() != len(m.In) || ft.IsVariadic() != m.Variadic {
		return false
	}
	for i, t := range m.In {
		if ft.In(i) != t {
			return false
		}
	}
	return true
}

// result bridges an interface result whose local declared type differs
// from the foreign one. The raw result is kept when that fails.
func (r *relay) result(v reflect.Value, declared, local reflect.Type) any {
	if isNil(v) {
		return nil
	}
	raw := v.Interface()
	if local.Kind() != reflect.Interface || declared == local {
		return raw
	}
	b, err := Bridge(local, raw)
	if err != nil {
		log.Debugf("keeping unbridged %T result: %v", raw, err)
		return raw
	}
	return b
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}
