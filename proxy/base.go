package proxy

import (
	"fmt"
	"reflect"
)

// Base is embedded by generated stubs. It owns the handler and the method
// table of the stub's contract set.
type Base struct {
	handler Handler
	stub    *stub
}

// Contracts returns the contract types the proxy implements, primary first.
func (b *Base) Contracts() []reflect.Type {
	return append([]reflect.Type(nil), b.stub.contracts...)
}

// Invoke forwards a call to the handler and converts its results to the
// method's declared result types.
func (b *Base) Invoke(self any, name string, args ...any) ([]any, error) {
	m, ok := b.stub.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
	}
	out, err := b.handler.Invoke(self, m, args)
	if err != nil {
		return nil, err
	}
	return coerceResults(m, out)
}

// MustInvoke is Invoke for methods without an error result. Failures panic
// with an *UndeclaredError.
func (b *Base) MustInvoke(self any, name string, args ...any) []any {
	out, err := b.Invoke(self, name, args...)
	if err != nil {
		panic(&UndeclaredError{Method: name, Err: err})
	}
	return out
}

func (b *Base) proxyBase() *Base { return b }

type proxied interface {
	proxyBase() *Base
}

// HandlerOf returns the handler behind v when v is a proxy.
func HandlerOf(v any) (Handler, bool) {
	p, ok := v.(proxied)
	if !ok || p.proxyBase() == nil {
		return nil, false
	}
	return p.proxyBase().handler, true
}

// UndeclaredError carries a handler failure out of a contract method that
// has no error result.
type UndeclaredError struct {
	Method string
	Err    error
}

func (e *UndeclaredError) Error() string {
	return fmt.Sprintf("proxy call %s: %v", e.Method, e.Err)
}

func (e *UndeclaredError) Unwrap() error { return e.Err }

// Out stores result i into dst, leaving dst unchanged for missing or nil
// results. Results have already been converted by Invoke.
func Out[T any](out []any, i int, dst *T) {
	if i >= len(out) || out[i] == nil {
		return
	}
	if v, ok := out[i].(T); ok {
		*dst = v
		return
	}
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(out[i]))
}

func coerceResults(m *Method, out []any) ([]any, error) {
	if len(m.Out) == 0 {
		return nil, nil
	}
	res := make([]any, len(m.Out))
	for i, t := range m.Out {
		if i >= len(out) {
			break
		}
		v, err := coerce(out[i], t)
		if err != nil {
			return nil, fmt.Errorf("%s result %d: %w", m, i, err)
		}
		res[i] = v
	}
	return res, nil
}

// coerce converts v to type t: assignment, pointer boxing and unboxing, or
// conversion between scalar kinds.
func coerce(v any, t reflect.Type) (any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	rt := rv.Type()
	switch {
	case rt.AssignableTo(t):
		return v, nil
	case rt.Kind() == reflect.Pointer && !rv.IsNil() && rt.Elem().AssignableTo(t):
		return rv.Elem().Interface(), nil
	case t.Kind() == reflect.Pointer && rt.AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p.Interface(), nil
	case isScalar(rt.Kind()) && isScalar(t.Kind()) && rt.ConvertibleTo(t):
		return rv.Convert(t).Interface(), nil
	case rt.Kind() == reflect.String && t.Kind() == reflect.String:
		return rv.Convert(t).Interface(), nil
	}
	return nil, fmt.Errorf("%w: %s is not assignable to %s", ErrResultType, rt, t)
}

func isScalar(k reflect.Kind) bool {
	switch k {
	case reflect.Bool:
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	case reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
