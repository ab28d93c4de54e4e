package mirror

import (
	"fmt"
	"reflect"
)

// convertArgs converts call arguments to the declared parameter types.
func convertArgs(args []any, params []reflect.Type) ([]reflect.Value, error) {
	if len(args) != len(params) {
		return nil, fmt.Errorf("got %d arguments, want %d", len(args), len(params))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		v, err := convertArg(a, params[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in[i] = v
	}
	return in, nil
}

// convertArg converts arg to t, boxing T to *T and unboxing *T to T. nil
// converts to the zero value of t.
func convertArg(arg any, t reflect.Type) (reflect.Value, error) {
	if v, ok := arg.(Value); ok {
		arg = v.Get()
	}
	if arg == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(arg)
	at := rv.Type()
	switch {
	case at.AssignableTo(t):
		return rv, nil
	case t.Kind() == reflect.Pointer && at.AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	case at.Kind() == reflect.Pointer && at.Elem().AssignableTo(t):
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("cannot unbox nil %s to %s", at, t)
		}
		return rv.Elem(), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", at, t)
}

// results turns the outputs of m into a Value: the receiver when there is
// nothing to return, the single result, or a []any of all results. A
// non-nil trailing error fails the call.
func (v Value) results(m *Method, out []reflect.Value) (Value, error) {
	if n := len(m.results); n > 0 && m.results[n-1] == errorType {
		if last := out[n-1]; !last.IsNil() {
			return Value{}, fail(ErrInvocation, "call", m.name, v.cls(), m.params, last.Interface().(error))
		}
		out = out[:n-1]
	}

	l := m.class.loader
	switch len(out) {
	case 0:
		return v, nil
	case 1:
		return l.On(out[0].Interface()), nil
	}
	all := make([]any, len(out))
	for i, o := range out {
		all[i] = o.Interface()
	}
	return l.On(all), nil
}
