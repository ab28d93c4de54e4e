package mirror

import (
	"fmt"
	"reflect"

	"github.com/osgifx/console-agent/proxy"
)

// As returns an implementation of contract, and of every extra contract,
// backed by v. Each call on it is resolved against v with Call. When that
// fails, a string-keyed mapping answers GetX, IsX and SetX by key, and a
// contract default body (see proxy.RegisterDefaults) runs bound to the
// returned value. Otherwise the call fails with the resolution error.
//
// A stub for the contract set must be registered with the proxy package.
func (v Value) As(contract reflect.Type, extra ...reflect.Type) (any, error) {
	h := proxy.HandlerFunc(func(self any, m *proxy.Method, args []any) ([]any, error) {
		r, err := v.Call(m.Name, args...)
		if err == nil {
			return spread(r, m)
		}
		if out, ok, merr := v.mapping(m, args); ok {
			return out, merr
		}
		if m.HasDefault() {
			out, derr := m.InvokeDefault(self, args)
			if derr != nil {
				return nil, fail(ErrInvocation, "default", m.Name, v.cls(), nil, derr)
			}
			return out, nil
		}
		return nil, err
	})

	p, err := proxy.New(h, contract, extra...)
	if err != nil {
		return nil, fail(ErrTypeLoading, "as", fmt.Sprint(contract), v.cls(), nil, err)
	}
	return p, nil
}

// As is Value.As for contract P.
func As[P any](v Value, extra ...reflect.Type) (P, error) {
	var zero P
	p, err := v.As(reflect.TypeFor[P](), extra...)
	if err != nil {
		return zero, err
	}
	return p.(P), nil
}

// spread converts a Call result to the handler results of m.
func spread(r Value, m *proxy.Method) ([]any, error) {
	switch len(m.Out) {
	case 0:
		return nil, nil
	case 1:
		return []any{r.Get()}, nil
	}
	all, ok := r.Get().([]any)
	if !ok || len(all) != len(m.Out) {
		return nil, fmt.Errorf("%s: want %d results, got %v", m, len(m.Out), r)
	}
	return all, nil
}
