// Package proxy is the runtime for synthesized contract implementations.
//
// Go cannot create method sets at run time, so every contract (interface)
// that should be implementable dynamically gets a small stub type, generated
// by cmd/proxygen, that embeds *Base and forwards each method to a Handler:
//
//	type greeterProxy struct {
//		*proxy.Base
//	}
//
//	func (p *greeterProxy) Greet(a0 string) (r0 string, err error) {
//		out, err := p.Invoke(p, "Greet", a0)
//		if err != nil {
//			return
//		}
//		proxy.Out(out, 0, &r0)
//		return
//	}
//
// Stubs register themselves with Register for the contract set they
// implement. New then pairs a registered stub with a Handler.
//
// A contract may also carry default method bodies through a defaults
// companion, see RegisterDefaults.
package proxy

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotInterface is returned when a contract type is not an interface.
	ErrNotInterface = errors.New("contract is not an interface type")

	// ErrNoStub is returned by New when no stub is registered for a contract set.
	ErrNoStub = errors.New("no proxy stub registered")

	// ErrUnknownMethod is returned when a stub forwards a method its
	// contracts do not declare.
	ErrUnknownMethod = errors.New("method not declared by contract")

	// ErrResultType is returned when a handler result cannot be converted
	// to the declared result type.
	ErrResultType = errors.New("handler result has wrong type")

	// ErrNoDefault is returned by InvokeDefault when the contract has no
	// default body for the method.
	ErrNoDefault = errors.New("no default method body")
)

var errorType = reflect.TypeFor[error]()

// Handler receives every call made on a proxy.
//
// self is the proxy the call was made on. The returned slice holds the
// method's results without the trailing error; the error is returned
// separately.
type Handler interface {
	Invoke(self any, m *Method, args []any) ([]any, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(self any, m *Method, args []any) ([]any, error)

// Invoke calls f.
func (f HandlerFunc) Invoke(self any, m *Method, args []any) ([]any, error) {
	return f(self, m, args)
}

// Method describes one contract method as seen by a Handler.
type Method struct {
	Name     string
	Contract reflect.Type

	// In holds the parameter types. For variadic methods the last entry
	// is the slice type and the stub passes the slice as one argument.
	In       []reflect.Type
	Variadic bool

	// Out holds the result types without the trailing error.
	Out        []reflect.Type
	ReturnsErr bool
}

func (m *Method) String() string {
	return fmt.Sprintf("%s.%s", m.Contract, m.Name)
}

// HasDefault reports whether the method's contract provides a default body.
func (m *Method) HasDefault() bool {
	c := lookupDefaults(m.Contract)
	return c != nil && c.method(m) != nil
}

// InvokeDefault runs the contract's default body for m bound to self.
func (m *Method) InvokeDefault(self any, args []any) ([]any, error) {
	c := lookupDefaults(m.Contract)
	if c == nil || c.method(m) == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDefault, m)
	}
	return c.invoke(defaultBinder(), m, self, args)
}

// methodsOf describes the methods of a contract, in declaration order.
func methodsOf(contract reflect.Type) []*Method {
	methods := make([]*Method, 0, contract.NumMethod())
	for i := 0; i < contract.NumMethod(); i++ {
		rm := contract.Method(i)
		ft := rm.Type
		m := &Method{
			Name:     rm.Name,
			Contract: contract,
			Variadic: ft.IsVariadic(),
		}
		for j := 0; j < ft.NumIn(); j++ {
			m.In = append(m.In, ft.In(j))
		}
		n := ft.NumOut()
		if n > 0 && ft.Out(n-1) == errorType {
			m.ReturnsErr = true
			n--
		}
		for j := 0; j < n; j++ {
			m.Out = append(m.Out, ft.Out(j))
		}
		methods = append(methods, m)
	}
	return methods
}

// argValues converts handler arguments to reflect values for the given
// parameter types, using zero values for nil.
func argValues(args []any, in []reflect.Type) []reflect.Value {
	vals := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			vals[i] = reflect.Zero(in[i])
			continue
		}
		vals[i] = reflect.ValueOf(a)
	}
	return vals
}

// splitResults separates a trailing error from call results.
func splitResults(results []reflect.Value, returnsErr bool) ([]any, error) {
	var err error
	if returnsErr && len(results) > 0 {
		last := results[len(results)-1]
		results = results[:len(results)-1]
		if !last.IsNil() {
			err = last.Interface().(error)
		}
	}
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = r.Interface()
	}
	return out, err
}
