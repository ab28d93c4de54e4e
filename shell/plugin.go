package shell

import (
	"fmt"
	"plugin"
	"reflect"
)

// OpenProcessor loads a command processor exported by a Go plugin. symbol
// names either a variable holding the processor or a func() returning it.
// The result is meant for Redirector.Adding.
func OpenProcessor(path, symbol string) (any, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}
	sym, err := p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: %w", path, err)
	}
	return processorFromSymbol(sym)
}

func processorFromSymbol(sym any) (any, error) {
	v := reflect.ValueOf(sym)
	switch {
	case v.Kind() == reflect.Func && v.Type().NumIn() == 0 && v.Type().NumOut() == 1:
		v = v.Call(nil)[0]
	case v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Interface:
		// A variable of interface type is looked up as a pointer to it.
		v = v.Elem()
	}
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() || isNilValue(v) {
		return nil, fmt.Errorf("plugin symbol %T holds no processor", sym)
	}
	if v.MethodByName("CreateSession").Kind() != reflect.Func {
		return nil, fmt.Errorf("plugin symbol %s has no CreateSession method", v.Type())
	}
	return v.Interface(), nil
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
