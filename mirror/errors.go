package mirror

import (
	"errors"
	"reflect"
	"strings"
)

// Failure kinds. Every *Error matches exactly one of them with errors.Is.
var (
	ErrMemberNotFound        = errors.New("member not found")
	ErrNoMatchingMethod      = errors.New("no matching method")
	ErrNoMatchingConstructor = errors.New("no matching constructor")
	ErrInvocation            = errors.New("invocation failed")
	ErrTypeLoading           = errors.New("type loading failed")
)

// Error is returned by every mirror operation.
type Error struct {
	Kind  error
	Op    string
	Name  string
	Class string
	Types []reflect.Type
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("mirror: ")
	b.WriteString(e.Op)
	if e.Name != "" {
		b.WriteString(" ")
		b.WriteString(e.Name)
	}
	if e.Types != nil {
		b.WriteString("(")
		b.WriteString(typeList(e.Types))
		b.WriteString(")")
	}
	if e.Class != "" {
		b.WriteString(" on ")
		b.WriteString(e.Class)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func typeList(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		if t == NullType {
			names[i] = "nil"
			continue
		}
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

func fail(kind error, op, name string, c *Class, types []reflect.Type, err error) *Error {
	e := &Error{Kind: kind, Op: op, Name: name, Types: types, Err: err}
	if c != nil {
		e.Class = c.Name()
	}
	return e
}
