package mirror

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestOn_Nil(t *testing.T) {
	v := On(nil)
	if v.Class() != ObjectClass {
		t.Errorf("class = %s, want %s", v.Class(), ObjectClass)
	}
	if v.Get() != nil {
		t.Errorf("Get = %v, want nil", v.Get())
	}
	if v.IsType() {
		t.Error("On(nil) should not be a type value")
	}
	if _, err := v.Call("anything"); !errors.Is(err, ErrNoMatchingMethod) {
		t.Errorf("Call on nil: %v, want ErrNoMatchingMethod", err)
	}
}

func TestOn_PointerAliasesCaller(t *testing.T) {
	c := &calc{}
	v := On(c)
	if v.Class().Type() != reflect.TypeFor[calc]() {
		t.Fatalf("class type = %s, want calc", v.Class().Type())
	}
	if v.Get() != any(c) {
		t.Error("Get should return the wrapped pointer")
	}
	if _, err := v.Call("Hello", "ada"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if c.last != "ada" {
		t.Errorf("last = %q, want the call to reach the caller's value", c.last)
	}
}

func TestOn_ValueIsCopied(t *testing.T) {
	d := derived{Name: "a"}
	v := On(d)
	if _, err := v.Set("Name", "b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if d.Name != "a" {
		t.Error("writing a wrapped copy changed the original")
	}
	got, err := v.GetField("Name")
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if got != "b" {
		t.Errorf("Name = %v, want b", got)
	}
}

func TestField_TypedWithDeclaredType(t *testing.T) {
	f, err := On(&derived{Name: "n"}).Field("Name")
	if err != nil {
		t.Fatalf("Field: %v", err)
	}
	if f.Class() != System.ClassOf(reflect.TypeFor[string]()) {
		t.Errorf("class = %s, want string", f.Class())
	}
}

func TestField_NotFound(t *testing.T) {
	_, err := On(&derived{}).Field("missing")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
	var me *Error
	if !errors.As(err, &me) || me.Name != "missing" {
		t.Errorf("error does not name the field: %v", err)
	}
}

func TestStaticMembers(t *testing.T) {
	calcCount = 1
	v := OnType(reflect.TypeFor[calc]())
	if !v.IsType() {
		t.Fatal("OnType should wrap a type")
	}
	if v.Get() != any(v.Class()) {
		t.Error("Get on a type value should return its class")
	}

	count, err := v.GetField("Count")
	if err != nil {
		t.Fatalf("GetField: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %v, want 1", count)
	}
	if _, err := v.Set("Count", 4); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calcCount != 4 {
		t.Errorf("calcCount = %d, want 4", calcCount)
	}

	r, err := v.Call("Twice", 21)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if r.Get() != 42 {
		t.Errorf("Twice = %v, want 42", r.Get())
	}

	// Instance members need an instance.
	if _, err := v.Call("Hello", "x"); !errors.Is(err, ErrInvocation) {
		t.Errorf("instance call on type: %v, want ErrInvocation", err)
	}
	// Static members are reachable from an instance.
	if kind, err := On(&calc{}).GetField("Kind"); err != nil || kind != "calculator" {
		t.Errorf("Kind from instance = %v, %v", kind, err)
	}
}

func TestFields_StaticMatchesReceiver(t *testing.T) {
	all, err := OnType(reflect.TypeFor[calc]()).Fields()
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	var names []string
	for _, nv := range all {
		names = append(names, nv.Name)
	}
	if got := strings.Join(names, ","); got != "Count,Kind" {
		t.Errorf("static fields = %s, want Count,Kind", got)
	}
}

func TestCall_Results(t *testing.T) {
	c := &calc{last: "x"}
	v := On(c)

	r, err := v.Call("Reset")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !r.Equal(v) {
		t.Error("a method without results should return the receiver")
	}
	if c.last != "" {
		t.Errorf("last = %q after Reset", c.last)
	}

	r, err = v.Call("Split", "a,b")
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if got, ok := r.Get().([]any); !ok || len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Split = %#v, want [a b]", r.Get())
	}

	r, err = v.Call("Sum", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if r.Get() != 6 {
		t.Errorf("Sum = %v, want 6", r.Get())
	}

	r, err = v.Call("Fail", "")
	if err != nil {
		t.Fatalf("Fail with nil error: %v", err)
	}
	if !r.Equal(v) {
		t.Error("a nil error result should return the receiver")
	}
}

func TestCall_Failures(t *testing.T) {
	v := On(&calc{})

	_, err := v.Call("Fail", "x")
	if !errors.Is(err, ErrInvocation) || !errors.Is(err, errBoom) {
		t.Errorf("Fail = %v, want ErrInvocation wrapping errBoom", err)
	}

	_, err = v.Call("Panic")
	if !errors.Is(err, ErrInvocation) || !strings.Contains(err.Error(), "calc panicked") {
		t.Errorf("Panic = %v, want ErrInvocation with the panic value", err)
	}

	_, err = v.Call("absentMethod")
	if !errors.Is(err, ErrNoMatchingMethod) {
		t.Fatalf("absentMethod = %v, want ErrNoMatchingMethod", err)
	}
	if !strings.Contains(err.Error(), "absentMethod") {
		t.Errorf("error %q does not name the method", err)
	}

	_, err = v.Call("Hello", 1, 2)
	if !errors.Is(err, ErrNoMatchingMethod) || !strings.Contains(err.Error(), "(int, int)") {
		t.Errorf("Hello(1, 2) = %v, want argument types in the error", err)
	}
}

func TestNew(t *testing.T) {
	v, err := OnType(reflect.TypeFor[someType]()).New("hello")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if v.Class().Type() != reflect.TypeFor[someType]() {
		t.Errorf("class = %s, want someType", v.Class())
	}
	if got := v.Get().(someType).s; got != "hello" {
		t.Errorf("s = %q, want hello", got)
	}

	v, err = OnType(reflect.TypeFor[someType]()).New(3)
	if err != nil {
		t.Fatalf("New(3): %v", err)
	}
	if got := v.Get().(someType).s; got != "xxx" {
		t.Errorf("s = %q, want xxx", got)
	}

	_, err = OnType(reflect.TypeFor[someType]()).New(-1)
	if !errors.Is(err, ErrInvocation) || !errors.Is(err, errBoom) {
		t.Errorf("New(-1) = %v, want ErrInvocation wrapping errBoom", err)
	}

	_, err = OnType(reflect.TypeFor[someType]()).New(1.5)
	if !errors.Is(err, ErrNoMatchingConstructor) {
		t.Errorf("New(1.5) = %v, want ErrNoMatchingConstructor", err)
	}
}

func TestNew_Implicit(t *testing.T) {
	v, err := OnType(reflect.TypeFor[calc]()).New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := v.Get().(calc); !ok {
		t.Fatalf("Get = %T, want calc", v.Get())
	}
	r, err := v.Call("Hello", "x")
	if err != nil || r.Get() != "hello x" {
		t.Errorf("Hello on constructed value = %v, %v", r, err)
	}

	p, err := OnType(reflect.TypeFor[*calc]()).New()
	if err != nil {
		t.Fatalf("New pointer: %v", err)
	}
	if c, ok := p.Get().(*calc); !ok || c == nil {
		t.Errorf("Get = %#v, want non-nil *calc", p.Get())
	}

	if _, err := OnType(reflect.TypeFor[error]()).New(); !errors.Is(err, ErrNoMatchingConstructor) {
		t.Errorf("New on interface = %v, want ErrNoMatchingConstructor", err)
	}
}

func TestEqualAndHash(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"ints", On(3), On(3), true},
		{"different ints", On(3), On(4), false},
		{"slices", On([]int{1, 2}), On([]int{1, 2}), true},
		{"maps", On(map[string]int{"a": 1}), On(map[string]int{"a": 1}), true},
		{"same pointer", On(&calcCount), On(&calcCount), true},
		{"types", OnType(reflect.TypeFor[calc]()), OnType(reflect.TypeFor[calc]()), true},
		{"type and instance", OnType(reflect.TypeFor[calc]()), On(calc{}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Fatalf("Equal = %v, want %v", got, tt.want)
			}
			if tt.want && tt.a.Hash() != tt.b.Hash() {
				t.Errorf("equal values hash differently")
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := On(42).String(); got != "42" {
		t.Errorf("String = %q, want 42", got)
	}
	if got := On(nil).String(); got != "nil" {
		t.Errorf("String = %q, want nil", got)
	}
	if got := OnType(reflect.TypeFor[string]()).String(); got != "string" {
		t.Errorf("String = %q, want string", got)
	}
}
