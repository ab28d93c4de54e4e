package mirror

import (
	"errors"
	"reflect"
	"strings"
)

type base struct {
	ID     int
	shadow string
	secret string
}

func (b *base) Ident() int { return b.ID }

type derived struct {
	base
	Name   string
	shadow string
	count  int
}

type calc struct {
	last string
}

var errBoom = errors.New("boom")

func (c *calc) Hello(name string) string {
	c.last = name
	return "hello " + name
}

func (c *calc) Fail(msg string) error {
	if msg == "" {
		return nil
	}
	return errBoom
}

func (c *calc) Panic() { panic("calc panicked") }

func (c *calc) Reset() { c.last = "" }

func (c *calc) Split(s string) (string, string) {
	before, after, _ := strings.Cut(s, ",")
	return before, after
}

func (c *calc) Sum(nums ...int) int {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total
}

type someType struct {
	s string
}

type frozen struct {
	Version string `mirror:"final"`
}

var calcCount = 1

func init() {
	System.Define("", reflect.TypeFor[calc]()).
		Method("M", func(c *calc, i int) string { return "int" }).
		Method("M", func(c *calc, i *int) string { return "*int" }).
		Method("Box", func(c *calc, i *int) int { return *i + 1 }).
		Method("S", func(c *calc, s string) string { return "string:" + s }).
		Method("V", func(c *calc, x int) string { return "public" }).
		PrivateMethod("V", func(c *calc, x int) string { return "private" }).
		PrivateMethod("hidden", func(c *calc, x int) int { return x * 10 }).
		PrivateMethod("hiddenBox", func(c calc, x *int) int { return *x * 100 }).
		StaticMethod("Twice", func(n int) int { return 2 * n }).
		StaticField("Count", &calcCount).
		Const("Kind", "calculator")

	System.Define("", reflect.TypeFor[base]()).
		PrivateMethod("baseOnly", func(b *base) int { return b.ID + 1 })

	System.Define("acme.SomeType", reflect.TypeFor[someType]()).
		Constructor(func(s string) *someType { return &someType{s: s} }).
		PrivateConstructor(func(n int) (someType, error) {
			if n < 0 {
				return someType{}, errBoom
			}
			return someType{s: strings.Repeat("x", n)}, nil
		})
}
