package proxy

import (
	"fmt"
	"reflect"
	"sync"
)

// Factory builds a stub instance around a Base.
type Factory func(*Base) any

// stub is a registered stub type for one contract set.
type stub struct {
	contracts []reflect.Type
	factory   Factory
	methods   map[string]*Method
}

var stubs = struct {
	mu        sync.RWMutex
	byPrimary map[reflect.Type][]*stub
}{byPrimary: make(map[reflect.Type][]*stub)}

// Register records a stub factory for a contract set. The first contract is
// the primary one; the rest are extra contracts the stub also implements.
// Register is meant for init functions of generated code and panics on
// misuse.
func Register(factory Factory, contract reflect.Type, extra ...reflect.Type) {
	contracts := append([]reflect.Type{contract}, extra...)
	s := &stub{
		contracts: contracts,
		factory:   factory,
		methods:   make(map[string]*Method),
	}
	for _, c := range contracts {
		if c == nil || c.Kind() != reflect.Interface {
			panic(fmt.Sprintf("proxy.Register: %v: %v", c, ErrNotInterface))
		}
		for _, m := range methodsOf(c) {
			if _, dup := s.methods[m.Name]; !dup {
				s.methods[m.Name] = m
			}
		}
	}

	stubs.mu.Lock()
	defer stubs.mu.Unlock()
	list := stubs.byPrimary[contract]
	for i, existing := range list {
		if sameSet(existing.contracts[1:], extra) {
			list[i] = s
			return
		}
	}
	stubs.byPrimary[contract] = append(list, s)
}

// New creates a proxy implementing contract and every extra contract,
// dispatching all calls to h.
func New(h Handler, contract reflect.Type, extra ...reflect.Type) (any, error) {
	if contract == nil || contract.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%v: %w", contract, ErrNotInterface)
	}
	for _, e := range extra {
		if e == nil || e.Kind() != reflect.Interface {
			return nil, fmt.Errorf("%v: %w", e, ErrNotInterface)
		}
	}
	s := lookupStub(contract, extra)
	if s == nil {
		return nil, fmt.Errorf("%w for %s", ErrNoStub, describeSet(contract, extra))
	}
	return s.factory(&Base{handler: h, stub: s}), nil
}

// Registered reports whether a stub exists for the contract set.
func Registered(contract reflect.Type, extra ...reflect.Type) bool {
	return lookupStub(contract, extra) != nil
}

func lookupStub(contract reflect.Type, extra []reflect.Type) *stub {
	stubs.mu.RLock()
	defer stubs.mu.RUnlock()
	for _, s := range stubs.byPrimary[contract] {
		if sameSet(s.contracts[1:], extra) {
			return s
		}
	}
	return nil
}

// sameSet compares two contract lists ignoring order.
func sameSet(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
outer:
	for _, x := range a {
		for _, y := range b {
			if x == y {
				continue outer
			}
		}
		return false
	}
	return true
}

func describeSet(contract reflect.Type, extra []reflect.Type) string {
	if len(extra) == 0 {
		return contract.String()
	}
	return fmt.Sprintf("%s%v", contract, extra)
}
