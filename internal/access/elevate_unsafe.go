//go:build !purego

package access

import (
	"reflect"
	"unsafe"
)

// Supported reports whether Elevate can lift restrictions in this build.
func Supported() bool { return true }

// Elevate returns a value aliasing v's storage that can be read with
// Interface and, when v is addressable, written with Set.
func Elevate(v reflect.Value) (reflect.Value, error) {
	if v.CanInterface() {
		return v, nil
	}
	if !v.CanAddr() {
		return v, ErrNotAddressable
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem(), nil
}
