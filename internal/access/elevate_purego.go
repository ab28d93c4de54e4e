//go:build purego

package access

import "reflect"

// Supported reports whether Elevate can lift restrictions in this build.
func Supported() bool { return false }

// Elevate returns v unchanged when it is already unrestricted.
func Elevate(v reflect.Value) (reflect.Value, error) {
	if v.CanInterface() {
		return v, nil
	}
	return v, ErrUnsupported
}
