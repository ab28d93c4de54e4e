// Package access lifts Go's export restrictions on reflect values obtained
// through unexported struct fields.
package access

import "errors"

var (
	// ErrUnsupported is returned when the build cannot elevate access.
	ErrUnsupported = errors.New("access elevation not supported in this build")

	// ErrNotAddressable is returned for restricted values with no backing storage.
	ErrNotAddressable = errors.New("restricted value is not addressable")
)
