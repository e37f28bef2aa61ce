// Package ptr helps with the optional fields of request bodies.
package ptr

import "strings"

func To[T any](v T) *T {
	return &v
}

// Value returns what p points to, or the zero value of T when p is nil.
func Value[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}

	return *p
}

// Blank reports whether s is set but holds only whitespace.
func Blank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}
