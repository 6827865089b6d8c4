// Package ptr holds generic pointer helpers used mostly in tests and
// when building optional config values.
package ptr

// Of returns a pointer to v.
func Of[T any](v T) *T { return &v }

// Deref returns the value p points to, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T

		return zero
	}

	return *p
}
