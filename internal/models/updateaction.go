package models

// UpdateAction is an explicit optional-of-optional for update use cases:
// a field either keeps its current value or changes to the given one.
// T may itself be a pointer so a caller can clear an optional field.
type UpdateAction[T any] struct {
	set   bool
	value T
}

// Keep returns an action that leaves the field untouched.
func Keep[T any]() UpdateAction[T] {
	return UpdateAction[T]{}
}

// SetTo returns an action that changes the field to value.
func SetTo[T any](value T) UpdateAction[T] {
	return UpdateAction[T]{set: true, value: value}
}

// ShouldChange reports whether the action carries a new value.
func (u UpdateAction[T]) ShouldChange() bool {
	return u.set
}

// Value returns the new value. Only meaningful when ShouldChange is true.
func (u UpdateAction[T]) Value() T {
	return u.value
}

// Apply returns the new value when set, the existing one otherwise.
func (u UpdateAction[T]) Apply(existing T) T {
	if u.set {
		return u.value
	}
	return existing
}
