package domain

// Optional wraps a value that may be absent. It distinguishes "field not
// supplied" from "field supplied as its zero value", which plain pointers
// cannot express for nullable fields: Optional[*T] can be unset, set to nil
// (explicit clear), or set to a value.
//
// The zero value is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding the given value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value was supplied.
func (o Optional[T]) IsSet() bool {
	return o.set
}
