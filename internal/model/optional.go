package model

// Optional distinguishes an absent field from one explicitly set to null.
// Set=false means "not supplied"; Set=true with a nil Value means "set to NULL".
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns an Optional that clears the field.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}
