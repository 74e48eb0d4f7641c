package types

import (
	"bytes"
	"encoding/json"
)

// Nullable is a patch field for a nullable column. Set is false when the key
// was omitted; Null marks an explicit JSON null, which clears the column.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func NewNullable[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: v}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true, Null: true}
}

// HasValue reports whether the field carries a non-null value.
func (n Nullable[T]) HasValue() bool {
	return n.Set && !n.Null
}

// SQLValue is the value written to the column: nil for a cleared field.
func (n Nullable[T]) SQLValue() any {
	if n.Null {
		return nil
	}
	return n.Value
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		n.Null = true
		n.Value = zero
		return nil
	}

	n.Null = false
	return json.Unmarshal(data, &n.Value)
}
