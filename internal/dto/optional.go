package dto

import "encoding/json"

// Optional tracks whether a field was present in a JSON payload.
// A present null leaves Set true with the zero Value, which lets a
// partial update clear nullable fields.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Apply writes the value into dst when present and reports whether it did.
func (o Optional[T]) Apply(dst *T) bool {
	if o.Set {
		*dst = o.Value
	}
	return o.Set
}
