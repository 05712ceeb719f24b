package ast

// Copy-on-write traversal helpers for rewrite passes. A new slice is
// only allocated once an element changes.

// MapSlice applies fn to each element. Returns (newSlice, true) if any
// element changed, or (original, false) if all elements are identical.
// The first error aborts the walk.
func MapSlice[T comparable](items []T, fn func(T) (T, error)) ([]T, bool, error) {
	var out []T
	modified := false
	for i, item := range items {
		newItem, err := fn(item)
		if err != nil {
			return nil, false, err
		}
		if newItem != item && !modified {
			out = make([]T, len(items))
			copy(out[:i], items[:i])
			modified = true
		}
		if modified {
			out[i] = newItem
		}
	}
	if !modified {
		return items, false, nil
	}
	return out, true, nil
}
