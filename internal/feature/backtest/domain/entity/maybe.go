// Package entity defines the domain models for the backtest feature.
package entity

// Maybe holds a value that may be absent. The zero value is absent.
//
// Warm-up periods and the first return have no value. An absent entry only
// becomes a number where the caller asks for it with Or.
type Maybe[T any] struct {
	v  T
	ok bool
}

// Some wraps a defined value.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{v: v, ok: true}
}

// None returns an absent value.
func None[T any]() Maybe[T] {
	return Maybe[T]{}
}

// Get returns the value and whether it is defined.
func (m Maybe[T]) Get() (T, bool) {
	return m.v, m.ok
}

// IsDefined reports whether a value is present.
func (m Maybe[T]) IsDefined() bool {
	return m.ok
}

// Or returns the value, or fallback when absent.
func (m Maybe[T]) Or(fallback T) T {
	if !m.ok {
		return fallback
	}
	return m.v
}

// Value is a per-period float observation.
type Value = Maybe[float64]

// Series is a derived series aligned index-for-index with a PriceSeries.
type Series []Value

// DefinedCount returns the number of defined entries.
func (s Series) DefinedCount() int {
	n := 0
	for _, v := range s {
		if v.IsDefined() {
			n++
		}
	}
	return n
}

// DefinedValues returns the defined entries in order, skipping gaps.
func (s Series) DefinedValues() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if x, ok := v.Get(); ok {
			out = append(out, x)
		}
	}
	return out
}

// Last returns the last defined entry.
func (s Series) Last() Value {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].IsDefined() {
			return s[i]
		}
	}
	return None[float64]()
}
