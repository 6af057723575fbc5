// Package feature defines the named feature vector shared by the collectors,
// the override lists, and the risk classifier.
package feature

import (
	"maps"
	"slices"
)

// Vector maps a feature name to a scalar value.
// Values are restricted to bool, int, and float64 so that every entry has a
// well-defined numeric form for scoring and a natural JSON form for display.
type Vector map[string]any

// New returns an empty Vector.
func New() Vector {
	return make(Vector)
}

// SetBool stores a boolean feature.
func (v Vector) SetBool(name string, b bool) {
	v[name] = b
}

// SetInt stores an integer feature.
func (v Vector) SetInt(name string, n int) {
	v[name] = n
}

// SetFloat stores a floating point feature.
func (v Vector) SetFloat(name string, f float64) {
	v[name] = f
}

// Float returns the numeric form of the named feature.
// Missing keys and values of unsupported types read as 0, and booleans read
// as 0 or 1. Scoring relies on this to never fail on an incomplete vector.
func (v Vector) Float(name string) float64 {
	switch val := v[name].(type) {
	case bool:
		if val {
			return 1
		}
		return 0
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	case float32:
		return float64(val)
	default:
		return 0
	}
}

// Bool reports whether the named feature is a true boolean.
func (v Vector) Bool(name string) bool {
	b, ok := v[name].(bool)
	return ok && b
}

// Int returns the named feature as an int, or 0 when absent or non-integral.
func (v Vector) Int(name string) int {
	switch val := v[name].(type) {
	case int:
		return val
	case int64:
		return int(val)
	default:
		return 0
	}
}

// Merge copies every entry of other into v, overwriting existing names.
func (v Vector) Merge(other Vector) {
	maps.Copy(v, other)
}

// Select builds the ordered numeric input for a schema.
// Names absent from the vector contribute 0.
func (v Vector) Select(schema []string) []float64 {
	out := make([]float64, len(schema))
	for i, name := range schema {
		out[i] = v.Float(name)
	}
	return out
}

// Names returns the feature names in sorted order.
func (v Vector) Names() []string {
	return slices.Sorted(maps.Keys(v))
}

// Clone returns a shallow copy of the vector.
func (v Vector) Clone() Vector {
	return maps.Clone(v)
}
