// pkg/model/rules.go
package model

import "math"

// RangeRule is a per-column domain constraint expressed as a closed
// interval. Open sides use +/-Inf, so the non-negative constraint is
// [0, +Inf).
type RangeRule struct {
	Min float64
	Max float64
}

// NonNegative returns the rule requiring value >= 0
func NonNegative() RangeRule {
	return RangeRule{Min: 0, Max: math.Inf(1)}
}

// Between returns the rule requiring lo <= value <= hi
func Between(lo, hi float64) RangeRule {
	return RangeRule{Min: lo, Max: hi}
}

// Clamp clips a value into the rule's bounds. Missing markers (NaN) pass
// through untouched.
func (r RangeRule) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether a value satisfies the rule. Missing markers
// are never counted as out of range.
func (r RangeRule) Contains(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	return v >= r.Min && v <= r.Max
}

// RangePolicy maps column names to their domain constraints. It is static
// configuration data, never derived from the measurements themselves.
type RangePolicy map[string]RangeRule

// Rule returns the constraint configured for a column, if any
func (p RangePolicy) Rule(column string) (RangeRule, bool) {
	r, ok := p[column]
	return r, ok
}

// Copy returns an independent copy of the policy
func (p RangePolicy) Copy() RangePolicy {
	out := make(RangePolicy, len(p))
	for col, rule := range p {
		out[col] = rule
	}
	return out
}
