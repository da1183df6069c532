// pkg/model/rules_test.go
package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeRuleClamp(t *testing.T) {
	rule := Between(0, 100)

	assert.Equal(t, 0.0, rule.Clamp(-10))
	assert.Equal(t, 50.0, rule.Clamp(50))
	assert.Equal(t, 100.0, rule.Clamp(110))
	assert.True(t, math.IsNaN(rule.Clamp(math.NaN())))
}

func TestRangeRuleContains(t *testing.T) {
	rule := Between(-20, 60)

	assert.True(t, rule.Contains(-20))
	assert.True(t, rule.Contains(60))
	assert.False(t, rule.Contains(-20.5))
	assert.False(t, rule.Contains(61))
	// Missing markers are never out of range
	assert.True(t, rule.Contains(math.NaN()))
}

func TestNonNegative(t *testing.T) {
	rule := NonNegative()

	assert.Equal(t, 0.0, rule.Clamp(-3))
	assert.Equal(t, 1e9, rule.Clamp(1e9))
	assert.True(t, rule.Contains(0))
	assert.False(t, rule.Contains(-0.001))
}

func TestRangePolicyCopy(t *testing.T) {
	p := RangePolicy{"GHI": Between(0, 1500)}
	cp := p.Copy()
	cp["GHI"] = Between(0, 1)

	rule, ok := p.Rule("GHI")
	assert.True(t, ok)
	assert.Equal(t, 1500.0, rule.Max)

	_, ok = p.Rule("DNI")
	assert.False(t, ok)
}
