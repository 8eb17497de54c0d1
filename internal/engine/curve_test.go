package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateAlpha(t *testing.T) {
	tests := []struct {
		name   string
		factor float64
		want   float64
	}{
		{"zero selects min alpha", 0, MinAlpha},
		{"tiny positive selects min alpha", 0.001, MinAlpha},
		{"tiny negative selects min alpha", -0.004, MinAlpha},
		{"full negative", -1, 1 - MinAlpha},
		{"full positive", 1, 1 - 1/MinAlpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateAlpha(tt.factor), 1e-12)
		})
	}
}

func TestApplyExpScale_Endpoints(t *testing.T) {
	for _, factor := range []float64{-1, -0.5, -0.1, 0, 0.1, 0.5, 1} {
		alpha := CalculateAlpha(factor)
		assert.InDelta(t, 0.0, ApplyExpScale(0, alpha), 1e-12, "factor %g at 0", factor)
		assert.InDelta(t, 1.0, ApplyExpScale(1, alpha), 1e-9, "factor %g at 1", factor)
	}
}

func TestApplyExpScale_Monotonic(t *testing.T) {
	for _, factor := range []float64{-1, -0.3, 0, 0.3, 1} {
		alpha := CalculateAlpha(factor)
		prev := ApplyExpScale(0, alpha)
		for i := 1; i <= 100; i++ {
			v := ApplyExpScale(float64(i)/100, alpha)
			assert.Greater(t, v, prev, "factor %g not increasing at step %d", factor, i)
			prev = v
		}
	}
}

func TestApplyExpScale_NearLinearAtMinAlpha(t *testing.T) {
	for i := 0; i <= 10; i++ {
		x := float64(i) / 10
		assert.InDelta(t, x, ApplyExpScale(x, MinAlpha), 3e-3)
	}
}

func TestApplyExpScale_CurveDirection(t *testing.T) {
	// Negative factors start slow, positive factors start fast.
	slow := ApplyExpScale(0.5, CalculateAlpha(-1))
	fast := ApplyExpScale(0.5, CalculateAlpha(1))

	assert.Less(t, slow, 0.5)
	assert.Greater(t, fast, 0.5)
}

func TestCurveSettings_Speed(t *testing.T) {
	full := NewCurveSettings(0, 0, 1)

	// Slowdown runs from real time to rest
	assert.InDelta(t, 1.0, full.Speed(Slowdown, 0), 1e-9)
	assert.InDelta(t, 0.0, full.Speed(Slowdown, 1), 1e-12)

	// Speedup runs from rest to real time
	assert.InDelta(t, 0.0, full.Speed(Speedup, 0), 1e-12)
	assert.InDelta(t, 1.0, full.Speed(Speedup, 1), 1e-9)
}

func TestCurveSettings_Window(t *testing.T) {
	// Only the middle of the curve is traversed
	c := NewCurveSettings(0, 0.25, 0.75)

	assert.InDelta(t, ApplyExpScale(0.75, MinAlpha), c.Speed(Slowdown, 0), 1e-12)
	assert.InDelta(t, ApplyExpScale(0.25, MinAlpha), c.Speed(Slowdown, 1), 1e-12)
	assert.InDelta(t, ApplyExpScale(0.25, MinAlpha), c.Speed(Speedup, 0), 1e-12)
	assert.InDelta(t, ApplyExpScale(0.75, MinAlpha), c.Speed(Speedup, 1), 1e-12)
}

func TestCurveSettings_SpeedBounded(t *testing.T) {
	for _, factor := range []float64{-1, 0, 1} {
		c := NewCurveSettings(factor, 0, 1)
		for i := 0; i <= 50; i++ {
			p := float64(i) / 50
			for _, mode := range []Mode{Slowdown, Speedup} {
				v := c.Speed(mode, p)
				assert.GreaterOrEqual(t, v, -1e-12)
				assert.LessOrEqual(t, v, 1+1e-9)
			}
		}
	}
}
