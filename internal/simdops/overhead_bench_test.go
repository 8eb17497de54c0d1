package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/simd/f64"
)

// lagrangeTaps matches the interpolator width of the engine.
const lagrangeTaps = 5

func TestFor_DotProduct(t *testing.T) {
	w64 := []float64{0, 0, 1, 0, 0}
	x64 := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 3.0, For[float64]().DotProductUnsafe(w64, x64), 1e-12)

	w32 := []float32{0.5, 0.5, 0, 0, 0}
	x32 := []float32{2, 4, 8, 16, 32}
	assert.InDelta(t, 3.0, float64(For[float32]().DotProductUnsafe(w32, x32)), 1e-6)
}

func TestFor_Interleave2(t *testing.T) {
	a := []float64{1, 3, 5}
	b := []float64{2, 4, 6}
	dst := make([]float64, 6)

	For[float64]().Interleave2(dst, a, b)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, dst)
}

// BenchmarkDirectF64DotProduct measures direct SIMD call overhead on a
// 5-tap kernel.
func BenchmarkDirectF64DotProduct(b *testing.B) {
	a := make([]float64, lagrangeTaps)
	c := make([]float64, lagrangeTaps)
	for i := range a {
		a[i] = float64(i) * 0.01
		c[i] = float64(i) * 0.02
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = f64.DotProductUnsafe(a, c)
	}
}

// BenchmarkIndirectF64DotProduct measures the indirect call through Ops.
func BenchmarkIndirectF64DotProduct(b *testing.B) {
	ops := For[float64]()
	a := make([]float64, lagrangeTaps)
	c := make([]float64, lagrangeTaps)
	for i := range a {
		a[i] = float64(i) * 0.01
		c[i] = float64(i) * 0.02
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = ops.DotProductUnsafe(a, c)
	}
}

// BenchmarkScalarDotProduct is the plain loop baseline.
func BenchmarkScalarDotProduct(b *testing.B) {
	a := make([]float64, lagrangeTaps)
	c := make([]float64, lagrangeTaps)
	for i := range a {
		a[i] = float64(i) * 0.01
		c[i] = float64(i) * 0.02
	}

	b.ReportAllocs()
	for b.Loop() {
		var sum float64
		for i := range a {
			sum += a[i] * c[i]
		}
		_ = sum
	}
}
