package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLagrangeWeights_IntegerOffset(t *testing.T) {
	var w [lagrangePoints]float64
	lagrangeWeights(&w, 0)

	// Exactly a unit vector on the center node
	assert.Equal(t, [lagrangePoints]float64{0, 0, 1, 0, 0}, w)
}

func TestLagrangeWeights_PartitionOfUnity(t *testing.T) {
	var w [lagrangePoints]float64
	for i := range 20 {
		offset := float64(i) / 20
		lagrangeWeights(&w, offset)

		var sum float64
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12, "offset %g", offset)
	}
}

// cubic is an arbitrary polynomial of degree <= 4.
func cubic(x float64) float64 {
	return 0.001*x*x*x - 0.02*x*x + 0.5*x + 1
}

func TestLagrangeReader_PolynomialExact(t *testing.T) {
	const n = 48
	h := NewHistory[float64](1, 64)
	buf := [][]float64{make([]float64, n)}
	for i := range n {
		buf[0][i] = cubic(float64(i))
	}
	h.Write(buf, 0, n)

	r := NewLagrangeReader(h)
	dst := [][]float64{make([]float64, 1)}

	for i := range 100 {
		readIdx := 6 + float64(i)*0.37
		want := cubic(readIdx - LatencySamples)

		assert.InDelta(t, want, r.Sample(0, readIdx), 1e-9, "Sample at %g", readIdx)

		r.ReadFrame(dst, 0, readIdx, 1)
		assert.InDelta(t, want, dst[0][0], 1e-9, "ReadFrame at %g", readIdx)
	}
}

func TestLagrangeReader_IntegerReadIsExact(t *testing.T) {
	h := NewHistory[float32](2, 16)
	buf := [][]float32{
		{0.1, -0.7, 0.3, 0.9, -0.2, 0.5, 0.8, -0.4},
		{1, 2, 3, 4, 5, 6, 7, 8},
	}
	h.Write(buf, 0, 8)

	r := NewLagrangeReader(h)
	dst := [][]float32{make([]float32, 1), make([]float32, 1)}

	for idx := 4; idx < 8; idx++ {
		r.ReadFrame(dst, 0, float64(idx), 1)
		assert.Equal(t, buf[0][idx-LatencySamples], dst[0][0])
		assert.Equal(t, buf[1][idx-LatencySamples], dst[1][0])
	}
}

func TestLagrangeReader_Gain(t *testing.T) {
	h := NewHistory[float64](1, 16)
	h.Write([][]float64{{2, 2, 2, 2, 2, 2, 2, 2}}, 0, 8)

	r := NewLagrangeReader(h)
	dst := [][]float64{make([]float64, 3)}
	r.ReadFrame(dst, 1, 6.5, 0.25)

	assert.InDelta(t, 0.5, dst[0][1], 1e-12)
	assert.Zero(t, dst[0][0])
	assert.Zero(t, dst[0][2])
}

func TestLagrangeReader_WrapsAcrossBufferEnd(t *testing.T) {
	const length = 32
	h := NewHistory[float64](1, length)

	// Write past the end so the newest frames wrap to the front
	const n = length + 10
	buf := [][]float64{make([]float64, n)}
	for i := range n {
		buf[0][i] = math.Sin(float64(i) * 0.1)
	}
	h.Write(buf, 0, n)

	r := NewLagrangeReader(h)

	// Absolute index 35 wraps to 3; its taps straddle the boundary.
	got := r.Sample(0, 3.5)
	want := r.Sample(0, 3.5+length)
	assert.InDelta(t, want, got, 1e-15)

	// Smooth signal: interpolated value close to the true one.
	assert.InDelta(t, math.Sin((35.5-LatencySamples)*0.1), got, 1e-6)
}
