package engine

import (
	"math"

	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

// LagrangeReader reads frames from a History at fractional positions using
// 5-point, 4th-order Lagrange interpolation.
//
// For a read position p, the five taps are the samples at floor(p)-4 ..
// floor(p) in chronological order, placed on nodes 0..4. The polynomial
// through them is evaluated at node 2 + frac(p). At integer positions the
// weights reduce to a unit vector and the stored sample is returned exactly,
// two frames behind p.
type LagrangeReader[F simdops.Float] struct {
	hist *History[F]
	ops  *simdops.Ops[F]

	// Scratch space, reused for every frame
	weights [lagrangePoints]F
	taps    [lagrangePoints]F
	index   [lagrangePoints]int
}

// NewLagrangeReader creates a reader over hist.
func NewLagrangeReader[F simdops.Float](hist *History[F]) *LagrangeReader[F] {
	return &LagrangeReader[F]{
		hist: hist,
		ops:  simdops.For[F](),
	}
}

// lagrangeWeights fills w with the basis weights for a fractional offset in
// [0, 1). Weight k is the product over j != k of (t - j) / (k - j) with
// t = lagrangeCenter + offset.
func lagrangeWeights(w *[lagrangePoints]float64, offset float64) {
	t := lagrangeCenter + offset
	for k := range lagrangePoints {
		l := 1.0
		for j := range lagrangePoints {
			if j == k {
				continue
			}
			l *= (t - float64(j)) / float64(k-j)
		}
		w[k] = l
	}
}

// ReadFrame interpolates one frame at readIdx, scales it by gain and stores
// it at dst[ch][destSample] for every channel of the history.
func (r *LagrangeReader[F]) ReadFrame(dst [][]F, destSample int, readIdx float64, gain F) {
	idx0 := int(math.Floor(readIdx))
	offset := readIdx - float64(idx0)

	// Nodes 0..4 hold idx0-4 .. idx0
	for k := range lagrangePoints {
		r.index[k] = r.hist.wrap(idx0 - (lagrangePoints - 1) + k)
	}

	var w [lagrangePoints]float64
	lagrangeWeights(&w, offset)
	for k, v := range w {
		r.weights[k] = F(v)
	}

	channels := min(len(dst), len(r.hist.data))
	for ch := range channels {
		src := r.hist.data[ch]
		for k, idx := range r.index {
			r.taps[k] = src[idx]
		}
		dst[ch][destSample] = r.ops.DotProductUnsafe(r.weights[:], r.taps[:]) * gain
	}
}

// Sample interpolates a single channel at readIdx without gain.
func (r *LagrangeReader[F]) Sample(ch int, readIdx float64) F {
	idx0 := int(math.Floor(readIdx))

	var w [lagrangePoints]float64
	lagrangeWeights(&w, readIdx-float64(idx0))

	src := r.hist.data[ch]
	var sum float64
	for k := range lagrangePoints {
		sum += w[k] * float64(src[r.hist.wrap(idx0-(lagrangePoints-1)+k)])
	}
	return F(sum)
}
