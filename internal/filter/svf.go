// Package filter provides the resonant multi-mode post-filter of the tape-stop
// engine: a topology-preserving-transform state-variable filter that blends
// continuously between lowpass, bandpass and highpass, and a Bank that
// cascades one or two of them.
package filter

import "math"

// SVF coefficient limits
const (
	// maxCutoffRatio keeps the cutoff below Nyquist so tan() stays finite.
	maxCutoffRatio = 0.49

	// minCutoffHz is the lowest accepted cutoff frequency.
	minCutoffHz = 1.0

	// minResonance is the lowest accepted Q.
	minResonance = 0.01
)

// SVF is a 2-pole state-variable filter in TPT form with per-channel state.
//
// The output is a weighted sum of the simultaneous lowpass, bandpass and
// highpass responses. SetMode moves the weights along LP (0) -> BP (0.5) ->
// HP (1) using a sine power law so the blend keeps its loudness.
type SVF struct {
	g  float64 // tan(pi * fc / fs)
	r2 float64 // 1 / Q
	h  float64 // 1 / (1 + r2*g + g*g)

	lpMult float64
	bpMult float64
	hpMult float64

	s1 []float64 // first integrator, per channel
	s2 []float64 // second integrator, per channel
}

// NewSVF creates a lowpass SVF for the given channel count. Call
// SetCoefficients before processing.
func NewSVF(channels int) *SVF {
	s := &SVF{}
	s.Resize(channels)
	s.SetMode(ModeLowpass)
	return s
}

// Resize reallocates the per-channel state and clears it.
func (s *SVF) Resize(channels int) {
	if channels < 1 {
		channels = 1
	}
	s.s1 = make([]float64, channels)
	s.s2 = make([]float64, channels)
}

// SetCoefficients updates cutoff (Hz) and resonance (Q). The state is kept,
// so changes are continuous.
func (s *SVF) SetCoefficients(sampleRate, cutoff, q float64) {
	cutoff = math.Max(minCutoffHz, math.Min(cutoff, sampleRate*maxCutoffRatio))
	q = math.Max(q, minResonance)

	s.g = math.Tan(math.Pi * cutoff / sampleRate)
	s.r2 = 1 / q
	s.h = 1 / (1 + s.r2*s.g + s.g*s.g)
}

// SetMode sets the response blend: 0 lowpass, 0.5 bandpass, 1 highpass.
func (s *SVF) SetMode(mode float64) {
	mode = math.Max(0, math.Min(1, mode))

	lp := 1 - 2*math.Min(0.5, mode)
	bp := 1 - math.Abs(2*mode-1)
	hp := 2*math.Max(0.5, mode) - 1

	s.lpMult = math.Sin(math.Pi / 2 * lp)
	s.bpMult = math.Sin(math.Pi/2*bp) * math.Sqrt2
	s.hpMult = math.Sin(math.Pi / 2 * hp)
}

// ProcessSample filters one sample of channel ch.
func (s *SVF) ProcessSample(ch int, x float64) float64 {
	s1, s2 := s.s1[ch], s.s2[ch]

	hp := s.h * (x - s1*(s.g+s.r2) - s2)
	bp := hp*s.g + s1
	s1 = hp*s.g + bp
	lp := bp*s.g + s2
	s2 = bp*s.g + lp

	s.s1[ch], s.s2[ch] = s1, s2

	return s.lpMult*lp + s.bpMult*bp + s.hpMult*hp
}

// Reset clears the integrator state of every channel.
func (s *SVF) Reset() {
	clear(s.s1)
	clear(s.s2)
}
