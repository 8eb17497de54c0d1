// Package analysis provides offline measurements of rendered audio: dominant
// frequency (pitch) tracking over short windows, RMS and peak level, and the
// position of the trailing silence. It backs the engine's end-to-end tests
// and the -analyze report of the WAV tool.
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// minWindow is the smallest analysis window that still has neighbours
// around every non-DC bin.
const minWindow = 4

// Analyzer measures the dominant frequency of fixed-size frames. It reuses
// its FFT plan, window and scratch buffers, so one Analyzer should be used
// per goroutine.
type Analyzer struct {
	size   int
	fft    *fourier.FFT
	window []float64
	seq    []float64
	coeffs []complex128
	mags   []float64
}

// NewAnalyzer creates an analyzer for frames of size samples (Hann window).
func NewAnalyzer(size int) *Analyzer {
	size = max(size, minWindow)

	w := make([]float64, size)
	for i := range w {
		w[i] = 1
	}
	window.Hann(w)

	return &Analyzer{
		size:   size,
		fft:    fourier.NewFFT(size),
		window: w,
		seq:    make([]float64, size),
		coeffs: make([]complex128, size/2+1),
		mags:   make([]float64, size/2+1),
	}
}

// Size returns the frame size.
func (a *Analyzer) Size() int {
	return a.size
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of frame, refined by parabolic interpolation over the
// neighbouring bins. Short frames are zero-padded. It returns 0 for a
// silent frame.
func (a *Analyzer) DominantFrequency(frame []float64, sampleRate float64) float64 {
	clear(a.seq)
	n := copy(a.seq, frame)
	floats.Mul(a.seq[:n], a.window[:n])

	a.coeffs = a.fft.Coefficients(a.coeffs, a.seq)
	for i, c := range a.coeffs {
		a.mags[i] = cmplx.Abs(c)
	}
	a.mags[0] = 0

	k := floats.MaxIdx(a.mags)
	if a.mags[k] == 0 {
		return 0
	}

	delta := 0.0
	if k > 0 && k < len(a.mags)-1 {
		l, c, r := a.mags[k-1], a.mags[k], a.mags[k+1]
		if d := l - 2*c + r; d != 0 {
			delta = 0.5 * (l - r) / d
		}
	}

	return (float64(k) + delta) * sampleRate / float64(a.size)
}

// PitchPoint is one frame of a pitch track.
type PitchPoint struct {
	Time      float64 // frame center, seconds
	Frequency float64 // Hz, 0 for silence
	RMS       float64
}

// PitchTrack measures consecutive frames of windowSize samples, hop samples
// apart.
func PitchTrack(signal []float64, sampleRate float64, windowSize, hop int) []PitchPoint {
	if hop < 1 || windowSize < minWindow || len(signal) < windowSize {
		return nil
	}

	a := NewAnalyzer(windowSize)
	points := make([]PitchPoint, 0, (len(signal)-windowSize)/hop+1)
	for start := 0; start+windowSize <= len(signal); start += hop {
		frame := signal[start : start+windowSize]
		points = append(points, PitchPoint{
			Time:      (float64(start) + float64(windowSize)/2) / sampleRate,
			Frequency: a.DominantFrequency(frame, sampleRate),
			RMS:       RMS(frame),
		})
	}
	return points
}

// DominantFrequency is a one-shot helper around Analyzer.
func DominantFrequency(signal []float64, sampleRate float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	return NewAnalyzer(len(signal)).DominantFrequency(signal, sampleRate)
}

// RMS returns the root mean square of s, or 0 for an empty slice.
func RMS(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(s, s) / float64(len(s)))
}

// Peak returns the largest absolute sample value of s.
func Peak(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, math.Inf(1))
}

// SilentFrom returns the index from which every remaining sample of s is
// exactly zero, or len(s) if the last sample is non-zero.
func SilentFrom(s []float64) int {
	i := len(s)
	for i > 0 && s[i-1] == 0 {
		i--
	}
	return i
}
