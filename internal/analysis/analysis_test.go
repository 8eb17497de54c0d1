package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-tapestop/internal/testutil"
)

func TestDominantFrequency(t *testing.T) {
	const sampleRate = 48000.0

	for _, freq := range []float64{110, 440, 1000, 5000} {
		sig := testutil.Sine(8192, freq, sampleRate, 0.5)
		got := DominantFrequency(sig, sampleRate)
		testutil.AssertRelativeError(t, freq, got, 0.01, "freq %g", freq)
	}
}

func TestDominantFrequency_Silence(t *testing.T) {
	assert.Zero(t, DominantFrequency(make([]float64, 1024), 48000))
	assert.Zero(t, DominantFrequency(nil, 48000))
}

func TestAnalyzer_ZeroPadsShortFrames(t *testing.T) {
	a := NewAnalyzer(4096)
	sig := testutil.Sine(3000, 1000, 48000, 1)

	got := a.DominantFrequency(sig, 48000)
	testutil.AssertRelativeError(t, 1000, got, 0.02)
}

func TestPitchTrack_Chirp(t *testing.T) {
	const sampleRate = 48000.0

	// Linear chirp from 800 Hz down to 200 Hz over one second
	n := int(sampleRate)
	sig := make([]float64, n)
	var phase float64
	for i := range sig {
		f := 800 - 600*float64(i)/float64(n)
		phase += 2 * math.Pi * f / sampleRate
		sig[i] = math.Sin(phase)
	}

	track := PitchTrack(sig, sampleRate, 2048, 4096)
	require.NotEmpty(t, track)

	freqs := make([]float64, len(track))
	for i, p := range track {
		freqs[i] = p.Frequency
		want := 800 - 600*p.Time
		testutil.AssertRelativeError(t, want, p.Frequency, 0.05, "at %.3fs", p.Time)
		assert.InDelta(t, 1/math.Sqrt2, p.RMS, 0.02)
	}
	testutil.AssertNonIncreasing(t, freqs, 0)
}

func TestPitchTrack_InvalidArgs(t *testing.T) {
	sig := make([]float64, 100)
	assert.Nil(t, PitchTrack(sig, 48000, 256, 64))
	assert.Nil(t, PitchTrack(sig, 48000, 64, 0))
}

func TestRMSAndPeak(t *testing.T) {
	assert.InDelta(t, 0.5, RMS(testutil.DC(100, -0.5)), 1e-12)
	assert.InDelta(t, 1/math.Sqrt2, RMS(testutil.Sine(48000, 1000, 48000, 1)), 1e-6)
	assert.Zero(t, RMS(nil))

	assert.InDelta(t, 0.9, Peak([]float64{0.1, -0.9, 0.3}), 1e-12)
	assert.Zero(t, Peak(nil))
}

func TestSilentFrom(t *testing.T) {
	assert.Equal(t, 2, SilentFrom([]float64{1, 2, 0, 0}))
	assert.Equal(t, 3, SilentFrom([]float64{0, 0, 1}))
	assert.Equal(t, 0, SilentFrom([]float64{0, 0}))
	assert.Equal(t, 0, SilentFrom(nil))
}
