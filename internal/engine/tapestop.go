// Package engine implements the tape-stop core: a circular input history, two
// playback slots that read it back at a curve-driven speed through a 5-point
// Lagrange interpolator, an equal-power crossfade between the slots on every
// mode change, and an optional per-slot filter bank.
//
// The engine is generic over the sample type (float32 or float64). Process is
// allocation-free; every buffer is sized in Prepare.
package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-tapestop/internal/filter"
	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

// numInstances is the number of playback slots.
const numInstances = 2

// TapeStop is the tape-stop processor for sample type F.
//
// A TapeStop is not safe for concurrent use. Prepare, Reset and Process must
// be called from the same goroutine (the audio thread).
type TapeStop[F simdops.Float] struct {
	sampleRate float64
	blockSize  int
	channels   int
	prepared   bool

	history *History[F]
	reader  *LagrangeReader[F]

	instances [numInstances]instance
	current   int
	filters   [numInstances]*filter.Bank[F]

	// Block-rate parameter state
	mode             Mode
	slowdownLength   float64
	speedupLength    float64
	slowdownSettings CurveSettings
	speedupSettings  CurveSettings
	fadeLength       int
	crossfadeLength  int
	filterEnabled    bool
	filterParams     filter.Params

	crossfading      bool
	crossfadeCounter int

	// scratch holds the outgoing slot's output during a crossfade.
	scratch [][]F
}

// New creates an unprepared engine. Call Prepare before Process.
func New[F simdops.Float]() *TapeStop[F] {
	t := &TapeStop[F]{}
	for i := range t.instances {
		t.instances[i].filterIndex = i
	}
	return t
}

// Prepare sizes the history for MaxTime seconds at sampleRate, allocates the
// crossfade scratch for blockSize frames and resets every piece of state.
// It must be called before the first Process and whenever the host
// configuration changes.
func (t *TapeStop[F]) Prepare(sampleRate float64, blockSize, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("sample rate must be positive and finite: %g", sampleRate)
	}
	if blockSize < 1 {
		return fmt.Errorf("block size must be at least 1: %d", blockSize)
	}
	if channels < 1 {
		return fmt.Errorf("channel count must be at least 1: %d", channels)
	}

	t.sampleRate = sampleRate
	t.blockSize = blockSize
	t.channels = channels

	t.history = NewHistory[F](channels, int(math.Round(sampleRate*MaxTime)))
	t.reader = NewLagrangeReader(t.history)

	t.scratch = make([][]F, channels)
	for ch := range t.scratch {
		t.scratch[ch] = make([]F, blockSize)
	}

	for i := range t.filters {
		if t.filters[i] == nil {
			t.filters[i] = filter.NewBank[F](sampleRate, channels)
		} else {
			t.filters[i].Prepare(sampleRate, channels)
		}
	}

	t.prepared = true
	t.Reset()
	return nil
}

// Reset clears the history, the filters and both slots, and returns the
// engine to bypass. Nothing is reallocated. Processing the same input with
// the same parameters after Reset reproduces the output of a freshly
// prepared engine.
func (t *TapeStop[F]) Reset() {
	if !t.prepared {
		return
	}

	t.history.Clear()
	for _, b := range t.filters {
		b.Restore()
	}
	for i := range t.instances {
		t.instances[i].reset()
	}
	for _, ch := range t.scratch {
		clear(ch)
	}

	t.current = 0
	t.mode = Bypass
	t.filterEnabled = false
	t.filterParams = filter.DefaultParams()
	t.crossfading = false
	t.crossfadeCounter = 0
}

// Process runs numSamples frames of buffer, starting at startSample, through
// the effect in place. buffer must hold at least the prepared channel count.
// Blocks larger than the prepared block size are processed in chunks with
// the same parameter snapshot.
func (t *TapeStop[F]) Process(buffer [][]F, startSample, numSamples int, p *Params) {
	if !t.prepared || numSamples <= 0 {
		return
	}
	debugAssert(len(buffer) >= t.channels, "buffer has fewer channels than prepared")

	t.updateParams(p)

	for numSamples > 0 {
		n := min(numSamples, t.blockSize)
		t.processChunk(buffer, startSample, n)
		startSample += n
		numSamples -= n
	}
}

// updateParams reads the snapshot once per block and starts a transition
// when the mode changed.
func (t *TapeStop[F]) updateParams(p *Params) {
	t.slowdownLength = p.SlowdownLength
	t.speedupLength = p.SpeedupLength
	t.slowdownSettings = NewCurveSettings(p.SlowdownCurve, p.SlowdownStart, p.SlowdownEnd)
	t.speedupSettings = NewCurveSettings(p.SpeedupCurve, p.SpeedupStart, p.SpeedupEnd)
	t.fadeLength = t.samples(p.FadeLength)
	t.crossfadeLength = t.samples(p.CrossfadeLength)

	if p.Filter.Enabled != t.filterEnabled {
		t.filterEnabled = p.Filter.Enabled
		if !t.filterEnabled {
			for _, b := range t.filters {
				b.Reset()
			}
		}
	}
	t.filterParams = p.Filter.bankParams()

	if p.Mode != t.mode {
		t.mode = p.Mode
		t.stateChanged()
	}
}

// stateChanged hands playback to the other slot, restarts it at the current
// write position and begins a crossfade from the outgoing slot.
func (t *TapeStop[F]) stateChanged() {
	t.current ^= 1
	in := &t.instances[t.current]

	readIndex := float64(t.history.WritePos())
	switch t.mode {
	case Slowdown:
		in.start(Slowdown, readIndex, t.samples(t.slowdownLength), t.slowdownSettings)
	case Speedup:
		in.start(Speedup, readIndex, t.samples(t.speedupLength), t.speedupSettings)
	default:
		in.start(t.mode, readIndex, 1, CurveSettings{})
	}
	t.filters[in.filterIndex].Reset()

	t.crossfadeCounter = 0
	t.crossfading = true
}

// samples converts seconds to a whole number of frames.
func (t *TapeStop[F]) samples(seconds float64) int {
	return int(math.Round(seconds * t.sampleRate))
}

// processChunk handles at most blockSize frames.
func (t *TapeStop[F]) processChunk(buffer [][]F, start, n int) {
	t.history.Write(buffer, start, n)

	if !t.crossfading {
		t.renderCurrent(buffer, start, n)
		return
	}

	t.renderPrevious(buffer, start, n)
	t.renderCurrent(buffer, start, n)
	t.mix(buffer, start, n)

	if t.crossfadeCounter >= t.crossfadeLength {
		t.crossfading = false
	}
}

// renderCurrent renders the active slot into buffer in place. A bypassing
// slot leaves the input untouched.
func (t *TapeStop[F]) renderCurrent(buffer [][]F, start, n int) {
	in := &t.instances[t.current]
	if !isPlayback(in.mode) {
		return
	}
	t.render(in, buffer, start, n)
}

// renderPrevious renders the outgoing slot into the scratch buffer. A
// bypassing slot contributes the dry input.
func (t *TapeStop[F]) renderPrevious(buffer [][]F, start, n int) {
	in := &t.instances[t.current^1]
	if !isPlayback(in.mode) {
		for ch := range t.channels {
			copy(t.scratch[ch][:n], buffer[ch][start:start+n])
		}
		return
	}
	t.render(in, t.scratch, 0, n)
}

// render dispatches on the slot's mode and applies its filter when enabled.
func (t *TapeStop[F]) render(in *instance, out [][]F, start, n int) {
	filtered := n
	switch in.mode {
	case Slowdown:
		filtered = t.renderSlowdown(in, out, start, n)
	case Speedup:
		t.renderSpeedup(in, out, start, n)
	}

	if t.filterEnabled && filtered > 0 {
		bank := t.filters[in.filterIndex]
		bank.SetParams(t.filterParams)
		bank.Process(out, start, filtered)
	}
}

// renderSlowdown reads the history at a decreasing speed with a fade-out
// envelope over the last fadeLength samples of the traversal. Once the
// traversal is over the slot outputs silence. It returns the number of
// leading samples that were produced by the traversal.
func (t *TapeStop[F]) renderSlowdown(in *instance, out [][]F, start, n int) int {
	bufLen := t.history.Len()
	active := 0

	for i := range n {
		if !in.active() {
			for ch := range t.channels {
				out[ch][start+i] = 0
			}
			continue
		}

		gain := t.envelope(in.length - in.counter)
		t.reader.ReadFrame(out, start+i, in.readIndex, F(gain))
		in.advance(in.increment(), bufLen)
		active++
	}

	return active
}

// renderSpeedup reads the history at an increasing speed with a fade-in
// envelope over the first fadeLength samples of the traversal. After the
// traversal the slot keeps playing at real time and full gain.
func (t *TapeStop[F]) renderSpeedup(in *instance, out [][]F, start, n int) {
	bufLen := t.history.Len()

	for i := range n {
		gain := 1.0
		if in.active() {
			gain = t.envelope(in.counter)
		}
		t.reader.ReadFrame(out, start+i, in.readIndex, F(gain))
		in.advance(in.increment(), bufLen)
	}
}

// envelope returns the fade gain for a distance in samples from the silent
// end of a ramp.
func (t *TapeStop[F]) envelope(distance int) float64 {
	if t.fadeLength <= 0 {
		return 1
	}
	return clamp01(float64(distance) / float64(t.fadeLength))
}

// mix blends the scratch (outgoing) and buffer (incoming) with an
// equal-power law.
func (t *TapeStop[F]) mix(buffer [][]F, start, n int) {
	for i := range n {
		pos := 1.0
		if t.crossfadeLength > 0 {
			pos = clamp01(float64(t.crossfadeCounter) / float64(t.crossfadeLength))
		}
		t.crossfadeCounter++

		gainIn := F(math.Sqrt(pos))
		gainOut := F(math.Sqrt(1 - pos))
		for ch := range t.channels {
			buffer[ch][start+i] = gainIn*buffer[ch][start+i] + gainOut*t.scratch[ch][i]
		}
	}
}

// isPlayback reports whether a mode reads from the history.
func isPlayback(m Mode) bool {
	return m == Slowdown || m == Speedup
}

// Prepared reports whether Prepare has succeeded.
func (t *TapeStop[F]) Prepared() bool {
	return t.prepared
}

// Mode returns the mode of the last processed block.
func (t *TapeStop[F]) Mode() Mode {
	return t.mode
}

// Crossfading reports whether a transition is still being blended.
func (t *TapeStop[F]) Crossfading() bool {
	return t.crossfading
}

// SampleRate returns the prepared sample rate.
func (t *TapeStop[F]) SampleRate() float64 {
	return t.sampleRate
}

// BlockSize returns the prepared maximum block size.
func (t *TapeStop[F]) BlockSize() int {
	return t.blockSize
}

// Channels returns the prepared channel count.
func (t *TapeStop[F]) Channels() int {
	return t.channels
}

// BufferLength returns the history capacity in frames, or 0 before Prepare.
func (t *TapeStop[F]) BufferLength() int {
	if t.history == nil {
		return 0
	}
	return t.history.Len()
}

// Latency returns the read latency of the interpolator in samples.
func (t *TapeStop[F]) Latency() int {
	return LatencySamples
}

// MemoryUsage returns the approximate size of the sample buffers in bytes.
func (t *TapeStop[F]) MemoryUsage() int64 {
	if t.history == nil {
		return 0
	}
	usage := t.history.memoryUsage()
	for _, ch := range t.scratch {
		usage += int64(len(ch)) * sampleSize[F]()
	}
	return usage
}
