package engine

// instance is one playback slot. The engine owns two of them and toggles
// between them on every mode change, so the outgoing state can keep
// rendering during the crossfade.
type instance struct {
	mode     Mode
	settings CurveSettings

	// length is the traversal length in samples, counter the number of
	// traversal samples rendered since the slot was (re)started. counter
	// stops at length.
	length  int
	counter int

	// readIndex is the fractional read position in the history.
	readIndex float64

	// filterIndex selects the filter bank owned by this slot.
	filterIndex int
}

// start rewinds the slot to the given read position and traversal.
func (in *instance) start(mode Mode, readIndex float64, length int, settings CurveSettings) {
	in.mode = mode
	in.readIndex = readIndex
	in.length = max(length, 1)
	in.counter = 0
	in.settings = settings
}

// progress returns the traversal progress, clamped to [0, 1].
func (in *instance) progress() float64 {
	return clamp01(float64(in.counter) / float64(in.length))
}

// active reports whether the traversal is still running.
func (in *instance) active() bool {
	return in.counter < in.length
}

// increment returns the read increment for the current sample.
func (in *instance) increment() float64 {
	if in.mode == Speedup && !in.active() {
		return realtimeIncrement
	}
	return in.settings.Speed(in.mode, in.progress())
}

// advance moves the read position by inc, wrapping at bufferLength, and
// counts the sample while the traversal runs.
func (in *instance) advance(inc float64, bufferLength int) {
	n := float64(bufferLength)
	in.readIndex += inc
	if in.readIndex >= n {
		in.readIndex -= n
	} else if in.readIndex < 0 {
		in.readIndex += n
	}
	if in.counter < in.length {
		in.counter++
	}

	debugAssert(in.readIndex >= 0 && in.readIndex < n, "read index out of range")
}

// reset returns the slot to its initial bypass state. The filter bank
// assignment is kept.
func (in *instance) reset() {
	in.mode = Bypass
	in.settings = CurveSettings{}
	in.length = 0
	in.counter = 0
	in.readIndex = 0
}
