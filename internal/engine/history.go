package engine

import (
	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

// History is a fixed-capacity circular record of the most recent input
// frames, one slice per channel. All channels share a single write position.
//
// Unlike a FIFO it is never drained: readers address it by absolute
// (fractional) position and the writer overwrites the oldest frame.
type History[F simdops.Float] struct {
	data     [][]F
	length   int
	writePos int
}

// NewHistory allocates a history of length frames for the given channel count.
func NewHistory[F simdops.Float](channels, length int) *History[F] {
	if length < lagrangePoints {
		length = lagrangePoints
	}
	if channels < 1 {
		channels = 1
	}

	data := make([][]F, channels)
	for ch := range data {
		data[ch] = make([]F, length)
	}

	return &History[F]{
		data:   data,
		length: length,
	}
}

// Write appends numSamples frames taken from buffer starting at startSample.
// Each frame writes every channel at the shared position before it advances.
func (h *History[F]) Write(buffer [][]F, startSample, numSamples int) {
	end := startSample + numSamples
	channels := min(len(buffer), len(h.data))

	for i := startSample; i < end; i++ {
		for ch := range channels {
			h.data[ch][h.writePos] = buffer[ch][i]
		}
		h.writePos++
		if h.writePos == h.length {
			h.writePos = 0
		}
	}

	debugAssert(h.writePos >= 0 && h.writePos < h.length, "history write position out of range")
}

// WritePos returns the index the next frame will be written to.
func (h *History[F]) WritePos() int {
	return h.writePos
}

// Len returns the capacity in frames.
func (h *History[F]) Len() int {
	return h.length
}

// Channels returns the number of channels.
func (h *History[F]) Channels() int {
	return len(h.data)
}

// Clear zeroes every stored frame and rewinds the write position.
// It does not reallocate.
func (h *History[F]) Clear() {
	for _, ch := range h.data {
		clear(ch)
	}
	h.writePos = 0
}

// wrap folds a possibly negative frame index into [0, length).
func (h *History[F]) wrap(idx int) int {
	idx %= h.length
	if idx < 0 {
		idx += h.length
	}
	return idx
}

// memoryUsage returns the approximate size of the sample storage in bytes.
func (h *History[F]) memoryUsage() int64 {
	return int64(len(h.data)) * int64(h.length) * sampleSize[F]()
}

// sampleSize returns the size of one sample of type F in bytes.
func sampleSize[F simdops.Float]() int64 {
	var zero F
	if _, ok := any(zero).(float32); ok {
		return bytesPerSample32
	}
	return bytesPerSample64
}
