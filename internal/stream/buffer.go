package stream

import "github.com/tphakala/go-audio-tapestop/internal/simdops"

const bufferGrowthFactor = 2

// RingBuffer is a circular FIFO of interleaved samples between block
// rendering and a pull-based audio sink. It is not safe for concurrent use.
type RingBuffer[F simdops.Float] struct {
	data     []F
	capacity int
	size     int
	readPos  int
	writePos int
}

// NewRingBuffer creates a ring buffer with the specified capacity.
func NewRingBuffer[F simdops.Float](capacity int) *RingBuffer[F] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[F]{
		data:     make([]F, capacity),
		capacity: capacity,
	}
}

// Write appends samples, growing the buffer if they do not fit.
func (b *RingBuffer[F]) Write(samples []F) {
	needed := len(samples)
	if needed == 0 {
		return
	}
	if b.size+needed > b.capacity {
		b.grow(b.size + needed)
	}

	n := copy(b.data[b.writePos:], samples)
	if n < needed {
		copy(b.data, samples[n:])
	}
	b.writePos = (b.writePos + needed) % b.capacity
	b.size += needed
}

// Read moves up to len(dst) samples into dst and returns the count.
func (b *RingBuffer[F]) Read(dst []F) int {
	n := min(len(dst), b.size)
	if n == 0 {
		return 0
	}

	first := copy(dst[:n], b.data[b.readPos:min(b.readPos+n, b.capacity)])
	if first < n {
		copy(dst[first:n], b.data)
	}
	b.readPos = (b.readPos + n) % b.capacity
	b.size -= n
	return n
}

// Available returns the number of samples available for reading.
func (b *RingBuffer[F]) Available() int {
	return b.size
}

// Space returns the free space before the buffer has to grow.
func (b *RingBuffer[F]) Space() int {
	return b.capacity - b.size
}

// Capacity returns the current buffer capacity.
func (b *RingBuffer[F]) Capacity() int {
	return b.capacity
}

// Clear removes all samples from the buffer.
func (b *RingBuffer[F]) Clear() {
	b.size = 0
	b.readPos = 0
	b.writePos = 0
}

// grow increases the buffer capacity to at least minCapacity.
func (b *RingBuffer[F]) grow(minCapacity int) {
	newCapacity := b.capacity
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	newData := make([]F, newCapacity)
	if b.size > 0 {
		first := copy(newData, b.data[b.readPos:min(b.readPos+b.size, b.capacity)])
		copy(newData[first:b.size], b.data)
	}

	b.data = newData
	b.capacity = newCapacity
	b.readPos = 0
	b.writePos = b.size % newCapacity
}
