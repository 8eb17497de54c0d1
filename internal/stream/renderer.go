// Package stream renders the tape-stop effect block by block for a
// pull-based audio device. A Renderer loops planar source audio through a
// float32 processor and serves the result as interleaved float32
// little-endian bytes, the format oto plays with FormatFloat32LE.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync/atomic"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

const (
	bytesPerSample = 4 // float32
	maxChannels    = 2 // oto plays mono or stereo
)

// ErrInvalidSource indicates source audio a Renderer cannot play.
var ErrInvalidSource = errors.New("invalid stream source")

// Renderer is an io.Reader producing processed audio. Read must be called
// from a single goroutine (the device callback); SetParams may be called
// from any goroutine and takes effect at the next block.
type Renderer struct {
	proc   *tapestop.Processor[float32]
	params atomic.Pointer[tapestop.Params]

	source    [][]float32
	pos       int
	loop      bool
	exhausted bool

	block       [][]float32
	interleaved []float32
	fifo        *RingBuffer[float32]
	samples     []float32

	rendered atomic.Int64
	mode     atomic.Int32
}

// NewRenderer creates a renderer for mono or stereo source audio.
func NewRenderer(source [][]float32, sampleRate float64, blockSize int, loop bool) (*Renderer, error) {
	if len(source) == 0 || len(source) > maxChannels {
		return nil, fmt.Errorf("%w: %d channels (need 1 or 2)", ErrInvalidSource, len(source))
	}
	frames := len(source[0])
	if frames == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidSource)
	}
	for ch := range source {
		if len(source[ch]) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, expected %d", ErrInvalidSource, ch, len(source[ch]), frames)
		}
	}
	if blockSize <= 0 {
		blockSize = tapestop.DefaultBlockSize
	}

	proc, err := tapestop.New[float32](&tapestop.Config{
		SampleRate: sampleRate,
		BlockSize:  blockSize,
		Channels:   len(source),
	})
	if err != nil {
		return nil, err
	}

	block := make([][]float32, len(source))
	for ch := range block {
		block[ch] = make([]float32, blockSize)
	}

	r := &Renderer{
		proc:        proc,
		source:      source,
		loop:        loop,
		block:       block,
		interleaved: make([]float32, blockSize*len(source)),
		fifo:        NewRingBuffer[float32](blockSize * len(source) * 4),
	}
	params := tapestop.DefaultParams()
	r.params.Store(&params)
	return r, nil
}

// SetParams publishes a new parameter snapshot.
func (r *Renderer) SetParams(p tapestop.Params) {
	r.params.Store(&p)
}

// Params returns the current parameter snapshot.
func (r *Renderer) Params() tapestop.Params {
	return *r.params.Load()
}

// Channels returns the output channel count.
func (r *Renderer) Channels() int {
	return len(r.source)
}

// Rendered returns the number of frames rendered so far.
func (r *Renderer) Rendered() int64 {
	return r.rendered.Load()
}

// Mode returns the mode of the most recently rendered block.
func (r *Renderer) Mode() tapestop.Mode {
	return tapestop.Mode(r.mode.Load())
}

// Read fills p with whole interleaved float32 frames. It returns io.EOF
// once a non-looping source has been played out.
func (r *Renderer) Read(p []byte) (int, error) {
	channels := len(r.source)
	frameBytes := bytesPerSample * channels
	want := (len(p) / frameBytes) * channels

	for r.fifo.Available() < want && !r.exhausted {
		if err := r.renderBlock(); err != nil {
			return 0, err
		}
	}

	if cap(r.samples) < want {
		r.samples = make([]float32, want)
	}
	n := r.fifo.Read(r.samples[:want])
	if n == 0 && r.exhausted {
		return 0, io.EOF
	}

	for i, s := range r.samples[:n] {
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(s))
	}
	return n * bytesPerSample, nil
}

// renderBlock copies the next block of source audio, processes it and
// queues it interleaved.
func (r *Renderer) renderBlock() error {
	blockSize := len(r.block[0])
	frames := len(r.source[0])

	n := 0
	for n < blockSize {
		if r.pos == frames {
			if !r.loop {
				break
			}
			r.pos = 0
		}
		m := min(blockSize-n, frames-r.pos)
		for ch := range r.source {
			copy(r.block[ch][n:n+m], r.source[ch][r.pos:r.pos+m])
		}
		r.pos += m
		n += m
	}
	if n == 0 {
		r.exhausted = true
		return nil
	}

	if err := r.proc.Process(r.block, 0, n, r.params.Load()); err != nil {
		return err
	}
	r.rendered.Add(int64(n))
	r.mode.Store(int32(r.proc.Mode()))

	if len(r.block) == 1 {
		r.fifo.Write(r.block[0][:n])
		return nil
	}

	simdops.For[float32]().Interleave2(r.interleaved[:2*n], r.block[0][:n], r.block[1][:n])
	r.fifo.Write(r.interleaved[:2*n])
	return nil
}
