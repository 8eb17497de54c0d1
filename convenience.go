package tapestop

import (
	"fmt"

	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

// Common sample rates for convenience functions.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000
)

// NewMono creates a mono float64 processor with the default block size.
func NewMono(sampleRate float64) (*Processor[float64], error) {
	return New[float64](&Config{
		SampleRate: sampleRate,
		BlockSize:  DefaultBlockSize,
		Channels:   1,
	})
}

// NewStereo creates a stereo float64 processor with the default block size.
func NewStereo(sampleRate float64) (*Processor[float64], error) {
	return New[float64](&Config{
		SampleRate: sampleRate,
		BlockSize:  DefaultBlockSize,
		Channels:   stereoChannels,
	})
}

// Render runs planar input through a fresh processor and returns the
// processed copy. The input is not modified. Blocks are split at every
// automation event so mode changes land on the exact frame; a nil
// automation renders the whole signal in params.Mode.
func Render(input [][]float64, sampleRate float64, blockSize int, params Params, automation *Automation) ([][]float64, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	frames := len(input[0])
	output := make([][]float64, len(input))
	for ch := range input {
		if len(input[ch]) != frames {
			return nil, fmt.Errorf("%w: channel %d has %d frames, expected %d", ErrInvalidBuffer, ch, len(input[ch]), frames)
		}
		output[ch] = make([]float64, frames)
		copy(output[ch], input[ch])
	}

	p, err := New[float64](&Config{
		SampleRate: sampleRate,
		BlockSize:  blockSize,
		Channels:   len(input),
	})
	if err != nil {
		return nil, err
	}

	pos := 0
	for pos < frames {
		n := min(blockSize, frames-pos)
		if automation != nil {
			params.Mode = automation.ModeAt(int64(pos))
			if next, ok := automation.NextChange(int64(pos)); ok && next < int64(pos+n) {
				n = int(next) - pos
			}
		}

		if err := p.Process(output, pos, n, &params); err != nil {
			return nil, err
		}
		pos += n
	}

	return output, nil
}

// RenderStereo is Render for separate left and right channels.
func RenderStereo(left, right []float64, sampleRate float64, params Params, automation *Automation) (leftOut, rightOut []float64, err error) {
	out, err := Render([][]float64{left, right}, sampleRate, DefaultBlockSize, params, automation)
	if err != nil {
		return nil, nil, err
	}
	return out[0], out[1], nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo(left, right []float64) []float64 {
	minLen := min(len(left), len(right))
	result := make([]float64, minLen*stereoChannels)
	simdops.For[float64]().Interleave2(result, left[:minLen], right[:minLen])
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo(interleaved []float64) (left, right []float64) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]float64, numSamples)
	right = make([]float64, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}
