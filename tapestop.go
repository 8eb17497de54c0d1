package tapestop

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-tapestop/internal/engine"
	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

// Float is the type constraint for supported sample types.
type Float = simdops.Float

// Config holds the host configuration of a Processor.
type Config struct {
	// SampleRate is the audio sample rate in Hz.
	SampleRate float64

	// BlockSize is the largest number of frames passed to a single Process
	// call without chunking. Longer calls are split internally.
	BlockSize int

	// Channels is the number of audio channels. All channels share one
	// history and one read position.
	Channels int
}

// Common errors returned by the processor.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid tape-stop configuration")

	// ErrInvalidParams indicates an out-of-range parameter snapshot.
	ErrInvalidParams = engine.ErrInvalidParams

	// ErrInvalidBuffer indicates a buffer that does not match the
	// configuration or the requested range.
	ErrInvalidBuffer = errors.New("invalid audio buffer")

	// ErrNotPrepared indicates a Processor that was not created with New.
	ErrNotPrepared = errors.New("processor not prepared")
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if math.IsNaN(c.SampleRate) || c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be %g-%g Hz", ErrInvalidConfig, minSampleRate, maxSampleRate)
	}

	if c.BlockSize < 1 || c.BlockSize > maxBlockSize {
		return fmt.Errorf("%w: block size must be 1-%d frames", ErrInvalidConfig, maxBlockSize)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	return nil
}

// Processor applies the tape-stop effect to planar audio of sample type F.
//
// A Processor is not safe for concurrent use. Process, Prepare and Reset
// must be serialized by the caller, typically by calling them all from the
// audio thread.
type Processor[F Float] struct {
	config Config
	engine *engine.TapeStop[F]
}

// New creates a processor prepared for the given configuration.
func New[F Float](config *Config) (*Processor[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	p := &Processor[F]{engine: engine.New[F]()}
	if err := p.Prepare(config); err != nil {
		return nil, err
	}
	return p, nil
}

// Prepare reconfigures the processor. The history is reallocated for the
// new sample rate and every piece of state is reset.
func (p *Processor[F]) Prepare(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if p.engine == nil {
		p.engine = engine.New[F]()
	}

	if err := p.engine.Prepare(config.SampleRate, config.BlockSize, config.Channels); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	p.config = *config
	return nil
}

// Process runs buffer[ch][startSample : startSample+numSamples] through the
// effect in place for every configured channel. The parameter snapshot is
// read once; values are expected to be in range (see Params.Validate and
// Params.Clamp).
func (p *Processor[F]) Process(buffer [][]F, startSample, numSamples int, params *Params) error {
	if p.engine == nil || !p.engine.Prepared() {
		return ErrNotPrepared
	}
	if params == nil {
		return fmt.Errorf("%w: params is nil", ErrInvalidParams)
	}
	if len(buffer) < p.config.Channels {
		return fmt.Errorf("%w: expected %d channels, got %d", ErrInvalidBuffer, p.config.Channels, len(buffer))
	}
	if startSample < 0 || numSamples < 0 {
		return fmt.Errorf("%w: negative range [%d, +%d)", ErrInvalidBuffer, startSample, numSamples)
	}
	end := startSample + numSamples
	for ch := range p.config.Channels {
		if len(buffer[ch]) < end {
			return fmt.Errorf("%w: channel %d has %d frames, need %d", ErrInvalidBuffer, ch, len(buffer[ch]), end)
		}
	}

	p.engine.Process(buffer, startSample, numSamples, params)
	return nil
}

// ProcessBlock processes every frame of buffer.
func (p *Processor[F]) ProcessBlock(buffer [][]F, params *Params) error {
	if len(buffer) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidBuffer)
	}
	return p.Process(buffer, 0, len(buffer[0]), params)
}

// Reset clears the history, filters and playback state without
// reallocating. The processor returns to bypass.
func (p *Processor[F]) Reset() {
	if p.engine != nil {
		p.engine.Reset()
	}
}

// Latency returns the processing latency in samples.
func (p *Processor[F]) Latency() int {
	return engine.LatencySamples
}

// Config returns the configuration in effect.
func (p *Processor[F]) Config() Config {
	return p.config
}

// Mode returns the mode of the most recently processed block.
func (p *Processor[F]) Mode() Mode {
	if p.engine == nil {
		return Bypass
	}
	return p.engine.Mode()
}

// Info returns information about a processor.
type Info struct {
	// Algorithm describes the interpolation in use.
	Algorithm string

	// BufferLength is the history capacity in frames.
	BufferLength int

	// MaxTime is the history capacity in seconds.
	MaxTime float64

	// Latency is the processing latency in samples.
	Latency int

	// MemoryUsage is the approximate memory usage in bytes.
	MemoryUsage int64

	// SIMDEnabled indicates if SIMD optimizations are active.
	SIMDEnabled bool

	// SIMDType describes the SIMD instruction set in use.
	SIMDType string
}

// GetInfo returns information about the processor.
func (p *Processor[F]) GetInfo() Info {
	info := Info{
		Algorithm: "tape-stop (5-point Lagrange)",
		MaxTime:   engine.MaxTime,
		Latency:   p.Latency(),
		SIMDType:  "none",
	}

	if p.engine != nil {
		info.BufferLength = p.engine.BufferLength()
		info.MemoryUsage = p.engine.MemoryUsage()
	}

	if simd := simdops.Info(); simd != "" {
		info.SIMDEnabled = true
		info.SIMDType = simd
	}

	return info
}

// GetInfo returns information about a processor.
func GetInfo[F Float](p *Processor[F]) Info {
	return p.GetInfo()
}
