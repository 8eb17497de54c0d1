package filter

import (
	"github.com/tphakala/go-audio-tapestop/internal/simdops"
)

// MaxStages is the number of SVFs a Bank can cascade.
const MaxStages = 2

// Mode scalars for SVF.SetMode
const (
	ModeLowpass  = 0.0
	ModeBandpass = 0.5
	ModeHighpass = 1.0
)

// Default parameter values
const (
	DefaultCutoff    = 20000.0
	DefaultResonance = 0.71
)

// Type selects the filter response.
type Type int

const (
	// Lowpass passes content below the cutoff.
	Lowpass Type = iota

	// Bandpass passes content around the cutoff.
	Bandpass

	// Highpass passes content above the cutoff.
	Highpass
)

// Mode returns the SVF mode scalar for the type.
func (t Type) Mode() float64 {
	switch t {
	case Bandpass:
		return ModeBandpass
	case Highpass:
		return ModeHighpass
	default:
		return ModeLowpass
	}
}

// String returns the short name used in parameter files.
func (t Type) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Bandpass:
		return "bandpass"
	case Highpass:
		return "highpass"
	default:
		return "unknown"
	}
}

// Order selects the slope, i.e. the number of cascaded stages.
type Order int

const (
	// Order12dB uses one 2-pole stage.
	Order12dB Order = iota

	// Order24dB cascades two 2-pole stages.
	Order24dB
)

// Stages returns the number of cascaded SVFs for the order.
func (o Order) Stages() int {
	if o == Order24dB {
		return MaxStages
	}
	return 1
}

// Params is the per-block filter parameter snapshot.
type Params struct {
	Cutoff    float64 // Hz
	Resonance float64 // Q
	Type      Type
	Order     Order
}

// DefaultParams returns a transparent setting: 12 dB lowpass at 20 kHz.
func DefaultParams() Params {
	return Params{
		Cutoff:    DefaultCutoff,
		Resonance: DefaultResonance,
		Type:      Lowpass,
		Order:     Order12dB,
	}
}

// Bank is a cascade of up to MaxStages SVFs sharing one parameter set.
//
// A Bank is owned by exactly one playback slot. Parameters are applied once
// per block through SetParams; cutoff, resonance and type changes keep the
// filter state, while an order change resets every stage so no stale state
// from an unused stage leaks in.
type Bank[F simdops.Float] struct {
	stages     [MaxStages]SVF
	sampleRate float64
	numStages  int
	params     Params
}

// NewBank creates a bank prepared for the given rate and channel count.
func NewBank[F simdops.Float](sampleRate float64, channels int) *Bank[F] {
	b := &Bank[F]{}
	b.Prepare(sampleRate, channels)
	return b
}

// Prepare (re)allocates per-channel state and applies the default parameters.
func (b *Bank[F]) Prepare(sampleRate float64, channels int) {
	b.sampleRate = sampleRate
	for i := range b.stages {
		b.stages[i].Resize(channels)
	}
	b.Restore()
}

// Restore returns the bank to its freshly prepared state without reallocating.
func (b *Bank[F]) Restore() {
	b.apply(DefaultParams())
	b.Reset()
}

// SetParams applies a parameter snapshot. Only changed values are pushed to
// the stages.
func (b *Bank[F]) SetParams(p Params) {
	if p.Cutoff != b.params.Cutoff || p.Resonance != b.params.Resonance {
		for i := range b.stages {
			b.stages[i].SetCoefficients(b.sampleRate, p.Cutoff, p.Resonance)
		}
		b.params.Cutoff = p.Cutoff
		b.params.Resonance = p.Resonance
	}

	if p.Type != b.params.Type {
		for i := range b.stages {
			b.stages[i].SetMode(p.Type.Mode())
		}
		b.params.Type = p.Type
	}

	if p.Order != b.params.Order {
		b.params.Order = p.Order
		b.numStages = p.Order.Stages()
		b.Reset()
	}
}

// apply pushes every parameter unconditionally.
func (b *Bank[F]) apply(p Params) {
	b.params = p
	b.numStages = p.Order.Stages()
	for i := range b.stages {
		b.stages[i].SetCoefficients(b.sampleRate, p.Cutoff, p.Resonance)
		b.stages[i].SetMode(p.Type.Mode())
	}
}

// Params returns the parameters currently in effect.
func (b *Bank[F]) Params() Params {
	return b.params
}

// NumStages returns the number of active stages.
func (b *Bank[F]) NumStages() int {
	return b.numStages
}

// Process filters buffer[ch][startSample : startSample+numSamples] in place
// for every channel, running the active stages in series.
func (b *Bank[F]) Process(buffer [][]F, startSample, numSamples int) {
	end := startSample + numSamples
	for k := range b.numStages {
		stage := &b.stages[k]
		channels := min(len(buffer), len(stage.s1))
		for ch := range channels {
			data := buffer[ch]
			for i := startSample; i < end; i++ {
				data[i] = F(stage.ProcessSample(ch, float64(data[i])))
			}
		}
	}
}

// Reset clears the state of every stage.
func (b *Bank[F]) Reset() {
	for i := range b.stages {
		b.stages[i].Reset()
	}
}
