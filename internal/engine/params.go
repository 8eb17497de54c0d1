package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-tapestop/internal/filter"
)

// Mode is the behavioural state of the engine and of each playback instance.
type Mode int

const (
	// Bypass passes the input through unchanged.
	Bypass Mode = iota

	// Slowdown decelerates playback to a halt, then outputs silence.
	Slowdown

	// Speedup accelerates playback from rest back to real time and keeps
	// playing at real time afterwards.
	Speedup
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Bypass:
		return "bypass"
	case Slowdown:
		return "slowdown"
	case Speedup:
		return "speedup"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Parameter ranges
const (
	MinCurve = -1.0
	MaxCurve = 1.0

	MinFadeTime = 0.01
	MaxFadeTime = 0.5

	MinCutoff    = 20.0
	MaxCutoff    = 20000.0
	MinResonance = 0.1
	MaxResonance = 5.0
)

// Parameter defaults
const (
	DefaultLength          = 1.0
	DefaultFadeLength      = 0.03
	DefaultCrossfadeLength = 0.035
)

// ErrInvalidParams indicates a parameter snapshot with out-of-range values.
var ErrInvalidParams = errors.New("invalid tape-stop parameters")

// FilterParams is the filter part of the parameter snapshot.
type FilterParams struct {
	Enabled   bool
	Cutoff    float64 // Hz
	Resonance float64 // Q
	Type      filter.Type
	Order     filter.Order
}

// bankParams converts to the filter bank's parameter set.
func (f FilterParams) bankParams() filter.Params {
	return filter.Params{
		Cutoff:    f.Cutoff,
		Resonance: f.Resonance,
		Type:      f.Type,
		Order:     f.Order,
	}
}

// Params is the read-only parameter snapshot consumed by Process. Values are
// plain numbers in seconds, Hz or normalised units and are expected to be in
// range already; use Validate or Clamp at the boundary that produces them.
type Params struct {
	Mode Mode

	SlowdownLength float64 // seconds, [MinTime, MaxTime]
	SpeedupLength  float64 // seconds, [MinTime, MaxTime]

	SlowdownCurve float64 // [-1, 1]
	SpeedupCurve  float64 // [-1, 1]

	SlowdownStart float64 // [0, 1]
	SlowdownEnd   float64 // [0, 1]
	SpeedupStart  float64 // [0, 1]
	SpeedupEnd    float64 // [0, 1]

	FadeLength      float64 // seconds, envelope inside a ramp
	CrossfadeLength float64 // seconds, blend between states

	Filter FilterParams
}

// DefaultParams returns the factory settings: bypass, 1 s linear ramps over
// the full curve, 30 ms envelope, 35 ms crossfade, filter off.
func DefaultParams() Params {
	fp := filter.DefaultParams()
	return Params{
		Mode:            Bypass,
		SlowdownLength:  DefaultLength,
		SpeedupLength:   DefaultLength,
		SlowdownEnd:     1,
		SpeedupEnd:      1,
		FadeLength:      DefaultFadeLength,
		CrossfadeLength: DefaultCrossfadeLength,
		Filter: FilterParams{
			Cutoff:    fp.Cutoff,
			Resonance: fp.Resonance,
			Type:      fp.Type,
			Order:     fp.Order,
		},
	}
}

// Validate reports the first out-of-range value.
func (p *Params) Validate() error {
	if p.Mode < Bypass || p.Mode > Speedup {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidParams, int(p.Mode))
	}

	checks := []struct {
		name     string
		val      float64
		min, max float64
	}{
		{"slowdown length", p.SlowdownLength, MinTime, MaxTime},
		{"speedup length", p.SpeedupLength, MinTime, MaxTime},
		{"slowdown curve", p.SlowdownCurve, MinCurve, MaxCurve},
		{"speedup curve", p.SpeedupCurve, MinCurve, MaxCurve},
		{"slowdown start", p.SlowdownStart, 0, 1},
		{"slowdown end", p.SlowdownEnd, 0, 1},
		{"speedup start", p.SpeedupStart, 0, 1},
		{"speedup end", p.SpeedupEnd, 0, 1},
		{"fade length", p.FadeLength, MinFadeTime, MaxFadeTime},
		{"crossfade length", p.CrossfadeLength, MinFadeTime, MaxFadeTime},
		{"filter cutoff", p.Filter.Cutoff, MinCutoff, MaxCutoff},
		{"filter resonance", p.Filter.Resonance, MinResonance, MaxResonance},
	}
	for _, c := range checks {
		if math.IsNaN(c.val) || c.val < c.min || c.val > c.max {
			return fmt.Errorf("%w: %s %g outside [%g, %g]", ErrInvalidParams, c.name, c.val, c.min, c.max)
		}
	}

	if p.Filter.Type < filter.Lowpass || p.Filter.Type > filter.Highpass {
		return fmt.Errorf("%w: unknown filter type %d", ErrInvalidParams, int(p.Filter.Type))
	}
	if p.Filter.Order < filter.Order12dB || p.Filter.Order > filter.Order24dB {
		return fmt.Errorf("%w: unknown filter order %d", ErrInvalidParams, int(p.Filter.Order))
	}

	return nil
}

// Clamp forces every value into range. NaNs fall back to the default.
func (p *Params) Clamp() {
	d := DefaultParams()

	if p.Mode < Bypass || p.Mode > Speedup {
		p.Mode = Bypass
	}

	p.SlowdownLength = clampOr(p.SlowdownLength, MinTime, MaxTime, d.SlowdownLength)
	p.SpeedupLength = clampOr(p.SpeedupLength, MinTime, MaxTime, d.SpeedupLength)
	p.SlowdownCurve = clampOr(p.SlowdownCurve, MinCurve, MaxCurve, d.SlowdownCurve)
	p.SpeedupCurve = clampOr(p.SpeedupCurve, MinCurve, MaxCurve, d.SpeedupCurve)
	p.SlowdownStart = clampOr(p.SlowdownStart, 0, 1, d.SlowdownStart)
	p.SlowdownEnd = clampOr(p.SlowdownEnd, 0, 1, d.SlowdownEnd)
	p.SpeedupStart = clampOr(p.SpeedupStart, 0, 1, d.SpeedupStart)
	p.SpeedupEnd = clampOr(p.SpeedupEnd, 0, 1, d.SpeedupEnd)
	p.FadeLength = clampOr(p.FadeLength, MinFadeTime, MaxFadeTime, d.FadeLength)
	p.CrossfadeLength = clampOr(p.CrossfadeLength, MinFadeTime, MaxFadeTime, d.CrossfadeLength)
	p.Filter.Cutoff = clampOr(p.Filter.Cutoff, MinCutoff, MaxCutoff, d.Filter.Cutoff)
	p.Filter.Resonance = clampOr(p.Filter.Resonance, MinResonance, MaxResonance, d.Filter.Resonance)

	if p.Filter.Type < filter.Lowpass || p.Filter.Type > filter.Highpass {
		p.Filter.Type = d.Filter.Type
	}
	if p.Filter.Order < filter.Order12dB || p.Filter.Order > filter.Order24dB {
		p.Filter.Order = d.Filter.Order
	}
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

// clamp01 limits v to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
