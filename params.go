package tapestop

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-tapestop/internal/engine"
	"github.com/tphakala/go-audio-tapestop/internal/filter"
)

// Parameter types shared with the engine.
type (
	// Mode is the requested behaviour: Bypass, Slowdown or Speedup.
	Mode = engine.Mode

	// Params is the per-block parameter snapshot.
	Params = engine.Params

	// FilterParams is the filter part of Params.
	FilterParams = engine.FilterParams

	// FilterType selects the filter response.
	FilterType = filter.Type

	// FilterOrder selects the filter slope.
	FilterOrder = filter.Order
)

// Modes
const (
	Bypass   = engine.Bypass
	Slowdown = engine.Slowdown
	Speedup  = engine.Speedup
)

// Filter types and orders
const (
	Lowpass  = filter.Lowpass
	Bandpass = filter.Bandpass
	Highpass = filter.Highpass

	Order12dB = filter.Order12dB
	Order24dB = filter.Order24dB
)

// Parameter ranges
const (
	MinTime = engine.MinTime
	MaxTime = engine.MaxTime

	MinFadeTime = engine.MinFadeTime
	MaxFadeTime = engine.MaxFadeTime

	MinCutoff    = engine.MinCutoff
	MaxCutoff    = engine.MaxCutoff
	MinResonance = engine.MinResonance
	MaxResonance = engine.MaxResonance
)

// DefaultParams returns the factory parameter set: bypass, 1 s ramps on a
// linear curve, 30 ms envelope, 35 ms crossfade, filter off.
func DefaultParams() Params {
	return engine.DefaultParams()
}

// ParseMode parses a mode name. "stop" and "start" are accepted as aliases
// for slowdown and speedup.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bypass", "off":
		return Bypass, nil
	case "slowdown", "stop":
		return Slowdown, nil
	case "speedup", "start":
		return Speedup, nil
	default:
		return Bypass, fmt.Errorf("%w: unknown mode %q", ErrInvalidParams, s)
	}
}

// ParseFilterType parses "lowpass", "bandpass" or "highpass" (or lp/bp/hp).
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lowpass", "lp":
		return Lowpass, nil
	case "bandpass", "bp":
		return Bandpass, nil
	case "highpass", "hp":
		return Highpass, nil
	default:
		return Lowpass, fmt.Errorf("%w: unknown filter type %q", ErrInvalidParams, s)
	}
}

// ParseFilterOrder parses a slope in dB per octave: 12 or 24.
func ParseFilterOrder(slope int) (FilterOrder, error) {
	switch slope {
	case 12:
		return Order12dB, nil
	case 24:
		return Order24dB, nil
	default:
		return Order12dB, fmt.Errorf("%w: filter slope must be 12 or 24 dB, got %d", ErrInvalidParams, slope)
	}
}
