package tapestop

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidAutomation indicates a malformed automation description.
var ErrInvalidAutomation = errors.New("invalid automation")

// ModeEvent switches the mode at a frame position.
type ModeEvent struct {
	At   int64 // frame
	Mode Mode
}

// Automation is a schedule of mode changes for offline rendering. Before
// the first event the initial mode applies.
type Automation struct {
	initial Mode
	events  []ModeEvent
}

// NewAutomation creates a schedule. Events are sorted by position; of
// several events at the same frame the last one given wins.
func NewAutomation(initial Mode, events ...ModeEvent) *Automation {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b ModeEvent) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		default:
			return 0
		}
	})
	return &Automation{initial: initial, events: sorted}
}

// Events returns the sorted events.
func (a *Automation) Events() []ModeEvent {
	return slices.Clone(a.events)
}

// ModeAt returns the mode in effect at frame.
func (a *Automation) ModeAt(frame int64) Mode {
	mode := a.initial
	for _, e := range a.events {
		if e.At > frame {
			break
		}
		mode = e.Mode
	}
	return mode
}

// NextChange returns the position of the first event after frame.
func (a *Automation) NextChange(frame int64) (int64, bool) {
	for _, e := range a.events {
		if e.At > frame {
			return e.At, true
		}
	}
	return 0, false
}

// ParseAutomation parses a comma-separated list of "seconds:mode" pairs,
// e.g. "0.5:stop,2.5:start,4:bypass". The schedule starts in bypass.
func ParseAutomation(s string, sampleRate float64) (*Automation, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidAutomation)
	}

	var events []ModeEvent
	for item := range strings.SplitSeq(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		at, name, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not seconds:mode", ErrInvalidAutomation, item)
		}

		seconds, err := strconv.ParseFloat(strings.TrimSpace(at), 64)
		if err != nil || seconds < 0 || math.IsInf(seconds, 0) {
			return nil, fmt.Errorf("%w: bad time %q", ErrInvalidAutomation, at)
		}

		mode, err := ParseMode(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAutomation, err)
		}

		events = append(events, ModeEvent{
			At:   int64(math.Round(seconds * sampleRate)),
			Mode: mode,
		})
	}

	return NewAutomation(Bypass, events...), nil
}
