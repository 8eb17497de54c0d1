package tapestop

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidNoteValue indicates an unknown note value name.
var ErrInvalidNoteValue = errors.New("invalid note value")

// NoteValue is a tempo-synced ramp length in bars of 4/4.
type NoteValue int

// Note values, shortest first
const (
	NoteSixteenth NoteValue = iota
	NoteEighthTriplet
	NoteEighth
	NoteQuarterTriplet
	NoteQuarter
	NoteHalfTriplet
	NoteHalf
	NoteBar
	NoteTwoBars
)

var noteValues = [...]struct {
	name     string
	fraction float64
}{
	NoteSixteenth:      {"1/16", 1.0 / 16},
	NoteEighthTriplet:  {"1/12", 1.0 / 12},
	NoteEighth:         {"1/8", 1.0 / 8},
	NoteQuarterTriplet: {"1/6", 1.0 / 6},
	NoteQuarter:        {"1/4", 1.0 / 4},
	NoteHalfTriplet:    {"1/3", 1.0 / 3},
	NoteHalf:           {"1/2", 1.0 / 2},
	NoteBar:            {"1", 1},
	NoteTwoBars:        {"2", 2},
}

func (n NoteValue) valid() bool {
	return n >= NoteSixteenth && n <= NoteTwoBars
}

// Fraction returns the length in bars.
func (n NoteValue) Fraction() float64 {
	if !n.valid() {
		return 1
	}
	return noteValues[n].fraction
}

// Seconds returns the note length at the given tempo in BPM.
func (n NoteValue) Seconds(bpm float64) float64 {
	return n.Fraction() * secondsPerBarAt1BPM / bpm
}

// String returns the note value as a fraction of a bar, e.g. "1/4".
func (n NoteValue) String() string {
	if !n.valid() {
		return fmt.Sprintf("NoteValue(%d)", int(n))
	}
	return noteValues[n].name
}

// ParseNoteValue parses a bar fraction such as "1/8" or "2".
func ParseNoteValue(s string) (NoteValue, error) {
	s = strings.TrimSpace(s)
	for i, nv := range noteValues {
		if nv.name == s {
			return NoteValue(i), nil
		}
	}
	return NoteBar, fmt.Errorf("%w: %q", ErrInvalidNoteValue, s)
}

// SyncSettings selects which ramps follow the host tempo.
type SyncSettings struct {
	SlowdownSync bool
	SlowdownNote NoteValue
	SpeedupSync  bool
	SpeedupNote  NoteValue
}

// Apply replaces the synced ramp lengths of p with note lengths at bpm,
// limited to [MinTime, MaxTime].
func (s SyncSettings) Apply(p *Params, bpm float64) {
	if s.SlowdownSync {
		p.SlowdownLength = syncedLength(s.SlowdownNote, bpm)
	}
	if s.SpeedupSync {
		p.SpeedupLength = syncedLength(s.SpeedupNote, bpm)
	}
}

func syncedLength(n NoteValue, bpm float64) float64 {
	return math.Max(MinTime, math.Min(MaxTime, n.Seconds(bpm)))
}

// TempoTracker remembers the last valid host tempo. Hosts that stop
// reporting a tempo keep the last one; before the first report DefaultTempo
// is used.
type TempoTracker struct {
	bpm float64
}

// Update records a host tempo. Invalid or missing values are ignored.
func (t *TempoTracker) Update(bpm float64, ok bool) {
	if !ok || math.IsNaN(bpm) || bpm < minTempo || bpm > maxTempo {
		return
	}
	t.bpm = bpm
}

// BPM returns the tempo in effect.
func (t *TempoTracker) BPM() float64 {
	if t.bpm == 0 {
		return DefaultTempo
	}
	return t.bpm
}
