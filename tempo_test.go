package tapestop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteValue_Seconds(t *testing.T) {
	tests := []struct {
		note NoteValue
		bpm  float64
		want float64
	}{
		{NoteBar, 120, 2},
		{NoteTwoBars, 120, 4},
		{NoteHalf, 120, 1},
		{NoteQuarter, 120, 0.5},
		{NoteQuarter, 60, 1},
		{NoteEighth, 120, 0.25},
		{NoteSixteenth, 120, 0.125},
		{NoteQuarterTriplet, 120, 1.0 / 3},
		{NoteEighthTriplet, 90, 240.0 / 12 / 90},
		{NoteHalfTriplet, 140, 240.0 / 3 / 140},
	}

	for _, tt := range tests {
		t.Run(tt.note.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.note.Seconds(tt.bpm), 1e-12)
		})
	}
}

func TestNoteValue_StringAndParse(t *testing.T) {
	for n := NoteSixteenth; n <= NoteTwoBars; n++ {
		got, err := ParseNoteValue(n.String())
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := ParseNoteValue("3/4")
	assert.ErrorIs(t, err, ErrInvalidNoteValue)

	assert.Equal(t, "NoteValue(42)", NoteValue(42).String())
	assert.InDelta(t, 1.0, NoteValue(-1).Fraction(), 0)
}

func TestSyncSettings_Apply(t *testing.T) {
	t.Run("synced ramps follow tempo", func(t *testing.T) {
		p := DefaultParams()
		p.SpeedupLength = 3
		s := SyncSettings{SlowdownSync: true, SlowdownNote: NoteQuarter}
		s.Apply(&p, 120)

		assert.InDelta(t, 0.5, p.SlowdownLength, 1e-12)
		assert.InDelta(t, 3.0, p.SpeedupLength, 0)
	})

	t.Run("lengths are limited", func(t *testing.T) {
		p := DefaultParams()
		s := SyncSettings{
			SlowdownSync: true, SlowdownNote: NoteSixteenth,
			SpeedupSync: true, SpeedupNote: NoteTwoBars,
		}
		s.Apply(&p, 999)
		assert.InDelta(t, MinTime, p.SlowdownLength, 0)

		s.Apply(&p, 20)
		assert.InDelta(t, MaxTime, p.SpeedupLength, 0)
		require.NoError(t, p.Validate())
	})
}

func TestTempoTracker(t *testing.T) {
	var tr TempoTracker
	assert.InDelta(t, DefaultTempo, tr.BPM(), 0)

	tr.Update(90, true)
	assert.InDelta(t, 90.0, tr.BPM(), 0)

	tr.Update(0, false)
	assert.InDelta(t, 90.0, tr.BPM(), 0, "missing tempo keeps the last one")

	tr.Update(-5, true)
	assert.InDelta(t, 90.0, tr.BPM(), 0, "invalid tempo is ignored")

	tr.Update(174, true)
	assert.InDelta(t, 174.0, tr.BPM(), 0)
}
