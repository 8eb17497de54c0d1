package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/engine"
)

func TestTable_LinearSlowdown(t *testing.T) {
	c := engine.NewCurveSettings(0, 0, 1)
	rows := table(c, tapestop.Slowdown, 2, 4)
	require.Len(t, rows, 5)

	assert.InDelta(t, 1.0, rows[0].speed, 1e-9, "starts at real time")
	assert.InDelta(t, 0.0, rows[4].speed, 1e-9, "ends at rest")
	assert.InDelta(t, 2.0, rows[4].time, 1e-12)
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i].speed, rows[i-1].speed)
		assert.Greater(t, rows[i].lag, rows[i-1].lag)
	}
	// a linear ramp to rest loses half its length
	assert.InDelta(t, 1.0, rows[4].lag, 0.01)
}

func TestTable_SpeedupRises(t *testing.T) {
	c := engine.NewCurveSettings(0.5, 0, 1)
	rows := table(c, tapestop.Speedup, 1, 10)
	assert.InDelta(t, 0.0, rows[0].speed, 1e-9)
	assert.InDelta(t, 1.0, rows[10].speed, 1e-9)
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run([]string{"-mode", "stop", "-curve", "-0.5", "-steps", "5"}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2+6)
	assert.Contains(t, lines[0], "slowdown curve")
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"bypass", []string{"-mode", "bypass"}, errInvalidArgs},
		{"unknown mode", []string{"-mode", "rewind"}, tapestop.ErrInvalidParams},
		{"steps", []string{"-steps", "0"}, errInvalidArgs},
		{"curve range", []string{"-curve", "2"}, tapestop.ErrInvalidParams},
		{"length range", []string{"-length", "60"}, tapestop.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, run(tt.args, &bytes.Buffer{}), tt.want)
		})
	}
}
