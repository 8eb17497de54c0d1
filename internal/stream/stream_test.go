package stream

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tapestop "github.com/tphakala/go-audio-tapestop"
)

func TestRingBuffer_FIFOOrder(t *testing.T) {
	b := NewRingBuffer[float64](4)
	b.Write([]float64{1, 2, 3})

	dst := make([]float64, 2)
	require.Equal(t, 2, b.Read(dst))
	assert.Equal(t, []float64{1, 2}, dst)

	// wraps around the end of the storage
	b.Write([]float64{4, 5, 6})
	assert.Equal(t, 4, b.Available())
	assert.Equal(t, 0, b.Space())

	out := make([]float64, 10)
	n := b.Read(out)
	assert.Equal(t, []float64{3, 4, 5, 6}, out[:n])
	assert.Equal(t, 0, b.Available())
	assert.Equal(t, 0, b.Read(out))
}

func TestRingBuffer_GrowKeepsOrder(t *testing.T) {
	b := NewRingBuffer[float32](4)
	b.Write([]float32{1, 2, 3})
	dst := make([]float32, 2)
	b.Read(dst)

	b.Write([]float32{4, 5, 6, 7, 8, 9})
	assert.GreaterOrEqual(t, b.Capacity(), 7)

	out := make([]float32, 7)
	require.Equal(t, 7, b.Read(out))
	assert.Equal(t, []float32{3, 4, 5, 6, 7, 8, 9}, out)
}

func TestRingBuffer_Clear(t *testing.T) {
	b := NewRingBuffer[float64](0)
	assert.Equal(t, 1, b.Capacity())
	b.Write([]float64{1, 2})
	b.Clear()
	assert.Equal(t, 0, b.Available())
}

func decode(p []byte) []float32 {
	out := make([]float32, len(p)/bytesPerSample)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(p[i*bytesPerSample:]))
	}
	return out
}

func rampSource(frames, channels int) [][]float32 {
	src := make([][]float32, channels)
	for ch := range src {
		src[ch] = make([]float32, frames)
		for i := range frames {
			src[ch][i] = float32(i)/float32(frames) * float32(1-2*ch)
		}
	}
	return src
}

func TestRenderer_BypassInterleavesSource(t *testing.T) {
	src := rampSource(300, 2)
	r, err := NewRenderer(src, 48000, 64, false)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Channels())

	p := make([]byte, 100*2*bytesPerSample+3) // trailing partial frame is ignored
	n, err := r.Read(p)
	require.NoError(t, err)
	require.Equal(t, 100*2*bytesPerSample, n)

	got := decode(p[:n])
	for i := range 100 {
		assert.InDelta(t, src[0][i], got[2*i], 0)
		assert.InDelta(t, src[1][i], got[2*i+1], 0)
	}
}

func TestRenderer_NonLoopingEndsWithEOF(t *testing.T) {
	r, err := NewRenderer(rampSource(1000, 1), 48000, 128, false)
	require.NoError(t, err)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, data, 1000*bytesPerSample)
	assert.Equal(t, int64(1000), r.Rendered())

	_, err = r.Read(make([]byte, 16))
	assert.True(t, errors.Is(err, io.EOF))
}

func TestRenderer_LoopWraps(t *testing.T) {
	src := rampSource(50, 1)
	r, err := NewRenderer(src, 48000, 32, true)
	require.NoError(t, err)

	p := make([]byte, 120*bytesPerSample)
	n, err := io.ReadFull(r, p)
	require.NoError(t, err)
	require.Equal(t, len(p), n)

	got := decode(p)
	for i := range 120 {
		assert.InDelta(t, src[0][i%50], got[i], 0, "frame %d", i)
	}
}

func TestRenderer_SetParamsTakesEffect(t *testing.T) {
	src := make([][]float32, 1)
	src[0] = make([]float32, 4800)
	for i := range src[0] {
		src[0][i] = 0.5
	}

	r, err := NewRenderer(src, 48000, 256, true)
	require.NoError(t, err)
	assert.Equal(t, tapestop.Bypass, r.Mode())

	p := tapestop.DefaultParams()
	p.Mode = tapestop.Slowdown
	p.SlowdownLength = tapestop.MinTime
	p.FadeLength = 0.01
	p.CrossfadeLength = 0.01
	r.SetParams(p)
	assert.Equal(t, tapestop.Slowdown, r.Params().Mode)

	buf := make([]byte, 4800*bytesPerSample)
	_, err = io.ReadFull(r, buf)
	require.NoError(t, err)
	assert.Equal(t, tapestop.Slowdown, r.Mode())

	got := decode(buf)
	for i := 2400; i < len(got); i++ {
		require.Zero(t, got[i], "frame %d", i)
	}
}

func TestNewRenderer_InvalidSource(t *testing.T) {
	tests := []struct {
		name   string
		source [][]float32
	}{
		{"no channels", nil},
		{"too many channels", rampSource(10, 3)},
		{"empty", [][]float32{{}}},
		{"ragged", [][]float32{make([]float32, 10), make([]float32, 9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRenderer(tt.source, 48000, 64, true)
			assert.ErrorIs(t, err, ErrInvalidSource)
		})
	}

	_, err := NewRenderer(rampSource(10, 1), 100, 64, true)
	assert.ErrorIs(t, err, tapestop.ErrInvalidConfig)
}
