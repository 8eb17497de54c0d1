package tapestop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-tapestop/internal/testutil"
)

func testParams(mode Mode) Params {
	p := DefaultParams()
	p.Mode = mode
	p.SlowdownLength = 0.05
	p.SpeedupLength = 0.05
	p.FadeLength = 0.01
	p.CrossfadeLength = 0.01
	return p
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"stereo 48k", Config{SampleRate: 48000, BlockSize: 512, Channels: 2}, false},
		{"mono 8k", Config{SampleRate: 8000, BlockSize: 1, Channels: 1}, false},
		{"sample rate too low", Config{SampleRate: 4000, BlockSize: 512, Channels: 2}, true},
		{"sample rate too high", Config{SampleRate: 1e6, BlockSize: 512, Channels: 2}, true},
		{"zero block size", Config{SampleRate: 48000, BlockSize: 0, Channels: 2}, true},
		{"block size too large", Config{SampleRate: 48000, BlockSize: maxBlockSize + 1, Channels: 2}, true},
		{"no channels", Config{SampleRate: 48000, BlockSize: 512, Channels: 0}, true},
		{"too many channels", Config{SampleRate: 48000, BlockSize: 512, Channels: maxChannels + 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New[float64](nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestProcessor_ProcessErrors(t *testing.T) {
	p, err := New[float64](&Config{SampleRate: 48000, BlockSize: 64, Channels: 2})
	require.NoError(t, err)
	params := testParams(Bypass)

	buf := testutil.Channels(testutil.DC(64, 0.5), 2)

	t.Run("nil params", func(t *testing.T) {
		assert.ErrorIs(t, p.Process(buf, 0, 64, nil), ErrInvalidParams)
	})
	t.Run("missing channel", func(t *testing.T) {
		assert.ErrorIs(t, p.Process(buf[:1], 0, 64, &params), ErrInvalidBuffer)
	})
	t.Run("range past end", func(t *testing.T) {
		assert.ErrorIs(t, p.Process(buf, 32, 64, &params), ErrInvalidBuffer)
	})
	t.Run("negative start", func(t *testing.T) {
		assert.ErrorIs(t, p.Process(buf, -1, 10, &params), ErrInvalidBuffer)
	})
	t.Run("short channel", func(t *testing.T) {
		short := [][]float64{buf[0], buf[1][:10]}
		assert.ErrorIs(t, p.Process(short, 0, 64, &params), ErrInvalidBuffer)
	})
	t.Run("empty block", func(t *testing.T) {
		assert.ErrorIs(t, p.ProcessBlock(nil, &params), ErrInvalidBuffer)
	})
	t.Run("zero value processor", func(t *testing.T) {
		var zero Processor[float64]
		assert.ErrorIs(t, zero.Process(buf, 0, 64, &params), ErrNotPrepared)
	})
}

func TestProcessor_BypassIsTransparent(t *testing.T) {
	p, err := New[float32](&Config{SampleRate: 44100, BlockSize: 128, Channels: 2})
	require.NoError(t, err)

	in := testutil.ToFloat32(testutil.Channels(testutil.Sine(1000, 440, 44100, 0.8), 2))
	buf := testutil.ToFloat32(testutil.Channels(testutil.Sine(1000, 440, 44100, 0.8), 2))
	params := DefaultParams()

	require.NoError(t, p.ProcessBlock(buf, &params))
	assert.Equal(t, in, buf)
	assert.Equal(t, Bypass, p.Mode())
}

func TestProcessor_SlowdownEndsInSilence(t *testing.T) {
	p, err := NewMono(48000)
	require.NoError(t, err)

	const n = 48000 / 10
	buf := [][]float64{testutil.Sine(n, 440, 48000, 0.5)}
	params := testParams(Slowdown)

	require.NoError(t, p.ProcessBlock(buf, &params))
	assert.Equal(t, Slowdown, p.Mode())
	testutil.AssertNoNaNOrInf(t, buf[0])
	testutil.AssertSilent(t, buf[0][2400:])
}

func TestProcessor_PrepareResets(t *testing.T) {
	cfg := &Config{SampleRate: 48000, BlockSize: 256, Channels: 1}
	p, err := New[float64](cfg)
	require.NoError(t, err)

	params := testParams(Slowdown)
	buf := [][]float64{testutil.DC(1000, 0.5)}
	require.NoError(t, p.ProcessBlock(buf, &params))

	cfg96 := &Config{SampleRate: 96000, BlockSize: 256, Channels: 1}
	require.NoError(t, p.Prepare(cfg96))
	assert.Equal(t, Bypass, p.Mode())
	assert.Equal(t, *cfg96, p.Config())
	assert.Equal(t, 960000, p.GetInfo().BufferLength)

	assert.ErrorIs(t, p.Prepare(&Config{SampleRate: 1, BlockSize: 256, Channels: 1}), ErrInvalidConfig)
}

func TestProcessor_ResetMatchesFresh(t *testing.T) {
	cfg := &Config{SampleRate: 48000, BlockSize: 128, Channels: 2}
	used, err := New[float64](cfg)
	require.NoError(t, err)
	fresh, err := New[float64](cfg)
	require.NoError(t, err)

	warm := testutil.Channels(testutil.Sine(3000, 220, 48000, 0.7), 2)
	params := testParams(Speedup)
	params.Filter.Enabled = true
	require.NoError(t, used.ProcessBlock(warm, &params))
	used.Reset()

	params = testParams(Slowdown)
	a := testutil.Channels(testutil.Sine(4000, 330, 48000, 0.7), 2)
	b := testutil.Channels(testutil.Sine(4000, 330, 48000, 0.7), 2)
	require.NoError(t, used.ProcessBlock(a, &params))
	require.NoError(t, fresh.ProcessBlock(b, &params))

	assert.Equal(t, b, a)
}

func TestProcessor_GetInfo(t *testing.T) {
	p, err := NewStereo(RateDAT)
	require.NoError(t, err)

	info := p.GetInfo()
	assert.Equal(t, 480000, info.BufferLength)
	assert.InDelta(t, MaxTime, info.MaxTime, 0)
	assert.Equal(t, 2, info.Latency)
	assert.Equal(t, 2, p.Latency())
	assert.Positive(t, info.MemoryUsage)
	assert.NotEmpty(t, info.Algorithm)
	assert.Equal(t, info, GetInfo(p))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"bypass", Bypass, false},
		{"off", Bypass, false},
		{"Slowdown", Slowdown, false},
		{"stop", Slowdown, false},
		{" speedup ", Speedup, false},
		{"start", Speedup, false},
		{"reverse", Bypass, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	typ, err := ParseFilterType("hp")
	require.NoError(t, err)
	assert.Equal(t, Highpass, typ)

	typ, err = ParseFilterType("bandpass")
	require.NoError(t, err)
	assert.Equal(t, Bandpass, typ)

	_, err = ParseFilterType("notch")
	assert.ErrorIs(t, err, ErrInvalidParams)

	order, err := ParseFilterOrder(24)
	require.NoError(t, err)
	assert.Equal(t, Order24dB, order)

	_, err = ParseFilterOrder(18)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func BenchmarkProcessor_StereoSlowdown(b *testing.B) {
	p, err := New[float32](&Config{SampleRate: RateDAT, BlockSize: DefaultBlockSize, Channels: 2})
	require.NoError(b, err)

	buf := testutil.ToFloat32(testutil.Channels(testutil.Sine(DefaultBlockSize, 440, RateDAT, 0.5), 2))
	params := DefaultParams()
	params.Mode = Slowdown
	params.SlowdownLength = MaxTime

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = p.ProcessBlock(buf, &params)
	}
}
