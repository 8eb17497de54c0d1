// Package tapestop implements a tape-stop audio effect in pure Go.
//
// The effect imitates a tape machine whose motor is switched off or on:
// during a slowdown the playback speed falls from real time to zero, pitch
// and tempo dropping together, and the output ends in silence. A speedup
// starts from standstill and accelerates back to real time. Switching modes
// crossfades between two playback instances so transitions are click-free.
//
// # Features
//
//   - Slowdown and speedup with independent lengths and curve shapes
//   - Exponential velocity curves from logarithmic through linear to
//     exponential, with an optional start/end window
//   - 5-point Lagrange interpolation on a 10 s input history
//   - Equal-power crossfade between playback instances
//   - Optional state-variable filter (lowpass, bandpass, highpass; 12 or
//     24 dB/oct) on the effect output
//   - Tempo-synced ramp lengths from note values
//   - Generic over float32 and float64 samples, SIMD-accelerated via
//     github.com/tphakala/simd
//
// # Quick Start
//
// Real-time style processing with a reusable processor:
//
//	p, err := tapestop.New[float32](&tapestop.Config{
//	    SampleRate: 48000,
//	    BlockSize:  512,
//	    Channels:   2,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	params := tapestop.DefaultParams()
//	for block := range blocks {
//	    params.Mode = currentMode()
//	    if err := p.ProcessBlock(block, &params); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Offline rendering with scheduled mode changes:
//
//	auto, _ := tapestop.ParseAutomation("1:stop,3:start", 48000)
//	out, err := tapestop.Render(input, 48000, 512, tapestop.DefaultParams(), auto)
//
// # Latency
//
// The interpolator reads two samples behind the write position, so the
// processor reports a constant latency of 2 samples. In bypass the input is
// passed through unchanged.
//
// # Thread Safety
//
// A [Processor] is not safe for concurrent use. Parameters are read once
// per call to [Processor.Process]; hosts that change parameters from another
// goroutine should hand a complete [Params] snapshot to the audio goroutine.
package tapestop
