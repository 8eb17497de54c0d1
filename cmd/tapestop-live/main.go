// Command tapestop-live plays an audio file through the tape-stop effect on
// the default output device.
//
// Usage:
//
//	tapestop-live -i loop.wav
//	tapestop-live -i song.mp3 -loop=false -params preset.yaml
//
// Keys: s slowdown, g speedup, b bypass, f filter on/off, q quit.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"golang.org/x/term"

	tapestop "github.com/tphakala/go-audio-tapestop"
	"github.com/tphakala/go-audio-tapestop/internal/audiofile"
	"github.com/tphakala/go-audio-tapestop/internal/paramfile"
	"github.com/tphakala/go-audio-tapestop/internal/stream"
)

const (
	outputChannels = 2

	defaultDeviceBuffer = 50 * time.Millisecond
	statusInterval      = 100 * time.Millisecond
)

func main() {
	if err := run(); err != nil {
		logger.Error("tapestop-live failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	input := flag.String("i", "", "Input audio file (.wav or .mp3)")
	loop := flag.Bool("loop", true, "Loop the input")
	blockSize := flag.Int("block", tapestop.DefaultBlockSize, "Processing block size in frames")
	deviceBuffer := flag.Duration("buffer", defaultDeviceBuffer, "Output device buffer")
	paramsPath := flag.String("params", "", "YAML parameter file")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := InitLogger(*logLevel); err != nil {
		return err
	}
	if *input == "" {
		flag.Usage()
		return errors.New("no input file")
	}

	params := tapestop.DefaultParams()
	if *paramsPath != "" {
		f, err := paramfile.Load(*paramsPath)
		if err != nil {
			return err
		}
		if err := f.Apply(&params); err != nil {
			return fmt.Errorf("%s: %w", *paramsPath, err)
		}
	}

	audio, err := audiofile.Load(*input)
	if err != nil {
		return err
	}
	source, err := stereoSource(audio)
	if err != nil {
		return err
	}
	logger.Info("loaded input",
		"file", *input,
		"rate", audio.SampleRate,
		"channels", len(audio.Channels),
		"frames", audio.Frames())

	renderer, err := stream.NewRenderer(source, float64(audio.SampleRate), *blockSize, *loop)
	if err != nil {
		return err
	}
	renderer.SetParams(params)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audio.SampleRate,
		ChannelCount: outputChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   *deviceBuffer,
	})
	if err != nil {
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(renderer)
	defer func() { _ = player.Close() }()
	player.Play()

	restore, err := rawTerminal()
	if err != nil {
		return err
	}
	defer restore()

	fmt.Print("s slowdown  g speedup  b bypass  f filter  q quit\r\n")
	return playLoop(player, renderer, keys(os.Stdin), float64(audio.SampleRate))
}

// stereoSource converts decoded audio to the renderer's stereo float32
// layout. Mono is duplicated; channels past the second are dropped.
func stereoSource(a *audiofile.Audio) ([][]float32, error) {
	if len(a.Channels) == 0 || a.Frames() == 0 {
		return nil, fmt.Errorf("%w: empty input", audiofile.ErrInvalidAudio)
	}
	if len(a.Channels) > outputChannels {
		logger.Warn("input has more than two channels, playing the first two", "channels", len(a.Channels))
	}

	left := toFloat32(a.Channels[0])
	right := left
	if len(a.Channels) > 1 {
		right = toFloat32(a.Channels[1])
	}
	return [][]float32{left, right}, nil
}

func toFloat32(s []float64) []float32 {
	out := make([]float32, len(s))
	for i, v := range s {
		out[i] = float32(v)
	}
	return out
}

// rawTerminal switches stdin to raw mode when it is a terminal and returns
// the function restoring it.
func rawTerminal() (func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to set raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// keys streams single bytes from r. The channel is closed when r fails.
func keys(r io.Reader) <-chan byte {
	ch := make(chan byte)
	go func() {
		defer close(ch)
		br := bufio.NewReader(r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				return
			}
			ch <- b
		}
	}()
	return ch
}

// playLoop handles key presses and prints the transport status until the
// user quits or a non-looping input has played out.
func playLoop(player *oto.Player, renderer *stream.Renderer, keyCh <-chan byte, sampleRate float64) error {
	ctrl := &controller{sink: renderer}
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case key, ok := <-keyCh:
			if !ok {
				// stdin closed, keep playing until the input ends
				keyCh = nil
				continue
			}
			quit, status := ctrl.handleKey(key)
			if status != "" {
				logger.Debug("key", "key", string(key), "status", status)
			}
			if quit {
				fmt.Print("\r\n")
				return nil
			}
		case <-ticker.C:
			if err := player.Err(); err != nil {
				return fmt.Errorf("playback failed: %w", err)
			}
			if !player.IsPlaying() {
				fmt.Print("\r\n")
				return nil
			}
			p := renderer.Params()
			fmt.Printf("\r%-9s filter %-3s %8.2fs ",
				renderer.Mode(), onOff(p.Filter.Enabled),
				float64(renderer.Rendered())/sampleRate)
		}
	}
}
