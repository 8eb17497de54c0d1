// Package audiofile reads and writes the audio files handled by the command
// line tools. WAV input is streamed through go-audio/wav, MP3 input through
// go-mp3, and output is written as integer PCM WAV.
package audiofile

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Errors returned by the package.
var (
	// ErrUnsupportedFormat indicates a file type or sample encoding that
	// cannot be decoded or encoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidAudio indicates malformed planar audio.
	ErrInvalidAudio = errors.New("invalid audio data")
)

// Format describes a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// Decoder streams interleaved integer PCM from a file.
type Decoder interface {
	// Format returns the stream format.
	Format() Format

	// Frames returns the total number of frames, or 0 when unknown.
	Frames() int64

	// ReadInts fills dst with whole interleaved frames and returns the
	// number of frames read. It returns io.EOF once the stream is drained.
	ReadInts(dst []int) (int, error)

	Close() error
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}

// Open opens a WAV or MP3 file for streaming, selected by extension.
func Open(path string) (Decoder, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return openWAV(path)
	case ".mp3":
		return openMP3(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

// Audio is a fully decoded file in planar float64 samples normalized to
// [-1, 1].
type Audio struct {
	Channels   [][]float64
	SampleRate int
	BitDepth   int
}

// Frames returns the number of frames per channel.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Load decodes a whole WAV or MP3 file into memory.
func Load(path string) (*Audio, error) {
	dec, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dec.Close() }()

	format := dec.Format()
	a := &Audio{
		Channels:   make([][]float64, format.Channels),
		SampleRate: format.SampleRate,
		BitDepth:   format.BitDepth,
	}
	if total := dec.Frames(); total > 0 {
		for ch := range a.Channels {
			a.Channels[ch] = make([]float64, 0, total)
		}
	}

	ints := make([]int, chunkFrames*format.Channels)
	planar := make([][]float64, format.Channels)
	for ch := range planar {
		planar[ch] = make([]float64, chunkFrames)
	}
	invMaxVal := 1.0 / MaxValue(format.BitDepth)

	for {
		n, err := dec.ReadInts(ints)
		if n > 0 {
			DeinterleaveInto(ints, planar, format.Channels, n, invMaxVal)
			for ch := range a.Channels {
				a.Channels[ch] = append(a.Channels[ch], planar[ch][:n]...)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
	}

	return a, nil
}

// SaveWAV writes planar samples as integer PCM. Samples outside [-1, 1]
// are clipped.
func SaveWAV(path string, a *Audio, bitDepth int) (err error) {
	if a == nil || len(a.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidAudio)
	}
	frames := a.Frames()
	for ch, data := range a.Channels {
		if len(data) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, expected %d", ErrInvalidAudio, ch, len(data), frames)
		}
	}

	w, err := Create(path, Format{SampleRate: a.SampleRate, Channels: len(a.Channels), BitDepth: bitDepth})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); err == nil {
			err = closeErr
		}
	}()

	ints := make([]int, chunkFrames*len(a.Channels))
	view := make([][]float64, len(a.Channels))
	maxVal := MaxValue(bitDepth)
	for pos := 0; pos < frames; pos += chunkFrames {
		end := min(pos+chunkFrames, frames)
		for ch := range view {
			view[ch] = a.Channels[ch][pos:end]
		}
		n := InterleaveInto(view, ints, maxVal)
		if err := w.WriteSamples(ints[:n]); err != nil {
			return fmt.Errorf("failed to write audio data: %w", err)
		}
	}

	return nil
}
