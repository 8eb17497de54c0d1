package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	mp3Channels      = 2
	mp3BytesPerFrame = mp3Channels * bytesPerSample16
)

// mp3Decoder streams decoded MP3 audio as 16-bit integer PCM.
type mp3Decoder struct {
	file    *os.File
	decoder *mp3.Decoder
	format  Format
	frames  int64
	raw     []byte
}

func openMP3(path string) (*mp3Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("invalid MP3 file %s: %w", path, err)
	}

	var frames int64
	if length := decoder.Length(); length > 0 {
		frames = length / mp3BytesPerFrame
	}

	return &mp3Decoder{
		file:    f,
		decoder: decoder,
		format: Format{
			SampleRate: decoder.SampleRate(),
			Channels:   mp3Channels,
			BitDepth:   bitsPerSample16,
		},
		frames: frames,
	}, nil
}

func (d *mp3Decoder) Format() Format { return d.format }

func (d *mp3Decoder) Frames() int64 { return d.frames }

func (d *mp3Decoder) ReadInts(dst []int) (int, error) {
	frames := len(dst) / mp3Channels
	if frames == 0 {
		return 0, fmt.Errorf("buffer smaller than one frame")
	}

	size := frames * mp3BytesPerFrame
	if cap(d.raw) < size {
		d.raw = make([]byte, size)
	}
	raw := d.raw[:size]

	n, err := io.ReadFull(d.decoder, raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return 0, err
	}

	whole := n / mp3BytesPerFrame
	if whole == 0 {
		return 0, io.EOF
	}
	for i := range whole * mp3Channels {
		dst[i] = int(int16(binary.LittleEndian.Uint16(raw[i*bytesPerSample16:])))
	}
	return whole, nil
}

func (d *mp3Decoder) Close() error {
	return d.file.Close()
}
