package audiofile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAV format constants
const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE

	wavHeaderSize      = 44 // Total WAV header size in bytes
	wavRiffHeaderSize  = 36 // RIFF header size (file size - 8 = riffHeaderSize + dataSize)
	wavPCMSubchunkSize = 16 // fmt subchunk size for PCM format
	wavFileSizeOffset  = 4  // Byte offset for file size field in header
	wavDataSizeOffset  = 40 // Byte offset for data size field in header

	bytesPerSample16 = 2
	bytesPerSample24 = 3
	bytesPerSample32 = 4
	bitsPerByte      = 8

	bitShift8  = 8
	bitShift16 = 16

	wavWriterBufferSize = 256 * 1024
	uint32Size          = 4
)

// wavDecoder streams integer PCM through go-audio/wav.
type wavDecoder struct {
	file    *os.File
	decoder *wav.Decoder
	format  Format
	frames  int64
	buf     audio.IntBuffer
	partial []int // samples of a frame split across reads
}

func openWAV(path string) (*wavDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	if decoder.WavAudioFormat != wavFormatPCM && decoder.WavAudioFormat != wavFormatExtensible {
		_ = f.Close()
		return nil, fmt.Errorf("%w: WAV encoding %d (only integer PCM is supported)", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}

	bitDepth := int(decoder.BitDepth)
	switch bitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		_ = f.Close()
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}

	if err := decoder.FwdToPCM(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file %s: %w", path, err)
	}

	format := decoder.Format()
	frameSize := int64(format.NumChannels * bitDepth / bitsPerByte)
	frames := decoder.PCMLen() / frameSize

	return &wavDecoder{
		file:    f,
		decoder: decoder,
		format: Format{
			SampleRate: format.SampleRate,
			Channels:   format.NumChannels,
			BitDepth:   bitDepth,
		},
		frames: frames,
		buf:    audio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}, nil
}

func (d *wavDecoder) Format() Format { return d.format }

func (d *wavDecoder) Frames() int64 { return d.frames }

func (d *wavDecoder) ReadInts(dst []int) (int, error) {
	channels := d.format.Channels
	want := len(dst) - len(dst)%channels
	if want == 0 {
		return 0, fmt.Errorf("buffer smaller than one frame")
	}

	n := copy(dst[:want], d.partial)
	d.partial = d.partial[:0]

	for n < want {
		d.buf.Data = dst[n:want]
		got, err := d.decoder.PCMBuffer(&d.buf)
		if err != nil {
			return 0, err
		}
		if got == 0 {
			break
		}
		n += got
	}

	whole := n - n%channels
	d.partial = append(d.partial, dst[whole:n]...)
	if whole == 0 {
		return 0, io.EOF
	}
	return whole / channels, nil
}

func (d *wavDecoder) Close() error {
	return d.file.Close()
}

// Writer writes integer PCM WAV files without per-sample allocations. The
// header sizes are patched on Close.
type Writer struct {
	w        *bufio.Writer
	f        *os.File
	format   Format
	dataSize uint32
	byteBuf  []byte
}

// Create creates a WAV file at path for the given format. Bit depth must be
// 16, 24 or 32.
func Create(path string, format Format) (*Writer, error) {
	switch format.BitDepth {
	case bitsPerSample16, bitsPerSample24, bitsPerSample32:
	default:
		return nil, fmt.Errorf("%w: %d-bit output", ErrUnsupportedFormat, format.BitDepth)
	}
	if format.Channels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidAudio, format.Channels, format.SampleRate)
	}

	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &Writer{
		w:       bufio.NewWriterSize(f, wavWriterBufferSize),
		f:       f,
		format:  format,
		byteBuf: make([]byte, chunkFrames*format.Channels*(format.BitDepth/bitsPerByte)),
	}

	if err := w.writeHeader(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write WAV header: %w", err)
	}

	return w, nil
}

// Format returns the output format.
func (w *Writer) Format() Format {
	return w.format
}

func (w *Writer) writeHeader() error {
	bytesPerSample := w.format.BitDepth / bitsPerByte
	byteRate := w.format.SampleRate * w.format.Channels * bytesPerSample
	blockAlign := w.format.Channels * bytesPerSample

	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 0)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], wavPCMSubchunkSize)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(w.format.Channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(w.format.SampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], uint16(w.format.BitDepth))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], 0)

	_, err := w.w.Write(header)
	return err
}

// WriteSamples writes interleaved integer samples at the output bit depth.
func (w *Writer) WriteSamples(samples []int) error {
	bytesPerSample := w.format.BitDepth / bitsPerByte
	needed := len(samples) * bytesPerSample
	if len(w.byteBuf) < needed {
		w.byteBuf = make([]byte, needed)
	}
	buf := w.byteBuf[:needed]

	switch w.format.BitDepth {
	case bitsPerSample24:
		for i, s := range samples {
			buf[i*bytesPerSample24] = byte(s)
			buf[i*bytesPerSample24+1] = byte(s >> bitShift8)
			buf[i*bytesPerSample24+2] = byte(s >> bitShift16)
		}
	case bitsPerSample32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(buf[i*bytesPerSample32:], uint32(int32(s)))
		}
	default:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*bytesPerSample16:], uint16(int16(s)))
		}
	}

	written, err := w.w.Write(buf)
	w.dataSize += uint32(written)
	return err
}

// Close flushes buffered data, patches the header sizes and closes the
// file.
func (w *Writer) Close() error {
	err := w.finish()
	if closeErr := w.f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (w *Writer) finish() error {
	if err := w.w.Flush(); err != nil {
		return err
	}

	sizeBytes := make([]byte, uint32Size)

	binary.LittleEndian.PutUint32(sizeBytes, wavRiffHeaderSize+w.dataSize)
	if _, err := w.f.WriteAt(sizeBytes, wavFileSizeOffset); err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(sizeBytes, w.dataSize)
	if _, err := w.f.WriteAt(sizeBytes, wavDataSizeOffset); err != nil {
		return err
	}

	return nil
}
