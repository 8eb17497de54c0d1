package audiofile

import "github.com/tphakala/go-audio-tapestop/internal/simdops"

const (
	// chunkFrames is the number of frames converted per I/O round trip.
	chunkFrames = 65536

	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

// MaxValue returns the full-scale integer value for a bit depth. Unknown
// depths are treated as 16-bit.
func MaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// DeinterleaveInto converts interleaved int samples into preallocated
// per-channel buffers, scaling by invMaxVal.
func DeinterleaveInto[F simdops.Float](data []int, channelBufs [][]F, numChannels, samplesPerChannel int, invMaxVal float64) {
	if numChannels == monoChannels {
		buf := channelBufs[0]
		for i := range samplesPerChannel {
			buf[i] = F(float64(data[i]) * invMaxVal)
		}
		return
	}

	if numChannels == stereoChannels {
		buf0, buf1 := channelBufs[0], channelBufs[1]
		for i := range samplesPerChannel {
			idx := i * stereoChannels
			buf0[i] = F(float64(data[idx]) * invMaxVal)
			buf1[i] = F(float64(data[idx+1]) * invMaxVal)
		}
		return
	}

	for i := range samplesPerChannel {
		base := i * numChannels
		for ch := range numChannels {
			channelBufs[ch][i] = F(float64(data[base+ch]) * invMaxVal)
		}
	}
}

// InterleaveInto converts per-channel float slices into a preallocated int
// buffer, clipping to [-1, 1]. It returns the number of elements written,
// or 0 when dst is too small.
func InterleaveInto[F simdops.Float](channels [][]F, dst []int, maxVal float64) int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return 0
	}

	numChannels := len(channels)
	samplesPerChannel := len(channels[0])
	totalLen := samplesPerChannel * numChannels
	if len(dst) < totalLen {
		return 0
	}

	if numChannels == monoChannels {
		ch := channels[0]
		for i := range samplesPerChannel {
			dst[i] = toInt(float64(ch[i]), maxVal)
		}
		return samplesPerChannel
	}

	if numChannels == stereoChannels {
		ch0, ch1 := channels[0], channels[1]
		for i := range samplesPerChannel {
			idx := i * stereoChannels
			dst[idx] = toInt(float64(ch0[i]), maxVal)
			dst[idx+1] = toInt(float64(ch1[i]), maxVal)
		}
		return totalLen
	}

	for i := range samplesPerChannel {
		base := i * numChannels
		for ch := range numChannels {
			dst[base+ch] = toInt(float64(channels[ch][i]), maxVal)
		}
	}

	return totalLen
}

func toInt(sample, maxVal float64) int {
	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	return int(sample * maxVal)
}
