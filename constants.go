package tapestop

// Channel constants
const (
	stereoChannels = 2   // Stereo channel count (used by interleave functions)
	maxChannels    = 256 // Maximum supported channel count
)

// Sample rate limits in Hz
const (
	minSampleRate = 8000.0
	maxSampleRate = 768000.0
)

// Block size limits in frames
const (
	// DefaultBlockSize is used by the convenience constructors and Render
	// when no block size is given.
	DefaultBlockSize = 512

	maxBlockSize = 1 << 16
)

// Tempo constants
const (
	// DefaultTempo is the tempo in BPM assumed when the host reports none.
	DefaultTempo = 120.0

	// secondsPerBarAt1BPM converts a 4/4 bar length to seconds: 4 beats * 60 s.
	secondsPerBarAt1BPM = 240.0

	minTempo = 1.0
	maxTempo = 999.0
)
