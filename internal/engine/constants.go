package engine

// History and timing limits
const (
	// MaxTime is the length of the input history in seconds. It also bounds
	// the slowdown and speedup lengths, so a traversal can never fall behind
	// the write position by more than the buffer holds.
	MaxTime = 10.0

	// MinTime is the shortest slowdown/speedup length in seconds.
	MinTime = 0.05

	// MinAlpha is the smallest curve shape factor. Curve factors whose
	// magnitude is below it select the (almost) linear curve.
	MinAlpha = 5e-3
)

// Lagrange interpolation constants
const (
	// lagrangePoints is the number of taps in the 4th-order interpolator.
	lagrangePoints = 5

	// lagrangeCenter is the node the fractional offset is measured from.
	// Reads therefore trail the requested position by this many samples.
	lagrangeCenter = 2

	// LatencySamples is the read latency of the interpolator in samples.
	LatencySamples = lagrangeCenter
)

// Crossfade and envelope constants
const (
	// realtimeIncrement is the read increment of a finished speedup.
	realtimeIncrement = 1.0

	// bytesPerSample32 and bytesPerSample64 are used for memory estimates.
	bytesPerSample32 = 4
	bytesPerSample64 = 8
)
