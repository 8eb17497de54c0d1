package engine

import "math"

// CalculateAlpha maps a curve factor in [-1, 1] to the shape parameter used
// by ApplyExpScale. Factors close to zero select MinAlpha, which gives an
// almost linear curve. Negative factors push alpha towards 1 (slow start,
// fast finish), positive factors make alpha negative (fast start, slow finish).
func CalculateAlpha(curveFactor float64) float64 {
	if math.Abs(curveFactor) < MinAlpha {
		return MinAlpha
	}
	return 1 - math.Pow(MinAlpha, -curveFactor)
}

// ApplyExpScale evaluates the exponential velocity curve at val in [0, 1].
//
// The curve always maps 0 to 0 and 1 to 1. As alpha approaches zero it
// degenerates to the identity. No clamping is done; callers keep val in range.
func ApplyExpScale(val, alpha float64) float64 {
	return (1/alpha - 1) * (math.Pow(1/(1-alpha), val) - 1)
}

// CurveSettings holds the velocity curve of one traversal. It is derived once
// per block and copied into an instance when the instance is (re)started.
type CurveSettings struct {
	Alpha    float64 // Shape parameter from CalculateAlpha
	StartPos float64 // Curve position at the start of the traversal, [0, 1]
	EndPos   float64 // Curve position at the end of the traversal, [0, 1]
}

// NewCurveSettings builds curve settings from the raw curve factor and the
// start/end positions of the parameter snapshot.
func NewCurveSettings(curveFactor, startPos, endPos float64) CurveSettings {
	return CurveSettings{
		Alpha:    CalculateAlpha(curveFactor),
		StartPos: startPos,
		EndPos:   endPos,
	}
}

// position maps traversal progress in [0, 1] onto the [StartPos, EndPos]
// window of the curve.
func (c CurveSettings) position(progress float64) float64 {
	return (c.EndPos-c.StartPos)*progress + c.StartPos
}

// Speed returns the playback-rate multiplier at the given traversal progress
// for the given mode. Slowdown runs the curve backwards so it starts at real
// time and ends at rest; every other mode runs it forwards.
func (c CurveSettings) Speed(mode Mode, progress float64) float64 {
	pos := c.position(progress)
	if mode == Slowdown {
		pos = 1 - pos
	}
	return ApplyExpScale(pos, c.Alpha)
}
