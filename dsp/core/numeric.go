package core

import (
	"math"
	"math/bits"
)

// SilenceFloorDB is the gain in dB at or below which a level is silence and
// maps to exactly zero linear gain.
const SilenceFloorDB = -59.91

// Clamp limits value to [lo, hi]. Swapped bounds are reordered; NaN is
// returned unchanged.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case value < lo:
		return lo
	case value > hi:
		return hi
	default:
		return value
	}
}

// FlushDenormals returns 0 for magnitudes below 1e-30. Feedback tails decay
// toward zero forever and would otherwise end up in the denormal range.
func FlushDenormals(x float64) float64 {
	if x > -1e-30 && x < 1e-30 {
		return 0
	}
	return x
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DBToLinear converts dB to amplitude without a silence floor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// DBToGain converts a gain in dB to amplitude. Every level at or below
// [SilenceFloorDB], and NaN, maps to exactly zero.
func DBToGain(db float64) float64 {
	if !(db > SilenceFloorDB) {
		return 0
	}
	return dbToGain(db)
}

// LinearToDB converts amplitude to dB: -Inf for zero, NaN for negative
// input.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}

// NextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
// Values above the largest int power of two saturate to it.
func NextPowerOfTwo(n int) int {
	const largest = 1 << (bits.UintSize - 2)
	switch {
	case n <= 1:
		return 1
	case n >= largest:
		return largest
	}
	return 1 << bits.Len(uint(n-1))
}
