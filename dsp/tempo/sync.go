package tempo

import (
	"math"

	"github.com/cwbudde/algo-ambidelay/dsp/core"
)

// Default tempo range and multiplier range.
const (
	DefaultMinBPM        = 45.0
	DefaultMaxBPM        = 320.0
	DefaultMinMultiplier = 0.5
	DefaultMaxMultiplier = 8.0
)

// rangeTolerance keeps round-off in 60000/ms from folding a tempo that sits
// exactly on a range bound.
const rangeTolerance = 1e-9

// Config bounds the BPM and multiplier values produced by conversions.
type Config struct {
	MinBPM        float64
	MaxBPM        float64
	MinMultiplier float64
	MaxMultiplier float64
}

// DefaultConfig returns the [45, 320] BPM and [0.5, 8] multiplier ranges.
func DefaultConfig() Config {
	return Config{
		MinBPM:        DefaultMinBPM,
		MaxBPM:        DefaultMaxBPM,
		MinMultiplier: DefaultMinMultiplier,
		MaxMultiplier: DefaultMaxMultiplier,
	}
}

// normalized replaces invalid bounds with defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if !(c.MinBPM > 0) || !(c.MaxBPM >= c.MinBPM) {
		c.MinBPM, c.MaxBPM = def.MinBPM, def.MaxBPM
	}
	if !(c.MinMultiplier > 0) || !(c.MaxMultiplier >= c.MinMultiplier) {
		c.MinMultiplier, c.MaxMultiplier = def.MinMultiplier, def.MaxMultiplier
	}
	return c
}

// MsFromBPM returns the delay time in milliseconds of one beat at bpm
// divided by multiplier. Non-positive inputs yield 0.
func MsFromBPM(bpm, multiplier float64) float64 {
	if !(bpm > 0) || !(multiplier > 0) {
		return 0
	}
	return 60000 / (bpm * multiplier)
}

// BPMFromMs converts a delay time to a BPM inside [MinBPM, MaxBPM] and a
// power-of-two multiplier inside [MinMultiplier, MaxMultiplier].
//
// Tempi above MaxBPM are divided by the smallest power of two that brings
// them into range, tempi below MinBPM are multiplied analogously; whatever
// the clamped multiplier cannot absorb is clamped into the BPM range.
func (c Config) BPMFromMs(ms float64) (bpm, multiplier float64) {
	c = c.normalized()
	if !(ms > 0) || math.IsInf(ms, 0) {
		return c.MinBPM, 1
	}

	bpm = 60000 / ms
	multiplier = 1

	switch {
	case bpm > c.MaxBPM*(1+rangeTolerance):
		multiplier = math.Min(powerOfTwoAbove(bpm/c.MaxBPM), c.MaxMultiplier)
		bpm = math.Min(bpm/multiplier, c.MaxBPM)
	case bpm < c.MinBPM*(1-rangeTolerance):
		multiplier = math.Max(1/powerOfTwoAbove(c.MinBPM/bpm), c.MinMultiplier)
		bpm = math.Max(bpm/multiplier, c.MinBPM)
	default:
		bpm = core.Clamp(bpm, c.MinBPM, c.MaxBPM)
	}

	return bpm, multiplier
}

// SnapMultiplier rounds multiplier to the nearest power of two in log space
// and clamps it to [MinMultiplier, MaxMultiplier].
func (c Config) SnapMultiplier(multiplier float64) float64 {
	c = c.normalized()
	if !(multiplier > 0) {
		return 1
	}
	snapped := math.Exp2(math.Round(math.Log2(multiplier)))
	return core.Clamp(snapped, c.MinMultiplier, c.MaxMultiplier)
}

// ClampBPM limits bpm to [MinBPM, MaxBPM].
func (c Config) ClampBPM(bpm float64) float64 {
	c = c.normalized()
	if math.IsNaN(bpm) {
		return c.MinBPM
	}
	return core.Clamp(bpm, c.MinBPM, c.MaxBPM)
}

// powerOfTwoAbove returns the smallest power of two >= ratio, staying in
// float space so extreme ratios saturate at +Inf instead of overflowing.
func powerOfTwoAbove(ratio float64) float64 {
	return math.Exp2(math.Ceil(math.Log2(ratio)))
}
