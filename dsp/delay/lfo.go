package delay

import "math"

// LFO is a sine oscillator with phase in [0, 1).
type LFO struct {
	phase      float64
	sampleRate float64
}

// NewLFO returns an oscillator at phase 0 for the given sample rate.
func NewLFO(sampleRate float64) *LFO {
	return &LFO{sampleRate: sampleRate}
}

// SetSampleRate changes the rate used to convert Hz to phase increments.
func (o *LFO) SetSampleRate(sampleRate float64) {
	o.sampleRate = sampleRate
}

// Phase returns the current phase in [0, 1).
func (o *LFO) Phase() float64 {
	return o.phase
}

// Next returns sin(2*pi*phase) and advances the phase by rateHz/sampleRate.
// Negative rates are treated as zero.
func (o *LFO) Next(rateHz float64) float64 {
	y := math.Sin(2 * math.Pi * o.phase)
	if rateHz > 0 && o.sampleRate > 0 {
		o.phase += rateHz / o.sampleRate
		o.phase -= math.Floor(o.phase)
	}
	return y
}

// Reset rewinds the phase to 0.
func (o *LFO) Reset() {
	o.phase = 0
}
