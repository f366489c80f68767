// Package shaper implements the spectral shaping stage of a delay branch:
// a high-pass followed by a low-pass 2nd-order section on every channel.
package shaper

import (
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/filter/biquad"
	"github.com/cwbudde/algo-ambidelay/dsp/filter/design"
)

// MinCutoffHz is the lowest cutoff accepted by [Shaper.SetCutoffs].
const MinCutoffHz = 20.0

// Shaper holds one independent high-pass and low-pass section per channel.
// All channels share the same coefficient set.
type Shaper struct {
	highPass []biquad.Section
	lowPass  []biquad.Section

	hpCoeffs biquad.Coefficients
	lpCoeffs biquad.Coefficients

	highPassHz float64
	lowPassHz  float64
}

// New returns a shaper for the given channel count with pass-through
// coefficients.
func New(channels int) *Shaper {
	s := &Shaper{
		hpCoeffs: biquad.Passthrough(),
		lpCoeffs: biquad.Passthrough(),
	}
	s.Resize(channels)
	return s
}

// Resize sets the channel count. Filter history of every channel is dropped.
func (s *Shaper) Resize(channels int) {
	channels = max(channels, 0)
	if cap(s.highPass) >= channels {
		s.highPass = s.highPass[:channels]
		s.lowPass = s.lowPass[:channels]
	} else {
		s.highPass = make([]biquad.Section, channels)
		s.lowPass = make([]biquad.Section, channels)
	}
	for ch := range channels {
		s.highPass[ch] = biquad.Section{Coefficients: s.hpCoeffs}
		s.lowPass[ch] = biquad.Section{Coefficients: s.lpCoeffs}
	}
}

// Channels returns the current channel count.
func (s *Shaper) Channels() int {
	return len(s.highPass)
}

// SetCutoffs recomputes the coefficients of both stages. Cutoffs are
// clamped to [MinCutoffHz, sampleRate/2]. Unchanged cutoffs are a no-op;
// filter state is kept so new coefficients apply from the next sample.
func (s *Shaper) SetCutoffs(highPassHz, lowPassHz, sampleRate float64) {
	if sampleRate <= 0 {
		return
	}

	nyquist := sampleRate / 2
	highPassHz = core.Clamp(highPassHz, MinCutoffHz, nyquist)
	lowPassHz = core.Clamp(lowPassHz, MinCutoffHz, nyquist)
	if highPassHz == s.highPassHz && lowPassHz == s.lowPassHz {
		return
	}

	s.highPassHz, s.lowPassHz = highPassHz, lowPassHz
	s.hpCoeffs = design.Highpass(highPassHz, design.ButterworthQ, sampleRate)
	s.lpCoeffs = design.Lowpass(lowPassHz, design.ButterworthQ, sampleRate)

	for ch := range s.highPass {
		s.highPass[ch].Coefficients = s.hpCoeffs
		s.lowPass[ch].Coefficients = s.lpCoeffs
	}
}

// Cutoffs returns the clamped cutoffs currently in effect.
func (s *Shaper) Cutoffs() (highPassHz, lowPassHz float64) {
	return s.highPassHz, s.lowPassHz
}

// MagnitudeDB returns the gain of the cascade at freqHz in dB. sampleRate
// must be the rate passed to SetCutoffs.
func (s *Shaper) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return s.hpCoeffs.MagnitudeDB(freqHz, sampleRate) + s.lpCoeffs.MagnitudeDB(freqHz, sampleRate)
}

// ProcessBlock filters one channel in place, high-pass first.
// Channels outside the configured range are left untouched.
func (s *Shaper) ProcessBlock(channel int, samples []float64) {
	if channel < 0 || channel >= len(s.highPass) {
		return
	}

	s.highPass[channel].ProcessBlock(samples)
	s.lowPass[channel].ProcessBlock(samples)
}

// Reset clears the history of every channel.
func (s *Shaper) Reset() {
	for ch := range s.highPass {
		s.highPass[ch].Reset()
		s.lowPass[ch].Reset()
	}
}

// ResetChannels clears the history of channels [from, to). Indices are
// clamped.
func (s *Shaper) ResetChannels(from, to int) {
	from = max(from, 0)
	to = min(to, len(s.highPass))
	for ch := from; ch < to; ch++ {
		s.highPass[ch].Reset()
		s.lowPass[ch].Reset()
	}
}
