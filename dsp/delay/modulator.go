package delay

// DefaultSmoothingHz is the cutoff of the delay-time smoother.
const DefaultSmoothingHz = 2.0

// Modulator turns a per-block delay target into a per-sample trajectory.
// Within a block the delay moves linearly from the previous block's end
// value to this block's smoothed target, and the LFO offset is added on top.
type Modulator struct {
	smoother   Smoother
	lfo        LFO
	sampleRate float64
	last       float64
	started    bool
}

// NewModulator returns a modulator for sampleRate whose target smoother uses
// the given cutoff.
func NewModulator(sampleRate, smoothingHz float64) *Modulator {
	m := &Modulator{}
	m.Prepare(sampleRate, smoothingHz)
	return m
}

// Prepare sets the sample rate and smoothing cutoff and resets all state.
func (m *Modulator) Prepare(sampleRate, smoothingHz float64) {
	m.sampleRate = sampleRate
	m.smoother.SetCutoff(smoothingHz, sampleRate)
	m.lfo.SetSampleRate(sampleRate)
	m.Reset()
}

// Trajectory fills dst with the per-sample delay, in samples, for the next
// len(dst) samples. targetSamples is the unsmoothed delay target for this
// block, lfoRateHz and lfoDepthSamples control the sine offset.
func (m *Modulator) Trajectory(dst []float64, targetSamples, lfoRateHz, lfoDepthSamples float64) {
	n := len(dst)
	if n == 0 {
		return
	}

	end := m.smoother.Advance(targetSamples, n)
	start := m.last
	if !m.started {
		start, m.started = end, true
	}

	step := (end - start) / float64(n)
	for i := range dst {
		dst[i] = start + step*float64(i+1) + lfoDepthSamples*m.lfo.Next(lfoRateHz)
	}
	m.last = end
}

// Current returns the smoothed delay reached at the end of the last block.
func (m *Modulator) Current() float64 {
	return m.last
}

// Reset drops the smoothed delay and rewinds the LFO.
func (m *Modulator) Reset() {
	m.smoother.Reset()
	m.lfo.Reset()
	m.last = 0
	m.started = false
}
