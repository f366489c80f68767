package delay

import "math"

// Smoother is a one-pole low-pass used to de-zipper control values:
//
//	y[n] = a0*x + b1*y[n-1],  b1 = exp(-2*pi*fc/fs), a0 = 1 - b1
//
// The first value after a reset is taken over directly.
type Smoother struct {
	b1     float64
	y      float64
	primed bool
}

// NewSmoother returns a smoother with the given cutoff.
func NewSmoother(cutoffHz, sampleRate float64) *Smoother {
	s := &Smoother{}
	s.SetCutoff(cutoffHz, sampleRate)
	return s
}

// SetCutoff updates the cutoff. A non-positive cutoff or sample rate makes
// the smoother follow its input without lag.
func (s *Smoother) SetCutoff(cutoffHz, sampleRate float64) {
	if cutoffHz <= 0 || sampleRate <= 0 {
		s.b1 = 0
		return
	}
	s.b1 = math.Exp(-2 * math.Pi * cutoffHz / sampleRate)
}

// Process advances the smoother by one sample toward x.
func (s *Smoother) Process(x float64) float64 {
	if !s.primed {
		s.y, s.primed = x, true
		return x
	}
	s.y = (1-s.b1)*x + s.b1*s.y
	return s.y
}

// Advance runs n samples toward a constant target in closed form and
// returns the resulting value; equivalent to n calls of Process(target).
func (s *Smoother) Advance(target float64, n int) float64 {
	if !s.primed {
		s.y, s.primed = target, true
		return target
	}
	if n <= 0 {
		return s.y
	}
	s.y = target + (s.y-target)*math.Pow(s.b1, float64(n))
	return s.y
}

// Value returns the current output.
func (s *Smoother) Value() float64 {
	return s.y
}

// Reset forgets the current value; the next input is taken over directly.
func (s *Smoother) Reset() {
	s.y, s.primed = 0, false
}
