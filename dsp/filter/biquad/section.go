package biquad

import "github.com/cwbudde/algo-ambidelay/dsp/core"

// Coefficients of one second-order section with a0 normalized to 1:
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// Passthrough returns unity-gain coefficients.
func Passthrough() Coefficients {
	return Coefficients{B0: 1}
}

// Section runs one set of coefficients in Direct Form II Transposed.
// Replacing Coefficients keeps the state, so a change applies from the next
// sample without a reset.
type Section struct {
	Coefficients

	z1, z2 float64
}

// Process filters one sample.
func (s *Section) Process(x float64) float64 {
	y := s.B0*x + s.z1
	s.z1 = s.B1*x - s.A1*y + s.z2
	s.z2 = s.B2*x - s.A2*y
	return y
}

// ProcessBlock filters buf in place. State that has decayed into the
// denormal range is flushed to zero at the end of the block.
func (s *Section) ProcessBlock(buf []float64) {
	c := s.Coefficients
	z1, z2 := s.z1, s.z2
	for i, x := range buf {
		y := c.B0*x + z1
		z1 = c.B1*x - c.A1*y + z2
		z2 = c.B2*x - c.A2*y
		buf[i] = y
	}
	s.z1 = core.FlushDenormals(z1)
	s.z2 = core.FlushDenormals(z2)
}

// Reset clears the filter state.
func (s *Section) Reset() {
	s.z1, s.z2 = 0, 0
}

// State returns the two state variables.
func (s *Section) State() [2]float64 {
	return [2]float64{s.z1, s.z2}
}
