package design

import (
	"math"

	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/filter/biquad"
)

// ButterworthQ is the quality factor of a 2nd-order Butterworth section.
const ButterworthQ = 1 / math.Sqrt2

type response int

const (
	lowpass response = iota
	highpass
)

// Lowpass designs a low-pass section at freq Hz. A cutoff at or above
// Nyquist yields a pass-through section.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	return cookbook(lowpass, freq, q, sampleRate)
}

// Highpass designs a high-pass section at freq Hz. A cutoff at or above
// Nyquist yields an all-zero section.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	return cookbook(highpass, freq, q, sampleRate)
}

// cookbook evaluates the RBJ formulas. Invalid rates and non-positive
// cutoffs give the zero section; an invalid q falls back to ButterworthQ.
func cookbook(kind response, freq, q, sampleRate float64) biquad.Coefficients {
	if !(sampleRate > 0) || !core.IsFinite(sampleRate) || !(freq > 0) {
		return biquad.Coefficients{}
	}
	if freq >= sampleRate/2 {
		if kind == lowpass {
			return biquad.Passthrough()
		}
		return biquad.Coefficients{}
	}
	if !(q > 0) || !core.IsFinite(q) {
		q = ButterworthQ
	}

	sin, cos := math.Sincos(2 * math.Pi * freq / sampleRate)
	alpha := sin / (2 * q)
	norm := 1 / (1 + alpha)

	// b1 is the only numerator term that differs in sign; b0 = b2 = b1/2
	// in magnitude.
	b1 := 1 - cos
	if kind == highpass {
		b1 = -(1 + cos)
	}
	b0 := math.Abs(b1) / 2

	return biquad.Coefficients{
		B0: b0 * norm,
		B1: b1 * norm,
		B2: b0 * norm,
		A1: -2 * cos * norm,
		A2: (1 - alpha) * norm,
	}
}
