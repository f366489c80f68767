//go:build fastmath

package core

import "github.com/meko-christian/algo-approx"

// ln10Over20 converts dB to the natural exponent: 10^(x/20) = e^(x*ln10/20).
const ln10Over20 = 0.11512925464970228420089957273422

// dbToGain computes 10^(db/20) using fast approximation.
// Gains are evaluated once per block, so the approximation error never
// accumulates across samples.
func dbToGain(db float64) float64 {
	return approx.FastExp(db * ln10Over20)
}
