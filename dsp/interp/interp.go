package interp

// Lagrange3Weights returns the 3rd-order Lagrange weights for the taps at
// offsets -1, 0, 1 and 2 evaluated at position t. t in [0, 1) interpolates
// between offsets 0 and 1; t in [-1, 0) is still inside the tap span.
// The weights sum to 1 for every t.
func Lagrange3Weights(t float64) [4]float64 {
	tm1 := t - 1
	tm2 := t - 2
	tp1 := t + 1

	return [4]float64{
		-t * tm1 * tm2 / 6,
		tp1 * tm1 * tm2 / 2,
		-tp1 * t * tm2 / 2,
		tp1 * t * tm1 / 6,
	}
}
