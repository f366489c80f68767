// Package interp provides the fractional-sample interpolation kernel used by
// the modulated delay line: a 4-point, 3rd-order Lagrange polynomial through
// the samples at offsets -1, 0, 1 and 2.
package interp
