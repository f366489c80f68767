// Package biquad provides the second-order IIR runtime used by the spectral
// shaping stage.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Coefficient design lives in
// dsp/filter/design.
package biquad
