// Package design provides RBJ (Audio EQ Cookbook) coefficient designers for
// the 2nd-order low-pass and high-pass sections consumed by
// dsp/filter/biquad.
//
// Cutoffs at or above Nyquist are not rejected: a low-pass degenerates to a
// pass-through and a high-pass to a section that blocks everything, which is
// the limit behaviour of both responses.
package design
