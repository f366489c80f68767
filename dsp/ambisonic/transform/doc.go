// Package transform builds and applies the spherical-harmonic domain
// transforms of a delay branch.
//
// A transform is a tagged variant: [Kind] selects between a rigid rotation,
// built analytically with the Ivanic-Ruedenberg recursion, and a nonlinear
// warp, fitted numerically on the quadrature of package sh. Both produce a
// square [Matrix] over ACN channels.
//
// [Fader] applies a matrix to a block and crossfades sample-accurately when
// the matrix changes. [Worker] computes warp matrices off the audio thread:
// requests are latest-wins per slot, a newer request cancels the build in
// flight, and finished matrices wait in an atomic slot for the audio thread
// to pick up.
package transform
