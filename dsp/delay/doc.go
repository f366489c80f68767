// Package delay provides the fractional, modulated multichannel delay line
// of the dual-delay engine.
//
// [Line] stores every channel in one arena with its own write cursor and
// reads back with a 4-tap 3rd-order Lagrange kernel. [Modulator] produces
// the per-sample delay trajectory of a block: a linear ramp toward a
// one-pole smoothed target plus a sine [LFO] offset.
package delay
