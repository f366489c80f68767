// Package buffer provides a planar multichannel float64 block backed by a
// single contiguous arena. DSP kernels accept raw []float64 channel slices;
// Channels hands them out without copying and can be sliced into sub-blocks
// that share the same memory.
package buffer
