package transform

import (
	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
)

// Fader applies a matrix to blocks and crossfades linearly, per sample,
// from the current matrix to a new one.
type Fader struct {
	current Matrix
	target  Matrix
	pos     int
	length  int

	frame []float64
}

// NewFader returns a fader holding the n x n identity.
func NewFader(n int) *Fader {
	f := &Fader{
		frame: make([]float64, sh.MaxChannels),
	}
	f.current.data = make([]float64, 0, sh.MaxChannels*sh.MaxChannels)
	f.target.data = make([]float64, 0, sh.MaxChannels*sh.MaxChannels)
	f.Reset(n)
	return f
}

// Reset installs the n x n identity and drops any fade in progress.
func (f *Fader) Reset(n int) {
	f.current.SetIdentity(n)
	f.target.SetIdentity(n)
	f.pos, f.length = 0, 0
}

// Set installs m without a fade.
func (f *Fader) Set(m Matrix) {
	f.current.CopyFrom(m)
	f.target.CopyFrom(m)
	f.pos, f.length = 0, 0
}

// FadeTo starts a crossfade to m over length samples. A fade in progress is
// frozen at its current mix, which becomes the new starting point, so the
// output stays continuous. A size change or a non-positive length installs
// m immediately.
func (f *Fader) FadeTo(m Matrix, length int) {
	if length <= 0 || m.Size() != f.current.Size() {
		f.Set(m)
		return
	}
	if f.Fading() {
		f.current.Mix(f.target, f.progress())
	}
	f.target.CopyFrom(m)
	f.pos, f.length = 0, length
}

// Fading reports whether a crossfade is in progress.
func (f *Fader) Fading() bool {
	return f.length > 0
}

// Current returns the matrix in effect once any fade completes.
func (f *Fader) Current() Matrix {
	if f.Fading() {
		return f.target
	}
	return f.current
}

// Size returns the matrix size.
func (f *Fader) Size() int {
	return f.current.Size()
}

func (f *Fader) progress() float64 {
	return float64(f.pos) / float64(f.length)
}

// Process writes the transformed channels [0, channels) of src into dst.
// dst may alias src.
func (f *Fader) Process(dst, src *buffer.Channels, channels int) {
	if !f.Fading() {
		f.current.Apply(dst, src, channels, f.frame)
		return
	}

	n := min(channels, f.current.Size(), src.NumChannels(), dst.NumChannels())
	frames := min(src.Frames(), dst.Frames())
	i := 0
	for ; i < frames && f.Fading(); i++ {
		x := f.frame[:n]
		for c := range n {
			x[c] = src.Channel(c)[i]
		}
		f.pos++
		t := f.progress()
		for r := range n {
			a, b := 0.0, 0.0
			rowC := f.current.data[r*f.current.n : r*f.current.n+n]
			rowT := f.target.data[r*f.target.n : r*f.target.n+n]
			for c, v := range x {
				a += rowC[c] * v
				b += rowT[c] * v
			}
			dst.Channel(r)[i] = a + t*(b-a)
		}
		if f.pos >= f.length {
			f.current.CopyFrom(f.target)
			f.pos, f.length = 0, 0
		}
	}

	f.current.applyRange(dst, src, channels, f.frame, i, frames)
}
