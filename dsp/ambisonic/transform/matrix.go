package transform

import (
	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-vecmath"
)

// Kind selects the transform variant of a branch.
type Kind int

const (
	// Rotate applies a rigid yaw/pitch/roll rotation.
	Rotate Kind = iota
	// Warp applies a nonlinear directional remapping.
	Warp
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Rotate:
		return "rotate"
	case Warp:
		return "warp"
	default:
		return "unknown"
	}
}

// Matrix is a square row-major matrix over ACN channels.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix returns an n x n zero matrix.
func NewMatrix(n int) Matrix {
	n = max(n, 0)
	return Matrix{n: n, data: make([]float64, n*n)}
}

// Identity returns the n x n identity.
func Identity(n int) Matrix {
	m := NewMatrix(n)
	m.SetIdentity(n)
	return m
}

// Size returns the number of rows (and columns).
func (m Matrix) Size() int {
	return m.n
}

// At returns element (r, c).
func (m Matrix) At(r, c int) float64 {
	return m.data[r*m.n+c]
}

// Set assigns element (r, c).
func (m Matrix) Set(r, c int, v float64) {
	m.data[r*m.n+c] = v
}

// Row returns row r. The slice aliases the matrix.
func (m Matrix) Row(r int) []float64 {
	return m.data[r*m.n : (r+1)*m.n]
}

// Data returns the row-major backing slice.
func (m Matrix) Data() []float64 {
	return m.data
}

// resize reshapes m to n x n, reusing storage when possible, and zeroes it.
func (m *Matrix) resize(n int) {
	n = max(n, 0)
	if n*n <= cap(m.data) {
		m.data = m.data[:n*n]
	} else {
		m.data = make([]float64, n*n)
	}
	m.n = n
	clear(m.data)
}

// SetIdentity reshapes m to the n x n identity.
func (m *Matrix) SetIdentity(n int) {
	m.resize(n)
	for i := range n {
		m.data[i*n+i] = 1
	}
}

// CopyFrom makes m a copy of src, reusing storage when possible.
func (m *Matrix) CopyFrom(src Matrix) {
	m.resize(src.n)
	copy(m.data, src.data)
}

// Mix sets m to (1-t)*m + t*other. Both must have the same size.
func (m Matrix) Mix(other Matrix, t float64) {
	for i, v := range other.data {
		m.data[i] += t * (v - m.data[i])
	}
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	var c Matrix
	c.CopyFrom(m)
	return c
}

// IsIdentity reports whether m is the identity within eps.
func (m Matrix) IsIdentity(eps float64) bool {
	for r := range m.n {
		for c := range m.n {
			want := 0.0
			if r == c {
				want = 1
			}
			if d := m.At(r, c) - want; d > eps || d < -eps {
				return false
			}
		}
	}
	return true
}

// Apply writes m * src into dst for channels [0, channels) of every frame.
// Only the leading channels x channels block of m is used. dst may alias
// src. frame is scratch space of at least channels samples.
func (m Matrix) Apply(dst, src *buffer.Channels, channels int, frame []float64) {
	m.applyRange(dst, src, channels, frame, 0, min(src.Frames(), dst.Frames()))
}

// applyRange is Apply restricted to frames [from, to).
func (m Matrix) applyRange(dst, src *buffer.Channels, channels int, frame []float64, from, to int) {
	channels = min(channels, m.n, src.NumChannels(), dst.NumChannels(), len(frame))
	x := frame[:channels]

	for i := from; i < to; i++ {
		for c := range channels {
			x[c] = src.Channel(c)[i]
		}
		for r := range channels {
			dst.Channel(r)[i] = vecmath.DotProduct(m.data[r*m.n:r*m.n+channels], x)
		}
	}
}

// ConvertNormalization rewrites m, a transform between coefficients in
// normalisation from, into the equivalent transform in normalisation to.
func ConvertNormalization(m Matrix, from, to sh.Normalization) {
	if from == to {
		return
	}
	for r := range m.n {
		lr, _ := sh.Degree(r)
		gr := sh.NormalizationGain(lr, to) / sh.NormalizationGain(lr, from)
		for c := range m.n {
			lc, _ := sh.Degree(c)
			gc := sh.NormalizationGain(lc, to) / sh.NormalizationGain(lc, from)
			m.data[r*m.n+c] *= gr / gc
		}
	}
}
