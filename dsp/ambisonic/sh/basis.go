package sh

import "math"

// MaxOrder is the highest supported ambisonic order.
const MaxOrder = 7

// MaxChannels is the channel count of a MaxOrder signal.
const MaxChannels = (MaxOrder + 1) * (MaxOrder + 1)

// Normalization selects the scaling convention of the harmonics.
type Normalization int

const (
	// N3D scales every harmonic to a mean square of 1 over the sphere.
	N3D Normalization = iota
	// SN3D is N3D divided by sqrt(2l+1).
	SN3D
)

// String implements fmt.Stringer.
func (n Normalization) String() string {
	switch n {
	case N3D:
		return "N3D"
	case SN3D:
		return "SN3D"
	default:
		return "unknown"
	}
}

// ChannelCount returns (order+1)^2, or 0 for a negative order.
func ChannelCount(order int) int {
	if order < 0 {
		return 0
	}
	return (order + 1) * (order + 1)
}

// OrderForChannels returns the highest order whose channel count fits in
// channels, or -1 when channels < 1.
func OrderForChannels(channels int) int {
	if channels < 1 {
		return -1
	}
	return isqrt(channels) - 1
}

// ACN returns the channel index of degree l and order m.
func ACN(l, m int) int {
	return l*l + l + m
}

// Degree returns the degree l and order m of ACN channel index acn.
func Degree(acn int) (l, m int) {
	l = isqrt(acn)
	return l, acn - l*l - l
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// n3d[l][|m|] holds the N3D normalisation including the sqrt(2) of m != 0.
var n3d = func() [MaxOrder + 1][MaxOrder + 1]float64 {
	var t [MaxOrder + 1][MaxOrder + 1]float64
	for l := 0; l <= MaxOrder; l++ {
		for m := 0; m <= l; m++ {
			// (l-m)!/(l+m)! as a running product.
			ratio := 1.0
			for k := l - m + 1; k <= l+m; k++ {
				ratio /= float64(k)
			}
			v := math.Sqrt(float64(2*l+1) * ratio)
			if m != 0 {
				v *= math.Sqrt2
			}
			t[l][m] = v
		}
	}
	return t
}()

// NormalizationGain returns the factor that converts an N3D channel of
// degree l to the given normalisation.
func NormalizationGain(l int, to Normalization) float64 {
	if to == SN3D {
		return 1 / math.Sqrt(float64(2*l+1))
	}
	return 1
}

// Eval writes the ChannelCount(order) harmonics of direction (x, y, z) into
// dst, growing it if needed, and returns the written prefix. The direction
// need not be normalised; the zero vector is treated as straight ahead. order is clamped to
// [0, MaxOrder].
func Eval(order int, x, y, z float64, norm Normalization, dst []float64) []float64 {
	order = min(max(order, 0), MaxOrder)

	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 {
		x, r = 1, 1
	}
	mu := math.Max(-1, math.Min(1, z/r))
	phi := math.Atan2(y, x)

	n := ChannelCount(order)
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	var legendre [MaxOrder + 1][MaxOrder + 1]float64
	associatedLegendre(order, mu, &legendre)

	for l := 0; l <= order; l++ {
		scale := NormalizationGain(l, norm)
		dst[ACN(l, 0)] = scale * n3d[l][0] * legendre[l][0]
		for m := 1; m <= l; m++ {
			base := scale * n3d[l][m] * legendre[l][m]
			sin, cos := math.Sincos(float64(m) * phi)
			dst[ACN(l, m)] = base * cos
			dst[ACN(l, -m)] = base * sin
		}
	}
	return dst
}

// EvalAngles is Eval for an azimuth and elevation in radians.
func EvalAngles(order int, azimuth, elevation float64, norm Normalization, dst []float64) []float64 {
	se, ce := math.Sincos(elevation)
	sa, ca := math.Sincos(azimuth)
	return Eval(order, ce*ca, ce*sa, se, norm, dst)
}

// associatedLegendre fills p[l][m] = P_l^m(x) for 0 <= m <= l <= order,
// without the Condon-Shortley phase.
func associatedLegendre(order int, x float64, p *[MaxOrder + 1][MaxOrder + 1]float64) {
	s := math.Sqrt(math.Max(0, 1-x*x))

	pmm := 1.0
	for m := 0; m <= order; m++ {
		if m > 0 {
			pmm *= float64(2*m-1) * s
		}
		p[m][m] = pmm
		if m == order {
			break
		}

		p[m+1][m] = x * float64(2*m+1) * pmm
		for l := m + 2; l <= order; l++ {
			p[l][m] = (float64(2*l-1)*x*p[l-1][m] - float64(l+m-1)*p[l-2][m]) / float64(l-m)
		}
	}
}
