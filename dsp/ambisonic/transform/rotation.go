package transform

import (
	"math"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
)

const blockDim = 2*sh.MaxOrder + 1

// degreeBlock holds the (2l+1) x (2l+1) rotation block of one degree,
// indexed [m+l][n+l].
type degreeBlock [blockDim][blockDim]float64

// BuildRotation returns the spherical-harmonic rotation of the given order
// for yaw, pitch and roll in degrees, R = Rz(yaw) Ry(pitch) Rx(roll).
// The result maps the coefficients of a direction d to those of R*d and is
// orthonormal in both N3D and SN3D.
func BuildRotation(yaw, pitch, roll float64, order int) Matrix {
	var m Matrix
	RotationInto(&m, yaw, pitch, roll, order)
	return m
}

// RotationInto is BuildRotation writing into dst, reusing its storage.
// It does not allocate once dst has room for the requested order.
func RotationInto(dst *Matrix, yaw, pitch, roll float64, order int) {
	order = min(max(order, 0), sh.MaxOrder)
	dst.resize(sh.ChannelCount(order))
	dst.Set(0, 0, 1)
	if order == 0 {
		return
	}

	r := cartesianRotation(yaw*math.Pi/180, pitch*math.Pi/180, roll*math.Pi/180)

	// Degree 1 in ACN order (y, z, x).
	axis := [3]int{1, 2, 0}
	var r1, prev, cur degreeBlock
	for i := range 3 {
		for j := range 3 {
			r1[i][j] = r[axis[i]][axis[j]]
			dst.Set(1+i, 1+j, r1[i][j])
		}
	}
	prev = r1

	for l := 2; l <= order; l++ {
		cur = degreeBlock{}
		for m := -l; m <= l; m++ {
			for n := -l; n <= l; n++ {
				cur[m+l][n+l] = rotationElement(&r1, &prev, l, m, n)
			}
		}

		off := l * l
		for i := 0; i < 2*l+1; i++ {
			for j := 0; j < 2*l+1; j++ {
				dst.Set(off+i, off+j, cur[i][j])
			}
		}
		prev = cur
	}
}

// cartesianRotation returns Rz(yaw) * Ry(pitch) * Rx(roll) in radians.
func cartesianRotation(yaw, pitch, roll float64) [3][3]float64 {
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)
	sr, cr := math.Sincos(roll)

	return [3][3]float64{
		{cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr},
		{sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr},
		{-sp, cp * sr, cp * cr},
	}
}

// rotationElement evaluates element (m, n) of the degree-l block from the
// degree-1 block r1 and the degree-(l-1) block prev (Ivanic & Ruedenberg,
// J. Phys. Chem. 1996, with the 1998 erratum).
func rotationElement(r1, prev *degreeBlock, l, m, n int) float64 {
	d := 0.0
	if m == 0 {
		d = 1
	}
	am := absInt(m)

	denom := float64(l*l - n*n)
	if absInt(n) == l {
		denom = float64(2 * l * (2*l - 1))
	}

	u := math.Sqrt(float64(l*l-m*m) / denom)
	v := 0.5 * math.Sqrt((1+d)*float64((l+am-1)*(l+am))/denom) * (1 - 2*d)
	w := -0.5 * math.Sqrt(float64((l-am-1)*(l-am))/denom) * (1 - d)

	p := func(i, a, b int) float64 {
		ri := func(j int) float64 { return r1[i+1][j+1] }
		rp := func(x, y int) float64 { return prev[x+l-1][y+l-1] }
		switch b {
		case l:
			return ri(1)*rp(a, l-1) - ri(-1)*rp(a, -l+1)
		case -l:
			return ri(1)*rp(a, -l+1) + ri(-1)*rp(a, l-1)
		default:
			return ri(0) * rp(a, b)
		}
	}

	val := 0.0
	if u != 0 {
		val += u * p(0, m, n)
	}
	if v != 0 {
		var vv float64
		switch {
		case m == 0:
			vv = p(1, 1, n) + p(-1, -1, n)
		case m > 0:
			if m == 1 {
				vv = p(1, 0, n) * math.Sqrt2
			} else {
				vv = p(1, m-1, n) - p(-1, -m+1, n)
			}
		default:
			if m == -1 {
				vv = p(-1, 0, n) * math.Sqrt2
			} else {
				vv = p(1, m+1, n) + p(-1, -m-1, n)
			}
		}
		val += v * vv
	}
	if w != 0 {
		var ww float64
		if m > 0 {
			ww = p(1, m+1, n) + p(-1, -m-1, n)
		} else {
			ww = p(1, m-1, n) - p(-1, -m+1, n)
		}
		val += w * ww
	}
	return val
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
