package transform

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"gonum.org/v1/gonum/mat"
)

// MaxWarpFactor bounds the magnitude of both warp factors.
const MaxWarpFactor = 0.9

// AzimuthMode selects where positive azimuth warping pushes content.
type AzimuthMode int

const (
	// Sides gathers content toward +-90 degrees azimuth.
	Sides AzimuthMode = iota
	// FrontBack gathers content toward 0 and 180 degrees azimuth.
	FrontBack
)

// ElevationMode selects where positive elevation warping pushes content.
type ElevationMode int

const (
	// Poles gathers content toward zenith and nadir.
	Poles ElevationMode = iota
	// Equator gathers content toward the horizon.
	Equator
)

// WarpSpec describes a warp. Factors are in [-MaxWarpFactor, MaxWarpFactor];
// a negative factor reverses the direction of the selected mode.
type WarpSpec struct {
	Azimuth         AzimuthMode
	Elevation       ElevationMode
	AzimuthFactor   float64
	ElevationFactor float64
}

// IsIdentity reports whether the spec leaves the field unchanged.
func (s WarpSpec) IsIdentity() bool {
	return s.AzimuthFactor == 0 && s.ElevationFactor == 0
}

// signed returns the clamped map parameters of the elevation and azimuth
// warps after applying the mode direction.
func (s WarpSpec) signed() (elevation, azimuth float64) {
	elevation = core.Clamp(s.ElevationFactor, -MaxWarpFactor, MaxWarpFactor)
	if s.Elevation == Equator {
		elevation = -elevation
	}
	azimuth = core.Clamp(s.AzimuthFactor, -MaxWarpFactor, MaxWarpFactor)
	if s.Azimuth == Sides {
		azimuth = -azimuth
	}
	return elevation, azimuth
}

// BuildWarp fits the warp of spec at the given order in N3D:
//
//	T = D * diag(sqrt(J)) * Y(warped)
//
// where D is the quadrature decoder of package sh, Y(warped) holds the
// harmonics of the source direction of every quadrature node and J is the
// Jacobian of the direction map, which keeps the energy of a diffuse field
// in place. ctx is checked between nodes; a cancelled build returns
// ctx.Err().
func BuildWarp(ctx context.Context, spec WarpSpec, order int) (Matrix, error) {
	basis, err := sh.BasisFor(order)
	if err != nil {
		return Matrix{}, fmt.Errorf("transform: warp basis: %w", err)
	}

	n := basis.Channels
	if spec.IsIdentity() {
		return Identity(n), nil
	}

	a, b := spec.signed()
	points := basis.Grid.Len()
	warped := mat.NewDense(points, n, nil)
	for p, pt := range basis.Grid.Points {
		if p%64 == 0 {
			if err := ctx.Err(); err != nil {
				return Matrix{}, err
			}
		}

		x, y, z, gain := warpDirection(pt.Mu, pt.Phi, a, b)
		row := warped.RawRowView(p)
		sh.Eval(order, x, y, z, sh.N3D, row)
		g := math.Sqrt(gain)
		for c := range row {
			row[c] *= g
		}
	}

	var t mat.Dense
	t.Mul(basis.Decoder, warped)

	out := NewMatrix(n)
	for r := range n {
		copy(out.Row(r), t.RawRowView(r))
	}
	return out, nil
}

// warpDirection maps the destination node (mu, phi) to the source direction
// it shows and returns the Jacobian of that map. a warps sin(elevation),
// b warps cos(azimuth) with the sign of sin(azimuth) kept.
func warpDirection(mu, phi, a, b float64) (x, y, z, jacobian float64) {
	mu2 := compress(mu, a)
	jacobian = compressSlope(mu, a)

	s, c := math.Sincos(phi)
	c2 := compress(c, b)
	s2 := math.Sqrt(math.Max(0, 1-c2*c2))
	if s < 0 {
		s2 = -s2
	}

	// dphi'/dphi = f'(cos phi) |sin phi| / |sin phi'|, with the limit
	// sqrt(f'(cos phi)) at the fixed points phi = 0, pi.
	if math.Abs(s) > 1e-9 && math.Abs(s2) > 1e-300 {
		jacobian *= compressSlope(c, b) * math.Abs(s) / math.Abs(s2)
	} else {
		jacobian *= math.Sqrt(compressSlope(c, b))
	}

	ce := math.Sqrt(math.Max(0, 1-mu2*mu2))
	return ce * c2, ce * s2, mu2, jacobian
}

// compress is the odd, monotone map u(1-a)/(1-a|u|) of [-1, 1] onto itself.
// Its slope at 0 is 1-a, so a > 0 draws source content away from 0 and
// toward the end points.
func compress(u, a float64) float64 {
	return u * (1 - a) / (1 - a*math.Abs(u))
}

func compressSlope(u, a float64) float64 {
	d := 1 - a*math.Abs(u)
	return (1 - a) / (d * d)
}
