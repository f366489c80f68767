package sh

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

// Point is a quadrature node on the unit sphere. Mu is sin(elevation) and
// Phi the azimuth in (-pi, pi).
type Point struct {
	X, Y, Z float64
	Mu, Phi float64
	Weight  float64
}

// Grid is a product quadrature over the sphere whose weights sum to 4*pi.
type Grid struct {
	Order  int
	Points []Point
}

// RingSize returns the number of Gauss-Legendre rings in sin(elevation)
// and azimuth samples per ring used for order. Twice the nodes needed for
// exact band-limited integration leave room for the non-polynomial warped
// harmonics.
func RingSize(order int) (rings, perRing int) {
	rings = 2*order + 2
	return rings, 2 * rings
}

// NewGrid returns the quadrature used to fit transforms of the given order.
func NewGrid(order int) *Grid {
	order = min(max(order, 0), MaxOrder)
	rings, perRing := RingSize(order)

	mus := make([]float64, rings)
	weights := make([]float64, rings)
	quad.Legendre{}.FixedLocations(mus, weights, -1, 1)

	g := &Grid{Order: order, Points: make([]Point, 0, rings*perRing)}
	dphi := 2 * math.Pi / float64(perRing)
	for r, mu := range mus {
		ce := math.Sqrt(math.Max(0, 1-mu*mu))
		for k := range perRing {
			phi := dphi*(float64(k)+0.5) - math.Pi
			sp, cp := math.Sincos(phi)
			g.Points = append(g.Points, Point{
				X:      ce * cp,
				Y:      ce * sp,
				Z:      mu,
				Mu:     mu,
				Phi:    phi,
				Weight: weights[r] * dphi,
			})
		}
	}
	return g
}

// Len returns the number of nodes.
func (g *Grid) Len() int {
	return len(g.Points)
}
