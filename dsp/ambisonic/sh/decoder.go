package sh

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularBasis is returned when the sampled basis cannot be factorized.
var ErrSingularBasis = errors.New("sh: basis factorization failed")

// rankTolerance is the relative singular-value cutoff of the decoder.
const rankTolerance = 1e-10

// Basis holds the N3D harmonics of one order sampled at its [Grid] together
// with the least-squares decoder that maps grid samples back to
// coefficients.
type Basis struct {
	Order    int
	Channels int
	Grid     *Grid

	// Encoder is Points x Channels: row p holds the harmonics of node p.
	Encoder *mat.Dense
	// Decoder is Channels x Points and satisfies Decoder * Encoder = I.
	Decoder *mat.Dense
}

// NewBasis samples the harmonics of order at [NewGrid](order) and computes
// the quadrature-weighted pseudo-inverse decoder
//
//	D = pinv(W^1/2 Y) W^1/2
//
// through a thin SVD.
func NewBasis(order int) (*Basis, error) {
	if order < 0 || order > MaxOrder {
		return nil, fmt.Errorf("sh: order must be in [0, %d]: %d", MaxOrder, order)
	}

	grid := NewGrid(order)
	channels := ChannelCount(order)
	points := grid.Len()

	encoder := mat.NewDense(points, channels, nil)
	weighted := mat.NewDense(points, channels, nil)
	sqrtW := make([]float64, points)
	for p, pt := range grid.Points {
		row := encoder.RawRowView(p)
		Eval(order, pt.X, pt.Y, pt.Z, N3D, row)

		sqrtW[p] = math.Sqrt(pt.Weight)
		wrow := weighted.RawRowView(p)
		for c, v := range row {
			wrow[c] = v * sqrtW[p]
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(weighted, mat.SVDThin); !ok {
		return nil, ErrSingularBasis
	}
	rank := svd.Rank(rankTolerance)
	if rank < channels {
		return nil, fmt.Errorf("%w: rank %d < %d channels", ErrSingularBasis, rank, channels)
	}

	var decoder mat.Dense
	svd.SolveTo(&decoder, mat.NewDiagDense(points, sqrtW), rank)

	return &Basis{
		Order:    order,
		Channels: channels,
		Grid:     grid,
		Encoder:  encoder,
		Decoder:  &decoder,
	}, nil
}

type cachedBasis struct {
	once  sync.Once
	basis *Basis
	err   error
}

var basisCache [MaxOrder + 1]cachedBasis

// BasisFor returns the shared [Basis] of order, building it on first use.
// The returned value must not be modified.
func BasisFor(order int) (*Basis, error) {
	if order < 0 || order > MaxOrder {
		return nil, fmt.Errorf("sh: order must be in [0, %d]: %d", MaxOrder, order)
	}

	c := &basisCache[order]
	c.once.Do(func() {
		c.basis, c.err = NewBasis(order)
	})
	return c.basis, c.err
}
