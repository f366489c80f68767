package transform

import (
	"context"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
)

// Spec is the tagged description of a branch transform. Kind selects which
// of the angle or warp fields apply.
type Spec struct {
	Kind  Kind
	Order int
	Norm  sh.Normalization

	// Rotate, in degrees.
	Yaw, Pitch, Roll float64

	// Warp.
	Warp WarpSpec
}

// Build returns the matrix described by spec in its normalisation.
func Build(ctx context.Context, spec Spec) (Matrix, error) {
	if spec.Kind == Warp {
		m, err := BuildWarp(ctx, spec.Warp, spec.Order)
		if err != nil {
			return Matrix{}, err
		}
		ConvertNormalization(m, sh.N3D, spec.Norm)
		return m, nil
	}

	// Rotation blocks are per degree and commute with any normalisation.
	return BuildRotation(spec.Yaw, spec.Pitch, spec.Roll, spec.Order), nil
}
