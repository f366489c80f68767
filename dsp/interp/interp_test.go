package interp

import (
	"math"
	"testing"
)

func apply(w [4]float64, xm1, x0, x1, x2 float64) float64 {
	return w[0]*xm1 + w[1]*x0 + w[2]*x1 + w[3]*x2
}

func TestLagrange3WeightsSumToOne(t *testing.T) {
	for _, frac := range []float64{-1, -0.5, 0, 0.1, 0.25, 0.5, 0.75, 0.999} {
		w := Lagrange3Weights(frac)
		sum := w[0] + w[1] + w[2] + w[3]
		if math.Abs(sum-1) > 1e-12 {
			t.Fatalf("t=%v: weights sum to %v", frac, sum)
		}
	}
}

func TestLagrange3WeightsAtTapPositions(t *testing.T) {
	tests := []struct {
		t    float64
		want [4]float64
	}{
		{-1, [4]float64{1, 0, 0, 0}},
		{0, [4]float64{0, 1, 0, 0}},
	}

	for _, tt := range tests {
		w := Lagrange3Weights(tt.t)
		for i := range w {
			if math.Abs(w[i]-tt.want[i]) > 0 {
				t.Fatalf("weights at t=%v = %v, want %v", tt.t, w, tt.want)
			}
		}
	}
}

func TestLagrange3WeightsExactOnCubic(t *testing.T) {
	cubic := func(x float64) float64 { return 0.5*x*x*x - x*x + 2*x - 3 }
	for _, frac := range []float64{-0.75, -0.5, 0.1, 0.33, 0.5, 0.9} {
		got := apply(Lagrange3Weights(frac), cubic(-1), cubic(0), cubic(1), cubic(2))
		if want := cubic(frac); math.Abs(got-want) > 1e-12 {
			t.Fatalf("t=%v: got %v want %v", frac, got, want)
		}
	}
}

func BenchmarkLagrange3Weights(b *testing.B) {
	var sink float64
	for i := 0; i < b.N; i++ {
		w := Lagrange3Weights(0.37)
		sink += apply(w, 0.1, 0.2, -0.3, 0.4)
	}
	_ = sink
}
