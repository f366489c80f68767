package testutil

import (
	"math"
	"slices"
	"testing"
)

func TestGeneratorsAreDeterministic(t *testing.T) {
	if !slices.Equal(DeterministicSine(440, 44100, 0.5, 100), DeterministicSine(440, 44100, 0.5, 100)) {
		t.Fatal("sine differs between calls")
	}
	if !slices.Equal(DeterministicNoise(42, 1, 64), DeterministicNoise(42, 1, 64)) {
		t.Fatal("noise differs between calls with the same seed")
	}
	if slices.Equal(DeterministicNoise(1, 1, 16), DeterministicNoise(2, 1, 16)) {
		t.Fatal("different seeds produced identical noise")
	}
}

func TestDeterministicSineShape(t *testing.T) {
	s := DeterministicSine(1000, 48000, 1, 48)
	if len(s) != 48 || math.Abs(s[0]) > 1e-15 {
		t.Fatalf("len %d, s[0] %v", len(s), s[0])
	}
	// 1 kHz at 48 kHz peaks at sample 12.
	if math.Abs(s[12]-1) > 1e-12 {
		t.Fatalf("s[12] = %v, want 1", s[12])
	}
}

func TestSimpleSignals(t *testing.T) {
	tests := []struct {
		name string
		got  []float64
		want []float64
	}{
		{"impulse", Impulse(4, 2), []float64{0, 0, 1, 0}},
		{"impulse out of range", Impulse(4, 10), []float64{0, 0, 0, 0}},
		{"dc", DC(0.5, 3), []float64{0.5, 0.5, 0.5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !slices.Equal(tc.got, tc.want) {
				t.Fatalf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestEnergyAndPeak(t *testing.T) {
	if e := Energy([]float64{1, -2, 2}); e != 9 {
		t.Fatalf("Energy = %v, want 9", e)
	}
	if i := PeakIndex([]float64{0.1, -0.9, 0.5}); i != 1 {
		t.Fatalf("PeakIndex = %d, want 1", i)
	}
	if i := PeakIndex(nil); i != -1 {
		t.Fatalf("PeakIndex(nil) = %d, want -1", i)
	}
}
