package core

import "testing"

func TestEnsureLen(t *testing.T) {
	tests := []struct {
		name    string
		buf     []float64
		n       int
		wantCap int
	}{
		{"reuse", make([]float64, 4, 8), 6, 8},
		{"grow", make([]float64, 2), 5, 5},
		{"shrink to zero", make([]float64, 3), 0, 3},
		{"negative", make([]float64, 3), -1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := EnsureLen(tt.buf, tt.n)
			if len(out) != max(tt.n, 0) || cap(out) != tt.wantCap {
				t.Fatalf("len %d cap %d, want len %d cap %d", len(out), cap(out), max(tt.n, 0), tt.wantCap)
			}
		})
	}
}
