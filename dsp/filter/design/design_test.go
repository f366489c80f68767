package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-ambidelay/dsp/filter/biquad"
)

const tol = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestResponseShape(t *testing.T) {
	sr := 48000.0
	f := 1000.0

	lp := Lowpass(f, ButterworthQ, sr)
	if !(mag(lp, 100, sr) > mag(lp, 10000, sr)) {
		t.Fatal("lowpass shape check failed")
	}

	hp := Highpass(f, ButterworthQ, sr)
	if !(mag(hp, 10000, sr) > mag(hp, 100, sr)) {
		t.Fatal("highpass shape check failed")
	}
}

func TestButterworthMinus3dBAtCutoff(t *testing.T) {
	sr := 48000.0
	for _, f := range []float64{100, 1000, 8000} {
		lp := Lowpass(f, ButterworthQ, sr)
		if db := lp.MagnitudeDB(f, sr); !almostEqual(db, -3.0103, 0.01) {
			t.Fatalf("lowpass %v Hz: %v dB at cutoff, want ~-3.01", f, db)
		}
		hp := Highpass(f, ButterworthQ, sr)
		if db := hp.MagnitudeDB(f, sr); !almostEqual(db, -3.0103, 0.01) {
			t.Fatalf("highpass %v Hz: %v dB at cutoff, want ~-3.01", f, db)
		}
	}
}

func TestUnityGainInPassband(t *testing.T) {
	sr := 48000.0
	lp := Lowpass(5000, ButterworthQ, sr)
	if !almostEqual(mag(lp, 0, sr), 1, 1e-9) {
		t.Fatalf("lowpass DC gain = %v, want 1", mag(lp, 0, sr))
	}
	hp := Highpass(100, ButterworthQ, sr)
	if !almostEqual(mag(hp, sr/2, sr), 1, 1e-9) {
		t.Fatalf("highpass Nyquist gain = %v, want 1", mag(hp, sr/2, sr))
	}
}

func TestNyquistCutoffs(t *testing.T) {
	sr := 48000.0
	if got := Lowpass(sr/2, ButterworthQ, sr); got != biquad.Passthrough() {
		t.Fatalf("lowpass at Nyquist = %#v, want passthrough", got)
	}
	if got := Highpass(30000, ButterworthQ, sr); got != (biquad.Coefficients{}) {
		t.Fatalf("highpass above Nyquist = %#v, want zero section", got)
	}
}

func TestDesignersStableAcrossSampleRates(t *testing.T) {
	for _, sr := range []float64{22050, 44100, 48000, 96000, 192000} {
		for _, f := range []float64{20, 100, 1000, sr / 2 * 0.95} {
			for _, c := range []biquad.Coefficients{
				Lowpass(f, ButterworthQ, sr),
				Highpass(f, ButterworthQ, sr),
			} {
				assertFiniteCoefficients(t, c)
				assertStableSection(t, c)
			}
		}
	}
}

func TestInvalidInputs(t *testing.T) {
	if got := Lowpass(1000, ButterworthQ, 0); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for invalid sample rate, got %#v", got)
	}
	if got := Highpass(-5, ButterworthQ, 48000); got != (biquad.Coefficients{}) {
		t.Fatalf("expected zero coefficients for negative cutoff, got %#v", got)
	}
	// Invalid Q falls back to Butterworth.
	if Lowpass(1000, -1, 48000) != Lowpass(1000, ButterworthQ, 48000) {
		t.Fatal("expected invalid Q to fall back to Butterworth")
	}
}

func mag(c biquad.Coefficients, freq, sr float64) float64 {
	return cmplx.Abs(c.Response(freq, sr))
}

func assertFiniteCoefficients(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	for i, v := range []float64{c.B0, c.B1, c.B2, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("coefficient %d = %v", i, v)
		}
	}
}

func assertStableSection(t *testing.T, c biquad.Coefficients) {
	t.Helper()
	r1, r2 := sectionRoots(c)
	if cmplx.Abs(r1) >= 1+tol || cmplx.Abs(r2) >= 1+tol {
		t.Fatalf("unstable poles: |r1|=%v |r2|=%v coeff=%#v", cmplx.Abs(r1), cmplx.Abs(r2), c)
	}
}

// sectionRoots returns the poles, the roots of z^2 + A1 z + A2.
func sectionRoots(c biquad.Coefficients) (complex128, complex128) {
	root := cmplx.Sqrt(complex(c.A1*c.A1-4*c.A2, 0))
	return (-complex(c.A1, 0) + root) / 2, (-complex(c.A1, 0) - root) / 2
}
