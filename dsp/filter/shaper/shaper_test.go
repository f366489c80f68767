package shaper

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ambidelay/dsp/filter/design"
	"github.com/cwbudde/algo-ambidelay/internal/testutil"
)

func rms(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func TestNewIsPassthrough(t *testing.T) {
	s := New(4)
	in := testutil.DeterministicSine(440, 48000, 0.5, 256)
	buf := append([]float64(nil), in...)
	s.ProcessBlock(2, buf)
	testutil.RequireSliceNearlyEqual(t, buf, in, 1e-15)
}

func TestSetCutoffsClamps(t *testing.T) {
	s := New(1)
	s.SetCutoffs(1, 1e6, 48000)
	hp, lp := s.Cutoffs()
	if hp != MinCutoffHz || lp != 24000 {
		t.Fatalf("cutoffs = %v, %v; want %v, 24000", hp, lp, MinCutoffHz)
	}
}

func TestLowpassAtNyquistPassesSignal(t *testing.T) {
	s := New(1)
	s.SetCutoffs(MinCutoffHz, 24000, 48000)
	in := testutil.DeterministicSine(5000, 48000, 1, 4800)
	buf := append([]float64(nil), in...)
	s.ProcessBlock(0, buf)
	if r := rms(buf[2400:]); math.Abs(r-1/math.Sqrt2) > 0.01 {
		t.Fatalf("rms = %v, want ~%v", r, 1/math.Sqrt2)
	}
}

func TestBandLimiting(t *testing.T) {
	const sr = 48000.0
	s := New(1)
	s.SetCutoffs(500, 2000, sr)

	measure := func(freq float64) float64 {
		s.Reset()
		buf := testutil.DeterministicSine(freq, sr, 1, 9600)
		s.ProcessBlock(0, buf)
		return rms(buf[4800:])
	}

	mid := measure(1000)
	low := measure(50)
	high := measure(15000)
	if !(mid > 5*low && mid > 5*high) {
		t.Fatalf("expected band-pass shape, got low=%v mid=%v high=%v", low, mid, high)
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	s := New(2)
	s.SetCutoffs(100, 1000, 48000)

	a := testutil.Impulse(64, 0)
	s.ProcessBlock(0, a)

	b := testutil.Impulse(64, 0)
	s.ProcessBlock(1, b)

	testutil.RequireSliceNearlyEqual(t, b, a, 0)
}

func TestResizeDropsHistory(t *testing.T) {
	s := New(1)
	s.SetCutoffs(100, 1000, 48000)
	s.ProcessBlock(0, testutil.DC(1, 32))
	s.Resize(2)

	fresh := New(2)
	fresh.SetCutoffs(100, 1000, 48000)

	a := testutil.Impulse(16, 0)
	b := testutil.Impulse(16, 0)
	s.ProcessBlock(0, a)
	fresh.ProcessBlock(0, b)
	testutil.RequireSliceNearlyEqual(t, a, b, 0)
	if s.Channels() != 2 {
		t.Fatalf("Channels() = %d, want 2", s.Channels())
	}
}

func TestOutOfRangeChannelIgnored(t *testing.T) {
	s := New(1)
	s.SetCutoffs(1000, 2000, 48000)
	buf := testutil.DC(1, 8)
	s.ProcessBlock(3, buf)
	testutil.RequireSliceNearlyEqual(t, buf, testutil.DC(1, 8), 0)
}

func TestResetChannelsKeepsOthers(t *testing.T) {
	s := New(2)
	s.SetCutoffs(100, 1000, 48000)
	s.ProcessBlock(0, testutil.DC(1, 32))
	s.ProcessBlock(1, testutil.DC(1, 32))
	s.ResetChannels(1, 5)

	if s.highPass[0].State() == ([2]float64{}) {
		t.Fatal("channel 0 history must survive")
	}
	if s.highPass[1].State() != ([2]float64{}) || s.lowPass[1].State() != ([2]float64{}) {
		t.Fatal("channel 1 history must be cleared")
	}
}

func TestMagnitudeDB(t *testing.T) {
	const sr = 48000.0

	s := New(1)
	for _, f := range []float64{20, 1000, 20000} {
		if db := s.MagnitudeDB(f, sr); math.Abs(db) > 1e-9 {
			t.Fatalf("pass-through gain at %v Hz = %v dB, want 0", f, db)
		}
	}

	s.SetCutoffs(100, 20000, sr)
	tests := []struct {
		freq float64
		want float64
		tol  float64
	}{
		{100, -3.0103, 0.02},
		{1000, 0, 0.01},
		{20000, -3.0103, 0.02},
		{10, -40, 0.5},
	}
	for _, tt := range tests {
		if db := s.MagnitudeDB(tt.freq, sr); math.Abs(db-tt.want) > tt.tol {
			t.Fatalf("gain at %v Hz = %v dB, want %v", tt.freq, db, tt.want)
		}
	}

	hp := design.Highpass(100, design.ButterworthQ, sr)
	lp := design.Lowpass(20000, design.ButterworthQ, sr)
	want := hp.MagnitudeDB(5000, sr) + lp.MagnitudeDB(5000, sr)
	if db := s.MagnitudeDB(5000, sr); db != want {
		t.Fatalf("gain at 5 kHz = %v dB, want sum of stages %v", db, want)
	}
}
