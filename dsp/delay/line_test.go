package delay

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/internal/testutil"
)

func prepared(t *testing.T, maxDelay float64, channels int) *Line {
	t.Helper()
	var l Line
	if err := l.Prepare(maxDelay, channels, 64); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return &l
}

func TestPrepareRejectsInvalidSizes(t *testing.T) {
	tests := []struct {
		name     string
		maxDelay float64
		channels int
		block    int
	}{
		{"zero delay", 0, 4, 64},
		{"negative delay", -3, 4, 64},
		{"zero channels", 100, 0, 64},
		{"negative channels", 100, -1, 64},
		{"zero block", 100, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l Line
			err := l.Prepare(tt.maxDelay, tt.channels, tt.block)
			if !errors.Is(err, core.ErrConfiguration) {
				t.Fatalf("Prepare() error = %v, want ErrConfiguration", err)
			}
			var cfgErr *core.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Prepare() error %T is not *core.ConfigurationError", err)
			}
		})
	}
}

func TestPopAtAfterPrepareIsSilent(t *testing.T) {
	for _, maxDelay := range []float64{1, 7.5, 480, 48000} {
		for _, channels := range []int{1, 4, 16, 64} {
			l := prepared(t, maxDelay, channels)
			for ch := range channels {
				for _, d := range []float64{1, 1.5, maxDelay / 2, maxDelay} {
					if got := l.PopAt(ch, d); got != 0 {
						t.Fatalf("maxDelay=%v ch=%d d=%v: PopAt() = %v, want 0", maxDelay, ch, d, got)
					}
				}
			}
		}
	}
}

func TestIntegerDelayIsExact(t *testing.T) {
	l := prepared(t, 32, 1)
	in := testutil.DeterministicNoise(1, 1, 200)
	for i, x := range in {
		l.Push(0, x)
		if i >= 10 {
			if got, want := l.PopAt(0, 10), in[i-9]; got != want {
				t.Fatalf("i=%d: PopAt(10) = %v, want %v", i, got, want)
			}
		}
	}
	if got := l.PopAt(0, 1); got != in[len(in)-1] {
		t.Fatalf("PopAt(1) = %v, want most recent sample %v", got, in[len(in)-1])
	}
}

func TestFractionalDelayOnRamp(t *testing.T) {
	l := prepared(t, 32, 1)
	for i := range 40 {
		l.Push(0, float64(i))
	}
	// Sample at delay k is 40-k; the cubic kernel is exact on a ramp.
	for _, d := range []float64{2.25, 5.5, 12.75} {
		if got, want := l.PopAt(0, d), 40-d; math.Abs(got-want) > 1e-12 {
			t.Fatalf("PopAt(%v) = %v, want %v", d, got, want)
		}
	}
}

func TestFractionalDelayBelowTwo(t *testing.T) {
	tests := []struct {
		name string
		f    func(x float64) float64
		tol  float64
	}{
		{"ramp", func(x float64) float64 { return x }, 1e-12},
		{"cubic", func(x float64) float64 { return 0.5*x*x*x - x*x + 2*x - 3 }, 1e-7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := prepared(t, 32, 1)
			for i := range 40 {
				l.Push(0, tt.f(float64(i)))
			}
			// The newest sample sits at delay 1, so delay d reads f(40-d).
			for _, d := range []float64{1, 1.1, 1.25, 1.5, 1.75, 1.999, 2} {
				if got, want := l.PopAt(0, d), tt.f(40-d); math.Abs(got-want) > tt.tol {
					t.Fatalf("PopAt(%v) = %v, want %v", d, got, want)
				}
			}
		})
	}
}

func TestShortLineReadsBelowTwo(t *testing.T) {
	l := prepared(t, 1.5, 1)
	for i := range 10 {
		l.Push(0, float64(i))
	}
	if got := l.PopAt(0, 1.25); math.Abs(got-8.75) > 1e-12 {
		t.Fatalf("PopAt(1.25) = %v, want 8.75", got)
	}
	if got := l.PopAt(0, 5); math.Abs(got-8.5) > 1e-12 {
		t.Fatalf("PopAt(5) = %v, want clamp to 1.5 giving 8.5", got)
	}
}

func TestPopAtClampsOutOfRange(t *testing.T) {
	l := prepared(t, 8, 1)
	for i := range 50 {
		l.Push(0, float64(i+1))
	}
	if got, want := l.PopAt(0, 1000), l.PopAt(0, 8); got != want {
		t.Fatalf("PopAt(1000) = %v, want clamp to max delay %v", got, want)
	}
	if got, want := l.PopAt(0, -4), l.PopAt(0, 1); got != want {
		t.Fatalf("PopAt(-4) = %v, want clamp to delay 1 %v", got, want)
	}
	if got := l.PopAt(0, math.NaN()); got != l.PopAt(0, 1) {
		t.Fatalf("PopAt(NaN) = %v, want clamp to delay 1", got)
	}
}

func TestPushAdvancesCursorByOne(t *testing.T) {
	l := prepared(t, 4, 2)
	for i := range 100 {
		before := l.cursor[1]
		l.Push(1, float64(i))
		if l.cursor[1] != l.wrap(before+1) {
			t.Fatalf("cursor moved from %d to %d", before, l.cursor[1])
		}
	}
	if l.cursor[0] != 0 {
		t.Fatalf("channel 0 cursor = %d, want untouched 0", l.cursor[0])
	}
}

func TestWrapIsModulo(t *testing.T) {
	l := prepared(t, 5, 1)
	size := l.size
	for _, i := range []int{-3 * size, -size - 1, -1, 0, size - 1, size, 2*size + 3} {
		got := l.wrap(i)
		if got < 0 || got >= size || (got-i)%size != 0 {
			t.Fatalf("wrap(%d) = %d with size %d", i, got, size)
		}
	}
}

func TestFrameHelpersMatchPerChannel(t *testing.T) {
	a := prepared(t, 64, 3)
	b := prepared(t, 64, 3)
	noise := testutil.DeterministicNoise(7, 1, 300)
	frame := make([]float64, 3)
	got := make([]float64, 3)
	for i := 0; i+3 <= len(noise); i += 3 {
		copy(frame, noise[i:i+3])
		a.PushFrame(frame)
		for ch := range 3 {
			b.Push(ch, frame[ch])
		}
		a.PopFrameAt(got, 17.3)
		for ch := range 3 {
			if want := b.PopAt(ch, 17.3); got[ch] != want {
				t.Fatalf("frame %d ch %d: %v != %v", i/3, ch, got[ch], want)
			}
		}
	}
}

func TestProcessBlockDelaysByTrajectory(t *testing.T) {
	l := prepared(t, 100, 2)
	in := buffer.New(2, 64)
	out := buffer.New(2, 64)
	in.Channel(0)[3] = 1
	in.Channel(1)[5] = -1

	delays := testutil.DC(20, 64)
	l.ProcessBlock(in, out, 2, delays)

	if idx := testutil.PeakIndex(out.Channel(0)); idx != 23 {
		t.Fatalf("channel 0 peak at %d, want 23", idx)
	}
	if out.Channel(1)[25] != -1 {
		t.Fatalf("channel 1 sample 25 = %v, want -1", out.Channel(1)[25])
	}
}

func TestClearChannels(t *testing.T) {
	l := prepared(t, 16, 3)
	for i := range 10 {
		l.PushFrame([]float64{1, 2, float64(i)})
	}
	l.ClearChannels(1, 99)
	if l.PopAt(0, 2) != 1 {
		t.Fatal("channel 0 should keep its history")
	}
	for ch := 1; ch < 3; ch++ {
		for _, d := range []float64{1, 4, 16} {
			if got := l.PopAt(ch, d); got != 0 {
				t.Fatalf("channel %d delay %v = %v after clear", ch, d, got)
			}
		}
	}
}

func BenchmarkProcessBlock16(b *testing.B) {
	var l Line
	if err := l.Prepare(48000*6, 16, 512); err != nil {
		b.Fatal(err)
	}
	in := buffer.New(16, 512)
	out := buffer.New(16, 512)
	delays := testutil.DC(12345.6, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.ProcessBlock(in, out, 16, delays)
	}
}
