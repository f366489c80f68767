package echo_test

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-ambidelay/dsp/effects/dualdelay"
	"github.com/cwbudde/algo-ambidelay/internal/testutil"
	"github.com/cwbudde/algo-ambidelay/measure/echo"
)

func TestDualDelayEcho(t *testing.T) {
	engine := dualdelay.New(dualdelay.WithSynchronousWarp())
	if err := engine.Prepare(48000, 4096, 1); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	defer engine.Close()

	snap := dualdelay.DefaultSnapshot()
	snap.Branches[dualdelay.Right].WetGainDB = math.Inf(-1)
	left := &snap.Branches[dualdelay.Left]
	left.WetGainDB = 0
	left.BPM = 250
	left.Multiplier = 2
	left.FeedbackDB = math.Inf(-1)
	left.LowPassHz = 2000

	buf := buffer.FromSlices([][]float64{testutil.Impulse(12000, 0)})
	if err := engine.Process(buf, snap); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	echoes, err := echo.NewAnalyzer(48000).Analyze(buf.Channel(0))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(echoes) != 2 {
		t.Fatalf("got %d echoes, want dry plus one: %+v", len(echoes), echoes)
	}

	dry, wet := echoes[0], echoes[1]
	if dry.Index != 0 || dry.LevelDB != 0 {
		t.Fatalf("dry arrival = %+v", dry)
	}
	if math.Abs(dry.CentroidHz-12000) > 1e-6 {
		t.Fatalf("dry centroid = %v Hz, want flat 12000", dry.CentroidHz)
	}

	// 120 ms plus the few samples of filter group delay.
	if wet.Index < 5760 || wet.Index > 5770 {
		t.Fatalf("echo index = %d, want just after 5760", wet.Index)
	}
	if wet.LevelDB > -16 || wet.LevelDB < -22 {
		t.Fatalf("echo level = %v dB", wet.LevelDB)
	}
	if wet.CentroidHz < 2000 || wet.CentroidHz > 3500 {
		t.Fatalf("echo centroid = %v Hz, want low-passed near 2.7 kHz", wet.CentroidHz)
	}
}
