// Command ambidelay renders an impulse through the ambisonic dual delay
// and prints the resulting echo pattern.
//
// Usage:
//
//	ambidelay [flags]
//
// The impulse is encoded straight ahead at the selected order. The echo
// table lists arrivals in the omnidirectional channel, followed by the
// energy each ambisonic order carries.
//
// Examples:
//
//	ambidelay -order 3 -bpm-left 90 -mult-left 2
//	ambidelay -warp poles -warp-factor 0.6
//	ambidelay -tap 0,480,960,1440
//	ambidelay -window blackman
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/transform"
	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/effects/dualdelay"
	"github.com/cwbudde/algo-ambidelay/dsp/filter/shaper"
	"github.com/cwbudde/algo-ambidelay/dsp/tempo"
	"github.com/cwbudde/algo-ambidelay/dsp/window"
	"github.com/cwbudde/algo-ambidelay/measure/echo"
)

type settings struct {
	rate       float64
	block      int
	order      int
	seconds    float64
	bpm        [2]float64
	mult       [2]float64
	yaw        [2]float64
	feedback   float64
	xfeedback  float64
	warp       string
	warpFactor float64
	taps       string
	highPass   float64
	lowPass    float64
	window     string
	verbose    bool
}

func main() {
	var s settings
	flag.Float64Var(&s.rate, "rate", 48000, "sample rate in Hz")
	flag.IntVar(&s.block, "block", 512, "host block size in samples")
	flag.IntVar(&s.order, "order", 3, "ambisonic order (0-7)")
	flag.Float64Var(&s.seconds, "seconds", 2, "render length in seconds")
	flag.Float64Var(&s.bpm[dualdelay.Left], "bpm-left", 100, "left branch tempo")
	flag.Float64Var(&s.bpm[dualdelay.Right], "bpm-right", 120, "right branch tempo")
	flag.Float64Var(&s.mult[dualdelay.Left], "mult-left", 1, "left branch beat multiplier")
	flag.Float64Var(&s.mult[dualdelay.Right], "mult-right", 1, "right branch beat multiplier")
	flag.Float64Var(&s.yaw[dualdelay.Left], "yaw-left", 10, "left branch yaw in degrees")
	flag.Float64Var(&s.yaw[dualdelay.Right], "yaw-right", -7.5, "right branch yaw in degrees")
	flag.Float64Var(&s.feedback, "feedback", -8, "feedback gain in dB")
	flag.Float64Var(&s.xfeedback, "xfeedback", -20, "cross-feedback gain in dB")
	flag.StringVar(&s.warp, "warp", "", "warp both branches: poles, equator, front-back or sides")
	flag.Float64Var(&s.warpFactor, "warp-factor", 0.5, "warp factor in [-0.9, 0.9]")
	flag.StringVar(&s.taps, "tap", "", "comma-separated tap times in ms for the left branch")
	flag.Float64Var(&s.highPass, "hp", 100, "feedback high-pass cutoff in Hz for both branches")
	flag.Float64Var(&s.lowPass, "lp", 20000, "feedback low-pass cutoff in Hz for both branches")
	flag.StringVar(&s.window, "window", "hann", "echo analysis window: rectangular, hann, blackman or tukey")
	flag.BoolVar(&s.verbose, "v", false, "log engine diagnostics to stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ambidelay [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders an impulse through the ambisonic dual delay and prints its echoes.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(s, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(s settings, w io.Writer) error {
	if s.order < 0 || s.order > sh.MaxOrder {
		return fmt.Errorf("order must be in [0, %d]: %d", sh.MaxOrder, s.order)
	}
	if !(s.seconds > 0) {
		return fmt.Errorf("seconds must be positive: %v", s.seconds)
	}
	if err := core.RequirePositive("block", float64(s.block)); err != nil {
		return err
	}
	if err := core.RequirePositive("rate", s.rate); err != nil {
		return err
	}
	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(s.rate),
		core.WithBlockSize(s.block),
		core.WithChannels(sh.ChannelCount(s.order)),
	)

	params, err := configure(s)
	if err != nil {
		return err
	}

	analyzer := echo.NewAnalyzer(cfg.SampleRate)
	if s.window != "" {
		if analyzer.Window, err = window.ParseType(s.window); err != nil {
			return err
		}
	}

	logger := log.New(io.Discard, "", 0)
	if s.verbose {
		logger = log.New(os.Stderr, "ambidelay: ", log.Ltime)
	}

	engine := dualdelay.New(dualdelay.WithSynchronousWarp(), dualdelay.WithLogger(logger))
	if err := engine.Prepare(cfg.SampleRate, cfg.BlockSize, cfg.Channels); err != nil {
		return err
	}
	defer engine.Close()

	buf := encodeImpulse(s.order, int(s.seconds*cfg.SampleRate), params.Snapshot().Normalization)
	if err := render(engine, buf, params, cfg.BlockSize); err != nil {
		return err
	}

	if err := report(w, buf, analyzer, s.order); err != nil {
		return err
	}
	return shaping(w, params.Snapshot(), cfg.SampleRate)
}

// configure maps the flags onto a parameter store.
func configure(s settings) (*dualdelay.Params, error) {
	params := dualdelay.NewParams(tempo.DefaultConfig())
	params.SetOrder(s.order)
	for b := range 2 {
		params.SetTempo(b, s.bpm[b], s.mult[b])
		params.SetRotation(b, s.yaw[b], 0, 0)
		params.SetFeedback(b, s.feedback, s.xfeedback)
		if s.highPass > 0 && s.lowPass > 0 {
			params.SetCutoffs(b, s.highPass, s.lowPass)
		}
	}

	if s.warp != "" {
		spec, err := parseWarp(s.warp, s.warpFactor)
		if err != nil {
			return nil, err
		}
		for b := range 2 {
			params.SetMode(b, transform.Warp)
			params.SetWarp(b, spec)
		}
	}

	if s.taps != "" {
		for _, field := range strings.Split(s.taps, ",") {
			ms, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid tap time %q: %w", field, err)
			}
			params.Tap(dualdelay.Left, ms)
		}
	}
	return params, nil
}

func parseWarp(name string, factor float64) (transform.WarpSpec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "poles":
		return transform.WarpSpec{Elevation: transform.Poles, ElevationFactor: factor}, nil
	case "equator":
		return transform.WarpSpec{Elevation: transform.Equator, ElevationFactor: factor}, nil
	case "front-back":
		return transform.WarpSpec{Azimuth: transform.FrontBack, AzimuthFactor: factor}, nil
	case "sides":
		return transform.WarpSpec{Azimuth: transform.Sides, AzimuthFactor: factor}, nil
	default:
		return transform.WarpSpec{}, fmt.Errorf("unknown warp %q", name)
	}
}

// encodeImpulse returns a signal of the given order holding a unit impulse
// from straight ahead at sample 0.
func encodeImpulse(order, frames int, norm sh.Normalization) *buffer.Channels {
	gains := sh.EvalAngles(order, 0, 0, norm, nil)
	buf := buffer.New(len(gains), frames)
	for ch, g := range gains {
		buf.Channel(ch)[0] = g
	}
	return buf
}

// render feeds buf through the engine in host-sized blocks, reading a fresh
// parameter snapshot for each one.
func render(engine *dualdelay.Engine, buf *buffer.Channels, params *dualdelay.Params, block int) error {
	var view buffer.Channels
	for offset := 0; offset < buf.Frames(); offset += block {
		buf.SliceInto(&view, offset, min(block, buf.Frames()-offset))
		if err := engine.Process(&view, params.Snapshot()); err != nil {
			return err
		}
	}
	return engine.WarpErr()
}

func report(w io.Writer, buf *buffer.Channels, analyzer *echo.Analyzer, order int) error {
	var (
		echoes []echo.Echo
		decay  float64
	)
	energy := make([]float64, buf.NumChannels())

	var g errgroup.Group
	g.Go(func() error {
		var err error
		echoes, err = analyzer.Analyze(buf.Channel(0))
		return err
	})
	g.Go(func() error {
		rt, err := analyzer.DecayTime(buf.Channel(0))
		if err != nil && !errors.Is(err, echo.ErrNoDecay) {
			return err
		}
		decay = rt
		return nil
	})
	for ch := range energy {
		g.Go(func() error {
			x := buf.Channel(ch)
			energy[ch] = vecmath.DotProduct(x, x)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Echo\tTime [ms]\tLevel [dB]\tCentroid [Hz]\tPeak [Hz]\tPeak [dB]\n")
	fmt.Fprintf(tw, "----\t---------\t----------\t-------------\t---------\t---------\n")
	for i, e := range echoes {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.0f\t%.0f\t%.2f\n",
			i, e.Time*1000, e.LevelDB, e.CentroidHz, e.PeakHz, e.PeakDB)
	}
	fmt.Fprintf(tw, "\nOrder\tChannels\tEnergy [dB]\n")
	fmt.Fprintf(tw, "-----\t--------\t-----------\n")
	for l := 0; l <= order; l++ {
		sum := 0.0
		for ch := sh.ACN(l, -l); ch <= sh.ACN(l, l); ch++ {
			sum += energy[ch]
		}
		fmt.Fprintf(tw, "%d\t%d\t%.2f\n", l, 2*l+1, 10*math.Log10(sum))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if decay > 0 {
		_, err := fmt.Fprintf(w, "\nDecay time (T20 extrapolated): %.3f s\n", decay)
		return err
	}
	return nil
}

// shapingFrequencies are the points at which the feedback filters are listed.
var shapingFrequencies = []float64{63, 250, 1000, 4000, 16000}

// shaping prints the gain the feedback filters of each branch apply per pass.
func shaping(w io.Writer, snap dualdelay.Snapshot, rate float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nBranch")
	for _, f := range shapingFrequencies {
		fmt.Fprintf(tw, "\t%g Hz [dB]", f)
	}
	fmt.Fprintln(tw)

	filters := shaper.New(0)
	for b, p := range snap.Branches {
		filters.SetCutoffs(p.HighPassHz, p.LowPassHz, rate)
		fmt.Fprintf(tw, "%d", b)
		for _, f := range shapingFrequencies {
			fmt.Fprintf(tw, "\t%.2f", filters.MagnitudeDB(min(f, rate/2), rate))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
