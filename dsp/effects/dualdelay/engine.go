package dualdelay

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/transform"
	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/tempo"
	"github.com/cwbudde/algo-vecmath"
	"golang.org/x/sync/errgroup"
)

// ErrNotPrepared is returned by [Engine.Process] before a successful
// [Engine.Prepare].
var ErrNotPrepared = errors.New("dualdelay: engine not prepared")

// Engine is an ambisonic dual delay: two branches, each a spectral shaper, a
// rotation or warp of the sound field and a tempo-synced modulated delay
// line, cross-coupled through feedback and mixed with the dry signal.
//
// Prepare and Process must be called from one goroutine. Parameters reach
// the engine as a [Snapshot] per Process call, typically from [Params].
type Engine struct {
	cfg config

	sampleRate  float64
	blockSize   int
	channels    int
	maxChannels int
	prepared    bool

	order    int
	norm     sh.Normalization
	branches [2]*branch
	worker   *transform.Worker

	dry     *buffer.Channels
	host    buffer.Channels
	scratch []float64
}

// New returns an unprepared engine.
func New(opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Engine{
		cfg:      cfg,
		order:    -1,
		branches: [2]*branch{newBranch(Left), newBranch(Right)},
		dry:      buffer.New(0, 0),
	}
}

// Prepare allocates every buffer for the given stream format and clears all
// state. Only the first 64 channels (order 7) are processed; further host
// channels are silenced.
func (e *Engine) Prepare(sampleRate float64, blockSize, channels int) error {
	if err := core.RequirePositive("dualdelay sample rate", sampleRate); err != nil {
		return err
	}
	if err := core.RequirePositive("dualdelay block size", float64(blockSize)); err != nil {
		return err
	}
	if err := core.RequirePositive("dualdelay channels", float64(channels)); err != nil {
		return err
	}

	e.prepared = false
	e.sampleRate = sampleRate
	e.blockSize = blockSize
	e.channels = channels
	maxOrder := min(sh.OrderForChannels(channels), sh.MaxOrder)
	e.maxChannels = sh.ChannelCount(maxOrder)
	e.order = -1

	for _, b := range e.branches {
		if err := b.prepare(e); err != nil {
			return fmt.Errorf("dualdelay: prepare branch %d: %w", b.index, err)
		}
	}
	e.dry.Resize(e.maxChannels, blockSize)
	e.scratch = core.EnsureLen(e.scratch, blockSize)

	if err := warmBases(maxOrder); err != nil {
		return err
	}
	if !e.cfg.syncWarp && e.worker == nil {
		e.worker = transform.NewWorker(len(e.branches), e.cfg.logger)
	}

	e.prepared = true
	e.cfg.logger.Printf("dualdelay: prepared %g Hz, block %d, %d channels (order %d), max delay %.0f samples",
		sampleRate, blockSize, channels, maxOrder, e.branches[Left].line.MaxDelay())
	return nil
}

// warmBases builds the quadrature bases of every order up to maxOrder so
// that later warp builds only pay for the fit.
func warmBases(maxOrder int) error {
	var g errgroup.Group
	for order := 1; order <= maxOrder; order++ {
		g.Go(func() error {
			_, err := sh.BasisFor(order)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("dualdelay: quadrature basis: %w", err)
	}
	return nil
}

// Process runs the engine over buf in place, in chunks of at most the
// prepared block size. Channels beyond the working order are zeroed.
func (e *Engine) Process(buf *buffer.Channels, snap Snapshot) error {
	if !e.prepared {
		return ErrNotPrepared
	}

	snap = snap.sanitized()
	order := e.workingOrder(buf.NumChannels(), snap.Order)
	if order < 0 {
		return nil
	}
	n := sh.ChannelCount(order)
	buf.ZeroChannels(n, buf.NumChannels())

	e.norm = snap.Normalization
	if order != e.order {
		oldN := max(sh.ChannelCount(e.order), 0)
		for _, b := range e.branches {
			b.activate(oldN, n)
		}
		e.order = order
	}

	dryGain := core.DBToGain(snap.DryGainDB)
	for off := 0; off < buf.Frames(); off += e.blockSize {
		frames := min(e.blockSize, buf.Frames()-off)
		buf.SliceInto(&e.host, off, frames)
		e.processBlock(&e.host, snap, n, frames, dryGain)
	}
	return nil
}

// workingOrder is the order processed for a buffer of the given channel
// count: bounded by the buffer, the prepared format and the configured
// order (0 for automatic).
func (e *Engine) workingOrder(channels, configured int) int {
	order := sh.OrderForChannels(min(channels, e.maxChannels))
	if configured > 0 {
		order = min(order, configured)
	}
	return min(order, sh.MaxOrder)
}

func (e *Engine) processBlock(host *buffer.Channels, snap Snapshot, n, frames int, dryGain float64) {
	for ch := range n {
		copy(e.dry.Channel(ch)[:frames], host.Channel(ch))
	}

	// Branch inputs use the previous block's outputs, so both are formed
	// before either branch runs.
	for i, b := range e.branches {
		other := e.branches[1-i]
		fb := core.DBToGain(snap.Branches[i].FeedbackDB)
		xfb := core.DBToGain(snap.Branches[1-i].CrossFeedbackDB)
		tmp := e.scratch[:frames]

		for ch := range n {
			dst := b.input.Channel(ch)[:frames]
			vecmath.ScaleBlock(dst, b.output.Channel(ch)[:frames], fb)
			vecmath.AddBlockInPlace(dst, e.dry.Channel(ch)[:frames])
			if xfb != 0 {
				vecmath.ScaleBlock(tmp, other.output.Channel(ch)[:frames], xfb)
				vecmath.AddBlockInPlace(dst, tmp)
			}
		}
	}

	for i, b := range e.branches {
		b.process(e, snap.Branches[i], n, frames)
	}

	wet := [2]float64{
		core.DBToGain(snap.Branches[Left].WetGainDB),
		core.DBToGain(snap.Branches[Right].WetGainDB),
	}
	tmp := e.scratch[:frames]
	for ch := range n {
		out := host.Channel(ch)
		vecmath.ScaleBlock(out, e.dry.Channel(ch)[:frames], dryGain)
		for i, b := range e.branches {
			if wet[i] == 0 {
				continue
			}
			vecmath.ScaleBlock(tmp, b.output.Channel(ch)[:frames], wet[i])
			vecmath.AddBlockInPlace(out, tmp)
		}
	}
}

// delaySamples resolves the delay target of a branch for this block,
// following the host tempo when the branch is synced.
func (e *Engine) delaySamples(p BranchParams) float64 {
	bpm := e.cfg.tempo.ClampBPM(e.cfg.tempo.Resolve(p.BPM, p.Synced, e.cfg.host))
	mult := e.cfg.tempo.SnapMultiplier(p.Multiplier)
	d := tempo.MsFromBPM(bpm, mult) * e.sampleRate / 1000
	return core.Clamp(d, 1, e.cfg.maxDelaySeconds*e.sampleRate)
}

// MsToBPM converts a delay time to a tempo and power-of-two multiplier in
// the engine's tempo range.
func (e *Engine) MsToBPM(ms float64) (bpm, multiplier float64) {
	return e.cfg.tempo.BPMFromMs(ms)
}

// Order returns the working order of the last processed block, or -1.
func (e *Engine) Order() int {
	return e.order
}

// WarpErr returns the most recent background warp failure, if any.
func (e *Engine) WarpErr() error {
	if e.worker == nil {
		return nil
	}
	return e.worker.Err()
}

// Close stops the background worker. The engine must be prepared again
// before further use.
func (e *Engine) Close() {
	if e.worker != nil {
		e.worker.Close()
		e.worker = nil
	}
	e.prepared = false
}
