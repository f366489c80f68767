package dualdelay

import (
	"context"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/transform"
	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/delay"
	"github.com/cwbudde/algo-ambidelay/dsp/filter/shaper"
)

// branch is one of the two delay paths: shaper, transform, modulated line.
type branch struct {
	index int

	shaper   *shaper.Shaper
	fader    *transform.Fader
	rotation transform.Matrix
	line     delay.Line
	mod      delay.Modulator

	// input holds the summed branch input, shaped and transformed in place.
	// output holds the delay output of the most recent block and feeds the
	// next block's feedback.
	input   *buffer.Channels
	output  *buffer.Channels
	inView  buffer.Channels
	outView buffer.Channels
	delays  []float64

	mode             transform.Kind
	yaw, pitch, roll float64
	warp             transform.Spec
	stale            bool // matrix must be rebuilt and installed without fade
}

func newBranch(index int) *branch {
	return &branch{
		index:    index,
		shaper:   shaper.New(0),
		fader:    transform.NewFader(1),
		rotation: transform.NewMatrix(sh.MaxChannels),
		input:    buffer.New(0, 0),
		output:   buffer.New(0, 0),
		stale:    true,
	}
}

func (b *branch) prepare(e *Engine) error {
	n := e.maxChannels
	maxDelay := e.cfg.maxDelaySeconds*e.sampleRate + e.cfg.maxLFODepthMs*e.sampleRate/1000
	if err := b.line.Prepare(maxDelay, n, e.blockSize); err != nil {
		return err
	}

	b.mod.Prepare(e.sampleRate, e.cfg.smoothingHz)
	b.shaper.Resize(n)
	b.input.Resize(n, e.blockSize)
	b.output.Resize(n, e.blockSize)
	b.delays = core.EnsureLen(b.delays, e.blockSize)
	b.fader.Reset(1)
	b.stale = true
	return nil
}

// activate switches the branch to n working channels. Channels that become
// active start from silence.
func (b *branch) activate(oldN, n int) {
	if n > oldN {
		b.line.ClearChannels(oldN, n)
		b.shaper.ResetChannels(oldN, n)
		b.output.ZeroChannels(oldN, n)
	}
	b.fader.Reset(n)
	b.stale = true
}

// updateTransform brings the fader in line with p. Rotations are built
// inline; warps are built on the worker unless the engine builds them
// synchronously.
func (b *branch) updateTransform(e *Engine, p BranchParams, frames int) {
	if p.Mode == transform.Warp {
		spec := transform.Spec{Kind: transform.Warp, Order: e.order, Norm: e.norm, Warp: p.Warp()}
		if b.stale || b.mode != transform.Warp || spec != b.warp {
			immediate := b.stale
			b.mode, b.warp, b.stale = transform.Warp, spec, false
			if e.worker == nil {
				b.buildWarp(e, spec, immediate)
			} else {
				// immediate only applies to the inline build. After an order
				// change the fader already holds the identity of the new size,
				// so the worker result fades in from there.
				e.worker.Request(b.index, spec)
			}
		}
		if e.worker != nil {
			if r, ok := e.worker.Poll(b.index); ok && r.Spec == b.warp {
				b.fader.FadeTo(r.Matrix, e.cfg.warpFade)
			}
		}
		return
	}

	if !b.stale && b.mode == transform.Rotate && p.Yaw == b.yaw && p.Pitch == b.pitch && p.Roll == b.roll {
		return
	}

	transform.RotationInto(&b.rotation, p.Yaw, p.Pitch, p.Roll, e.order)
	if b.stale {
		b.fader.Set(b.rotation)
	} else {
		b.fader.FadeTo(b.rotation, frames)
	}
	b.mode, b.stale = transform.Rotate, false
	b.yaw, b.pitch, b.roll = p.Yaw, p.Pitch, p.Roll
}

func (b *branch) buildWarp(e *Engine, spec transform.Spec, immediate bool) {
	m, err := transform.Build(context.Background(), spec)
	if err != nil {
		e.cfg.logger.Printf("dualdelay: branch %d warp build failed: %v", b.index, err)
		return
	}
	if immediate {
		b.fader.Set(m)
		return
	}
	b.fader.FadeTo(m, e.cfg.warpFade)
}

// process runs the shaper, transform and delay line over the first frames
// samples of the n working channels of b.input, leaving the delayed signal
// in b.output.
func (b *branch) process(e *Engine, p BranchParams, n, frames int) {
	b.shaper.SetCutoffs(p.HighPassHz, p.LowPassHz, e.sampleRate)
	for ch := range n {
		b.shaper.ProcessBlock(ch, b.input.Channel(ch)[:frames])
	}

	b.updateTransform(e, p, frames)
	b.input.SliceInto(&b.inView, 0, frames)
	b.fader.Process(&b.inView, &b.inView, n)

	depth := core.Clamp(p.LFODepthMs, 0, e.cfg.maxLFODepthMs) * e.sampleRate / 1000
	delays := b.delays[:frames]
	b.mod.Trajectory(delays, e.delaySamples(p), max(p.LFORateHz, 0), depth)

	b.output.SliceInto(&b.outView, 0, frames)
	b.line.ProcessBlock(&b.inView, &b.outView, n, delays)

	// A short block leaves no feedback behind its end.
	if frames < b.output.Frames() {
		for ch := range n {
			clear(b.output.Channel(ch)[frames:])
		}
	}
}
