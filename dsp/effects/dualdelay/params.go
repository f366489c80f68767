package dualdelay

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/sh"
	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/transform"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/tempo"
)

// Branch indices.
const (
	Left  = 0
	Right = 1
)

// BranchParams holds the parameters of one delay branch.
type BranchParams struct {
	WetGainDB float64

	BPM        float64
	Multiplier float64
	Synced     bool

	Mode                transform.Kind
	Yaw, Pitch, Roll    float64 // degrees
	WarpAzimuthMode     transform.AzimuthMode
	WarpElevationMode   transform.ElevationMode
	WarpAzimuthFactor   float64
	WarpElevationFactor float64

	HighPassHz float64
	LowPassHz  float64

	FeedbackDB      float64
	CrossFeedbackDB float64 // gain of this branch's output into the other branch

	LFORateHz  float64
	LFODepthMs float64
}

// Warp returns the warp described by p.
func (p BranchParams) Warp() transform.WarpSpec {
	return transform.WarpSpec{
		Azimuth:         p.WarpAzimuthMode,
		Elevation:       p.WarpElevationMode,
		AzimuthFactor:   p.WarpAzimuthFactor,
		ElevationFactor: p.WarpElevationFactor,
	}
}

// Snapshot is the complete parameter set consumed by [Engine.Process].
// Order 0 selects the highest order the host channel count allows.
type Snapshot struct {
	DryGainDB     float64
	Order         int
	Normalization sh.Normalization
	Branches      [2]BranchParams
}

// DefaultSnapshot returns the factory parameter set.
func DefaultSnapshot() Snapshot {
	branch := BranchParams{
		WetGainDB:       -6,
		Multiplier:      1,
		Mode:            transform.Rotate,
		HighPassHz:      100,
		LowPassHz:       20000,
		FeedbackDB:      -8,
		CrossFeedbackDB: -20,
		LFORateHz:       0.5,
	}

	s := Snapshot{DryGainDB: 0, Normalization: sh.N3D}
	s.Branches[Left], s.Branches[Right] = branch, branch
	s.Branches[Left].BPM, s.Branches[Left].Yaw = 100, 10
	s.Branches[Right].BPM, s.Branches[Right].Yaw = 120, -7.5
	return s
}

type atomicFloat struct {
	bits atomic.Uint64
}

func (f *atomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

func (f *atomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

type branchParams struct {
	wetGainDB        atomicFloat
	bpm              atomicFloat
	multiplier       atomicFloat
	synced           atomic.Bool
	mode             atomic.Int32
	yaw, pitch, roll atomicFloat
	azimuthMode      atomic.Int32
	elevationMode    atomic.Int32
	azimuthFactor    atomicFloat
	elevationFactor  atomicFloat
	highPassHz       atomicFloat
	lowPassHz        atomicFloat
	feedbackDB       atomicFloat
	crossFeedbackDB  atomicFloat
	lfoRateHz        atomicFloat
	lfoDepthMs       atomicFloat
}

func (b *branchParams) store(p BranchParams) {
	b.wetGainDB.Store(p.WetGainDB)
	b.bpm.Store(p.BPM)
	b.multiplier.Store(p.Multiplier)
	b.synced.Store(p.Synced)
	b.mode.Store(int32(p.Mode))
	b.yaw.Store(p.Yaw)
	b.pitch.Store(p.Pitch)
	b.roll.Store(p.Roll)
	b.azimuthMode.Store(int32(p.WarpAzimuthMode))
	b.elevationMode.Store(int32(p.WarpElevationMode))
	b.azimuthFactor.Store(p.WarpAzimuthFactor)
	b.elevationFactor.Store(p.WarpElevationFactor)
	b.highPassHz.Store(p.HighPassHz)
	b.lowPassHz.Store(p.LowPassHz)
	b.feedbackDB.Store(p.FeedbackDB)
	b.crossFeedbackDB.Store(p.CrossFeedbackDB)
	b.lfoRateHz.Store(p.LFORateHz)
	b.lfoDepthMs.Store(p.LFODepthMs)
}

func (b *branchParams) load() BranchParams {
	return BranchParams{
		WetGainDB:           b.wetGainDB.Load(),
		BPM:                 b.bpm.Load(),
		Multiplier:          b.multiplier.Load(),
		Synced:              b.synced.Load(),
		Mode:                transform.Kind(b.mode.Load()),
		Yaw:                 b.yaw.Load(),
		Pitch:               b.pitch.Load(),
		Roll:                b.roll.Load(),
		WarpAzimuthMode:     transform.AzimuthMode(b.azimuthMode.Load()),
		WarpElevationMode:   transform.ElevationMode(b.elevationMode.Load()),
		WarpAzimuthFactor:   b.azimuthFactor.Load(),
		WarpElevationFactor: b.elevationFactor.Load(),
		HighPassHz:          b.highPassHz.Load(),
		LowPassHz:           b.lowPassHz.Load(),
		FeedbackDB:          b.feedbackDB.Load(),
		CrossFeedbackDB:     b.crossFeedbackDB.Load(),
		LFORateHz:           b.lfoRateHz.Load(),
		LFODepthMs:          b.lfoDepthMs.Load(),
	}
}

// Params is the parameter store shared between a control thread and the
// audio thread. Every scalar is its own atomic word: a Snapshot taken while
// setters run may mix old and new values, but never tears a single value.
// Branch arguments must be [Left] or [Right].
type Params struct {
	tempo tempo.Config

	dryGainDB     atomicFloat
	order         atomic.Int32
	normalization atomic.Int32
	branches      [2]branchParams

	tapMu   sync.Mutex
	tappers [2]*tempo.Tapper
}

// NewParams returns a store holding [DefaultSnapshot]. cfg bounds tempo
// values set through [Params.SetDelayMs] and [Params.Tap].
func NewParams(cfg tempo.Config) *Params {
	p := &Params{tempo: cfg}
	p.tappers[Left] = tempo.NewTapper(cfg)
	p.tappers[Right] = tempo.NewTapper(cfg)
	p.Store(DefaultSnapshot())
	return p
}

// Store publishes every field of s.
func (p *Params) Store(s Snapshot) {
	p.dryGainDB.Store(s.DryGainDB)
	p.order.Store(int32(s.Order))
	p.normalization.Store(int32(s.Normalization))
	for i := range p.branches {
		p.branches[i].store(s.Branches[i])
	}
}

// Snapshot returns the current value of every field.
func (p *Params) Snapshot() Snapshot {
	s := Snapshot{
		DryGainDB:     p.dryGainDB.Load(),
		Order:         int(p.order.Load()),
		Normalization: sh.Normalization(p.normalization.Load()),
	}
	for i := range p.branches {
		s.Branches[i] = p.branches[i].load()
	}
	return s
}

// SetDryGainDB sets the dry gain in dB.
func (p *Params) SetDryGainDB(db float64) { p.dryGainDB.Store(db) }

// SetOrder sets the configured ambisonic order; 0 selects automatic.
func (p *Params) SetOrder(order int) { p.order.Store(int32(order)) }

// SetNormalization sets the channel normalisation of the processed stream.
func (p *Params) SetNormalization(n sh.Normalization) { p.normalization.Store(int32(n)) }

// SetWetGainDB sets the output gain of a branch in dB.
func (p *Params) SetWetGainDB(branch int, db float64) {
	p.branches[branch].wetGainDB.Store(db)
}

// SetTempo sets the manual tempo and note multiplier of a branch.
func (p *Params) SetTempo(branch int, bpm, multiplier float64) {
	p.branches[branch].bpm.Store(bpm)
	p.branches[branch].multiplier.Store(multiplier)
}

// SetDelayMs sets the tempo of a branch from a delay time, folding it into
// the tempo range with a power-of-two multiplier.
func (p *Params) SetDelayMs(branch int, ms float64) {
	bpm, mult := p.tempo.BPMFromMs(ms)
	p.SetTempo(branch, bpm, mult)
}

// SetSynced selects whether a branch follows the host tempo.
func (p *Params) SetSynced(branch int, synced bool) {
	p.branches[branch].synced.Store(synced)
}

// SetMode selects the transform of a branch.
func (p *Params) SetMode(branch int, mode transform.Kind) {
	p.branches[branch].mode.Store(int32(mode))
}

// SetRotation sets the rotation angles of a branch in degrees.
func (p *Params) SetRotation(branch int, yaw, pitch, roll float64) {
	b := &p.branches[branch]
	b.yaw.Store(yaw)
	b.pitch.Store(pitch)
	b.roll.Store(roll)
}

// SetWarp sets the warp of a branch.
func (p *Params) SetWarp(branch int, w transform.WarpSpec) {
	b := &p.branches[branch]
	b.azimuthMode.Store(int32(w.Azimuth))
	b.elevationMode.Store(int32(w.Elevation))
	b.azimuthFactor.Store(w.AzimuthFactor)
	b.elevationFactor.Store(w.ElevationFactor)
}

// SetCutoffs sets the high-pass and low-pass cutoffs of a branch.
func (p *Params) SetCutoffs(branch int, highPassHz, lowPassHz float64) {
	p.branches[branch].highPassHz.Store(highPassHz)
	p.branches[branch].lowPassHz.Store(lowPassHz)
}

// SetFeedback sets the feedback of a branch into itself and into the other
// branch, in dB.
func (p *Params) SetFeedback(branch int, feedbackDB, crossFeedbackDB float64) {
	p.branches[branch].feedbackDB.Store(feedbackDB)
	p.branches[branch].crossFeedbackDB.Store(crossFeedbackDB)
}

// SetLFO sets the delay modulation of a branch.
func (p *Params) SetLFO(branch int, rateHz, depthMs float64) {
	p.branches[branch].lfoRateHz.Store(rateHz)
	p.branches[branch].lfoDepthMs.Store(depthMs)
}

// Tap registers a tap for branch at nowMillis. When the tap completes an
// interval the estimated tempo is published and returned.
func (p *Params) Tap(branch int, nowMillis float64) (bpm, multiplier float64, ok bool) {
	p.tapMu.Lock()
	bpm, multiplier, ok = p.tappers[branch].Tap(nowMillis)
	p.tapMu.Unlock()

	if ok {
		p.SetTempo(branch, bpm, multiplier)
	}
	return bpm, multiplier, ok
}

// sanitized replaces non-finite values with their defaults, unknown
// enumerations with the first value and caps gains at 0 dB. A gain of -Inf
// dB is kept and means silence.
func (s Snapshot) sanitized() Snapshot {
	def := DefaultSnapshot()
	s.DryGainDB = gainOr(s.DryGainDB, def.DryGainDB)
	if s.Normalization != sh.SN3D {
		s.Normalization = sh.N3D
	}

	for i := range s.Branches {
		p, d := &s.Branches[i], def.Branches[i]
		p.WetGainDB = gainOr(p.WetGainDB, d.WetGainDB)
		p.BPM = finiteOr(p.BPM, d.BPM)
		p.Multiplier = finiteOr(p.Multiplier, d.Multiplier)
		if p.Mode != transform.Warp {
			p.Mode = transform.Rotate
		}
		p.Yaw = finiteOr(p.Yaw, 0)
		p.Pitch = finiteOr(p.Pitch, 0)
		p.Roll = finiteOr(p.Roll, 0)
		if p.WarpAzimuthMode != transform.FrontBack {
			p.WarpAzimuthMode = transform.Sides
		}
		if p.WarpElevationMode != transform.Equator {
			p.WarpElevationMode = transform.Poles
		}
		p.WarpAzimuthFactor = finiteOr(p.WarpAzimuthFactor, 0)
		p.WarpElevationFactor = finiteOr(p.WarpElevationFactor, 0)
		p.HighPassHz = finiteOr(p.HighPassHz, d.HighPassHz)
		p.LowPassHz = finiteOr(p.LowPassHz, d.LowPassHz)
		p.FeedbackDB = gainOr(p.FeedbackDB, d.FeedbackDB)
		p.CrossFeedbackDB = gainOr(p.CrossFeedbackDB, d.CrossFeedbackDB)
		p.LFORateHz = finiteOr(p.LFORateHz, 0)
		p.LFODepthMs = finiteOr(p.LFODepthMs, 0)
	}
	return s
}

func finiteOr(v, fallback float64) float64 {
	if core.IsFinite(v) {
		return v
	}
	return fallback
}

func gainOr(db, fallback float64) float64 {
	if math.IsNaN(db) {
		return fallback
	}
	return math.Min(db, 0)
}
