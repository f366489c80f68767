package tempo

// Tap-tempo defaults.
const (
	DefaultTapResetMillis    = 3000.0
	DefaultTapDebounceMillis = 60.0
	DefaultTapSmoothing      = 0.5
)

// Tapper estimates a tempo from tap timestamps.
//
// The first tap only records its time. An interval longer than ResetAfter
// starts a new estimate with that tap as the first one; an interval shorter
// than MinInterval is ignored. The first valid interval seeds the estimate,
// later ones are folded in as estimate = Beta*estimate + (1-Beta)*interval.
type Tapper struct {
	Config      Config
	ResetAfter  float64 // milliseconds
	MinInterval float64 // milliseconds
	Beta        float64

	last     float64
	estimate float64
	hasLast  bool
	hasEst   bool
}

// NewTapper returns a tapper with default thresholds and smoothing.
func NewTapper(cfg Config) *Tapper {
	return &Tapper{
		Config:      cfg,
		ResetAfter:  DefaultTapResetMillis,
		MinInterval: DefaultTapDebounceMillis,
		Beta:        DefaultTapSmoothing,
	}
}

// Tap registers a tap at nowMillis. ok is true when the estimate was
// updated, in which case bpm and multiplier describe it.
func (t *Tapper) Tap(nowMillis float64) (bpm, multiplier float64, ok bool) {
	if !t.hasLast {
		t.last, t.hasLast = nowMillis, true
		return 0, 0, false
	}

	interval := nowMillis - t.last
	switch {
	case interval > t.ResetAfter || interval < 0:
		t.last = nowMillis
		t.hasEst = false
		return 0, 0, false
	case interval < t.MinInterval:
		return 0, 0, false
	}

	t.last = nowMillis
	if t.hasEst {
		t.estimate = t.Beta*t.estimate + (1-t.Beta)*interval
	} else {
		t.estimate, t.hasEst = interval, true
	}

	bpm, multiplier = t.Config.BPMFromMs(t.estimate)
	return bpm, multiplier, true
}

// EstimateMillis returns the current interval estimate and whether one exists.
func (t *Tapper) EstimateMillis() (float64, bool) {
	return t.estimate, t.hasEst
}

// Reset forgets all taps.
func (t *Tapper) Reset() {
	t.last, t.estimate = 0, 0
	t.hasLast, t.hasEst = false, false
}
