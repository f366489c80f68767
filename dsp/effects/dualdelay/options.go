package dualdelay

import (
	"io"
	"log"

	"github.com/cwbudde/algo-ambidelay/dsp/delay"
	"github.com/cwbudde/algo-ambidelay/dsp/tempo"
)

const (
	defaultMaxDelaySeconds = 6.0
	defaultMaxLFODepthMs   = 1.0
	defaultWarpFade        = 2048
)

type config struct {
	maxDelaySeconds float64
	maxLFODepthMs   float64
	tempo           tempo.Config
	host            tempo.HostTempo
	warpFade        int
	syncWarp        bool
	smoothingHz     float64
	logger          *log.Logger
}

// Option configures an [Engine].
type Option func(*config)

func defaultConfig() config {
	return config{
		maxDelaySeconds: defaultMaxDelaySeconds,
		maxLFODepthMs:   defaultMaxLFODepthMs,
		tempo:           tempo.DefaultConfig(),
		warpFade:        defaultWarpFade,
		smoothingHz:     delay.DefaultSmoothingHz,
		logger:          log.New(io.Discard, "", 0),
	}
}

// WithMaxDelay sets the longest delay time the lines can hold, in seconds.
func WithMaxDelay(seconds float64) Option {
	return func(cfg *config) {
		if seconds > 0 {
			cfg.maxDelaySeconds = seconds
		}
	}
}

// WithMaxLFODepth sets the upper bound of the LFO depth, in milliseconds.
func WithMaxLFODepth(ms float64) Option {
	return func(cfg *config) {
		if ms >= 0 {
			cfg.maxLFODepthMs = ms
		}
	}
}

// WithTempoConfig sets the tempo and multiplier ranges.
func WithTempoConfig(c tempo.Config) Option {
	return func(cfg *config) {
		cfg.tempo = c
	}
}

// WithHostTempo sets the transport consulted by synced branches.
func WithHostTempo(h tempo.HostTempo) Option {
	return func(cfg *config) {
		cfg.host = h
	}
}

// WithWarpFade sets the crossfade length, in samples, used when a new warp
// matrix is installed.
func WithWarpFade(samples int) Option {
	return func(cfg *config) {
		if samples >= 0 {
			cfg.warpFade = samples
		}
	}
}

// WithSynchronousWarp builds warp matrices inside Process instead of on the
// background worker. Intended for offline rendering and tests.
func WithSynchronousWarp() Option {
	return func(cfg *config) {
		cfg.syncWarp = true
	}
}

// WithSmoothingHz sets the cutoff of the delay-time smoother.
func WithSmoothingHz(hz float64) Option {
	return func(cfg *config) {
		if hz > 0 {
			cfg.smoothingHz = hz
		}
	}
}

// WithLogger sets the logger for prepare summaries and warp failures.
func WithLogger(l *log.Logger) Option {
	return func(cfg *config) {
		if l != nil {
			cfg.logger = l
		}
	}
}
