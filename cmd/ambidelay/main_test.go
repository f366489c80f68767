package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/algo-ambidelay/dsp/ambisonic/transform"
)

func defaults() settings {
	return settings{
		rate:       48000,
		block:      512,
		order:      1,
		seconds:    0.5,
		bpm:        [2]float64{250, 120},
		mult:       [2]float64{2, 1},
		yaw:        [2]float64{10, -7.5},
		feedback:   -8,
		xfeedback:  -20,
		warpFactor: 0.5,
	}
}

func TestRunPrintsEchoTable(t *testing.T) {
	var out bytes.Buffer
	if err := run(defaults(), &out); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{"Echo", "Centroid [Hz]", "Peak [dB]", "Order", "0.00", "120.00"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output lacks %q:\n%s", want, text)
		}
	}
}

func TestRunRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*settings)
	}{
		{"order", func(s *settings) { s.order = 8 }},
		{"seconds", func(s *settings) { s.seconds = 0 }},
		{"block", func(s *settings) { s.block = 0 }},
		{"warp", func(s *settings) { s.warp = "diagonal" }},
		{"tap", func(s *settings) { s.taps = "0,abc" }},
		{"window", func(s *settings) { s.window = "kaiser" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := defaults()
			tc.modify(&s)
			if err := run(s, &bytes.Buffer{}); err == nil {
				t.Fatal("run() error = nil")
			}
		})
	}
}

func TestParseWarp(t *testing.T) {
	tests := []struct {
		name string
		want transform.WarpSpec
	}{
		{"poles", transform.WarpSpec{Elevation: transform.Poles, ElevationFactor: 0.4}},
		{"Equator", transform.WarpSpec{Elevation: transform.Equator, ElevationFactor: 0.4}},
		{"front-back", transform.WarpSpec{Azimuth: transform.FrontBack, AzimuthFactor: 0.4}},
		{" sides ", transform.WarpSpec{Azimuth: transform.Sides, AzimuthFactor: 0.4}},
	}

	for _, tc := range tests {
		got, err := parseWarp(tc.name, 0.4)
		if err != nil {
			t.Fatalf("parseWarp(%q) error = %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("parseWarp(%q) = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestConfigureTapSetsLeftTempo(t *testing.T) {
	s := defaults()
	s.taps = "0, 500, 1000"
	params, err := configure(s)
	if err != nil {
		t.Fatalf("configure() error = %v", err)
	}
	if bpm := params.Snapshot().Branches[0].BPM; bpm != 120 {
		t.Fatalf("left BPM = %v, want 120", bpm)
	}
}

func TestRunAcceptsEveryWindow(t *testing.T) {
	for _, name := range []string{"rectangular", "Hann", "blackman", "tukey"} {
		s := defaults()
		s.window = name
		var out bytes.Buffer
		if err := run(s, &out); err != nil {
			t.Fatalf("window %q: run() error = %v", name, err)
		}
		if !strings.Contains(out.String(), "Peak [Hz]") {
			t.Fatalf("window %q: output lacks the peak column:\n%s", name, out.String())
		}
	}
}

func TestShapingListsBranchGains(t *testing.T) {
	s := defaults()
	s.highPass, s.lowPass = 1000, 4000
	params, err := configure(s)
	if err != nil {
		t.Fatalf("configure() error = %v", err)
	}

	var out bytes.Buffer
	if err := shaping(&out, params.Snapshot(), 48000); err != nil {
		t.Fatalf("shaping() error = %v", err)
	}
	text := out.String()
	// Both Butterworth stages give about -3 dB at their own cutoff.
	for _, want := range []string{"1000 Hz [dB]", "-3.03", "-48.05"} {
		if !strings.Contains(text, want) {
			t.Fatalf("shaping output lacks %q:\n%s", want, text)
		}
	}
}
