package echo

import (
	"cmp"
	"errors"
	"math"
	"slices"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/window"
)

// Errors returned by the analyzer.
var (
	ErrEmptyIR           = errors.New("echo: impulse response is empty")
	ErrInvalidSampleRate = errors.New("echo: sample rate must be positive")
	ErrNoDecay           = errors.New("echo: insufficient decay for decay time")
)

// Analyzer defaults.
const (
	DefaultThresholdDB = -40.0
	DefaultMinSpacing  = 0.005
	DefaultWindowSize  = 512
)

// Echo describes one detected arrival.
type Echo struct {
	Index      int     // sample index of the arrival
	Time       float64 // arrival time in seconds
	Amplitude  float64 // signed sample value at Index
	LevelDB    float64 // level relative to the strongest arrival
	CentroidHz float64 // spectral centroid of the windowed arrival
	PeakHz     float64 // frequency of the strongest spectral bin
	// PeakDB is the sine amplitude in dB that the strongest bin implies,
	// corrected by the coherent gain of the window.
	PeakDB float64
}

// Analyzer finds echoes in impulse responses.
type Analyzer struct {
	SampleRate float64
	// ThresholdDB is the detection floor relative to the absolute peak.
	// Values >= 0 select DefaultThresholdDB.
	ThresholdDB float64
	// MinSpacing is the minimum distance between two echoes in seconds.
	// The weaker arrival of a closer pair is dropped.
	MinSpacing float64
	// WindowSize is the length of the analysis window around each arrival.
	WindowSize int
	// Window tapers each arrival before the spectral estimate. The zero
	// value is rectangular; NewAnalyzer selects Hann.
	Window window.Type
	// WindowAlpha is the Tukey taper fraction. Values outside (0, 1] keep
	// the default of 0.5.
	WindowAlpha float64
}

// NewAnalyzer returns an analyzer with default detection settings.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{
		SampleRate:  sampleRate,
		ThresholdDB: DefaultThresholdDB,
		MinSpacing:  DefaultMinSpacing,
		WindowSize:  DefaultWindowSize,
		Window:      window.TypeHann,
	}
}

// Analyze returns the echoes of ir in order of arrival. A silent response
// yields no echoes and no error.
func (a *Analyzer) Analyze(ir []float64) ([]Echo, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	if !(a.SampleRate > 0) {
		return nil, ErrInvalidSampleRate
	}

	peak := vecmath.MaxAbs(ir)
	if peak == 0 {
		return nil, nil
	}

	threshold := peak * core.DBToLinear(a.thresholdDB())
	candidates := localMaxima(ir, threshold)
	slices.SortStableFunc(candidates, func(i, j int) int {
		return cmp.Compare(math.Abs(ir[j]), math.Abs(ir[i]))
	})

	spacing := int(math.Round(a.minSpacing() * a.SampleRate))
	picked := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if !nearAny(picked, c, spacing) {
			picked = append(picked, c)
		}
	}
	slices.Sort(picked)

	size := a.windowSize()
	coeffs := a.coefficients(size)
	segment := make([]float64, size)

	echoes := make([]Echo, 0, len(picked))
	for _, idx := range picked {
		extract(segment, ir, idx-size/2)
		spec, err := a.spectrum(segment, coeffs)
		if err != nil {
			return nil, err
		}
		echoes = append(echoes, Echo{
			Index:      idx,
			Time:       float64(idx) / a.SampleRate,
			Amplitude:  ir[idx],
			LevelDB:    core.LinearToDB(math.Abs(ir[idx]) / peak),
			CentroidHz: spec.centroid,
			PeakHz:     spec.peakHz,
			PeakDB:     spec.peakDB,
		})
	}
	return echoes, nil
}

// Centroid returns the magnitude-weighted mean frequency of segment after
// the analyzer's window. segment is not modified.
func (a *Analyzer) Centroid(segment []float64) (float64, error) {
	if len(segment) == 0 {
		return 0, ErrEmptyIR
	}
	if !(a.SampleRate > 0) {
		return 0, ErrInvalidSampleRate
	}
	spec, err := a.spectrum(slices.Clone(segment), a.coefficients(len(segment)))
	return spec.centroid, err
}

// coefficients returns the periodic analysis window of the given length.
func (a *Analyzer) coefficients(size int) []float64 {
	opts := []window.Option{window.WithPeriodic()}
	if a.WindowAlpha > 0 {
		opts = append(opts, window.WithAlpha(a.WindowAlpha))
	}
	return window.Generate(a.Window, size, opts...)
}

type spectrum struct {
	centroid float64
	peakHz   float64
	peakDB   float64
}

// spectrum windows segment in place and measures its magnitude spectrum.
func (a *Analyzer) spectrum(segment, coeffs []float64) (spectrum, error) {
	vecmath.MulBlockInPlace(segment, coeffs)

	fftSize := core.NextPowerOfTwo(len(segment))
	in := make([]complex128, fftSize)
	for i, v := range segment {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return spectrum{}, err
	}
	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return spectrum{}, err
	}

	bins := fftSize/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k], im[k] = real(out[k]), imag(out[k])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	var weighted, total float64
	peakBin := 0
	binHz := a.SampleRate / float64(fftSize)
	for k, m := range mag {
		weighted += float64(k) * binHz * m
		total += m
		if m > mag[peakBin] {
			peakBin = k
		}
	}

	spec := spectrum{peakHz: float64(peakBin) * binHz, peakDB: math.Inf(-1)}
	if total == 0 {
		return spec, nil
	}
	spec.centroid = weighted / total

	// A sine of amplitude A peaks at A*N*gain/2; DC and Nyquist are not split.
	if gain := window.CoherentGain(coeffs); gain > 0 {
		scale := 2.0
		if peakBin == 0 || peakBin == fftSize/2 {
			scale = 1
		}
		spec.peakDB = core.LinearToDB(scale * mag[peakBin] / (float64(len(coeffs)) * gain))
	}
	return spec, nil
}

// DecayTime estimates the -60 dB decay time in seconds from the T20 slope
// (-5 to -25 dB) of the Schroeder integral, measured from the peak.
func (a *Analyzer) DecayTime(ir []float64) (float64, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}
	if !(a.SampleRate > 0) {
		return 0, ErrInvalidSampleRate
	}

	peakIdx := 0
	for i, v := range ir {
		if math.Abs(v) > math.Abs(ir[peakIdx]) {
			peakIdx = i
		}
	}

	rt := a.reverbTime(schroederDB(ir[peakIdx:]), -5, -25)
	if rt <= 0 {
		return 0, ErrNoDecay
	}
	return rt, nil
}

// schroederDB returns the backward-integrated energy normalized to the
// total, in dB with a -200 dB floor.
func schroederDB(ir []float64) []float64 {
	out := make([]float64, len(ir))
	var sum float64
	for i := len(ir) - 1; i >= 0; i-- {
		sum += ir[i] * ir[i]
		out[i] = sum
	}

	total := out[0]
	if total <= 0 {
		return out
	}
	for i, v := range out {
		if r := v / total; r > 0 {
			out[i] = 10 * math.Log10(r)
		} else {
			out[i] = -200
		}
	}
	return out
}

// reverbTime fits a line to the curve between startDB and endDB and
// extrapolates it to -60 dB.
func (a *Analyzer) reverbTime(curve []float64, startDB, endDB float64) float64 {
	startIdx, endIdx := -1, -1
	for i, v := range curve {
		if startIdx < 0 && v <= startDB {
			startIdx = i
		}
		if startIdx >= 0 && v <= endDB {
			endIdx = i
			break
		}
	}
	if startIdx < 0 || endIdx <= startIdx {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := startIdx; i <= endIdx; i++ {
		x := float64(i - startIdx)
		y := curve[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	n := float64(endIdx - startIdx + 1)
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom
	if slope >= 0 {
		return 0
	}
	return -60 / (slope * a.SampleRate)
}

func (a *Analyzer) thresholdDB() float64 {
	if a.ThresholdDB >= 0 || math.IsNaN(a.ThresholdDB) {
		return DefaultThresholdDB
	}
	return a.ThresholdDB
}

func (a *Analyzer) minSpacing() float64 {
	if !(a.MinSpacing >= 0) {
		return DefaultMinSpacing
	}
	return a.MinSpacing
}

func (a *Analyzer) windowSize() int {
	if a.WindowSize <= 0 {
		return DefaultWindowSize
	}
	return a.WindowSize
}

// localMaxima returns the indices whose magnitude reaches threshold and is
// not below the left neighbour and above the right one. Samples outside x
// count as zero.
func localMaxima(x []float64, threshold float64) []int {
	var out []int
	for i, v := range x {
		m := math.Abs(v)
		if m < threshold {
			continue
		}
		if i > 0 && math.Abs(x[i-1]) > m {
			continue
		}
		if i+1 < len(x) && math.Abs(x[i+1]) >= m {
			continue
		}
		out = append(out, i)
	}
	return out
}

func nearAny(picked []int, idx, spacing int) bool {
	for _, p := range picked {
		d := p - idx
		if d < 0 {
			d = -d
		}
		if d < spacing {
			return true
		}
	}
	return false
}

// extract copies x[start:start+len(dst)] into dst, zero-filling outside x.
func extract(dst, x []float64, start int) {
	for i := range dst {
		j := start + i
		if j >= 0 && j < len(x) {
			dst[i] = x[j]
		} else {
			dst[i] = 0
		}
	}
}
