// Package echo locates discrete echoes in a rendered impulse response and
// describes each one by arrival time, level and spectral centroid.
//
// It is meant for checking delay effects: render an impulse through the
// processor, then
//
//	a := echo.NewAnalyzer(48000)
//	echoes, err := a.Analyze(response)
//	for _, e := range echoes {
//		fmt.Printf("%.1f ms %.1f dB %.0f Hz\n", e.Time*1000, e.LevelDB, e.CentroidHz)
//	}
//
// DecayTime estimates how fast a feedback train dies away from the
// Schroeder backward integral, extrapolated to -60 dB.
package echo
