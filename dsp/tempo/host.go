package tempo

// HostTempo reports the tempo of the hosting transport. ok is false when
// the host has no tempo to offer.
type HostTempo interface {
	Tempo() (bpm float64, ok bool)
}

// HostTempoFunc adapts a function to [HostTempo].
type HostTempoFunc func() (float64, bool)

// Tempo calls f.
func (f HostTempoFunc) Tempo() (float64, bool) {
	return f()
}

// Resolve returns the BPM a branch should use. When synced is set and host
// reports a valid tempo, that tempo (clamped to the range of c) replaces the
// manual value; otherwise the manual value is returned unchanged.
func (c Config) Resolve(manual float64, synced bool, host HostTempo) float64 {
	if !synced || host == nil {
		return manual
	}

	bpm, ok := host.Tempo()
	if !ok || !(bpm > 0) {
		return manual
	}

	return c.ClampBPM(bpm)
}
