// Package dualdelay implements an ambisonic dual delay.
//
// Two branches share the dry input. Each block, a branch adds its own
// previous output (feedback) and the other branch's previous output
// (crossfeed) to the dry signal, filters the sum with a high-pass and a
// low-pass section, rotates or warps the sound field, and writes it into a
// tempo-synced, LFO-modulated delay line. The branch outputs are mixed with
// the dry signal in place.
//
// Gains are given in dB; anything at or below -59.91 dB is silence.
// Delay times are given as a tempo and a power-of-two multiplier, see
// package tempo. Parameters are published through [Params] and passed to
// [Engine.Process] as a [Snapshot]:
//
//	params := dualdelay.NewParams(tempo.DefaultConfig())
//	engine := dualdelay.New()
//	if err := engine.Prepare(48000, 512, 16); err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	for block := range blocks {
//		if err := engine.Process(block, params.Snapshot()); err != nil {
//			return err
//		}
//	}
//
// Warp matrices are fitted on a background goroutine and crossfaded in
// once ready; rotations are computed inline and crossfaded over one block.
package dualdelay
