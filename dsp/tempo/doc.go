// Package tempo converts between delay times and musical tempo.
//
// A delay is expressed as a BPM value and a power-of-two note multiplier:
// ms = 60000 / (bpm * multiplier). [Config.BPMFromMs] folds tempi outside
// the BPM range back into it by the nearest power of two, [Tapper] derives
// a tempo from tap events, and [Resolve] applies host tempo sync.
package tempo
