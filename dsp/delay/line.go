package delay

import (
	"math"

	"github.com/cwbudde/algo-ambidelay/dsp/buffer"
	"github.com/cwbudde/algo-ambidelay/dsp/core"
	"github.com/cwbudde/algo-ambidelay/dsp/interp"
)

// interpolation taps beyond the integer read position: one before, two after.
const tapHeadroom = 3

// Line is a multichannel circular delay line. Channel ch owns
// arena[ch*size : (ch+1)*size] and advances its own cursor.
type Line struct {
	arena    []float64
	cursor   []int
	size     int
	maxDelay float64
	block    int
}

// Prepare allocates storage for maxDelaySamples (which must already include
// any modulation excursion) on the given number of channels and clears it.
func (l *Line) Prepare(maxDelaySamples float64, channels, blockSize int) error {
	if err := core.RequirePositive("delay max delay samples", maxDelaySamples); err != nil {
		return err
	}
	if err := core.RequirePositive("delay channels", float64(channels)); err != nil {
		return err
	}
	if err := core.RequirePositive("delay block size", float64(blockSize)); err != nil {
		return err
	}

	size := int(math.Ceil(maxDelaySamples)) + tapHeadroom
	n := size * channels
	if n <= cap(l.arena) {
		l.arena = l.arena[:n]
	} else {
		l.arena = make([]float64, n)
	}
	if channels <= cap(l.cursor) {
		l.cursor = l.cursor[:channels]
	} else {
		l.cursor = make([]int, channels)
	}

	l.size = size
	l.maxDelay = maxDelaySamples
	l.block = blockSize
	l.Reset()
	return nil
}

// Channels returns the prepared channel count.
func (l *Line) Channels() int {
	return len(l.cursor)
}

// MaxDelay returns the largest readable delay in samples.
func (l *Line) MaxDelay() float64 {
	return l.maxDelay
}

// BlockSize returns the prepared block size.
func (l *Line) BlockSize() int {
	return l.block
}

// Push writes one sample to channel ch and advances its cursor by one.
func (l *Line) Push(ch int, sample float64) {
	c := l.cursor[ch]
	l.arena[ch*l.size+c] = sample
	l.cursor[ch] = l.wrap(c + 1)
}

// PopAt reads channel ch delay samples behind its cursor; delay 1 is the most
// recently pushed sample. The delay is clamped to [1, MaxDelay].
func (l *Line) PopAt(ch int, delay float64) float64 {
	base, w := l.kernel(delay)
	return l.read(ch, base, &w)
}

// PushFrame pushes frame[ch] into every channel ch < len(frame).
func (l *Line) PushFrame(frame []float64) {
	for ch, x := range frame {
		l.Push(ch, x)
	}
}

// PopFrameAt reads all channels ch < len(dst) at the same delay, evaluating
// the interpolation weights once.
func (l *Line) PopFrameAt(dst []float64, delay float64) {
	base, w := l.kernel(delay)
	for ch := range dst {
		dst[ch] = l.read(ch, base, &w)
	}
}

// ProcessBlock delays channels [0, channels) of in into out, one entry of
// delays per frame. Each frame reads before it writes, so a delay of d
// samples yields out[n] = in[n-d].
func (l *Line) ProcessBlock(in, out *buffer.Channels, channels int, delays []float64) {
	channels = min(channels, l.Channels(), in.NumChannels(), out.NumChannels())
	frames := min(len(delays), in.Frames(), out.Frames())

	for i := range frames {
		base, w := l.kernel(delays[i])
		for ch := range channels {
			out.Channel(ch)[i] = l.read(ch, base, &w)
			l.Push(ch, in.Channel(ch)[i])
		}
	}
}

// Reset silences every channel and rewinds the cursors.
func (l *Line) Reset() {
	clear(l.arena)
	clear(l.cursor)
}

// ClearChannels silences channels [from, to). Indices are clamped.
func (l *Line) ClearChannels(from, to int) {
	from = max(from, 0)
	to = min(to, l.Channels())
	for ch := from; ch < to; ch++ {
		clear(l.arena[ch*l.size : (ch+1)*l.size])
		l.cursor[ch] = 0
	}
}

// kernel splits a clamped delay into the integer tap delay and the Lagrange
// weights for the taps at delays base-1, base, base+1 and base+2. Delays in
// [1, 2) have no tap at delay 0, so they use the taps at 1..4 and evaluate the
// polynomial one tap off-centre.
func (l *Line) kernel(delay float64) (int, [4]float64) {
	if !(delay >= 1) {
		delay = 1
	}
	if delay > l.maxDelay {
		delay = l.maxDelay
	}

	p := math.Floor(delay)
	if p < 2 {
		return 2, interp.Lagrange3Weights(delay - 2)
	}
	return int(p), interp.Lagrange3Weights(delay - p)
}

func (l *Line) read(ch, base int, w *[4]float64) float64 {
	if l.size == 0 {
		return 0
	}

	row := l.arena[ch*l.size : (ch+1)*l.size]
	c := l.cursor[ch]

	xm1 := row[l.wrap(c-base+1)]
	x0 := row[l.wrap(c-base)]
	x1 := row[l.wrap(c-base-1)]
	x2 := row[l.wrap(c-base-2)]

	return w[0]*xm1 + w[1]*x0 + w[2]*x1 + w[3]*x2
}

// wrap maps any cursor offset into [0, size).
func (l *Line) wrap(i int) int {
	i %= l.size
	if i < 0 {
		i += l.size
	}
	return i
}
