package buffer

// Channels is a planar block of NumChannels x Frames samples. Channel i
// occupies data[i*stride : i*stride+frames].
type Channels struct {
	data     []float64
	channels int
	frames   int
	stride   int
}

// New returns a zero-filled block with the given shape.
// Negative sizes are treated as zero.
func New(channels, frames int) *Channels {
	c := &Channels{}
	c.Resize(channels, frames)
	return c
}

// FromSlices copies the given per-channel slices into a new block. The frame
// count is the length of the shortest slice.
func FromSlices(src [][]float64) *Channels {
	frames := 0
	for i, s := range src {
		if i == 0 || len(s) < frames {
			frames = len(s)
		}
	}

	c := New(len(src), frames)
	for i, s := range src {
		copy(c.Channel(i), s[:frames])
	}
	return c
}

// NumChannels returns the channel count.
func (c *Channels) NumChannels() int {
	return c.channels
}

// Frames returns the number of samples per channel.
func (c *Channels) Frames() int {
	return c.frames
}

// Channel returns the samples of channel ch. The slice aliases the block.
func (c *Channels) Channel(ch int) []float64 {
	start := ch * c.stride
	return c.data[start : start+c.frames : start+c.frames]
}

// Resize changes the shape, reusing the arena when its capacity allows.
// All samples are zeroed.
func (c *Channels) Resize(channels, frames int) {
	if channels < 0 {
		channels = 0
	}
	if frames < 0 {
		frames = 0
	}

	n := channels * frames
	if n <= cap(c.data) {
		c.data = c.data[:n]
	} else {
		c.data = make([]float64, n)
	}

	c.channels = channels
	c.frames = frames
	c.stride = frames
	c.Zero()
}

// Slice returns a view of frames [offset, offset+n) of every channel.
// The view shares memory with c. Bounds are clamped to the block.
func (c *Channels) Slice(offset, n int) *Channels {
	v := &Channels{}
	c.SliceInto(v, offset, n)
	return v
}

// SliceInto is Slice reusing view, for callers that must not allocate.
func (c *Channels) SliceInto(view *Channels, offset, n int) {
	offset = min(max(offset, 0), c.frames)
	n = min(max(n, 0), c.frames-offset)

	view.data = c.data[offset:]
	view.channels = c.channels
	view.frames = n
	view.stride = c.stride
}

// Zero sets every sample to 0.
func (c *Channels) Zero() {
	c.ZeroChannels(0, c.channels)
}

// ZeroChannels sets channels [from, to) to 0. Indices are clamped.
func (c *Channels) ZeroChannels(from, to int) {
	from = max(from, 0)
	to = min(to, c.channels)
	for ch := from; ch < to; ch++ {
		clear(c.Channel(ch))
	}
}

// CopyFrom copies the overlapping channels and frames of src into c and
// returns the number of frames copied per channel.
func (c *Channels) CopyFrom(src *Channels) int {
	channels := min(c.channels, src.channels)
	frames := min(c.frames, src.frames)
	for ch := range channels {
		copy(c.Channel(ch)[:frames], src.Channel(ch)[:frames])
	}
	return frames
}
