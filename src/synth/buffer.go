package synth

// ----- Buffer ----- //

// Buffer is a multi-channel float64 sample buffer. Voices add into it;
// the caller clears it before each render.
type Buffer struct {
	channels [][]float64
}

// NewBuffer ...
func NewBuffer(numChannels int, numSamples int) *Buffer {
	channels := make([][]float64, numChannels)
	for i := range channels {
		channels[i] = make([]float64, numSamples)
	}
	return &Buffer{channels: channels}
}

// Channels ...
func (b *Buffer) Channels() int {
	return len(b.channels)
}

// Len ...
func (b *Buffer) Len() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Add mixes value into channel ch at index i.
func (b *Buffer) Add(ch int, i int, value float64) {
	b.channels[ch][i] += value
}

// Sample ...
func (b *Buffer) Sample(ch int, i int) float64 {
	return b.channels[ch][i]
}

// Channel returns the underlying samples of one channel.
func (b *Buffer) Channel(ch int) []float64 {
	return b.channels[ch]
}

// view returns a Buffer sharing the first n samples of every channel.
func (b *Buffer) view(n int) *Buffer {
	channels := make([][]float64, len(b.channels))
	for i, ch := range b.channels {
		channels[i] = ch[:n]
	}
	return &Buffer{channels: channels}
}

// Clear zeroes every channel.
func (b *Buffer) Clear() {
	for _, ch := range b.channels {
		for i := range ch {
			ch[i] = 0
		}
	}
}
