package synth

// ----- Source ----- //

// Source ties a voice pool to a MIDI event collector and produces audio
// one block at a time. It is the render-thread owner of both.
type Source struct {
	synth     *Synth
	collector *Collector
}

// NewSource builds a source with numVoices sine voices and one universal
// sine sound.
func NewSource(numVoices int) *Source {
	s := &Source{
		synth:     NewSynth(),
		collector: NewCollector(),
	}
	for i := 0; i < numVoices; i++ {
		s.synth.AddVoice(NewSineVoice())
	}
	s.synth.AddSound(&SineSound{})
	return s
}

// Collector exposes the ingestion side for the MIDI input thread.
func (s *Source) Collector() *Collector {
	return s.collector
}

// Synth ...
func (s *Source) Synth() *Synth {
	return s.synth
}

// PrepareToPlay must be called before the first NextBlock. It fixes the
// playback sample rate for voice frequency math and collector timestamps.
func (s *Source) PrepareToPlay(sampleRate float64) {
	s.synth.SetSampleRate(sampleRate)
	s.collector.Reset(sampleRate)
}

// SetDecay updates the release coefficient on every voice.
func (s *Source) SetDecay(decay float64) {
	for i := 0; i < s.synth.NumVoices(); i++ {
		s.synth.Voice(i).SetDecay(decay)
	}
}

// NextBlock clears buf, drains the events due for this block and renders
// all voices into it.
func (s *Source) NextBlock(buf *Buffer) {
	buf.Clear()
	events := s.collector.NextBlock(buf.Len())
	s.synth.RenderNextBlock(buf, events, 0, buf.Len())
}
