package synth

import "log"

// ----- Synthesiser ----- //

// Synth owns a fixed pool of voices and the sounds they may play. The pool
// is configured once, before rendering starts; the render path never
// allocates voices.
type Synth struct {
	voices []Voice
	sounds []Sound
}

// NewSynth ...
func NewSynth() *Synth {
	return &Synth{}
}

// AddVoice ...
func (s *Synth) AddVoice(v Voice) {
	s.voices = append(s.voices, v)
}

// AddSound ...
func (s *Synth) AddSound(sound Sound) {
	s.sounds = append(s.sounds, sound)
}

// NumVoices ...
func (s *Synth) NumVoices() int {
	return len(s.voices)
}

// Voice ...
func (s *Synth) Voice(i int) Voice {
	return s.voices[i]
}

// SetSampleRate propagates the playback rate to every voice. Must be
// called before any note is started.
func (s *Synth) SetSampleRate(rate float64) {
	for _, v := range s.voices {
		v.SetSampleRate(rate)
	}
}

// RenderNextBlock renders all active voices into buf for the window
// [startSample, startSample+numSamples), applying events at their sample
// offsets. Events must arrive in non-decreasing offset order; voices are
// rendered up to each event before the event takes effect, so a note
// started mid-block sounds only from its offset onward.
func (s *Synth) RenderNextBlock(buf *Buffer, events []Event, startSample int, numSamples int) {
	pos := startSample
	end := startSample + numSamples
	for _, e := range events {
		at := startSample + e.Offset
		if at < pos {
			at = pos
		}
		if at >= end {
			break
		}
		if at > pos {
			s.renderVoices(buf, pos, at-pos)
			pos = at
		}
		s.handleEvent(e)
	}
	if end > pos {
		s.renderVoices(buf, pos, end-pos)
	}
}

func (s *Synth) renderVoices(buf *Buffer, startSample int, numSamples int) {
	for _, v := range s.voices {
		v.Render(buf, startSample, numSamples)
	}
}

func (s *Synth) handleEvent(e Event) {
	switch e.Kind {
	case NoteOn:
		s.noteOn(e)
	case NoteOff:
		s.noteOff(e)
	case Controller, PitchBend:
		// absorbed: the sine voice has no controller or bend response
	}
}

// noteOn assigns the first idle voice whose sound accepts the note. If the
// note is already sounding, the old voice is sent into release first so
// only the new voice sustains it. With no eligible idle voice the event is
// dropped; there is no stealing.
func (s *Synth) noteOn(e Event) {
	for _, v := range s.voices {
		if v.Note() == e.Note && v.Active() {
			v.Stop(0, true)
		}
	}
	for _, sound := range s.sounds {
		if !sound.AppliesToNote(e.Note) || !sound.AppliesToChannel(e.Channel) {
			continue
		}
		for _, v := range s.voices {
			if !v.Active() && v.CanPlay(sound) {
				v.Start(e.Note, e.Velocity, 0)
				return
			}
		}
	}
	log.Printf("[WARN] no free voice, note %d dropped\n", e.Note)
}

func (s *Synth) noteOff(e Event) {
	for _, v := range s.voices {
		if v.Note() == e.Note && v.Active() {
			v.Stop(e.Velocity, true)
		}
	}
}
