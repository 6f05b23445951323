package synth

import "math"

const (
	noteOnGain       = 0.15
	silenceThreshold = 0.005
	defaultDecay     = 0.999
	baseFreq         = 440.0
)

// NoteToFreq converts a MIDI note number to Hz (A4 = 69 = 440Hz, 12-TET).
// Out-of-range notes extrapolate; they are not rejected.
func NoteToFreq(note int) float64 {
	return baseFreq * math.Pow(2, float64(note-69)/12)
}

// ----- Voice ----- //

// Voice renders one concurrently sounding note. A voice is idle until
// Start binds it to a note; it frees itself when stopped without tail-off
// or when its release decays below the silence threshold.
type Voice interface {
	CanPlay(sound Sound) bool
	Note() int // -1 when idle
	Active() bool
	Start(note int, velocity float64, pitchWheel int)
	Stop(velocity float64, allowTailOff bool)
	SetSampleRate(rate float64)
	SetDecay(decay float64)
	Render(buf *Buffer, startSample int, numSamples int)
}

// ----- Sine Voice ----- //

// SineVoice is a single band-limited-enough sine oscillator with a
// geometric tail-off release.
type SineVoice struct {
	note       int
	phase      float64 // radians, wraps
	phaseDelta float64 // radians per sample; 0 means idle
	level      float64
	tailOff    float64 // 0 = sustaining, >0 = releasing
	decay      float64
	sampleRate float64
}

// NewSineVoice ...
func NewSineVoice() *SineVoice {
	return &SineVoice{note: -1, decay: defaultDecay}
}

// CanPlay reports whether this voice's type matches the sound's tag.
func (v *SineVoice) CanPlay(sound Sound) bool {
	return sound.Tag() == "sine"
}

// Note ...
func (v *SineVoice) Note() int {
	return v.note
}

// Active ...
func (v *SineVoice) Active() bool {
	return v.phaseDelta != 0
}

// SetSampleRate ...
func (v *SineVoice) SetSampleRate(rate float64) {
	v.sampleRate = rate
}

// SetDecay updates the release coefficient. Takes effect on the next
// rendered sample, not retroactively.
func (v *SineVoice) SetDecay(decay float64) {
	v.decay = decay
}

// Start binds the voice to note and resets its oscillator state.
func (v *SineVoice) Start(note int, velocity float64, pitchWheel int) {
	v.note = note
	v.phase = 0
	v.level = velocity * noteOnGain
	v.tailOff = 0
	v.phaseDelta = 2 * math.Pi * NoteToFreq(note) / v.sampleRate
}

// Stop releases the note. With allowTailOff the voice decays geometrically
// toward silence; without it the voice is freed immediately.
func (v *SineVoice) Stop(velocity float64, allowTailOff bool) {
	if allowTailOff {
		if v.tailOff == 0 {
			v.tailOff = 1.0
		}
		return
	}
	v.clear()
}

func (v *SineVoice) clear() {
	v.note = -1
	v.phaseDelta = 0
	v.tailOff = 0
}

// Render adds numSamples of this voice into every channel of buf starting
// at startSample. Idle voices write nothing. A releasing voice that decays
// below the silence threshold frees itself and stops writing early; the
// remaining samples keep their prior value.
func (v *SineVoice) Render(buf *Buffer, startSample int, numSamples int) {
	if v.phaseDelta == 0 {
		return
	}
	if v.tailOff > 0 {
		for ; numSamples > 0; numSamples-- {
			sample := math.Sin(v.phase) * v.level * v.tailOff
			for ch := buf.Channels() - 1; ch >= 0; ch-- {
				buf.Add(ch, startSample, sample)
			}
			v.phase += v.phaseDelta
			startSample++
			v.tailOff *= v.decay
			if v.tailOff <= silenceThreshold {
				v.clear()
				break
			}
		}
		return
	}
	for ; numSamples > 0; numSamples-- {
		sample := math.Sin(v.phase) * v.level
		for ch := buf.Channels() - 1; ch >= 0; ch-- {
			buf.Add(ch, startSample, sample)
		}
		v.phase += v.phaseDelta
		startSample++
	}
}
