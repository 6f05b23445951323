package synth

import (
	"math"
	"testing"
)

const testSampleRate = 44100.0

func startedVoice(note int, velocity float64, decay float64) *SineVoice {
	v := NewSineVoice()
	v.SetSampleRate(testSampleRate)
	v.SetDecay(decay)
	v.Start(note, velocity, 0)
	return v
}

func TestNoteToFreq(t *testing.T) {
	if got := NoteToFreq(69); math.Abs(got-440) > 1e-9 {
		t.Errorf("note 69: expected 440Hz, got %v", got)
	}
	if got := NoteToFreq(81); math.Abs(got-880) > 1e-9 {
		t.Errorf("note 81: expected 880Hz, got %v", got)
	}
	if got := NoteToFreq(60); math.Abs(got-261.6255653005986) > 1e-6 {
		t.Errorf("note 60: expected middle C, got %v", got)
	}
	for n := 0; n < 128; n++ {
		expected := 440 * math.Pow(2, float64(n-69)/12)
		if got := NoteToFreq(n); math.Abs(got-expected) > 1e-9*expected {
			t.Errorf("note %d: expected %v, got %v", n, expected, got)
		}
	}
	// out of range is extrapolated, not rejected
	if got := NoteToFreq(150); got <= NoteToFreq(127) {
		t.Errorf("note 150 should extrapolate above the MIDI range, got %v", got)
	}
}

func TestStartSetsOscillatorState(t *testing.T) {
	v := startedVoice(69, 1.0, defaultDecay)
	if !v.Active() {
		t.Fatal("started voice should be active")
	}
	if v.Note() != 69 {
		t.Errorf("expected note 69, got %d", v.Note())
	}
	expectedDelta := 2 * math.Pi * 440 / testSampleRate
	if math.Abs(v.phaseDelta-expectedDelta) > 1e-12 {
		t.Errorf("expected phase delta %v, got %v", expectedDelta, v.phaseDelta)
	}
	if math.Abs(v.level-noteOnGain) > 1e-12 {
		t.Errorf("expected level %v at full velocity, got %v", noteOnGain, v.level)
	}
	v2 := startedVoice(69, 0.5, defaultDecay)
	if math.Abs(v2.level-0.5*noteOnGain) > 1e-12 {
		t.Errorf("expected level scaled by velocity, got %v", v2.level)
	}
}

func TestStopWithoutTailOffIsIdempotent(t *testing.T) {
	v := NewSineVoice()
	v.SetSampleRate(testSampleRate)
	v.Stop(0, false)
	if v.Active() {
		t.Error("stopping an idle voice should leave it idle")
	}
	v.Stop(0, false)
	if v.Active() || v.Note() != -1 {
		t.Error("repeated stop should leave the voice idle and unbound")
	}
}

func TestStopWithoutTailOffSilencesImmediately(t *testing.T) {
	v := startedVoice(60, 1.0, defaultDecay)
	buf := NewBuffer(1, 100)
	v.Render(buf, 0, 50)
	v.Stop(0, false)
	if v.Active() {
		t.Fatal("voice should be idle after hard stop")
	}
	v.Render(buf, 50, 50)
	nonzero := 0
	for i := 0; i < 50; i++ {
		if buf.Sample(0, i) != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("expected sine output before the stop")
	}
	for i := 50; i < 100; i++ {
		if buf.Sample(0, i) != 0 {
			t.Fatalf("expected silence after hard stop, sample %d = %v", i, buf.Sample(0, i))
		}
	}
}

func TestTailOffDecaysGeometrically(t *testing.T) {
	decay := 0.999
	v := startedVoice(69, 1.0, decay)
	v.Stop(0, true)
	n := 2000
	buf := NewBuffer(1, n)
	v.Render(buf, 0, n)
	phase := 0.0
	delta := 2 * math.Pi * 440 / testSampleRate
	tail := 1.0
	for i := 0; i < n; i++ {
		expected := math.Sin(phase) * noteOnGain * tail
		if math.Abs(buf.Sample(0, i)-expected) > 1e-9 {
			t.Fatalf("sample %d: expected %v, got %v", i, expected, buf.Sample(0, i))
		}
		phase += delta
		tail *= decay
	}
}

func TestDoubleStopKeepsExistingTailOff(t *testing.T) {
	v := startedVoice(69, 1.0, 0.999)
	v.Stop(0, true)
	buf := NewBuffer(1, 100)
	v.Render(buf, 0, 100)
	// a second release must not reset the decay back to 1.0
	v.Stop(0, true)
	if v.tailOff >= 1.0 {
		t.Errorf("second stop reset tail-off to %v", v.tailOff)
	}
}

func TestTailOffReachesIdleWithinBound(t *testing.T) {
	decay := 0.999
	v := startedVoice(60, 1.0, decay)
	v.Stop(0, true)
	bound := int(math.Ceil(math.Log(silenceThreshold) / math.Log(decay)))
	n := bound + 1000
	buf := NewBuffer(1, n)
	v.Render(buf, 0, n)
	if v.Active() {
		t.Fatalf("voice still active after %d samples of release", n)
	}
	if v.Note() != -1 {
		t.Errorf("idle voice still bound to note %d", v.Note())
	}
	idleAt := -1
	for i := n - 1; i >= 0; i-- {
		if buf.Sample(0, i) != 0 {
			idleAt = i + 1
			break
		}
	}
	if idleAt < 0 {
		t.Fatal("no output rendered at all")
	}
	if idleAt > bound {
		t.Errorf("release took %d samples, bound is %d", idleAt, bound)
	}
	for i := idleAt; i < n; i++ {
		if buf.Sample(0, i) != 0 {
			t.Fatalf("expected silence after idling, sample %d = %v", i, buf.Sample(0, i))
		}
	}
}

func TestReleaseBecomesIdleBeforeTenThousandSamples(t *testing.T) {
	v := startedVoice(60, 1.0, 0.999)
	buf := NewBuffer(1, 10000)
	v.Render(buf, 0, 100)
	v.Stop(0, true)
	buf.Clear()
	v.Render(buf, 0, 10000)
	if v.Active() {
		t.Fatal("voice should idle well before 10000 samples at decay 0.999")
	}
}

func TestSetDecayAppliesToNextSample(t *testing.T) {
	v := startedVoice(69, 1.0, 0.999)
	v.Stop(0, true)
	buf := NewBuffer(1, 10)
	v.Render(buf, 0, 10)
	tailBefore := v.tailOff
	v.SetDecay(0.5)
	buf2 := NewBuffer(1, 1)
	v.Render(buf2, 0, 1)
	expected := tailBefore * 0.5
	if math.Abs(v.tailOff-expected) > 1e-12 {
		t.Errorf("expected tail-off %v after decay change, got %v", expected, v.tailOff)
	}
}

func TestIdleVoiceRendersNothing(t *testing.T) {
	v := NewSineVoice()
	v.SetSampleRate(testSampleRate)
	buf := NewBuffer(2, 64)
	v.Render(buf, 0, 64)
	for ch := 0; ch < 2; ch++ {
		for i := 0; i < 64; i++ {
			if buf.Sample(ch, i) != 0 {
				t.Fatalf("idle voice wrote to ch %d sample %d", ch, i)
			}
		}
	}
}

func TestRenderFansMonoToAllChannels(t *testing.T) {
	v := startedVoice(60, 1.0, defaultDecay)
	buf := NewBuffer(2, 64)
	v.Render(buf, 0, 64)
	for i := 0; i < 64; i++ {
		if buf.Sample(0, i) != buf.Sample(1, i) {
			t.Fatalf("channels differ at sample %d: %v vs %v", i, buf.Sample(0, i), buf.Sample(1, i))
		}
	}
}

func TestRenderAddsInsteadOfOverwriting(t *testing.T) {
	v := startedVoice(60, 1.0, defaultDecay)
	buf := NewBuffer(1, 8)
	for i := 0; i < 8; i++ {
		buf.Add(0, i, 1.0)
	}
	v.Render(buf, 0, 8)
	// sample 0 is sin(0) = 0, so the prior value must survive
	if buf.Sample(0, 0) != 1.0 {
		t.Errorf("render overwrote prior buffer contents: %v", buf.Sample(0, 0))
	}
}

func TestCanPlayMatchesSoundTag(t *testing.T) {
	v := NewSineVoice()
	if !v.CanPlay(&SineSound{}) {
		t.Error("sine voice should play the sine sound")
	}
}
