package synth

// ----- MIDI Event ----- //

// EventKind ...
type EventKind int

const (
	// NoteOn ...
	NoteOn EventKind = iota
	// NoteOff ...
	NoteOff
	// Controller ...
	Controller
	// PitchBend ...
	PitchBend
)

// Event is one timestamped MIDI event. Offset is a sample index relative
// to the start of the render block it is delivered in.
type Event struct {
	Kind     EventKind
	Channel  int
	Note     int
	Velocity float64 // 0-1
	Value    int     // controller value / pitch bend amount
	Offset   int
}

// ParseMessage decodes a raw MIDI message into an Event. It returns false
// for messages this synth does not consume (clock, aftertouch, sysex...).
// A note-on with velocity 0 is a note-off.
func ParseMessage(data []byte) (Event, bool) {
	if len(data) < 2 {
		return Event{}, false
	}
	status := data[0] >> 4
	channel := int(data[0] & 0x0f)
	switch status {
	case 8:
		return Event{Kind: NoteOff, Channel: channel, Note: int(data[1])}, true
	case 9:
		if len(data) < 3 {
			return Event{}, false
		}
		if data[2] == 0 {
			return Event{Kind: NoteOff, Channel: channel, Note: int(data[1])}, true
		}
		return Event{
			Kind:     NoteOn,
			Channel:  channel,
			Note:     int(data[1]),
			Velocity: float64(data[2]) / 127,
		}, true
	case 11:
		if len(data) < 3 {
			return Event{}, false
		}
		return Event{Kind: Controller, Channel: channel, Note: int(data[1]), Value: int(data[2])}, true
	case 14:
		if len(data) < 3 {
			return Event{}, false
		}
		return Event{Kind: PitchBend, Channel: channel, Value: int(data[2])<<7 | int(data[1])}, true
	}
	return Event{}, false
}
