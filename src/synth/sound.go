package synth

// ----- Sound ----- //

// Sound describes which notes and channels a voice type may play. Sounds
// are stateless and shared read-only across all voices during matching.
type Sound interface {
	Tag() string
	AppliesToNote(note int) bool
	AppliesToChannel(channel int) bool
}

// SineSound accepts every note on every channel.
type SineSound struct{}

// Tag ...
func (s *SineSound) Tag() string {
	return "sine"
}

// AppliesToNote ...
func (s *SineSound) AppliesToNote(note int) bool {
	return true
}

// AppliesToChannel ...
func (s *SineSound) AppliesToChannel(channel int) bool {
	return true
}
