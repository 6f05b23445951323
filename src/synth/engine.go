package synth

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/hajimehoshi/oto"
)

const (
	channelNum      = 2
	bitDepthInBytes = 2
)
const bytesPerSample = bitDepthInBytes * channelNum

// ----- Engine ----- //

// Config ...
type Config struct {
	SampleRate   int
	BufferFrames int // samples per render callback
	NumVoices    int
	Decay        float64
}

// Engine owns the audio output transport and drives the source from the
// playback loop. Each Read call is one render callback.
type Engine struct {
	ctx        context.Context
	otoContext *oto.Context
	source     *Source
	buf        *Buffer
	config     Config

	// CommandCh receives control commands (decay, note_on, note_off).
	CommandCh chan []string
}

var _ io.Reader = (*Engine)(nil)

// NewEngine ...
func NewEngine(config Config) (*Engine, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", config.SampleRate)
	}
	if config.Decay <= 0 || config.Decay >= 1 {
		return nil, fmt.Errorf("decay must be in (0,1) exclusive, got %v", config.Decay)
	}
	if config.NumVoices < 1 {
		return nil, fmt.Errorf("need at least one voice, got %d", config.NumVoices)
	}
	bufferSizeInBytes := config.BufferFrames * bytesPerSample
	otoContext, err := oto.NewContext(config.SampleRate, channelNum, bitDepthInBytes, bufferSizeInBytes)
	if err != nil {
		return nil, err
	}
	source := NewSource(config.NumVoices)
	source.PrepareToPlay(float64(config.SampleRate))
	source.SetDecay(config.Decay)
	e := &Engine{
		ctx:        context.Background(),
		otoContext: otoContext,
		source:     source,
		buf:        NewBuffer(channelNum, config.BufferFrames),
		config:     config,
		CommandCh:  make(chan []string, 256),
	}
	go e.processCommands()
	return e, nil
}

// Source ...
func (e *Engine) Source() *Source {
	return e.source
}

// PushMidi parses a raw MIDI message and feeds it to the collector. Called
// from the MIDI input goroutine.
func (e *Engine) PushMidi(data []byte) {
	event, ok := ParseMessage(data)
	if !ok {
		return
	}
	e.source.Collector().Push(event)
}

// Read renders the next block and encodes it as interleaved 16-bit LE
// stereo. This is the real-time callback; it never blocks on anything but
// the collector's short lock.
func (e *Engine) Read(buf []byte) (int, error) {
	select {
	case <-e.ctx.Done():
		log.Println("Read() interrupted.")
		return 0, io.EOF
	default:
	}
	frames := len(buf) / bytesPerSample
	if frames > e.buf.Len() {
		frames = e.buf.Len()
	}
	block := e.buf
	if frames < block.Len() {
		block = block.view(frames)
	}
	e.source.NextBlock(block)
	for ch := 0; ch < channelNum; ch++ {
		writeBuffer(block.Channel(ch), buf[:frames*bytesPerSample], ch)
	}
	return frames * bytesPerSample, nil
}

func writeBuffer(out []float64, buf []byte, ch int) {
	sampleLength := len(buf) / bytesPerSample
	for i := 0; i < sampleLength; i++ {
		value := out[i]
		if value > 1 {
			value = 1
		} else if value < -1 {
			value = -1
		}
		const max = 32767
		b := int16(value * max)
		buf[bytesPerSample*i+2*ch] = byte(b)
		buf[bytesPerSample*i+2*ch+1] = byte(b >> 8)
	}
}

// Start plays until ctx is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	p := e.otoContext.NewPlayer()
	defer func() {
		if err := p.Close(); err != nil {
			log.Printf("error: %v", err)
		}
	}()
	e.ctx = ctx

	// block until cancel() called
	if _, err := io.CopyBuffer(p, e, make([]byte, e.config.BufferFrames*bytesPerSample)); err != nil {
		return err
	}
	log.Println("Start() ended.")
	return nil
}

// Close ...
func (e *Engine) Close() error {
	log.Println("Closing Engine...")
	close(e.CommandCh)
	return e.otoContext.Close()
}

func (e *Engine) processCommands() {
	for command := range e.CommandCh {
		if err := e.update(command); err != nil {
			log.Printf("[WARN] %v\n", err)
		}
	}
	log.Println("processCommands() ended.")
}

func (e *Engine) update(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}
	switch command[0] {
	case "decay":
		if len(command) != 2 {
			return fmt.Errorf("usage: decay <coefficient>")
		}
		value, err := strconv.ParseFloat(command[1], 64)
		if err != nil {
			return err
		}
		if value <= 0 || value >= 1 {
			return fmt.Errorf("decay must be in (0,1) exclusive, got %v", value)
		}
		e.source.SetDecay(value)
	case "note_on":
		if len(command) < 2 {
			return fmt.Errorf("usage: note_on <note> [velocity]")
		}
		note, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		velocity := 1.0
		if len(command) > 2 {
			velocity, err = strconv.ParseFloat(command[2], 64)
			if err != nil {
				return err
			}
		}
		e.source.Collector().Push(Event{Kind: NoteOn, Note: int(note), Velocity: velocity})
	case "note_off":
		if len(command) < 2 {
			return fmt.Errorf("usage: note_off <note>")
		}
		note, err := strconv.ParseInt(command[1], 10, 32)
		if err != nil {
			return err
		}
		e.source.Collector().Push(Event{Kind: NoteOff, Note: int(note)})
	default:
		return fmt.Errorf("unknown command %q", command[0])
	}
	return nil
}
