package synth

import (
	"context"
	"log"
	"strings"

	"gitlab.com/gomidi/rtmididrv"
)

// ListenToMidiIn opens a MIDI input port and forwards raw messages on the
// returned channel until ctx is cancelled. portName selects a port by
// case-insensitive substring; empty picks the first available port.
// Failures are logged, not returned: a synth with no MIDI input is still
// playable through the command channel.
func ListenToMidiIn(ctx context.Context, portName string) <-chan []byte {
	ch := make(chan []byte, 65536)
	go func() {
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v\n", err)
			return
		}
		defer func() {
			err := drv.Close()
			if err != nil {
				log.Printf("failed to close MIDI driver: %v\n", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v\n", err)
			return
		}
		log.Printf("MIDI IN: %v\n", ins)

		if len(ins) == 0 {
			log.Println("WARN: MIDI IN not found")
			return
		}
		in := ins[0]
		if portName != "" {
			found := false
			for _, candidate := range ins {
				if strings.Contains(strings.ToLower(candidate.String()), strings.ToLower(portName)) {
					in = candidate
					found = true
					break
				}
			}
			if !found {
				log.Printf("WARN: no MIDI IN matches %q, using %s\n", portName, in.String())
			}
		}
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v\n", err)
			return
		}
		log.Println("opened " + in.String())
		defer func() {
			err := in.Close()
			if err != nil {
				log.Printf("failed to close MIDI IN: %v\n", err)
			}
		}()
		log.Println("start listening MIDI IN...")
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			ch <- data
		}); err != nil {
			log.Println("failed to set listener: " + err.Error())
		}
		defer func() {
			log.Println("stop listening MIDI IN...")
			err := in.StopListening()
			if err != nil {
				log.Printf("failed to stop listening: %v\n", err)
			}
		}()
		defer close(ch)
		<-ctx.Done()
	}()
	return ch
}
