package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dawsonTolbert/midisynth/src/synth"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagSampleRate   int
	flagBufferFrames int
	flagVoices       int
	flagDecay        float64
	flagMidiPort     string
	flagNoMidi       bool
)

var rootCmd = &cobra.Command{
	Use:   "midisynth",
	Short: "Play a polyphonic sine synth from live MIDI input",
	Long: `midisynth renders a fixed pool of sine voices driven by a MIDI
input device. Without a device it is playable from stdin:

  note_on <note> [velocity]
  note_off <note>
  decay <coefficient>
  quit`,
	RunE: run,
}

func init() {
	rootCmd.Flags().IntVar(&flagSampleRate, "sample-rate", 48000, "playback sample rate in Hz")
	rootCmd.Flags().IntVar(&flagBufferFrames, "buffer-size", 1024, "render callback size in frames")
	rootCmd.Flags().IntVar(&flagVoices, "voices", 4, "voice pool size")
	rootCmd.Flags().Float64Var(&flagDecay, "decay", 0.999, "release decay coefficient, exclusive (0,1)")
	rootCmd.Flags().StringVar(&flagMidiPort, "midi-port", "", "MIDI input port name substring (first port when empty)")
	rootCmd.Flags().BoolVar(&flagNoMidi, "no-midi", false, "skip MIDI input, control from stdin only")
}

func main() {
	log.SetFlags(log.Lshortfile)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	engine, err := synth.NewEngine(synth.Config{
		SampleRate:   flagSampleRate,
		BufferFrames: flagBufferFrames,
		NumVoices:    flagVoices,
		Decay:        flagDecay,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Start(ctx)
	})
	if !flagNoMidi {
		midiIn := synth.ListenToMidiIn(ctx, flagMidiPort)
		g.Go(func() error {
			for data := range midiIn {
				engine.PushMidi(data)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer cancel()
		return receiveCommands(ctx, os.Stdin, engine.CommandCh)
	})
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	log.Println("main() ended.")
	return nil
}

func receiveCommands(ctx context.Context, r io.Reader, commandCh chan<- []string) error {
	// The blocking read lives in its own goroutine so a signal can end the
	// loop while stdin stays open.
	lineCh := make(chan string)
	go func() {
		defer close(lineCh)
		reader := bufio.NewReader(r)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					log.Printf("error while reading commands: %v\n", err)
				}
				return
			}
			lineCh <- line
		}
	}()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("receiveCommands() interrupted")
			break loop
		case line, ok := <-lineCh:
			if !ok {
				break loop
			}
			command := strings.Fields(line)
			if len(command) == 0 {
				continue
			}
			if command[0] == "quit" {
				break loop
			}
			commandCh <- command
		}
	}
	log.Println("receiveCommands() ended.")
	return nil
}
