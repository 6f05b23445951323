package synth

import (
	"log"
	"sync"
	"time"
)

func now() float64 {
	return float64(time.Now().UnixNano()) / 1000 / 1000 / 1000
}

// ----- Collector ----- //

// Collector bridges the asynchronous MIDI input callback and the
// synchronous render callback. The input thread appends timestamped
// events; the render thread drains them once per block. The critical
// section is a few instructions on both sides, so neither thread waits
// long enough to miss a deadline.
type Collector struct {
	mu         sync.Mutex
	sampleRate float64
	lastDrain  float64 // wall clock of the previous drain, seconds
	pending    []Event
}

// NewCollector ...
func NewCollector() *Collector {
	return &Collector{pending: make([]Event, 0, 256)}
}

// Reset reinitializes timestamp bookkeeping. Call it with the playback
// sample rate before the first render callback.
func (c *Collector) Reset(sampleRate float64) {
	c.mu.Lock()
	c.sampleRate = sampleRate
	c.lastDrain = now()
	c.pending = c.pending[:0]
	c.mu.Unlock()
}

// Push appends an event from the input thread, stamped with its sample
// offset since the previous drain.
func (c *Collector) Push(e Event) {
	c.mu.Lock()
	e.Offset = int((now() - c.lastDrain) * c.sampleRate)
	if e.Offset < 0 {
		e.Offset = 0
	}
	c.pending = append(c.pending, e)
	c.mu.Unlock()
}

// PushAt appends an event with a caller-chosen sample offset within the
// upcoming block. Later events must not carry earlier offsets.
func (c *Collector) PushAt(e Event, offset int) {
	c.mu.Lock()
	e.Offset = offset
	c.pending = append(c.pending, e)
	c.mu.Unlock()
}

// NextBlock drains every buffered event for the upcoming numSamples-sized
// block, remapping offsets to be relative to its start. Offsets beyond the
// block are clamped to its last sample, so no event is delayed to a later
// block. The returned slice is valid until the next call.
func (c *Collector) NextBlock(numSamples int) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastDrain = now()
	events := c.pending
	prev := 0
	for i := range events {
		if events[i].Offset >= numSamples {
			log.Printf("[WARN] event offset %d clamped to block of %d\n", events[i].Offset, numSamples)
			events[i].Offset = numSamples - 1
		}
		if events[i].Offset < prev {
			events[i].Offset = prev
		}
		prev = events[i].Offset
	}
	c.pending = c.pending[len(c.pending):]
	return events
}
