// Package midi owns the MidiInput signal node's external collaborator: a
// listener that drains a physical MIDI input port into a SharedEventQueue
// the graph can poll without blocking the audio thread. Grounded on the
// teacher's internal/midiconnector (device registry behind a package mutex,
// gitlab.com/gomidi/midi/v2 driver usage) generalized from note-OUTPUT to
// note-INPUT, since the teacher only ever sent notes to external gear.
package midi

import (
	"math"
	"sync"
)

// NoteEvent is one note-on/note-off message drained from an input port.
type NoteEvent struct {
	Channel  uint8
	Note     uint8
	Velocity uint8
	On       bool
}

// SharedEventQueue is the `queue:SharedEventQueue` field spec.md §3 names on
// the MidiInput node: a small mutex-guarded buffer the audio thread drains
// once per block, plus the per-channel last-triggered note so a MidiInput
// node can expose `last_freq` as a continuous control signal between
// messages.
type SharedEventQueue struct {
	mu       sync.Mutex
	pending  []NoteEvent
	lastFreq map[uint8]float64
}

// NewSharedEventQueue returns an empty queue.
func NewSharedEventQueue() *SharedEventQueue {
	return &SharedEventQueue{lastFreq: make(map[uint8]float64)}
}

// Push enqueues one event and, for note-on, records its frequency as the
// channel's last_freq. Safe to call from the MIDI driver's own callback
// goroutine.
func (q *SharedEventQueue) Push(e NoteEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, e)
	if e.On {
		q.lastFreq[e.Channel] = NoteToFreq(e.Note)
	}
}

// Drain removes and returns every event queued since the last Drain call.
func (q *SharedEventQueue) Drain() []NoteEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}

// LastFreq returns the most recent note-on frequency seen on channel, and
// whether any note-on has ever been observed on it.
func (q *SharedEventQueue) LastFreq(channel uint8) (float64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	f, ok := q.lastFreq[channel]
	return f, ok
}

// NoteToFreq converts a MIDI note number to Hz using equal temperament
// referenced to A4 = note 69 = 440Hz.
func NoteToFreq(note uint8) float64 {
	const a4 = 440.0
	return a4 * math.Exp2((float64(note)-69.0)/12.0)
}
