package graph

import (
	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/midi"
)

// midiInputNode is the graph-side half of the MidiInput node spec.md §3
// names as `MidiInput{channel:Option<u8>, queue:SharedEventQueue,
// last_freq:Cell}`: internal/midi owns opening the physical port and
// feeding the queue off-thread; this node only ever drains it once per
// tick and holds the last note-on frequency as its output, so the audio
// thread never blocks on a MIDI driver call.
type midiInputNode struct {
	queue    *midi.SharedEventQueue
	channel  *uint8 // nil means "any channel"
	lastFreq float64
}

// newMidiInputNode builds the node with a fresh, unbound queue; whatever
// opens the physical port (cmd/phonon, outside this package's scope) wires
// in the live one through Graph.BindMidiQueue after each graph build.
func newMidiInputNode(spec ir.NodeSpec) *midiInputNode {
	n := &midiInputNode{queue: midi.NewSharedEventQueue()}
	if ch, ok := spec.Params["channel"]; ok && ch.Kind == ir.SignalConstantKind {
		c := uint8(ch.Const)
		n.channel = &c
	}
	return n
}

// BindQueue lets the component that actually opened the MIDI port (outside
// this package's scope) replace the node's default empty queue with the
// live one -- done once at graph-build time, never while the graph is
// being evaluated.
func (n *midiInputNode) BindQueue(q *midi.SharedEventQueue) { n.queue = q }

// BindMidiQueue wires every MidiInput node in the graph to q, the queue a
// caller's internal/midi.Listener is actually feeding. A program with no
// MidiInput nodes makes this a no-op; a file-watcher recompile rebuilds a
// brand new Graph (spec.md §4.7's hot-swap), so this must be called again
// on each freshly-built Graph for MIDI to survive a live reload.
func (g *Graph) BindMidiQueue(q *midi.SharedEventQueue) {
	for _, n := range g.midiNodes {
		n.BindQueue(q)
	}
}

func (n *midiInputNode) eval(g *Graph) float32 {
	for _, e := range n.queue.Drain() {
		if !e.On {
			continue
		}
		if n.channel != nil && e.Channel != *n.channel {
			continue
		}
		n.lastFreq = midi.NoteToFreq(e.Note)
	}
	return float32(n.lastFreq)
}
