package midi

import (
	"fmt"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var listenersMu sync.Mutex
var openPorts map[string]drivers.In

func init() {
	openPorts = make(map[string]drivers.In)
}

// Listener owns one open MIDI input port feeding a SharedEventQueue.
// Grounded on the teacher's midiconnector.Device: a package-level registry
// of open ports guarded by one mutex, found by fuzzy name match against
// Ports() rather than requiring an exact driver-reported name.
type Listener struct {
	name  string
	queue *SharedEventQueue
	stop  func()
}

// Ports lists the names of currently available MIDI input ports.
func Ports() []string {
	var names []string
	for _, in := range midi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

func findPort(name string) (drivers.In, error) {
	ins := midi.GetInPorts()
	lower := strings.ToLower(name)
	for _, in := range ins {
		if strings.EqualFold(in.String(), name) {
			return in, nil
		}
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), lower) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("midi: no input port matching %q", name)
}

// Open finds an input port by fuzzy name match, starts listening, and
// routes every note-on/note-off message into queue. Close stops listening
// and releases the port.
func Open(name string, queue *SharedEventQueue) (*Listener, error) {
	listenersMu.Lock()
	defer listenersMu.Unlock()

	if _, ok := openPorts[name]; ok {
		return nil, fmt.Errorf("midi: port %q already open", name)
	}
	in, err := findPort(name)
	if err != nil {
		return nil, err
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteOn(&ch, &key, &vel):
			queue.Push(NoteEvent{Channel: ch, Note: key, Velocity: vel, On: true})
		case msg.GetNoteOff(&ch, &key, &vel):
			queue.Push(NoteEvent{Channel: ch, Note: key, Velocity: vel, On: false})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("midi: listen to %q: %w", name, err)
	}

	openPorts[name] = in
	return &Listener{name: name, queue: queue, stop: stop}, nil
}

// Close stops the listener and releases its port.
func (l *Listener) Close() {
	listenersMu.Lock()
	defer listenersMu.Unlock()
	if l.stop != nil {
		l.stop()
	}
	delete(openPorts, l.name)
}
