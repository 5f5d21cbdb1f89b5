// Package ir defines the compiler-facing intermediate representation that
// internal/graph.Build consumes, per spec.md §6.1. The surface DSL
// compiler is out of scope; this package only fixes the shape it must
// emit. Grounded on the teacher's internal/mml/types.go (Score/Track/Event
// as the closest existing "parsed program, ready for an engine" IR), but
// the shape itself is dictated by spec.md's Program/NodeSpec/Signal
// grammar and is not modeled on a specific teacher type 1:1.
package ir

import "github.com/ekg/phonon-sub005/internal/pattern"

// NodeID addresses a node in the graph's arena; NodeId = usize in spec.md.
type NodeID int

// SignalNodeKind enumerates the closed set of node variants spec.md §3
// names under Generators/Filters/Effects/Math/Pattern nodes/External input.
type SignalNodeKind string

const (
	KindConstant    SignalNodeKind = "constant"
	KindOscillator  SignalNodeKind = "oscillator"
	KindNoise       SignalNodeKind = "noise"
	KindLpf         SignalNodeKind = "lpf"
	KindHpf         SignalNodeKind = "hpf"
	KindBpf         SignalNodeKind = "bpf"
	KindNotch       SignalNodeKind = "notch"
	KindMoog        SignalNodeKind = "moog"
	KindSvf         SignalNodeKind = "svf"
	KindOnePole     SignalNodeKind = "onepole"
	KindReverb      SignalNodeKind = "reverb"
	KindFdnReverb   SignalNodeKind = "fdn_reverb"
	KindPlateReverb SignalNodeKind = "plate_reverb"
	KindDelay       SignalNodeKind = "delay"
	KindTapeDelay   SignalNodeKind = "tape_delay"
	KindMultiTap    SignalNodeKind = "multitap"
	KindPingPong    SignalNodeKind = "pingpong"
	KindChorus      SignalNodeKind = "chorus"
	KindDistortion  SignalNodeKind = "distortion"
	KindBitCrush    SignalNodeKind = "bitcrush"
	KindCompressor  SignalNodeKind = "compressor"
	KindLimiter     SignalNodeKind = "limiter"
	KindAdd         SignalNodeKind = "add"
	KindSub         SignalNodeKind = "sub"
	KindMul         SignalNodeKind = "mul"
	KindDiv         SignalNodeKind = "div"
	KindMix         SignalNodeKind = "mix"
	KindSample      SignalNodeKind = "sample"
	KindEnvelope    SignalNodeKind = "envelope"
	KindMidiInput   SignalNodeKind = "midi_input"
	KindEQ5Band     SignalNodeKind = "eq5band"
	KindEQ3Band     SignalNodeKind = "eq3band"
)

// NoiseKind enumerates the Noise node's rng variant (spec.md §3's
// `Noise{kind, rng:Cell}`): plain white noise, or a sample-and-hold random
// generator useful as a continuous modulation source at a musical rate.
type NoiseKind string

const (
	NoiseWhite      NoiseKind = "white"
	NoiseSampleHold NoiseKind = "sample_hold"
)

// OscKind enumerates the Oscillator node's waveform parameter.
type OscKind string

const (
	OscSine     OscKind = "sine"
	OscSaw      OscKind = "saw"
	OscSquare   OscKind = "square"
	OscTriangle OscKind = "triangle"
	OscPulse    OscKind = "pulse"
)

// SignalKind tags which of the three Signal variants is populated.
type SignalKind int

const (
	SignalConstantKind SignalKind = iota
	SignalNodeRefKind
	SignalPatternKind
)

// Signal is the tagged union spec.md §3/§6.1 names: a numeric graph
// parameter is either a bare constant, a reference to another node's
// output, or a pattern of floats queried per-event.
type Signal struct {
	Kind    SignalKind
	Const   float64
	Node    NodeID
	Pattern pattern.Pattern[float64]
}

func ConstSignal(v float64) Signal        { return Signal{Kind: SignalConstantKind, Const: v} }
func NodeSignal(id NodeID) Signal         { return Signal{Kind: SignalNodeRefKind, Node: id} }
func PatternSignal(p pattern.Pattern[float64]) Signal {
	return Signal{Kind: SignalPatternKind, Pattern: p}
}

// SampleParams carries the Sample node's mini-notation pattern plus the
// articulation parameters spec.md §3's context map and §4.5's
// TriggerParams both reference.
type SampleParams struct {
	Pattern  pattern.Pattern[string]
	Gain     Signal
	Pan      Signal
	Speed    Signal
	Cut      Signal
	Attack   Signal
	Release  Signal
	Begin    Signal
	End      Signal
	Legato   Signal
}

// NodeSpec is one entry of Program.Nodes: an id, its kind, and a generic
// parameter map covering every other node kind (oscillator freq, filter
// cutoff/q, effect mix, etc.) -- SampleParams is broken out separately
// since it alone carries a Pattern[string] rather than a numeric Signal.
type NodeSpec struct {
	ID         NodeID
	Kind       SignalNodeKind
	Params     map[string]Signal
	Sample     *SampleParams // non-nil only when Kind == KindSample
	OscKind    OscKind       // only meaningful when Kind == KindOscillator
	NoiseKind  NoiseKind     // only meaningful when Kind == KindNoise; "" defaults to NoiseWhite
	IsFeedback bool          // marks an edge into this node as crossing the DAG-cycle check, per §6.1 (2)
}

// OutputSlot names a graph output (spec.md's `~d1..~d99`/`~out1..` auto-bus
// naming, or the explicit `out` bus).
type OutputSlot string

// Program is the complete compiler output: every node, the resolved bus
// name table, the output routing list, and an optional master bus.
type Program struct {
	Cps     float64
	Buses   map[string]NodeID
	Nodes   []NodeSpec
	Outputs []OutputBinding
	Master  *NodeID
}

// OutputBinding pairs an output slot name with the node feeding it.
type OutputBinding struct {
	Slot OutputSlot
	Node NodeID
}

// ReservedBusNames lists bus identifiers the compiler must not allow users
// to declare, per spec.md §6.1 (3).
var ReservedBusNames = map[string]bool{
	"~add": true, "~sub": true, "~mul": true, "~div": true,
}
