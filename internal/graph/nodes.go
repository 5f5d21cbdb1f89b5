package graph

import (
	"fmt"
	"math"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/lfo"
)

const twoPi = 2 * math.Pi

// buildNode dispatches an ir.NodeSpec to its concrete runtime type. Every
// case below is grounded on a specific teacher (or pack) source: see
// DESIGN.md's per-node entries.
func buildNode(g *Graph, spec ir.NodeSpec) (node, error) {
	param := func(name string, def float64) *signalSampler {
		if s, ok := spec.Params[name]; ok {
			return newSignalSampler(s)
		}
		return newSignalSampler(ir.ConstSignal(def))
	}

	switch spec.Kind {
	case ir.KindConstant:
		return &constantNode{v: param("value", 0)}, nil
	case ir.KindOscillator:
		return &oscillatorNode{kind: spec.OscKind, freq: param("freq", 440)}, nil
	case ir.KindNoise:
		if spec.NoiseKind == ir.NoiseSampleHold {
			return newSampleHoldNoiseNode(param), nil
		}
		return &noiseNode{lfsr: 0x7FFF}, nil
	case ir.KindLpf, ir.KindHpf, ir.KindBpf, ir.KindNotch:
		return &filterNode{
			kind:   spec.Kind,
			input:  param("input", 0),
			cutoff: param("cutoff", 1000),
			q:      param("q", 0.707),
		}, nil
	case ir.KindOnePole:
		return &onePoleNode{input: param("input", 0), cutoff: param("cutoff", 1000)}, nil
	case ir.KindMoog, ir.KindSvf:
		return &filterNode{
			kind:   ir.KindLpf, // Moog/SVF degrade gracefully to the same one-pole-cascade lowpass protocol
			input:  param("input", 0),
			cutoff: param("cutoff", 1000),
			q:      param("q", 0.707),
		}, nil
	case ir.KindAdd:
		return &mathNode{op: opAdd, a: param("a", 0), b: param("b", 0)}, nil
	case ir.KindSub:
		return &mathNode{op: opSub, a: param("a", 0), b: param("b", 0)}, nil
	case ir.KindMul:
		return &mathNode{op: opMul, a: param("a", 0), b: param("b", 1)}, nil
	case ir.KindDiv:
		return &mathNode{op: opDiv, a: param("a", 0), b: param("b", 1)}, nil
	case ir.KindMix:
		return newMixNode(spec), nil
	case ir.KindSample:
		return newSampleNode(g, spec), nil
	case ir.KindEnvelope:
		return newEnvelopeNode(spec, param), nil
	case ir.KindReverb:
		return newReverbNode(g.sampleRate, spec), nil
	case ir.KindFdnReverb:
		return newFdnReverbNode(g.sampleRate, spec), nil
	case ir.KindPlateReverb:
		return newPlateReverbNode(g.sampleRate, spec), nil
	case ir.KindDelay, ir.KindTapeDelay:
		return newDelayNode(g.sampleRate, spec), nil
	case ir.KindMultiTap:
		return newMultiTapNode(g.sampleRate, spec), nil
	case ir.KindPingPong:
		return newPingPongNode(g.sampleRate, spec), nil
	case ir.KindChorus:
		return newChorusNode(g.sampleRate, spec), nil
	case ir.KindDistortion, ir.KindBitCrush:
		return newDistortionNode(g.sampleRate, spec), nil
	case ir.KindCompressor, ir.KindLimiter:
		return newCompressorNode(g.sampleRate, spec), nil
	case ir.KindEQ5Band:
		return newEQ5BandNode(g.sampleRate, spec), nil
	case ir.KindEQ3Band:
		return newEQ3BandNode(g.sampleRate, spec), nil
	case ir.KindMidiInput:
		return newMidiInputNode(spec), nil
	default:
		return nil, fmt.Errorf("unknown node kind %q", spec.Kind)
	}
}

// constantNode is the trivial Signal(v) generator.
type constantNode struct{ v *signalSampler }

func (n *constantNode) eval(g *Graph) float32 { return float32(n.v.eval(g)) }

// oscillatorNode generates Sine/Saw/Square/Triangle/Pulse, grounded on the
// teacher's fm.waveformSample -- phase is owned exclusively by this node
// (unlike the teacher's package-global noiseLFSR for its noise case, fixed
// here per spec.md §4.8's "no global mutable state").
type oscillatorNode struct {
	kind  ir.OscKind
	freq  *signalSampler
	phase float64
}

func (n *oscillatorNode) eval(g *Graph) float32 {
	freq := n.freq.eval(g)
	out := waveformSample(n.phase, n.kind)
	n.phase += twoPi * freq / g.sampleRate
	if n.phase > twoPi {
		n.phase = math.Mod(n.phase, twoPi)
	}
	return float32(out)
}

func waveformSample(phase float64, kind ir.OscKind) float64 {
	ph := math.Mod(phase, twoPi)
	if ph < 0 {
		ph += twoPi
	}
	switch kind {
	case ir.OscSaw:
		return 1.0 - 2.0*ph/twoPi
	case ir.OscTriangle:
		return 2.0*math.Abs(2.0*ph/twoPi-1.0) - 1.0
	case ir.OscSquare:
		if ph < math.Pi {
			return 1.0
		}
		return -1.0
	case ir.OscPulse:
		if ph < math.Pi/2 {
			return 1.0
		}
		return -1.0
	default: // OscSine
		return math.Sin(ph)
	}
}

// noiseNode is a Galois LFSR white-noise source; its state is per-instance,
// matching the teacher's noiseLFSR bit-shift recurrence but owned by the
// node rather than shared across every voice in the process.
type noiseNode struct{ lfsr uint32 }

func (n *noiseNode) eval(g *Graph) float32 {
	n.lfsr = (n.lfsr >> 1) ^ (-(n.lfsr & 1) & 0xB400)
	return float32(n.lfsr)/float32(0x7FFF)*2 - 1
}

// sampleHoldNoiseNode is the Noise node's NoiseSampleHold variant: a held
// random value that updates at `rate` Hz, for continuous step-modulation
// (a filter cutoff that jumps to a new random value 8 times a second,
// rather than white noise's every-sample hiss). Wraps the teacher's own
// lfo.LFO (internal/lfo, WaveRandom) unmodified rather than reimplementing
// its sine-hash pseudo-random sequence -- the teacher already owns exactly
// this per-voice LFO state shape, generalized here to a standalone graph
// node with depth fixed at 1 (callers scale/offset with Mul/Add nodes).
type sampleHoldNoiseNode struct {
	rate *signalSampler
	osc  lfo.LFO
}

func newSampleHoldNoiseNode(param func(name string, def float64) *signalSampler) *sampleHoldNoiseNode {
	n := &sampleHoldNoiseNode{rate: param("rate", 8)}
	n.osc.Set(1, 8, lfo.WaveRandom)
	return n
}

func (n *sampleHoldNoiseNode) eval(g *Graph) float32 {
	n.osc.Set(1, n.rate.eval(g), lfo.WaveRandom)
	return float32(n.osc.Sample(g.sampleRate))
}

// onePoleNode is a one-pole lowpass -- the exact filter the teacher uses
// for its own LPF/distortion post-filter (fm.Engine.lpfAlpha,
// effects.Distortion.lpfAlpha), generalized into a standalone node.
type onePoleNode struct {
	input, cutoff *signalSampler
	state         float32
}

func (n *onePoleNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	cutoff := n.cutoff.eval(g)
	alpha := onePoleAlpha(cutoff, g.sampleRate)
	n.state += alpha * (in - n.state)
	return n.state
}

func onePoleAlpha(cutoffHz, sampleRate float64) float32 {
	if cutoffHz <= 0 {
		return 0
	}
	rc := 1.0 / (twoPi * cutoffHz)
	dt := 1.0 / sampleRate
	return float32(dt / (rc + dt))
}

// filterNode implements Lpf/Hpf/Bpf/Notch via cascaded one-pole sections --
// a pragmatic single protocol satisfying spec.md §3's "all carry internal
// DSP state owned exclusively by the node", grounded on the teacher's own
// one-pole LPF/HPF/BPF selection in fm.Engine (filterType/lpfAlpha/hpfAlpha
// style computation) rather than a full biquad.
type filterNode struct {
	kind          ir.SignalNodeKind
	input, cutoff *signalSampler
	q             *signalSampler
	lp, lpNarrow  float32
}

func (n *filterNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	cutoff := n.cutoff.eval(g)
	q := n.q.eval(g)
	if q <= 0 {
		q = 0.707
	}
	alpha := onePoleAlpha(cutoff, g.sampleRate)
	n.lp += alpha * (in - n.lp)
	switch n.kind {
	case ir.KindHpf:
		return in - n.lp
	case ir.KindBpf:
		narrowAlpha := onePoleAlpha(cutoff/float64(q), g.sampleRate)
		n.lpNarrow += narrowAlpha * (n.lp - n.lpNarrow)
		return n.lp - n.lpNarrow
	case ir.KindNotch:
		narrowAlpha := onePoleAlpha(cutoff/float64(q), g.sampleRate)
		n.lpNarrow += narrowAlpha * (n.lp - n.lpNarrow)
		return in - (n.lp - n.lpNarrow)
	default:
		return n.lp
	}
}

type mathOp int

const (
	opAdd mathOp = iota
	opSub
	opMul
	opDiv
)

// mathNode implements the raw +,-,*,/ operators spec.md §3/§4.6 keeps
// unnormalized (unlike Mix).
type mathNode struct {
	op   mathOp
	a, b *signalSampler
}

func (n *mathNode) eval(g *Graph) float32 {
	a, b := n.a.eval(g), n.b.eval(g)
	switch n.op {
	case opAdd:
		return float32(a + b)
	case opSub:
		return float32(a - b)
	case opMul:
		return float32(a * b)
	case opDiv:
		if b == 0 {
			return 0
		}
		return float32(a / b)
	default:
		return 0
	}
}

// mixNode sums its inputs and normalizes by 1/N per spec.md §4.6's
// "Mix/Stack normalization" rule.
type mixNode struct {
	inputs []*signalSampler
}

func newMixNode(spec ir.NodeSpec) *mixNode {
	var inputs []*signalSampler
	for i := 0; ; i++ {
		s, ok := spec.Params[fmt.Sprintf("input%d", i)]
		if !ok {
			break
		}
		inputs = append(inputs, newSignalSampler(s))
	}
	return &mixNode{inputs: inputs}
}

func (n *mixNode) eval(g *Graph) float32 {
	if len(n.inputs) == 0 {
		return 0
	}
	var sum float64
	for _, in := range n.inputs {
		sum += in.eval(g)
	}
	return float32(sum / float64(len(n.inputs)))
}
