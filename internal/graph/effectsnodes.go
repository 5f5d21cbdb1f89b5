package graph

import (
	"github.com/ekg/phonon-sub005/internal/effects"
	"github.com/ekg/phonon-sub005/internal/ir"
)

// The teacher's internal/effects package is stereo (Process(l, r)); the
// graph is mono-internal per spec.md §1. Every node below feeds the same
// value into both channels and returns the left output, except
// pingPongNode (see its eval) -- since every other effect here evolves both
// channels identically given identical inputs,
// that is exactly the signal a true mono implementation would produce, and
// it lets the teacher's effect DSP be reused unmodified rather than
// forked into a parallel mono copy.

// fixedParam reads a construction-time-only numeric parameter directly off
// the IR (no signalSampler, no per-tick re-read): used for the handful of
// effect parameters that size a delay line or comb/allpass buffer (room,
// time_ms) and so cannot be changed live without reallocating on the audio
// thread, which spec.md §5 forbids. Only a constant signal is read; any
// other signal kind (pattern or node) yields def.
func fixedParam(spec ir.NodeSpec, name string, def float64) float64 {
	if s, ok := spec.Params[name]; ok && s.Kind == ir.SignalConstantKind {
		return s.Const
	}
	return def
}

// liveParam builds a signalSampler re-read every tick, for every effect
// parameter that is a bare multiply or coefficient cheap enough to update
// per sample (feedback, wet, decay, pre-gain, band gains).
func liveParam(spec ir.NodeSpec, name string, def float64) *signalSampler {
	if s, ok := spec.Params[name]; ok {
		return newSignalSampler(s)
	}
	return newSignalSampler(ir.ConstSignal(def))
}

// reverbNode's "room" sizes the comb/allpass buffers at construction and has
// no live field; feedback/wet are bare multiplies re-read every tick via
// Reverb.SetFeedback/SetWet.
type reverbNode struct {
	r             *effects.Reverb
	input, fb, wet *signalSampler
}

func newReverbNode(sampleRate float64, spec ir.NodeSpec) *reverbNode {
	room := fixedParam(spec, "room", 0.5)
	fb := fixedParam(spec, "feedback", 0.5)
	wet := fixedParam(spec, "wet", 0.3)
	return &reverbNode{
		input: liveParam(spec, "input", 0),
		fb:    liveParam(spec, "feedback", fb),
		wet:   liveParam(spec, "wet", wet),
		r:     effects.NewReverb(int(sampleRate), float32(room), float32(fb), float32(wet)),
	}
}

func (n *reverbNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.r.SetFeedback(float32(n.fb.eval(g)))
	n.r.SetWet(float32(n.wet.eval(g)))
	l, _ := n.r.Process(in, in)
	return l
}

// fdnReverbNode's "room" sizes the FDN's delay lines at construction; decay
// (the per-line feedback gain) and wet are live.
type fdnReverbNode struct {
	r                *effects.FdnReverb
	input, decay, wet *signalSampler
}

func newFdnReverbNode(sampleRate float64, spec ir.NodeSpec) *fdnReverbNode {
	room := fixedParam(spec, "room", 0.6)
	decay := fixedParam(spec, "decay", 0.7)
	wet := fixedParam(spec, "wet", 0.35)
	return &fdnReverbNode{
		input: liveParam(spec, "input", 0),
		decay: liveParam(spec, "decay", decay),
		wet:   liveParam(spec, "wet", wet),
		r:     effects.NewFdnReverb(int(sampleRate), float32(room), float32(decay), float32(wet)),
	}
}

func (n *fdnReverbNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.r.SetDecay(float32(n.decay.eval(g)))
	n.r.SetWet(float32(n.wet.eval(g)))
	l, _ := n.r.Process(in, in)
	return l
}

// plateReverbNode's "room" sizes the diffuser/comb buffers at construction;
// feedback/wet are live.
type plateReverbNode struct {
	r             *effects.PlateReverb
	input, fb, wet *signalSampler
}

func newPlateReverbNode(sampleRate float64, spec ir.NodeSpec) *plateReverbNode {
	room := fixedParam(spec, "room", 0.5)
	fb := fixedParam(spec, "feedback", 0.5)
	wet := fixedParam(spec, "wet", 0.3)
	return &plateReverbNode{
		input: liveParam(spec, "input", 0),
		fb:    liveParam(spec, "feedback", fb),
		wet:   liveParam(spec, "wet", wet),
		r:     effects.NewPlateReverb(int(sampleRate), float32(room), float32(fb), float32(wet)),
	}
}

func (n *plateReverbNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.r.SetFeedback(float32(n.fb.eval(g)))
	n.r.SetWet(float32(n.wet.eval(g)))
	l, _ := n.r.Process(in, in)
	return l
}

// multiTapNode's tap times/gains are fixed at construction (they size the
// ring buffer); feedback/wet are live.
type multiTapNode struct {
	m              *effects.MultiTap
	input, fb, wet *signalSampler
}

func newMultiTapNode(sampleRate float64, spec ir.NodeSpec) *multiTapNode {
	fb := fixedParam(spec, "feedback", 0.3)
	wet := fixedParam(spec, "wet", 0.4)
	tapMs := []float64{125, 250, 375, 500}
	tapGains := []float32{0.8, 0.6, 0.45, 0.3}
	return &multiTapNode{
		input: liveParam(spec, "input", 0),
		fb:    liveParam(spec, "feedback", fb),
		wet:   liveParam(spec, "wet", wet),
		m:     effects.NewMultiTap(int(sampleRate), tapMs, tapGains, float32(fb), float32(wet)),
	}
}

func (n *multiTapNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.m.SetFeedback(float32(n.fb.eval(g)))
	n.m.SetWet(float32(n.wet.eval(g)))
	l, _ := n.m.Process(in, in)
	return l
}

// pingPongNode's "time_ms" sizes the ring buffers at construction; feedback/
// wet are live.
type pingPongNode struct {
	p             *effects.PingPong
	input, fb, wet *signalSampler
}

func newPingPongNode(sampleRate float64, spec ir.NodeSpec) *pingPongNode {
	timeMs := fixedParam(spec, "time_ms", 300)
	fb := fixedParam(spec, "feedback", 0.45)
	wet := fixedParam(spec, "wet", 0.4)
	return &pingPongNode{
		input: liveParam(spec, "input", 0),
		fb:    liveParam(spec, "feedback", fb),
		wet:   liveParam(spec, "wet", wet),
		p:     effects.NewPingPong(int(sampleRate), timeMs, float32(fb), float32(wet)),
	}
}

// PingPong is the one effect in this file whose two channels genuinely
// diverge given identical L/R input (that's the entire point of the
// bounce) -- so unlike its siblings here, returning bare left would
// silently discard every other repeat. Averaging both channels back into
// one is the mono-faithful reduction: every bounce still reaches the single
// output, at half its channel level and without the stereo placement.
func (n *pingPongNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.p.SetFeedback(float32(n.fb.eval(g)))
	n.p.SetWet(float32(n.wet.eval(g)))
	l, r := n.p.Process(in, in)
	return (l + r) * 0.5
}

// delayNode's "time_ms" sizes the ring buffers at construction; feedback/
// wet are live.
type delayNode struct {
	d             *effects.Delay
	input, fb, wet *signalSampler
}

func newDelayNode(sampleRate float64, spec ir.NodeSpec) *delayNode {
	timeMs := fixedParam(spec, "time_ms", 250)
	fb := fixedParam(spec, "feedback", 0.4)
	wet := fixedParam(spec, "wet", 0.35)
	return &delayNode{
		input: liveParam(spec, "input", 0),
		fb:    liveParam(spec, "feedback", fb),
		wet:   liveParam(spec, "wet", wet),
		d:     effects.NewDelay(int(sampleRate), timeMs, float32(fb), 0, float32(wet)),
	}
}

func (n *delayNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.d.SetFeedback(float32(n.fb.eval(g)))
	n.d.SetWet(float32(n.wet.eval(g)))
	l, _ := n.d.Process(in, in)
	return l
}

type chorusNode struct {
	c     *effects.Chorus
	input *signalSampler
}

func newChorusNode(sampleRate float64, spec ir.NodeSpec) *chorusNode {
	return &chorusNode{
		input: liveParam(spec, "input", 0),
		c:     effects.NewChorus(int(sampleRate), 15, 0.3, 5, 0.5, 0.5),
	}
}

func (n *chorusNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	l, _ := n.c.Process(in, in)
	return l
}

// distortionNode's pre-gain is a bare multiply, the cheapest parameter in
// this file to re-read live every sample.
type distortionNode struct {
	d              *effects.Distortion
	input, preGain *signalSampler
}

func newDistortionNode(sampleRate float64, spec ir.NodeSpec) *distortionNode {
	preGain := fixedParam(spec, "pre_gain", 2)
	return &distortionNode{
		input:   liveParam(spec, "input", 0),
		preGain: liveParam(spec, "pre_gain", preGain),
		d:       effects.NewDistortion(int(sampleRate), float32(preGain), 0.8, 8000),
	}
}

func (n *distortionNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	n.d.SetPreGain(float32(n.preGain.eval(g)))
	l, _ := n.d.Process(in, in)
	return l
}

type compressorNode struct {
	c     *effects.Compressor
	input *signalSampler
}

func newCompressorNode(sampleRate float64, spec ir.NodeSpec) *compressorNode {
	return &compressorNode{
		input: liveParam(spec, "input", 0),
		c:     effects.NewCompressor(int(sampleRate), -20, 4, 10, 100, 0),
	}
}

func (n *compressorNode) eval(g *Graph) float32 {
	in := float32(n.input.eval(g))
	l, _ := n.c.Process(in, in)
	return l
}

// eq5BandNode adapts the teacher's lock-free-gain EQ5Band into the spec's
// supplemented "~master" post-chain seam (SPEC_FULL.md §C): the node reads
// its gains from plain signalSamplers every tick and writes them into the
// EQ through EQ5Band.SetGain, which still stores each band gain in its own
// atomic.Uint32; see DESIGN.md.
type eq5BandNode struct {
	eq    *effects.EQ5Band
	input *signalSampler
	gains [5]*signalSampler
}

func newEQ5BandNode(sampleRate float64, spec ir.NodeSpec) *eq5BandNode {
	n := &eq5BandNode{eq: effects.NewEQ5Band(int(sampleRate))}
	n.input = liveParam(spec, "input", 0)
	for i := 0; i < 5; i++ {
		key := "band" + string(rune('0'+i))
		n.gains[i] = liveParam(spec, key, 1)
	}
	return n
}

func (n *eq5BandNode) eval(g *Graph) float32 {
	for i, gs := range n.gains {
		n.eq.SetGain(i, float32(gs.eval(g)))
	}
	in := float32(n.input.eval(g))
	l, _ := n.eq.Process(in, in)
	return l
}

// eq3BandNode is EQ5Band's lighter-weight sibling -- three bands instead of
// five, the other half of the "EQ" row spec.md §3 lists under Effects.
// Previously kept only as verbatim ported-teacher code with no
// SignalNodeKind and no caller; wired here the same way eq5BandNode wires
// EQ5Band.
type eq3BandNode struct {
	eq    *effects.EQ3Band
	input *signalSampler
	gains [3]*signalSampler
}

func newEQ3BandNode(sampleRate float64, spec ir.NodeSpec) *eq3BandNode {
	lowFreq := fixedParam(spec, "low_freq", 300)
	highFreq := fixedParam(spec, "high_freq", 3000)
	n := &eq3BandNode{eq: effects.NewEQ3Band(int(sampleRate), 1, 1, 1, float32(lowFreq), float32(highFreq))}
	n.input = liveParam(spec, "input", 0)
	n.gains[0] = liveParam(spec, "low", 1)
	n.gains[1] = liveParam(spec, "mid", 1)
	n.gains[2] = liveParam(spec, "high", 1)
	return n
}

func (n *eq3BandNode) eval(g *Graph) float32 {
	for i, gs := range n.gains {
		n.eq.SetGain(i, float32(gs.eval(g)))
	}
	in := float32(n.input.eval(g))
	l, _ := n.eq.Process(in, in)
	return l
}
