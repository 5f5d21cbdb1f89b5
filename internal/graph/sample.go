package graph

import (
	"strconv"
	"strings"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/pattern"
	"github.com/ekg/phonon-sub005/internal/voice"
)

// sampleNode is the pattern<->audio bridge: it queries its mini-notation
// pattern once per cycle, scans for onsets landing in this tick's narrow
// window, and triggers voices for each -- spec.md §4.6 step 3 verbatim.
// Grounded on the teacher's internal/sequencer.Sequencer.Process loop, which
// scans a flat per-track event list against a running tick counter; this
// generalizes that scan to a pattern query plus a narrow window test
// (deltaCyclesFor, below) tolerant of floating cycle-position jitter.
//
// Triggering and audio rendering are split deliberately: Graph.tick calls
// scanTriggers on every Sample node before a single shared
// voice.Manager.ProcessBuffer(1, ...) call renders all voices for the tick
// exactly once (see Graph.voiceFrame) -- eval then just reads this node's
// bucket from that shared result. A naive per-node ProcessBuffer(1, ...)
// call from inside eval would re-advance every other Sample node's voices
// once per Sample node in the graph, corrupting playback rate whenever a
// program has more than one.
type sampleNode struct {
	id     ir.NodeID
	hold   *patternHold[string]
	gain, pan, speed, cut, attack, release, begin, end, legato *signalSampler
}

func newSampleNode(g *Graph, spec ir.NodeSpec) *sampleNode {
	sp := spec.Sample
	if sp == nil {
		sp = &ir.SampleParams{}
	}
	// A Signal left at its Go zero value (SignalConstantKind, Const 0) is
	// indistinguishable here from "explicitly set to the constant 0"; a zero
	// constant is therefore replaced by the node's own default below
	// wherever that default is non-zero (gain, speed, attack, release, end);
	// pan, cut, begin and legato default to 0 anyway.
	sig := func(s ir.Signal, def float64) *signalSampler {
		if s.Kind == ir.SignalConstantKind && s.Const == 0 && def != 0 {
			return newSignalSampler(ir.ConstSignal(def))
		}
		return newSignalSampler(s)
	}
	return &sampleNode{
		id:      spec.ID,
		hold:    newPatternHold(sp.Pattern),
		gain:    sig(sp.Gain, 1),
		pan:     sig(sp.Pan, 0),
		speed:   sig(sp.Speed, 1),
		cut:     sig(sp.Cut, 0),
		attack:  sig(sp.Attack, 0.003),
		release: sig(sp.Release, 0.05),
		begin:   sig(sp.Begin, 0),
		end:     sig(sp.End, 1),
		legato:  sig(sp.Legato, 0),
	}
}

// deltaCyclesFor returns one audio sample's width in cycles, the window
// spec.md §4.6 step 3c scans for newly-triggered onsets.
func deltaCyclesFor(g *Graph) float64 {
	return g.tempo.AdvancePerSample(g.sampleRate)
}

// eval reads this node's already-rendered bucket for the current tick; see
// the type doc comment for why rendering itself does not happen here.
func (n *sampleNode) eval(g *Graph) float32 {
	if int(n.id) >= len(g.voiceFrame) || len(g.voiceFrame[n.id]) == 0 {
		return 0
	}
	return g.voiceFrame[n.id][0]
}

// scanTriggers finds every onset landing in this tick's window (the one
// sample's worth of cycle time just advanced over) and triggers a voice for
// each, per spec.md §4.6 steps 3a-3d.
func (n *sampleNode) scanTriggers(g *Graph) {
	delta := deltaCyclesFor(g)
	onsets := n.hold.newOnsets(g.cyclePos, delta)
	for _, h := range onsets {
		n.trigger(g, h)
	}
}

func (n *sampleNode) trigger(g *Graph, h pattern.Hap[string]) {
	name, index := splitSampleName(h.Value)
	forward, ok := g.bank.GetVariant(name, index, false)
	if !ok {
		return // unknown sample name: silently drop the event per spec.md §7
	}

	gain := contextFloat(h.Context, "gain", n.gain.eval(g))
	pan := contextFloat(h.Context, "pan", n.pan.eval(g))
	speed := contextFloat(h.Context, "speed", n.speed.eval(g))
	cut := contextFloat(h.Context, "cut", n.cut.eval(g))
	attack := contextFloat(h.Context, "attack", n.attack.eval(g))
	release := contextFloat(h.Context, "release", n.release.eval(g))
	beginFrac := contextFloat(h.Context, "begin", n.begin.eval(g))
	endFrac := contextFloat(h.Context, "end", n.end.eval(g))
	legatoFrac := contextFloat(h.Context, "legato", n.legato.eval(g))
	if speed == 0 {
		return // speed 0 plays nothing for this event
	}

	buf := forward
	effSpeed := speed
	if speed < 0 {
		if rev, ok := g.bank.GetVariant(name, index, true); ok {
			buf = rev
		}
		effSpeed = -speed
	}

	beginFrame := int(float64(len(buf)) * clamp01(beginFrac))
	endFrame := int(float64(len(buf)) * clamp01(endFrac))

	stepCycles := 0.0
	if h.Whole != nil {
		stepCycles = h.Whole.Length().Float()
	}
	legatoDuration := 0.0
	if legatoFrac > 0 && stepCycles > 0 && g.tempo.CPS > 0 {
		legatoDuration = (stepCycles / g.tempo.CPS) * legatoFrac
	}

	g.voices.Trigger(int(n.id), buf, g.sampleRate, voice.TriggerParams{
		Gain:           gain,
		Pan:            pan,
		Speed:          effSpeed,
		Attack:         attack,
		Release:        release,
		CutGroup:       uint32(cut),
		BeginFrame:     beginFrame,
		EndFrame:       endFrame,
		LegatoDuration: legatoDuration,
	})
}

func splitSampleName(raw string) (name string, index int) {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		name = raw[:i]
		if v, err := strconv.Atoi(raw[i+1:]); err == nil {
			index = v
		}
		return name, index
	}
	return raw, 0
}

func contextFloat(ctx map[string]string, key string, def float64) float64 {
	raw, ok := ctx[key]
	if !ok {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
