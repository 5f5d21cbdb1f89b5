// Package graph implements the UnifiedGraph: the DAG of SignalNodes that
// is the central executor of spec.md §4.6 -- per-sample evaluation,
// pattern-to-voice bridging for Sample nodes, Mix/Stack normalization,
// effect chaining, and NaN/Inf degraded-node handling. Grounded on the
// teacher's internal/sequencer.Sequencer: a fixed-size array addressed by
// index, walked once per tick, feeding an engine -- generalized here from
// "one fixed engine, N tracks" to "N heterogeneous SignalNode kinds,
// topologically ordered".
package graph

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/samplebank"
	"github.com/ekg/phonon-sub005/internal/timemodel"
	"github.com/ekg/phonon-sub005/internal/voice"
	"github.com/rs/zerolog"
)

// node is the per-NodeID runtime behind one ir.NodeSpec. eval computes this
// tick's output sample given the graph's already-computed values for its
// dependencies (spec.md §4.6 invariant 2: at most once per tick, memoized).
type node interface {
	eval(g *Graph) float32
}

// Graph is the built, runnable form of an ir.Program. Exactly one LiveLoop
// audio-callback goroutine is expected to drive EvalSample/RenderBlock at a
// time; the file-watcher thread never touches a live Graph; it builds a new
// one and the loop swaps a pointer to it (internal/liveloop.GraphCell).
type Graph struct {
	sampleRate float64
	tempo      timemodel.Tempo
	cyclePos   float64 // cycles elapsed; advances by tempo.AdvancePerSample(sampleRate) per sample

	nodes      []node
	specs      []ir.NodeSpec
	order      []ir.NodeID // topological evaluation order
	isFeedback []bool

	curr     []float32 // this tick's computed output per node
	prev     []float32 // previous tick's output, read by is_feedback edges
	computed []bool

	outputs []ir.OutputBinding
	master  *ir.NodeID

	voices      *voice.Manager
	bank        *samplebank.Bank
	sampleNodes []*sampleNode
	midiNodes   []*midiInputNode
	voiceFrame  [][]float32 // this tick's rendered output per source node, filled once by tick()

	degraded     []atomic.Bool
	degradedLast []int64 // unix seconds of last log per node, for once-per-second throttling
	logger       zerolog.Logger
}

// Config bundles the knobs a Graph needs beyond the IR itself.
type Config struct {
	SampleRate float64
	MaxVoices  int
	Bank       *samplebank.Bank
	Logger     zerolog.Logger
}

// Build topologically sorts prog's nodes, allocates per-node runtime state,
// and returns a ready-to-tick Graph. Per spec.md §6.1, a cycle not crossing
// an IsFeedback-marked node is a fatal (build-time) error.
func Build(prog ir.Program, cfg Config) (*Graph, error) {
	if prog.Cps < 0 {
		return nil, fmt.Errorf("graph: negative cps %v is invalid", prog.Cps)
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	bank := cfg.Bank
	if bank == nil {
		bank = samplebank.New()
	}

	byID := make(map[ir.NodeID]ir.NodeSpec, len(prog.Nodes))
	for _, n := range prog.Nodes {
		byID[n.ID] = n
	}

	order, err := topoSort(prog.Nodes, byID)
	if err != nil {
		return nil, err
	}

	maxID := 0
	for _, n := range prog.Nodes {
		if int(n.ID) >= maxID {
			maxID = int(n.ID) + 1
		}
	}

	g := &Graph{
		sampleRate:   sampleRate,
		tempo:        timemodel.Tempo{CPS: prog.Cps},
		nodes:        make([]node, maxID),
		specs:        prog.Nodes,
		order:        order,
		isFeedback:   make([]bool, maxID),
		curr:         make([]float32, maxID),
		prev:         make([]float32, maxID),
		computed:     make([]bool, maxID),
		outputs:      prog.Outputs,
		master:       prog.Master,
		voices:       voice.NewManager(cfg.MaxVoices),
		bank:         bank,
		degraded:     make([]atomic.Bool, maxID),
		degradedLast: make([]int64, maxID),
		logger:       cfg.Logger,
	}

	for _, spec := range prog.Nodes {
		rt, err := buildNode(g, spec)
		if err != nil {
			return nil, fmt.Errorf("graph: node %d (%s): %w", spec.ID, spec.Kind, err)
		}
		g.nodes[spec.ID] = rt
		g.isFeedback[spec.ID] = spec.IsFeedback
		if sn, ok := rt.(*sampleNode); ok {
			g.sampleNodes = append(g.sampleNodes, sn)
		}
		if mn, ok := rt.(*midiInputNode); ok {
			g.midiNodes = append(g.midiNodes, mn)
		}
	}

	return g, nil
}

// topoSort orders nodes so every non-feedback dependency precedes its
// dependent, per spec.md §6.1 (2): edges into an IsFeedback node are
// excluded from the cycle check, since they intentionally read the
// previous tick rather than the current one.
func topoSort(specs []ir.NodeSpec, byID map[ir.NodeID]ir.NodeSpec) ([]ir.NodeID, error) {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[ir.NodeID]int, len(specs))
	var order []ir.NodeID

	var visit func(id ir.NodeID) error
	visit = func(id ir.NodeID) error {
		switch color[id] {
		case black:
			return nil
		case grey:
			return fmt.Errorf("graph: cycle detected at node %d (mark feedback edges with IsFeedback)", id)
		}
		color[id] = grey
		spec, ok := byID[id]
		if !ok {
			return fmt.Errorf("graph: reference to undefined node %d", id)
		}
		for _, dep := range dependencies(spec) {
			if spec.IsFeedback {
				continue // this node reads its dependency's *previous* tick value; no ordering constraint
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[id] = black
		order = append(order, id)
		return nil
	}

	for _, spec := range specs {
		if err := visit(spec.ID); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func dependencies(spec ir.NodeSpec) []ir.NodeID {
	var out []ir.NodeID
	add := func(s ir.Signal) {
		if s.Kind == ir.SignalNodeRefKind {
			out = append(out, s.Node)
		}
	}
	for _, s := range spec.Params {
		add(s)
	}
	if spec.Sample != nil {
		add(spec.Sample.Gain)
		add(spec.Sample.Pan)
		add(spec.Sample.Speed)
		add(spec.Sample.Cut)
		add(spec.Sample.Attack)
		add(spec.Sample.Release)
		add(spec.Sample.Begin)
		add(spec.Sample.End)
		add(spec.Sample.Legato)
	}
	return out
}

// signalSampler resolves one ir.Signal repeatedly across ticks. Built once
// per node parameter at graph-build time so a Pattern-valued signal gets
// exactly one patternHold (constant and node-ref signals need no state).
type signalSampler struct {
	sig  ir.Signal
	hold *patternHold[float64]
}

func newSignalSampler(s ir.Signal) *signalSampler {
	ss := &signalSampler{sig: s}
	if s.Kind == ir.SignalPatternKind {
		ss.hold = newPatternHold(s.Pattern)
	}
	return ss
}

// eval resolves the wrapped signal to its current float64 value: a bare
// constant, another node's already-computed output for this tick, or a
// pattern sampled (zero-order-hold) at the graph's current cycle position.
func (ss *signalSampler) eval(g *Graph) float64 {
	switch ss.sig.Kind {
	case ir.SignalConstantKind:
		return ss.sig.Const
	case ir.SignalNodeRefKind:
		return float64(g.valueOf(ss.sig.Node))
	case ir.SignalPatternKind:
		v, _ := ss.hold.sampleAt(g.cyclePos)
		return v
	default:
		return 0
	}
}

// valueOf returns node id's already-evaluated value for this tick (or its
// previous tick's value, for a feedback-marked node).
func (g *Graph) valueOf(id ir.NodeID) float32 {
	if int(id) < 0 || int(id) >= len(g.curr) {
		return 0
	}
	if g.isFeedback[id] {
		return g.prev[id]
	}
	return g.curr[id]
}

// evalNode computes node id's output for the current tick if not already
// memoized, clamping NaN/Inf to 0 and marking the node degraded per
// spec.md §7's audio-time-recoverable error path.
func (g *Graph) evalNode(id ir.NodeID) float32 {
	if g.computed[id] {
		return g.curr[id]
	}
	rt := g.nodes[id]
	if rt == nil {
		g.computed[id] = true
		return 0
	}
	out := rt.eval(g)
	if isBadSample(out) {
		g.degraded[id].Store(true)
		out = 0
	}
	g.curr[id] = out
	g.computed[id] = true
	return out
}

func isBadSample(f float32) bool {
	return f != f || f > 3.4e38 || f < -3.4e38 // NaN check (f!=f) plus a practical +-Inf/overflow guard
}

// tick advances cycle position, lets every Sample node scan for onsets and
// trigger voices, renders all voices exactly once for this tick, then
// evaluates every node in topological order before snapshotting curr into
// prev for the next tick's feedback reads.
func (g *Graph) tick() {
	g.cyclePos += g.tempo.AdvancePerSample(g.sampleRate)
	for _, sn := range g.sampleNodes {
		sn.scanTriggers(g)
	}
	g.voiceFrame = g.voices.ProcessBuffer(1, len(g.curr), g.sampleRate)
	for i := range g.computed {
		g.computed[i] = false
	}
	for _, id := range g.order {
		g.evalNode(id)
	}
	copy(g.prev, g.curr)
}

// outputSample averages every auto-routed output bus (a single bus passes
// through unscaled) to produce the final mono sample for this tick; when a
// master node is wired, its value is returned instead.
func (g *Graph) outputSample() float32 {
	var sum float32
	n := 0
	for _, ob := range g.outputs {
		sum += g.valueOf(ob.Node)
		n++
	}
	if n > 1 {
		sum /= float32(n)
	}
	if g.master != nil {
		sum = g.valueOf(*g.master)
	}
	return sum
}

// EvalSample advances the graph by exactly one sample and returns the
// final mono output -- the primitive the audio callback and the offline
// renderer both build on.
func (g *Graph) EvalSample() float32 {
	g.tick()
	return g.outputSample()
}

// DrainDegraded logs, via zerolog, every node that has gone NaN/Inf since
// the last drain, throttled to once per node per second; it returns nothing.
// This is meant to be called by a goroutine OFF the audio thread, per
// SPEC_FULL.md's ambient logging design -- never on the hot path itself.
func (g *Graph) DrainDegraded() {
	now := time.Now().Unix()
	for id := range g.degraded {
		if !g.degraded[id].Load() {
			continue
		}
		if now-g.degradedLast[id] < 1 {
			continue
		}
		g.degradedLast[id] = now
		g.degraded[id].Store(false)
		g.logger.Warn().Int("node_id", id).Msg("node output clamped: NaN or Inf detected")
	}
}

// SampleRate returns the configured audio sample rate.
func (g *Graph) SampleRate() float64 { return g.sampleRate }

// CyclePosition returns the current cycle count elapsed (monotonic while
// cps > 0, frozen while cps == 0), per spec.md §8 invariant 7.
func (g *Graph) CyclePosition() float64 { return g.cyclePos }

// Cps returns the graph's configured cycles-per-second tempo, for callers
// (render manifests, the live-loop status line) that need to report what
// the running graph actually ticks at.
func (g *Graph) Cps() float64 { return g.tempo.CPS }

// Voices exposes the voice manager for tests and diagnostics.
func (g *Graph) Voices() *voice.Manager { return g.voices }
