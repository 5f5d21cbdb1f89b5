package graph

import (
	"math"
	"testing"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/midi"
	"github.com/ekg/phonon-sub005/internal/mininotation"
	"github.com/ekg/phonon-sub005/internal/samplebank"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{SampleRate: 44100, MaxVoices: 8, Bank: samplebank.New(), Logger: zerolog.Nop()}
}

func TestConstantNodeOutputsItsValue(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(0.5)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, g.EvalSample(), 1e-6)
}

func TestOscillatorSineStartsAtZero(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindOscillator, OscKind: ir.OscSine, Params: map[string]ir.Signal{"freq": ir.ConstSignal(440)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0, g.EvalSample(), 1e-6)
}

func TestMixNormalizesByInputCount(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
			{ID: 1, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
			{ID: 2, Kind: ir.KindMix, Params: map[string]ir.Signal{
				"input0": ir.NodeSignal(0),
				"input1": ir.NodeSignal(1),
			}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 2}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, g.EvalSample(), 1e-6) // (1+1)/2, not 2 -- spec.md §3 invariant 6
}

func TestMathAddIsNotNormalized(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
			{ID: 1, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
			{ID: 2, Kind: ir.KindAdd, Params: map[string]ir.Signal{"a": ir.NodeSignal(0), "b": ir.NodeSignal(1)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 2}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 2.0, g.EvalSample(), 1e-6)
}

func TestBuildRejectsNodeCycleWithoutFeedbackMark(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindAdd, Params: map[string]ir.Signal{"a": ir.NodeSignal(1), "b": ir.ConstSignal(0)}},
			{ID: 1, Kind: ir.KindAdd, Params: map[string]ir.Signal{"a": ir.NodeSignal(0), "b": ir.ConstSignal(0)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	_, err := Build(prog, testConfig())
	assert.Error(t, err)
}

func TestFeedbackMarkedNodeBreaksCycle(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindAdd, Params: map[string]ir.Signal{"a": ir.NodeSignal(1), "b": ir.ConstSignal(1)}, IsFeedback: true},
			{ID: 1, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.NodeSignal(0)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 1}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	// first tick: node 0 reads node 1's (zero-valued) previous tick -> 0+1=1;
	// node 1 echoes node 0's *previous* (pre-tick, still zero) value.
	first := g.EvalSample()
	assert.InDelta(t, 0, first, 1e-6)
	second := g.EvalSample()
	assert.InDelta(t, 1, second, 1e-6)
}

func TestSampleNodeTriggersVoiceOnOnset(t *testing.T) {
	bank := samplebank.New()
	buf := make([]float32, 4410)
	for i := range buf {
		buf[i] = 1
	}
	bank.Load("bd", buf)

	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindSample, Sample: &ir.SampleParams{
				Pattern: mininotation.MustParse("bd"),
				Attack:  ir.ConstSignal(0.0001),
				Release: ir.ConstSignal(0.0001),
			}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	cfg := testConfig()
	cfg.Bank = bank
	g, err := Build(prog, cfg)
	require.NoError(t, err)

	var peak float32
	for i := 0; i < 2000; i++ {
		if v := g.EvalSample(); float32(math.Abs(float64(v))) > peak {
			peak = float32(math.Abs(float64(v)))
		}
	}
	assert.Greater(t, peak, float32(0.1))
}

func TestSampleNodeSilentOnUnknownName(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindSample, Sample: &ir.SampleParams{
				Pattern: mininotation.MustParse("nosuchsample"),
			}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		assert.Equal(t, float32(0), g.EvalSample())
	}
}

func TestMathDivByZeroGuardedToZero(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindDiv, Params: map[string]ir.Signal{"a": ir.ConstSignal(1), "b": ir.ConstSignal(0)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	assert.Equal(t, float32(0), g.EvalSample())
	g.DrainDegraded() // must not panic when nothing is flagged degraded
}

func TestCpsZeroFreezesCyclePosition(t *testing.T) {
	prog := ir.Program{
		Cps: 0,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	g.EvalSample()
	g.EvalSample()
	assert.Equal(t, 0.0, g.CyclePosition())
}

func TestEveryEffectNodeKindBuildsAndRuns(t *testing.T) {
	for _, kind := range []ir.SignalNodeKind{
		ir.KindReverb, ir.KindFdnReverb, ir.KindPlateReverb,
		ir.KindDelay, ir.KindTapeDelay, ir.KindMultiTap, ir.KindPingPong,
		ir.KindChorus, ir.KindDistortion, ir.KindBitCrush,
		ir.KindCompressor, ir.KindLimiter,
		ir.KindEQ5Band, ir.KindEQ3Band,
	} {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			prog := ir.Program{
				Cps: 1,
				Nodes: []ir.NodeSpec{
					{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
					{ID: 1, Kind: kind, Params: map[string]ir.Signal{"input": ir.NodeSignal(0)}},
				},
				Outputs: []ir.OutputBinding{{Slot: "out", Node: 1}},
			}
			g, err := Build(prog, testConfig())
			require.NoError(t, err)
			for i := 0; i < 16; i++ {
				g.EvalSample() // must not panic for any effect kind
			}
		})
	}
}

// TestEffectNodeParamsAreLive confirms that feedback/wet effect parameters
// are re-read from their signal every tick, not only at graph-build time:
// a delay's wet mix at wet=0 must pass the dry input straight through, and
// at wet=1 must output only the (initially silent) delay line.
func TestEffectNodeParamsAreLive(t *testing.T) {
	build := func(wet float64) *Graph {
		prog := ir.Program{
			Cps: 1,
			Nodes: []ir.NodeSpec{
				{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(1)}},
				{ID: 1, Kind: ir.KindDelay, Params: map[string]ir.Signal{
					"input": ir.NodeSignal(0),
					"wet":   ir.NodeSignal(2), // a node signal is only readable per tick, never at build time
				}},
				{ID: 2, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(wet)}},
			},
			Outputs: []ir.OutputBinding{{Slot: "out", Node: 1}},
		}
		g, err := Build(prog, testConfig())
		require.NoError(t, err)
		return g
	}

	dry := build(0)
	assert.InDelta(t, 1.0, dry.EvalSample(), 1e-6)

	wet := build(1)
	assert.InDelta(t, 0.0, wet.EvalSample(), 1e-6)
}

func TestMidiInputNodeStartsSilentAndReflectsBoundQueue(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindMidiInput},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)
	assert.Equal(t, float32(0), g.EvalSample(), "an unbound MidiInput node should stay silent")

	q := midi.NewSharedEventQueue()
	g.BindMidiQueue(q)
	q.Push(midi.NoteEvent{Channel: 0, Note: 69, Velocity: 100, On: true}) // A4 = 440Hz
	assert.InDelta(t, 440, g.EvalSample(), 0.01)
}

func TestSampleHoldNoiseStaysWithinRangeAndHolds(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindNoise, NoiseKind: ir.NoiseSampleHold, Params: map[string]ir.Signal{"rate": ir.ConstSignal(1000)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)

	var last float32
	held := 0
	for i := 0; i < 200; i++ {
		v := g.EvalSample()
		assert.GreaterOrEqual(t, v, float32(-1))
		assert.LessOrEqual(t, v, float32(1))
		if v == last {
			held++
		}
		last = v
	}
	assert.Greater(t, held, 0, "a sample-and-hold source should repeat its value between updates")
}
