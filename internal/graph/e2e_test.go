package graph

import (
	"testing"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/mininotation"
	"github.com/ekg/phonon-sub005/internal/render"
	"github.com/ekg/phonon-sub005/internal/samplebank"
	"github.com/ekg/phonon-sub005/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These are the end-to-end scenarios spec.md §8 names: a rendered graph's
// audio checked by testkit's FFT/RMS/onset helpers rather than by eyeballing
// raw samples, exactly the way a Level-2/Level-3 acceptance test would.

func TestEndToEnd440HzOscillatorFFTPeakMatchesFrequency(t *testing.T) {
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindOscillator, OscKind: ir.OscSine, Params: map[string]ir.Signal{"freq": ir.ConstSignal(440)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := Build(prog, testConfig())
	require.NoError(t, err)

	const sampleRate = 44100.0
	samples, metrics := render.RenderCycles(g, sampleRate, 1, 1)
	require.NotEmpty(t, samples)

	windowSize := 4096
	require.GreaterOrEqual(t, len(samples), windowSize)
	spectrum := testkit.Spectrum(samples, 0, windowSize)
	peakFreq := testkit.PeakFrequency(spectrum, sampleRate, windowSize)
	assert.InDelta(t, 440, peakFreq, sampleRate/float64(windowSize)*2)
	assert.Greater(t, metrics.RMS, 0.0)
}

func TestEndToEndTwoSamplesHaveIndependentRMS(t *testing.T) {
	bank := samplebank.New()
	loud := make([]float32, 4410)
	quiet := make([]float32, 4410)
	for i := range loud {
		loud[i] = 1
		quiet[i] = 0.1
	}
	bank.Load("bd", loud)
	bank.Load("sn", quiet)

	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindSample, Sample: &ir.SampleParams{
				Pattern: mininotation.MustParse("bd sn"),
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

	samples, _ := render.RenderCycles(g, 44100, 1, 1)
	require.NotEmpty(t, samples)

	half := len(samples) / 2
	firstHalfRMS := testkit.RMS(samples[:half])
	secondHalfRMS := testkit.RMS(samples[half:])
	assert.Greater(t, firstHalfRMS, secondHalfRMS, "the bd half should read louder than the sn half")

	onsets := testkit.Onsets(samples, 512, 1.5)
	assert.GreaterOrEqual(t, len(onsets), 1, "expected at least one detected onset across the two triggers")
}
