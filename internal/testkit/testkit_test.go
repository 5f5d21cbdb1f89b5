package testkit

import (
	"math"
	"testing"

	"github.com/ekg/phonon-sub005/internal/graph"
	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRMSOfConstantBuffer(t *testing.T) {
	buf := make([]float32, 100)
	for i := range buf {
		buf[i] = 0.5
	}
	assert.InDelta(t, 0.5, RMS(buf), 1e-6)
}

func TestPeakFindsLargestMagnitude(t *testing.T) {
	buf := []float32{0.1, -0.9, 0.3}
	assert.InDelta(t, 0.9, Peak(buf), 1e-6)
}

func TestOnsetsDetectsRisingEnergy(t *testing.T) {
	win := 100
	buf := make([]float32, win*4)
	for i := win * 2; i < win*3; i++ {
		buf[i] = 1
	}
	onsets := Onsets(buf, win, 3)
	assert.Contains(t, onsets, win*2)
}

// TestSine440FFTPeakAndRMS is the literal end-to-end scenario from §8's
// testable-properties list: a 440Hz sine at cps=1 over one cycle should
// show its dominant FFT peak in [435,445]Hz and RMS near 1/sqrt(2).
func TestSine440FFTPeakAndRMS(t *testing.T) {
	const sampleRate = 44100
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindOscillator, OscKind: ir.OscSine, Params: map[string]ir.Signal{"freq": ir.ConstSignal(440)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := graph.Build(prog, graph.Config{SampleRate: sampleRate})
	require.NoError(t, err)

	frames := sampleRate // one cycle at cps=1
	buf := make([]float32, frames)
	for i := range buf {
		buf[i] = g.EvalSample()
	}

	rms := RMS(buf)
	assert.InDelta(t, 0.70, rms, 0.05)

	windowSize := 4096
	spectrum := Spectrum(buf, 0, windowSize)
	peakHz := PeakFrequency(spectrum, sampleRate, windowSize)
	assert.True(t, peakHz >= 435 && peakHz <= 445, "peak frequency %.1fHz outside [435,445]", peakHz)
}

func TestSpectralCentroidTracksLowpassSweep(t *testing.T) {
	const sampleRate = 44100
	windowSize := 2048

	low := make([]float32, windowSize)
	high := make([]float32, windowSize)
	for i := range low {
		t := float64(i) / sampleRate
		low[i] = float32(math.Sin(2 * math.Pi * 200 * t))
		high[i] = float32(math.Sin(2 * math.Pi * 4000 * t))
	}

	lowCentroid := SpectralCentroid(Spectrum(low, 0, windowSize), sampleRate, windowSize)
	highCentroid := SpectralCentroid(Spectrum(high, 0, windowSize), sampleRate, windowSize)
	assert.Less(t, lowCentroid, highCentroid)
}
