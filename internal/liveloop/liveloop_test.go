package liveloop

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ekg/phonon-sub005/internal/graph"
	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constGraph(t *testing.T, v float64) *graph.Graph {
	t.Helper()
	prog := ir.Program{
		Cps: 1,
		Nodes: []ir.NodeSpec{
			{ID: 0, Kind: ir.KindConstant, Params: map[string]ir.Signal{"value": ir.ConstSignal(v)}},
		},
		Outputs: []ir.OutputBinding{{Slot: "out", Node: 0}},
	}
	g, err := graph.Build(prog, graph.Config{SampleRate: 44100})
	require.NoError(t, err)
	return g
}

func TestGraphCellSwapReturnsPrevious(t *testing.T) {
	a := constGraph(t, 0.1)
	b := constGraph(t, 0.2)
	cell := NewGraphCell(a)
	prev := cell.Swap(b)
	assert.Same(t, a, prev)
	assert.Same(t, b, cell.Load())
}

func TestSourceProcessDuplicatesMonoToStereo(t *testing.T) {
	cell := NewGraphCell(constGraph(t, 0.25))
	src := NewSource(cell)
	dst := make([]float32, 4)
	src.Process(dst)
	assert.InDelta(t, 0.25, dst[0], 1e-6)
	assert.InDelta(t, 0.25, dst[1], 1e-6)
	assert.InDelta(t, 0.25, dst[2], 1e-6)
	assert.InDelta(t, 0.25, dst[3], 1e-6)
}

func TestSourceProcessSilentWithNoGraph(t *testing.T) {
	cell := NewGraphCell(nil)
	src := NewSource(cell)
	dst := []float32{1, 1}
	src.Process(dst)
	assert.Equal(t, []float32{0, 0}, dst)
}

func TestWatcherRecompilesOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "source.phon")
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0o644))

	var compileCount atomic.Int32
	compile := func() (*graph.Graph, error) {
		compileCount.Add(1)
		return constGraph(t, float64(compileCount.Load())), nil
	}

	cell := NewGraphCell(nil)
	w, err := NewWatcher(path, cell, compile, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()
	go w.Run()

	require.Eventually(t, func() bool { return compileCount.Load() >= 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0o644))
	require.Eventually(t, func() bool { return compileCount.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}
