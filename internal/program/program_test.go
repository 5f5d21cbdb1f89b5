package program

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "cps": 1.0,
  "nodes": [
    {"id": 0, "kind": "sample", "sample": {"pattern": "bd sn", "gain": 1.0}},
    {"id": 1, "kind": "oscillator", "osc": "saw", "params": {"freq": 110}},
    {"id": 2, "kind": "lpf", "params": {"input": {"node": 1}, "cutoff": {"pattern": "500 2000 1000"}, "q": 0.8}}
  ],
  "outputs": [
    {"slot": "~d1", "node": 0},
    {"slot": "out", "node": 2}
  ]
}`

func writeDoc(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFileCompilesNodesAndOutputs(t *testing.T) {
	path := writeDoc(t, sampleDoc)
	prog, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 1.0, prog.Cps)
	require.Len(t, prog.Nodes, 3)

	assert.Equal(t, ir.KindSample, prog.Nodes[0].Kind)
	require.NotNil(t, prog.Nodes[0].Sample)
	assert.Equal(t, ir.SignalConstantKind, prog.Nodes[0].Sample.Gain.Kind)
	assert.Equal(t, 1.0, prog.Nodes[0].Sample.Gain.Const)

	assert.Equal(t, ir.OscSaw, prog.Nodes[1].OscKind)
	assert.Equal(t, 110.0, prog.Nodes[1].Params["freq"].Const)

	cutoff := prog.Nodes[2].Params["cutoff"]
	assert.Equal(t, ir.SignalPatternKind, cutoff.Kind)

	require.Len(t, prog.Outputs, 2)
	assert.Equal(t, ir.OutputSlot("out"), prog.Outputs[1].Slot)
	assert.Equal(t, ir.NodeID(0), prog.Buses["~d1"])
}

func TestReservedBusNameRejected(t *testing.T) {
	path := writeDoc(t, `{
  "cps": 1,
  "nodes": [{"id": 0, "kind": "constant", "params": {"value": 1}}],
  "outputs": [{"slot": "~add", "node": 0}]
}`)
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestBareNumberSignalDecodesAsConst(t *testing.T) {
	path := writeDoc(t, `{
  "cps": 1,
  "nodes": [{"id": 0, "kind": "oscillator", "osc": "sine", "params": {"freq": 440}}],
  "outputs": [{"slot": "out", "node": 0}]
}`)
	prog, err := LoadFile(path)
	require.NoError(t, err)
	f := prog.Nodes[0].Params["freq"]
	assert.Equal(t, ir.SignalConstantKind, f.Kind)
	assert.Equal(t, 440.0, f.Const)
}
