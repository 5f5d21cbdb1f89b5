package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sineProgram = `{
  "cps": 1,
  "nodes": [
    {"id": 0, "kind": "oscillator", "osc": "sine", "params": {"freq": 440}}
  ],
  "outputs": [{"slot": "out", "node": 0}]
}`

func TestRenderCommandWritesWAV(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(sineProgram), 0o644))
	outPath := filepath.Join(dir, "out.wav")

	root := newRootCmd()
	root.SetArgs([]string{
		"--samples", filepath.Join(dir, "nonexistent-samples"),
		"render", srcPath, outPath,
		"--cycles", "1",
	})
	require.NoError(t, root.Execute())

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Greater(t, len(data), 44) // at least the RIFF header
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
}

func TestRenderCommandRejectsNegativeCps(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "prog.json")
	require.NoError(t, os.WriteFile(srcPath, []byte(`{"cps":1,"nodes":[],"outputs":[]}`), 0o644))
	outPath := filepath.Join(dir, "out.wav")

	root := newRootCmd()
	root.SetArgs([]string{"render", srcPath, outPath, "--cps", "-1"})
	err := root.Execute()
	assert.Error(t, err)
}
