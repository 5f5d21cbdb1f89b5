// Package render turns a graph.Graph's sample stream into a rendered WAV
// file plus the manifest the `phonon render` CLI reports (SPEC_FULL.md §C):
// cycle count, cps, peak, and RMS. Grounded on the teacher's offline.go
// (RenderSamples/EncodeWAVFloat32LE): a tight loop calling Process/eval_sample
// into a flat buffer, then a hand-rolled RIFF encoder.
package render

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Sampler is the minimal surface render.ToFile needs from a graph.Graph:
// advance one sample and return the mono mix.
type Sampler interface {
	EvalSample() float32
	CyclePosition() float64
}

// Manifest summarizes one render, per SPEC_FULL.md §C's "render CLI emits a
// manifest alongside the WAV" supplemented feature.
type Manifest struct {
	Cycles     float64 `json:"cycles"`
	Cps        float64 `json:"cps"`
	SampleRate int     `json:"sample_rate"`
	Frames     int     `json:"frames"`
	Peak       float32 `json:"peak"`
	RMS        float64 `json:"rms"`
}

// RenderCycles advances g for exactly cycles worth of samples at sampleRate
// and returns the mono float32 buffer plus its manifest. cps is carried
// separately from the graph since a stopped graph (cps==0) still renders
// silence for a caller-specified duration.
func RenderCycles(g Sampler, sampleRate int, cps, cycles float64) ([]float32, Manifest) {
	var frames int
	if cps > 0 {
		frames = int(cycles / cps * float64(sampleRate))
	}
	out := make([]float32, frames)
	var peak float32
	var sumSquares float64
	for i := range out {
		v := g.EvalSample()
		out[i] = v
		if abs := float32(math.Abs(float64(v))); abs > peak {
			peak = abs
		}
		sumSquares += float64(v) * float64(v)
	}
	rms := 0.0
	if frames > 0 {
		rms = math.Sqrt(sumSquares / float64(frames))
	}
	return out, Manifest{
		Cycles:     cycles,
		Cps:        cps,
		SampleRate: sampleRate,
		Frames:     frames,
		Peak:       peak,
		RMS:        rms,
	}
}

// WriteWAV encodes mono float32 samples to path via go-audio/wav, the same
// decode-side dependency internal/samplebank already carries, used here on
// the encode side so `phonon render` needs no second WAV library.
func WriteWAV(path string, samples []float32, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 32, 1, 3) // format 3 = IEEE float
	// go-audio/wav's IEEE-float path still takes an IntBuffer: each element
	// carries the int32 reinterpretation of one float32 sample's bit pattern,
	// per the library's own convention for encoding format-3 WAV data.
	buf := &audio.IntBuffer{
		Data:           make([]int, len(samples)),
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 32,
	}
	for i, s := range samples {
		buf.Data[i] = int(int32(math.Float32bits(s)))
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return enc.Close()
}

// EncodeWAVFloat32LE is the teacher's own hand-rolled RIFF/IEEE-float
// encoder (offline.go), kept as the dependency-free fallback path
// SPEC_FULL.md §B names and exercised directly by this package's tests, in
// case a caller needs WAV bytes in memory without touching the filesystem.
func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
