// Package samplebank provides immutable named audio buffers with a lazy
// reverse-buffer cache for negative playback speed, per spec.md §4.4.
// Loading uses github.com/go-audio/wav (already in the pack via
// schollz-221e's go.mod) in place of the teacher's own hand-rolled RIFF
// decode in offline.go -- decode only, since the teacher's WAV code in this
// repo is an encoder, not a decoder.
package samplebank

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Bank is a thread-safe, append-at-startup collection of named sample
// buffers. Reads (Get) are lock-free after warm-up is complete in spirit --
// the mutex here only guards the lazy reverse-cache fill, never the forward
// buffers once loaded.
type Bank struct {
	mu       sync.RWMutex
	forward  map[string][]float32
	reversed map[string][]float32
	// variants holds every numbered sample sharing a name (the mini-notation
	// "bd:3" index -- spec.md §3's `n` context key), keyed by "name:index".
	// Index 0 always aliases forward/reversed directly, so a bank with no
	// variants at all pays no extra lookup cost.
	variants         map[string][]float32
	variantsReversed map[string][]float32
}

// New returns an empty bank; samples are added via Load/LoadFile.
func New() *Bank {
	return &Bank{
		forward:          make(map[string][]float32),
		reversed:         make(map[string][]float32),
		variants:         make(map[string][]float32),
		variantsReversed: make(map[string][]float32),
	}
}

// LoadFile decodes a WAV file at path, downmixing to mono float32 in [-1,1],
// and registers it under name.
func (b *Bank) LoadFile(name, path string) error {
	return b.LoadVariantFile(name, 0, path)
}

// LoadVariantFile decodes a WAV file at path and registers it as the
// numbered variant `index` of name (index 0 is equivalent to LoadFile),
// e.g. loading a directory's bd-0.wav/bd-1.wav as variants 0 and 1 of "bd"
// so a mini-notation pattern's "bd:1" onset can select the second file.
func (b *Bank) LoadVariantFile(name string, index int, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("samplebank: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("samplebank: decode %s: %w", path, err)
	}
	b.LoadVariant(name, index, downmixToFloat32(buf))
	return nil
}

// Load registers a pre-decoded mono float32 buffer directly -- the seam
// tests use to install synthetic samples without touching disk.
func (b *Bank) Load(name string, samples []float32) {
	b.LoadVariant(name, 0, samples)
}

// LoadVariant registers samples as the numbered variant `index` of name.
func (b *Bank) LoadVariant(name string, index int, samples []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index == 0 {
		b.forward[name] = samples
		delete(b.reversed, name)
		return
	}
	key := variantKey(name, index)
	b.variants[key] = samples
	delete(b.variantsReversed, key)
}

// Get returns the named sample's immutable buffer, forward or reversed.
// Reversed buffers are built once on first request and cached thereafter.
func (b *Bank) Get(name string, reverse bool) ([]float32, bool) {
	return b.GetVariant(name, 0, reverse)
}

// GetVariant returns the numbered variant of name's immutable buffer,
// forward or reversed, falling back to the plain (index 0) buffer when no
// sample was ever registered under that index. Reversed buffers are built
// once on first request and cached thereafter, per variant.
func (b *Bank) GetVariant(name string, index int, reverse bool) ([]float32, bool) {
	if index == 0 {
		return b.get(b.forward, b.reversed, name, reverse)
	}
	key := variantKey(name, index)
	if buf, ok := b.get(b.variants, b.variantsReversed, key, reverse); ok {
		return buf, true
	}
	// Unknown variant index: fall back to the base sample rather than
	// silently dropping the event, per spec.md §7's degrade-gracefully
	// posture for unexpected states.
	return b.get(b.forward, b.reversed, name, reverse)
}

func variantKey(name string, index int) string {
	return fmt.Sprintf("%s:%d", name, index)
}

func (b *Bank) get(forward, reversed map[string][]float32, key string, reverse bool) ([]float32, bool) {
	if !reverse {
		b.mu.RLock()
		buf, ok := forward[key]
		b.mu.RUnlock()
		return buf, ok
	}

	b.mu.RLock()
	rev, ok := reversed[key]
	b.mu.RUnlock()
	if ok {
		return rev, true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// Re-check under the write lock: another goroutine may have built it
	// between the RUnlock above and this Lock.
	if rev, ok := reversed[key]; ok {
		return rev, true
	}
	fwd, ok := forward[key]
	if !ok {
		return nil, false
	}
	rev = reversedCopy(fwd)
	reversed[key] = rev
	return rev, true
}

// Names returns the set of loaded sample names, for diagnostics/tests.
func (b *Bank) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.forward))
	for name := range b.forward {
		out = append(out, name)
	}
	return out
}

func reversedCopy(src []float32) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[len(src)-1-i] = v
	}
	return out
}

// downmixToFloat32 converts a decoded PCM buffer (any bit depth, any
// channel count) to mono float32 samples in [-1,1], averaging channels.
func downmixToFloat32(buf *audio.IntBuffer) []float32 {
	fmtInfo := buf.Format
	channels := 1
	if fmtInfo != nil && fmtInfo.NumChannels > 0 {
		channels = fmtInfo.NumChannels
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	maxVal := float64(int(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = float32((sum / float64(channels)) / maxVal)
	}
	return out
}
