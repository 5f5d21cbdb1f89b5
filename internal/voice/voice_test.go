package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineBuffer(n int) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = 1 // constant, simplifies RMS assertions
	}
	return buf
}

func TestTriggerUsesFreeSlotFirst(t *testing.T) {
	m := NewManager(4)
	m.Trigger(0, sineBuffer(100), 44100, TriggerParams{Gain: 1, EndFrame: 100})
	assert.Equal(t, 1, m.ActiveCount())
}

func TestTriggerStealsOldestWhenFull(t *testing.T) {
	m := NewManager(2)
	m.Trigger(0, sineBuffer(1000), 44100, TriggerParams{Gain: 1, EndFrame: 1000})
	m.Trigger(1, sineBuffer(1000), 44100, TriggerParams{Gain: 1, EndFrame: 1000})
	// both slots full and active; third trigger should steal the oldest (first)
	m.Trigger(2, sineBuffer(1000), 44100, TriggerParams{Gain: 1, EndFrame: 1000})
	assert.Equal(t, 2, m.ActiveCount())
}

func TestCutGroupChokesSameGroupVoice(t *testing.T) {
	m := NewManager(8)
	m.Trigger(0, sineBuffer(1000), 44100, TriggerParams{Gain: 1, EndFrame: 1000, CutGroup: 5})
	require.Equal(t, 1, m.ActiveCount())
	m.Trigger(0, sineBuffer(1000), 44100, TriggerParams{Gain: 1, EndFrame: 1000, CutGroup: 5})
	assert.Equal(t, 1, m.ActiveCount())
}

func TestProcessBufferDemultiplexesBySourceNode(t *testing.T) {
	m := NewManager(8)
	m.Trigger(0, sineBuffer(100), 44100, TriggerParams{Gain: 1, EndFrame: 100, Attack: 0.0001, Release: 0.0001})
	m.Trigger(1, sineBuffer(100), 44100, TriggerParams{Gain: 1, EndFrame: 100, Attack: 0.0001, Release: 0.0001})
	out := m.ProcessBuffer(10, 2, 44100)
	require.Len(t, out, 2)
	nonZero := func(buf []float32) bool {
		for _, v := range buf {
			if v != 0 {
				return true
			}
		}
		return false
	}
	assert.True(t, nonZero(out[0]))
	assert.True(t, nonZero(out[1]))
}

func TestVoiceDeactivatesAfterBufferEnds(t *testing.T) {
	m := NewManager(4)
	m.Trigger(0, sineBuffer(4), 44100, TriggerParams{Gain: 1, EndFrame: 4, Attack: 0.00001, Release: 0.00001})
	_ = m.ProcessBuffer(4410, 1, 44100) // far more frames than the buffer holds
	assert.Equal(t, 0, m.ActiveCount())
}

func TestAdsrReleaseRampsToZero(t *testing.T) {
	a := AdsrState{State: EnvAttack, AttackSec: 0.001, DecaySec: 0.001, SustainLevel: 0.5, ReleaseSec: 0.001}
	for i := 0; i < 1000; i++ {
		a.Advance(44100)
	}
	require.Equal(t, EnvSustain, a.State)
	a.Release()
	for i := 0; i < 1000; i++ {
		a.Advance(44100)
	}
	assert.Equal(t, EnvOff, a.State)
	assert.Equal(t, 0.0, a.Level)
}
