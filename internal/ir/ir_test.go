package ir

import (
	"testing"

	"github.com/ekg/phonon-sub005/internal/pattern"
	"github.com/stretchr/testify/assert"
)

func TestConstSignalRoundTrips(t *testing.T) {
	s := ConstSignal(440)
	assert.Equal(t, SignalConstantKind, s.Kind)
	assert.Equal(t, 440.0, s.Const)
}

func TestNodeSignalRoundTrips(t *testing.T) {
	s := NodeSignal(NodeID(3))
	assert.Equal(t, SignalNodeRefKind, s.Kind)
	assert.Equal(t, NodeID(3), s.Node)
}

func TestPatternSignalRoundTrips(t *testing.T) {
	p := pattern.Pure(1.0)
	s := PatternSignal(p)
	assert.Equal(t, SignalPatternKind, s.Kind)
}

func TestReservedBusNamesRejectsCoreMathBuses(t *testing.T) {
	assert.True(t, ReservedBusNames["~add"])
	assert.False(t, ReservedBusNames["~d1"])
}
