package timemodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRationalExactTiling(t *testing.T) {
	const n = 7
	var spans []Span
	for i := 0; i < n; i++ {
		begin := FromRational(int64(i), n)
		end := FromRational(int64(i+1), n)
		spans = append(spans, Span{Begin: begin, End: end})
	}
	require.Len(t, spans, n)
	assert.Equal(t, CyclePos(0), spans[0].Begin)
	assert.Equal(t, CyclePos(Resolution), spans[n-1].End)
	for i := 1; i < n; i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Begin, "span %d must tile exactly", i)
	}
}

func TestCycleIndexNegative(t *testing.T) {
	p := FromRational(-1, 2)
	assert.Equal(t, int64(-1), p.CycleIndex())
}

func TestCycleSpansSplitsAtBoundary(t *testing.T) {
	s := NewSpan(FromFloat(0.5), FromFloat(2.5))
	spans := s.CycleSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, int64(0), spans[0].Begin.CycleIndex())
	assert.Equal(t, int64(1), spans[1].Begin.CycleIndex())
	assert.Equal(t, int64(2), spans[2].Begin.CycleIndex())
	assert.Equal(t, s.End, spans[2].End)
}

func TestIntersect(t *testing.T) {
	a := NewSpan(FromFloat(0), FromFloat(1))
	b := NewSpan(FromFloat(0.5), FromFloat(1.5))
	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, FromFloat(0.5), got.Begin)
	assert.Equal(t, FromFloat(1), got.End)

	_, ok = a.Intersect(NewSpan(FromFloat(2), FromFloat(3)))
	assert.False(t, ok)
}

func TestTempoStoppedAtZero(t *testing.T) {
	tempo := Tempo{CPS: 0}
	assert.Equal(t, 0.0, tempo.AdvancePerSample(44100))
}

func TestTempoAdvance(t *testing.T) {
	tempo := Tempo{CPS: 1}
	assert.InDelta(t, 1.0/44100.0, tempo.AdvancePerSample(44100), 1e-12)
}
