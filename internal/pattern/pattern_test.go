package pattern

import (
	"testing"

	"github.com/ekg/phonon-sub005/internal/timemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCycle(n int64) timemodel.Span {
	return timemodel.NewSpan(timemodel.CyclePos(n*timemodel.Resolution), timemodel.CyclePos((n+1)*timemodel.Resolution))
}

func values[T any](haps []Hap[T]) []T {
	out := make([]T, len(haps))
	for i, h := range haps {
		out[i] = h.Value
	}
	return out
}

func TestPureOneEventPerCycle(t *testing.T) {
	p := Pure("bd")
	haps := p.Query(timemodel.NewSpan(0, timemodel.CyclePos(3*timemodel.Resolution)))
	require.Len(t, haps, 3)
	for _, h := range haps {
		assert.Equal(t, "bd", h.Value)
		assert.True(t, h.HasOnset())
	}
}

func TestDeterminism(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b"), Pure("c")})
	span := fullCycle(5)
	a := p.Query(span)
	b := p.Query(span)
	assert.Equal(t, values(a), values(b))
}

func TestFastComposition(t *testing.T) {
	p := Pure("x")
	left := FastConst(2, FastConst(3, p))
	right := FastConst(6, p)
	span := fullCycle(0)
	assert.Equal(t, len(right.Query(span)), len(left.Query(span)))
}

func TestRevRevIdentity(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b"), Pure("c")})
	span := fullCycle(0)
	original := values(SortedByPartBegin(p.Query(span)))
	roundTrip := values(SortedByPartBegin(RevConst(RevConst(p)).Query(span)))
	assert.Equal(t, original, roundTrip)
}

func TestPalindromeDoublesLength(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b")})
	pal := Palindrome(p)
	span := timemodel.NewSpan(0, timemodel.CyclePos(2*timemodel.Resolution))
	haps := pal.Query(span)
	assert.Len(t, haps, 4)
}

func TestDegradeByZeroIsIdentity(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b"), Pure("c"), Pure("d")})
	span := fullCycle(2)
	original := len(p.Query(span))
	degraded := len(DegradeBy(0, p).Query(span))
	assert.Equal(t, original, degraded)
}

func TestDegradeByOneIsSilence(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b"), Pure("c"), Pure("d")})
	span := fullCycle(0)
	assert.Empty(t, DegradeBy(1, p).Query(span))
}

func TestEmptyPatternIsSilence(t *testing.T) {
	p := Silence[string]()
	assert.Empty(t, p.Query(fullCycle(0)))
}

func TestEuclid38OnsetCount(t *testing.T) {
	e := Euclid(3, 8, 0)
	onsets := 0
	for _, h := range e.Query(fullCycle(0)) {
		if h.Value {
			onsets++
		}
	}
	assert.Equal(t, 3, onsets)
}

func TestEuclidAlternationAcrossCycles(t *testing.T) {
	// bd(<3 5>,8): cycle 0 has 3 onsets, cycle 1 has 5, cycle 2 has 3
	alt := Cat([]Pattern[bool]{Euclid(3, 8, 0), Euclid(5, 8, 0)})
	count := func(cycle int64) int {
		n := 0
		for _, h := range alt.Query(fullCycle(cycle)) {
			if h.Value {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 3, count(0))
	assert.Equal(t, 5, count(1))
	assert.Equal(t, 3, count(2))
}

func TestStackOverlays(t *testing.T) {
	p := Stack([]Pattern[string]{Pure("a"), Pure("b")})
	haps := p.Query(fullCycle(0))
	assert.Len(t, haps, 2)
}

func TestEventsIntersectQuery(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b"), Pure("c"), Pure("d")})
	span := timemodel.NewSpan(timemodel.FromFloat(0.1), timemodel.FromFloat(0.2))
	for _, h := range p.Query(span) {
		_, ok := h.Part.Intersect(span)
		assert.True(t, ok)
	}
}

func TestSometimesByZeroNeverApplies(t *testing.T) {
	p := FastCat([]Pattern[string]{Pure("a"), Pure("b"), Pure("c"), Pure("d")})
	transformed := SometimesBy(0, func(p Pattern[string]) Pattern[string] { return Fmap(p, func(string) string { return "X" }) }, p)
	for _, h := range transformed.Query(fullCycle(0)) {
		assert.NotEqual(t, "X", h.Value)
	}
}

func TestChooseDeterministic(t *testing.T) {
	p := Choose([]string{"a", "b", "c"})
	span := timemodel.NewSpan(timemodel.FromFloat(1.3), timemodel.FromFloat(1.3)+1)
	a := p.Query(span)
	b := p.Query(span)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Value, b[i].Value)
	}
}
