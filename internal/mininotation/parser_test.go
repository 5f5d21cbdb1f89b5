package mininotation

import (
	"testing"

	"github.com/ekg/phonon-sub005/internal/timemodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCycle(n int64) timemodel.Span {
	return timemodel.NewSpan(timemodel.CyclePos(n*timemodel.Resolution), timemodel.CyclePos((n+1)*timemodel.Resolution))
}

func names(p Pattern, cycle int64) []string {
	compiled := p.Compile()
	haps := compiled.Query(fullCycle(cycle))
	out := make([]string, len(haps))
	for i, h := range haps {
		out[i] = h.Value
	}
	return out
}

func TestParseSimpleSequence(t *testing.T) {
	p, err := Parse("bd sn hh hh")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 4)
}

func TestParseRest(t *testing.T) {
	p, err := Parse("bd ~ sn ~")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 2)
}

func TestParseSampleIndex(t *testing.T) {
	p, err := Parse("bd:3 sn:1")
	require.NoError(t, err)
	got := names(p, 0)
	assert.Equal(t, []string{"bd:3", "sn:1"}, got)
}

func TestParseGroupSubdividesOneSlot(t *testing.T) {
	p, err := Parse("bd [sn sn] hh")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 4)
}

func TestParseGroupCommaIsPolyrhythm(t *testing.T) {
	p, err := Parse("[bd sn, hh hh hh]")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 5)
}

func TestParseChoiceAlternatesPerCycle(t *testing.T) {
	p, err := Parse("<bd sn>")
	require.NoError(t, err)
	assert.Equal(t, []string{"bd"}, names(p, 0))
	assert.Equal(t, []string{"sn"}, names(p, 1))
	assert.Equal(t, []string{"bd"}, names(p, 2))
}

func TestParsePolymeterSharesStepRateAcrossTracks(t *testing.T) {
	p, err := Parse("{bd sn, hh oh ch}")
	require.NoError(t, err)
	// base step count == len(first track) == 2
	assert.Len(t, names(p, 0), 4)
}

func TestParseFastModifier(t *testing.T) {
	p, err := Parse("bd*2 sn")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 3)
}

func TestParseReplicateModifier(t *testing.T) {
	p, err := Parse("bd!3 sn")
	require.NoError(t, err)
	assert.Equal(t, []string{"bd", "bd", "bd", "sn"}, names(p, 0))
}

func TestParseWeightModifier(t *testing.T) {
	p, err := Parse("bd@3 sn")
	require.NoError(t, err)
	compiled := p.Compile()
	haps := compiled.Query(fullCycle(0))
	require.Len(t, haps, 2)
	// bd should occupy 3/4 of the cycle, sn 1/4.
	bdSpan := haps[0].Part.Length().Float()
	snSpan := haps[1].Part.Length().Float()
	assert.InDelta(t, 3.0, bdSpan/snSpan, 0.001)
}

func TestParseEuclidModifier(t *testing.T) {
	p, err := Parse("bd(3,8)")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 3)
}

func TestParseDegradeAlwaysOrNeverAtExtremes(t *testing.T) {
	p, err := Parse("bd*8?0.0")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 8)
}

func TestParseNestedBrackets(t *testing.T) {
	p, err := Parse("bd [sn [hh hh]]")
	require.NoError(t, err)
	assert.Len(t, names(p, 0), 4)
}

func TestParseErrorOnUnclosedGroup(t *testing.T) {
	_, err := Parse("bd [sn sn")
	assert.Error(t, err)
}

func TestParseErrorOnEmptyIdentifier(t *testing.T) {
	_, err := Parse("bd *")
	assert.Error(t, err)
}

func TestMustParsePanicsOnInvalidInput(t *testing.T) {
	assert.Panics(t, func() {
		MustParse("[unclosed")
	})
}
