package samplebank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndGetForward(t *testing.T) {
	b := New()
	b.Load("bd", []float32{0, 0.5, 1, 0.5})
	buf, ok := b.Get("bd", false)
	require.True(t, ok)
	assert.Equal(t, []float32{0, 0.5, 1, 0.5}, buf)
}

func TestGetReversedIsCachedAndCorrect(t *testing.T) {
	b := New()
	b.Load("bd", []float32{0, 0.5, 1, 0.5})
	rev, ok := b.Get("bd", true)
	require.True(t, ok)
	assert.Equal(t, []float32{0.5, 1, 0.5, 0}, rev)

	rev2, ok := b.Get("bd", true)
	require.True(t, ok)
	assert.Equal(t, rev, rev2)
}

func TestGetMissingNameIsNotOK(t *testing.T) {
	b := New()
	_, ok := b.Get("nope", false)
	assert.False(t, ok)
}

func TestLoadReplacesAndInvalidatesReverseCache(t *testing.T) {
	b := New()
	b.Load("bd", []float32{1, 2, 3})
	_, _ = b.Get("bd", true)
	b.Load("bd", []float32{9, 8})
	rev, ok := b.Get("bd", true)
	require.True(t, ok)
	assert.Equal(t, []float32{8, 9}, rev)
}

func TestNamesListsLoadedSamples(t *testing.T) {
	b := New()
	b.Load("bd", []float32{0})
	b.Load("sn", []float32{0})
	assert.ElementsMatch(t, []string{"bd", "sn"}, b.Names())
}

func TestLoadVariantIsIndependentOfBaseName(t *testing.T) {
	b := New()
	b.Load("bd", []float32{1, 1, 1})
	b.LoadVariant("bd", 1, []float32{2, 2})
	b.LoadVariant("bd", 2, []float32{3})

	base, ok := b.GetVariant("bd", 0, false)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1, 1}, base)

	v1, ok := b.GetVariant("bd", 1, false)
	require.True(t, ok)
	assert.Equal(t, []float32{2, 2}, v1)

	v2, ok := b.GetVariant("bd", 2, false)
	require.True(t, ok)
	assert.Equal(t, []float32{3}, v2)
}

func TestGetVariantFallsBackToBaseWhenIndexUnknown(t *testing.T) {
	b := New()
	b.Load("bd", []float32{1, 2, 3})
	buf, ok := b.GetVariant("bd", 5, false)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, buf)
}

func TestGetVariantReversedIsCachedPerIndex(t *testing.T) {
	b := New()
	b.LoadVariant("bd", 1, []float32{1, 2, 3})
	rev, ok := b.GetVariant("bd", 1, true)
	require.True(t, ok)
	assert.Equal(t, []float32{3, 2, 1}, rev)

	rev2, ok := b.GetVariant("bd", 1, true)
	require.True(t, ok)
	assert.Equal(t, rev, rev2)
}
