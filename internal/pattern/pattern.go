// Package pattern implements the time-indexed event query model: a Pattern
// is a pure function from a query Span to the Haps intersecting it. This is
// the core algebra spec.md §4.2 describes; every combinator here preserves
// referential transparency so the same span always yields the same events
// (modulo the cycle-seeded randomness of rand/choose/degrade).
package pattern

import (
	"sort"

	"github.com/ekg/phonon-sub005/internal/timemodel"
)

// Query is the pure function every Pattern wraps.
type Query[T any] func(span timemodel.Span) []Hap[T]

// Pattern is a value-semantic wrapper around a Query. Patterns are
// immutable once constructed; combinators always return a new Pattern.
type Pattern[T any] struct {
	query Query[T]
}

// New wraps a raw query function as a Pattern.
func New[T any](q Query[T]) Pattern[T] {
	return Pattern[T]{query: q}
}

// Query runs the pattern's query function over span. It never mutates the
// pattern and is safe to call concurrently from multiple goroutines.
func (p Pattern[T]) Query(span timemodel.Span) []Hap[T] {
	if p.query == nil {
		return nil
	}
	if span.IsEmpty() {
		return nil
	}
	return p.query(span)
}

// QueryCycleSplit queries p, first splitting span at cycle boundaries. Many
// combinators (cat, euclid, mini-notation sequencing) need per-cycle shape
// and must use this instead of Query to behave correctly across cycle
// boundaries.
func (p Pattern[T]) QueryCycleSplit(span timemodel.Span) []Hap[T] {
	var out []Hap[T]
	for _, sub := range span.CycleSpans() {
		out = append(out, p.Query(sub)...)
	}
	return out
}

// Silence is the empty pattern: it produces no events for any span.
func Silence[T any]() Pattern[T] {
	return New(func(timemodel.Span) []Hap[T] { return nil })
}

// Pure produces one whole-cycle event per cycle touched by the query,
// cropped to the queried part.
func Pure[T any](v T) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		var out []Hap[T]
		for _, part := range span.CycleSpans() {
			whole := timemodel.Span{Begin: part.Begin.CycleStart(), End: part.Begin.CycleStart() + timemodel.CyclePos(timemodel.Resolution)}
			out = append(out, Hap[T]{Whole: &whole, Part: part, Value: v, Context: map[string]string{}})
		}
		return out
	})
}

// Steady produces one continuous event (no whole) covering exactly the
// queried span; useful for lifting signal constants that should not carry
// cycle-boundary structure (e.g. a bare constant Signal).
func Steady[T any](v T) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		return []Hap[T]{{Whole: nil, Part: span, Value: v, Context: map[string]string{}}}
	})
}

// Fmap transforms every event's value with f. This is the pattern functor
// map: time structure is untouched.
func Fmap[T, U any](p Pattern[T], f func(T) U) Pattern[U] {
	return New(func(span timemodel.Span) []Hap[U] {
		in := p.Query(span)
		out := make([]Hap[U], len(in))
		for i, h := range in {
			out[i] = withValue(h, f)
		}
		return out
	})
}

// Filter keeps only events whose value satisfies pred.
func Filter[T any](p Pattern[T], pred func(T) bool) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		in := p.Query(span)
		out := in[:0:0]
		for _, h := range in {
			if pred(h.Value) {
				out = append(out, h)
			}
		}
		return out
	})
}

// FilterHaps keeps only events satisfying pred over the whole Hap.
func FilterHaps[T any](p Pattern[T], pred func(Hap[T]) bool) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		in := p.Query(span)
		out := in[:0:0]
		for _, h := range in {
			if pred(h) {
				out = append(out, h)
			}
		}
		return out
	})
}

// FilterOnsets keeps only events whose onset falls within the query, i.e.
// drops continuation fragments. Many consumers (Sample nodes triggering
// voices) must use this so a long event isn't retriggered every tick.
func FilterOnsets[T any](p Pattern[T]) Pattern[T] {
	return FilterHaps(p, Hap[T].HasOnset)
}

// WithQueryTime transforms the span passed to the inner query.
func WithQueryTime[T any](p Pattern[T], f func(timemodel.CyclePos) timemodel.CyclePos) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		return p.Query(span.WithTime(f))
	})
}

// WithResultTime transforms the time of every Hap returned by p's query.
func WithResultTime[T any](p Pattern[T], f func(timemodel.CyclePos) timemodel.CyclePos) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		in := p.query(span)
		out := make([]Hap[T], len(in))
		for i, h := range in {
			out[i] = h.withTime(f)
		}
		return out
	})
}

// WithTime applies fQuery to the query span (inverse direction) and
// fResult to the result times (forward direction); this is the standard
// pattern-library idiom for a reversible time transform such as fast/slow.
func WithTime[T any](p Pattern[T], fQuery, fResult func(timemodel.CyclePos) timemodel.CyclePos) Pattern[T] {
	return WithResultTime(WithQueryTime(p, fQuery), fResult)
}

// SortedByPartBegin returns haps sorted by Part.Begin, stable on ties. Used
// by consumers (e.g. Sample node trigger scanning) that need deterministic
// ordering independent of combinator internals.
func SortedByPartBegin[T any](haps []Hap[T]) []Hap[T] {
	out := append([]Hap[T]{}, haps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Part.Begin < out[j].Part.Begin
	})
	return out
}
