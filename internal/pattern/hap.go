package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// Hap is one event produced by querying a Pattern: Whole is the event's full
// extent before any time-transform cropped it (nil when the event has no
// natural whole, e.g. after a query-time crop of an infinite pattern), Part
// is the portion falling within the queried span, and Context carries the
// open string-keyed metadata spec.md §3 enumerates (gain, pan, speed, ...).
type Hap[T any] struct {
	Whole   *timemodel.Span
	Part    timemodel.Span
	Value   T
	Context map[string]string
}

// HasOnset reports whether this Hap's part begins at its whole's begin,
// i.e. this query actually captured the event's onset rather than a
// continuation fragment from a prior query.
func (h Hap[T]) HasOnset() bool {
	return h.Whole != nil && h.Whole.Begin == h.Part.Begin
}

// WholeOrPart returns Whole if present, else Part.
func (h Hap[T]) WholeOrPart() timemodel.Span {
	if h.Whole != nil {
		return *h.Whole
	}
	return h.Part
}

// WithContext returns a copy of h with key set to value in Context.
func (h Hap[T]) WithContext(key, value string) Hap[T] {
	out := h
	out.Context = cloneContext(h.Context)
	out.Context[key] = value
	return out
}

// MergeContext returns a copy of h with other's keys merged in (other wins).
func (h Hap[T]) MergeContext(other map[string]string) Hap[T] {
	if len(other) == 0 {
		return h
	}
	out := h
	out.Context = cloneContext(h.Context)
	for k, v := range other {
		out.Context[k] = v
	}
	return out
}

func cloneContext(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// withTime returns a copy of h with Whole and Part passed through f.
func (h Hap[T]) withTime(f func(timemodel.CyclePos) timemodel.CyclePos) Hap[T] {
	out := h
	out.Part = h.Part.WithTime(f)
	if h.Whole != nil {
		w := h.Whole.WithTime(f)
		out.Whole = &w
	}
	return out
}

// withValue returns a copy of h with a transformed value.
func withValue[T, U any](h Hap[T], f func(T) U) Hap[U] {
	return Hap[U]{Whole: h.Whole, Part: h.Part, Value: f(h.Value), Context: h.Context}
}
