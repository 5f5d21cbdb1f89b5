package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// whollyCompose intersects an outer Hap's part/whole with an inner Hap's
// part/whole, the shared building block behind all three bind variants.
func whollyCompose[T, U any](outer Hap[T], inner Hap[U]) (Hap[U], bool) {
	part, ok := outer.Part.Intersect(inner.Part)
	if !ok {
		return Hap[U]{}, false
	}
	var whole *timemodel.Span
	if outer.Whole != nil && inner.Whole != nil {
		w := *inner.Whole
		whole = &w
	}
	return Hap[U]{
		Whole:   whole,
		Part:    part,
		Value:   inner.Value,
		Context: mergeContexts(outer.Context, inner.Context),
	}, true
}

func mergeContexts(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// OuterBind queries p, and for each resulting event queries f(value) at the
// start of that event's whole-or-part, keeping the OUTER event's timing
// (whole and part) for every value found there. This is the semantics
// jux-style parameter patterns rely on: the outer pattern supplies structure,
// the inner pattern is sampled once per outer event at the outer event's start.
func OuterBind[T, U any](p Pattern[T], f func(T) Pattern[U]) Pattern[U] {
	return New(func(span timemodel.Span) []Hap[U] {
		var out []Hap[U]
		for _, oh := range p.Query(span) {
			inner := f(oh.Value)
			start := oh.WholeOrPart().Begin
			for _, ih := range inner.Query(timemodel.Span{Begin: start, End: start + 1}) {
				out = append(out, Hap[U]{Whole: oh.Whole, Part: oh.Part, Value: ih.Value, Context: mergeContexts(oh.Context, ih.Context)})
			}
		}
		return out
	})
}

// InnerBind is like OuterBind but keeps the INNER pattern's timing: the
// inner whole is authoritative, only cropped by the outer's part.
func InnerBind[T, U any](p Pattern[T], f func(T) Pattern[U]) Pattern[U] {
	return New(func(span timemodel.Span) []Hap[U] {
		var out []Hap[U]
		for _, oh := range p.Query(span) {
			inner := f(oh.Value)
			for _, ih := range inner.Query(oh.Part) {
				if combined, ok := whollyCompose(oh, ih); ok {
					out = append(out, combined)
				}
			}
		}
		return out
	})
}

// SqueezeBind queries p, and for each event compresses f(value) into the
// outer event's whole-or-part extent before querying it. jux/chop-style
// transforms that need the inner pattern to play out entirely within one
// outer slot use this.
func SqueezeBind[T, U any](p Pattern[T], f func(T) Pattern[U]) Pattern[U] {
	return New(func(span timemodel.Span) []Hap[U] {
		var out []Hap[U]
		for _, oh := range p.Query(span) {
			slot := oh.WholeOrPart()
			compressed := CompressSpan(f(oh.Value), slot)
			for _, ih := range compressed.Query(oh.Part) {
				if combined, ok := whollyCompose(oh, ih); ok {
					out = append(out, combined)
				}
			}
		}
		return out
	})
}

// CompressSpan squeezes one cycle of p into the given span: p's cycle [0,1)
// is linearly mapped onto [slot.Begin, slot.End).
func CompressSpan[T any](p Pattern[T], slot timemodel.Span) Pattern[T] {
	length := slot.Length()
	if length <= 0 {
		return Silence[T]()
	}
	toInner := func(t timemodel.CyclePos) timemodel.CyclePos {
		return (t - slot.Begin).Mul(int64(timemodel.Resolution), int64(length))
	}
	toOuter := func(t timemodel.CyclePos) timemodel.CyclePos {
		return slot.Begin + t.Mul(int64(length), int64(timemodel.Resolution))
	}
	compressed := WithTime(p, toInner, toOuter)
	return New(func(span timemodel.Span) []Hap[T] {
		s, ok := span.Intersect(slot)
		if !ok {
			return nil
		}
		return compressed.Query(s)
	})
}

// AppBoth combines two patterns point-wise at query time using f, taking
// the UNION of both patterns' event structure: every overlapping pair of
// haps from left and right produces one output hap cropped to their
// intersection. This realizes the plain `+ - * /` "union of events"
// semantics spec.md §4.2 specifies.
func AppBoth[A, B, C any](left Pattern[A], right Pattern[B], f func(A, B) C) Pattern[C] {
	return New(func(span timemodel.Span) []Hap[C] {
		ls := left.Query(span)
		rs := right.Query(span)
		var out []Hap[C]
		for _, lh := range ls {
			for _, rh := range rs {
				part, ok := lh.Part.Intersect(rh.Part)
				if !ok {
					continue
				}
				var whole *timemodel.Span
				if lh.Whole != nil && rh.Whole != nil {
					w, ok := lh.Whole.Intersect(*rh.Whole)
					if ok {
						whole = &w
					}
				}
				out = append(out, Hap[C]{
					Whole:   whole,
					Part:    part,
					Value:   f(lh.Value, rh.Value),
					Context: mergeContexts(lh.Context, rh.Context),
				})
			}
		}
		return out
	})
}

// AppLeft combines two patterns using f, keeping the LEFT pattern's timing
// (`|+`): the right pattern is sampled once per left event.
func AppLeft[A, B, C any](left Pattern[A], right Pattern[B], f func(A, B) C) Pattern[C] {
	return OuterBind(left, func(a A) Pattern[C] {
		return Fmap(right, func(b B) C { return f(a, b) })
	})
}

// AppRight combines two patterns using f, keeping the RIGHT pattern's
// timing (`+|`): the left pattern is sampled once per right event.
func AppRight[A, B, C any](left Pattern[A], right Pattern[B], f func(A, B) C) Pattern[C] {
	return OuterBind(right, func(b B) Pattern[C] {
		return Fmap(left, func(a A) C { return f(a, b) })
	})
}
