package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// Jux plays p panned hard left and f(p) panned hard right, the classic
// "stereo-split" transform. Since the graph is mono-internal with a pan
// parameter (spec.md §1), Jux sets the "pan" context key on each branch
// rather than routing to separate channels.
func Jux(f func(Pattern[string]) Pattern[string], p Pattern[string]) Pattern[string] {
	return JuxBy(1, f, p)
}

// JuxBy is Jux with a pan amount in [0,1] controlling how far apart the two
// copies are placed (1 = hard left/right, 0 = both centered).
func JuxBy(amount float64, f func(Pattern[string]) Pattern[string], p Pattern[string]) Pattern[string] {
	left := setPan(p, -amount)
	right := setPan(f(p), amount)
	return Stack([]Pattern[string]{left, right})
}

func setPan(p Pattern[string], pan float64) Pattern[string] {
	return withContextValue(p, "pan", formatFloat(pan))
}

// withContextValue returns a copy of p with key=value merged into every
// event's context.
func withContextValue(p Pattern[string], key, value string) Pattern[string] {
	return New(func(span timemodel.Span) []Hap[string] {
		in := p.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			out[i] = h.WithContext(key, value)
		}
		return out
	})
}

// Superimpose stacks p with f(p), playing both simultaneously.
func Superimpose[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return Stack([]Pattern[T]{p, f(p)})
}

// Segment discretizes a continuous-valued pattern (e.g. a signal pattern
// like Rand or Perlin) into n equal-width steps per cycle, sampling the
// value once per step at the step's onset -- the operation that turns a
// DSP-style continuous Signal(Pattern) into discrete control events.
func Segment[T any](n int, p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return Silence[T]()
	}
	return StructBool(Euclid(n, n, 0), p)
}

// chopParams reads begin/end fractions (default 0,1) from a Hap's context.
func chopParams(ctx map[string]string) (begin, end float64) {
	begin, end = 0, 1
	if raw, ok := ctx["begin"]; ok {
		if v, err := parseFloat(raw); err == nil {
			begin = v
		}
	}
	if raw, ok := ctx["end"]; ok {
		if v, err := parseFloat(raw); err == nil {
			end = v
		}
	}
	return begin, end
}

// Chop splits each sample event into n consecutive sub-events, each
// covering an equal sub-range of the original [begin,end) slice and
// playing sequentially within the original event's slot.
func Chop(n int, p Pattern[string]) Pattern[string] {
	if n <= 1 {
		return p
	}
	return New(func(span timemodel.Span) []Hap[string] {
		var out []Hap[string]
		for _, h := range p.Query(span) {
			begin, end := chopParams(h.Context)
			width := (end - begin) / float64(n)
			slot := h.WholeOrPart()
			for i := 0; i < n; i++ {
				subSlot, ok := slot.Intersect(timemodel.Span{
					Begin: slot.Begin + timemodel.CyclePos(float64(slot.Length())*float64(i)/float64(n)),
					End:   slot.Begin + timemodel.CyclePos(float64(slot.Length())*float64(i+1)/float64(n)),
				})
				if !ok {
					continue
				}
				part, ok := subSlot.Intersect(h.Part)
				if !ok {
					continue
				}
				nh := Hap[string]{Whole: &subSlot, Part: part, Value: h.Value, Context: cloneContext(h.Context)}
				nh = nh.WithContext("begin", formatFloat(begin+width*float64(i))).WithContext("end", formatFloat(begin+width*float64(i+1)))
				out = append(out, nh)
			}
		}
		return out
	})
}

// Striate plays slice i (of n equal slices across the WHOLE sample) on
// cycle-step i, cycling: unlike Chop it interleaves slices across
// consecutive onsets of p rather than subdividing one onset.
func Striate(n int, p Pattern[string]) Pattern[string] {
	if n <= 1 {
		return p
	}
	var parts []Pattern[string]
	for i := 0; i < n; i++ {
		b, e := float64(i)/float64(n), float64(i+1)/float64(n)
		parts = append(parts, withBeginEnd(p, b, e))
	}
	return FastCat(parts)
}

func withBeginEnd(p Pattern[string], begin, end float64) Pattern[string] {
	return New(func(span timemodel.Span) []Hap[string] {
		in := p.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			out[i] = h.WithContext("begin", formatFloat(begin)).WithContext("end", formatFloat(end))
		}
		return out
	})
}

// Slice chooses a 1/n-wide slice of each sample per step of idxPat,
// structured by idxPat's own timing (DSL `slice n "0 2 1 3"`).
func Slice(n int, idxPat Pattern[int], p Pattern[string]) Pattern[string] {
	return sliceImpl(n, idxPat, p)
}

func sliceImpl(n int, idxPat Pattern[int], p Pattern[string]) Pattern[string] {
	if n <= 0 {
		return Silence[string]()
	}
	return New(func(span timemodel.Span) []Hap[string] {
		var out []Hap[string]
		for _, ih := range idxPat.Query(span) {
			sampleAt := timemodel.Span{Begin: ih.Part.Begin, End: ih.Part.Begin + 1}
			for _, sh := range p.Query(sampleAt) {
				idx := ((ih.Value % n) + n) % n
				b, e := float64(idx)/float64(n), float64(idx+1)/float64(n)
				nh := Hap[string]{Whole: ih.Whole, Part: ih.Part, Value: sh.Value, Context: mergeContexts(sh.Context, ih.Context)}
				nh = nh.WithContext("begin", formatFloat(b)).WithContext("end", formatFloat(e))
				out = append(out, nh)
			}
		}
		return out
	})
}

// Splice is Slice plus a "speed" context set so the chosen slice plays for
// exactly the step's duration regardless of the sample's natural length
// (the DSL's `splice` vs `slice` distinction: splice time-stretches,
// slice does not).
func Splice(n int, idxPat Pattern[int], p Pattern[string]) Pattern[string] {
	sliced := sliceImpl(n, idxPat, p)
	return New(func(span timemodel.Span) []Hap[string] {
		in := sliced.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			stepCycles := 1.0 / float64(n)
			if h.Whole != nil {
				stepCycles = h.Whole.Length().Float()
			}
			speed := stepCycles * float64(n)
			out[i] = h.WithContext("speed", formatFloat(speed)).WithContext("unit", "c")
		}
		return out
	})
}

// Bite divides p's own cycle into n zones and plays zone idx per step of
// idxPat, structured by idxPat's timing (works over any T via Zoom).
func Bite[T any](n int, idxPat Pattern[int], p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return Silence[T]()
	}
	return InnerBind(idxPat, func(idx int) Pattern[T] {
		i := ((idx % n) + n) % n
		return ZoomConst(float64(i)/float64(n), float64(i+1)/float64(n), p)
	})
}

// LoopAt slows p by n cycles and scales playback speed by 1/n, so a sample
// spanning n cycles of pattern time plays back at its natural pitch over
// that stretched duration.
func LoopAt(n float64, p Pattern[string]) Pattern[string] {
	slowed := SlowConst(n, p)
	if n == 0 {
		return slowed
	}
	return WithSpeedMul(slowed, 1/n)
}

// Scramble divides each cycle into n parts and plays a uniformly random
// (with repetition) part at each of the n step positions.
func Scramble[T any](n int, p Pattern[T]) Pattern[T] {
	return Bite(n, Segment(n, IRand(n)), p)
}

// Shuffle divides each cycle into n parts and plays a random PERMUTATION
// (no repeats) of them, reseeded fresh each cycle.
func Shuffle[T any](n int, p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return Silence[T]()
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		perm := permutation(n, cycle)
		var parts []Pattern[T]
		for _, idx := range perm {
			parts = append(parts, ZoomConst(float64(idx)/float64(n), float64(idx+1)/float64(n), p))
		}
		return FastCat(parts)
	})
}

// permutation returns a deterministic Fisher-Yates shuffle of [0,n) seeded
// by cycle, so Shuffle's per-cycle reordering is reproducible.
func permutation(n int, cycle int64) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(randFloat(cycle, int64(i), 0xFEED) * float64(i+1))
		if j > i {
			j = i
		}
		out[i], out[j] = out[j], out[i]
	}
	return out
}
