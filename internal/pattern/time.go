package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// Patternify lifts a (float64, Pattern[T]) -> Pattern[T] transform so its
// rate argument can itself be pattern-valued, matching spec.md §4.2's
// "every parameter is a pattern" rule: the rate pattern's own timing drives
// which transformed pattern is queried via InnerBind.
func Patternify[T any](rate Pattern[float64], f func(float64, Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return InnerBind(rate, func(r float64) Pattern[T] {
		return f(r, p)
	})
}

// FastConst speeds p up by a constant factor: n cycles of p's time get
// squeezed into 1 cycle of output time.
func FastConst[T any](factor float64, p Pattern[T]) Pattern[T] {
	if factor == 0 {
		return Silence[T]()
	}
	if factor < 0 {
		return FastConst(-factor, RevConst(p))
	}
	return WithTime(p,
		func(t timemodel.CyclePos) timemodel.CyclePos { return t.ScaleF(factor) },
		func(t timemodel.CyclePos) timemodel.CyclePos { return t.ScaleF(1 / factor) },
	)
}

// Fast is the patternified form of FastConst (`fast p`).
func Fast[T any](rate Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(rate, FastConst[T], p)
}

// SlowConst slows p down by a constant factor (the inverse of FastConst).
func SlowConst[T any](factor float64, p Pattern[T]) Pattern[T] {
	if factor == 0 {
		return Silence[T]()
	}
	return FastConst(1/factor, p)
}

// Slow is the patternified form of SlowConst (`slow p`).
func Slow[T any](rate Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(rate, SlowConst[T], p)
}

// Hurry speeds up time AND scales a "speed" context parameter by the same
// factor, the way sample playback rate should track tempo changes.
func Hurry(factor float64, p Pattern[string]) Pattern[string] {
	return WithSpeedMul(FastConst(factor, p), factor)
}

// WithSpeedMul multiplies the "speed" context key (default 1) by factor.
func WithSpeedMul(p Pattern[string], factor float64) Pattern[string] {
	return New(func(span timemodel.Span) []Hap[string] {
		in := p.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			speed := 1.0
			if raw, ok := h.Context["speed"]; ok {
				if v, err := parseFloat(raw); err == nil {
					speed = v
				}
			}
			out[i] = h.WithContext("speed", formatFloat(speed*factor))
		}
		return out
	})
}

// RevConst reverses p within each cycle: event at cycle-local time t moves
// to cycle-local time 1-t.
func RevConst[T any](p Pattern[T]) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		var out []Hap[T]
		for _, cycle := range span.CycleSpans() {
			start := cycle.Begin.CycleStart()
			end := start + timemodel.CyclePos(timemodel.Resolution)
			reflect := func(t timemodel.CyclePos) timemodel.CyclePos {
				return start + (end - t)
			}
			queried := timemodel.NewSpan(reflect(cycle.End), reflect(cycle.Begin))
			for _, h := range p.Query(queried) {
				out = append(out, h.withTime(reflect))
			}
		}
		return out
	})
}

// Palindrome alternates p forwards on even cycles and reversed on odd ones.
func Palindrome[T any](p Pattern[T]) Pattern[T] {
	return Cat([]Pattern[T]{p, RevConst(p)})
}

// EarlyConst shifts p earlier (towards time zero) by a constant number of
// cycles.
func EarlyConst[T any](amount float64, p Pattern[T]) Pattern[T] {
	shift := timemodel.FromFloat(amount)
	return WithTime(p,
		func(t timemodel.CyclePos) timemodel.CyclePos { return t + shift },
		func(t timemodel.CyclePos) timemodel.CyclePos { return t - shift },
	)
}

// Early is the patternified form of EarlyConst.
func Early[T any](amount Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(amount, EarlyConst[T], p)
}

// LateConst shifts p later by a constant number of cycles.
func LateConst[T any](amount float64, p Pattern[T]) Pattern[T] {
	return EarlyConst(-amount, p)
}

// Late is the patternified form of LateConst.
func Late[T any](amount Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(amount, LateConst[T], p)
}

// Offset is an alias for Late kept for surface-DSL naming parity.
func Offset[T any](amount Pattern[float64], p Pattern[T]) Pattern[T] {
	return Late(amount, p)
}

// RotLConst rotates pattern content left by `amount` cycles; it is the same
// raw-time shift as EarlyConst.
func RotLConst[T any](amount float64, p Pattern[T]) Pattern[T] {
	return EarlyConst(amount, p)
}

// RotL is the patternified form of RotLConst.
func RotL[T any](amount Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(amount, RotLConst[T], p)
}

// RotRConst rotates right, the inverse of RotLConst.
func RotRConst[T any](amount float64, p Pattern[T]) Pattern[T] {
	return LateConst(amount, p)
}

// RotR is the patternified form of RotRConst.
func RotR[T any](amount Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(amount, RotRConst[T], p)
}

// IterConst plays n versions of p, each rotated by an additional 1/n of a
// cycle per cycle index, cycling with period n.
func IterConst[T any](n int, p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		i := int(((cycle % int64(n)) + int64(n)) % int64(n))
		return RotLConst(float64(i)/float64(n), p)
	})
}

// IterBackConst is IterConst but rotating the opposite direction each cycle.
func IterBackConst[T any](n int, p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		i := int(((cycle % int64(n)) + int64(n)) % int64(n))
		return RotRConst(float64(i)/float64(n), p)
	})
}

// WhenCycle builds a pattern whose behavior is chosen fresh per cycle by f,
// the shared primitive behind Iter, Every, Chunk, and friends: it queries
// each cycle of the span against the Pattern f returns for that cycle index.
func WhenCycle[T any](f func(cycle int64) Pattern[T]) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		var out []Hap[T]
		for _, cycle := range span.CycleSpans() {
			idx := cycle.Begin.CycleIndex()
			out = append(out, f(idx).Query(cycle)...)
		}
		return out
	})
}

// CompressConst squeezes one cycle of p into the [begin,end) fraction of
// every cycle (0<=begin<end<=1), leaving the rest of the cycle silent:
// output cycle c plays p's cycle c.
func CompressConst[T any](begin, end float64, p Pattern[T]) Pattern[T] {
	if begin < 0 || end > 1 || end <= begin {
		return Silence[T]()
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		base := timemodel.CyclePos(cycle * timemodel.Resolution)
		slot := timemodel.Span{
			Begin: base + timemodel.FromFloat(begin),
			End:   base + timemodel.FromFloat(end),
		}
		return CompressSpan(EarlyConst(float64(cycle), p), slot)
	})
}

// ZoomConst plays the [begin,end) fraction of p's own cycle 0, stretched to
// fill a whole output cycle, repeating every cycle -- the inverse of
// CompressConst.
func ZoomConst[T any](begin, end float64, p Pattern[T]) Pattern[T] {
	length := end - begin
	if length <= 0 {
		return Silence[T]()
	}
	toInner := func(t timemodel.CyclePos) timemodel.CyclePos {
		return t.ScaleF(length) + timemodel.FromFloat(begin)
	}
	toOuter := func(t timemodel.CyclePos) timemodel.CyclePos {
		return (t - timemodel.FromFloat(begin)).ScaleF(1 / length)
	}
	return WithTime(p, toInner, toOuter)
}

// FocusConst is like ZoomConst but does not repeat per cycle -- it plays
// the zoomed segment once per matching outer cycle only (identical to
// ZoomConst under this event model, kept as a distinct name for DSL parity
// since the two diverge only for patterns with irregular cycle reuse).
func FocusConst[T any](begin, end float64, p Pattern[T]) Pattern[T] {
	return ZoomConst(begin, end, p)
}

// FastGapConst speeds p up by factor within the first 1/factor of each
// cycle, leaving the remainder of the cycle silent (as opposed to Fast,
// which has no gap).
func FastGapConst[T any](factor float64, p Pattern[T]) Pattern[T] {
	if factor <= 0 {
		return Silence[T]()
	}
	return CompressConst(0, 1/factor, p)
}

// GapConst leaves p silent for the 1/n of each cycle starting the gap
// fraction in, used by `gap`.
func GapConst[T any](n int, p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	return FastGapConst(float64(n), p)
}

// Inside applies f to p after slowing by n, then speeds back up -- useful
// for applying a transform "inside" a larger cycle grouping.
func Inside[T any](n float64, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return FastConst(n, f(SlowConst(n, p)))
}

// Outside is Inside with the direction of n reversed.
func Outside[T any](n float64, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return Inside(1/n, f, p)
}

// Within applies f only to the part of each cycle in [begin,end), leaving
// the rest of p untouched.
func Within[T any](begin, end float64, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	inRange := func(h Hap[T]) bool {
		local := timemodel.CycleLocal(h.Part.Begin).Float()
		return local >= begin && local < end
	}
	return Stack([]Pattern[T]{
		FilterHaps(f(p), inRange),
		FilterHaps(p, func(h Hap[T]) bool { return !inRange(h) }),
	})
}
