package pattern

import (
	"math"

	"github.com/ekg/phonon-sub005/internal/timemodel"
)

// Add, Sub, Mul, Div, Mod, Pow combine two numeric patterns using the
// union-of-events semantics (AppBoth) spec.md §4.2 mandates for raw
// arithmetic operators.
func Add(a, b Pattern[float64]) Pattern[float64] { return AppBoth(a, b, func(x, y float64) float64 { return x + y }) }
func Sub(a, b Pattern[float64]) Pattern[float64] { return AppBoth(a, b, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Pattern[float64]) Pattern[float64] { return AppBoth(a, b, func(x, y float64) float64 { return x * y }) }
func Div(a, b Pattern[float64]) Pattern[float64] {
	return AppBoth(a, b, func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x / y
	})
}
func Mod(a, b Pattern[float64]) Pattern[float64] {
	return AppBoth(a, b, func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return math.Mod(x, y)
	})
}
func Pow(a, b Pattern[float64]) Pattern[float64] {
	return AppBoth(a, b, math.Pow)
}

// Round, Floor, Ceil apply the matching math function to every event.
func Round(p Pattern[float64]) Pattern[float64] { return Fmap(p, math.Round) }
func Floor(p Pattern[float64]) Pattern[float64] { return Fmap(p, math.Floor) }
func Ceil(p Pattern[float64]) Pattern[float64]  { return Fmap(p, math.Ceil) }

// RangeFn maps p's assumed-[0,1] values onto [lo,hi].
func RangeFn(lo, hi float64, p Pattern[float64]) Pattern[float64] {
	return Fmap(p, func(v float64) float64 { return lo + v*(hi-lo) })
}

// RangeX is RangeFn with an exponential (logarithmic) curve, suitable for
// frequency/cutoff-style parameters where linear 0..1 feels wrong.
func RangeX(lo, hi float64, p Pattern[float64]) Pattern[float64] {
	if lo <= 0 || hi <= 0 {
		return RangeFn(lo, hi, p)
	}
	logLo, logHi := math.Log(lo), math.Log(hi)
	return Fmap(p, func(v float64) float64 { return math.Exp(logLo + v*(logHi-logLo)) })
}

// Quantize snaps each value to the nearest multiple of 1/steps.
func Quantize(steps int, p Pattern[float64]) Pattern[float64] {
	if steps <= 0 {
		return p
	}
	return Fmap(p, func(v float64) float64 {
		return math.Round(v*float64(steps)) / float64(steps)
	})
}

// Smooth linearly interpolates between each event's value and the next
// event's value across the event's own span, turning a stepped pattern
// into a continuously-varying signal suitable for driving a Signal node.
func Smooth(p Pattern[float64]) Pattern[float64] {
	return New(func(span timemodel.Span) []Hap[float64] {
		lookahead := timemodel.Span{Begin: span.Begin, End: span.End + timemodel.CyclePos(timemodel.Resolution)}
		events := SortedByPartBegin(p.QueryCycleSplit(lookahead))
		var out []Hap[float64]
		for i, h := range events {
			if h.Part.Begin < span.Begin && h.Part.End <= span.Begin {
				continue
			}
			if h.Part.Begin >= span.End {
				continue
			}
			next := h.Value
			if i+1 < len(events) {
				next = events[i+1].Value
			}
			start := h.WholeOrPart()
			length := start.Length()
			out = append(out, Hap[float64]{
				Whole: h.Whole, Part: h.Part,
				Value:   h.Value,
				Context: interpContext(h.Value, next, length),
			})
		}
		return out
	})
}

func interpContext(from, to float64, length timemodel.CyclePos) map[string]string {
	return map[string]string{"smooth_from": formatFloat(from), "smooth_to": formatFloat(to), "smooth_len": formatFloat(length.Float())}
}

// Walk produces a random walk: each step adds a bounded random delta to the
// previous value, clamped to [lo,hi]. Deterministic per cycle/step like all
// other randomness sources.
func Walk(lo, hi, stepSize float64) Pattern[float64] {
	return New(func(span timemodel.Span) []Hap[float64] {
		cycle := span.Begin.CycleIndex()
		idx := stepIndexOf(span)
		v := lo
		for i := int64(0); i <= idx; i++ {
			delta := (randFloat(cycle, i, 0xA17C) - 0.5) * 2 * stepSize
			v += delta
			if v < lo {
				v = lo
			}
			if v > hi {
				v = hi
			}
		}
		return []Hap[float64]{{Part: span, Value: v, Context: map[string]string{}}}
	})
}

// Humanize adds small deterministic per-event timing jitter (up to
// +-amount cycles) and gain jitter (up to +-amount*0.1), the kind of
// micro-variation a live drummer has and a quantized sequencer lacks.
func Humanize(amount float64, p Pattern[string]) Pattern[string] {
	return New(func(span timemodel.Span) []Hap[string] {
		in := p.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			cycle := h.Part.Begin.CycleIndex()
			jitterTime := (randFloat(cycle, stepIndexOf(h.Part), 0x4017) - 0.5) * 2 * amount
			jitterGain := (randFloat(cycle, stepIndexOf(h.Part), 0x4018) - 0.5) * 2 * amount * 0.1
			shift := timemodel.FromFloat(jitterTime)
			nh := h.withTime(func(t timemodel.CyclePos) timemodel.CyclePos { return t + shift })
			gain := 1.0
			if raw, ok := nh.Context["gain"]; ok {
				if v, err := parseFloat(raw); err == nil {
					gain = v
				}
			}
			out[i] = nh.WithContext("gain", formatFloat(gain+jitterGain))
		}
		return out
	})
}
