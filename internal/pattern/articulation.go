package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// WithParam sets context key from valuePat, keeping p's own event
// structure (the left/outer pattern) and sampling valuePat once per p
// event -- the shared primitive behind Gain/Pan/Speed/etc below. Every
// articulation parameter in spec.md §3's context map is "a pattern",
// so these all take a Pattern[float64] rather than a bare float64.
func WithParam(key string, valuePat Pattern[float64], p Pattern[string]) Pattern[string] {
	return New(func(span timemodel.Span) []Hap[string] {
		var out []Hap[string]
		for _, h := range p.Query(span) {
			sampleAt := timemodel.Span{Begin: h.Part.Begin, End: h.Part.Begin + 1}
			vals := valuePat.Query(sampleAt)
			v := 0.0
			if len(vals) > 0 {
				v = vals[0].Value
			}
			out = append(out, h.WithContext(key, formatFloat(v)))
		}
		return out
	})
}

func Gain(v Pattern[float64], p Pattern[string]) Pattern[string]    { return WithParam("gain", v, p) }
func Pan(v Pattern[float64], p Pattern[string]) Pattern[string]     { return WithParam("pan", v, p) }
func Speed(v Pattern[float64], p Pattern[string]) Pattern[string]   { return WithParam("speed", v, p) }
func Cut(v Pattern[float64], p Pattern[string]) Pattern[string]     { return WithParam("cut", v, p) }
func Attack(v Pattern[float64], p Pattern[string]) Pattern[string]  { return WithParam("attack", v, p) }
func Release(v Pattern[float64], p Pattern[string]) Pattern[string] { return WithParam("release", v, p) }
func Begin(v Pattern[float64], p Pattern[string]) Pattern[string]   { return WithParam("begin", v, p) }
func End(v Pattern[float64], p Pattern[string]) Pattern[string]     { return WithParam("end", v, p) }
func Note(v Pattern[float64], p Pattern[string]) Pattern[string]    { return WithParam("note", v, p) }
func N(v Pattern[float64], p Pattern[string]) Pattern[string]       { return WithParam("n", v, p) }

// Legato sets the event's sounding duration as a fraction of its step
// (1.0 = fill the step, cutting cleanly at the boundary; <1 = staccato).
func Legato(fraction Pattern[float64], p Pattern[string]) Pattern[string] {
	return WithParam("legato", fraction, p)
}

// Staccato is Legato with a short, fixed fraction -- a common-case
// convenience over the general Legato transform.
func Staccato(p Pattern[string]) Pattern[string] {
	return Legato(Pure(0.5), p)
}

// Swing delays every other step (odd-indexed, 0-based) by amount cycles,
// the classic "swung eighths" feel.
func Swing(amount float64, p Pattern[string]) Pattern[string] {
	shift := timemodel.FromFloat(amount)
	return New(func(span timemodel.Span) []Hap[string] {
		in := p.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			idx := int64(0)
			if h.Whole != nil && h.Whole.Length() > 0 {
				idx = int64(timemodel.CycleLocal(h.Whole.Begin) / h.Whole.Length())
			}
			if idx%2 == 1 {
				out[i] = h.withTime(func(t timemodel.CyclePos) timemodel.CyclePos { return t + shift })
			} else {
				out[i] = h
			}
		}
		return out
	})
}
