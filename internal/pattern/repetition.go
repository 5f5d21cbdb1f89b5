package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// StutterConst repeats each event n times within its own slot, each repeat
// equally spaced and shortened.
func StutterConst[T any](n int, p Pattern[T]) Pattern[T] {
	if n <= 1 {
		return p
	}
	return SqueezeBind(p, func(v T) Pattern[T] {
		return FastConst(float64(n), Pure(v))
	})
}

// PlyConst is an alias for StutterConst kept for DSL naming parity.
func PlyConst[T any](n int, p Pattern[T]) Pattern[T] {
	return StutterConst(n, p)
}

// Ply is the patternified form of PlyConst.
func Ply[T any](n Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(n, func(r float64, p Pattern[T]) Pattern[T] {
		return PlyConst(int(r+0.5), p)
	}, p)
}

// EchoConst repeats each event n times within its slot, each repeat delayed
// by t cycles from the previous and attenuated by decay (0..1) per repeat,
// written into the "gain" context key as a multiplier applied on top of
// whatever gain the event already carries.
func EchoConst(n int, t, decay float64, p Pattern[string]) Pattern[string] {
	if n <= 1 {
		return p
	}
	var reps []Pattern[string]
	amp := 1.0
	for i := 0; i < n; i++ {
		rep := LateConst(float64(i)*t, scaleGain(p, amp))
		reps = append(reps, rep)
		amp *= decay
	}
	return Stack(reps)
}

func scaleGain(p Pattern[string], mul float64) Pattern[string] {
	return New(func(span timemodel.Span) []Hap[string] {
		in := p.Query(span)
		out := make([]Hap[string], len(in))
		for i, h := range in {
			gain := 1.0
			if raw, ok := h.Context["gain"]; ok {
				if v, err := parseFloat(raw); err == nil {
					gain = v
				}
			}
			out[i] = h.WithContext("gain", formatFloat(gain*mul))
		}
		return out
	})
}

// LingerConst repeats the first `fraction` of each cycle for the whole
// cycle, looping that slice (fraction in (0,1]).
func LingerConst[T any](fraction float64, p Pattern[T]) Pattern[T] {
	if fraction <= 0 {
		return p
	}
	if fraction > 1 {
		fraction = 1
	}
	return FastConst(1/fraction, ZoomConst(0, fraction, p))
}

// Linger is the patternified form of LingerConst.
func Linger[T any](fraction Pattern[float64], p Pattern[T]) Pattern[T] {
	return Patternify(fraction, LingerConst[T], p)
}
