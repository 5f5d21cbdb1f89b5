package pattern

import "github.com/ekg/phonon-sub005/internal/timemodel"

// Cat plays one pattern per cycle, cycling through ps with period len(ps)
// (Tidal's `<a b c>` / `cat`).
func Cat[T any](ps []Pattern[T]) Pattern[T] {
	if len(ps) == 0 {
		return Silence[T]()
	}
	n := int64(len(ps))
	return WhenCycle(func(cycle int64) Pattern[T] {
		idx := ((cycle % n) + n) % n
		return ps[idx]
	})
}

// SlowCat is an alias for Cat kept for surface-DSL naming parity (`slowcat`
// plays each pattern across a whole cycle, same as Cat).
func SlowCat[T any](ps []Pattern[T]) Pattern[T] {
	return Cat(ps)
}

// FastCat plays all of ps within a single cycle, each taking an equal
// 1/len(ps) fraction -- this is mini-notation's default sequencing.
func FastCat[T any](ps []Pattern[T]) Pattern[T] {
	if len(ps) == 0 {
		return Silence[T]()
	}
	return FastConst(float64(len(ps)), Cat(ps))
}

// WeightedStep pairs a pattern with its relative width for TimeCat.
type WeightedStep[T any] struct {
	Weight  float64
	Pattern Pattern[T]
}

// TimeCat sequences steps within one cycle proportionally to their weights
// (mini-notation's `a@2 b` style unequal-width sequencing).
func TimeCat[T any](steps []WeightedStep[T]) Pattern[T] {
	total := 0.0
	for _, s := range steps {
		total += s.Weight
	}
	if total <= 0 {
		return Silence[T]()
	}
	var pats []Pattern[T]
	cursor := 0.0
	for _, s := range steps {
		begin := cursor / total
		cursor += s.Weight
		end := cursor / total
		pats = append(pats, CompressConst(begin, end, s.Pattern))
	}
	return Stack(pats)
}

// Stack overlays all of ps so every event from every pattern sounds
// together.
func Stack[T any](ps []Pattern[T]) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		var out []Hap[T]
		for _, p := range ps {
			out = append(out, p.Query(span)...)
		}
		return out
	})
}

// Layer applies each function in fs to p and stacks the results
// (`layer [f,g] p` == `stack [f p, g p]`).
func Layer[T any](fs []func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	out := make([]Pattern[T], len(fs))
	for i, f := range fs {
		out[i] = f(p)
	}
	return Stack(out)
}

// Append concatenates a onto b, one cycle each, alternating (`append` ==
// `cat [a,b]`).
func Append[T any](a, b Pattern[T]) Pattern[T] {
	return Cat([]Pattern[T]{a, b})
}

// Overlay is an alias kept for DSL naming parity (`overlay p` == stack of
// two copies of the context pattern and p; callers supply both operands).
func Overlay[T any](a, b Pattern[T]) Pattern[T] {
	return Stack([]Pattern[T]{a, b})
}

// StructBool replays values from p at the onsets of a boolean pattern:
// true events trigger, false events are dropped. This gives a rhythm
// pattern ("t f t t") control over which cycle-steps of p sound, sampling
// p's value at each true step's onset rather than replaying all of p's
// events within that step.
func StructBool[T any](boolPat Pattern[bool], p Pattern[T]) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		var out []Hap[T]
		for _, bh := range boolPat.Query(span) {
			if !bh.Value || !bh.HasOnset() {
				continue
			}
			sampleAt := timemodel.Span{Begin: bh.Part.Begin, End: bh.Part.Begin + 1}
			values := p.Query(sampleAt)
			if len(values) == 0 {
				continue
			}
			out = append(out, Hap[T]{
				Whole:   bh.Whole,
				Part:    bh.Part,
				Value:   values[0].Value,
				Context: mergeContexts(values[0].Context, bh.Context),
			})
		}
		return out
	})
}

// Mask keeps only the parts of p that overlap a "true" event of boolPat,
// silencing the rest -- unlike StructBool it crops rather than replaces
// timing.
func Mask[T any](boolPat Pattern[bool], p Pattern[T]) Pattern[T] {
	return New(func(span timemodel.Span) []Hap[T] {
		gates := boolPat.Query(span)
		var out []Hap[T]
		for _, h := range p.Query(span) {
			for _, g := range gates {
				if !g.Value {
					continue
				}
				if part, ok := h.Part.Intersect(g.Part); ok {
					nh := h
					nh.Part = part
					out = append(out, nh)
				}
			}
		}
		return out
	})
}

// Euclid generates a Euclidean rhythm boolean pattern of n steps with k
// onsets, using the standard Bjorklund distribution, rotated by rot steps.
func Euclid(k, n, rot int) Pattern[bool] {
	if n <= 0 {
		return Silence[bool]()
	}
	pattern := bjorklund(k, n)
	if rot != 0 && n > 0 {
		r := ((rot % n) + n) % n
		pattern = append(pattern[r:], pattern[:r]...)
	}
	steps := make([]WeightedStep[bool], n)
	for i, on := range pattern {
		steps[i] = WeightedStep[bool]{Weight: 1, Pattern: Pure(on)}
	}
	return TimeCat(steps)
}

// EuclidOn applies a Euclidean rhythm as structure over p via StructBool.
func EuclidOn[T any](k, n, rot int, p Pattern[T]) Pattern[T] {
	return StructBool(Euclid(k, n, rot), p)
}

// bjorklund implements the standard Euclidean-rhythm distribution
// algorithm: k onsets spread as evenly as possible across n steps.
func bjorklund(k, n int) []bool {
	if n <= 0 {
		return nil
	}
	if k <= 0 {
		return make([]bool, n)
	}
	if k >= n {
		out := make([]bool, n)
		for i := range out {
			out[i] = true
		}
		return out
	}
	groups := make([][]bool, k)
	for i := range groups {
		groups[i] = []bool{true}
	}
	remainders := make([][]bool, n-k)
	for i := range remainders {
		remainders[i] = []bool{false}
	}
	for len(remainders) > 1 {
		m := len(groups)
		if len(remainders) < m {
			m = len(remainders)
		}
		var newGroups [][]bool
		for i := 0; i < m; i++ {
			newGroups = append(newGroups, append(append([]bool{}, groups[i]...), remainders[i]...))
		}
		var leftoverGroups [][]bool
		if len(groups) > m {
			leftoverGroups = groups[m:]
		}
		var leftoverRemainders [][]bool
		if len(remainders) > m {
			leftoverRemainders = remainders[m:]
		}
		groups = newGroups
		remainders = leftoverGroups
		if len(leftoverRemainders) > 0 {
			remainders = append(remainders, leftoverRemainders...)
		}
		if len(remainders) <= 1 {
			break
		}
	}
	var out []bool
	for _, g := range groups {
		out = append(out, g...)
	}
	for _, r := range remainders {
		out = append(out, r...)
	}
	return out
}
