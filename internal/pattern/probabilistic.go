package pattern

import (
	"math"

	"github.com/ekg/phonon-sub005/internal/timemodel"
)

// splitmix64 is a fast, well-distributed hash used to turn
// (cycle_index, step_index, salt) into a deterministic pseudo-random
// float64 in [0,1). Patterns never read a global RNG: every draw is a pure
// function of its event's position, satisfying spec.md §3's "repeated
// queries of the same span must return identical values" invariant.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

func seedFrom(parts ...int64) uint64 {
	h := uint64(0x2545F4914F6CDD1D)
	for _, p := range parts {
		h = splitmix64(h ^ uint64(p))
	}
	return h
}

func randFloat(parts ...int64) float64 {
	h := seedFrom(parts...)
	return float64(h>>11) / float64(1<<53)
}

// stepIndexOf derives a stable integer step index from an event's part
// begin, at tick granularity, so two events starting at the same point
// within a cycle (across different queries) draw the same random value.
func stepIndexOf(s timemodel.Span) int64 {
	return int64(timemodel.CycleLocal(s.Begin))
}

// Rand produces a continuous stream of pseudo-random float64 values in
// [0,1), one evaluated per queried point, seeded by cycle index and
// position -- the pattern-valued analogue of a per-sample noise signal.
func Rand() Pattern[float64] {
	return New(func(span timemodel.Span) []Hap[float64] {
		cycle := span.Begin.CycleIndex()
		v := randFloat(cycle, stepIndexOf(span), 0)
		return []Hap[float64]{{Part: span, Value: v, Context: map[string]string{}}}
	})
}

// IRand produces integers in [0, maxVal) with the same determinism as Rand.
func IRand(maxVal int) Pattern[int] {
	return Fmap(Rand(), func(v float64) int {
		if maxVal <= 0 {
			return 0
		}
		return int(v * float64(maxVal))
	})
}

// Perlin returns smoothly interpolated noise in roughly [-1,1], built from
// seeded random values at integer cycle control points with smoothstep
// interpolation between them -- enough texture for slow modulation without
// a full Perlin-noise implementation.
func Perlin() Pattern[float64] {
	return New(func(span timemodel.Span) []Hap[float64] {
		t := span.Begin.Float()
		i0 := math.Floor(t)
		frac := t - i0
		a := randFloat(int64(i0), 0, 0xA11CE)*2 - 1
		b := randFloat(int64(i0)+1, 0, 0xA11CE)*2 - 1
		smooth := frac * frac * (3 - 2*frac)
		v := a + (b-a)*smooth
		return []Hap[float64]{{Part: span, Value: v, Context: map[string]string{}}}
	})
}

// DegradeBy removes each event of p with probability chance (0..1),
// independently per event but deterministically: the same span always
// drops the same events.
func DegradeBy[T any](chance float64, p Pattern[T]) Pattern[T] {
	keep, _ := splitByChance(p, 1-chance)
	return keep
}

// Degrade removes roughly half of p's events (DegradeBy 0.5).
func Degrade[T any](p Pattern[T]) Pattern[T] {
	return DegradeBy(0.5, p)
}

// Undegrade is the complement of DegradeBy: it keeps only the events
// DegradeBy would have dropped.
func Undegrade[T any](chance float64, p Pattern[T]) Pattern[T] {
	_, dropped := splitByChance(p, 1-chance)
	return dropped
}

// DegradeSeed is DegradeBy with an explicit salt instead of the default 0,
// so two degrade calls over the same pattern can be decorrelated.
func DegradeSeed[T any](chance float64, seed int64, p Pattern[T]) Pattern[T] {
	keep, _ := splitByChanceSeeded(p, 1-chance, seed)
	return keep
}

// splitByChance partitions p's events into "hit" (kept with probability
// chance) and "miss" (the complement), using the default seed salt.
func splitByChance[T any](p Pattern[T], chance float64) (hit, miss Pattern[T]) {
	return splitByChanceSeeded(p, chance, 0)
}

func splitByChanceSeeded[T any](p Pattern[T], chance float64, salt int64) (hit, miss Pattern[T]) {
	draw := func(h Hap[T]) float64 {
		cycle := h.Part.Begin.CycleIndex()
		return randFloat(cycle, stepIndexOf(h.Part), salt)
	}
	hit = FilterHaps(p, func(h Hap[T]) bool { return draw(h) < chance })
	miss = FilterHaps(p, func(h Hap[T]) bool { return draw(h) >= chance })
	return hit, miss
}

// Choose returns a pattern that picks pseudo-randomly among vs at each
// query point (one value per queried point, like Rand but over a
// discrete set).
func Choose[T any](vs []T) Pattern[T] {
	return ChooseWith(Rand(), vs)
}

// ChooseWith selects from vs using rate as the [0,1) selector pattern
// instead of the default Rand source.
func ChooseWith[T any](rate Pattern[float64], vs []T) Pattern[T] {
	if len(vs) == 0 {
		return Silence[T]()
	}
	return Fmap(rate, func(r float64) T {
		idx := int(r * float64(len(vs)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(vs) {
			idx = len(vs) - 1
		}
		return vs[idx]
	})
}
