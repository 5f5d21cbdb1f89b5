package pattern

// Every applies f to p once every n cycles (on cycle indices where
// cycle%n==0), leaving p untouched on the others.
func Every[T any](n int, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return EveryOffset(n, 0, f, p)
}

// EveryOffset is Every with the matching cycle shifted by offset.
func EveryOffset[T any](n, offset int, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	if n <= 0 {
		return p
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		m := ((cycle-int64(offset))%int64(n) + int64(n)) % int64(n)
		if m == 0 {
			return f(p)
		}
		return p
	})
}

// WhenMod applies f on cycles where cycle%m >= n (the surface DSL's
// `whenmod n m f`: f applies for the LAST m-n cycles of every window of m).
func WhenMod[T any](n, m int, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	if m <= 0 {
		return p
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		r := ((cycle % int64(m)) + int64(m)) % int64(m)
		if r >= int64(n) {
			return f(p)
		}
		return p
	})
}

// SometimesBy applies f to a probability-chance fraction of events
// (0..1), leaving the rest of p untouched; uses the same per-event
// deterministic seed as DegradeBy so repeated queries agree.
func SometimesBy[T any](chance float64, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	hit, miss := splitByChance(p, chance)
	return Stack([]Pattern[T]{f(hit), miss})
}

// Sometimes applies f to roughly half of p's events.
func Sometimes[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return SometimesBy(0.5, f, p)
}

// Often applies f to roughly 75% of events.
func Often[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return SometimesBy(0.75, f, p)
}

// Rarely applies f to roughly 25% of events.
func Rarely[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return SometimesBy(0.25, f, p)
}

// AlmostAlways applies f to roughly 90% of events.
func AlmostAlways[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return SometimesBy(0.9, f, p)
}

// AlmostNever applies f to roughly 10% of events.
func AlmostNever[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return SometimesBy(0.1, f, p)
}

// Always applies f to every event (chance 1); kept for DSL name parity.
func Always[T any](f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return f(p)
}

// Never never applies f; kept for DSL name parity.
func Never[T any](_ func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return p
}

// Chunk divides each cycle into n parts and applies f to a different part
// each cycle, cycling with period n, advancing forward through the parts.
func Chunk[T any](n int, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return chunkWith(n, f, p, false)
}

// ChunkBack is Chunk but advancing backward through the parts.
func ChunkBack[T any](n int, f func(Pattern[T]) Pattern[T], p Pattern[T]) Pattern[T] {
	return chunkWith(n, f, p, true)
}

func chunkWith[T any](n int, f func(Pattern[T]) Pattern[T], p Pattern[T], backward bool) Pattern[T] {
	if n <= 0 {
		return p
	}
	return WhenCycle(func(cycle int64) Pattern[T] {
		i := ((cycle % int64(n)) + int64(n)) % int64(n)
		if backward {
			i = int64(n) - 1 - i
		}
		begin := float64(i) / float64(n)
		end := float64(i+1) / float64(n)
		return Within(begin, end, f, p)
	})
}
