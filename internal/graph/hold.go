package graph

import (
	"github.com/ekg/phonon-sub005/internal/pattern"
	"github.com/ekg/phonon-sub005/internal/timemodel"
)

// patternHold implements spec.md §4.6 step 3's per-cycle cache-and-scan
// contract generically: re-query the pattern only when the cycle index
// changes, then zero-order-hold the most recent onset's value for the rest
// of the cycle. Sample nodes use the []Hap[string] form directly (they need
// every onset, to trigger a voice per event); patternHold[float64] gives
// continuous Signal patterns ("500 2000 1000" driving a filter cutoff) the
// same per-cycle-cache discipline without re-querying every sample.
type patternHold[T any] struct {
	p           pattern.Pattern[T]
	lastCycle   int64
	cycleEvents []pattern.Hap[T]
	have        bool
	current     T
}

func newPatternHold[T any](p pattern.Pattern[T]) *patternHold[T] {
	return &patternHold[T]{p: p, lastCycle: -1}
}

// sampleAt returns the value held at cyclePos (a float64 count of cycles
// elapsed), re-querying the pattern's containing cycle on a boundary
// crossing and otherwise just scanning the already-cached events.
func (h *patternHold[T]) sampleAt(cyclePos float64) (T, bool) {
	cycleIdx := int64(cyclePos)
	if cyclePos < 0 && float64(cycleIdx) != cyclePos {
		cycleIdx--
	}
	if cycleIdx != h.lastCycle {
		span := timemodel.NewSpan(timemodel.CyclePos(cycleIdx*timemodel.Resolution), timemodel.CyclePos((cycleIdx+1)*timemodel.Resolution))
		h.cycleEvents = pattern.SortedByPartBegin(h.p.Query(span))
		h.lastCycle = cycleIdx
	}
	pos := timemodel.FromFloat(cyclePos)
	var best *pattern.Hap[T]
	for i := range h.cycleEvents {
		e := &h.cycleEvents[i]
		if e.Part.Begin <= pos {
			best = e
		} else {
			break
		}
	}
	if best == nil {
		if !h.have {
			var zero T
			return zero, false
		}
		return h.current, true
	}
	h.current = best.Value
	h.have = true
	return h.current, true
}

// newOnsets returns every event in the cycle currently covering cyclePos
// whose Part.Begin falls within the half-open [cyclePos-deltaCycles,
// cyclePos) window, i.e. since the previous sample -- used by the Sample
// node to trigger voices at most once per onset (spec.md §4.6 step 3c).
func (h *patternHold[T]) newOnsets(cyclePos, deltaCycles float64) []pattern.Hap[T] {
	cycleIdx := int64(cyclePos)
	if cycleIdx != h.lastCycle {
		span := timemodel.NewSpan(timemodel.CyclePos(cycleIdx*timemodel.Resolution), timemodel.CyclePos((cycleIdx+1)*timemodel.Resolution))
		h.cycleEvents = pattern.SortedByPartBegin(h.p.Query(span))
		h.lastCycle = cycleIdx
	}
	from := timemodel.FromFloat(cyclePos - deltaCycles)
	to := timemodel.FromFloat(cyclePos)
	var out []pattern.Hap[T]
	for _, e := range h.cycleEvents {
		if !e.HasOnset() {
			continue
		}
		if e.Part.Begin >= from && e.Part.Begin < to {
			out = append(out, e)
		}
	}
	return out
}
