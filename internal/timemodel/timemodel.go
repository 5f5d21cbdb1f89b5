// Package timemodel provides the rational-like cycle-position arithmetic
// patterns and the signal graph share. A CyclePos counts fixed-point ticks
// of a cycle so that spans of exactly 1/N of a cycle tile with no drift,
// the same way the teacher sequencer's tick-per-sample bookkeeping
// (ticksPerSamp/tickInt/tickFrac) avoided drift over long renders.
package timemodel

import "fmt"

// Resolution is the number of fixed-point ticks in one cycle. It plays the
// role the teacher's mml.ParserConfig.Resolution (1920 ticks/bar) plays for
// note timing, but is a much finer grain so that deeply nested fast/slow
// patterns still land on exact tick boundaries.
const Resolution int64 = 1 << 20

// CyclePos is an exact fixed-point cycle position: value/Resolution cycles.
type CyclePos int64

// FromFloat rounds a float64 cycle count to the nearest tick.
func FromFloat(cycles float64) CyclePos {
	return CyclePos(cycles*float64(Resolution) + sign(cycles)*0.5)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// FromRational builds an exact CyclePos from num/den cycles.
func FromRational(num, den int64) CyclePos {
	if den == 0 {
		return 0
	}
	return CyclePos(num * Resolution / den)
}

// Float returns the position as a float64 number of cycles.
func (p CyclePos) Float() float64 {
	return float64(p) / float64(Resolution)
}

// CycleIndex returns floor(p) as an integer cycle index.
func (p CyclePos) CycleIndex() int64 {
	if p >= 0 {
		return int64(p) / Resolution
	}
	// floor division for negative values
	q := int64(p) / Resolution
	if int64(p)%Resolution != 0 {
		q--
	}
	return q
}

// CycleStart returns the CyclePos at the start of p's containing cycle.
func (p CyclePos) CycleStart() CyclePos {
	return CyclePos(p.CycleIndex() * Resolution)
}

// Add returns p+q.
func (p CyclePos) Add(q CyclePos) CyclePos { return p + q }

// Sub returns p-q.
func (p CyclePos) Sub(q CyclePos) CyclePos { return p - q }

// Mul scales p by a rational factor num/den.
func (p CyclePos) Mul(num, den int64) CyclePos {
	if den == 0 {
		return 0
	}
	return CyclePos(int64(p) * num / den)
}

// ScaleF scales p by a float64 factor. Used by pattern time-transforms
// whose factor is itself pattern-valued (fast/slow/compress with a
// non-rational or dynamically-queried rate).
func (p CyclePos) ScaleF(factor float64) CyclePos {
	return CyclePos(float64(p) * factor)
}

// Cmp returns -1, 0, 1 comparing p to q.
func (p CyclePos) Cmp(q CyclePos) int {
	switch {
	case p < q:
		return -1
	case p > q:
		return 1
	default:
		return 0
	}
}

func (p CyclePos) String() string {
	return fmt.Sprintf("%.6f", p.Float())
}

// Span is a half-open interval [Begin, End) of cycle positions.
type Span struct {
	Begin CyclePos
	End   CyclePos
}

// NewSpan builds a Span, normalizing so Begin <= End.
func NewSpan(begin, end CyclePos) Span {
	if end < begin {
		begin, end = end, begin
	}
	return Span{Begin: begin, End: end}
}

// Length returns End-Begin.
func (s Span) Length() CyclePos { return s.End - s.Begin }

// IsEmpty reports whether the span has zero or negative length.
func (s Span) IsEmpty() bool { return s.End <= s.Begin }

// Intersect returns the overlap of s and other, and whether it is non-empty.
func (s Span) Intersect(other Span) (Span, bool) {
	begin := s.Begin
	if other.Begin > begin {
		begin = other.Begin
	}
	end := s.End
	if other.End < end {
		end = other.End
	}
	if end <= begin {
		return Span{}, false
	}
	return Span{Begin: begin, End: end}, true
}

// Contains reports whether p lies in [Begin, End).
func (s Span) Contains(p CyclePos) bool {
	return p >= s.Begin && p < s.End
}

// WithTime returns a copy of s with both endpoints passed through f.
func (s Span) WithTime(f func(CyclePos) CyclePos) Span {
	return NewSpan(f(s.Begin), f(s.End))
}

// CycleSpans splits s into one Span per whole cycle it touches, each
// normalized to lie within a single cycle. This realizes "split-at-cycle".
func (s Span) CycleSpans() []Span {
	if s.IsEmpty() {
		return nil
	}
	var out []Span
	cur := s.Begin
	for cur < s.End {
		cycleEnd := cur.CycleStart() + CyclePos(Resolution)
		end := s.End
		if cycleEnd < end {
			end = cycleEnd
		}
		out = append(out, Span{Begin: cur, End: end})
		cur = end
	}
	return out
}

// CycleLocal maps a CyclePos within cycle k to its position within [0,1).
func CycleLocal(p CyclePos) CyclePos {
	return p - p.CycleStart()
}

// Tempo holds the process-wide cycle rate. cps == 0 is a valid stopped state.
type Tempo struct {
	CPS float64
}

// SecondsPerCycle returns 1/cps, or +Inf when stopped (cps==0).
func (t Tempo) SecondsPerCycle() float64 {
	if t.CPS <= 0 {
		return 0
	}
	return 1.0 / t.CPS
}

// AdvancePerSample returns how many cycles elapse in one audio sample at sr.
func (t Tempo) AdvancePerSample(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return t.CPS / sampleRate
}
