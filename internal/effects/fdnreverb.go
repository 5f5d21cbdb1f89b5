package effects

// FdnReverb is a feedback delay network reverb: N delay lines cross-fed
// through a Hadamard mixing matrix instead of the four parallel combs
// Reverb uses. A Hadamard matrix is trivial to build (+1/-1, no
// multiplies) and is losslessly orthogonal, which keeps the network
// stable across a wide range of feedback gains -- useful for the longer,
// denser tails spec.md's effect-node table asks FdnReverb to produce
// versus the shorter Schroeder-style Reverb. Grounded on Reverb's
// combFilter (same delay-line-plus-feedback shape), generalized from 4
// fixed parallel lines to N cross-coupled ones.
type FdnReverb struct {
	lines [8]fdnLine
	wet   float32
	decay float32
}

type fdnLine struct {
	buf []float32
	pos int
}

// NewFdnReverb creates an 8-line FDN reverb.
// roomSize: 0..1 controls delay line lengths (tail density/size)
// decay: 0..1 controls feedback gain (tail length)
// wet: wet/dry mix 0..1
func NewFdnReverb(sampleRate int, roomSize, decay, wet float32) *FdnReverb {
	base := int(float32(sampleRate) * roomSize * 0.08)
	if base < 16 {
		base = 16
	}
	// Mutually-prime-ish ratios, same spirit as Reverb's combLens, spread
	// across 8 lines instead of 4 so the Hadamard mix has more to diffuse.
	ratios := [8]int{1000, 1117, 1271, 1437, 1559, 1661, 1783, 1931}
	r := &FdnReverb{wet: clamp(wet, 0, 1), decay: clamp(decay, 0, 0.98)}
	for i := range r.lines {
		n := base * ratios[i] / 1000
		if n < 1 {
			n = 1
		}
		r.lines[i] = fdnLine{buf: make([]float32, n)}
	}
	return r
}

// SetDecay adjusts the feedback gain applied to each line live -- roomSize
// is fixed at construction since it sets the delay line lengths themselves.
func (r *FdnReverb) SetDecay(decay float32) {
	r.decay = clamp(decay, 0, 0.98)
}

// SetWet adjusts the wet/dry mix live.
func (r *FdnReverb) SetWet(wet float32) {
	r.wet = clamp(wet, 0, 1)
}

func (r *FdnReverb) Process(l, r2 float32) (float32, float32) {
	in := (l + r2) * 0.5
	var out [8]float32
	for i := range r.lines {
		out[i] = r.lines[i].buf[r.lines[i].pos]
	}
	mixed := hadamard8(out)
	var sum float32
	for i := range r.lines {
		r.lines[i].buf[r.lines[i].pos] = in + mixed[i]*r.decay
		r.lines[i].pos++
		if r.lines[i].pos >= len(r.lines[i].buf) {
			r.lines[i].pos = 0
		}
		sum += out[i]
	}
	wetOut := sum * 0.125
	return l*(1-r.wet) + wetOut*r.wet, r2*(1-r.wet) + wetOut*r.wet
}

func (r *FdnReverb) Reset() {
	for i := range r.lines {
		for j := range r.lines[i].buf {
			r.lines[i].buf[j] = 0
		}
		r.lines[i].pos = 0
	}
}

// hadamard8 applies a normalized (1/sqrt(8)) order-8 Hadamard transform, the
// standard feedback matrix for an 8-line FDN (Jot/Schroeder topology).
func hadamard8(v [8]float32) [8]float32 {
	a := v
	for step := 1; step < 8; step *= 2 {
		for i := 0; i < 8; i += step * 2 {
			for j := i; j < i+step; j++ {
				x, y := a[j], a[j+step]
				a[j] = x + y
				a[j+step] = x - y
			}
		}
	}
	for i := range a {
		a[i] *= 0.3535534 // 1/sqrt(8), keeps the matrix orthonormal
	}
	return a
}
