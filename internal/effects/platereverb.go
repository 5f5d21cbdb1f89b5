package effects

// PlateReverb is a denser, brighter cousin of Reverb: input first passes
// through a chain of allpass diffusers (smearing transients without
// coloring the spectrum) before hitting the comb bank, the classic
// Dattorro/plate topology. Reverb feeds the comb bank directly; this is
// the one structural difference. Grounded on Reverb's own combFilter and
// allpassFilter types, reused here rather than duplicated.
type PlateReverb struct {
	diffusers [4]allpassFilter
	combs     [4]combFilter
	wet       float32
}

// NewPlateReverb creates a plate-style reverb.
// roomSize: 0..1 controls comb/diffuser delay lengths
// feedback: 0..1 controls comb decay time
// wet: wet/dry mix 0..1
func NewPlateReverb(sampleRate int, roomSize, feedback, wet float32) *PlateReverb {
	base := int(float32(sampleRate) * roomSize * 0.03)
	if base < 8 {
		base = 8
	}
	fb := clamp(feedback, 0, 0.95)
	p := &PlateReverb{wet: clamp(wet, 0, 1)}
	diffLens := [4]int{base * 142 / 100, base * 107 / 100, base * 379 / 100, base * 277 / 100}
	for i := range p.diffusers {
		p.diffusers[i] = allpassFilter{buf: make([]float32, maxInt(diffLens[i], 1)), fb: 0.625}
	}
	combLens := [4]int{base * 971 / 100, base * 1063 / 100, base * 1129 / 100, base * 1217 / 100}
	for i := range p.combs {
		p.combs[i] = combFilter{buf: make([]float32, maxInt(combLens[i], 1)), fb: fb}
	}
	return p
}

// SetFeedback adjusts the comb bank's feedback coefficient live -- roomSize
// is fixed at construction since it sets the diffuser/comb buffer lengths.
func (p *PlateReverb) SetFeedback(feedback float32) {
	fb := clamp(feedback, 0, 0.95)
	for i := range p.combs {
		p.combs[i].fb = fb
	}
}

// SetWet adjusts the wet/dry mix live.
func (p *PlateReverb) SetWet(wet float32) {
	p.wet = clamp(wet, 0, 1)
}

func (p *PlateReverb) Process(l, r float32) (float32, float32) {
	mono := (l + r) * 0.5
	diffused := mono
	for i := range p.diffusers {
		diffused = p.diffusers[i].process(diffused)
	}
	var out float32
	for i := range p.combs {
		out += p.combs[i].process(diffused)
	}
	out *= 0.25
	return l*(1-p.wet) + out*p.wet, r*(1-p.wet) + out*p.wet
}

func (p *PlateReverb) Reset() {
	for i := range p.diffusers {
		for j := range p.diffusers[i].buf {
			p.diffusers[i].buf[j] = 0
		}
		p.diffusers[i].pos = 0
	}
	for i := range p.combs {
		for j := range p.combs[i].buf {
			p.combs[i].buf[j] = 0
		}
		p.combs[i].pos = 0
	}
}
