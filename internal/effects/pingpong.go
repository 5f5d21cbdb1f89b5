package effects

// PingPong is a stereo delay that bounces between channels: input feeds
// the left line, the left line's output feeds the right line on its next
// repeat, and vice versa, instead of Delay's same-channel feedback path.
// Grounded on Delay's single ring-buffer-plus-feedback shape, split into
// two cross-feeding lines.
type PingPong struct {
	bufL, bufR []float32
	pos        int
	feedback   float32
	wet        float32
}

// NewPingPong creates a ping-pong delay.
// delayMs: time between successive bounces, in milliseconds
// feedback: how much of each bounce carries into the next, 0..1
// wet: wet/dry mix 0..1
func NewPingPong(sampleRate int, delayMs float64, feedback, wet float32) *PingPong {
	samples := int(delayMs * float64(sampleRate) / 1000.0)
	if samples < 1 {
		samples = 1
	}
	return &PingPong{
		bufL:     make([]float32, samples),
		bufR:     make([]float32, samples),
		feedback: clamp(feedback, 0, 0.95),
		wet:      clamp(wet, 0, 1),
	}
}

// SetFeedback adjusts the cross-feed amount live -- delayMs is fixed at
// construction since it sizes the ring buffers.
func (p *PingPong) SetFeedback(feedback float32) {
	p.feedback = clamp(feedback, 0, 0.95)
}

// SetWet adjusts the wet/dry mix live.
func (p *PingPong) SetWet(wet float32) {
	p.wet = clamp(wet, 0, 1)
}

func (p *PingPong) Process(l, r float32) (float32, float32) {
	in := (l + r) * 0.5
	delL := p.bufL[p.pos]
	delR := p.bufR[p.pos]
	// Left line is fed by the right line's previous output, and vice versa
	// -- this cross-feed is what makes the repeats alternate channels.
	p.bufL[p.pos] = in + delR*p.feedback
	p.bufR[p.pos] = delL * p.feedback
	p.pos++
	if p.pos >= len(p.bufL) {
		p.pos = 0
	}
	return l*(1-p.wet) + delL*p.wet, r*(1-p.wet) + delR*p.wet
}

func (p *PingPong) Reset() {
	for i := range p.bufL {
		p.bufL[i] = 0
		p.bufR[i] = 0
	}
	p.pos = 0
}
