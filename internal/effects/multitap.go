package effects

// MultiTap is a single ring buffer read at several fixed offsets with
// independent gains, summed into the wet signal -- a rhythmic-echo effect
// distinct from Delay's single feedback tap. Grounded on Delay's ring
// buffer and position bookkeeping, generalized from one read point to N.
type MultiTap struct {
	buf      []float32
	pos      int
	tapDelay []int
	tapGain  []float32
	feedback float32
	wet      float32
}

// NewMultiTap creates a multi-tap delay.
// tapMs: delay time of each tap in milliseconds, earliest-to-latest order
// tapGains: per-tap gain, same length as tapMs
// feedback: feedback amount applied to the longest tap, 0..1
// wet: wet/dry mix 0..1
func NewMultiTap(sampleRate int, tapMs []float64, tapGains []float32, feedback, wet float32) *MultiTap {
	maxSamples := 1
	taps := make([]int, len(tapMs))
	for i, ms := range tapMs {
		n := int(ms * float64(sampleRate) / 1000.0)
		if n < 1 {
			n = 1
		}
		taps[i] = n
		if n > maxSamples {
			maxSamples = n
		}
	}
	gains := make([]float32, len(taps))
	copy(gains, tapGains)
	for len(gains) < len(taps) {
		gains = append(gains, 1)
	}
	return &MultiTap{
		buf:      make([]float32, maxSamples+1),
		tapDelay: taps,
		tapGain:  gains,
		feedback: clamp(feedback, 0, 0.95),
		wet:      clamp(wet, 0, 1),
	}
}

// SetFeedback adjusts the feedback amount applied to the longest tap live --
// tap times/gains are fixed at construction since they size the ring buffer.
func (m *MultiTap) SetFeedback(feedback float32) {
	m.feedback = clamp(feedback, 0, 0.95)
}

// SetWet adjusts the wet/dry mix live.
func (m *MultiTap) SetWet(wet float32) {
	m.wet = clamp(wet, 0, 1)
}

func (m *MultiTap) Process(l, r float32) (float32, float32) {
	in := (l + r) * 0.5
	var out float32
	for i, d := range m.tapDelay {
		idx := m.pos - d
		for idx < 0 {
			idx += len(m.buf)
		}
		out += m.buf[idx] * m.tapGain[i]
	}
	var fbTap float32
	if len(m.tapDelay) > 0 {
		longest := m.tapDelay[len(m.tapDelay)-1]
		idx := m.pos - longest
		for idx < 0 {
			idx += len(m.buf)
		}
		fbTap = m.buf[idx]
	}
	m.buf[m.pos] = in + fbTap*m.feedback
	m.pos++
	if m.pos >= len(m.buf) {
		m.pos = 0
	}
	return l*(1-m.wet) + out*m.wet, r*(1-m.wet) + out*m.wet
}

func (m *MultiTap) Reset() {
	for i := range m.buf {
		m.buf[i] = 0
	}
	m.pos = 0
}
