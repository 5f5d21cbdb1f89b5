package graph

import (
	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/voice"
)

// envelopeNode is the standalone `Envelope{trigger, a,d,s,r, state}` signal
// node spec.md §3 names separately from Sample's per-voice envelope: a
// free-running ADSR retriggered by a gate signal crossing zero, usable to
// shape a filter cutoff or any other control-rate parameter. Reuses
// voice.AdsrState directly rather than a parallel envelope implementation,
// since the stage machine (attack ramp to 1, decay to sustain, release ramp
// to 0) is identical; only the trigger source differs.
type envelopeNode struct {
	trigger                *signalSampler
	attack, decay, sustain, release *signalSampler
	env                    voice.AdsrState
	prevTrigger            float64
}

func newEnvelopeNode(spec ir.NodeSpec, param func(string, float64) *signalSampler) *envelopeNode {
	return &envelopeNode{
		trigger: param("trigger", 0),
		attack:  param("a", 0.01),
		decay:   param("d", 0.1),
		sustain: param("s", 0.8),
		release: param("r", 0.2),
		env:     voice.AdsrState{State: voice.EnvOff},
	}
}

func (n *envelopeNode) eval(g *Graph) float32 {
	trig := n.trigger.eval(g)

	n.env.AttackSec = n.attack.eval(g)
	n.env.DecaySec = n.decay.eval(g)
	n.env.SustainLevel = n.sustain.eval(g)
	n.env.ReleaseSec = n.release.eval(g)

	if n.prevTrigger <= 0 && trig > 0 {
		n.env.State = voice.EnvAttack
		n.env.Level = 0
	} else if n.prevTrigger > 0 && trig <= 0 {
		n.env.Release()
	}
	n.prevTrigger = trig

	n.env.Advance(g.sampleRate)
	return float32(n.env.Level)
}
