// Package program loads the on-disk representation `cmd/phonon` consumes
// into an ir.Program. spec.md §1 puts the surface DSL parser/compiler (the
// `~name $ expr # f args` language of §6.2) out of scope and specifies only
// the IR shape a compiler must emit (§6.1); this package is the concrete
// seam on this side of that boundary -- it reads a JSON document that is
// literally that IR shape (nodes, params, signals) serialized, plus mini-
// notation strings for Sample patterns, which spec.md §4.3 *does* put in
// scope. Grounded on the teacher's internal/mml: a small loader turning a
// textual source into the typed Score the engine runs, generalized here
// from MML text to a JSON IR document since the grammar itself is
// out-of-scope but loading a compiler's output is not.
package program

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ekg/phonon-sub005/internal/ir"
	"github.com/ekg/phonon-sub005/internal/mininotation"
	"github.com/ekg/phonon-sub005/internal/pattern"
)

// Doc is the JSON document shape a file passed to `phonon render`/`phonon
// live` must have. Field names mirror ir.Program/ir.NodeSpec directly.
type Doc struct {
	Cps     float64     `json:"cps"`
	Nodes   []NodeDoc   `json:"nodes"`
	Outputs []OutputDoc `json:"outputs"`
	Master  *ir.NodeID  `json:"master,omitempty"`
}

// NodeDoc is one ir.NodeSpec, with Params as raw SignalDocs and an optional
// Sample block for KindSample nodes.
type NodeDoc struct {
	ID         ir.NodeID            `json:"id"`
	Kind       ir.SignalNodeKind    `json:"kind"`
	Osc        ir.OscKind           `json:"osc,omitempty"`
	Noise      ir.NoiseKind         `json:"noise,omitempty"`
	Params     map[string]SignalDoc `json:"params,omitempty"`
	Sample     *SampleDoc           `json:"sample,omitempty"`
	IsFeedback bool                 `json:"is_feedback,omitempty"`
}

// SampleDoc is the JSON form of ir.SampleParams: a mini-notation string
// plus the articulation signals spec.md §3's context map names.
type SampleDoc struct {
	Pattern string               `json:"pattern"`
	Gain    *SignalDoc           `json:"gain,omitempty"`
	Pan     *SignalDoc           `json:"pan,omitempty"`
	Speed   *SignalDoc           `json:"speed,omitempty"`
	Cut     *SignalDoc           `json:"cut,omitempty"`
	Attack  *SignalDoc           `json:"attack,omitempty"`
	Release *SignalDoc           `json:"release,omitempty"`
	Begin   *SignalDoc           `json:"begin,omitempty"`
	End     *SignalDoc           `json:"end,omitempty"`
	Legato  *SignalDoc           `json:"legato,omitempty"`
}

// SignalDoc is the JSON form of ir.Signal's three variants: a bare number
// decodes as Const; {"node": id} as a node reference; {"pattern": "0 1 .5"}
// as a mini-notation string compiled and parsed into floats per event.
type SignalDoc struct {
	Const   *float64   `json:"const,omitempty"`
	Node    *ir.NodeID `json:"node,omitempty"`
	Pattern *string    `json:"pattern,omitempty"`
}

// UnmarshalJSON lets a SignalDoc be written as a bare JSON number in
// addition to the {"const":...}/{"node":...}/{"pattern":...} object forms,
// so `"cutoff": 800` works without the caller spelling out `{"const":800}`.
func (s *SignalDoc) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		return nil
	}
	if len(trimmed) > 0 && (trimmed[0] == '-' || trimmed[0] == '+' || (trimmed[0] >= '0' && trimmed[0] <= '9')) {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		s.Const = &v
		return nil
	}
	type raw SignalDoc
	return json.Unmarshal(data, (*raw)(s))
}

// OutputDoc pairs an output bus slot name with the node feeding it.
type OutputDoc struct {
	Slot string    `json:"slot"`
	Node ir.NodeID `json:"node"`
}

// LoadFile reads and compiles path into an ir.Program ready for
// graph.Build.
func LoadFile(path string) (ir.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Program{}, fmt.Errorf("program: read %s: %w", path, err)
	}
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ir.Program{}, fmt.Errorf("program: parse %s: %w", path, err)
	}
	return doc.Compile()
}

// Compile turns a parsed Doc into an ir.Program, compiling every mini-
// notation string it contains along the way.
func (d Doc) Compile() (ir.Program, error) {
	prog := ir.Program{
		Cps:    d.Cps,
		Buses:  map[string]ir.NodeID{},
		Master: d.Master,
	}
	for _, nd := range d.Nodes {
		spec := ir.NodeSpec{
			ID:         nd.ID,
			Kind:       nd.Kind,
			OscKind:    nd.Osc,
			NoiseKind:  nd.Noise,
			IsFeedback: nd.IsFeedback,
		}
		if len(nd.Params) > 0 {
			spec.Params = make(map[string]ir.Signal, len(nd.Params))
			for name, sd := range nd.Params {
				sig, err := sd.toSignal()
				if err != nil {
					return ir.Program{}, fmt.Errorf("program: node %d param %q: %w", nd.ID, name, err)
				}
				spec.Params[name] = sig
			}
		}
		if nd.Kind == ir.KindSample {
			sp, err := nd.Sample.toSampleParams()
			if err != nil {
				return ir.Program{}, fmt.Errorf("program: node %d sample: %w", nd.ID, err)
			}
			spec.Sample = sp
		}
		prog.Nodes = append(prog.Nodes, spec)
	}
	for _, out := range d.Outputs {
		node := out.Node
		prog.Outputs = append(prog.Outputs, ir.OutputBinding{Slot: ir.OutputSlot(out.Slot), Node: node})
		if strings.HasPrefix(out.Slot, "~") {
			if ir.ReservedBusNames[out.Slot] {
				return ir.Program{}, fmt.Errorf("program: %q is a reserved bus name", out.Slot)
			}
			prog.Buses[out.Slot] = node
		}
	}
	return prog, nil
}

func (s *SignalDoc) toSignal() (ir.Signal, error) {
	if s == nil {
		return ir.ConstSignal(0), nil
	}
	switch {
	case s.Const != nil:
		return ir.ConstSignal(*s.Const), nil
	case s.Node != nil:
		return ir.NodeSignal(*s.Node), nil
	case s.Pattern != nil:
		p, err := numericPattern(*s.Pattern)
		if err != nil {
			return ir.Signal{}, err
		}
		return ir.PatternSignal(p), nil
	default:
		return ir.ConstSignal(0), nil
	}
}

// numericPattern parses a mini-notation string whose atoms are numbers
// (e.g. "0 0.5 1 <200 800>") into a Pattern[float64], reusing the
// string-grammar mini-notation parser per spec.md §4.3 rather than writing
// a second numeric grammar -- every mini-notation structural feature
// (groups, alternation, euclid, degrade) works for numeric parameters too.
func numericPattern(src string) (pattern.Pattern[float64], error) {
	p, err := mininotation.Parse(src)
	if err != nil {
		return pattern.Pattern[float64]{}, fmt.Errorf("numeric pattern %q: %w", src, err)
	}
	strPat := p.Compile()
	return pattern.Fmap(strPat, func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}), nil
}

func (s *SampleDoc) toSampleParams() (*ir.SampleParams, error) {
	if s == nil {
		return nil, fmt.Errorf("sample node missing \"sample\" block")
	}
	mn, err := mininotation.Parse(s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", s.Pattern, err)
	}
	sp := &ir.SampleParams{Pattern: mn.Compile()}
	fields := []struct {
		doc *SignalDoc
		dst *ir.Signal
	}{
		{s.Gain, &sp.Gain},
		{s.Pan, &sp.Pan},
		{s.Speed, &sp.Speed},
		{s.Cut, &sp.Cut},
		{s.Attack, &sp.Attack},
		{s.Release, &sp.Release},
		{s.Begin, &sp.Begin},
		{s.End, &sp.End},
		{s.Legato, &sp.Legato},
	}
	for _, f := range fields {
		sig, err := f.doc.toSignal()
		if err != nil {
			return nil, err
		}
		*f.dst = sig
	}
	return sp, nil
}
