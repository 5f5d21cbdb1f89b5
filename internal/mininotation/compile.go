package mininotation

import "github.com/ekg/phonon-sub005/internal/pattern"

// Compile turns a parsed Pattern into a pattern.Pattern[string], deferring
// all query-time work to the pattern package -- Parse/Compile never touch
// timemodel directly.
func (p Pattern) Compile() pattern.Pattern[string] {
	return compileNode(p.root)
}

// MustParse parses and compiles in one step, panicking on a malformed
// string -- convenient for literal patterns embedded in Go code/tests.
func MustParse(input string) pattern.Pattern[string] {
	p, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return p.Compile()
}

func compileNode(n node) pattern.Pattern[string] {
	switch v := n.(type) {
	case atomNode:
		name := v.name
		if v.index != "" {
			name = name + ":" + v.index
		}
		return pattern.Pure(name)
	case restNode:
		return pattern.Silence[string]()
	case groupNode:
		if len(v.alternatives) == 1 {
			return compileSeq(v.alternatives[0])
		}
		stacked := make([]pattern.Pattern[string], len(v.alternatives))
		for i, alt := range v.alternatives {
			stacked[i] = compileSeq(alt)
		}
		return pattern.Stack(stacked)
	case choiceNode:
		options := make([]pattern.Pattern[string], len(v.options))
		for i, opt := range v.options {
			options[i] = compileSeq(opt)
		}
		return pattern.Cat(options)
	case polyNode:
		return compilePoly(v.tracks)
	case fastNode:
		return pattern.FastConst(v.factor, compileNode(v.child))
	case slowNode:
		return pattern.SlowConst(v.factor, compileNode(v.child))
	case euclidNode:
		return pattern.EuclidOn(v.k, v.n, v.rot, compileNode(v.child))
	case degradeNode:
		return pattern.DegradeBy(v.chance, compileNode(v.child))
	default:
		return pattern.Silence[string]()
	}
}

func compileSeq(items []seqItem) pattern.Pattern[string] {
	if len(items) == 0 {
		return pattern.Silence[string]()
	}
	steps := make([]pattern.WeightedStep[string], len(items))
	for i, it := range items {
		steps[i] = pattern.WeightedStep[string]{Weight: it.weight, Pattern: compileNode(it.node)}
	}
	return pattern.TimeCat(steps)
}

// compilePoly implements true polymeter: every track steps at the rate set
// by the first track's length (in steps per cycle), each looping through
// its own items independently via modulo indexing.
func compilePoly(tracks [][]seqItem) pattern.Pattern[string] {
	if len(tracks) == 0 {
		return pattern.Silence[string]()
	}
	base := len(tracks[0])
	if base == 0 {
		return pattern.Silence[string]()
	}
	stacked := make([]pattern.Pattern[string], len(tracks))
	for i, track := range tracks {
		m := len(track)
		if m == 0 {
			stacked[i] = pattern.Silence[string]()
			continue
		}
		steps := make([]pattern.WeightedStep[string], base)
		for j := 0; j < base; j++ {
			steps[j] = pattern.WeightedStep[string]{Weight: 1, Pattern: compileNode(track[j%m].node)}
		}
		stacked[i] = pattern.TimeCat(steps)
	}
	return pattern.Stack(stacked)
}
