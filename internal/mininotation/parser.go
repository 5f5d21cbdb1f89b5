// Package mininotation implements the Phonon mini-notation grammar
// (sequences, "[..]" polyrhythm groups, "<..>" cycle alternation,
// "{..}" polymeter, "~" rest, and the "*","/","!","?","@","(k,n,rot)"
// modifiers) as a hand-written recursive-descent parser over the
// input string, in the same style as the teacher's note-by-note
// scanner in internal/mml/parser.go: an index cursor advanced
// character by character, no external grammar/lexer dependency.
package mininotation

import (
	"fmt"
	"strconv"
	"strings"
)

// parser holds the cursor state over one input string.
type parser struct {
	src []rune
	pos int
}

// Parse parses a mini-notation string into a Pattern[string]. Each atom's
// literal token (e.g. "bd", "sn:2") becomes the sample/node name the graph
// layer later resolves against its sample bank or synth registry.
func Parse(input string) (Pattern, error) {
	p := &parser{src: []rune(strings.TrimSpace(input))}
	items, err := p.parseSeq(0)
	if err != nil {
		return Pattern{}, err
	}
	p.skipSpace()
	if !p.eof() {
		return Pattern{}, fmt.Errorf("mininotation: unexpected %q at position %d", p.peek(), p.pos)
	}
	return Pattern{root: groupNode{alternatives: [][]seqItem{items}}}, nil
}

// Pattern wraps the parsed AST; compile.go turns it into a
// pattern.Pattern[string] lazily so parsing never depends on the
// pattern package's query machinery.
type Pattern struct {
	root node
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && (p.peek() == ' ' || p.peek() == '\t' || p.peek() == '\n') {
		p.pos++
	}
}

// parseSeq parses `pat = term (WS term)*` up to one of the closing
// delimiters (close==0 means top level, parse to EOF).
func (p *parser) parseSeq(close rune) ([]seqItem, error) {
	var items []seqItem
	for {
		p.skipSpace()
		if p.eof() || p.peek() == close || p.peek() == ',' {
			break
		}
		item, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		items = append(items, item...)
	}
	return items, nil
}

// parseTerm parses `term = atom modifiers*`, returning one or more
// seqItems since "!n" expands into n repeated siblings rather than
// wrapping the atom.
func (p *parser) parseTerm() ([]seqItem, error) {
	a, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	weight := 1.0
	repeat := 1
	for {
		switch p.peek() {
		case '*':
			p.pos++
			n, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			a = fastNode{child: a, factor: n}
		case '/':
			p.pos++
			n, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			a = slowNode{child: a, factor: n}
		case '!':
			p.pos++
			n, err := p.parseInt()
			if err != nil {
				return nil, err
			}
			repeat = n
		case '?':
			p.pos++
			chance := 0.5
			if r := p.peek(); r == '.' || (r >= '0' && r <= '9') {
				v, err := p.parseNumber()
				if err != nil {
					return nil, err
				}
				chance = v
			}
			a = degradeNode{child: a, chance: chance}
		case '@':
			p.pos++
			n, err := p.parseNumber()
			if err != nil {
				return nil, err
			}
			weight = n
		case '(':
			p.pos++
			k, n, rot, err := p.parseEuclidArgs()
			if err != nil {
				return nil, err
			}
			a = euclidNode{child: a, k: k, n: n, rot: rot}
		default:
			items := make([]seqItem, repeat)
			for i := range items {
				items[i] = seqItem{node: a, weight: weight}
			}
			return items, nil
		}
	}
}

// parseAtom parses `atom = id | number | rest | group | choice | poly`; a
// number atom keeps its literal text as the event value.
func (p *parser) parseAtom() (node, error) {
	p.skipSpace()
	switch p.peek() {
	case '~':
		p.pos++
		return restNode{}, nil
	case '[':
		return p.parseDelimited('[', ']', func(alts [][]seqItem) node { return groupNode{alternatives: alts} })
	case '<':
		return p.parseChoiceBody()
	case '{':
		return p.parseDelimited('{', '}', func(alts [][]seqItem) node { return polyNode{tracks: alts} })
	default:
		if r := p.peek(); (r >= '0' && r <= '9') || r == '.' || r == '-' {
			start := p.pos
			if r == '-' {
				p.pos++
			}
			if _, err := p.parseNumber(); err != nil {
				return nil, err
			}
			return atomNode{name: string(p.src[start:p.pos])}, nil
		}
		return p.parseIdent()
	}
}

// parseDelimited handles "[" pat ("," pat)* "]" and "{" ... "}": a list of
// comma-separated sub-sequences between open/close runes.
func (p *parser) parseDelimited(open, closeCh rune, wrap func([][]seqItem) node) (node, error) {
	p.pos++ // consume open
	var alts [][]seqItem
	for {
		items, err := p.parseSeq(closeCh)
		if err != nil {
			return nil, err
		}
		alts = append(alts, items)
		p.skipSpace()
		if p.peek() == ',' {
			p.pos++
			continue
		}
		break
	}
	p.skipSpace()
	if p.peek() != closeCh {
		return nil, fmt.Errorf("mininotation: expected %q, got %q at position %d", closeCh, p.peek(), p.pos)
	}
	p.pos++
	return wrap(alts), nil
}

// parseChoiceBody handles "<pat pat ...>": options are WS-separated terms,
// each term itself being one option (not comma-separated like groups/poly).
func (p *parser) parseChoiceBody() (node, error) {
	p.pos++ // consume '<'
	var options [][]seqItem
	for {
		p.skipSpace()
		if p.eof() || p.peek() == '>' {
			break
		}
		item, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		options = append(options, item)
	}
	p.skipSpace()
	if p.peek() != '>' {
		return nil, fmt.Errorf("mininotation: expected '>' at position %d", p.pos)
	}
	p.pos++
	return choiceNode{options: options}, nil
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentCont(r rune) bool {
	return isIdentStart(r) || (r >= '0' && r <= '9') || r == '-' || r == '#'
}

// parseIdent parses `id = [A-Za-z][A-Za-z0-9#-]* (":" int)?`.
func (p *parser) parseIdent() (node, error) {
	if !isIdentStart(p.peek()) {
		return nil, fmt.Errorf("mininotation: expected identifier at position %d, got %q", p.pos, p.peek())
	}
	start := p.pos
	for !p.eof() && isIdentCont(p.peek()) {
		p.pos++
	}
	name := string(p.src[start:p.pos])
	index := ""
	if p.peek() == ':' {
		p.pos++
		istart := p.pos
		for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
			p.pos++
		}
		if p.pos == istart {
			return nil, fmt.Errorf("mininotation: expected sample index after ':' at position %d", p.pos)
		}
		index = string(p.src[istart:p.pos])
	}
	return atomNode{name: name, index: index}, nil
}

// parseNumber reads a float (used by */@?. modifiers).
func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	for !p.eof() && (p.peek() >= '0' && p.peek() <= '9' || p.peek() == '.') {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("mininotation: expected number at position %d", p.pos)
	}
	return strconv.ParseFloat(string(p.src[start:p.pos]), 64)
}

// parseInt reads a bare non-negative integer (used by "!").
func (p *parser) parseInt() (int, error) {
	start := p.pos
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("mininotation: expected integer at position %d", p.pos)
	}
	return strconv.Atoi(string(p.src[start:p.pos]))
}

// parseEuclidArgs parses "k,n[,rot])" having already consumed the opening "(".
func (p *parser) parseEuclidArgs() (k, n, rot int, err error) {
	p.skipSpace()
	k, err = p.parseInt()
	if err != nil {
		return 0, 0, 0, err
	}
	p.skipSpace()
	if p.peek() != ',' {
		return 0, 0, 0, fmt.Errorf("mininotation: expected ',' in euclid args at position %d", p.pos)
	}
	p.pos++
	p.skipSpace()
	n, err = p.parseInt()
	if err != nil {
		return 0, 0, 0, err
	}
	p.skipSpace()
	if p.peek() == ',' {
		p.pos++
		p.skipSpace()
		rot, err = p.parseInt()
		if err != nil {
			return 0, 0, 0, err
		}
		p.skipSpace()
	}
	if p.peek() != ')' {
		return 0, 0, 0, fmt.Errorf("mininotation: expected ')' at position %d", p.pos)
	}
	p.pos++
	return k, n, rot, nil
}
