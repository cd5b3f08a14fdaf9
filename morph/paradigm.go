package morph

import (
	"strconv"
	"strings"
)

// parseRange expands a morpho list such as "1-3,5,7-9".
func parseRange(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		if !isRange || lo == "" {
			n, _ := strconv.Atoi(part)
			out = append(out, n)
			continue
		}
		a, _ := strconv.Atoi(lo)
		b, _ := strconv.Atoi(hi)
		for i := a; i <= b; i++ {
			out = append(out, i)
		}
	}
	return out
}

// Ending is an inflectional ending of a paradigm.
type Ending struct {
	Quantified string
	Plain      string
	Morpho     int // 1-based index into the morpho descriptions
	Radical    int // radical number the ending attaches to
	Paradigm   *Paradigm
}

// Paradigm is an inflection model from modeles.la.
type Paradigm struct {
	Name    string
	parent  *Paradigm
	rules   map[int]string // radical number → "K" or "n[,suffix]"
	absent  map[int]bool
	endings map[int][]*Ending
	pos     rune
}

func newParadigm() *Paradigm {
	return &Paradigm{
		rules:   make(map[int]string),
		absent:  make(map[int]bool),
		endings: make(map[int][]*Ending),
	}
}

// Parent returns the paradigm this one inherits from.
func (p *Paradigm) Parent() *Paradigm {
	return p.parent
}

// Is reports whether p or one of its ancestors is named name.
func (p *Paradigm) Is(name string) bool {
	for q := p; q != nil; q = q.parent {
		if q.Name == name {
			return true
		}
	}
	return false
}

// EndingsAt returns the endings of morpho m.
func (p *Paradigm) EndingsAt(m int) []*Ending {
	return p.endings[m]
}

func (p *Paradigm) allEndings() []*Ending {
	var out []*Ending
	for _, list := range p.endings {
		out = append(out, list...)
	}
	return out
}

// POS returns the explicit "pos:" directive, or infers the part of speech
// from the paradigm's ancestry.
func (p *Paradigm) POS() POS {
	switch {
	case p.pos != 0:
		return POS(p.pos)
	case p.Is("uita"), p.Is("lupus"), p.Is("miles"), p.Is("manus"), p.Is("res"):
		return Noun
	case p.Is("doctus"), p.Is("fortis"):
		return Adjective
	case p.Is("amo"), p.Is("imitor"):
		return Verb
	default:
		return Unknown
	}
}

func (p *Paradigm) ending(quantified string, morpho, radical int) *Ending {
	return &Ending{
		Quantified: quantified,
		Plain:      Atone(quantified),
		Morpho:     morpho,
		Radical:    radical,
		Paradigm:   p,
	}
}

// stemFor derives a stem from a canonical form using a radical rule:
// "K" keeps the form, "n" drops n runes, "n,suffix" then appends suffix
// ("0" meaning none).
func stemFor(canonical, rule string) string {
	canonical = strings.TrimSuffix(canonical, "\u0306")
	if rule == "K" {
		return canonical
	}
	drop, suffix, _ := strings.Cut(rule, ",")
	n, _ := strconv.Atoi(drop)
	rs := []rune(canonical)
	if n > len(rs) {
		n = len(rs)
	}
	stem := string(rs[:len(rs)-n])
	if suffix != "" && suffix != "0" {
		stem += suffix
	}
	return stem
}
