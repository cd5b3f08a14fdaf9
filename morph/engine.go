// Package morph is a Latin morphological analyzer. It reads the data files
// of Collatinus (morphos.fr, modeles.la, lemmes.la, irregs.la,
// assimilations.la, contractions.la) and lemmatizes word forms by splitting
// them into a known stem and a paradigm ending.
//
// Tagger adapts an Engine to the enumeratio.Analyzer interface.
package morph

import (
	"sort"
	"strings"
)

// Engine holds the loaded lexicon. It is read-only once New returns and
// may be shared between goroutines.
type Engine struct {
	// morphos[i] describes morpho i, e.g. "nominatif singulier"; index 0
	// is unused.
	morphos []string

	paradigms map[string]*Paradigm
	lemmas    map[string]*Lemma

	// endings, stems and irregulars are keyed by Deramise(Atone(form)).
	endings    map[string][]*Ending
	stems      map[string][]*Stem
	irregulars map[string][]*Irregular

	// variables holds the $name=value definitions of modeles.la.
	variables map[string]string

	// assims and contractions are sorted longest key first.
	assims       []rewrite
	contractions []rewrite
}

// rewrite is a prefix or suffix substitution.
type rewrite struct {
	from, to string
}

// Stats counts the entries of a loaded Engine.
type Stats struct {
	Morphos    int
	Paradigms  int
	Lemmas     int
	Endings    int
	Stems      int
	Irregulars int
}

// New loads the Collatinus data found in dataDir.
func New(dataDir string) (*Engine, error) {
	e := &Engine{
		morphos:    []string{""},
		paradigms:  make(map[string]*Paradigm),
		lemmas:     make(map[string]*Lemma),
		endings:    make(map[string][]*Ending),
		stems:      make(map[string][]*Stem),
		irregulars: make(map[string][]*Irregular),
		variables:  make(map[string]string),
	}
	steps := []func(string) error{
		e.loadAssimilations,
		e.loadContractions,
		e.loadMorphos,
		e.loadParadigms,
		e.loadLexicon,
		e.loadIrregulars,
	}
	for _, step := range steps {
		if err := step(dataDir); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Stats returns the size of each table.
func (e *Engine) Stats() Stats {
	return Stats{
		Morphos:    len(e.morphos) - 1,
		Paradigms:  len(e.paradigms),
		Lemmas:     len(e.lemmas),
		Endings:    len(e.endings),
		Stems:      len(e.stems),
		Irregulars: len(e.irregulars),
	}
}

// Morpho returns the description of 1-based morpho m, or "".
func (e *Engine) Morpho(m int) string {
	if m < 1 || m >= len(e.morphos) {
		return ""
	}
	return e.morphos[m]
}

// Lemma looks up a headword; key may carry quantity marks or j/v.
func (e *Engine) Lemma(key string) *Lemma {
	return e.lemmas[Key(key)]
}

// Paradigm looks up an inflection model by name.
func (e *Engine) Paradigm(name string) *Paradigm {
	return e.paradigms[name]
}

func (e *Engine) addEnding(p *Paradigm, en *Ending) {
	p.endings[en.Morpho] = append(p.endings[en.Morpho], en)
	key := Deramise(en.Plain)
	e.endings[key] = append(e.endings[key], en)
}

func (e *Engine) addStem(l *Lemma, s *Stem, own bool) {
	if own {
		l.stems[s.Num] = append(l.stems[s.Num], s)
	}
	key := Deramise(s.Plain)
	e.stems[key] = append(e.stems[key], s)
}

// Analysis is one morphological reading of a form.
type Analysis struct {
	Form   string // stem + ending with quantity marks
	Morpho string // e.g. "accusatif singulier"
	Index  int    // 1-based morpho index
	Case   string // English case name, "" for caseless morphos
}

// Reading groups the analyses of a form under one lemma.
type Reading struct {
	Lemma    *Lemma
	Analyses []Analysis
}

// Cases returns the distinct case names of the reading in morpho order.
func (r Reading) Cases() []string {
	var out []string
	seen := make(map[string]bool)
	for _, a := range r.Analyses {
		if a.Case == "" || seen[a.Case] {
			continue
		}
		seen[a.Case] = true
		out = append(out, a.Case)
	}
	return out
}

func (e *Engine) analysis(form string, m int) Analysis {
	desc := e.Morpho(m)
	return Analysis{Form: form, Morpho: desc, Index: m, Case: CaseOf(desc)}
}

// readingSet accumulates analyses per lemma while a form is lemmatized.
type readingSet map[*Lemma][]Analysis

func (rs readingSet) merge(other readingSet) readingSet {
	if len(other) == 0 {
		return rs
	}
	if rs == nil {
		rs = make(readingSet)
	}
	for l, as := range other {
		rs[l] = append(rs[l], as...)
	}
	return rs
}

// readings orders lemmas by corpus frequency, most frequent first, and
// each lemma's analyses by morpho index.
func (rs readingSet) readings() []Reading {
	out := make([]Reading, 0, len(rs))
	for l, as := range rs {
		out = append(out, Reading{Lemma: l, Analyses: dedupe(as)})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Lemma, out[j].Lemma
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if a.Key != b.Key {
			return a.Key < b.Key
		}
		return a.Homonym < b.Homonym
	})
	return out
}

func dedupe(as []Analysis) []Analysis {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].Index != as[j].Index {
			return as[i].Index < as[j].Index
		}
		return as[i].Form < as[j].Form
	})
	out := as[:0]
	for _, a := range as {
		if len(out) > 0 && out[len(out)-1] == a {
			continue
		}
		out = append(out, a)
	}
	return out
}

func sortRewrites(rs []rewrite) {
	sort.Slice(rs, func(i, j int) bool {
		if len(rs[i].from) != len(rs[j].from) {
			return len(rs[i].from) > len(rs[j].from)
		}
		return rs[i].from < rs[j].from
	})
}

// assimilate rewrites the first matching unassimilated prefix, e.g.
// adf- → aff-.
func (e *Engine) assimilate(form string) string {
	for _, r := range e.assims {
		if strings.HasPrefix(form, r.from) {
			return r.to + form[len(r.from):]
		}
	}
	return form
}

// dissimilate is the reverse of assimilate.
func (e *Engine) dissimilate(form string) string {
	for _, r := range e.assims {
		if strings.HasPrefix(form, r.to) {
			return r.from + form[len(r.to):]
		}
	}
	return form
}

// decontract expands a contracted ending, e.g. -asti → -auisti.
func (e *Engine) decontract(form string) string {
	for _, r := range e.contractions {
		if strings.HasSuffix(form, r.from) {
			return form[:len(form)-len(r.from)] + r.to
		}
	}
	return form
}
