package morph

import (
	"strings"
	"unicode"
)

// Lemmatization tries progressively simpler variants of a form. Each step
// first collects the results of the steps below it, then adds its own
// rewrite of the form.
const (
	stepCapital      = iota // retry a lower-case form as a proper noun
	stepEnclitic            // strip -ne, -que, -ue, -ve, -st
	stepAssimilation        // adf- ↔ aff-
	stepContraction         // -asti → -auisti
	stepRaw                 // stem + ending lookup
)

// enclitics are tried in this order when a form has no reading.
var enclitics = []string{"ne", "que", "ue", "ve", "st"}

// Lemmatize returns every reading of form, the most frequent lemma first.
// sentenceStart allows a capitalized form to be read as a common word.
func (e *Engine) Lemmatize(form string, sentenceStart bool) []Reading {
	return e.walk(form, sentenceStart, stepCapital, true).readings()
}

// Known reports whether form has at least one reading.
func (e *Engine) Known(form string, sentenceStart bool) bool {
	return len(e.walk(form, sentenceStart, stepCapital, true)) > 0
}

// SplitEnclitic detects a form that is only readable once an enclitic
// particle is removed, such as "armaque" = "arma" + "que". It returns the
// base and the enclitic as written, and false when the form needs no
// split. The contracted "-st" of est is never split off.
func (e *Engine) SplitEnclitic(form string, sentenceStart bool) (base, enclitic string, ok bool) {
	if len(e.walk(form, sentenceStart, stepCapital, false)) > 0 {
		return form, "", false
	}
	for _, suf := range enclitics {
		if suf == "st" || len(form) <= len(suf) || !strings.HasSuffix(strings.ToLower(form), suf) {
			continue
		}
		b := form[:len(form)-len(suf)]
		if e.Known(b, sentenceStart) {
			return b, form[len(b):], true
		}
	}
	return form, "", false
}

func (e *Engine) walk(form string, start bool, step int, stripEnclitics bool) readingSet {
	if form == "" {
		return nil
	}
	if step >= stepRaw {
		out := e.raw(form)
		if start && startsUpper(form) {
			out = out.merge(e.walk(strings.ToLower(form), false, stepRaw, stripEnclitics))
		}
		return out
	}

	out := e.walk(form, start, step+1, stripEnclitics)
	switch step {
	case stepContraction:
		if x := e.decontract(form); x != form {
			out = out.merge(e.walk(x, start, stepRaw, stripEnclitics))
		}

	case stepAssimilation:
		if x := e.assimilate(form); x != form {
			return out.merge(e.walk(x, start, stepContraction, stripEnclitics))
		}
		if x := e.dissimilate(form); x != form {
			return out.merge(e.walk(x, start, stepContraction, stripEnclitics))
		}

	case stepEnclitic:
		if !stripEnclitics || len(out) > 0 {
			break
		}
		for _, suf := range enclitics {
			if !strings.HasSuffix(form, suf) {
				continue
			}
			base := strings.TrimSuffix(form, suf)
			if suf == "st" {
				base += "s" // opust = opus est
			}
			if out = e.walk(base, start, stepEnclitic, stripEnclitics); len(out) > 0 {
				break
			}
		}

	case stepCapital:
		if len(out) == 0 && startsLower(form) {
			rs := []rune(form)
			rs[0] = unicode.ToUpper(rs[0])
			return e.walk(string(rs), false, stepEnclitic, stripEnclitics)
		}
	}
	return out
}

// letterCounts records letters that Deramise erases, so that a reading
// built from a stem spelled differently can be rejected.
type letterCounts struct {
	v, ae, oe int
}

// raw looks form up as an irregular, then as every stem + ending split.
func (e *Engine) raw(form string) readingSet {
	lower := strings.ToLower(form)
	c := letterCounts{
		v:  strings.Count(lower, "v"),
		ae: strings.Count(lower, "æ"),
		oe: strings.Count(lower, "œ"),
	}
	if strings.HasSuffix(lower, "æ") {
		c.ae--
	}

	form = Deramise(form)
	out := make(readingSet)
	for _, irr := range e.irregulars[form] {
		for _, m := range irr.Morphos {
			out[irr.Lemma] = append(out[irr.Lemma], e.analysis(irr.Quantified, m))
		}
	}

	rs := []rune(form)
	for i := 0; i <= len(rs); i++ {
		stemPart, endPart := string(rs[:i]), string(rs[i:])
		stems, ok := e.stems[stemPart]
		if !ok {
			continue
		}
		if ambiguousI(stemPart, endPart) {
			e.mergeDoubledI(out, stemPart, endPart)
		}
		endings, ok := e.endings[endPart]
		if !ok {
			continue
		}
		for _, st := range stems {
			for _, en := range endings {
				if e.fits(st, en, c) {
					out[st.Lemma] = append(out[st.Lemma], e.analysis(st.Quantified+en.Quantified, en.Morpho))
				}
			}
		}
	}
	return out
}

// ambiguousI reports whether a single written i at the stem/ending
// boundary may stand for ii (or ī), as in "consili" for "consilii".
func ambiguousI(stem, end string) bool {
	stemI := strings.HasSuffix(stem, "i")
	stemII := strings.HasSuffix(stem, "ii")
	endI := strings.HasPrefix(end, "i")
	endII := strings.HasPrefix(end, "ii")
	return (end == "" && stemI) ||
		(endI && !endII && !stemI) ||
		(stemI && !stemII && !endI)
}

// mergeDoubledI reads stem+"i"+end and adds its readings to out, with the
// inserted letter removed from the reported forms.
func (e *Engine) mergeDoubledI(out readingSet, stem, end string) {
	at := len([]rune(stem))
	for l, as := range e.raw(stem + "i" + end) {
		for k := range as {
			rs := []rune(as[k].Form)
			if at < len(rs) {
				as[k].Form = string(rs[:at]) + string(rs[at+1:])
			}
		}
		out[l] = append(out[l], as...)
	}
}

// fits reports whether ending en may follow stem st.
func (e *Engine) fits(st *Stem, en *Ending, c letterCounts) bool {
	if en.Paradigm != st.Lemma.paradigm || en.Radical != st.Num {
		return false
	}
	if st.Lemma.exclusive[en.Morpho] || en.Morpho < 1 || en.Morpho >= len(e.morphos) {
		return false
	}
	sq, eq := strings.ToLower(st.Quantified), strings.ToLower(en.Quantified)
	if c.v > 0 && c.v != strings.Count(sq, "v")+strings.Count(eq, "v") {
		return false
	}
	if c.oe > 0 && c.oe != strings.Count(sq, "ōe") {
		return false
	}
	if c.ae > 0 && c.ae != strings.Count(sq, "āe")+strings.Count(sq, "prăe") {
		return false
	}
	return true
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
