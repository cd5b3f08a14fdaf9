package morph

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// eachEntry calls fn for every non-blank line of a data file that is not
// a "!" comment. Lines are trimmed.
func eachEntry(path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		fn(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

// loadMorphos reads "n:description" lines up to the "! --- " separator
// that starts the translations section. Descriptions are appended in file
// order, so morphos.fr must be numbered from 1 without gaps.
func (e *Engine) loadMorphos(dir string) error {
	path := filepath.Join(dir, "morphos.fr")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		path = filepath.Join(dir, "morphos.la")
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open morphos: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "! --- ") {
			break
		}
		if strings.HasPrefix(line, "!") {
			continue
		}
		if _, desc, ok := strings.Cut(line, ":"); ok {
			e.morphos = append(e.morphos, desc)
		}
	}
	return sc.Err()
}

// loadParadigms reads modeles.la. A paradigm block starts with a
// "modele:" line; "$name=value" lines define variables used in later
// "des" directives.
func (e *Engine) loadParadigms(dir string) error {
	var block []string
	flush := func() {
		if len(block) == 0 {
			return
		}
		if p := e.parseParadigm(block); p != nil {
			e.paradigms[p.Name] = p
		}
		block = block[:0]
	}
	err := eachEntry(filepath.Join(dir, "modeles.la"), func(line string) {
		if strings.HasPrefix(line, "$") {
			if name, val, ok := strings.Cut(line, "="); ok {
				e.variables[name] = val
			}
			return
		}
		if strings.HasPrefix(line, "modele:") {
			flush()
		}
		block = append(block, line)
	})
	if err != nil {
		return err
	}
	flush()
	return nil
}

// expand substitutes $variables in line. A variable name runs to the
// next ';' or the end of the line.
func (e *Engine) expand(line string) string {
	for {
		d := strings.Index(line, "$")
		if d < 0 {
			return line
		}
		name := line[d:]
		if f := strings.Index(name, ";"); f >= 0 {
			name = name[:f]
		}
		val, ok := e.variables[name]
		if !ok {
			return line
		}
		line = strings.Replace(line, name, val, 1)
	}
}

// parseParadigm builds a paradigm from its block of directives and
// registers its endings. Directives:
//
//	modele:name          pere:parent        pos:c
//	R:n:rule             abs:range          abs+:range
//	des:range:rad:e1;e2  des+:range:rad:e1  suf:range:suffix
//	sufd:suffix
func (e *Engine) parseParadigm(lines []string) *Paradigm {
	p := newParadigm()
	type suffixed struct {
		suffix string
		morpho int
	}
	var suffixes []suffixed

	for _, line := range lines {
		f := strings.Split(strings.TrimSpace(e.expand(line)), ":")
		switch f[0] {
		case "modele":
			if len(f) > 1 {
				p.Name = f[1]
			}
		case "pere":
			if len(f) > 1 {
				p.parent = e.paradigms[f[1]]
			}
		case "des", "des+":
			if len(f) < 4 {
				continue
			}
			morphos := parseRange(f[1])
			radical, _ := strconv.Atoi(f[2])
			groups := strings.Split(f[3], ";")
			for i, m := range morphos {
				group := groups[len(groups)-1]
				if i < len(groups) {
					group = groups[i]
				}
				for _, q := range strings.Split(group, ",") {
					if q == "-" {
						q = ""
					}
					e.addEnding(p, p.ending(q, m, radical))
				}
			}
			if f[0] == "des+" && p.parent != nil {
				for _, m := range morphos {
					for _, pe := range p.parent.endings[m] {
						e.addEnding(p, p.ending(pe.Quantified, pe.Morpho, pe.Radical))
					}
				}
			}
		case "R":
			if len(f) >= 3 {
				n, _ := strconv.Atoi(f[1])
				p.rules[n] = f[2]
			}
		case "abs":
			if len(f) > 1 {
				p.absent = make(map[int]bool)
				for _, m := range parseRange(f[1]) {
					p.absent[m] = true
				}
			}
		case "abs+":
			if len(f) > 1 {
				for _, m := range parseRange(f[1]) {
					p.absent[m] = true
				}
			}
		case "pos":
			if len(f) > 1 && f[1] != "" {
				p.pos = rune(f[1][0])
			}
		case "suf":
			if len(f) >= 3 {
				for _, m := range parseRange(f[1]) {
					suffixes = append(suffixes, suffixed{suffix: f[2], morpho: m})
				}
			}
		case "sufd":
			if p.parent == nil || len(f) < 2 {
				continue
			}
			for _, pe := range p.parent.allEndings() {
				if !p.absent[pe.Morpho] {
					e.addEnding(p, p.ending(pe.Quantified+f[1], pe.Morpho, pe.Radical))
				}
			}
		}
	}

	if parent := p.parent; parent != nil {
		if p.pos == 0 {
			p.pos = parent.pos
		}
		// inherit every morpho the child neither defines nor marks absent
		for m, list := range parent.endings {
			if len(p.endings[m]) > 0 {
				continue
			}
			for _, pe := range list {
				if !p.absent[pe.Morpho] {
					e.addEnding(p, p.ending(pe.Quantified, pe.Morpho, pe.Radical))
				}
			}
		}
		for _, en := range p.allEndings() {
			if _, ok := p.rules[en.Radical]; ok {
				continue
			}
			if rule, ok := parent.rules[en.Radical]; ok {
				p.rules[en.Radical] = rule
			}
		}
		for m := range parent.absent {
			p.absent[m] = true
		}
	}

	var extra []*Ending
	for _, s := range suffixes {
		for _, en := range p.endings[s.morpho] {
			extra = append(extra, p.ending(en.Quantified+s.suffix, en.Morpho, en.Radical))
		}
	}
	for _, en := range extra {
		e.addEnding(p, en)
	}

	if p.Name == "" {
		return nil
	}
	return p
}

// loadLexicon reads lemmes.la, resolves each lemma's paradigm and
// registers its stems.
func (e *Engine) loadLexicon(dir string) error {
	return eachEntry(filepath.Join(dir, "lemmes.la"), func(line string) {
		l := parseLemma(line)
		if l == nil {
			return
		}
		l.paradigm = e.paradigms[l.paradigmName]
		if l.paradigm != nil && l.POS == Unknown {
			l.POS = l.paradigm.POS()
		}
		e.lemmas[l.Key] = l
		e.registerStems(l)
	})
}

// registerStems adds the explicit stems of l to the stem index, then
// derives the remaining ones from the paradigm's radical rules, once per
// canonical form.
func (e *Engine) registerStems(l *Lemma) {
	if l.paradigm == nil {
		return
	}
	for _, list := range l.stems {
		for _, s := range list {
			e.addStem(l, s, false)
		}
	}
	for num, rule := range l.paradigm.rules {
		if _, explicit := l.stems[num]; explicit {
			continue
		}
		for _, canonical := range append([]string{l.Quantified}, l.alternates...) {
			q := stemFor(canonical, rule)
			e.addStem(l, &Stem{Quantified: q, Plain: Atone(q), Num: num, Lemma: l}, true)
		}
	}
}

// loadIrregulars reads irregs.la lines "form[*]:lemma:range". A trailing
// '*' marks a form that replaces the regular ones.
func (e *Engine) loadIrregulars(dir string) error {
	return eachEntry(filepath.Join(dir, "irregs.la"), func(line string) {
		f := strings.Split(line, ":")
		if len(f) < 3 {
			return
		}
		q, exclusive := strings.CutSuffix(f[0], "*")
		l := e.lemmas[Key(f[1])]
		if l == nil {
			return
		}
		irr := &Irregular{
			Quantified: q,
			Plain:      Atone(q),
			Exclusive:  exclusive,
			Lemma:      l,
			Morphos:    parseRange(f[2]),
		}
		key := Deramise(irr.Plain)
		e.irregulars[key] = append(e.irregulars[key], irr)
		if exclusive {
			for _, m := range irr.Morphos {
				l.exclusive[m] = true
			}
		}
	})
}

// loadAssimilations reads "prefix:assimilated" pairs, stored without
// quantity marks.
func (e *Engine) loadAssimilations(dir string) error {
	err := eachEntry(filepath.Join(dir, "assimilations.la"), func(line string) {
		if from, to, ok := strings.Cut(line, ":"); ok {
			e.assims = append(e.assims, rewrite{from: Atone(from), to: Atone(to)})
		}
	})
	sortRewrites(e.assims)
	return err
}

// loadContractions reads "contracted:expanded" ending pairs.
func (e *Engine) loadContractions(dir string) error {
	err := eachEntry(filepath.Join(dir, "contractions.la"), func(line string) {
		if from, to, ok := strings.Cut(line, ":"); ok {
			e.contractions = append(e.contractions, rewrite{from: from, to: to})
		}
	})
	sortRewrites(e.contractions)
	return err
}
