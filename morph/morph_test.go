package morph

import (
	"reflect"
	"testing"
)

const dataDir = "testdata"

func load(t *testing.T) *Engine {
	t.Helper()
	e, err := New(dataDir)
	if err != nil {
		t.Fatalf("New(%q): %v", dataDir, err)
	}
	return e
}

// reading returns the reading of form under the lemma with the given key.
func reading(t *testing.T, e *Engine, form string, start bool, key string) Reading {
	t.Helper()
	for _, r := range e.Lemmatize(form, start) {
		if r.Lemma.Key == key {
			return r
		}
	}
	t.Fatalf("Lemmatize(%q) has no reading for %q", form, key)
	return Reading{}
}

func indices(r Reading) []int {
	var out []int
	for _, a := range r.Analyses {
		out = append(out, a.Index)
	}
	return out
}

func TestNew(t *testing.T) {
	e := load(t)
	s := e.Stats()
	t.Logf("Loaded %d morphos, %d paradigms, %d lemmas, %d endings, %d stems, %d irregulars",
		s.Morphos, s.Paradigms, s.Lemmas, s.Endings, s.Stems, s.Irregulars)
	if s.Morphos != 19 {
		t.Errorf("Morphos = %d, want 19 (lines after the separator must be ignored)", s.Morphos)
	}
	if s.Paradigms != 7 {
		t.Errorf("Paradigms = %d, want 7", s.Paradigms)
	}
	if s.Lemmas != 12 {
		t.Errorf("Lemmas = %d, want 12 (malformed entries skipped)", s.Lemmas)
	}
}

func TestNewMissingDir(t *testing.T) {
	if _, err := New(t.TempDir()); err == nil {
		t.Fatal("New on an empty directory: want error")
	}
}

func TestMorpho(t *testing.T) {
	e := load(t)
	if got := e.Morpho(1); got != "nominatif singulier" {
		t.Errorf("Morpho(1) = %q, want %q", got, "nominatif singulier")
	}
	if got := e.Morpho(0); got != "" {
		t.Errorf("Morpho(0) = %q, want empty", got)
	}
	if got := e.Morpho(20); got != "" {
		t.Errorf("Morpho(20) = %q, want empty", got)
	}
}

func TestLemmatizeRegular(t *testing.T) {
	e := load(t)
	r := reading(t, e, "puellae", false, "puella")
	if got, want := indices(r), []int{4, 5, 7, 8}; !reflect.DeepEqual(got, want) {
		t.Errorf("puellae morphos = %v, want %v", got, want)
	}
	if got, want := r.Cases(), []string{"genitive", "dative", "nominative", "vocative"}; !reflect.DeepEqual(got, want) {
		t.Errorf("puellae cases = %v, want %v", got, want)
	}
	if r.Lemma.POS != Noun {
		t.Errorf("puella POS = %v, want noun", r.Lemma.POS)
	}
}

func TestLemmatizeVerb(t *testing.T) {
	e := load(t)
	r := reading(t, e, "habet", false, "habeo")
	if got, want := indices(r), []int{15}; !reflect.DeepEqual(got, want) {
		t.Errorf("habet morphos = %v, want %v", got, want)
	}
	if cases := r.Cases(); cases != nil {
		t.Errorf("habet cases = %v, want none", cases)
	}
	if r.Lemma.POS != Verb {
		t.Errorf("habeo POS = %v, want verb (inherited from amo)", r.Lemma.POS)
	}
}

func TestLemmatizeInheritedParadigm(t *testing.T) {
	e := load(t)
	r := reading(t, e, "bellorum", false, "bellum")
	if got, want := indices(r), []int{10}; !reflect.DeepEqual(got, want) {
		t.Errorf("bellorum morphos = %v, want %v", got, want)
	}
	r = reading(t, e, "bellum", false, "bellum")
	if got, want := indices(r), []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("bellum morphos = %v, want %v", got, want)
	}
	if r.Lemma.POS != Noun {
		t.Errorf("bellum POS = %v, want noun from pos directive", r.Lemma.POS)
	}
}

func TestLemmatizeExplicitStem(t *testing.T) {
	e := load(t)
	r := reading(t, e, "Arabis", false, "Arabs")
	if got, want := indices(r), []int{4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Arabis morphos = %v, want %v", got, want)
	}
	r = reading(t, e, "Arabs", false, "Arabs")
	if got, want := r.Cases(), []string{"nominative", "vocative"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Arabs cases = %v, want %v", got, want)
	}
}

func TestLemmatizeIrregular(t *testing.T) {
	e := load(t)
	r := reading(t, e, "di", false, "deus")
	if got, want := indices(r), []int{7}; !reflect.DeepEqual(got, want) {
		t.Errorf("di morphos = %v, want %v", got, want)
	}
	// di* is exclusive for morpho 7, so dei is no longer a nominative plural
	r = reading(t, e, "dei", false, "deus")
	if got, want := indices(r), []int{4, 8}; !reflect.DeepEqual(got, want) {
		t.Errorf("dei morphos = %v, want %v", got, want)
	}
}

func TestLemmatizeSentenceStart(t *testing.T) {
	e := load(t)
	r := reading(t, e, "Quas", true, "qui")
	if got, want := r.Cases(), []string{"accusative"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Quas cases = %v, want %v", got, want)
	}
	if r.Lemma.POS != Pronoun {
		t.Errorf("qui POS = %v, want pronoun", r.Lemma.POS)
	}
	if got := e.Lemmatize("Quas", false); len(got) != 0 {
		t.Errorf("Lemmatize(Quas) inside a sentence = %d readings, want 0", len(got))
	}
}

func TestLemmatizeFrequencyOrder(t *testing.T) {
	e := load(t)
	got := e.Lemmatize("populo", false)
	if len(got) != 2 {
		t.Fatalf("Lemmatize(populo) = %d readings, want 2", len(got))
	}
	if got[0].Lemma.Key != "populus" || got[1].Lemma.Key != "populus2" {
		t.Errorf("reading order = %q, %q; want populus, populus2", got[0].Lemma.Key, got[1].Lemma.Key)
	}
	if got[1].Lemma.Homonym != 2 || got[1].Lemma.Plain != "populus" {
		t.Errorf("populus2 = (%q, %d), want (populus, 2)", got[1].Lemma.Plain, got[1].Lemma.Homonym)
	}
}

func TestEncliticStripping(t *testing.T) {
	e := load(t)
	reading(t, e, "puellaque", false, "puella")

	base, enc, ok := e.SplitEnclitic("puellaque", false)
	if !ok || base != "puella" || enc != "que" {
		t.Errorf("SplitEnclitic(puellaque) = %q, %q, %v; want puella, que, true", base, enc, ok)
	}
	if _, _, ok := e.SplitEnclitic("puella", false); ok {
		t.Error("SplitEnclitic(puella) split a known form")
	}
	if _, _, ok := e.SplitEnclitic("que", false); ok {
		t.Error("SplitEnclitic(que) split a bare enclitic")
	}
}

func TestRewrites(t *testing.T) {
	e := load(t)
	if got := e.assimilate("adfero"); got != "affero" {
		t.Errorf("assimilate(adfero) = %q, want affero", got)
	}
	if got := e.dissimilate("affero"); got != "adfero" {
		t.Errorf("dissimilate(affero) = %q, want adfero", got)
	}
	if got := e.decontract("amasti"); got != "amauisti" {
		t.Errorf("decontract(amasti) = %q, want amauisti", got)
	}
}

func TestSpelling(t *testing.T) {
	tests := []struct {
		fn   string
		in   string
		want string
	}{
		{"Deramise", "julius", "iulius"},
		{"Deramise", "Venus", "Uenus"},
		{"Deramise", "cæsar", "caesar"},
		{"Atone", "ā̆blŭo", "abluo"},
		{"Atone", "Ō", "O"},
		{"Key", "pūella", "puella"},
		{"Key", "jŭvenis", "iuuenis"},
	}
	for _, tt := range tests {
		var got string
		switch tt.fn {
		case "Deramise":
			got = Deramise(tt.in)
		case "Atone":
			got = Atone(tt.in)
		case "Key":
			got = Key(tt.in)
		}
		if got != tt.want {
			t.Errorf("%s(%q) = %q, want %q", tt.fn, tt.in, got, tt.want)
		}
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"1-6", []int{1, 2, 3, 4, 5, 6}},
		{"1,3,5", []int{1, 3, 5}},
		{"1-3,5,7-9", []int{1, 2, 3, 5, 7, 8, 9}},
		{"10", []int{10}},
	}
	for _, tt := range tests {
		if got := parseRange(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseRange(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStemFor(t *testing.T) {
	tests := []struct {
		canonical, rule, want string
	}{
		{"lupus", "2,0", "lup"},
		{"lupus", "2", "lup"},
		{"miles", "K", "miles"},
		{"miles", "2,it", "milit"},
		{"a", "3", ""},
	}
	for _, tt := range tests {
		if got := stemFor(tt.canonical, tt.rule); got != tt.want {
			t.Errorf("stemFor(%q, %q) = %q, want %q", tt.canonical, tt.rule, got, tt.want)
		}
	}
}

func TestCaseOf(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"nominatif singulier", "nominative"},
		{"génitif pluriel", "genitive"},
		{"ablative plural", "ablative"},
		{"datif singulier", "dative"},
		{"3ème singulier indicatif présent actif", ""},
		{"participe présent actif accusatif masculin singulier", "accusative"},
		{"invariable", ""},
	}
	for _, tt := range tests {
		if got := CaseOf(tt.in); got != tt.want {
			t.Errorf("CaseOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
