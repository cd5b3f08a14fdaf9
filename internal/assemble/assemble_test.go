package assemble

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/corpus"
)

// fieldsAnalyzer tags whitespace-separated words. Words listed in cases
// get those case values; a word equal to "garble" is returned upper-cased
// so its line can never be matched.
func fieldsAnalyzer(cases map[string][]string) enumeratio.Analyzer {
	return enumeratio.AnalyzerFunc(func(ctx context.Context, text string) ([]enumeratio.Token, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var out []enumeratio.Token
		for _, w := range strings.Fields(text) {
			surface := w
			if w == "garble" {
				surface = "GARBLE"
			}
			out = append(out, enumeratio.Token{Surface: surface, Lemma: w, POS: "noun", Cases: cases[w]})
		}
		return out, nil
	})
}

func testAuthor() *corpus.Author {
	return &corpus.Author{
		Name: "Vergilius",
		Date: "70-19 a.C.",
		ID:   7,
		Works: []corpus.Work{
			{
				Name:    "Aeneis",
				Edition: "Conte",
				Sections: []corpus.Section{
					{Href: "aen1", Meter: "Hexameters", Lines: []string{"arma uirum", "cano Troiae", "qui primus", "ab oris", "Italiam"}},
					{Href: "aen2", Meter: "Elegiacs", Lines: []string{"skip me"}},
					{Href: "aen3", Meter: "Hexameters", Lines: []string{"conticuere omnes"}},
				},
			},
			{
				Name:     "Catalepton",
				Sections: []corpus.Section{{Href: "cat1", Meter: "Iambics", Lines: []string{"x"}}},
			},
		},
	}
}

func newAssembler(t *testing.T, analyzer enumeratio.Analyzer, meters []string, batch int) *Assembler {
	t.Helper()
	filter, err := corpus.ParseMeters(meters)
	if err != nil {
		t.Fatal(err)
	}
	a, err := New(analyzer, Options{AllowedMeters: filter, BatchSize: batch})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func collect(t *testing.T, a *Assembler, author *corpus.Author) ([]Batch, Summary) {
	t.Helper()
	var batches []Batch
	sum, err := a.Run(context.Background(), author, func(b Batch) error {
		batches = append(batches, b)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return batches, sum
}

func TestRunBatches(t *testing.T) {
	a := newAssembler(t, fieldsAnalyzer(map[string][]string{
		"arma":  {"accusative"},
		"uirum": {"accusative"},
	}), []string{"Hexameters"}, 2)
	batches, sum := collect(t, a, testAuthor())

	var sizes []int
	for _, b := range batches {
		sizes = append(sizes, len(b.Rows))
		for _, r := range b.Rows {
			if r.SectionURL != b.SectionURL {
				t.Errorf("batch for %s holds a row of %s", b.SectionURL, r.SectionURL)
			}
		}
	}
	if got, want := sizes, []int{2, 2, 1, 1}; !equalInts(got, want) {
		t.Errorf("batch sizes = %v, want %v", got, want)
	}
	if sum.Sections != 2 || sum.Filtered != 2 || sum.Rows != 6 || sum.Batches != 4 || sum.Failed() {
		t.Errorf("summary = %+v", sum)
	}

	first := batches[0].Rows[0]
	if first.Text != "arma uirum" || first.LineNumber != 0 || first.TopCase != 2 || first.Tokens != 2 {
		t.Errorf("first row = %+v", first)
	}
	if v := first.EnumerativenessText(); v != "1" {
		t.Errorf("first row enumerativeness = %q, want 1", v)
	}
	if first.AuthorName != "Vergilius" || first.AuthorID != 7 || first.WorkName != "Aeneis" ||
		first.WorkEdition != "Conte" || first.SectionMeter != "Hexameters" {
		t.Errorf("first row provenance = %+v", first)
	}
	if got := batches[2].Rows[0].LineNumber; got != 4 {
		t.Errorf("fifth line number = %d, want 4", got)
	}
	if got := batches[3].Rows[0].LineNumber; got != 0 {
		t.Errorf("line numbers restart per section, got %d", got)
	}
}

func TestRunSectionFailure(t *testing.T) {
	author := testAuthor()
	author.Works[0].Sections[0].Lines[3] = "ab garble"
	a := newAssembler(t, fieldsAnalyzer(nil), nil, 2)
	batches, sum := collect(t, a, author)

	if len(sum.Failures) != 1 {
		t.Fatalf("failures = %+v, want 1", sum.Failures)
	}
	f := sum.Failures[0]
	if f.Href != "aen1" || !errors.Is(f.Err, enumeratio.ErrMatchExhausted) {
		t.Errorf("failure = %+v", f)
	}

	var fromFailed int
	for _, b := range batches {
		if b.SectionURL == "aen1" {
			fromFailed += len(b.Rows)
		}
	}
	// the first full batch was already emitted; the pending one is dropped
	if fromFailed != 2 {
		t.Errorf("rows from the failed section = %d, want 2", fromFailed)
	}
	if sum.Sections != 4 || sum.Rows != 5 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestRunAnalyzerFailure(t *testing.T) {
	boom := errors.New("analyzer down")
	a := newAssembler(t, enumeratio.AnalyzerFunc(func(context.Context, string) ([]enumeratio.Token, error) {
		return nil, boom
	}), nil, 10)
	batches, sum := collect(t, a, testAuthor())
	if len(batches) != 0 || len(sum.Failures) != 4 {
		t.Fatalf("batches = %d, failures = %d; want 0, 4", len(batches), len(sum.Failures))
	}
	if !errors.Is(sum.Failures[0].Err, boom) {
		t.Errorf("failure error = %v, want %v", sum.Failures[0].Err, boom)
	}
}

func TestRunEmitError(t *testing.T) {
	a := newAssembler(t, fieldsAnalyzer(nil), nil, 1)
	full := errors.New("disk full")
	calls := 0
	_, err := a.Run(context.Background(), testAuthor(), func(Batch) error {
		calls++
		return full
	})
	if !errors.Is(err, full) || calls != 1 {
		t.Errorf("Run = %v after %d emit call(s), want disk full after 1", err, calls)
	}
}

func TestRunCanceled(t *testing.T) {
	a := newAssembler(t, fieldsAnalyzer(nil), nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Run(ctx, testAuthor(), func(Batch) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	for _, size := range []int{0, -3} {
		_, err := New(fieldsAnalyzer(nil), Options{BatchSize: size})
		var ce *enumeratio.ConfigurationError
		if !errors.As(err, &ce) || ce.Field != "batch_size" {
			t.Errorf("New with batch size %d = %v, want batch_size configuration error", size, err)
		}
	}
	if err := (Options{BatchSize: 1, Excluded: enumeratio.Exclusions{""}}).Validate(); !errors.Is(err, enumeratio.ErrConfiguration) {
		t.Errorf("Validate with empty exclusion = %v", err)
	}
}

func TestRowRecord(t *testing.T) {
	half := 0.5
	r := Row{
		Text:            "arma uirum",
		TextParsed:      "arma [noun, accusative case] uirum [noun]",
		Tags:            []enumeratio.Token{{Surface: "arma", Lemma: "arma", POS: "noun", Cases: []string{"accusative"}}, {Surface: "uirum", Lemma: "uir", POS: "noun"}},
		LineNumber:      3,
		Enumerativeness: &half,
		Tokens:          2,
		TopCase:         1,
		AuthorID:        7,
	}
	rec, err := r.Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(rec) != len(Columns) {
		t.Fatalf("record has %d fields, want %d", len(rec), len(Columns))
	}
	wantTags := `[{"string":"arma","lemma":"arma","pos":"noun","case":["accusative"]},{"string":"uirum","lemma":"uir","pos":"noun","case":null}]`
	if rec[2] != wantTags {
		t.Errorf("tags = %s, want %s", rec[2], wantTags)
	}
	if rec[3] != "3" || rec[4] != "0.5" || rec[5] != "2" || rec[6] != "1" || rec[9] != "7" {
		t.Errorf("numeric fields = %q", rec[3:10])
	}

	r.Enumerativeness = nil
	r.Tags = nil
	rec, _ = r.Record()
	if rec[4] != "" || rec[2] != "[]" {
		t.Errorf("undefined score = %q, empty tags = %q", rec[4], rec[2])
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
