package enumeratio

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

var aeneid = []string{
	"Arma uirumque cano, Troiae qui primus ab oris",
	"Italiam fato profugus. Lauiniaque uenit",
	"litora, multum ille et terris iactatus et alto",
}

func TestReconstructAll(t *testing.T) {
	lines, err := ReconstructAll(context.Background(), &wordAnalyzer{}, aeneid)
	if err != nil {
		t.Fatalf("ReconstructAll: %v", err)
	}
	if len(lines) != len(aeneid) {
		t.Fatalf("got %d lines, want %d", len(lines), len(aeneid))
	}
	for i, line := range lines {
		if line.Text != aeneid[i] {
			t.Errorf("line %d text = %q, want %q", i, line.Text, aeneid[i])
		}
		if got, want := surfaces(line.Tokens), Fingerprint(aeneid[i]); got != want {
			t.Errorf("line %d surfaces = %q, want %q", i, got, want)
		}
	}
	if got := lines[1].Tokens[0].Surface; got != "Italiam" {
		t.Errorf("line 1 starts with %q, want Italiam", got)
	}
}

func TestReconstructCompleteness(t *testing.T) {
	var analyzed []Token
	inner := &wordAnalyzer{cases: map[string][]string{"Troiae": {"genitive"}, "oris": {"ablative"}}}
	recording := AnalyzerFunc(func(ctx context.Context, text string) ([]Token, error) {
		tokens, err := inner.Analyze(ctx, text)
		analyzed = append(analyzed, tokens...)
		return tokens, err
	})

	r := NewReconstructor(aeneid, NewStream(recording, aeneid))
	var rebuilt []Token
	for {
		line, err := r.Next(context.Background())
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		rebuilt = append(rebuilt, line.Tokens...)
	}
	if err := r.Finish(context.Background()); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !reflect.DeepEqual(rebuilt, analyzed) {
		t.Errorf("line tokens differ from analyzer output:\n got %v\nwant %v", rebuilt, analyzed)
	}
	if r.Pulled() != len(analyzed) || r.Staged() != 0 {
		t.Errorf("Pulled = %d, Staged = %d; want %d, 0", r.Pulled(), r.Staged(), len(analyzed))
	}
}

func TestReconstructAnnotated(t *testing.T) {
	a := &wordAnalyzer{cases: map[string][]string{
		"Troiae": {"genitive", "dative"},
		"oris":   {"ablative"},
	}}
	lines, err := ReconstructAll(context.Background(), a, []string{"Troiae ab oris,"})
	if err != nil {
		t.Fatalf("ReconstructAll: %v", err)
	}
	want := "Troiae [word, genitive, dative case] ab [word] oris [word, ablative case] , [punctuation]"
	if got := lines[0].Annotated; got != want {
		t.Errorf("Annotated = %q, want %q", got, want)
	}
}

func TestReconstructEmptyLines(t *testing.T) {
	input := []string{"Arma cano.", "", "μῆνιν ἄειδε", "Troia."}
	lines, err := ReconstructAll(context.Background(), &wordAnalyzer{}, input)
	if err != nil {
		t.Fatalf("ReconstructAll: %v", err)
	}
	for _, i := range []int{1, 2} {
		if lines[i].Tokens == nil || len(lines[i].Tokens) != 0 {
			t.Errorf("line %d tokens = %#v, want empty non-nil", i, lines[i].Tokens)
		}
		if lines[i].Annotated != "" {
			t.Errorf("line %d annotated = %q, want empty", i, lines[i].Annotated)
		}
	}
	if got := surfaces(lines[3].Tokens); got != "Troia." {
		t.Errorf("line 3 = %q, want Troia.", got)
	}
}

func TestReconstructSkipsEmptySentences(t *testing.T) {
	src := &sliceSource{sentences: [][]Token{
		{},
		words("Arma", "cano"),
		{},
		{},
		words("Troia"),
	}}
	r := NewReconstructor([]string{"Arma cano", "Troia"}, src)
	for i := 0; i < 2; i++ {
		if _, err := r.Next(context.Background()); err != nil {
			t.Fatalf("Next(%d): %v", i, err)
		}
	}
	if _, err := r.Next(context.Background()); err != io.EOF {
		t.Errorf("Next after last line = %v, want io.EOF", err)
	}
	if err := r.Finish(context.Background()); err != nil {
		t.Errorf("Finish: %v", err)
	}
	if r.Pulled() != 3 {
		t.Errorf("Pulled = %d, want 3", r.Pulled())
	}
}

func TestReconstructMatchExhausted(t *testing.T) {
	upper := AnalyzerFunc(func(ctx context.Context, text string) ([]Token, error) {
		tokens, _ := (&wordAnalyzer{}).Analyze(ctx, text)
		for i := range tokens {
			tokens[i].Surface = strings.ToUpper(tokens[i].Surface)
		}
		return tokens, nil
	})
	r := NewReconstructor(aeneid[:1], NewStream(upper, aeneid[:1]))

	_, err := r.Next(context.Background())
	if !errors.Is(err, ErrMatchExhausted) {
		t.Fatalf("Next = %v, want ErrMatchExhausted", err)
	}
	var me *MatchExhaustionError
	if !errors.As(err, &me) {
		t.Fatalf("error is %T, want *MatchExhaustionError", err)
	}
	if me.Line != 0 || me.Target != Fingerprint(aeneid[0]) || me.Got != strings.ToUpper(me.Target) {
		t.Errorf("MatchExhaustionError = %+v", me)
	}

	if _, again := r.Next(context.Background()); again != err {
		t.Errorf("second Next = %v, want the same error", again)
	}
	if fin := r.Finish(context.Background()); fin != err {
		t.Errorf("Finish = %v, want the same error", fin)
	}
}

func TestReconstructUndrained(t *testing.T) {
	tests := []struct {
		name      string
		sentences [][]Token
		leftover  string
	}{
		{"staged tokens", [][]Token{words("Arma", "cano", "Troia")}, "Troia"},
		{"unread sentence", [][]Token{words("Arma", "cano"), {}, words("Troia")}, "Troia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReconstructor([]string{"Arma cano"}, &sliceSource{sentences: tt.sentences})
			if _, err := r.Next(context.Background()); err != nil {
				t.Fatalf("Next: %v", err)
			}
			err := r.Finish(context.Background())
			if !errors.Is(err, ErrUndrained) {
				t.Fatalf("Finish = %v, want ErrUndrained", err)
			}
			var ue *UndrainedError
			if !errors.As(err, &ue) || surfaces(ue.Leftover) != tt.leftover {
				t.Errorf("leftover = %+v, want %q", ue, tt.leftover)
			}
		})
	}
}

func TestReconstructFinishEarly(t *testing.T) {
	r := NewReconstructor(aeneid, NewStream(&wordAnalyzer{}, aeneid))
	if err := r.Finish(context.Background()); err == nil {
		t.Error("Finish before the last line: want error")
	}
}

func TestReconstructCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewReconstructor(aeneid, NewStream(&wordAnalyzer{}, aeneid))
	if _, err := r.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next = %v, want context.Canceled", err)
	}
}

func TestReconstructAnalyzerFailure(t *testing.T) {
	boom := errors.New("analyzer down")
	a := AnalyzerFunc(func(context.Context, string) ([]Token, error) {
		return nil, boom
	})
	_, err := ReconstructAll(context.Background(), a, aeneid)
	if !errors.Is(err, ErrAnalyzer) || !errors.Is(err, boom) {
		t.Errorf("ReconstructAll = %v, want analyzer failure", err)
	}
}

func TestLineStateString(t *testing.T) {
	for s, want := range map[lineState]string{
		stateAccumulating: "accumulating",
		stateMatched:      "matched",
		stateEmitted:      "emitted",
		stateExhausted:    "exhausted",
		lineState(9):      "lineState(9)",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}
