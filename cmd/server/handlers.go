package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cours-de-latin/enumeratio"
	"github.com/cours-de-latin/enumeratio/internal/logging"
	"github.com/cours-de-latin/enumeratio/internal/remote"
	"github.com/cours-de-latin/enumeratio/morph"
)

// ---- JSON response types ------------------------------------------------

type lemmaJSON struct {
	Key        string `json:"key"`
	Form       string `json:"form"`
	POS        string `json:"pos"`
	MorphoInfo string `json:"morpho_info"`
	HomonymNum int    `json:"homonym_num,omitempty"`
	Frequency  int    `json:"frequency,omitempty"`
}

type formJSON struct {
	FormWithMarks     string `json:"form_with_marks"`
	MorphoDescription string `json:"morpho_description"`
	MorphoIndex       int    `json:"morpho_index"`
	Case              string `json:"case,omitempty"`
}

type readingJSON struct {
	Lemma lemmaJSON  `json:"lemma"`
	Forms []formJSON `json:"forms"`
}

type lemmatizeResponse struct {
	Form     string        `json:"form"`
	Readings []readingJSON `json:"readings"`
}

type healthResponse struct {
	Status string `json:"status"`
	Lemmas int    `json:"lemmas"`
}

type scoreRequest struct {
	Lines    []string `json:"lines"`
	Excluded []string `json:"excluded_parts_of_speech"`
}

// lineJSON is one scored line, named like the output row columns.
type lineJSON struct {
	LineNumber int `json:"line_number"`
	enumeratio.Line
	enumeratio.Result
}

type scoreResponse struct {
	Lines []lineJSON `json:"lines"`
}

// ---- helpers ------------------------------------------------------------

func toReadingsJSON(readings []morph.Reading) []readingJSON {
	out := make([]readingJSON, 0, len(readings))
	for _, r := range readings {
		forms := make([]formJSON, 0, len(r.Analyses))
		for _, a := range r.Analyses {
			forms = append(forms, formJSON{
				FormWithMarks:     a.Form,
				MorphoDescription: a.Morpho,
				MorphoIndex:       a.Index,
				Case:              a.Case,
			})
		}
		out = append(out, readingJSON{
			Lemma: lemmaJSON{
				Key:        r.Lemma.Key,
				Form:       r.Lemma.Quantified,
				POS:        r.Lemma.POS.String(),
				MorphoInfo: r.Lemma.Info,
				HomonymNum: r.Lemma.Homonym,
				Frequency:  r.Lemma.Frequency,
			},
			Forms: forms,
		})
	}
	return out
}

// scoreLines pairs each reconstructed line with its score.
func scoreLines(lines []enumeratio.Line, ex enumeratio.Exclusions) []lineJSON {
	out := make([]lineJSON, len(lines))
	for i, l := range lines {
		out[i] = lineJSON{LineNumber: i, Line: l, Result: enumeratio.Score(l.Tokens, ex)}
	}
	return out
}

// errorStatus maps pipeline errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, enumeratio.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, enumeratio.ErrMatchExhausted), errors.Is(err, enumeratio.ErrUndrained):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("encode error", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, remote.ErrorResponse{Error: msg})
}

// ---- handlers -----------------------------------------------------------

func handleHealth(tagger *morph.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Lemmas: tagger.Engine().Stats().Lemmas})
	}
}

func handleLemmatize(tagger *morph.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		form := r.URL.Query().Get("form")
		if form == "" {
			writeError(w, http.StatusBadRequest, "missing 'form' query parameter")
			return
		}
		sentenceStart, _ := strconv.ParseBool(r.URL.Query().Get("sentence_start"))

		readings := tagger.Engine().Lemmatize(form, sentenceStart)
		status := http.StatusOK
		if len(readings) == 0 {
			status = http.StatusNotFound
		}
		writeJSON(w, status, lemmatizeResponse{Form: form, Readings: toReadingsJSON(readings)})
	}
}

// handleAnalyze serves the protocol of remote.Client.
func handleAnalyze(tagger *morph.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body remote.AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "body must be JSON with a 'text' field")
			return
		}
		tokens, err := tagger.Analyze(r.Context(), body.Text)
		if err != nil {
			logging.ErrorContext(r.Context(), "analysis failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, remote.AnalyzeResponse{Tokens: tokens})
	}
}

func handleEnumerativeness(tagger *morph.Tagger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var body scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Lines) == 0 {
			writeError(w, http.StatusBadRequest, "body must be JSON with a non-empty 'lines' field")
			return
		}
		ex, err := enumeratio.NewExclusions(body.Excluded)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		lines, err := enumeratio.ReconstructAll(r.Context(), tagger, body.Lines)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				logging.ErrorContext(r.Context(), "scoring failed", "lines", len(body.Lines), "error", err)
			} else {
				logging.WarnContext(r.Context(), "section rejected", "lines", len(body.Lines), "error", err)
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, scoreResponse{Lines: scoreLines(lines, ex)})
	}
}
