package assemble

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cours-de-latin/enumeratio"
)

// Columns is the output column order shared by every sink.
var Columns = []string{
	"text",
	"text_parsed",
	"tags",
	"line_number",
	"enumerativeness",
	"tokens",
	"top_case",
	"author_name",
	"author_date",
	"author_id",
	"work_name",
	"work_edition",
	"section_url",
	"section_meter",
}

// Row is one scored verse line with its provenance.
type Row struct {
	Text            string             `json:"text"`
	TextParsed      string             `json:"text_parsed"`
	Tags            []enumeratio.Token `json:"tags"`
	LineNumber      int                `json:"line_number"`
	Enumerativeness *float64           `json:"enumerativeness"`
	Tokens          int                `json:"tokens"`
	TopCase         int                `json:"top_case"`
	AuthorName      string             `json:"author_name"`
	AuthorDate      string             `json:"author_date"`
	AuthorID        int                `json:"author_id"`
	WorkName        string             `json:"work_name"`
	WorkEdition     string             `json:"work_edition"`
	SectionURL      string             `json:"section_url"`
	SectionMeter    string             `json:"section_meter"`
}

// TagsJSON returns the tags column: the token list as a JSON array.
func (r Row) TagsJSON() (string, error) {
	tags := r.Tags
	if tags == nil {
		tags = []enumeratio.Token{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}
	return string(b), nil
}

// EnumerativenessText formats the score for tabular output; an undefined
// score is the empty string.
func (r Row) EnumerativenessText() string {
	if r.Enumerativeness == nil {
		return ""
	}
	return strconv.FormatFloat(*r.Enumerativeness, 'f', -1, 64)
}

// Record returns the row's fields as strings in Columns order.
func (r Row) Record() ([]string, error) {
	tags, err := r.TagsJSON()
	if err != nil {
		return nil, err
	}
	return []string{
		r.Text,
		r.TextParsed,
		tags,
		strconv.Itoa(r.LineNumber),
		r.EnumerativenessText(),
		strconv.Itoa(r.Tokens),
		strconv.Itoa(r.TopCase),
		r.AuthorName,
		r.AuthorDate,
		strconv.Itoa(r.AuthorID),
		r.WorkName,
		r.WorkEdition,
		r.SectionURL,
		r.SectionMeter,
	}, nil
}

// Batch is a group of consecutive rows from a single section.
type Batch struct {
	SectionURL string
	Rows       []Row
}
