// Package corpus reads and writes the author records of a downloaded poetry
// corpus: one JSON document per author, optionally xz-compressed.
package corpus

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/cours-de-latin/enumeratio"
)

// Author is one input file.
type Author struct {
	Name  string `json:"author_name"`
	Date  string `json:"author_date"`
	ID    int    `json:"author_id"`
	URL   string `json:"author_url"`
	Works []Work `json:"author_works"`
}

// Work is a poem or collection by an author.
type Work struct {
	Name     string    `json:"name"`
	Edition  string    `json:"edition"`
	Sections []Section `json:"sections"`
}

// Section is a run of verse lines sharing one meter.
type Section struct {
	Href  string   `json:"href"`
	Meter string   `json:"meter"`
	Lines []string `json:"lines"`
}

const (
	extJSON = ".json"
	extXZ   = ".json.xz"
)

// IsCorpusFile reports whether path has a corpus file extension.
func IsCorpusFile(path string) bool {
	return strings.HasSuffix(path, extJSON) || strings.HasSuffix(path, extXZ)
}

// Stem returns the base name of path without its corpus extension, e.g.
// "124" for "data/124.json.xz".
func Stem(path string) string {
	base := filepath.Base(path)
	if s, ok := strings.CutSuffix(base, extXZ); ok {
		return s
	}
	return strings.TrimSuffix(base, extJSON)
}

// Discover lists the corpus files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsCorpusFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Load reads one author record. Files ending in .xz are decompressed.
func Load(path string) (*Author, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open xz stream %s: %w", filepath.Base(path), err)
		}
		r = xr
	}
	return Decode(r)
}

// Decode reads one author record from r.
func Decode(r io.Reader) (*Author, error) {
	var a Author
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decode author record: %w", err)
	}
	return &a, nil
}

// Write stores a as indented JSON, xz-compressed when path ends in .xz.
// Non-ASCII characters are written as-is.
func Write(path string, a *Author) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create corpus file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	var xw *xz.Writer
	if strings.HasSuffix(path, ".xz") {
		if xw, err = xz.NewWriter(f); err != nil {
			return fmt.Errorf("open xz writer: %w", err)
		}
		w = xw
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode author record: %w", err)
	}
	if xw != nil {
		if err := xw.Close(); err != nil {
			return fmt.Errorf("close xz writer: %w", err)
		}
	}
	return nil
}

// Hash returns the hex BLAKE3 digest of the file at path. It identifies
// input that has already been converted.
func Hash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Fold returns a copy of a with every text field passed through
// enumeratio.FoldASCII, so that accented Latin survives normalization.
func Fold(a *Author) *Author {
	out := &Author{
		Name:  enumeratio.FoldASCII(a.Name),
		Date:  enumeratio.FoldASCII(a.Date),
		ID:    a.ID,
		URL:   a.URL,
		Works: make([]Work, len(a.Works)),
	}
	for i, w := range a.Works {
		fw := Work{
			Name:     enumeratio.FoldASCII(w.Name),
			Edition:  enumeratio.FoldASCII(w.Edition),
			Sections: make([]Section, len(w.Sections)),
		}
		for j, s := range w.Sections {
			lines := make([]string, len(s.Lines))
			for k, l := range s.Lines {
				lines[k] = enumeratio.FoldASCII(l)
			}
			fw.Sections[j] = Section{Href: s.Href, Meter: s.Meter, Lines: lines}
		}
		out.Works[i] = fw
	}
	return out
}

// LineCount returns the number of verse lines across all works.
func (a *Author) LineCount() int {
	n := 0
	for _, w := range a.Works {
		for _, s := range w.Sections {
			n += len(s.Lines)
		}
	}
	return n
}
