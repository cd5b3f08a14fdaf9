package corpus

import (
	"sort"
	"strings"

	"github.com/cours-de-latin/enumeratio"
)

// AllMeters is the configuration value that disables meter filtering.
const AllMeters = "all"

// MeterFilter selects the sections to process by their meter. The zero
// value allows every meter.
type MeterFilter struct {
	meters map[string]bool
}

// ParseMeters builds a filter from configured meter names. An empty list
// or the single value "all" allows everything; mixing "all" with named
// meters is rejected as ambiguous.
func ParseMeters(names []string) (MeterFilter, error) {
	if len(names) == 0 {
		return MeterFilter{}, nil
	}
	if len(names) == 1 && strings.EqualFold(names[0], AllMeters) {
		return MeterFilter{}, nil
	}
	f := MeterFilter{meters: make(map[string]bool, len(names))}
	for i, n := range names {
		switch {
		case strings.TrimSpace(n) == "":
			return MeterFilter{}, enumeratio.NewConfigurationError("allowed_meters", "entry %d is empty", i)
		case strings.EqualFold(n, AllMeters):
			return MeterFilter{}, enumeratio.NewConfigurationError("allowed_meters", "%q cannot be combined with named meters", AllMeters)
		}
		f.meters[n] = true
	}
	return f, nil
}

// All reports whether the filter allows every meter.
func (f MeterFilter) All() bool {
	return f.meters == nil
}

// Allows reports whether sections in meter are processed. Matching is
// exact.
func (f MeterFilter) Allows(meter string) bool {
	return f.meters == nil || f.meters[meter]
}

// Names returns the allowed meters sorted, or ["all"].
func (f MeterFilter) Names() []string {
	if f.meters == nil {
		return []string{AllMeters}
	}
	out := make([]string, 0, len(f.meters))
	for m := range f.meters {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Sections returns the sections of w that f allows, in file order.
func (f MeterFilter) Sections(w Work) []Section {
	var out []Section
	for _, s := range w.Sections {
		if f.Allows(s.Meter) {
			out = append(out, s)
		}
	}
	return out
}
