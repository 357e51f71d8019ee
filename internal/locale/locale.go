// Package locale holds the per-language pattern and phrase tables used by the
// time normalizer and the name disambiguation pipeline. Tables are built once
// and passed by reference; nothing in this package is mutable after NewRegistry.
package locale

import (
	"regexp"
	"sort"
)

// SpokenForm translates an idiomatic time phrase into HH:MM. Pattern must
// capture the hour (a digit run or an hour word) in group 1.
type SpokenForm struct {
	Pattern    *regexp.Regexp
	HourOffset int // added to the captured hour, e.g. -1 for "quarter to"
	Minute     int
}

// Table is the full pattern set for one language.
type Table struct {
	Code string

	// Time normalization vocabulary.
	TimeMarkers   []string // prepositions that usually precede a time ("at")
	RangeWords    []string // range vocabulary that makes A-B a span, not a time
	UnitWords     []string // duration units that reject a time rewrite
	QuantityWords []string // party-size/table vocabulary
	OClockPattern *regexp.Regexp
	HourWords     map[string]int
	SpokenForms   []SpokenForm
	DecimalTime   bool // HH.MM is a first-class time format in this language

	// Disambiguation vocabulary.
	Affirmative    []string
	Negative       []string
	ChoicePatterns []*regexp.Regexp // group 1 captures the chosen name span
	OrdinalFirst   []string
	OrdinalSecond  []string

	// Reprompt templates. All take (name on file, requested name), in the
	// same 1/2 order the position matcher uses.
	RepromptPolite  string
	RepromptOptions string
	RepromptFinal   string
	FallbackNotice  string // takes the auto-chosen name
}

// Registry is an immutable locale lookup. Unknown codes fall back to English.
type Registry struct {
	tables map[string]Table
}

// NewRegistry builds the registry with all built-in language tables.
func NewRegistry() *Registry {
	r := &Registry{tables: make(map[string]Table)}
	for _, t := range []Table{english(), spanish(), german()} {
		r.tables[t.Code] = t
	}
	return r
}

// Get returns the table for code, falling back to English.
func (r *Registry) Get(code string) Table {
	if t, ok := r.tables[code]; ok {
		return t
	}
	return r.tables["en"]
}

// Has reports whether code has a dedicated table.
func (r *Registry) Has(code string) bool {
	_, ok := r.tables[code]
	return ok
}

// Codes lists the supported locale codes, sorted.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.tables))
	for c := range r.tables {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
