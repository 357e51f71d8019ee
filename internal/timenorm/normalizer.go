// Package timenorm repairs ambiguous or mistyped time expressions in guest
// messages before they reach parsing or the completion provider. It is a pure
// rewrite pipeline: unparseable or low-confidence spans are left untouched and
// every accepted rewrite is recorded as a Change.
package timenorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mesafina/mesafina/internal/locale"
)

// PatternKind identifies which pipeline stage produced a rewrite.
type PatternKind string

const (
	KindDashTypo      PatternKind = "dash_typo"
	KindSpaceTypo     PatternKind = "space_typo"
	KindCommaTypo     PatternKind = "comma_typo"
	KindExplicitMark  PatternKind = "explicit_marker"
	KindSpokenForm    PatternKind = "spoken_form"
	KindHalfShorthand PatternKind = "half_shorthand"
	KindReversedRange PatternKind = "reversed_range"
	KindDecimalFormat PatternKind = "decimal_format"
)

// Change records one accepted rewrite.
type Change struct {
	Original   string      `json:"original"`
	Normalized string      `json:"normalized"`
	Kind       PatternKind `json:"kind"`
	Confidence float64     `json:"confidence"`
}

// Result is the outcome of normalizing one message.
type Result struct {
	Message         string   `json:"message"`
	Changes         []Change `json:"changes"`
	HasTimePatterns bool     `json:"has_time_patterns"`
}

// DefaultAcceptThreshold is the minimum contextual confidence for a
// context-scored rewrite to be applied. The value is a tuned default, not a
// derived constant; it is overridable per Normalizer.
const DefaultAcceptThreshold = 0.6

// Contextual scoring weights.
const (
	baseConfidence  = 0.5
	markerBonus     = 0.2  // a time preposition shortly before the token
	dinnerBonus     = 0.2  // hour falls in the usual dinner window
	rangePenalty    = 0.25 // range vocabulary near the token
	quantityPenalty = 0.3  // party-size vocabulary immediately before
)

// Dinner window (inclusive) for the restaurant-hours bonus.
const (
	dinnerStart = 17
	dinnerEnd   = 22
)

// contextWindow is how many bytes around a token are inspected for vocabulary.
const contextWindow = 24

var (
	dashDotRe   = regexp.MustCompile(`\b(\d{1,2})[-.](\d{2})\b`)
	spaceRe     = regexp.MustCompile(`\b(\d{1,2})[ \t]+(\d{2})\b`)
	commaRe     = regexp.MustCompile(`\b(\d{1,2}),(\d{2})\b`)
	hourLetterRe = regexp.MustCompile(`(?i)\b(\d{1,2})h(\d{2})?\b`)
	meridiemRe  = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)\b`)
	halfRe      = regexp.MustCompile(`\b(\d{1,2})\.5\b`)
	bareDashRe  = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})\b`)

	timePatternRe = regexp.MustCompile(
		`(?i)\d{1,2}[:\-., ]\d{2}\b|\d{1,2}\s*(?:am|pm|a\.m\.|p\.m\.)\b|\d{1,2}h\d{0,2}\b|o'?\s?clock|uhr|en\s+punto|\d{1,2}\.5\b`)
)

// HasTimePatterns is a cheap pre-check: it reports whether message contains
// anything that could be a time expression. Callers may skip Normalize when
// it returns false.
func HasTimePatterns(message string) bool {
	return timePatternRe.MatchString(message)
}

// Normalizer rewrites time expressions using injected locale tables.
type Normalizer struct {
	locales *locale.Registry

	// Threshold is the acceptance bar for context-scored rewrites.
	Threshold float64
}

// New creates a Normalizer with the default acceptance threshold.
func New(reg *locale.Registry) *Normalizer {
	return &Normalizer{locales: reg, Threshold: DefaultAcceptThreshold}
}

// Normalize runs the ordered rewrite pipeline over message. Each stage scans
// the already partially rewritten string, so later stages see earlier
// corrections. The function never fails; at worst the message is returned
// unchanged with an empty change list.
func (n *Normalizer) Normalize(message, localeCode string) Result {
	tbl := n.locales.Get(localeCode)
	st := &rewriteState{msg: message}

	n.repairDashDot(st, tbl)
	n.repairSpace(st, tbl)
	n.repairComma(st)
	n.rewriteExplicit(st, tbl)
	n.rewriteSpoken(st, tbl)
	n.rewriteHalfShorthand(st)
	n.rewriteReversedRange(st, tbl)
	if tbl.DecimalTime {
		n.rewriteDecimal(st)
	}

	return Result{
		Message:         st.msg,
		Changes:         st.changes,
		HasTimePatterns: HasTimePatterns(message),
	}
}

// rewriteState carries the evolving message through the pipeline.
type rewriteState struct {
	msg     string
	changes []Change
}

// replacement is one pending span rewrite within a single stage pass.
type replacement struct {
	start, end int
	text       string
	confidence float64
}

// apply scans st.msg with re and asks fn for a rewrite of each match. fn
// receives the submatch groups plus the surrounding context windows and
// returns the replacement text, its confidence, and whether to rewrite.
func (st *rewriteState) apply(re *regexp.Regexp, kind PatternKind, fn func(groups []string, before, after string) (string, float64, bool)) {
	idx := re.FindAllStringSubmatchIndex(st.msg, -1)
	if len(idx) == 0 {
		return
	}

	var reps []replacement
	for _, m := range idx {
		start, end := m[0], m[1]
		groups := make([]string, 0, len(m)/2)
		for g := 0; g < len(m); g += 2 {
			if m[g] < 0 {
				groups = append(groups, "")
			} else {
				groups = append(groups, st.msg[m[g]:m[g+1]])
			}
		}

		before := st.msg[max(0, start-contextWindow):start]
		after := st.msg[end:min(len(st.msg), end+contextWindow)]

		text, conf, ok := fn(groups, before, after)
		if !ok {
			continue
		}
		reps = append(reps, replacement{start: start, end: end, text: text, confidence: conf})
	}
	if len(reps) == 0 {
		return
	}

	var b strings.Builder
	last := 0
	for _, r := range reps {
		b.WriteString(st.msg[last:r.start])
		b.WriteString(r.text)
		st.changes = append(st.changes, Change{
			Original:   st.msg[r.start:r.end],
			Normalized: r.text,
			Kind:       kind,
			Confidence: r.confidence,
		})
		last = r.end
	}
	b.WriteString(st.msg[last:])
	st.msg = b.String()
}

// Stage 1: dash/dot typo repair ("19-30", "19.30").
func (n *Normalizer) repairDashDot(st *rewriteState, tbl locale.Table) {
	st.apply(dashDotRe, KindDashTypo, func(g []string, before, after string) (string, float64, bool) {
		hh, mm, ok := parseClock(g[1], g[2])
		if !ok {
			return "", 0, false
		}
		if firstWordIn(after, tbl.UnitWords) {
			return "", 0, false
		}
		if plausibleDate(hh, mm) {
			return "", 0, false
		}
		conf := n.score(tbl, hh, before, after)
		if conf <= n.Threshold {
			return "", 0, false
		}
		return clock(hh, mm), conf, true
	})
}

// Stage 2: space typo repair ("19 30").
func (n *Normalizer) repairSpace(st *rewriteState, tbl locale.Table) {
	st.apply(spaceRe, KindSpaceTypo, func(g []string, before, after string) (string, float64, bool) {
		hh, mm, ok := parseClock(g[1], g[2])
		if !ok {
			return "", 0, false
		}
		if firstWordIn(after, tbl.UnitWords) || firstWordIn(after, tbl.QuantityWords) {
			return "", 0, false
		}
		conf := n.score(tbl, hh, before, after)
		if conf <= n.Threshold {
			return "", 0, false
		}
		return clock(hh, mm), conf, true
	})
}

// Stage 3: comma typo repair ("19,30"). Regional comma-as-separator usage is
// common enough that a valid hour/minute pair is rewritten unconditionally.
func (n *Normalizer) repairComma(st *rewriteState) {
	st.apply(commaRe, KindCommaTypo, func(g []string, before, after string) (string, float64, bool) {
		hh, mm, ok := parseClock(g[1], g[2])
		if !ok {
			return "", 0, false
		}
		return clock(hh, mm), 0.9, true
	})
}

// Stage 4: explicit markers ("19h30", "7pm", "8 o'clock" and locale forms).
func (n *Normalizer) rewriteExplicit(st *rewriteState, tbl locale.Table) {
	st.apply(hourLetterRe, KindExplicitMark, func(g []string, before, after string) (string, float64, bool) {
		hh, err := strconv.Atoi(g[1])
		if err != nil || hh > 23 {
			return "", 0, false
		}
		mm := 0
		if g[2] != "" {
			mm, err = strconv.Atoi(g[2])
			if err != nil || mm > 59 {
				return "", 0, false
			}
		}
		return clock(hh, mm), 0.95, true
	})

	st.apply(meridiemRe, KindExplicitMark, func(g []string, before, after string) (string, float64, bool) {
		hh, err := strconv.Atoi(g[1])
		if err != nil || hh < 1 || hh > 12 {
			return "", 0, false
		}
		mm := 0
		if g[2] != "" {
			mm, err = strconv.Atoi(g[2])
			if err != nil || mm > 59 {
				return "", 0, false
			}
		}
		pm := strings.HasPrefix(strings.ToLower(g[3]), "p")
		if pm && hh < 12 {
			hh += 12
		}
		if !pm && hh == 12 {
			hh = 0
		}
		return clock(hh, mm), 0.95, true
	})

	if tbl.OClockPattern != nil {
		st.apply(tbl.OClockPattern, KindExplicitMark, func(g []string, before, after string) (string, float64, bool) {
			hh, err := strconv.Atoi(g[1])
			if err != nil || hh > 23 {
				return "", 0, false
			}
			hh = dinnerShift(hh)
			return clock(hh, 0), 0.85, true
		})
	}
}

// Stage 5: spoken-form repair ("half past seven", "ocho y media", "halb acht").
func (n *Normalizer) rewriteSpoken(st *rewriteState, tbl locale.Table) {
	for _, form := range tbl.SpokenForms {
		f := form
		st.apply(f.Pattern, KindSpokenForm, func(g []string, before, after string) (string, float64, bool) {
			hh, ok := parseHourToken(g[1], tbl.HourWords)
			if !ok {
				return "", 0, false
			}
			hh += f.HourOffset
			if hh < 0 {
				hh += 24
			}
			return clock(hh, f.Minute), 0.85, true
		})
	}
}

// Stage 6: half-hour shorthand ("19.5" -> "19:30").
func (n *Normalizer) rewriteHalfShorthand(st *rewriteState) {
	st.apply(halfRe, KindHalfShorthand, func(g []string, before, after string) (string, float64, bool) {
		hh, err := strconv.Atoi(g[1])
		if err != nil || hh > 23 {
			return "", 0, false
		}
		return clock(hh, 30), 0.8, true
	})
}

// Stage 7: range disambiguation. A bare "A-B" token with A > B cannot be an
// hour span, so with enough contextual confidence it is read as A:B. This
// catches tokens the dash stage skipped, e.g. single-digit minutes ("21-5")
// and date-plausible pairs ("22-10").
func (n *Normalizer) rewriteReversedRange(st *rewriteState, tbl locale.Table) {
	st.apply(bareDashRe, KindReversedRange, func(g []string, before, after string) (string, float64, bool) {
		hh, err1 := strconv.Atoi(g[1])
		mm, err2 := strconv.Atoi(g[2])
		if err1 != nil || err2 != nil {
			return "", 0, false
		}
		if hh <= mm || hh > 23 || mm > 59 {
			return "", 0, false
		}
		// A zero-padded second half ("19-07") reads as a month, not minutes.
		if len(g[2]) == 2 && g[2][0] == '0' {
			return "", 0, false
		}
		conf := n.score(tbl, hh, before, after)
		if conf <= n.Threshold {
			return "", 0, false
		}
		return clock(hh, mm), conf, true
	})
}

// Stage 8: locale decimal format ("HH.MM" as a first-class time). Applied
// last and only inside plausible dining hours, so leftover tokens the scored
// dash stage declined still get repaired for decimal-time locales.
func (n *Normalizer) rewriteDecimal(st *rewriteState) {
	st.apply(dashDotRe, KindDecimalFormat, func(g []string, before, after string) (string, float64, bool) {
		if !strings.Contains(g[0], ".") {
			return "", 0, false
		}
		hh, mm, ok := parseClock(g[1], g[2])
		if !ok || hh < 10 {
			return "", 0, false
		}
		if plausibleDate(hh, mm) {
			return "", 0, false
		}
		return clock(hh, mm), 0.9, true
	})
}

// score computes the contextual confidence for a candidate time token.
func (n *Normalizer) score(tbl locale.Table, hour int, before, after string) float64 {
	c := baseConfidence
	if containsWord(before, tbl.TimeMarkers) {
		c += markerBonus
	}
	if hour >= dinnerStart && hour <= dinnerEnd {
		c += dinnerBonus
	}
	if containsWord(before, tbl.RangeWords) || containsWord(after, tbl.RangeWords) {
		c -= rangePenalty
	}
	if lastWordIn(before, tbl.QuantityWords) {
		c -= quantityPenalty
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func parseClock(h, m string) (int, int, bool) {
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh > 23 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

func clock(hh, mm int) string {
	return fmt.Sprintf("%d:%02d", hh, mm)
}

// plausibleDate reports whether a pair reads naturally as day-month.
func plausibleDate(a, b int) bool {
	return a >= 1 && a <= 31 && b >= 1 && b <= 12
}

// dinnerShift moves a bare low hour into the dinner window when that lands
// inside typical evening service ("8 o'clock" -> 20:00).
func dinnerShift(hh int) int {
	if hh >= 1 && hh <= 11 && hh+12 >= dinnerStart && hh+12 <= dinnerEnd+1 {
		return hh + 12
	}
	return hh
}

func parseHourToken(tok string, words map[string]int) (int, bool) {
	if hh, err := strconv.Atoi(tok); err == nil {
		if hh > 23 {
			return 0, false
		}
		return hh, true
	}
	hh, ok := words[strings.ToLower(tok)]
	return hh, ok
}

func wordsOf(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func containsWord(window string, words []string) bool {
	for _, w := range wordsOf(window) {
		for _, cand := range words {
			if w == cand {
				return true
			}
		}
	}
	return false
}

// firstWordIn checks the token immediately after the match, used to reject
// durations like "19-30 minutes".
func firstWordIn(window string, words []string) bool {
	ws := wordsOf(window)
	if len(ws) == 0 {
		return false
	}
	first := ws[0]
	for _, cand := range words {
		if first == cand {
			return true
		}
	}
	return false
}

// lastWordIn checks only the token immediately before the match, so "for 2 at
// 19-30" is not penalized by the earlier "for".
func lastWordIn(window string, words []string) bool {
	ws := wordsOf(window)
	if len(ws) == 0 {
		return false
	}
	last := ws[len(ws)-1]
	for _, cand := range words {
		if last == cand {
			return true
		}
	}
	return false
}
