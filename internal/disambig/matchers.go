package disambig

import (
	"strings"
	"unicode/utf8"

	"github.com/mesafina/mesafina/internal/locale"
)

// Choice names which candidate a reply selected. The two candidates have
// fixed semantic roles: "on file" is the stored guest profile, "requested"
// the name the guest just gave.
type Choice string

const (
	ChoiceOnFile    Choice = "on_file"
	ChoiceRequested Choice = "requested"
)

// positionChoices is the explicit first/second convention shared by the
// position matcher and the numbered reprompt tier: option 1 is always the
// name on file, option 2 always the requested name. Changing one side without
// the other silently inverts every ordinal reply.
var positionChoices = map[int]Choice{
	1: ChoiceOnFile,
	2: ChoiceRequested,
}

// Matcher is one extraction stage. It receives the sanitized reply and the
// sanitized candidates and reports a choice when the stage is confident.
// Stages run in fixed order; the first match wins.
type Matcher func(reply, onFile, requested string, tbl locale.Table) (Choice, bool)

// fuzzyMaxDistance is the edit-distance ceiling for the fuzzy stage.
const fuzzyMaxDistance = 2

// fuzzyMinCandidateLen guards short names: one edit on a three-letter name is
// too easy to hit by accident.
const fuzzyMinCandidateLen = 4

func defaultMatchers() []Matcher {
	return []Matcher{
		matchExact,
		matchSubstring,
		matchPattern,
		matchYesNo,
		matchFuzzy,
		matchPosition,
	}
}

func matchExact(reply, onFile, requested string, _ locale.Table) (Choice, bool) {
	if reply == onFile {
		return ChoiceOnFile, true
	}
	if reply == requested {
		return ChoiceRequested, true
	}
	return "", false
}

func matchSubstring(reply, onFile, requested string, _ locale.Table) (Choice, bool) {
	a := containsEither(reply, onFile)
	b := containsEither(reply, requested)
	if a == b {
		return "", false
	}
	if a {
		return ChoiceOnFile, true
	}
	return ChoiceRequested, true
}

// containsEither checks containment in both directions. The reverse direction
// needs a few runes of reply to be meaningful.
func containsEither(reply, candidate string) bool {
	if strings.Contains(reply, candidate) {
		return true
	}
	return utf8.RuneCountInString(reply) >= 3 && strings.Contains(candidate, reply)
}

func matchPattern(reply, onFile, requested string, tbl locale.Table) (Choice, bool) {
	for _, re := range tbl.ChoicePatterns {
		m := re.FindStringSubmatch(reply)
		if m == nil {
			continue
		}
		span := strings.TrimSpace(m[1])
		if span == "" {
			continue
		}
		a := containsEither(span, onFile)
		b := containsEither(span, requested)
		if a == b {
			continue
		}
		if a {
			return ChoiceOnFile, true
		}
		return ChoiceRequested, true
	}
	return "", false
}

// matchYesNo maps affirmatives to the requested name and negatives to the
// name on file: the clarification question asks whether the newly given name
// should replace the stored one.
func matchYesNo(reply, _, _ string, tbl locale.Table) (Choice, bool) {
	tokens := strings.Fields(reply)
	aff := anyToken(tokens, tbl.Affirmative)
	neg := anyToken(tokens, tbl.Negative)
	if aff == neg {
		return "", false
	}
	if aff {
		return ChoiceRequested, true
	}
	return ChoiceOnFile, true
}

func matchFuzzy(reply, onFile, requested string, _ locale.Table) (Choice, bool) {
	distA, okA := fuzzyDistance(reply, onFile)
	distB, okB := fuzzyDistance(reply, requested)

	switch {
	case okA && okB:
		if distA < distB {
			return ChoiceOnFile, true
		}
		if distB < distA {
			return ChoiceRequested, true
		}
		return "", false
	case okA:
		return ChoiceOnFile, true
	case okB:
		return ChoiceRequested, true
	}
	return "", false
}

func fuzzyDistance(reply, candidate string) (int, bool) {
	if utf8.RuneCountInString(candidate) < fuzzyMinCandidateLen {
		return 0, false
	}
	d := levenshtein(reply, candidate)
	return d, d <= fuzzyMaxDistance
}

func matchPosition(reply, _, _ string, tbl locale.Table) (Choice, bool) {
	tokens := strings.Fields(reply)
	first := anyToken(tokens, tbl.OrdinalFirst)
	second := anyToken(tokens, tbl.OrdinalSecond)
	if first == second {
		return "", false
	}
	if first {
		return positionChoices[1], true
	}
	return positionChoices[2], true
}

func anyToken(tokens []string, words []string) bool {
	for _, t := range tokens {
		t = strings.Trim(t, ".,!?¡¿:")
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

// levenshtein computes the edit distance between two strings by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
