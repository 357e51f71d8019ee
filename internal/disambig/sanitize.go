package disambig

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxReplyRunes caps how much of a reply the matchers will look at.
const maxReplyRunes = 256

// injectionRunes are stripped before matching; none of them can appear in a
// legitimate name reply, and all of them show up in prompt-injection attempts.
const injectionRunes = "<>{}[]`$\\|;"

// Sanitize prepares a raw reply for matching: unicode composition is
// normalized, control and zero-width characters are dropped, injection
// characters are stripped, whitespace is collapsed, and the result is
// lower-cased and capped.
func Sanitize(reply string) string {
	s := norm.NFC.String(reply)

	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsControl(r):
			return -1
		case r >= 0x200b && r <= 0x200d, r == 0xfeff: // zero-width runs
			return -1
		case strings.ContainsRune(injectionRunes, r):
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxReplyRunes {
		s = string(runes[:maxReplyRunes])
	}
	return s
}
