package disambig

import (
	"strings"
	"testing"
	"time"

	"github.com/mesafina/mesafina/internal/locale"
	"github.com/mesafina/mesafina/internal/outcome"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func newTestPending(t *testing.T) *Pending {
	t.Helper()
	p, err := NewPending("Daniela Rossi", "Jordan Lee", map[string]any{
		"restaurantId": "rst-1",
		"timezone":     "Europe/Madrid",
		"sessionId":    "sess-1",
		"language":     "en",
		"date":         "2026-03-20",
		"time":         "19:30",
		"partySize":    4,
	}, testNow)
	if err != nil {
		t.Fatalf("NewPending: %v", err)
	}
	return p
}

func newTestResolver() *Resolver {
	return NewResolver(locale.NewRegistry())
}

func TestCeilingAlwaysTerminates(t *testing.T) {
	reg := locale.NewRegistry()
	for _, loc := range reg.Codes() {
		t.Run(loc, func(t *testing.T) {
			r := NewResolver(reg)
			p := newTestPending(t)

			for i := uint(1); i < MaxAttempts; i++ {
				res, err := r.Resolve(p, "qqqq zzzz wwww", loc, testNow)
				if err != nil {
					t.Fatalf("attempt %d: %v", i, err)
				}
				if res.Status != StatusReprompt {
					t.Fatalf("attempt %d: status = %q, want reprompt", i, res.Status)
				}
				if res.Pending.Attempts != i {
					t.Fatalf("attempt %d: attempts = %d", i, res.Pending.Attempts)
				}
				p = res.Pending
			}

			res, err := r.Resolve(p, "qqqq zzzz wwww", loc, testNow)
			if err != nil {
				t.Fatalf("final attempt: %v", err)
			}
			if res.Status != StatusFallback {
				t.Fatalf("final attempt: status = %q, want fallback", res.Status)
			}
			if res.Value != "Jordan Lee" {
				t.Errorf("fallback value = %q, want the requested name", res.Value)
			}
			if !strings.Contains(res.Message, "Jordan Lee") {
				t.Errorf("fallback message must disclose the choice, got %q", res.Message)
			}

			// The ceiling is absolute: a replayed terminal state must not loop.
			res, err = r.Resolve(res.Pending, "still gibberish", loc, testNow)
			if err != nil {
				t.Fatalf("past ceiling: %v", err)
			}
			if res.Status != StatusFallback {
				t.Errorf("past ceiling: status = %q, want fallback", res.Status)
			}
		})
	}
}

func TestExactMatchWinsAlone(t *testing.T) {
	reg := locale.NewRegistry()
	for _, loc := range reg.Codes() {
		t.Run(loc, func(t *testing.T) {
			r := NewResolver(reg)
			// Disable everything after the exact stage.
			r.Matchers = r.Matchers[:1]

			p := newTestPending(t)
			res, err := r.Resolve(p, "Daniela Rossi", loc, testNow)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Status != StatusResolved || res.Choice != ChoiceOnFile {
				t.Fatalf("got %+v, want resolved on_file", res)
			}
			if res.Value != "Daniela Rossi" {
				t.Errorf("value = %q", res.Value)
			}
		})
	}
}

func TestMatcherStages(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name   string
		reply  string
		locale string
		choice Choice
	}{
		{"exact requested", "jordan lee", "en", ChoiceRequested},
		{"substring", "daniela rossi is the right name", "en", ChoiceOnFile},
		{"substring reverse", "daniela ros", "en", ChoiceOnFile},
		{"pattern", "go with jordan", "en", ChoiceRequested},
		{"pattern please", "daniela please", "en", ChoiceOnFile},
		{"yes keeps requested", "yes", "en", ChoiceRequested},
		{"no keeps on file", "no, that's wrong", "en", ChoiceOnFile},
		{"yes spanish", "sí, eso", "es", ChoiceRequested},
		{"fuzzy one edit", "daniela rosi", "en", ChoiceOnFile},
		{"position first", "the first one", "en", ChoiceOnFile},
		{"position option 2", "option 2", "en", ChoiceRequested},
		{"position german", "die zweite", "de", ChoiceRequested},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPending(t)
			res, err := r.Resolve(p, tt.reply, tt.locale, testNow)
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.reply, err)
			}
			if res.Status != StatusResolved {
				t.Fatalf("Resolve(%q): status = %q, want resolved", tt.reply, res.Status)
			}
			if res.Choice != tt.choice {
				t.Errorf("Resolve(%q): choice = %q, want %q", tt.reply, res.Choice, tt.choice)
			}
		})
	}
}

func TestFuzzyIgnoresShortCandidates(t *testing.T) {
	r := newTestResolver()
	p, err := NewPending("Ana", "Beatriz Campos", nil, testNow)
	if err != nil {
		t.Fatalf("NewPending: %v", err)
	}

	// One edit away from "Ana", but three-letter names never fuzzy-match.
	res, err := r.Resolve(p, "anna", "en", testNow)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != StatusReprompt {
		t.Fatalf("status = %q, want reprompt", res.Status)
	}

	// A longer candidate at distance one does resolve.
	res, err = r.Resolve(p, "beatriz kampos", "en", testNow)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Status != StatusResolved || res.Choice != ChoiceRequested {
		t.Fatalf("got %+v, want resolved requested", res)
	}
}

func TestRepromptEscalation(t *testing.T) {
	r := newTestResolver()
	p := newTestPending(t)

	polite := r.Prompt(p, "en")

	res1, err := r.Resolve(p, "mumble", "en", testNow)
	if err != nil {
		t.Fatalf("Resolve 1: %v", err)
	}
	res2, err := r.Resolve(res1.Pending, "mumble", "en", testNow)
	if err != nil {
		t.Fatalf("Resolve 2: %v", err)
	}

	if polite == res1.Message || res1.Message == res2.Message || polite == res2.Message {
		t.Errorf("prompts must escalate: %q / %q / %q", polite, res1.Message, res2.Message)
	}
	// The numbered tier lists options in the fixed 1=on-file, 2=requested order.
	if !strings.Contains(res1.Message, "1") || !strings.Contains(res1.Message, "2") {
		t.Errorf("second tier should number the options, got %q", res1.Message)
	}
	if res1.Pending.LastAttemptAt == nil {
		t.Error("LastAttemptAt not set on failed attempt")
	}
}

func TestEmptyReplyIsValidation(t *testing.T) {
	r := newTestResolver()
	p := newTestPending(t)

	for _, reply := range []string{"", "   ", "​​", "<>{}"} {
		_, err := r.Resolve(p, reply, "en", testNow)
		if !outcome.Is(err, outcome.CategoryValidation) {
			t.Errorf("Resolve(%q): err = %v, want validation failure", reply, err)
		}
	}
	if p.Attempts != 0 {
		t.Errorf("validation failures must not consume attempts, got %d", p.Attempts)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Jordan   Lee ", "jordan lee"},
		{"jordan​lee", "jordanlee"},
		{"<script>jordan</script>", "scriptjordan/script"},
		{"use `rm -rf`; $HOME", "use rm -rf home"},
		{"JORDAN\tLEE\n", "jordan lee"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("a", 1000)
	if got := Sanitize(long); len(got) != maxReplyRunes {
		t.Errorf("Sanitize cap = %d runes, want %d", len(got), maxReplyRunes)
	}
}

func TestNewPendingPayloadIntegrity(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		if _, err := NewPending("A B", "C D", map[string]any{
			"restaurantId": "r1", "partySize": 2, "notes": "window seat",
		}, testNow); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-allow-listed key", func(t *testing.T) {
		_, err := NewPending("A B", "C D", map[string]any{"socket": "fd-7"}, testNow)
		if !outcome.Is(err, outcome.CategorySystem) {
			t.Fatalf("err = %v, want system failure", err)
		}
	})

	t.Run("non-primitive value", func(t *testing.T) {
		_, err := NewPending("A B", "C D", map[string]any{
			"notes": map[string]any{"nested": true},
		}, testNow)
		if !outcome.Is(err, outcome.CategorySystem) {
			t.Fatalf("err = %v, want system failure", err)
		}
	})

	t.Run("self-referential structure", func(t *testing.T) {
		cyclic := map[string]any{}
		cyclic["self"] = cyclic
		_, err := NewPending("A B", "C D", map[string]any{"notes": cyclic}, testNow)
		if !outcome.Is(err, outcome.CategorySystem) {
			t.Fatalf("err = %v, want system failure", err)
		}
	})

	t.Run("missing candidate", func(t *testing.T) {
		_, err := NewPending("", "C D", nil, testNow)
		if !outcome.Is(err, outcome.CategoryValidation) {
			t.Fatalf("err = %v, want validation failure", err)
		}
	})
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"marta", "martha", 1},
		{"daniela", "daniella", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
