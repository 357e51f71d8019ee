package disambig

import (
	"fmt"
	"time"

	"github.com/mesafina/mesafina/internal/locale"
	"github.com/mesafina/mesafina/internal/outcome"
)

// Status tags a resolution outcome.
type Status string

const (
	// StatusResolved means a matcher extracted a choice; the pending state
	// should be removed from the session.
	StatusResolved Status = "resolved"
	// StatusReprompt means extraction failed below the ceiling; the caller
	// should send Message and persist the updated Pending.
	StatusReprompt Status = "reprompt"
	// StatusFallback means the ceiling was reached and the requested name
	// was force-chosen. Terminal; Message discloses the automatic choice.
	StatusFallback Status = "fallback"
)

// Resolution is the tagged outcome of one Resolve call.
type Resolution struct {
	Status  Status
	Choice  Choice
	Value   string
	Message string
	Pending *Pending // updated state for reprompt; final state for fallback
}

// Resolver drives the clarification state machine. Matchers is exported so
// tests can exercise individual stages; production callers use NewResolver.
type Resolver struct {
	locales  *locale.Registry
	Matchers []Matcher
}

// NewResolver creates a Resolver with the full extraction pipeline.
func NewResolver(reg *locale.Registry) *Resolver {
	return &Resolver{locales: reg, Matchers: defaultMatchers()}
}

// Resolve evaluates one guest reply against the pending conflict. It never
// mutates p; reprompt and fallback outcomes carry an updated copy.
//
// An empty (post-sanitization) reply is a validation failure reported to the
// caller and does not consume an attempt.
func (r *Resolver) Resolve(p *Pending, reply, localeCode string, now time.Time) (Resolution, error) {
	if p == nil {
		return Resolution{}, outcome.Systemf("no pending disambiguation")
	}
	tbl := r.locales.Get(localeCode)

	// The ceiling is absolute: a pending state that somehow comes back at
	// the ceiling terminates immediately instead of looping.
	if p.Attempts >= p.MaxAttempts {
		return r.fallback(*p, tbl), nil
	}

	sanitized := Sanitize(reply)
	if sanitized == "" {
		return Resolution{}, outcome.Validationf("empty reply")
	}

	onFile := Sanitize(p.CandidateOnFile)
	requested := Sanitize(p.CandidateRequested)
	for _, m := range r.Matchers {
		if choice, ok := m(sanitized, onFile, requested, tbl); ok {
			return Resolution{
				Status: StatusResolved,
				Choice: choice,
				Value:  p.value(choice),
			}, nil
		}
	}

	updated := *p
	updated.Attempts++
	t := now.UTC()
	updated.LastAttemptAt = &t

	if updated.Attempts >= updated.MaxAttempts {
		return r.fallback(updated, tbl), nil
	}
	return Resolution{
		Status:  StatusReprompt,
		Message: promptFor(&updated, tbl),
		Pending: &updated,
	}, nil
}

// Prompt returns the clarification question for the pending state's current
// attempt count, in the session's language.
func (r *Resolver) Prompt(p *Pending, localeCode string) string {
	return promptFor(p, r.locales.Get(localeCode))
}

// promptFor escalates strictly with the attempt count: polite question, then
// numbered options, then a final warning.
func promptFor(p *Pending, tbl locale.Table) string {
	switch {
	case p.Attempts <= 0:
		return fmt.Sprintf(tbl.RepromptPolite, p.CandidateOnFile, p.CandidateRequested)
	case p.Attempts == 1:
		return fmt.Sprintf(tbl.RepromptOptions, p.CandidateOnFile, p.CandidateRequested)
	default:
		return fmt.Sprintf(tbl.RepromptFinal, p.CandidateOnFile, p.CandidateRequested)
	}
}

// fallback force-chooses the requested name and discloses it.
func (r *Resolver) fallback(p Pending, tbl locale.Table) Resolution {
	p.Attempts = p.MaxAttempts
	return Resolution{
		Status:  StatusFallback,
		Choice:  ChoiceRequested,
		Value:   p.CandidateRequested,
		Message: fmt.Sprintf(tbl.FallbackNotice, p.CandidateRequested),
		Pending: &p,
	}
}
