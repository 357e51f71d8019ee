// Package disambig resolves a detected guest-name conflict through a bounded
// multi-stage clarification dialogue. The state machine terminates in at most
// MaxAttempts turns no matter what the guest replies.
package disambig

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/mesafina/mesafina/internal/outcome"
)

// Kind tags the conflict type. Only name clarification exists today; the tag
// leaves room for other conflict kinds without a schema change.
type Kind string

const KindNameClarification Kind = "name_clarification"

// MaxAttempts is the absolute extraction ceiling per conflict.
const MaxAttempts uint = 3

// Pending is the serializable state of one unresolved name conflict. It is
// owned by exactly one conversation session and round-trips through the
// session store between turns.
type Pending struct {
	Kind               Kind           `json:"kind"`
	CandidateOnFile    string         `json:"candidate_on_file"`
	CandidateRequested string         `json:"candidate_requested"`
	Payload            map[string]any `json:"payload,omitempty"`
	Attempts           uint           `json:"attempts"`
	MaxAttempts        uint           `json:"max_attempts"`
	CreatedAt          time.Time      `json:"created_at"`
	LastAttemptAt      *time.Time     `json:"last_attempt_at,omitempty"`
}

// allowedPayloadKeys is the exact field set a pending payload may carry:
// session context plus the primitive booking fields needed to finish the
// action once the conflict resolves. Anything else risks dragging session or
// transport objects into the store.
var allowedPayloadKeys = map[string]bool{
	"restaurantId": true,
	"timezone":     true,
	"sessionId":    true,
	"language":     true,

	"date":            true,
	"time":            true,
	"partySize":       true,
	"guestName":       true,
	"guestPhone":      true,
	"reservationId":   true,
	"tablePreference": true,
	"notes":           true,
}

// NewPending constructs a validated pending conflict. Construction fails with
// a system-category error when the payload cannot be persisted safely; a
// disambiguation that cannot round-trip through the store must not exist.
func NewPending(onFile, requested string, payload map[string]any, now time.Time) (*Pending, error) {
	if strings.TrimSpace(onFile) == "" || strings.TrimSpace(requested) == "" {
		return nil, outcome.Validationf("both candidate names are required")
	}
	if err := checkPayload(payload); err != nil {
		return nil, err
	}
	return &Pending{
		Kind:               KindNameClarification,
		CandidateOnFile:    onFile,
		CandidateRequested: requested,
		Payload:            payload,
		Attempts:           0,
		MaxAttempts:        MaxAttempts,
		CreatedAt:          now.UTC(),
	}, nil
}

// checkPayload enforces the serialization-integrity contract: allow-listed
// keys, primitive values only, and a lossless JSON round trip.
func checkPayload(payload map[string]any) error {
	for k, v := range payload {
		if !allowedPayloadKeys[k] {
			return outcome.Systemf("payload key %q is not allow-listed", k)
		}
		if !isPrimitive(v) {
			return outcome.Systemf("payload key %q holds a non-primitive value", k)
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return outcome.Systemf("payload does not serialize: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(raw, &back); err != nil {
		return outcome.Systemf("payload does not deserialize: %v", err)
	}
	again, err := json.Marshal(back)
	if err != nil {
		return outcome.Systemf("payload round trip failed: %v", err)
	}
	if !bytes.Equal(raw, again) {
		return outcome.Systemf("payload round trip is lossy")
	}
	return nil
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// value returns the candidate text behind a choice.
func (p *Pending) value(c Choice) string {
	if c == ChoiceOnFile {
		return p.CandidateOnFile
	}
	return p.CandidateRequested
}
