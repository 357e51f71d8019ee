// Package identify classifies free-text guest identifiers and computes the
// time windows in which an existing reservation may still be changed.
package identify

import (
	"time"
	"unicode"
)

// Kind is the inferred identifier type, which picks the lookup strategy.
type Kind string

const (
	// KindConfirmation is a short confirmation reference (1-4 digits).
	KindConfirmation Kind = "confirmation"
	// KindPhone is a phone number (7 or more digits after stripping).
	KindPhone Kind = "phone"
	// KindName is a free-text name lookup.
	KindName Kind = "name"
)

// Query pairs a raw identifier with its inferred kind.
type Query struct {
	Raw  string `json:"raw"`
	Kind Kind   `json:"kind"`
}

// Classify infers the identifier kind from its digit run: confirmation
// references and phone numbers are both all-digit in practice but differ
// sharply in length, so the split is purely length-based and never asks the
// guest to clarify.
func Classify(identifier string) Kind {
	digits := 0
	for _, r := range identifier {
		if unicode.IsDigit(r) {
			digits++
		}
	}

	switch {
	case digits >= 1 && digits <= 4:
		return KindConfirmation
	case digits >= 7:
		return KindPhone
	default:
		return KindName
	}
}

// NewQuery classifies identifier and returns it together with the raw text.
func NewQuery(identifier string) Query {
	return Query{Raw: identifier, Kind: Classify(identifier)}
}

// Mutability policy: reservations may be modified up to 4 hours and
// cancelled up to 2 hours before their scheduled time, boundaries inclusive.
// These are policy constants, not configuration.
const (
	ModifyWindowHours = 4.0
	CancelWindowHours = 2.0
)

// Mutability reports what may still be done to a reservation.
type Mutability struct {
	CanModify  bool    `json:"can_modify"`
	CanCancel  bool    `json:"can_cancel"`
	HoursUntil float64 `json:"hours_until"`
}

// ComputeMutability derives the mutability window from the reservation's
// scheduled time and an injected "now". HoursUntil is fractional and signed;
// past reservations yield negative values and no permissions.
func ComputeMutability(targetUTC, nowUTC time.Time) Mutability {
	hours := targetUTC.Sub(nowUTC).Hours()
	return Mutability{
		CanModify:  hours >= ModifyWindowHours,
		CanCancel:  hours >= CancelWindowHours,
		HoursUntil: hours,
	}
}
