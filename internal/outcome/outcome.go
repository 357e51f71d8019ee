// Package outcome carries the result convention shared by the conversation
// core: expected failures are returned as categorized errors, never panics.
package outcome

import (
	"errors"
	"fmt"
)

// Category classifies an expected failure.
type Category string

const (
	// CategoryValidation marks malformed caller input (empty reply,
	// unparseable identifier). The caller should re-prompt, not retry.
	CategoryValidation Category = "validation"
	// CategoryBusinessRule marks a domain rule refusing the operation
	// (mutability window passed, no extraction match).
	CategoryBusinessRule Category = "business_rule"
	// CategorySystem marks an internal fault (serialization-integrity
	// failure, storage error) that should abort the current action.
	CategorySystem Category = "system"
)

// Error is a categorized expected failure.
type Error struct {
	Category Category
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Reason)
}

// Validationf builds a validation-category error.
func Validationf(format string, args ...any) *Error {
	return &Error{Category: CategoryValidation, Reason: fmt.Sprintf(format, args...)}
}

// BusinessRulef builds a business-rule-category error.
func BusinessRulef(format string, args ...any) *Error {
	return &Error{Category: CategoryBusinessRule, Reason: fmt.Sprintf(format, args...)}
}

// Systemf builds a system-category error.
func Systemf(format string, args ...any) *Error {
	return &Error{Category: CategorySystem, Reason: fmt.Sprintf(format, args...)}
}

// CategoryOf extracts the failure category from err, unwrapping as needed.
// The second return is false for uncategorized errors.
func CategoryOf(err error) (Category, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Category, true
	}
	return "", false
}

// Is reports whether err carries the given category.
func Is(err error, c Category) bool {
	got, ok := CategoryOf(err)
	return ok && got == c
}
