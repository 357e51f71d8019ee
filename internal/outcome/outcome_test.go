package outcome

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	err := BusinessRulef("cancellation window passed")
	if cat, ok := CategoryOf(err); !ok || cat != CategoryBusinessRule {
		t.Errorf("CategoryOf = %q, %v", cat, ok)
	}

	wrapped := fmt.Errorf("cancelling reservation: %w", Validationf("bad id"))
	if !Is(wrapped, CategoryValidation) {
		t.Error("wrapped validation error not recognized")
	}

	if _, ok := CategoryOf(errors.New("plain")); ok {
		t.Error("plain error should be uncategorized")
	}
}

func TestErrorString(t *testing.T) {
	err := Systemf("payload key %q rejected", "socket")
	want := `system: payload key "socket" rejected`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
