package identify

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		identifier string
		want       Kind
	}{
		{"12", KindConfirmation},
		{"8041", KindConfirmation},
		{"#12", KindConfirmation},
		{"+1 415 555 0100", KindPhone},
		{"415-555-0100", KindPhone},
		{"(415) 555 0100", KindPhone},
		{"Jordan Lee", KindName},
		{"O'Brien", KindName},
		{"", KindName},
		// Five or six digits fall between both all-digit formats and go
		// through the name lookup path.
		{"55512", KindName},
		{"555123", KindName},
	}
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			if got := Classify(tt.identifier); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.identifier, got, tt.want)
			}
		})
	}
}

func TestNewQuery(t *testing.T) {
	q := NewQuery("+1 415 555 0100")
	if q.Kind != KindPhone || q.Raw != "+1 415 555 0100" {
		t.Errorf("NewQuery = %+v", q)
	}
}

func TestComputeMutabilityBoundaries(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		until      time.Duration
		canModify  bool
		canCancel  bool
	}{
		{"exactly modify window", 4 * time.Hour, true, true},
		{"just inside modify window", 4*time.Hour - time.Second, false, true},
		{"exactly cancel window", 2 * time.Hour, false, true},
		{"just inside cancel window", 2*time.Hour - time.Second, false, false},
		{"well ahead", 48 * time.Hour, true, true},
		{"already past", -1 * time.Hour, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ComputeMutability(now.Add(tt.until), now)
			if m.CanModify != tt.canModify {
				t.Errorf("CanModify = %v, want %v", m.CanModify, tt.canModify)
			}
			if m.CanCancel != tt.canCancel {
				t.Errorf("CanCancel = %v, want %v", m.CanCancel, tt.canCancel)
			}
		})
	}
}

func TestComputeMutabilityHoursUntil(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	m := ComputeMutability(now.Add(90*time.Minute), now)
	if m.HoursUntil != 1.5 {
		t.Errorf("HoursUntil = %v, want 1.5", m.HoursUntil)
	}

	m = ComputeMutability(now.Add(-30*time.Minute), now)
	if m.HoursUntil != -0.5 {
		t.Errorf("HoursUntil = %v, want -0.5", m.HoursUntil)
	}
}
