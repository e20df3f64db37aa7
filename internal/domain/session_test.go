package domain

import (
	"testing"
	"time"
)

func TestSession_IsExpired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	session := NewSession("tok", 1, issued, time.Hour)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "just issued", now: issued, want: false},
		{name: "mid lifetime", now: issued.Add(30 * time.Minute), want: false},
		{name: "one instant before expiry", now: issued.Add(time.Hour - time.Nanosecond), want: false},
		{name: "exactly at expiry", now: issued.Add(time.Hour), want: true},
		{name: "past expiry", now: issued.Add(2 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := session.IsExpired(tt.now); got != tt.want {
				t.Errorf("IsExpired(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestSession_TTL(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	session := NewSession("tok", 1, issued, time.Hour)

	if got := session.TTL(issued.Add(15 * time.Minute)); got != 45*time.Minute {
		t.Errorf("expected 45m remaining, got %v", got)
	}
	if got := session.TTL(issued.Add(2 * time.Hour)); got != 0 {
		t.Errorf("expected 0 for expired session, got %v", got)
	}
}
