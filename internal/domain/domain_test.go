package domain

import (
	"testing"
	"time"
)

func TestStatusFor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ptr := func(t time.Time) *time.Time { return &t }

	cases := []struct {
		name string
		due  *time.Time
		want TaskStatus
	}{
		{"no due date", nil, StatusNotUrgent},
		{"past due", ptr(now.Add(-time.Second)), StatusOverdue},
		{"due right now", ptr(now), StatusDueSoon},
		{"inside window", ptr(now.Add(3 * 24 * time.Hour)), StatusDueSoon},
		{"window boundary", ptr(now.Add(DueSoonWindow)), StatusDueSoon},
		{"just past window", ptr(now.Add(DueSoonWindow + time.Second)), StatusNotUrgent},
		{"far future", ptr(now.Add(90 * 24 * time.Hour)), StatusNotUrgent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusFor(tc.due, now); got != tc.want {
				t.Fatalf("StatusFor = %s, want %s", got, tc.want)
			}
		})
	}
}
