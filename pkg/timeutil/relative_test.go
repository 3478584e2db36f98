package timeutil

import (
	"testing"
	"time"
)

func TestRelative(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"now", now, "just now"},
		{"sub-second", now.Add(-500 * time.Millisecond), "just now"},
		{"seconds ago", now.Add(-42 * time.Second), "42 seconds ago"},
		{"one minute ago", now.Add(-time.Minute), "1 minute ago"},
		{"minutes ago", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"hours ago", now.Add(-150 * time.Minute), "2 hours ago"},
		{"days ago", now.Add(-3 * day), "3 days ago"},
		{"weeks ago", now.Add(-15 * day), "2 weeks ago"},
		{"future", now.Add(2 * time.Hour), "in 2 hours"},
		{"future day", now.Add(day), "in 1 day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Relative(tt.at, now); got != tt.want {
				t.Errorf("Relative() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAge(t *testing.T) {
	t.Parallel()

	tests := map[time.Duration]string{
		0:                 "0 seconds",
		time.Second:       "1 second",
		90 * time.Minute:  "1 hour",
		9 * time.Hour:     "9 hours",
		-30 * time.Minute: "30 minutes",
	}
	for d, want := range tests {
		if got := Age(d); got != want {
			t.Errorf("Age(%v) = %q, want %q", d, got, want)
		}
	}
}
