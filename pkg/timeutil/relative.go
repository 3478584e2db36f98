package timeutil

import (
	"fmt"
	"time"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// Relative describes t relative to now, e.g. "5 minutes ago" or "in 2 hours".
// Anything within a second of now is "just now".
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d > -time.Second && d < time.Second:
		return "just now"
	case d > 0:
		return Age(d) + " ago"
	default:
		return "in " + Age(-d)
	}
}

// Age renders d in its largest whole unit, truncating toward zero. Negative
// durations are treated as their magnitude.
func Age(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return plural(int(d/time.Second), "second")
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < day:
		return plural(int(d/time.Hour), "hour")
	case d < week:
		return plural(int(d/day), "day")
	default:
		return plural(int(d/week), "week")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
