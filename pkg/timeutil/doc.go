// Package timeutil provides human-readable relative time formatting.
//
// # Usage
//
//	timeutil.Relative(now.Add(-5*time.Minute), now) // "5 minutes ago"
//	timeutil.Relative(now.Add(2*time.Hour), now)    // "in 2 hours"
//	timeutil.Age(90 * time.Minute)                  // "1 hour"
package timeutil
