package profile

import (
	"sync"
	"time"
)

const (
	// ActivityWindow is how long an activity record counts toward behaviour.
	ActivityWindow = 24 * time.Hour

	// NewAccountPeriod is how long after creation a profile is "new".
	NewAccountPeriod = 7 * 24 * time.Hour

	unusualMinRecords   = 5
	unusualMeanRiskOver = 50.0
)

// Activity is one assessed request.
type Activity struct {
	Operation string    `json:"operation"`
	RiskScore float64   `json:"risk_score"`
	Timestamp time.Time `json:"timestamp"`
}

// BehaviorProfile is the rolling history of a single username. All methods
// are safe for concurrent use.
type BehaviorProfile struct {
	username  string
	createdAt time.Time
	now       func() time.Time

	mu             sync.Mutex
	activities     []Activity
	failedAttempts int
	lastActivity   time.Time
}

// NewBehaviorProfile creates an empty profile. now defaults to time.Now.
func NewBehaviorProfile(username string, now func() time.Time) *BehaviorProfile {
	if now == nil {
		now = time.Now
	}
	created := now()
	return &BehaviorProfile{
		username:     username,
		createdAt:    created,
		now:          now,
		lastActivity: created,
	}
}

// Username returns the identity the profile tracks.
func (p *BehaviorProfile) Username() string { return p.username }

// CreatedAt returns when the profile was first created.
func (p *BehaviorProfile) CreatedAt() time.Time { return p.createdAt }

// RecordActivity appends a record stamped now and prunes records older than
// ActivityWindow.
func (p *BehaviorProfile) RecordActivity(operation string, riskScore float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	p.activities = append(p.activities, Activity{Operation: operation, RiskScore: riskScore, Timestamp: now})
	p.lastActivity = now
	p.pruneLocked(now)
}

// pruneLocked drops expired records. Records are appended in time order, so
// the expired ones form a prefix.
func (p *BehaviorProfile) pruneLocked(now time.Time) {
	cutoff := now.Add(-ActivityWindow)
	i := 0
	for i < len(p.activities) && p.activities[i].Timestamp.Before(cutoff) {
		i++
	}
	if i > 0 {
		p.activities = append(p.activities[:0], p.activities[i:]...)
	}
}

// recentLocked returns records still inside the window at now.
func (p *BehaviorProfile) recentLocked(now time.Time) []Activity {
	cutoff := now.Add(-ActivityWindow)
	for i, a := range p.activities {
		if !a.Timestamp.Before(cutoff) {
			return p.activities[i:]
		}
	}
	return nil
}

// RecentActivity returns a copy of the records inside the window.
func (p *BehaviorProfile) RecentActivity() []Activity {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	recent := p.recentLocked(now)
	out := make([]Activity, len(recent))
	copy(out, recent)
	return out
}

// HasUnusualActivity reports whether at least five records fall inside the
// window and their mean risk score exceeds 50.
func (p *BehaviorProfile) HasUnusualActivity() bool {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()

	recent := p.recentLocked(now)
	if len(recent) < unusualMinRecords {
		return false
	}
	var sum float64
	for _, a := range recent {
		sum += a.RiskScore
	}
	return sum/float64(len(recent)) > unusualMeanRiskOver
}

// IsNewAccount reports whether the profile is younger than NewAccountPeriod.
func (p *BehaviorProfile) IsNewAccount() bool {
	return p.now().Sub(p.createdAt) < NewAccountPeriod
}

// RecordFailedAttempt counts a failed authentication.
func (p *BehaviorProfile) RecordFailedAttempt() {
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failedAttempts++
	p.lastActivity = now
}

// ResetFailedAttempts clears the failure count after a successful login.
func (p *BehaviorProfile) ResetFailedAttempts() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failedAttempts = 0
}

// FailedAttempts returns the number of recent failed authentications.
func (p *BehaviorProfile) FailedAttempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failedAttempts
}

// LastActivity returns the most recent write to the profile.
func (p *BehaviorProfile) LastActivity() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastActivity
}

// Snapshot is a point-in-time copy of a profile for reporting.
type Snapshot struct {
	Username       string     `json:"username" yaml:"username"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
	FailedAttempts int        `json:"failed_attempts" yaml:"failed_attempts"`
	Unusual        bool       `json:"unusual" yaml:"unusual"`
	NewAccount     bool       `json:"new_account" yaml:"new_account"`
	Activity       []Activity `json:"activity" yaml:"activity"`
}

// Snapshot copies the profile's current state.
func (p *BehaviorProfile) Snapshot() Snapshot {
	return Snapshot{
		Username:       p.username,
		CreatedAt:      p.createdAt,
		FailedAttempts: p.FailedAttempts(),
		Unusual:        p.HasUnusualActivity(),
		NewAccount:     p.IsNewAccount(),
		Activity:       p.RecentActivity(),
	}
}
