package risk

import "time"

// Indicator texts attached to an Assessment.
const (
	IndicatorHighRisk        = "High risk operation detected"
	IndicatorUntrustedNet    = "Access from untrusted network"
	IndicatorUnusualActivity = "Unusual activity pattern detected"
	IndicatorFailedAttempts  = "Multiple recent failed authentication attempts"
)

// Assessment is the immutable outcome of one risk evaluation.
type Assessment struct {
	Score         float64        `json:"score" yaml:"score"`
	Level         Level          `json:"level" yaml:"level"`
	Factors       Factors        `json:"factors" yaml:"factors"`
	Verifications []Verification `json:"verifications" yaml:"verifications"`
	Indicators    []string       `json:"indicators" yaml:"indicators"`
	Data          map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	AssessedAt    time.Time      `json:"assessed_at" yaml:"assessed_at"`
}

// RequiresVerification reports whether any verification step is demanded.
func (a Assessment) RequiresVerification() bool {
	return len(a.Verifications) > 0
}

// HasVerification reports whether v is among the required verifications.
func (a Assessment) HasVerification(v Verification) bool {
	for _, got := range a.Verifications {
		if got == v {
			return true
		}
	}
	return false
}
