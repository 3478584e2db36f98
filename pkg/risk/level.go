package risk

import (
	"fmt"
	"strings"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
)

// Level is a coarse risk tier. Levels are ordered: LOW < MEDIUM < HIGH < CRITICAL.
type Level int

const (
	LevelLow Level = iota + 1
	LevelMedium
	LevelHigh
	LevelCritical
)

// Tier thresholds, inclusive on the lower bound.
const (
	CriticalThreshold = 80.0
	HighThreshold     = 60.0
	MediumThreshold   = 30.0
)

var levelNames = map[Level]string{
	LevelLow:      "LOW",
	LevelMedium:   "MEDIUM",
	LevelHigh:     "HIGH",
	LevelCritical: "CRITICAL",
}

// LevelForScore maps a score onto its tier.
func LevelForScore(score float64) Level {
	switch {
	case score >= CriticalThreshold:
		return LevelCritical
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// AtLeast reports whether l is min or higher.
func (l Level) AtLeast(min Level) bool {
	return l >= min
}

// ParseLevel parses a case-insensitive level name.
func ParseLevel(s string) (Level, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == want {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown risk level %q", s)
}

// MarshalText encodes the level by name.
func (l Level) MarshalText() ([]byte, error) {
	name, ok := levelNames[l]
	if !ok {
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a level name.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Verification is an extra step required before a risky request proceeds.
type Verification string

const (
	VerifyAdminApproval           Verification = "ADMIN_APPROVAL"
	VerifySecondaryAuthentication Verification = "SECONDARY_AUTHENTICATION"
	VerifyIPWhitelistCheck        Verification = "IP_WHITELIST_CHECK"
	VerifySupervisorNotification  Verification = "SUPERVISOR_NOTIFICATION"
	VerifyConfirmationPrompt      Verification = "CONFIRMATION_PROMPT"
)

// RequiredVerifications returns the verifications demanded at level for an
// operation of the given category. The result is a fresh slice.
func RequiredVerifications(level Level, category access.Category) []Verification {
	switch level {
	case LevelCritical:
		return []Verification{VerifyAdminApproval, VerifySecondaryAuthentication, VerifyIPWhitelistCheck}
	case LevelHigh:
		return []Verification{VerifySecondaryAuthentication, VerifySupervisorNotification}
	case LevelMedium:
		if category == access.CategoryAdministrative {
			return []Verification{VerifyConfirmationPrompt}
		}
	}
	return []Verification{}
}
