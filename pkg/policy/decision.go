package policy

import (
	"fmt"
	"strings"
)

// Decision is the outcome of a policy.
type Decision string

const (
	Allow         Decision = "ALLOW"
	Deny          Decision = "DENY"
	NotApplicable Decision = "NOT_APPLICABLE"
)

// DefaultDenyReason is returned when no policy explicitly allows a request.
const DefaultDenyReason = "No explicit ALLOW decision found"

// HardDenyPriority is the lowest priority at which a DENY short-circuits
// evaluation.
const HardDenyPriority = 1000

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	switch d {
	case Allow, Deny, NotApplicable:
		return true
	}
	return false
}

// ParseDecision parses a case-insensitive decision name.
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToUpper(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidPolicy, s)
	}
	return d, nil
}

// PolicyDecision is one evaluated decision with its explanation.
type PolicyDecision struct {
	Decision Decision       `json:"decision" yaml:"decision"`
	Reason   string         `json:"reason" yaml:"reason"`
	Context  map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
}

// Allowed reports whether the decision is ALLOW.
func (d PolicyDecision) Allowed() bool { return d.Decision == Allow }

// PolicyName returns the name of the policy that produced d, if any.
func (d PolicyDecision) PolicyName() string {
	name, _ := d.Context[ContextPolicy].(string)
	return name
}

// Keys set on PolicyDecision.Context by Policy.Evaluate.
const (
	ContextPolicy   = "policy"
	ContextPriority = "priority"
)
