package policy

import (
	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// Names of the built-in policies.
const (
	PolicyDenyCriticalRisk    = "deny-critical-risk"
	PolicyDenyUntrustedAdmin  = "deny-untrusted-administration"
	PolicyDenyStudentSecurity = "deny-student-security"
	PolicyAllowBaseline       = "allow-baseline"
)

// DefaultPolicies returns the built-in policy set. The baseline ALLOW at
// priority 0 means anything not denied above it is permitted; drop it to run
// fully default-deny.
func DefaultPolicies() []Policy {
	return []Policy{
		{
			Name:        PolicyDenyCriticalRisk,
			Description: "Block every request assessed at critical risk.",
			Condition:   RiskAtLeast(risk.LevelCritical),
			Decision:    Deny,
			Reason:      "Risk level CRITICAL: access blocked",
			Priority:    HardDenyPriority,
		},
		{
			Name:        PolicyDenyUntrustedAdmin,
			Description: "Administrative and security operations only from trusted networks.",
			Condition: All(
				Any(CategoryIs(access.CategoryAdministrative), CategoryIs(access.CategorySecurity)),
				NetworkTrusted(false),
			),
			Decision: Deny,
			Reason:   "Administrative operations require a trusted network",
			Priority: 500,
		},
		{
			Name:        PolicyDenyStudentSecurity,
			Description: "Students never touch security operations or resources.",
			Condition: All(
				Not(RoleAtLeast(access.RoleTeacher)),
				Any(CategoryIs(access.CategorySecurity), ResourceTypeIs(access.ResourceSecurity)),
			),
			Decision: Deny,
			Reason:   "Security operations are not available to students",
			Priority: 400,
		},
		{
			Name:        PolicyAllowBaseline,
			Description: "Permit whatever no higher policy denied.",
			Condition:   Always(),
			Decision:    Allow,
			Reason:      "Baseline access granted",
			Priority:    0,
		},
	}
}
