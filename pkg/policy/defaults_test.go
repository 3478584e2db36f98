package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

func TestDefaultPolicies(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicies(DefaultPolicies()...))

	tests := []struct {
		name   string
		ctx    *access.Context
		level  risk.Level
		want   Decision
		policy string
	}{
		{"benign student", buildContext(t, reqOpts{}), risk.LevelLow, Allow, PolicyAllowBaseline},
		{"critical risk", buildContext(t, reqOpts{role: access.RoleAdmin}), risk.LevelCritical, Deny, PolicyDenyCriticalRisk},
		{"admin op from internet", buildContext(t, reqOpts{
			role: access.RoleAdmin, category: access.CategoryAdministrative, ip: "203.0.113.4",
		}), risk.LevelMedium, Deny, PolicyDenyUntrustedAdmin},
		{"admin op from lab", buildContext(t, reqOpts{
			role: access.RoleAdmin, category: access.CategoryAdministrative,
		}), risk.LevelMedium, Allow, PolicyAllowBaseline},
		{"student security resource", buildContext(t, reqOpts{resType: "security"}), risk.LevelLow, Deny, PolicyDenyStudentSecurity},
		{"teacher security op", buildContext(t, reqOpts{
			role: access.RoleTeacher, category: access.CategorySecurity,
		}), risk.LevelLow, Allow, PolicyAllowBaseline},
		{"student at night", buildContext(t, reqOpts{at: time.Date(2026, 3, 2, 2, 0, 0, 0, time.UTC)}), risk.LevelMedium, Allow, PolicyAllowBaseline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := e.Evaluate(tt.ctx, risk.Assessment{Level: tt.level})
			assert.Equal(t, tt.want, d.Decision, d.Reason)
			assert.Equal(t, tt.policy, d.PolicyName())
		})
	}
}

func TestDefaultPolicies_FreshCopies(t *testing.T) {
	t.Parallel()

	a := DefaultPolicies()
	a[0].Name = "mutated"
	assert.Equal(t, PolicyDenyCriticalRisk, DefaultPolicies()[0].Name)
}
