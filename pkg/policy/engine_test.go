package policy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

func TestEngine_DefaultDeny(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	d := e.Evaluate(buildContext(t, reqOpts{}), risk.Assessment{})

	assert.Equal(t, Deny, d.Decision)
	assert.Equal(t, DefaultDenyReason, d.Reason)
}

func TestEngine_DefaultDenyWhenNothingApplies(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicy(Policy{
		Name: "admins-only", Condition: RoleAtLeast(access.RoleAdmin), Decision: Allow, Priority: 10,
	}))
	require.NoError(t, e.AddPolicy(Policy{
		Name: "abstain", Condition: Always(), Decision: NotApplicable, Priority: 5,
	}))

	d := e.Evaluate(buildContext(t, reqOpts{role: access.RoleStudent}), risk.Assessment{})
	assert.Equal(t, Deny, d.Decision)
	assert.Equal(t, DefaultDenyReason, d.Reason)
}

func TestEngine_DenyOverridesAllow(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	t.Log("ALLOW has the higher priority, DENY must still win")
	require.NoError(t, e.AddPolicies(
		Policy{Name: "allow-all", Condition: Always(), Decision: Allow, Reason: "ok", Priority: 900},
		Policy{Name: "deny-building", Condition: CategoryIs(access.CategoryBuilding), Decision: Deny, Reason: "no building", Priority: 1},
	))

	d := e.Evaluate(buildContext(t, reqOpts{category: access.CategoryBuilding}), risk.Assessment{})
	assert.Equal(t, Deny, d.Decision)
	assert.Equal(t, "no building", d.Reason)
	assert.Equal(t, "deny-building", d.PolicyName())

	d = e.Evaluate(buildContext(t, reqOpts{category: access.CategoryBasic}), risk.Assessment{})
	assert.Equal(t, Allow, d.Decision)
	assert.Equal(t, "allow-all", d.PolicyName())
}

func TestEngine_FirstDenyByPriority(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicies(
		Policy{Name: "low-deny", Condition: Always(), Decision: Deny, Reason: "low", Priority: 10},
		Policy{Name: "high-deny", Condition: Always(), Decision: Deny, Reason: "high", Priority: 20},
	))

	d := e.Evaluate(buildContext(t, reqOpts{}), risk.Assessment{})
	assert.Equal(t, "high", d.Reason)
}

func TestEngine_HardDenyShortCircuits(t *testing.T) {
	t.Parallel()

	metrics := newCountingMetrics()
	e := NewEngine(WithMetrics(metrics))
	require.NoError(t, e.AddPolicies(
		Policy{Name: "hard-block", Condition: Always(), Decision: Deny, Reason: "blocked", Priority: HardDenyPriority},
		Policy{Name: "sentinel", Condition: Always(), Decision: Allow, Priority: 999},
		Policy{Name: "baseline", Condition: Always(), Decision: Allow, Priority: 0},
	))

	d := e.Evaluate(buildContext(t, reqOpts{}), risk.Assessment{})

	assert.Equal(t, Deny, d.Decision)
	assert.Equal(t, "blocked", d.Reason)
	assert.Equal(t, 1, metrics.consideredCount("hard-block"))
	t.Log("Policies below the hard block must never be evaluated")
	assert.Zero(t, metrics.consideredCount("sentinel"))
	assert.Zero(t, metrics.consideredCount("baseline"))
}

func TestEngine_HighPriorityAllowDoesNotShortCircuit(t *testing.T) {
	t.Parallel()

	metrics := newCountingMetrics()
	e := NewEngine(WithMetrics(metrics))
	require.NoError(t, e.AddPolicies(
		Policy{Name: "hard-allow", Condition: Always(), Decision: Allow, Priority: 5000},
		Policy{Name: "soft-deny", Condition: Always(), Decision: Deny, Reason: "soft", Priority: 1},
	))

	d := e.Evaluate(buildContext(t, reqOpts{}), risk.Assessment{})
	assert.Equal(t, Deny, d.Decision)
	assert.Equal(t, 1, metrics.consideredCount("soft-deny"))
}

func TestEngine_InapplicableHardDenyDoesNotShortCircuit(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicies(
		Policy{Name: "hard-block-admins", Condition: RoleAtLeast(access.RoleAdmin), Decision: Deny, Priority: 2000},
		Policy{Name: "baseline", Condition: Always(), Decision: Allow, Reason: "fine"},
	))

	d := e.Evaluate(buildContext(t, reqOpts{role: access.RoleStudent}), risk.Assessment{})
	assert.Equal(t, Allow, d.Decision)
	assert.Equal(t, "fine", d.Reason)
}

func TestEngine_FaultingConditionDoesNotApply(t *testing.T) {
	t.Parallel()

	metrics := newCountingMetrics()
	e := NewEngine(WithMetrics(metrics))

	t.Log("A cedar condition reading a missing attribute errors at evaluation time")
	require.NoError(t, e.AddPolicies(
		Policy{
			Name:      "broken-deny",
			Condition: Cedar(`permit(principal, action, resource) when { principal.missing == 1 };`),
			Decision:  Deny,
			Priority:  HardDenyPriority,
		},
		Policy{Name: "baseline", Condition: Always(), Decision: Allow, Reason: "fine"},
	))

	d := e.Evaluate(buildContext(t, reqOpts{}), risk.Assessment{})
	assert.Equal(t, Allow, d.Decision)
	assert.Equal(t, 1, metrics.faultCount("broken-deny"))
	assert.Equal(t, 1, metrics.consideredCount("baseline"))
}

func TestEngine_ReplaceAndRemove(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicy(Policy{Name: "p", Condition: Always(), Decision: Deny, Reason: "v1"}))
	require.NoError(t, e.AddPolicy(Policy{Name: "p", Condition: Always(), Decision: Allow, Reason: "v2"}))

	require.Len(t, e.Policies(), 1)
	d := e.Evaluate(buildContext(t, reqOpts{}), risk.Assessment{})
	assert.Equal(t, "v2", d.Reason, "last registration wins")

	assert.True(t, e.RemovePolicy("p"))
	assert.False(t, e.RemovePolicy("p"))
	_, ok := e.Policy("p")
	assert.False(t, ok)
}

func TestEngine_PoliciesOrdered(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicies(
		Policy{Name: "b", Condition: Always(), Decision: Allow, Priority: 5},
		Policy{Name: "a", Condition: Always(), Decision: Allow, Priority: 5},
		Policy{Name: "top", Condition: Always(), Decision: Allow, Priority: 50},
		Policy{Name: "bottom", Condition: Always(), Decision: Allow, Priority: -1},
	))

	var names []string
	for _, p := range e.Policies() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"top", "a", "b", "bottom"}, names)
}

func TestEngine_AddPolicyRejectsInvalid(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	err := e.AddPolicy(Policy{Name: "bad", Condition: RoleAtLeast("JANITOR"), Decision: Deny})
	assert.ErrorIs(t, err, ErrInvalidPolicy)
	assert.ErrorIs(t, err, ErrInvalidCondition)
	assert.Empty(t, e.Policies())
}

func TestEngine_AddPolicyDoesNotAliasCaller(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	cond := All(CategoryIs(access.CategoryBuilding))
	require.NoError(t, e.AddPolicy(Policy{Name: "p", Condition: cond, Decision: Deny}))

	cond.Conditions[0] = CategoryIs(access.CategoryBasic)

	d := e.Evaluate(buildContext(t, reqOpts{category: access.CategoryBuilding}), risk.Assessment{})
	assert.Equal(t, Deny, d.Decision)
	assert.Equal(t, "p", d.PolicyName())
}

func TestEngine_ConcurrentEvaluateAndRegister(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	require.NoError(t, e.AddPolicies(DefaultPolicies()...))
	ctx := buildContext(t, reqOpts{})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				d := e.Evaluate(ctx, risk.Assessment{Level: risk.LevelLow})
				assert.Equal(t, Allow, d.Decision)
			}
		}()
		go func(i int) {
			defer wg.Done()
			_ = e.AddPolicy(Policy{Name: "extra", Condition: RoleAtLeast(access.RoleAdmin), Decision: Deny, Priority: i})
		}(i)
	}
	wg.Wait()
}
