package policy

import (
	"fmt"
	"maps"
	"strings"
)

// Policy is a named rule. Build one as a literal and register it with
// Engine.AddPolicy, which validates it.
type Policy struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Condition   Condition         `json:"condition" yaml:"condition"`
	Decision    Decision          `json:"decision" yaml:"decision"`
	Reason      string            `json:"reason" yaml:"reason"`
	Priority    int               `json:"priority" yaml:"priority"`
	Attributes  map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Validate checks the policy and compiles its condition.
func (p *Policy) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPolicy)
	}
	p.Decision = Decision(strings.ToUpper(string(p.Decision)))
	if !p.Decision.Valid() {
		return fmt.Errorf("%w: %s: unknown decision %q", ErrInvalidPolicy, p.Name, p.Decision)
	}
	if err := p.Condition.Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidPolicy, p.Name, err)
	}
	return nil
}

// Applies reports whether the policy's condition holds for env.
func (p Policy) Applies(env Env) (bool, error) {
	return p.Condition.Evaluate(env)
}

// Evaluate produces the policy's decision. It does not check the condition.
func (p Policy) Evaluate(Env) PolicyDecision {
	reason := p.Reason
	if reason == "" {
		reason = fmt.Sprintf("policy %s: %s", p.Name, p.Decision)
	}
	ctx := map[string]any{
		ContextPolicy:   p.Name,
		ContextPriority: p.Priority,
	}
	for k, v := range p.Attributes {
		ctx[k] = v
	}
	return PolicyDecision{Decision: p.Decision, Reason: reason, Context: ctx}
}

// clone returns a deep copy safe to annotate.
func (p Policy) clone() Policy {
	out := p
	out.Condition = p.Condition.clone()
	out.Attributes = maps.Clone(p.Attributes)
	return out
}
