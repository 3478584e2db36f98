package policy

import (
	"fmt"

	"github.com/cedar-policy/cedar-go"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/netutil"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// Kind selects what a Condition tests.
type Kind string

const (
	KindAlways            Kind = "always"
	KindRoleAtLeast       Kind = "role_at_least"
	KindResourceType      Kind = "resource_type_equals"
	KindOperationCategory Kind = "operation_category_equals"
	KindNetworkTrusted    Kind = "network_trusted"
	KindBusinessHours     Kind = "business_hours"
	KindRiskAtLeast       Kind = "risk_at_least"
	KindCedar             Kind = "cedar"
	KindAll               Kind = "all"
	KindAny               Kind = "any"
	KindNot               Kind = "not"
)

// Env is what a condition is evaluated against.
type Env struct {
	Context    *access.Context
	Assessment risk.Assessment

	// Classifier decides network trust. Nil trusts loopback and private
	// ranges only.
	Classifier *netutil.Classifier
}

// Condition is a predicate over an Env. Only the fields relevant to Kind are
// set.
type Condition struct {
	Kind         Kind                `json:"kind" yaml:"kind"`
	Role         access.Role         `json:"role,omitempty" yaml:"role,omitempty"`
	ResourceType access.ResourceType `json:"resource_type,omitempty" yaml:"resource_type,omitempty"`
	Category     access.Category     `json:"category,omitempty" yaml:"category,omitempty"`
	Level        string              `json:"level,omitempty" yaml:"level,omitempty"`
	Trusted      *bool               `json:"trusted,omitempty" yaml:"trusted,omitempty"`
	Cedar        string              `json:"cedar,omitempty" yaml:"cedar,omitempty"`
	Conditions   []Condition         `json:"conditions,omitempty" yaml:"conditions,omitempty"`

	// set by Validate for KindCedar
	cedarSet *cedar.PolicySet
}

// Always matches every request.
func Always() Condition { return Condition{Kind: KindAlways} }

// RoleAtLeast matches requesters ranked at or above r.
func RoleAtLeast(r access.Role) Condition { return Condition{Kind: KindRoleAtLeast, Role: r} }

// ResourceTypeIs matches resources of type t.
func ResourceTypeIs(t access.ResourceType) Condition {
	return Condition{Kind: KindResourceType, ResourceType: t}
}

// CategoryIs matches operations in category c.
func CategoryIs(c access.Category) Condition {
	return Condition{Kind: KindOperationCategory, Category: c}
}

// NetworkTrusted matches requests whose origin trust equals trusted.
func NetworkTrusted(trusted bool) Condition {
	return Condition{Kind: KindNetworkTrusted, Trusted: &trusted}
}

// BusinessHours matches requests made during business hours.
func BusinessHours() Condition { return Condition{Kind: KindBusinessHours} }

// RiskAtLeast matches assessments at or above level.
func RiskAtLeast(level risk.Level) Condition {
	return Condition{Kind: KindRiskAtLeast, Level: level.String()}
}

// Cedar matches when the Cedar document permits the request.
func Cedar(document string) Condition { return Condition{Kind: KindCedar, Cedar: document} }

// All matches when every child matches.
func All(children ...Condition) Condition { return Condition{Kind: KindAll, Conditions: children} }

// Any matches when at least one child matches.
func Any(children ...Condition) Condition { return Condition{Kind: KindAny, Conditions: children} }

// Not inverts child.
func Not(child Condition) Condition { return Condition{Kind: KindNot, Conditions: []Condition{child}} }

// Validate checks the condition tree and compiles Cedar documents.
func (c *Condition) Validate() error {
	switch c.Kind {
	case KindAlways, KindBusinessHours, KindNetworkTrusted:
	case KindRoleAtLeast:
		role, err := access.ParseRole(string(c.Role))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCondition, c.Kind, err)
		}
		c.Role = role
	case KindResourceType:
		if c.ResourceType == "" {
			return fmt.Errorf("%w: %s: resource_type is required", ErrInvalidCondition, c.Kind)
		}
		c.ResourceType = access.ParseResourceType(string(c.ResourceType))
	case KindOperationCategory:
		category, ok := access.ParseCategory(string(c.Category))
		if !ok {
			return fmt.Errorf("%w: %s: unknown category %q", ErrInvalidCondition, c.Kind, c.Category)
		}
		c.Category = category
	case KindRiskAtLeast:
		if _, err := risk.ParseLevel(c.Level); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidCondition, c.Kind, err)
		}
	case KindCedar:
		ps, err := compileCedar(c.Cedar)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		c.cedarSet = ps
	case KindAll, KindAny:
		if len(c.Conditions) == 0 {
			return fmt.Errorf("%w: %s needs at least one condition", ErrInvalidCondition, c.Kind)
		}
	case KindNot:
		if len(c.Conditions) != 1 {
			return fmt.Errorf("%w: not needs exactly one condition, got %d", ErrInvalidCondition, len(c.Conditions))
		}
	case "":
		return fmt.Errorf("%w: kind is required", ErrInvalidCondition)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCondition, c.Kind)
	}

	for i := range c.Conditions {
		if err := c.Conditions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate reports whether the condition holds for env.
func (c Condition) Evaluate(env Env) (bool, error) {
	if env.Context == nil {
		return false, fmt.Errorf("%w: nil access context", ErrInvalidCondition)
	}
	ctx := env.Context

	switch c.Kind {
	case KindAlways:
		return true, nil
	case KindRoleAtLeast:
		return ctx.User().Role.AtLeast(c.Role), nil
	case KindResourceType:
		return ctx.Resource().Type == access.ParseResourceType(string(c.ResourceType)), nil
	case KindOperationCategory:
		return ctx.Operation().Category == c.Category, nil
	case KindNetworkTrusted:
		want := c.Trusted == nil || *c.Trusted
		return env.Classifier.IsTrusted(ctx.Network().IP) == want, nil
	case KindBusinessHours:
		return ctx.Time().IsBusinessHours(), nil
	case KindRiskAtLeast:
		min, err := risk.ParseLevel(c.Level)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidCondition, err)
		}
		return env.Assessment.Level.AtLeast(min), nil
	case KindCedar:
		return c.evaluateCedar(env)
	case KindAll:
		for _, child := range c.Conditions {
			ok, err := child.Evaluate(env)
			if err != nil || !ok {
				return false, err
			}
		}
		return len(c.Conditions) > 0, nil
	case KindAny:
		for _, child := range c.Conditions {
			ok, err := child.Evaluate(env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case KindNot:
		if len(c.Conditions) != 1 {
			return false, fmt.Errorf("%w: not needs exactly one condition", ErrInvalidCondition)
		}
		ok, err := c.Conditions[0].Evaluate(env)
		if err != nil {
			return false, err
		}
		return !ok, nil
	default:
		return false, fmt.Errorf("%w: unknown kind %q", ErrInvalidCondition, c.Kind)
	}
}

// clone deep-copies the condition tree so Validate can annotate it without
// touching the caller's slices.
func (c Condition) clone() Condition {
	out := c
	if c.Trusted != nil {
		v := *c.Trusted
		out.Trusted = &v
	}
	if c.Conditions != nil {
		out.Conditions = make([]Condition, len(c.Conditions))
		for i, child := range c.Conditions {
			out.Conditions[i] = child.clone()
		}
	}
	return out
}

// String renders the condition compactly for listings.
func (c Condition) String() string {
	switch c.Kind {
	case KindRoleAtLeast:
		return fmt.Sprintf("role_at_least(%s)", c.Role)
	case KindResourceType:
		return fmt.Sprintf("resource_type_equals(%s)", c.ResourceType)
	case KindOperationCategory:
		return fmt.Sprintf("operation_category_equals(%s)", c.Category)
	case KindNetworkTrusted:
		return fmt.Sprintf("network_trusted(%t)", c.Trusted == nil || *c.Trusted)
	case KindRiskAtLeast:
		return fmt.Sprintf("risk_at_least(%s)", c.Level)
	case KindCedar:
		return "cedar(...)"
	case KindAll, KindAny, KindNot:
		s := string(c.Kind) + "("
		for i, child := range c.Conditions {
			if i > 0 {
				s += ", "
			}
			s += child.String()
		}
		return s + ")"
	default:
		return string(c.Kind)
	}
}
