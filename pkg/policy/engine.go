package policy

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/netutil"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// Metrics observes policy evaluation. Implementations must be safe for
// concurrent use.
type Metrics interface {
	// PolicyConsidered is called each time a policy's condition is checked.
	PolicyConsidered(policy string)
	// PolicyFault is called when a condition fails or panics.
	PolicyFault(policy string)
}

type nopMetrics struct{}

func (nopMetrics) PolicyConsidered(string) {}
func (nopMetrics) PolicyFault(string)      {}

// Engine is a registry of policies keyed by name. It is safe for concurrent
// use; registration replaces any policy of the same name.
type Engine struct {
	policies   sync.Map // string -> Policy
	logger     *slog.Logger
	metrics    Metrics
	classifier *netutil.Classifier
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(e *Engine) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithClassifier sets the trusted-network classifier used by
// network_trusted and cedar conditions.
func WithClassifier(c *netutil.Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// NewEngine returns an empty Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default(), metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddPolicy validates p and registers it, replacing any policy with the same
// name.
func (e *Engine) AddPolicy(p Policy) error {
	p = p.clone()
	if err := p.Validate(); err != nil {
		return err
	}
	e.policies.Store(p.Name, p)
	return nil
}

// AddPolicies registers each policy in order, stopping at the first error.
func (e *Engine) AddPolicies(ps ...Policy) error {
	for _, p := range ps {
		if err := e.AddPolicy(p); err != nil {
			return err
		}
	}
	return nil
}

// RemovePolicy deregisters name and reports whether it was present.
func (e *Engine) RemovePolicy(name string) bool {
	_, ok := e.policies.LoadAndDelete(name)
	return ok
}

// Policy returns the registered policy called name.
func (e *Engine) Policy(name string) (Policy, bool) {
	v, ok := e.policies.Load(name)
	if !ok {
		return Policy{}, false
	}
	return v.(Policy), true
}

// Policies returns a snapshot of the registered policies in evaluation order.
func (e *Engine) Policies() []Policy {
	var out []Policy
	e.policies.Range(func(_, v any) bool {
		out = append(out, v.(Policy))
		return true
	})
	slices.SortFunc(out, func(a, b Policy) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Evaluate combines the decisions of every applicable policy. See the
// package documentation for the combination rules.
func (e *Engine) Evaluate(ctx *access.Context, assessment risk.Assessment) PolicyDecision {
	env := Env{Context: ctx, Assessment: assessment, Classifier: e.classifier}

	var collected []PolicyDecision
	for _, p := range e.Policies() {
		e.metrics.PolicyConsidered(p.Name)

		applies, err := e.applies(p, env)
		if err != nil {
			e.metrics.PolicyFault(p.Name)
			e.logger.Error("policy evaluation error",
				"policy", p.Name,
				"error", err,
			)
			continue
		}
		if !applies {
			continue
		}

		d := p.Evaluate(env)
		if d.Decision == Deny && p.Priority >= HardDenyPriority {
			return d
		}
		collected = append(collected, d)
	}

	return combine(collected)
}

// applies evaluates p's condition, converting a panic into an error.
func (e *Engine) applies(p Policy, env Env) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Applies(env)
}

func combine(decisions []PolicyDecision) PolicyDecision {
	var firstAllow *PolicyDecision
	for i := range decisions {
		switch decisions[i].Decision {
		case Deny:
			return decisions[i]
		case Allow:
			if firstAllow == nil {
				firstAllow = &decisions[i]
			}
		}
	}
	if firstAllow != nil {
		return *firstAllow
	}
	return PolicyDecision{Decision: Deny, Reason: DefaultDenyReason}
}
