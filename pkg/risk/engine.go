package risk

import (
	"log/slog"
	"time"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/netutil"
	"github.com/laughtale01/Scratch-sub001/pkg/profile"
)

// Engine computes risk assessments. Build one with NewEngine.
type Engine struct {
	weights        Weights
	profiles       *profile.Store
	classifier     *netutil.Classifier
	trustedDevices map[string]struct{}
	location       *time.Location
	logger         *slog.Logger

	// Applied to the default profile store only.
	now          func() time.Time
	threatSource profile.ThreatSource
}

// Option configures an Engine.
type Option func(*Engine) error

// WithWeights overrides the default factor weights.
func WithWeights(w Weights) Option {
	return func(e *Engine) error {
		if err := w.Validate(); err != nil {
			return err
		}
		e.weights = w
		return nil
	}
}

// WithProfileStore shares an existing profile store.
func WithProfileStore(s *profile.Store) Option {
	return func(e *Engine) error {
		e.profiles = s
		return nil
	}
}

// WithClassifier sets which networks count as trusted.
func WithClassifier(c *netutil.Classifier) Option {
	return func(e *Engine) error {
		e.classifier = c
		return nil
	}
}

// WithTrustedDevices marks device ids as trusted.
func WithTrustedDevices(ids ...string) Option {
	return func(e *Engine) error {
		for _, id := range ids {
			e.trustedDevices[id] = struct{}{}
		}
		return nil
	}
}

// WithThreatSource replaces the heuristic network threat rating.
func WithThreatSource(src profile.ThreatSource) Option {
	return func(e *Engine) error {
		e.threatSource = src
		return nil
	}
}

// WithClock sets the time source for new behaviour profiles.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		e.now = now
		return nil
	}
}

// WithLocation sets the time zone the time factor reads hours in.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) error {
		if loc != nil {
			e.location = loc
		}
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) error {
		if l != nil {
			e.logger = l
		}
		return nil
	}
}

// NewEngine returns an Engine with default weights, a fresh profile store and
// loopback/private networks trusted.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		weights:        DefaultWeights(),
		trustedDevices: make(map[string]struct{}),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.profiles == nil {
		var storeOpts []profile.StoreOption
		if e.now != nil {
			storeOpts = append(storeOpts, profile.WithClock(e.now))
		}
		if e.threatSource != nil {
			storeOpts = append(storeOpts, profile.WithThreatSource(e.threatSource))
		}
		e.profiles = profile.NewStore(storeOpts...)
	}
	return e, nil
}

// Profiles returns the profile store the engine reads and updates.
func (e *Engine) Profiles() *profile.Store { return e.profiles }

// Weights returns the factor weights in use.
func (e *Engine) Weights() Weights { return e.weights }

// Assess scores ctx and records the result in the requester's behaviour
// profile.
func (e *Engine) Assess(ctx *access.Context) Assessment {
	user := ctx.User()
	op := ctx.Operation()
	res := ctx.Resource()
	netCtx := ctx.Network()
	device := ctx.Device()
	now := ctx.Now()

	bp := e.profiles.Behavior(user.Username)
	signals := signalsFrom(bp)
	threat := e.profiles.Threat(netCtx.IP)
	netTrusted := e.classifier.IsTrusted(netCtx.IP)
	_, devTrusted := e.trustedDevices[device.DeviceID]

	hourAt := now
	if e.location != nil {
		hourAt = now.In(e.location)
	}

	factors := Factors{
		User:      userRisk(user.Role, signals),
		Network:   networkRisk(threat, netTrusted, netCtx.Encrypted),
		Operation: operationRisk(op, res),
		Time:      timeRisk(hourAt),
		Session:   sessionRisk(ctx.Session().Duration(now)),
		Device:    deviceRisk(device, devTrusted),
	}
	score := Combine(factors, e.weights)
	level := LevelForScore(score)

	var indicators []string
	if level >= LevelHigh {
		indicators = append(indicators, IndicatorHighRisk)
	}
	if !netTrusted {
		indicators = append(indicators, IndicatorUntrustedNet)
	}
	if signals.unusual {
		indicators = append(indicators, IndicatorUnusualActivity)
	}
	if signals.failedAttempts > failedAttemptsLimit {
		indicators = append(indicators, IndicatorFailedAttempts)
	}

	a := Assessment{
		Score:         score,
		Level:         level,
		Factors:       factors,
		Verifications: RequiredVerifications(level, op.Category),
		Indicators:    indicators,
		Data: map[string]any{
			"username":         user.Username,
			"operation":        op.Name,
			"resource":         res.Key(),
			"ip":               netCtx.IP,
			"network_trusted":  netTrusted,
			"device_trusted":   devTrusted,
			"threat_score":     threat.BaseScore,
			"failed_attempts":  signals.failedAttempts,
			"unusual_activity": signals.unusual,
			"new_account":      signals.newAccount,
		},
		AssessedAt: now,
	}

	bp.RecordActivity(op.Name, score)

	e.logger.Debug("risk assessed",
		"principal", user.Username,
		"operation", op.Name,
		"score", score,
		"level", level.String(),
		"user", factors.User,
		"network", factors.Network,
		"operation_risk", factors.Operation,
		"time", factors.Time,
		"session", factors.Session,
		"device", factors.Device,
	)
	return a
}

// RecordAuthenticationFailure counts a failed login for username.
func (e *Engine) RecordAuthenticationFailure(username string) {
	e.profiles.Behavior(username).RecordFailedAttempt()
}

// RecordAuthenticationSuccess clears username's failed-login count.
func (e *Engine) RecordAuthenticationSuccess(username string) {
	e.profiles.Behavior(username).ResetFailedAttempts()
}
