package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Outcome values carried in Entry.Decision.
const (
	OutcomeAllow  = "allow"
	OutcomeDeny   = "deny"
	OutcomeVerify = "verify"
)

// Entry is one authorization decision.
type Entry struct {
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id,omitempty"`
	Principal     string    `json:"principal"`
	Role          string    `json:"role"`
	Operation     string    `json:"operation"`
	Category      string    `json:"category"`
	Resource      string    `json:"resource"`
	ResourceType  string    `json:"resource_type"`
	SessionID     string    `json:"session_id,omitempty"`
	IP            string    `json:"ip,omitempty"`
	Granted       bool      `json:"granted"`
	Decision      string    `json:"decision"` // allow, deny or verify
	Reason        string    `json:"reason"`
	Policy        string    `json:"policy,omitempty"`
	RiskScore     float64   `json:"risk_score,omitempty"`
	RiskLevel     string    `json:"risk_level,omitempty"`
	Verifications []string  `json:"verifications,omitempty"`
	DurationUS    int64     `json:"duration_us"`
}

// AccessLogger records authorization decisions.
type AccessLogger interface {
	LogAccessAttempt(ctx context.Context, entry Entry) error
}

// SlogLogger writes entries and events to a slog.Logger. It suits JSON log
// pipelines feeding a SIEM.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a SlogLogger. A nil logger means slog.Default().
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// LogAccessAttempt implements AccessLogger. Denials log at Warn.
func (l *SlogLogger) LogAccessAttempt(ctx context.Context, e Entry) error {
	level := slog.LevelInfo
	if !e.Granted {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("event", "access_attempt"),
		slog.Time("timestamp", e.Timestamp),
		slog.String("request_id", e.RequestID),
		slog.String("principal", e.Principal),
		slog.String("role", e.Role),
		slog.String("operation", e.Operation),
		slog.String("category", e.Category),
		slog.String("resource", e.Resource),
		slog.String("resource_type", e.ResourceType),
		slog.Bool("granted", e.Granted),
		slog.String("decision", e.Decision),
		slog.String("reason", e.Reason),
		slog.Int64("duration_us", e.DurationUS),
	}
	if e.Policy != "" {
		attrs = append(attrs, slog.String("policy", e.Policy))
	}
	if e.RiskLevel != "" {
		attrs = append(attrs,
			slog.Float64("risk_score", e.RiskScore),
			slog.String("risk_level", e.RiskLevel),
		)
	}
	if len(e.Verifications) > 0 {
		attrs = append(attrs, slog.Any("verifications", e.Verifications))
	}
	if e.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", e.SessionID))
	}
	l.logger.LogAttrs(ctx, level, "access attempt", attrs...)
	return nil
}

// Emit implements EventEmitter.
func (l *SlogLogger) Emit(ev Event) error {
	level := slog.LevelInfo
	if ev.Severity <= SeverityWarning {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("event_id", ev.ID),
		slog.String("event", string(ev.Type)),
		slog.String("severity", ev.Severity.String()),
		slog.Time("timestamp", ev.Timestamp),
		slog.String("actor", ev.ActorID),
	}
	if ev.IP != "" {
		attrs = append(attrs, slog.String("ip", ev.IP))
	}
	if ev.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", ev.RequestID))
	}
	for k, v := range ev.Details {
		attrs = append(attrs, slog.String(k, v))
	}
	l.logger.LogAttrs(context.Background(), level, "audit event", attrs...)
	return nil
}

// Multi writes each entry to every logger and joins their errors.
type Multi []AccessLogger

// LogAccessAttempt implements AccessLogger.
func (m Multi) LogAccessAttempt(ctx context.Context, e Entry) error {
	var errs []error
	for _, l := range m {
		if err := l.LogAccessAttempt(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards entries and events.
type Nop struct{}

// LogAccessAttempt does nothing.
func (Nop) LogAccessAttempt(context.Context, Entry) error { return nil }

// Emit does nothing.
func (Nop) Emit(Event) error { return nil }

// Recorder keeps entries and events in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	events  []Event
}

// LogAccessAttempt implements AccessLogger.
func (r *Recorder) LogAccessAttempt(_ context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// Emit implements EventEmitter.
func (r *Recorder) Emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Entries returns a copy of the recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// EventsOfType returns the recorded events of type t.
func (r *Recorder) EventsOfType(t EventType) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
