package audit

import (
	"strconv"
	"strings"
	"time"

	"github.com/laughtale01/Scratch-sub001/internal/ids"
)

// Severity is an RFC 5424 severity level. Lower is more severe.
type Severity int

const (
	SeverityEmergency Severity = 0
	SeverityAlert     Severity = 1
	SeverityCritical  Severity = 2
	SeverityError     Severity = 3
	SeverityWarning   Severity = 4
	SeverityNotice    Severity = 5
	SeverityInfo      Severity = 6
	SeverityDebug     Severity = 7
)

var severityNames = [...]string{"EMERGENCY", "ALERT", "CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "UNKNOWN"
	}
	return severityNames[s]
}

// EventType identifies a security event.
type EventType string

const (
	EventAccessGranted        EventType = "access.granted"
	EventAccessDenied         EventType = "access.denied"
	EventVerificationRequired EventType = "verification.required"
	EventSessionRevoked       EventType = "session.revoked"
	EventVerificationRun      EventType = "verification.run"
)

// AllEventTypes returns every defined event type.
func AllEventTypes() []EventType {
	return []EventType{
		EventAccessGranted,
		EventAccessDenied,
		EventVerificationRequired,
		EventSessionRevoked,
		EventVerificationRun,
	}
}

var severityMap = map[EventType]Severity{
	EventAccessGranted:        SeverityInfo,
	EventAccessDenied:         SeverityWarning,
	EventVerificationRequired: SeverityNotice,
	EventSessionRevoked:       SeverityWarning,
	EventVerificationRun:      SeverityInfo,
}

// SeverityFor returns the severity of et. Unknown types are WARNING.
func SeverityFor(et EventType) Severity {
	if s, ok := severityMap[et]; ok {
		return s
	}
	return SeverityWarning
}

// Event is a security event with structured fields.
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	Severity  Severity          `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
	ActorID   string            `json:"actor_id,omitempty"`
	IP        string            `json:"ip,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

func newEvent(t EventType, at time.Time, actor string, details map[string]string) Event {
	if details == nil {
		details = map[string]string{}
	}
	return Event{
		ID:        ids.NewAt(at),
		Type:      t,
		Severity:  SeverityFor(t),
		Timestamp: at,
		ActorID:   actor,
		Details:   details,
	}
}

// EventFromEntry maps a decision entry onto the matching access event.
func EventFromEntry(e Entry) Event {
	t := EventAccessDenied
	switch e.Decision {
	case OutcomeAllow:
		t = EventAccessGranted
	case OutcomeVerify:
		t = EventVerificationRequired
	}
	details := map[string]string{
		"operation": e.Operation,
		"resource":  e.Resource,
		"reason":    e.Reason,
	}
	if e.RiskLevel != "" {
		details["risk_level"] = e.RiskLevel
	}
	if len(e.Verifications) > 0 {
		details["verifications"] = strings.Join(e.Verifications, ",")
	}
	if e.SessionID != "" {
		details["session_id"] = e.SessionID
	}
	ev := newEvent(t, e.Timestamp, e.Principal, details)
	ev.IP = e.IP
	ev.RequestID = e.RequestID
	return ev
}

// NewSessionRevoked records continuous verification withdrawing a session.
func NewSessionRevoked(at time.Time, username, sessionID, reason string) Event {
	return newEvent(EventSessionRevoked, at, username, map[string]string{
		"session_id": sessionID,
		"reason":     reason,
	})
}

// NewVerificationRun summarises one continuous verification pass.
func NewVerificationRun(at time.Time, checked, reverified, revoked int) Event {
	return newEvent(EventVerificationRun, at, "system", map[string]string{
		"checked":    strconv.Itoa(checked),
		"reverified": strconv.Itoa(reverified),
		"revoked":    strconv.Itoa(revoked),
	})
}
