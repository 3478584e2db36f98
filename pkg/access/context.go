package access

import (
	"time"

	"github.com/laughtale01/Scratch-sub001/internal/ids"
)

// DeviceType classifies the client device.
type DeviceType string

const (
	DeviceUnknown    DeviceType = "unknown"
	DeviceDesktop    DeviceType = "desktop"
	DeviceLaptop     DeviceType = "laptop"
	DeviceChromebook DeviceType = "chromebook"
	DeviceTablet     DeviceType = "tablet"
	DeviceMobile     DeviceType = "mobile"
)

// Known reports whether the device type is anything other than unknown.
func (d DeviceType) Known() bool {
	return d != "" && d != DeviceUnknown
}

// Business hours for TimeContext (09:00 inclusive to 18:00 exclusive).
const (
	BusinessHoursStart = 9
	BusinessHoursEnd   = 18
)

// NetworkContext describes where the request came from.
type NetworkContext struct {
	IP        string `json:"ip" yaml:"ip"`
	ClientID  string `json:"client_id" yaml:"client_id"`
	Internal  bool   `json:"internal" yaml:"internal"`
	Encrypted bool   `json:"encrypted" yaml:"encrypted"`
}

// DefaultNetworkContext is a loopback connection from an unnamed client.
func DefaultNetworkContext() NetworkContext {
	return NetworkContext{IP: "127.0.0.1", ClientID: "unknown", Internal: true}
}

// TimeContext pins the instant the request is evaluated at.
type TimeContext struct {
	CurrentTime time.Time `json:"current_time" yaml:"current_time"`
}

// NewTimeContext returns a TimeContext for t.
func NewTimeContext(t time.Time) TimeContext {
	return TimeContext{CurrentTime: t}
}

// IsBusinessHours reports whether the instant falls within 09:00-18:00.
func (t TimeContext) IsBusinessHours() bool {
	h := t.CurrentTime.Hour()
	return h >= BusinessHoursStart && h < BusinessHoursEnd
}

// SessionContext identifies the caller's session.
type SessionContext struct {
	SessionID    string    `json:"session_id" yaml:"session_id"`
	SessionStart time.Time `json:"session_start" yaml:"session_start"`
}

// Duration returns how long the session has existed at now.
func (s SessionContext) Duration(now time.Time) time.Duration {
	if s.SessionStart.IsZero() || now.Before(s.SessionStart) {
		return 0
	}
	return now.Sub(s.SessionStart)
}

// DeviceContext identifies the client device.
type DeviceContext struct {
	DeviceID   string     `json:"device_id" yaml:"device_id"`
	DeviceType DeviceType `json:"device_type" yaml:"device_type"`
}

// DefaultDeviceContext is an unidentified device of unknown type.
func DefaultDeviceContext() DeviceContext {
	return DeviceContext{DeviceID: "unknown", DeviceType: DeviceUnknown}
}

// Context aggregates everything a decision is made from. Values are copied
// in at Build time and exposed through accessors so a built Context cannot be
// mutated.
type Context struct {
	user       User
	operation  Operation
	resource   Resource
	network    NetworkContext
	time       TimeContext
	session    SessionContext
	device     DeviceContext
	attributes map[string]any
}

func (c *Context) User() User              { return c.user }
func (c *Context) Operation() Operation    { return c.operation }
func (c *Context) Resource() Resource      { return c.resource }
func (c *Context) Network() NetworkContext { return c.network }
func (c *Context) Time() TimeContext       { return c.time }
func (c *Context) Session() SessionContext { return c.session }
func (c *Context) Device() DeviceContext   { return c.device }

// Attribute returns an extension attribute.
func (c *Context) Attribute(key string) (any, bool) {
	v, ok := c.attributes[key]
	return v, ok
}

// Attributes returns a copy of the extension attributes.
func (c *Context) Attributes() map[string]any {
	out := make(map[string]any, len(c.attributes))
	for k, v := range c.attributes {
		out[k] = v
	}
	return out
}

// Now is shorthand for Time().CurrentTime.
func (c *Context) Now() time.Time {
	return c.time.CurrentTime
}

// defaultSession starts a new session at now.
func defaultSession(now time.Time) SessionContext {
	return SessionContext{SessionID: ids.New(), SessionStart: now}
}
