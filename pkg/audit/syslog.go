package audit

import (
	"context"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	reconnectBackoffInit = 100 * time.Millisecond
	reconnectBackoffMax  = 30 * time.Second
)

// SyslogConfig configures a SyslogWriter.
type SyslogConfig struct {
	SocketPath string   // default /dev/log
	Hostname   string   // default os.Hostname()
	AppName    string   // default "ztctl"
	Facility   Facility // default FacLocal0
}

// SyslogWriter ships entries and events to the local syslog daemon as
// RFC 5424 messages. After a failed write it redials with exponential
// backoff (100ms doubling to 30s) so a restarting daemon does not cause a
// tight loop. Nil-receiver calls are no-ops.
type SyslogWriter struct {
	cfg SyslogConfig

	mu          sync.Mutex
	conn        net.Conn
	backoff     time.Duration
	lastAttempt time.Time
}

// NewSyslogWriter dials the syslog socket.
func NewSyslogWriter(cfg SyslogConfig) (*SyslogWriter, error) {
	if cfg.SocketPath == "" {
		cfg.SocketPath = "/dev/log"
	}
	if cfg.Hostname == "" {
		cfg.Hostname = "unknown"
		if h, err := os.Hostname(); err == nil {
			cfg.Hostname = h
		}
	}
	if cfg.AppName == "" {
		cfg.AppName = "ztctl"
	}
	if cfg.Facility == 0 {
		cfg.Facility = FacLocal0
	}

	conn, err := dialSyslog(cfg.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("syslog connect: %w", err)
	}
	return &SyslogWriter{cfg: cfg, conn: conn}, nil
}

// LogAccessAttempt implements AccessLogger.
func (w *SyslogWriter) LogAccessAttempt(_ context.Context, e Entry) error {
	if w == nil {
		return nil
	}
	params := []SDParam{
		{Name: "principal", Value: e.Principal},
		{Name: "role", Value: e.Role},
		{Name: "operation", Value: e.Operation},
		{Name: "resource", Value: e.Resource},
		{Name: "decision", Value: e.Decision},
	}
	if e.RequestID != "" {
		params = append(params, SDParam{Name: "request_id", Value: e.RequestID})
	}
	if e.Policy != "" {
		params = append(params, SDParam{Name: "policy", Value: e.Policy})
	}
	if e.RiskLevel != "" {
		params = append(params,
			SDParam{Name: "risk_level", Value: e.RiskLevel},
			SDParam{Name: "risk_score", Value: strconv.FormatFloat(e.RiskScore, 'f', 2, 64)},
		)
	}
	if len(e.Verifications) > 0 {
		params = append(params, SDParam{Name: "verifications", Value: strings.Join(e.Verifications, ",")})
	}
	if e.DurationUS > 0 {
		params = append(params, SDParam{Name: "latency_us", Value: strconv.FormatInt(e.DurationUS, 10)})
	}

	ev := EventFromEntry(e)
	return w.write(Message{
		Severity:  ev.Severity,
		Timestamp: e.Timestamp,
		MessageID: string(ev.Type),
		Params:    params,
		Text:      e.Reason,
	})
}

// Emit implements EventEmitter. Detail keys are written in sorted order.
func (w *SyslogWriter) Emit(ev Event) error {
	if w == nil {
		return nil
	}
	params := []SDParam{{Name: "event_id", Value: ev.ID}}
	if ev.ActorID != "" {
		params = append(params, SDParam{Name: "actor", Value: ev.ActorID})
	}
	if ev.IP != "" {
		params = append(params, SDParam{Name: "ip", Value: ev.IP})
	}
	if ev.RequestID != "" {
		params = append(params, SDParam{Name: "request_id", Value: ev.RequestID})
	}
	keys := make([]string, 0, len(ev.Details))
	for k := range ev.Details {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		params = append(params, SDParam{Name: k, Value: ev.Details[k]})
	}

	return w.write(Message{
		Severity:  ev.Severity,
		Timestamp: ev.Timestamp,
		MessageID: string(ev.Type),
		Params:    params,
	})
}

func (w *SyslogWriter) write(m Message) error {
	m.Facility = w.cfg.Facility
	m.Hostname = w.cfg.Hostname
	m.AppName = w.cfg.AppName
	data := m.Format()

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.conn.Write(data); err == nil {
		w.backoff = 0
		return nil
	} else if rerr := w.redialLocked(); rerr != nil {
		return fmt.Errorf("syslog write failed (%v), reconnect failed: %w", err, rerr)
	}
	_, err := w.conn.Write(data)
	return err
}

// redialLocked replaces the connection, honouring the backoff window.
func (w *SyslogWriter) redialLocked() error {
	if w.backoff > 0 {
		if wait := w.backoff - time.Since(w.lastAttempt); wait > 0 {
			return fmt.Errorf("syslog reconnect backoff: retry in %v", wait)
		}
	}
	w.conn.Close()

	conn, err := dialSyslog(w.cfg.SocketPath)
	if err != nil {
		w.lastAttempt = time.Now()
		w.backoff = min(max(2*w.backoff, reconnectBackoffInit), reconnectBackoffMax)
		return fmt.Errorf("syslog reconnect: %w", err)
	}
	w.conn = conn
	w.backoff = 0
	return nil
}

// Close closes the socket.
func (w *SyslogWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.Close()
}

// dialSyslog tries a datagram socket first, then a stream socket.
func dialSyslog(path string) (net.Conn, error) {
	conn, err := net.Dial("unixgram", path)
	if err == nil {
		return conn, nil
	}
	return net.Dial("unix", path)
}
