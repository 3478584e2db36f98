package audit

import "log/slog"

// EventEmitter accepts security events.
type EventEmitter interface {
	Emit(Event) error
}

// Fanout forwards each event to every backend. Backend errors are logged and
// never returned; audit failures must not block callers.
type Fanout struct {
	backends []EventEmitter
	logger   *slog.Logger
}

// NewFanout returns a Fanout over backends. A nil logger means slog.Default().
func NewFanout(logger *slog.Logger, backends ...EventEmitter) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{backends: backends, logger: logger}
}

// Emit implements EventEmitter and always returns nil.
func (f *Fanout) Emit(ev Event) error {
	for _, b := range f.backends {
		if err := b.Emit(ev); err != nil {
			f.logger.Error("audit emit failed", "event", string(ev.Type), "error", err)
		}
	}
	return nil
}
