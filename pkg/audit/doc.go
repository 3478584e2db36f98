// Package audit records access decisions and security events.
//
// Two sink interfaces exist. AccessLogger receives exactly one Entry per
// authorization decision. EventEmitter receives out-of-band security events
// such as session revocations from continuous verification.
//
// Sinks may fail; callers log the failure and carry on. An audit problem never
// changes an access decision.
//
// Backends:
//   - SlogLogger writes entries and events as structured log records
//   - SyslogWriter ships RFC 5424 messages to the local syslog daemon
//   - Recorder keeps everything in memory for tests and the CLI
//   - Multi / Fanout combine backends
package audit
