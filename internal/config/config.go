// Package config loads the ztctl configuration file.
//
// The file is chosen by the --config flag or the ZTCTL_CONFIG environment
// variable. Without either, Default() is used unchanged. Fields omitted from
// the file keep their default values.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/audit"
	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/netutil"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "ZTCTL_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the ztctl configuration.
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Risk         RiskConfig         `yaml:"risk"`
	Policies     PoliciesConfig     `yaml:"policies"`
	Resources    []ResourceConfig   `yaml:"resources"`
	Verification VerificationConfig `yaml:"verification"`
	Audit        AuditConfig        `yaml:"audit"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// RiskConfig configures the risk engine.
type RiskConfig struct {
	Weights risk.Weights `yaml:"weights"`

	// TrustedDevices are device ids that avoid the untrusted-device penalty.
	TrustedDevices []string `yaml:"trusted_devices"`

	// TrustedNetworks are CIDRs trusted in addition to loopback and private
	// ranges.
	TrustedNetworks []string `yaml:"trusted_networks"`

	// Timezone is an IANA name used for time-of-day scoring. Empty means UTC
	// as carried by the request; "Local" uses the host zone.
	Timezone string `yaml:"timezone"`
}

// PoliciesConfig selects the policy set.
type PoliciesConfig struct {
	// File is a YAML policy file loaded on top of the defaults.
	File string `yaml:"file"`

	// IncludeDefaults installs policy.DefaultPolicies(). Default: true
	IncludeDefaults bool `yaml:"include_defaults"`
}

// ResourceConfig is one resource-specific role restriction.
type ResourceConfig struct {
	Type         string   `yaml:"type"`
	Name         string   `yaml:"name"`
	AllowedRoles []string `yaml:"allowed_roles"`
}

// VerificationConfig drives continuous verification.
type VerificationConfig struct {
	// Interval between passes. Default: 5m
	Interval time.Duration `yaml:"interval"`

	// MaxSessionAge is the age at which a session is re-assessed. Default: 1h
	MaxSessionAge time.Duration `yaml:"max_session_age"`
}

// AuditConfig selects audit sinks. The structured log sink is always on.
type AuditConfig struct {
	Syslog SyslogConfig `yaml:"syslog"`
}

// SyslogConfig enables the RFC 5424 syslog sink.
type SyslogConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SocketPath string `yaml:"socket_path"`
	AppName    string `yaml:"app_name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Risk: RiskConfig{
			Weights: risk.DefaultWeights(),
		},
		Policies: PoliciesConfig{IncludeDefaults: true},
		Verification: VerificationConfig{
			Interval:      5 * time.Minute,
			MaxSessionAge: time.Hour,
		},
		Audit: AuditConfig{
			Syslog: SyslogConfig{SocketPath: "/dev/log", AppName: "ztctl"},
		},
	}
}

// Load resolves the config path from path or ZTCTL_CONFIG and loads it. With
// neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads path over Default() and validates the result. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML from r over Default() and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if err := c.Risk.Weights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("risk.weights: %w", err))
	}
	if _, err := netutil.NewClassifier(c.Risk.TrustedNetworks...); err != nil {
		errs = append(errs, fmt.Errorf("risk.trusted_networks: %w", err))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("risk.timezone: %w", err))
	}

	for i, rc := range c.Resources {
		if rc.Name == "" {
			errs = append(errs, fmt.Errorf("resources[%d].name is required", i))
		}
		for _, r := range rc.AllowedRoles {
			if _, err := access.ParseRole(r); err != nil {
				errs = append(errs, fmt.Errorf("resources[%d]: %w", i, err))
			}
		}
	}

	if c.Verification.Interval <= 0 {
		errs = append(errs, fmt.Errorf("verification.interval must be positive"))
	}
	if c.Verification.MaxSessionAge < 0 {
		errs = append(errs, fmt.Errorf("verification.max_session_age must not be negative"))
	}

	if c.Audit.Syslog.Enabled && c.Audit.Syslog.SocketPath == "" {
		errs = append(errs, fmt.Errorf("audit.syslog.socket_path is required when enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// NewLogger builds the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Location returns the configured time zone, or nil when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Risk.Timezone == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Risk.Timezone)
}

// Classifier returns the trusted-network classifier.
func (c *Config) Classifier() (*netutil.Classifier, error) {
	return netutil.NewClassifier(c.Risk.TrustedNetworks...)
}

// ResourcePolicies converts the resources section.
func (c *Config) ResourcePolicies() ([]authz.ResourcePolicy, error) {
	out := make([]authz.ResourcePolicy, 0, len(c.Resources))
	for _, rc := range c.Resources {
		rp := authz.ResourcePolicy{
			ResourceType: access.ParseResourceType(rc.Type),
			ResourceName: rc.Name,
		}
		for _, r := range rc.AllowedRoles {
			role, err := access.ParseRole(r)
			if err != nil {
				return nil, err
			}
			rp.AllowedRoles = append(rp.AllowedRoles, role)
		}
		out = append(out, rp)
	}
	return out, nil
}

// SyslogWriterConfig maps the syslog section onto audit.SyslogConfig.
func (c *Config) SyslogWriterConfig() audit.SyslogConfig {
	return audit.SyslogConfig{
		SocketPath: c.Audit.Syslog.SocketPath,
		AppName:    c.Audit.Syslog.AppName,
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
}
