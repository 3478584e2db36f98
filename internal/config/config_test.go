package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/risk"
)

const fullConfig = `
log: {level: debug, format: json}
risk:
  weights: {user: 0.30, network: 0.20, operation: 0.20, time: 0.10, session: 0.10, device: 0.10}
  trusted_devices: [dev-1, dev-2]
  trusted_networks: ["172.16.0.0/12"]
  timezone: Asia/Tokyo
policies:
  file: policies.yaml
  include_defaults: false
resources:
  - {type: admin, name: console, allowed_roles: [ADMIN]}
  - {type: worlds, name: exam, allowed_roles: [teacher, admin]}
verification:
  interval: 30s
  max_session_age: 2h
audit:
  syslog: {enabled: true, socket_path: /run/syslog.sock}
`

func TestParse_Full(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(strings.NewReader(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, 0.30, cfg.Risk.Weights.User, 1e-12)
	assert.Equal(t, []string{"dev-1", "dev-2"}, cfg.Risk.TrustedDevices)
	assert.False(t, cfg.Policies.IncludeDefaults)
	assert.Equal(t, "policies.yaml", cfg.Policies.File)
	assert.Equal(t, 30*time.Second, cfg.Verification.Interval)
	assert.Equal(t, 2*time.Hour, cfg.Verification.MaxSessionAge)
	assert.True(t, cfg.Audit.Syslog.Enabled)
	assert.Equal(t, "ztctl", cfg.Audit.Syslog.AppName, "omitted field keeps default")

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	c, err := cfg.Classifier()
	require.NoError(t, err)
	assert.True(t, c.IsTrusted("172.20.1.1"))
	assert.False(t, c.IsTrusted("8.8.8.8"))

	rps, err := cfg.ResourcePolicies()
	require.NoError(t, err)
	require.Len(t, rps, 2)
	assert.Equal(t, "admin:console", rps[0].Key())
	assert.Equal(t, "world:exam", rps[1].Key(), "resource type aliases resolve")
	assert.Equal(t, []access.Role{access.RoleTeacher, access.RoleAdmin}, rps[1].AllowedRoles)

	sc := cfg.SyslogWriterConfig()
	assert.Equal(t, "/run/syslog.sock", sc.SocketPath)
}

func TestParse_EmptyIsDefault(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, risk.DefaultWeights(), cfg.Risk.Weights)
	assert.True(t, cfg.Policies.IncludeDefaults)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"weights not summing to one", "risk: {weights: {user: 0.5}}", "risk.weights"},
		{"bad cidr", `risk: {trusted_networks: ["10.0.0.0/33"]}`, "risk.trusted_networks"},
		{"bad timezone", "risk: {timezone: Mars/Olympus}", "risk.timezone"},
		{"unknown role", "resources: [{type: admin, name: x, allowed_roles: [JANITOR]}]", "JANITOR"},
		{"missing resource name", "resources: [{type: admin}]", "resources[0].name"},
		{"bad level", "log: {level: loud}", "log.level"},
		{"bad format", "log: {format: xml}", "log.format"},
		{"zero interval", "verification: {interval: 0s}", "verification.interval"},
		{"syslog without socket", "audit: {syslog: {enabled: true, socket_path: ''}}", "socket_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.NewReader("risk: {wieghts: {}}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wieghts")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "log.format")
}

func TestLoad_PathAndEnv(t *testing.T) {
	// Not parallel: sets ZTCTL_CONFIG.
	dir := t.TempDir()
	path := filepath.Join(dir, "ztctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log: {level: warn}\n"), 0o600))

	t.Setenv(EnvVar, "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level, "no path means defaults")

	t.Setenv(EnvVar, path)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
