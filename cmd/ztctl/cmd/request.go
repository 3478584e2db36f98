package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
	"github.com/laughtale01/Scratch-sub001/pkg/authz"
	"github.com/laughtale01/Scratch-sub001/pkg/clierror"
)

// requestSpec describes one authorization request. It is filled from flags
// (authorize, assess) or from a YAML file (simulate).
type requestSpec struct {
	User           string        `yaml:"user"`
	Role           string        `yaml:"role"`
	Operation      string        `yaml:"operation"`
	Category       string        `yaml:"category"`
	RequiredRole   string        `yaml:"required_role"`
	Resource       string        `yaml:"resource"`
	ResourceType   string        `yaml:"resource_type"`
	MinRole        string        `yaml:"min_role"`
	IP             string        `yaml:"ip"`
	ClientID       string        `yaml:"client_id"`
	Internal       bool          `yaml:"internal"`
	Encrypted      bool          `yaml:"encrypted"`
	SessionID      string        `yaml:"session_id"`
	SessionAge     time.Duration `yaml:"session_age"`
	DeviceID       string        `yaml:"device_id"`
	DeviceType     string        `yaml:"device_type"`
	FailedAttempts int           `yaml:"failed_attempts"`
}

func defaultRequestSpec() requestSpec {
	return requestSpec{
		Role:         "STUDENT",
		Category:     "BASIC",
		RequiredRole: "STUDENT",
		ResourceType: "generic",
		MinRole:      "STUDENT",
		IP:           "127.0.0.1",
		ClientID:     "ztctl",
	}
}

func (s *requestSpec) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&s.User, "user", "u", s.User, "Username (required)")
	f.StringVar(&s.Role, "role", s.Role, "User role: STUDENT, TEACHER, ADMIN")
	f.StringVar(&s.Operation, "operation", s.Operation, "Operation name (required)")
	f.StringVar(&s.Category, "category", s.Category, "Operation category")
	f.StringVar(&s.RequiredRole, "required-role", s.RequiredRole, "Role the operation requires")
	f.StringVar(&s.Resource, "resource", s.Resource, "Resource name (required)")
	f.StringVar(&s.ResourceType, "resource-type", s.ResourceType, "Resource type (aliases accepted)")
	f.StringVar(&s.MinRole, "min-role", s.MinRole, "Minimum role for the resource")
	f.StringVar(&s.IP, "ip", s.IP, "Client IP address")
	f.StringVar(&s.ClientID, "client-id", s.ClientID, "Client identifier")
	f.BoolVar(&s.Internal, "internal", s.Internal, "Request arrived on an internal network")
	f.BoolVar(&s.Encrypted, "encrypted", s.Encrypted, "Connection is encrypted")
	f.StringVar(&s.SessionID, "session-id", s.SessionID, "Session identifier")
	f.DurationVar(&s.SessionAge, "session-age", s.SessionAge, "How long the session has existed")
	f.StringVar(&s.DeviceID, "device-id", s.DeviceID, "Device identifier")
	f.StringVar(&s.DeviceType, "device-type", s.DeviceType, "Device type: desktop, laptop, chromebook, tablet, mobile")
	f.IntVar(&s.FailedAttempts, "failed-attempts", s.FailedAttempts, "Failed logins to record for the user first")
}

// build converts s into a request evaluated at now.
func (s requestSpec) build(now time.Time) (authz.Request, error) {
	for _, field := range [][2]string{{"user", s.User}, {"operation", s.Operation}, {"resource", s.Resource}} {
		if field[1] == "" {
			return authz.Request{}, clierror.InvalidArgument(field[0], fmt.Errorf("%s is required", field[0]))
		}
	}
	role, err := access.ParseRole(s.Role)
	if err != nil {
		return authz.Request{}, clierror.InvalidArgument("role", err)
	}
	required, err := access.ParseRole(s.RequiredRole)
	if err != nil {
		return authz.Request{}, clierror.InvalidArgument("required role", err)
	}
	minRole, err := access.ParseRole(s.MinRole)
	if err != nil {
		return authz.Request{}, clierror.InvalidArgument("minimum role", err)
	}
	category, ok := access.ParseCategory(s.Category)
	if !ok {
		return authz.Request{}, clierror.InvalidArgument("category", fmt.Errorf("unknown category %q", s.Category))
	}

	req := authz.Request{
		User:      access.NewUser(s.User, role, now),
		Operation: access.NewOperation(s.Operation, category, required),
		Resource:  access.NewResource(s.Resource, s.ResourceType, minRole),
		Network: &access.NetworkContext{
			IP:        s.IP,
			ClientID:  s.ClientID,
			Internal:  s.Internal,
			Encrypted: s.Encrypted,
		},
	}
	if s.SessionID != "" || s.SessionAge > 0 {
		req.Session = &access.SessionContext{SessionID: s.SessionID, SessionStart: now.Add(-s.SessionAge)}
	}
	if s.DeviceID != "" || s.DeviceType != "" {
		req.Device = &access.DeviceContext{
			DeviceID:   s.DeviceID,
			DeviceType: access.DeviceType(strings.ToLower(s.DeviceType)),
		}
	}
	return req, nil
}

// parseAt reads the --at flag. Empty means the wall clock.
func parseAt(s string) (func() time.Time, time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Now, now, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, time.Time{}, clierror.InvalidArgument("--at", err)
	}
	return func() time.Time { return t }, t, nil
}
