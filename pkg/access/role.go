package access

import (
	"fmt"
	"strings"
	"time"
)

// Role is a principal's classroom role.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

// roleRanks is the single source of role ordering.
var roleRanks = map[Role]int{
	RoleStudent: 1,
	RoleTeacher: 2,
	RoleAdmin:   3,
}

// AllRoles returns every known role in ascending rank order.
func AllRoles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin}
}

// Rank returns the role's rank, or 0 for an unknown role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r ranks at or above min. Unknown roles never do.
func (r Role) AtLeast(min Role) bool {
	rank := r.Rank()
	return rank > 0 && rank >= min.Rank()
}

func (r Role) String() string {
	return string(r)
}

// ParseRole maps a case-insensitive name onto a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// User is an already-authenticated identity. Authentication itself happens
// upstream; this package only carries the result.
type User struct {
	Username        string    `json:"username" yaml:"username"`
	Role            Role      `json:"role" yaml:"role"`
	AuthenticatedAt time.Time `json:"authenticated_at" yaml:"authenticated_at"`
}

// NewUser returns a user authenticated at the given instant.
func NewUser(username string, role Role, authenticatedAt time.Time) *User {
	return &User{Username: username, Role: role, AuthenticatedAt: authenticatedAt}
}
