package authz

import (
	"slices"

	"github.com/laughtale01/Scratch-sub001/pkg/access"
)

// ResourcePolicy restricts one named resource to a set of roles, on top of
// the resource's minimum access role.
type ResourcePolicy struct {
	ResourceType access.ResourceType `json:"type" yaml:"type"`
	ResourceName string              `json:"name" yaml:"name"`
	AllowedRoles []access.Role       `json:"allowed_roles" yaml:"allowed_roles"`
}

// Key is the "type:name" lookup key.
func (p ResourcePolicy) Key() string {
	return access.ResourceKey(p.ResourceType, p.ResourceName)
}

// IsAllowed reports whether role may access the resource. An empty role list
// allows nobody.
func (p ResourcePolicy) IsAllowed(role access.Role) bool {
	return slices.Contains(p.AllowedRoles, role)
}
