package access

import "strings"

// ResourceType classifies a target resource.
type ResourceType string

const (
	ResourceWorld      ResourceType = "world"
	ResourceRegion     ResourceType = "region"
	ResourceBlock      ResourceType = "block"
	ResourceEntity     ResourceType = "entity"
	ResourcePlayer     ResourceType = "player"
	ResourceChat       ResourceType = "chat"
	ResourceClassroom  ResourceType = "classroom"
	ResourceAssignment ResourceType = "assignment"
	ResourceAdmin      ResourceType = "admin"
	ResourceConfig     ResourceType = "config"
	ResourceSecurity   ResourceType = "security"
	ResourceGeneric    ResourceType = "generic"
)

var knownResourceTypes = map[ResourceType]bool{
	ResourceWorld:      true,
	ResourceRegion:     true,
	ResourceBlock:      true,
	ResourceEntity:     true,
	ResourcePlayer:     true,
	ResourceChat:       true,
	ResourceClassroom:  true,
	ResourceAssignment: true,
	ResourceAdmin:      true,
	ResourceConfig:     true,
	ResourceSecurity:   true,
	ResourceGeneric:    true,
}

// resourceAliases lets the integration layer use its own spellings.
var resourceAliases = map[string]ResourceType{
	"worlds":         ResourceWorld,
	"area":           ResourceRegion,
	"zone":           ResourceRegion,
	"blocks":         ResourceBlock,
	"mob":            ResourceEntity,
	"user":           ResourcePlayer,
	"message":        ResourceChat,
	"class":          ResourceClassroom,
	"administration": ResourceAdmin,
	"configuration":  ResourceConfig,
	"settings":       ResourceConfig,
}

// ParseResourceType maps a string onto a ResourceType. It never fails:
// unrecognized input yields ResourceGeneric.
func ParseResourceType(s string) ResourceType {
	key := strings.ToLower(strings.TrimSpace(s))
	if t := ResourceType(key); knownResourceTypes[t] {
		return t
	}
	if t, ok := resourceAliases[key]; ok {
		return t
	}
	return ResourceGeneric
}

// IsSensitive reports whether the type is one of admin, config or security.
func (t ResourceType) IsSensitive() bool {
	return t == ResourceAdmin || t == ResourceConfig || t == ResourceSecurity
}

// Resource is a named target with a minimum access role.
type Resource struct {
	Name              string       `json:"name" yaml:"name"`
	Type              ResourceType `json:"type" yaml:"type"`
	MinimumAccessRole Role         `json:"minimum_access_role" yaml:"minimum_access_role"`
}

// NewResource returns a resource, resolving typeName leniently.
func NewResource(name, typeName string, minimumAccessRole Role) *Resource {
	return &Resource{Name: name, Type: ParseResourceType(typeName), MinimumAccessRole: minimumAccessRole}
}

// Key returns the "type:name" lookup key used for resource-specific policies.
func (r *Resource) Key() string {
	return ResourceKey(r.Type, r.Name)
}

// ResourceKey builds the "type:name" key for a resource.
func ResourceKey(t ResourceType, name string) string {
	return string(t) + ":" + name
}
