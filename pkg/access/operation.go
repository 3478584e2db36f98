package access

import "strings"

// Category groups operations by sensitivity.
type Category string

const (
	CategoryBasic          Category = "BASIC"
	CategoryCollaboration  Category = "COLLABORATION"
	CategoryBuilding       Category = "BUILDING"
	CategoryAdministrative Category = "ADMINISTRATIVE"
	CategoryCommunication  Category = "COMMUNICATION"
	CategorySecurity       Category = "SECURITY"
)

var validCategories = map[Category]bool{
	CategoryBasic:          true,
	CategoryCollaboration:  true,
	CategoryBuilding:       true,
	CategoryAdministrative: true,
	CategoryCommunication:  true,
	CategorySecurity:       true,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return validCategories[c]
}

// ParseCategory maps a case-insensitive name onto a Category. Unknown input
// yields BASIC and false.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return CategoryBasic, false
	}
	return c, true
}

// Operation is a named action defined by the integration layer.
type Operation struct {
	Name         string   `json:"name" yaml:"name"`
	Category     Category `json:"category" yaml:"category"`
	RequiredRole Role     `json:"required_role" yaml:"required_role"`
}

// NewOperation returns an operation definition.
func NewOperation(name string, category Category, requiredRole Role) *Operation {
	return &Operation{Name: name, Category: category, RequiredRole: requiredRole}
}

// IsBulk reports whether the operation name marks a batch/bulk/mass action.
func (o *Operation) IsBulk() bool {
	name := strings.ToLower(o.Name)
	return strings.Contains(name, "batch") ||
		strings.Contains(name, "bulk") ||
		strings.Contains(name, "mass")
}
