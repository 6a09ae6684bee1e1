package domain

import (
	"sort"
	"strings"
)

// Schema is a JSON-schema node. References are kept by name and resolved against
// APISpec.Components when traversed, so cyclic component graphs load safely.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Description string
	Example     any
	Default     any
	Enum        []any
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
	AllOf       []*Schema

	MinLength *uint64
	MaxLength *uint64
	Minimum   *float64
	Maximum   *float64
}

// RefName returns the final segment of the schema's $ref, or "".
func (s *Schema) RefName() string {
	if s == nil || s.Ref == "" {
		return ""
	}
	return RefName(s.Ref)
}

// HasBounds reports whether the schema declares any length or range constraint.
func (s *Schema) HasBounds() bool {
	if s == nil {
		return false
	}
	return s.MinLength != nil || s.MaxLength != nil || s.Minimum != nil || s.Maximum != nil
}

// PropertyNames returns property names in sorted order.
func (s *Schema) PropertyNames() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.Properties)
}

// RefName extracts the component name from a $ref such as "#/components/schemas/User".
func RefName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
