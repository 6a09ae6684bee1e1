// Package sample produces representative JSON values from schemas.
package sample

import (
	"time"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// Placeholder values used when a schema says nothing more specific.
const (
	EmailValue   = "user@example.com"
	UUIDValue    = "123e4567-e89b-12d3-a456-426614174000"
	StringValue  = "sample_string"
	GenericValue = "sample_value"
	NumberValue  = 123
)

// Generator turns schemas into sample values. References are looked up in Components
// by their final path segment.
type Generator struct {
	components map[string]*domain.Schema
	now        func() time.Time
}

// New returns a generator over the given named components. A nil clock means time.Now.
func New(components map[string]*domain.Schema, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{components: components, now: now}
}

// Generate returns a JSON-compatible value for schema. It never fails; cyclic
// references produce an empty object at the point the cycle closes.
func (g *Generator) Generate(schema *domain.Schema) any {
	return g.generate(schema, map[string]bool{})
}

// Component returns the named component schema, if any.
func (g *Generator) Component(name string) (*domain.Schema, bool) {
	s, ok := g.components[name]
	return s, ok && s != nil
}

func (g *Generator) generate(schema *domain.Schema, visiting map[string]bool) any {
	if schema == nil {
		return GenericValue
	}

	if schema.Ref != "" {
		return g.generateRef(schema.RefName(), visiting)
	}

	switch effectiveType(schema) {
	case "object":
		return g.generateObject(schema, visiting)
	case "array":
		if schema.Example != nil {
			return schema.Example
		}
		items := schema.Items
		if items == nil {
			items = &domain.Schema{Type: "string"}
		}
		return []any{g.generate(items, visiting)}
	case "string":
		return g.generateString(schema)
	case "integer", "number":
		return generateNumber(schema)
	case "boolean":
		return first(schema.Example, schema.Default, true)
	default:
		return first(schema.Example, schema.Default, GenericValue)
	}
}

func (g *Generator) generateRef(name string, visiting map[string]bool) any {
	if visiting[name] {
		return map[string]any{}
	}

	target, ok := g.Component(name)
	if !ok {
		return map[string]any{}
	}
	if target.Example != nil {
		return target.Example
	}

	visiting[name] = true
	defer delete(visiting, name)

	return g.generate(target, visiting)
}

func (g *Generator) generateObject(schema *domain.Schema, visiting map[string]bool) any {
	if schema.Example != nil {
		return schema.Example
	}

	obj := map[string]any{}
	for _, member := range schema.AllOf {
		if m, ok := g.generate(member, visiting).(map[string]any); ok {
			for k, v := range m {
				obj[k] = v
			}
		}
	}
	for _, name := range schema.PropertyNames() {
		obj[name] = g.generate(schema.Properties[name], visiting)
	}
	return obj
}

func (g *Generator) generateString(schema *domain.Schema) any {
	if schema.Example != nil {
		return schema.Example
	}

	switch schema.Format {
	case "email":
		return EmailValue
	case "date-time":
		return g.now().UTC().Format("2006-01-02T15:04:05.000Z")
	case "date":
		return g.now().UTC().Format("2006-01-02")
	case "uuid":
		return UUIDValue
	}

	if len(schema.Enum) > 0 {
		return schema.Enum[0]
	}
	return first(schema.Default, StringValue)
}

func generateNumber(schema *domain.Schema) any {
	if v := first(schema.Example, schema.Default); v != nil {
		return v
	}
	if schema.Minimum != nil {
		if schema.Type == "integer" {
			return int64(*schema.Minimum)
		}
		return *schema.Minimum
	}
	return NumberValue
}

// effectiveType infers object/array for untyped schemas that carry properties or items.
func effectiveType(schema *domain.Schema) string {
	if schema.Type != "" {
		return schema.Type
	}
	switch {
	case len(schema.Properties) > 0 || len(schema.AllOf) > 0:
		return "object"
	case schema.Items != nil:
		return "array"
	}
	return ""
}

func first(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
