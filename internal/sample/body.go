package sample

import (
	"encoding/json"
	"strings"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// Body returns the request body sample for op, trying in order: the recorded body,
// the media example, the first named example, schema generation, and finally the
// referenced component's example. ok is false when the operation has no body or
// nothing produced a value.
func (g *Generator) Body(op *domain.Operation) (any, bool) {
	if op.RecordedBody != "" {
		var v any
		if err := json.Unmarshal([]byte(op.RecordedBody), &v); err == nil {
			return v, true
		}
		return op.RecordedBody, true
	}

	_, media, ok := op.RequestBody.JSONMedia()
	if !ok {
		return nil, false
	}

	if media.Example != nil {
		return media.Example, true
	}
	if len(media.Examples) > 0 && media.Examples[0].Value != nil {
		return media.Examples[0].Value, true
	}

	if media.Schema == nil {
		return nil, false
	}
	if v := g.Generate(media.Schema); !IsEmpty(v) {
		return v, true
	}
	if target, ok := g.Component(media.Schema.RefName()); ok && target.Example != nil {
		return target.Example, true
	}

	return nil, false
}

// BodySchema returns the object schema describing op's JSON body with references
// followed, or nil.
func (g *Generator) BodySchema(op *domain.Operation) *domain.Schema {
	_, media, ok := op.RequestBody.JSONMedia()
	if !ok {
		return nil
	}
	return g.Deref(media.Schema)
}

// Deref follows a chain of references to the first concrete schema. Cycles yield nil.
func (g *Generator) Deref(schema *domain.Schema) *domain.Schema {
	seen := map[string]bool{}
	for schema != nil && schema.Ref != "" {
		name := schema.RefName()
		if seen[name] {
			return nil
		}
		seen[name] = true
		schema, _ = g.Component(name)
	}
	return schema
}

// Properties returns the merged properties of an object schema, including allOf members.
func (g *Generator) Properties(schema *domain.Schema) map[string]*domain.Schema {
	return g.properties(g.Deref(schema), map[*domain.Schema]bool{})
}

func (g *Generator) properties(schema *domain.Schema, seen map[*domain.Schema]bool) map[string]*domain.Schema {
	out := map[string]*domain.Schema{}
	if schema == nil || seen[schema] {
		return out
	}
	seen[schema] = true

	for _, member := range schema.AllOf {
		for k, v := range g.properties(g.Deref(member), seen) {
			out[k] = v
		}
	}
	for k, v := range schema.Properties {
		out[k] = g.Deref(v)
	}
	return out
}

// IsEmpty reports whether v carries no data: nil, an empty string, map or list.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case map[string]any:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
