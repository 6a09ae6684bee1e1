package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

func jsonBody(mt domain.MediaType) *domain.Operation {
	return &domain.Operation{
		Method:      "POST",
		Path:        "/orders",
		RequestBody: &domain.RequestBody{Content: map[string]domain.MediaType{"application/json": mt}},
	}
}

func TestBodyPrefersMediaExample(t *testing.T) {
	op := jsonBody(domain.MediaType{
		Example:  map[string]any{"from": "example"},
		Examples: []domain.NamedExample{{Name: "a", Value: map[string]any{"from": "examples"}}},
		Schema:   &domain.Schema{Type: "object", Properties: map[string]*domain.Schema{"x": {Type: "string"}}},
	})

	got, ok := New(nil, frozen).Body(op)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"from": "example"}, got)
}

func TestBodyFallsBackToFirstNamedExample(t *testing.T) {
	op := jsonBody(domain.MediaType{
		Examples: []domain.NamedExample{
			{Name: "a", Value: map[string]any{"externalValue": "https://example.com/a.json"}},
			{Name: "b", Value: "second"},
		},
	})

	got, ok := New(nil, frozen).Body(op)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"externalValue": "https://example.com/a.json"}, got)
}

func TestBodyStopsAtFirstNamedExample(t *testing.T) {
	op := jsonBody(domain.MediaType{
		Examples: []domain.NamedExample{{Name: "a"}, {Name: "b", Value: "second"}},
		Schema:   &domain.Schema{Type: "object", Properties: map[string]*domain.Schema{"x": {Type: "string"}}},
	})

	got, ok := New(nil, frozen).Body(op)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"x": "sample_string"}, got)
}

func TestBodyFromSchema(t *testing.T) {
	op := jsonBody(domain.MediaType{Schema: &domain.Schema{
		Type:       "object",
		Properties: map[string]*domain.Schema{"qty": {Type: "integer", Minimum: ptr(1.0)}},
	}})

	got, ok := New(nil, frozen).Body(op)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"qty": int64(1)}, got)
}

func TestBodyFromComponent(t *testing.T) {
	components := map[string]*domain.Schema{
		"Empty": {Type: "object"},
	}
	op := jsonBody(domain.MediaType{Schema: &domain.Schema{Ref: "#/components/schemas/Empty"}})

	_, ok := New(components, frozen).Body(op)
	assert.False(t, ok, "an empty object schema without example yields no body")

	components["Empty"].Example = map[string]any{"seed": true}
	got, ok := New(components, frozen).Body(op)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"seed": true}, got)
}

func TestBodyRecorded(t *testing.T) {
	got, ok := New(nil, frozen).Body(&domain.Operation{RecordedBody: `{"a":1}`})
	require.True(t, ok)
	assert.Equal(t, map[string]any{"a": float64(1)}, got)

	got, ok = New(nil, frozen).Body(&domain.Operation{RecordedBody: "a=1&b=2"})
	require.True(t, ok)
	assert.Equal(t, "a=1&b=2", got)
}

func TestBodyAbsent(t *testing.T) {
	_, ok := New(nil, frozen).Body(&domain.Operation{Method: "GET", Path: "/users"})
	assert.False(t, ok)
}

func TestPropertiesMergesAllOfAndRefs(t *testing.T) {
	components := map[string]*domain.Schema{
		"Base": {Type: "object", Properties: map[string]*domain.Schema{
			"id": {Type: "integer"},
		}},
		"Name": {Type: "string", MaxLength: ptr(uint64(5))},
		"Loop": {Ref: "#/components/schemas/Loop"},
	}
	schema := &domain.Schema{
		AllOf: []*domain.Schema{
			{Ref: "#/components/schemas/Base"},
			{Properties: map[string]*domain.Schema{"name": {Ref: "#/components/schemas/Name"}}},
		},
	}

	g := New(components, frozen)
	props := g.Properties(schema)
	require.Len(t, props, 2)
	assert.Equal(t, "integer", props["id"].Type)
	assert.Equal(t, uint64(5), *props["name"].MaxLength)

	assert.Nil(t, g.Deref(&domain.Schema{Ref: "#/components/schemas/Loop"}))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(" "))
	assert.True(t, IsEmpty(map[string]any{}))
	assert.True(t, IsEmpty([]any{}))
	assert.False(t, IsEmpty(0))
	assert.False(t, IsEmpty(false))
}
