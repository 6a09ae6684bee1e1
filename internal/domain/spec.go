// Package domain provides core business models and interfaces for load-test plan generation.
package domain

import "strings"

// Spec sources.
const (
	SourceOpenAPI3 = "openapi3"
	SourceSwagger2 = "swagger2"
	SourceHAR      = "har"
)

// APISpec is a parsed API description, reduced to what the generators need.
// It is read-only once loaded.
type APISpec struct {
	Source      string
	Title       string
	Version     string
	Description string

	// Servers holds OpenAPI 3 server URLs with variables already substituted.
	Servers []Server

	// Host, BasePath and Schemes are only set for Swagger 2 documents.
	Host     string
	BasePath string
	Schemes  []string

	Components      map[string]*Schema // Named schemas (key is the last $ref segment)
	SecuritySchemes map[string]SecurityScheme
	Operations      []Operation
}

// HasSecurity reports whether the document declares any security scheme.
func (s *APISpec) HasSecurity() bool {
	return len(s.SecuritySchemes) > 0
}

// Server represents an API server.
type Server struct {
	URL         string
	Description string
}

// SecurityScheme represents a security scheme.
type SecurityScheme struct {
	Type   string // http, apiKey, oauth2, openIdConnect, basic
	Scheme string // bearer, basic (for type http)
	In     string // header, query, cookie (for type apiKey)
	Name   string
}

// Operation represents one HTTP method on one path.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   map[string]Response
	Secured     bool // Operation (or the document) declares a security requirement

	// The fields below are only set for operations recorded in a HAR capture.
	Origin          *Origin
	RecordedHeaders []Header
	RecordedQuery   string
	RecordedBody    string
	RecordedMime    string
}

// Origin is the scheme/host/port a recorded request was sent to.
type Origin struct {
	Protocol string
	Domain   string
	Port     string
}

// Header is a single recorded request header.
type Header struct {
	Name  string
	Value string
}

// PrimaryTag returns the first tag, or "default" when the operation has none.
func (o Operation) PrimaryTag() string {
	for _, t := range o.Tags {
		if strings.TrimSpace(t) != "" {
			return t
		}
	}
	return DefaultBucket
}

// PathParams returns the parameter names found as {placeholders} in the path template.
func (o Operation) PathParams() []string {
	var names []string
	rest := o.Path
	for {
		start := strings.Index(rest, "{")
		if start == -1 {
			return names
		}
		end := strings.Index(rest[start:], "}")
		if end == -1 {
			return names
		}
		if name := rest[start+1 : start+end]; name != "" {
			names = append(names, name)
		}
		rest = rest[start+end+1:]
	}
}

// HasRequiredParams reports whether any declared parameter is required.
func (o Operation) HasRequiredParams() bool {
	for _, p := range o.Parameters {
		if p.Required {
			return true
		}
	}
	return false
}

// IsRecorded reports whether the operation came from captured traffic.
func (o Operation) IsRecorded() bool {
	return o.Origin != nil
}

// Parameter represents a request parameter.
type Parameter struct {
	Name        string
	In          string // query, path, header, cookie
	Description string
	Required    bool
	Schema      *Schema
	Example     any
}

// RequestBody represents a request body.
type RequestBody struct {
	Description string
	Required    bool
	Content     map[string]MediaType
}

// JSONMedia picks the media type used to build JSON bodies: application/json first,
// then any other *json type, then whatever sorts first.
func (b *RequestBody) JSONMedia() (string, *MediaType, bool) {
	if b == nil || len(b.Content) == 0 {
		return "", nil, false
	}
	if mt, ok := b.Content["application/json"]; ok {
		return "application/json", &mt, true
	}
	keys := sortedKeys(b.Content)
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "json") {
			mt := b.Content[k]
			return k, &mt, true
		}
	}
	mt := b.Content[keys[0]]
	return keys[0], &mt, true
}

// MediaType represents the content type and schema.
type MediaType struct {
	Schema   *Schema
	Example  any
	Examples []NamedExample // Sorted by name
}

// NamedExample is one entry of an OpenAPI examples map.
type NamedExample struct {
	Name  string
	Value any
}

// Response represents an API response.
type Response struct {
	StatusCode  string
	Description string
	Content     map[string]MediaType
}
