// Package loader parses OpenAPI 3, Swagger 2 and HAR documents into domain.APISpec.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

var (
	// ErrInvalidSpec reports input that is not a readable OpenAPI or Swagger document.
	ErrInvalidSpec = errors.New("Invalid Swagger/OpenAPI format")

	// ErrInvalidHAR reports input that is not a HAR capture.
	ErrInvalidHAR = errors.New("Invalid HAR file format")
)

// Input kinds accepted by Parse.
const (
	KindAuto    = ""
	KindOpenAPI = "openapi"
	KindHAR     = "har"
)

// Options controls parsing.
type Options struct {
	Kind string    // KindAuto, KindOpenAPI or KindHAR
	HAR  HARFilter // Applied to HAR input only
}

// Parse reads an API description. With KindAuto a JSON document whose root has a
// "log" key is treated as HAR; anything else as OpenAPI/Swagger.
func Parse(data []byte, opts Options) (*domain.APISpec, error) {
	switch opts.Kind {
	case KindHAR:
		return ParseHAR(data, opts.HAR)
	case KindOpenAPI:
		return ParseSpec(data)
	case KindAuto:
		if looksLikeHAR(data) {
			return ParseHAR(data, opts.HAR)
		}
		return ParseSpec(data)
	default:
		return nil, fmt.Errorf("%w: unknown input kind %q", ErrInvalidSpec, opts.Kind)
	}
}

// ParseFile reads path and parses it with opts.
func ParseFile(path string, opts Options) (*domain.APISpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data, opts)
}

func looksLikeHAR(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var head map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &head); err != nil {
		return false
	}
	_, hasLog := head["log"]
	_, hasOpenAPI := head["openapi"]
	_, hasSwagger := head["swagger"]
	return hasLog && !hasOpenAPI && !hasSwagger
}

// toJSON returns data as JSON: JSON input (trimmed text starting with '{') passes
// through, anything else is decoded as YAML and re-encoded.
func toJSON(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	if trimmed[0] == '{' {
		if !json.Valid(trimmed) {
			return nil, errors.New("malformed JSON")
		}
		return trimmed, nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("malformed YAML: %w", err)
	}
	return json.Marshal(normalizeYAML(doc))
}

// normalizeYAML converts YAML maps with non-string keys (response codes such as 200)
// into JSON-compatible maps.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	}
	return v
}
