package domain

import (
	"io"
	"time"
)

// Converter defines the interface for artifact writers.
type Converter interface {
	// Convert renders the parsed spec to the target format.
	Convert(spec *APISpec, opts GenerateOptions, output io.Writer) error

	// Format returns the output format name (e.g., "jmeter", "csv").
	Format() string
}

// GenerateOptions carries everything a converter needs besides the parsed document.
type GenerateOptions struct {
	Load LoadConfig

	// BaseURL overrides the base URL resolved from the document.
	BaseURL string

	// CustomPrompt is free text; role keywords in it drive role-based test cases.
	CustomPrompt string

	// Now is the clock used for generated timestamps. Nil means time.Now.
	Now func() time.Time
}

// Clock returns the configured clock or time.Now.
func (o GenerateOptions) Clock() func() time.Time {
	if o.Now != nil {
		return o.Now
	}
	return time.Now
}
