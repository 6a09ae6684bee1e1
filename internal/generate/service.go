// Package generate ties parsing, conversion and run history together for the
// CLI, HTTP and MCP surfaces.
package generate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/loadplan/internal/adapters/converters"
	"github.com/GabrielNunesIT/loadplan/internal/adapters/loader"
	"github.com/GabrielNunesIT/loadplan/internal/baseurl"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/store"
)

var (
	// ErrEmptySpec is returned when a request carries no document.
	ErrEmptySpec = errors.New("spec is empty")

	// ErrInvalidLoad wraps load settings that fail validation.
	ErrInvalidLoad = errors.New("invalid load settings")
)

// Request is one generation job.
type Request struct {
	Spec         []byte
	Source       string // loader.KindAuto, loader.KindOpenAPI or loader.KindHAR
	Format       string
	BaseURL      string
	CustomPrompt string

	// Load overrides the service defaults when set.
	Load *domain.LoadConfig
}

// Service runs generation jobs.
type Service struct {
	log   logger.ILogger
	store store.Store
	load  domain.LoadConfig
	har   loader.HARFilter
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithStore records every successful generation in st.
func WithStore(st store.Store) Option {
	return func(s *Service) { s.store = st }
}

// WithLoadDefaults sets the load settings used when a request has none.
func WithLoadDefaults(cfg domain.LoadConfig) Option {
	return func(s *Service) { s.load = cfg }
}

// WithHARFilter sets the filters applied to HAR input.
func WithHARFilter(f loader.HARFilter) Option {
	return func(s *Service) { s.har = f }
}

// WithClock freezes generated timestamps, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(log logger.ILogger, opts ...Option) *Service {
	s := &Service{
		log:  log,
		load: domain.DefaultLoadConfig(),
		har:  loader.DefaultHARFilter(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadDefaults returns a copy of the service's load settings.
func (s *Service) LoadDefaults() domain.LoadConfig {
	return s.load
}

// Parse loads the request's document.
func (s *Service) Parse(req Request) (*domain.APISpec, error) {
	if len(bytes.TrimSpace(req.Spec)) == 0 {
		return nil, ErrEmptySpec
	}
	return loader.Parse(req.Spec, loader.Options{Kind: req.Source, HAR: s.har})
}

// Generate renders req to w and returns the recorded run. Nothing is written to
// w when parsing or conversion fails.
func (s *Service) Generate(ctx context.Context, req Request, w io.Writer) (*domain.Run, error) {
	spec, err := s.Parse(req)
	if err != nil {
		return nil, err
	}

	conv, err := converters.New(req.Format, s.log)
	if err != nil {
		return nil, err
	}

	load := s.load
	if req.Load != nil {
		load = *req.Load
	}
	if err := load.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLoad, err)
	}

	opts := domain.GenerateOptions{
		Load:         load,
		BaseURL:      req.BaseURL,
		CustomPrompt: req.CustomPrompt,
		Now:          s.now,
	}

	var buf bytes.Buffer
	if err := conv.Convert(spec, opts, &buf); err != nil {
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	n, err := io.Copy(w, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	run := &domain.Run{
		Source:     spec.Source,
		Format:     conv.Format(),
		Title:      spec.Title,
		BaseURL:    resolvedBaseURL(spec, req.BaseURL),
		Operations: len(spec.Operations),
		Bytes:      n,
		CreatedAt:  s.now(),
	}

	if s.store != nil {
		// History is auxiliary; a failed insert does not fail the generation.
		if err := s.store.SaveRun(ctx, run); err != nil {
			s.log.Errorf("Failed to record run: %v", err)
		}
	}

	s.log.Infof("Generated %s for %q: %d operations, %d bytes", run.Format, run.Title, run.Operations, run.Bytes)
	return run, nil
}

// resolvedBaseURL is the base URL the artifact targets: the override, then the
// document's own, then the localhost fallback.
func resolvedBaseURL(spec *domain.APISpec, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	if u, ok := baseurl.Resolve(spec); ok {
		return u
	}
	return baseurl.Fallback
}

// IsBadInput reports whether err was caused by the caller's input rather than
// by the service.
func IsBadInput(err error) bool {
	return errors.Is(err, ErrEmptySpec) ||
		errors.Is(err, ErrInvalidLoad) ||
		errors.Is(err, loader.ErrInvalidSpec) ||
		errors.Is(err, loader.ErrInvalidHAR) ||
		errors.Is(err, converters.ErrUnsupportedFormat)
}
