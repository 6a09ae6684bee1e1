package domain

import (
	"errors"
	"fmt"
	"time"
)

// Grouping strategies for thread groups.
const (
	GroupByTag  = "tag"
	GroupByPath = "path"

	// DefaultBucket names the thread group of untagged operations.
	DefaultBucket = "default"
)

// LoadConfig shapes the generated JMeter test plan.
type LoadConfig struct {
	TestPlanName      string     `koanf:"test_plan_name" json:"test_plan_name" yaml:"test_plan_name"`
	Threads           int        `koanf:"threads" json:"threads" yaml:"threads"`
	RampUpSeconds     int        `koanf:"ramp_up_seconds" json:"ramp_up_seconds" yaml:"ramp_up_seconds"`
	Loops             int        `koanf:"loops" json:"loops" yaml:"loops"`
	GroupBy           string     `koanf:"group_by" json:"group_by" yaml:"group_by"`
	AddAssertions     bool       `koanf:"add_assertions" json:"add_assertions" yaml:"add_assertions"`
	AddCorrelation    bool       `koanf:"add_correlation" json:"add_correlation" yaml:"add_correlation"`
	GenerateCSVConfig bool       `koanf:"generate_csv_config" json:"generate_csv_config" yaml:"generate_csv_config"`
	ConnectTimeoutMs  int        `koanf:"connect_timeout_ms" json:"connect_timeout_ms" yaml:"connect_timeout_ms"`
	ResponseTimeoutMs int        `koanf:"response_timeout_ms" json:"response_timeout_ms" yaml:"response_timeout_ms"`
	Thresholds        Thresholds `koanf:"thresholds" json:"thresholds" yaml:"thresholds"`
}

// Thresholds are the pass/fail limits recorded in the plan.
type Thresholds struct {
	MaxResponseTimeMs   int     `koanf:"max_response_time_ms" json:"max_response_time_ms" yaml:"max_response_time_ms"`
	MaxErrorRatePercent float64 `koanf:"max_error_rate_percent" json:"max_error_rate_percent" yaml:"max_error_rate_percent"`
}

// DefaultLoadConfig returns the defaults used when nothing is configured.
func DefaultLoadConfig() LoadConfig {
	return LoadConfig{
		TestPlanName:      "API Load Test",
		Threads:           10,
		RampUpSeconds:     10,
		Loops:             1,
		GroupBy:           GroupByTag,
		AddAssertions:     true,
		AddCorrelation:    true,
		GenerateCSVConfig: false,
		ConnectTimeoutMs:  5000,
		ResponseTimeoutMs: 30000,
		Thresholds: Thresholds{
			MaxResponseTimeMs:   2000,
			MaxErrorRatePercent: 1,
		},
	}
}

// Validate checks that the load settings are usable.
func (c LoadConfig) Validate() error {
	var errs []error
	if c.Threads < 1 {
		errs = append(errs, fmt.Errorf("threads must be at least 1, got %d", c.Threads))
	}
	if c.RampUpSeconds < 0 {
		errs = append(errs, fmt.Errorf("ramp_up_seconds must not be negative, got %d", c.RampUpSeconds))
	}
	if c.Loops < 1 && c.Loops != -1 {
		errs = append(errs, fmt.Errorf("loops must be at least 1 or -1 for infinite, got %d", c.Loops))
	}
	if c.GroupBy != GroupByTag && c.GroupBy != GroupByPath {
		errs = append(errs, fmt.Errorf("group_by must be %q or %q, got %q", GroupByTag, GroupByPath, c.GroupBy))
	}
	if c.ConnectTimeoutMs < 0 || c.ResponseTimeoutMs < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.Thresholds.MaxErrorRatePercent < 0 || c.Thresholds.MaxErrorRatePercent > 100 {
		errs = append(errs, fmt.Errorf("max_error_rate_percent must be within 0..100, got %g", c.Thresholds.MaxErrorRatePercent))
	}
	return errors.Join(errs...)
}

// Run is one recorded generation.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	Format     string    `json:"format" yaml:"format"`
	Title      string    `json:"title" yaml:"title"`
	BaseURL    string    `json:"base_url" yaml:"base_url"`
	Operations int       `json:"operations" yaml:"operations"`
	Bytes      int64     `json:"bytes" yaml:"bytes"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}
