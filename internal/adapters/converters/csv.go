package converters

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/testcase"
)

const csvFormat = "csv"

// CSVConverter writes the test-case catalogue as CSV.
type CSVConverter struct{}

// NewCSVConverter creates a new CSV converter.
func NewCSVConverter() *CSVConverter {
	return &CSVConverter{}
}

// Format returns the output format name.
func (c *CSVConverter) Format() string {
	return csvFormat
}

// Convert writes a header row followed by one row per test case.
func (c *CSVConverter) Convert(spec *domain.APISpec, opts domain.GenerateOptions, output io.Writer) error {
	w := csv.NewWriter(output)

	if err := w.Write(testcase.Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, row := range testcase.Synthesize(spec, opts) {
		if err := w.Write(row.Record()); err != nil {
			return fmt.Errorf("failed to write test case %d: %w", row.SerialNo, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}
