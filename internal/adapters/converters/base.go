// Package converters provides the artifact writers: JMeter plans, CSV catalogues and reports.
package converters

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/testcase"
)

// ErrUnsupportedFormat is returned by New for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported format")

// New returns the converter registered for format.
func New(format string, log logger.ILogger) (domain.Converter, error) {
	switch strings.ToLower(format) {
	case jmeterFormat, "jmx":
		return NewJMeterConverter(log), nil
	case csvFormat:
		return NewCSVConverter(), nil
	case pdfFormat:
		return NewPDFConverter(), nil
	case docxFormat, "word":
		return NewDocxConverter(), nil
	case adfFormat, "adf":
		return NewADFConverter(), nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, format, strings.Join(Formats(), ", "))
	}
}

// Formats lists the canonical format names.
func Formats() []string {
	return []string{jmeterFormat, csvFormat, pdfFormat, docxFormat, adfFormat}
}

// ContentType returns the MIME type of a format's output.
func ContentType(format string) string {
	switch format {
	case jmeterFormat:
		return "application/xml"
	case csvFormat:
		return "text/csv; charset=utf-8"
	case pdfFormat:
		return "application/pdf"
	case docxFormat:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case adfFormat:
		return "application/json"
	}
	return "application/octet-stream"
}

// Extension returns the file extension for a format's output.
func Extension(format string) string {
	switch format {
	case jmeterFormat:
		return ".jmx"
	case adfFormat:
		return ".json"
	}
	return "." + format
}

// formatMethod returns a styled method string.
func formatMethod(method string) string {
	return strings.ToUpper(method)
}

type moduleCases struct {
	name string
	rows []testcase.Row
}

// groupCases splits rows by module, keeping first-appearance order.
func groupCases(rows []testcase.Row) []moduleCases {
	var out []moduleCases
	index := map[string]int{}
	for _, r := range rows {
		i, ok := index[r.Module]
		if !ok {
			i = len(out)
			index[r.Module] = i
			out = append(out, moduleCases{name: r.Module})
		}
		out[i].rows = append(out[i].rows, r)
	}
	return out
}

// caseTitle is the one-line label of a test case.
func caseTitle(r testcase.Row) string {
	return fmt.Sprintf("TC-%03d %s %s", r.SerialNo, formatMethod(r.Method), r.Endpoint)
}

// caseDetails returns the labelled fields shown under each case in reports.
func caseDetails(r testcase.Row) [][2]string {
	details := [][2]string{
		{"Description", r.Description},
		{"Type", r.TestType + " / " + r.Priority},
		{"Expected", fmt.Sprintf("%d - %s", r.ExpectedStatus, r.ExpectedResult)},
		{"Headers", r.Headers},
		{"Preconditions", r.Preconditions},
	}
	if r.Role != "" {
		details = append(details, [2]string{"Role", r.Role})
	}
	if r.RequestBody != "" {
		details = append(details, [2]string{"Body", truncate(r.RequestBody, 300)})
	}
	return details
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// encodeJSON marshals v compactly without HTML escaping.
func encodeJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// scalarString renders a sample value for a query string.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any, []any:
		return encodeJSON(t)
	}
	return fmt.Sprint(v)
}

func nonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func stripHTML(s string) string {
	result := s
	for {
		start := strings.Index(result, "<")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], ">")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+1:]
	}
	result = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", "\"", "&#39;", "'").Replace(result)
	return strings.TrimSpace(result)
}
