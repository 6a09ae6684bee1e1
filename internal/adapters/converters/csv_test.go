package converters

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/testcase"
)

func TestCSVConvertGetWithPathParam(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{{Path: "/users/{id}", Method: "GET"}}}

	var buf bytes.Buffer
	require.NoError(t, NewCSVConverter().Convert(spec, frozenOptions(domain.LoadConfig{}), &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, testcase.Header, records[0])
	assert.Len(t, records[0], 15)
	assert.Equal(t, []string{"1", "2", "3"}, []string{records[1][0], records[2][0], records[3][0]})
	assert.Equal(t, []string{"200", "404", "405"}, []string{records[1][9], records[2][9], records[3][9]})
	assert.Equal(t, "/users/nonexistent_id", records[2][4])
}

func TestCSVConvertQuotesJSONBodies(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{{
		Path:   "/notes",
		Method: "POST",
		RequestBody: &domain.RequestBody{Content: map[string]domain.MediaType{
			"application/json": {Example: map[string]any{"text": "a, \"quoted\"\nline"}},
		}},
	}}}

	var buf bytes.Buffer
	require.NoError(t, NewCSVConverter().Convert(spec, frozenOptions(domain.LoadConfig{}), &buf))
	assert.Contains(t, buf.String(), `"{""text"":""a, \""quoted\""\nline""}"`)

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(records[1][8]), &body))
	assert.Equal(t, "a, \"quoted\"\nline", body["text"])
}

func reportSpec() *domain.APISpec {
	return &domain.APISpec{
		Title:           "Shop",
		Version:         "2.1",
		Description:     "<p>Shop &amp; orders</p>",
		SecuritySchemes: map[string]domain.SecurityScheme{"bearer": {Type: "http", Scheme: "bearer"}},
		Operations: []domain.Operation{
			{Path: "/orders/{id}", Method: "GET", Tags: []string{"orders"}, Secured: true},
			{
				Path: "/orders", Method: "POST", Tags: []string{"orders"}, Secured: true,
				RequestBody: &domain.RequestBody{Content: map[string]domain.MediaType{
					"application/json": {Example: map[string]any{"qty": 1}},
				}},
			},
			{Path: "/health", Method: "GET"},
		},
	}
}

func TestReportConverters(t *testing.T) {
	log := logger.NewConsoleLogger(os.Stdout)

	for _, format := range []string{"pdf", "docx"} {
		t.Run(format, func(t *testing.T) {
			conv, err := New(format, log)
			require.NoError(t, err)
			assert.Equal(t, format, conv.Format())

			var buf bytes.Buffer
			require.NoError(t, conv.Convert(reportSpec(), frozenOptions(domain.LoadConfig{}), &buf))
			assert.NotZero(t, buf.Len())
		})
	}
}

func TestPDFStartsWithMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPDFConverter().Convert(reportSpec(), frozenOptions(domain.LoadConfig{}), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestDocxIsZipArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDocxConverter().Convert(reportSpec(), frozenOptions(domain.LoadConfig{}), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
}

func TestADFGroupsCasesByModule(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewADFConverter().Convert(reportSpec(), frozenOptions(domain.LoadConfig{}), &buf))

	var doc adfDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "doc", doc.Type)

	var headings []string
	for _, n := range doc.Content {
		if n.Type == "heading" {
			headings = append(headings, n.Content[0].Text)
		}
	}
	assert.Equal(t, []string{"Shop Test Cases", "orders", "default"}, headings)

	// orders: GET (positive, 401, 404, 405) + POST (positive, 401, types, 405, 415, 413)
	list := doc.Content[3]
	assert.Equal(t, "bulletList", list.Type)
	assert.Len(t, list.Content, 10)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("xlsx", logger.NewConsoleLogger(os.Stdout))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "jmeter, csv, pdf, docx, confluence")

	for _, f := range Formats() {
		assert.NotEqual(t, "application/octet-stream", ContentType(f), f)
	}
	assert.Equal(t, ".jmx", Extension("jmeter"))
	assert.Equal(t, ".json", Extension("confluence"))
}

func TestGroupCasesKeepsOrder(t *testing.T) {
	groups := groupCases([]testcase.Row{{Module: "b"}, {Module: "a"}, {Module: "b"}})
	require.Len(t, groups, 2)
	assert.Equal(t, "b", groups[0].name)
	assert.Len(t, groups[0].rows, 2)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Shop & orders", stripHTML("<p>Shop &amp; orders</p>"))
}
