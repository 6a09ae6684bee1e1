package generate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/loadplan/internal/adapters/converters"
	"github.com/GabrielNunesIT/loadplan/internal/adapters/loader"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/store"
)

const ordersSpec = `{
  "openapi": "3.0.0",
  "info": {"title": "Orders", "version": "1.0"},
  "servers": [{"url": "https://api.example.com/v1"}],
  "paths": {
    "/orders": {
      "post": {
        "tags": ["orders"],
        "requestBody": {"content": {"application/json": {"schema": {"type": "object", "properties": {"qty": {"type": "integer", "minimum": 1}}}}}},
        "responses": {"201": {"description": "created"}}
      }
    },
    "/orders/{id}": {
      "get": {
        "tags": ["orders"],
        "parameters": [{"name": "id", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

var frozen = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return frozen })}, opts...)
	return New(logger.NewConsoleLogger(os.Stdout), opts...)
}

func TestGenerateJMeterRecordsRun(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := newService(t, WithStore(st))

	var out bytes.Buffer
	run, err := svc.Generate(context.Background(), Request{Spec: []byte(ordersSpec), Format: "jmx"}, &out)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "<?xml"))
	assert.Equal(t, "jmeter", run.Format)
	assert.Equal(t, "Orders", run.Title)
	assert.Equal(t, domain.SourceOpenAPI3, run.Source)
	assert.Equal(t, 2, run.Operations)
	assert.Equal(t, int64(out.Len()), run.Bytes)
	assert.Equal(t, "https://api.example.com/v1", run.BaseURL)
	assert.NotEmpty(t, run.ID)

	saved, err := st.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Title, saved.Title)
	assert.True(t, frozen.Equal(saved.CreatedAt))
	assert.Equal(t, run.BaseURL, saved.BaseURL)
}

func TestGenerateCSVWithoutStore(t *testing.T) {
	svc := newService(t)

	var out bytes.Buffer
	run, err := svc.Generate(context.Background(), Request{Spec: []byte(ordersSpec), Format: "csv"}, &out)
	require.NoError(t, err)
	assert.Empty(t, run.ID)
	assert.True(t, strings.HasPrefix(out.String(), "S.No,Module,"))
}

func TestGenerateRejectsBadInput(t *testing.T) {
	svc := newService(t)
	badLoad := domain.DefaultLoadConfig()
	badLoad.Threads = 0

	cases := []struct {
		name string
		req  Request
	}{
		{"empty spec", Request{Spec: []byte("  "), Format: "csv"}},
		{"garbage spec", Request{Spec: []byte("::: not yaml"), Format: "csv"}},
		{"har without entries", Request{Spec: []byte(`{"log": {}}`), Source: loader.KindHAR, Format: "csv"}},
		{"unknown format", Request{Spec: []byte(ordersSpec), Format: "xlsx"}},
		{"invalid load", Request{Spec: []byte(ordersSpec), Format: "jmeter", Load: &badLoad}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := svc.Generate(context.Background(), tc.req, &out)
			require.Error(t, err)
			assert.True(t, IsBadInput(err), "unexpected error class: %v", err)
			assert.Zero(t, out.Len())
		})
	}
}

func TestGenerateRecordsBaseURLOverride(t *testing.T) {
	svc := newService(t)

	var out bytes.Buffer
	run, err := svc.Generate(context.Background(), Request{Spec: []byte(ordersSpec), Format: "csv", BaseURL: "http://staging:8080"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "http://staging:8080", run.BaseURL)
}

func TestGenerateUsesRequestLoad(t *testing.T) {
	svc := newService(t)
	load := svc.LoadDefaults()
	load.TestPlanName = "Nightly Soak"

	var out bytes.Buffer
	_, err := svc.Generate(context.Background(), Request{Spec: []byte(ordersSpec), Format: "jmeter", Load: &load}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `testname="Nightly Soak"`)
}

func TestSummarize(t *testing.T) {
	svc := newService(t)
	spec, err := svc.Parse(Request{Spec: []byte(ordersSpec)})
	require.NoError(t, err)

	sum := Summarize(spec)
	assert.Equal(t, "Orders", sum.Title)
	require.Len(t, sum.Operations, 2)

	post := sum.Operations[0]
	assert.Equal(t, "POST", post.Method)
	assert.Equal(t, "/orders", post.Path)
	assert.Equal(t, "orders", post.Group)
	assert.Equal(t, "application/json", post.BodyType)
	assert.Equal(t, []string{"201"}, post.Responses)

	get := sum.Operations[1]
	assert.Equal(t, []string{"path:id*"}, get.Parameters)
}

func TestIsBadInputIgnoresOtherErrors(t *testing.T) {
	assert.False(t, IsBadInput(store.ErrNotFound))
	assert.True(t, IsBadInput(converters.ErrUnsupportedFormat))
}
