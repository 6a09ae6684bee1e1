package testcase

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

func ptr[T any](v T) *T { return &v }

var opts = domain.GenerateOptions{
	Now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
}

func statuses(rows []Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ExpectedStatus
	}
	return out
}

func TestSynthesizeGetWithPathParam(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{
		{Path: "/users/{id}", Method: "GET"},
	}}

	rows := Synthesize(spec, opts)

	require.Len(t, rows, 3)
	assert.Equal(t, []int{200, 404, 405}, statuses(rows))
	assert.Equal(t, TypePositive, rows[0].TestType)
	assert.Equal(t, "default", rows[0].Module)
	assert.Equal(t, "/users/nonexistent_id", rows[1].Endpoint)
	assert.NotContains(t, rows[1].Endpoint, "{")
	assert.Equal(t, "POST", rows[2].Method)
}

func TestSynthesizeSerialNumbersSpanOperations(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{
		{Path: "/users/{id}", Method: "GET"},
		{Path: "/health", Method: "GET"},
	}}

	rows := Synthesize(spec, opts)

	require.Len(t, rows, 5)
	for i, r := range rows {
		assert.Equal(t, i+1, r.SerialNo)
	}
	assert.Equal(t, "2", rows[1].Record()[0])
}

func TestSynthesizePostOrders(t *testing.T) {
	spec := &domain.APISpec{
		SecuritySchemes: map[string]domain.SecurityScheme{"bearer": {Type: "http", Scheme: "bearer"}},
		Operations: []domain.Operation{{
			Path:    "/orders",
			Method:  "POST",
			Tags:    []string{"orders"},
			Secured: true,
			Parameters: []domain.Parameter{
				{Name: "X-Request-Id", In: "header", Required: true},
			},
			RequestBody: &domain.RequestBody{Required: true, Content: map[string]domain.MediaType{
				"application/json": {Schema: &domain.Schema{
					Type: "object",
					Properties: map[string]*domain.Schema{
						"qty":  {Type: "integer", Minimum: ptr(1.0)},
						"note": {Type: "string", MaxLength: ptr(uint64(5))},
					},
				}},
			}},
			Responses: map[string]domain.Response{"202": {}, "201": {}, "400": {}},
		}},
	}

	rows := Synthesize(spec, opts)

	// positive, 401, 400 params, 400 types, boundary, 405, 415, 413
	assert.Equal(t, []int{201, 401, 400, 400, 400, 405, 415, 413}, statuses(rows))

	positive := rows[0]
	assert.Equal(t, "orders", positive.Module)
	assert.True(t, positive.RequiresAuth)
	assert.JSONEq(t, `{"qty":1,"note":"sample_string"}`, positive.RequestBody)
	assert.Contains(t, positive.Headers, "Authorization: Bearer")

	assert.NotContains(t, rows[1].Headers, "Authorization")

	var invalid map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[3].RequestBody), &invalid))
	assert.Equal(t, "not_a_number", invalid["qty"])
	assert.Equal(t, float64(12345), invalid["note"])

	var boundary map[string]any
	assert.Equal(t, TypeBoundary, rows[4].TestType)
	require.NoError(t, json.Unmarshal([]byte(rows[4].RequestBody), &boundary))
	assert.Len(t, boundary["note"], 6)
	assert.Equal(t, float64(0), boundary["qty"])

	assert.Equal(t, "GET", rows[5].Method)
	assert.Equal(t, "text/plain", rows[6].ContentType)

	var large map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[7].RequestBody), &large))
	assert.Len(t, large["large_field"], LargeFieldLength)
	assert.Len(t, large["large_array"], LargeArrayLength)
	assert.Equal(t, float64(1), large["qty"])
}

func TestSynthesizeRolesReplaceMissingAuth(t *testing.T) {
	spec := &domain.APISpec{
		SecuritySchemes: map[string]domain.SecurityScheme{"key": {Type: "apiKey", In: "header", Name: "X-API-Key"}},
		Operations:      []domain.Operation{{Path: "/reports", Method: "DELETE", Secured: true}},
	}

	o := opts
	o.CustomPrompt = "Cover the admin, a Viewer and regular users"
	rows := Synthesize(spec, o)

	var roles []string
	for _, r := range rows {
		assert.NotEqual(t, 401, r.ExpectedStatus)
		if r.TestType == TypeRole {
			roles = append(roles, r.Role)
		}
	}
	assert.Equal(t, []string{"ADMIN", "VIEWER", "USER"}, roles)
	assert.Equal(t, []int{200, 200, 403, 403, 405}, statuses(rows))
}

func TestSynthesizeUnsecuredSpecHasNoAuthRow(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{{Path: "/a", Method: "GET", Secured: true}}}
	for _, r := range Synthesize(spec, opts) {
		assert.NotEqual(t, 401, r.ExpectedStatus)
		assert.False(t, r.RequiresAuth)
	}
}

func TestExtractRoles(t *testing.T) {
	tests := []struct {
		prompt string
		want   []string
	}{
		{"", nil},
		{"plain functional tests", nil},
		{"Test as Super User and as an administrator", []string{"SUPER_USER", "ADMIN"}},
		{"superusers, managers and MANAGER again", []string{"SUPER_USER", "MANAGER"}},
		{"guest-only and support staff", []string{"GUEST", "SUPPORT"}},
		{"include RBAC coverage", DefaultRoles},
		{"check access control", DefaultRoles},
	}
	for _, tt := range tests {
		t.Run(tt.prompt, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRoles(tt.prompt))
		})
	}
}

func TestBoundaryValue(t *testing.T) {
	v, rule := BoundaryValue(&domain.Schema{Type: "string", MaxLength: ptr(uint64(5))})
	assert.Len(t, v, 6)
	assert.Equal(t, "maxLength 5", rule)

	v, _ = BoundaryValue(&domain.Schema{Type: "string", MinLength: ptr(uint64(3))})
	assert.Equal(t, "aa", v)

	v, _ = BoundaryValue(&domain.Schema{Type: "string", MinLength: ptr(uint64(1))})
	assert.Equal(t, "", v)

	v, _ = BoundaryValue(&domain.Schema{Type: "integer", Maximum: ptr(10.0), Minimum: ptr(1.0)})
	assert.Equal(t, int64(11), v)

	v, _ = BoundaryValue(&domain.Schema{Type: "number", Minimum: ptr(0.5)})
	assert.Equal(t, -0.5, v)

	_, rule = BoundaryValue(&domain.Schema{Type: "string"})
	assert.Empty(t, rule)
}

func TestRecordMatchesHeader(t *testing.T) {
	r := Row{SerialNo: 7, Method: "GET", RequiresAuth: true, ExpectedStatus: 200}
	rec := r.Record()
	require.Len(t, rec, len(Header))
	assert.Equal(t, "7", rec[0])
	assert.Equal(t, "Yes", rec[7])
	assert.Equal(t, "200", rec[9])
	assert.True(t, strings.HasPrefix(Header[2], "Test Case"))
}

func TestSynthesizeSingleBoundaryRowCoversEveryBoundedField(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{{
		Path:   "/orders",
		Method: "POST",
		RequestBody: &domain.RequestBody{Content: map[string]domain.MediaType{
			"application/json": {Schema: &domain.Schema{
				Type: "object",
				Properties: map[string]*domain.Schema{
					"a": {Type: "string", MaxLength: ptr(uint64(5))},
					"b": {Type: "string", MinLength: ptr(uint64(3))},
					"c": {Type: "integer", Maximum: ptr(10.0)},
					"d": {Type: "string"},
				},
			}},
		}},
	}}}

	rows := Synthesize(spec, opts)

	var boundaries []Row
	for _, r := range rows {
		if r.TestType == TypeBoundary {
			boundaries = append(boundaries, r)
		}
	}
	require.Len(t, boundaries, 1)
	assert.Equal(t, 3, boundaries[0].SerialNo)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(boundaries[0].RequestBody), &body))
	assert.Len(t, body["a"], 6)
	assert.Len(t, body["b"], 2)
	assert.Equal(t, float64(11), body["c"])
	assert.Equal(t, "sample_string", body["d"])
}

func TestSynthesizeStringBodyIsJSONEncoded(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{{
		Path:   "/notes",
		Method: "POST",
		RequestBody: &domain.RequestBody{Content: map[string]domain.MediaType{
			"application/json": {Schema: &domain.Schema{Type: "string"}},
		}},
	}}}

	rows := Synthesize(spec, opts)
	require.NotEmpty(t, rows)
	assert.Equal(t, `"sample_string"`, rows[0].RequestBody)
	assert.True(t, json.Valid([]byte(rows[0].RequestBody)))
}

func TestSynthesizeRecordedBodyIsVerbatim(t *testing.T) {
	spec := &domain.APISpec{Operations: []domain.Operation{{
		Path:         "/login",
		Method:       "POST",
		RecordedBody: "user=a&pass=b",
		RecordedMime: "application/x-www-form-urlencoded",
	}}}

	rows := Synthesize(spec, opts)
	require.NotEmpty(t, rows)
	assert.Equal(t, "user=a&pass=b", rows[0].RequestBody)
}
