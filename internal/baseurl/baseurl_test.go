package baseurl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		spec   *domain.APISpec
		want   string
		wantOK bool
	}{
		{
			name:   "relative server url",
			spec:   &domain.APISpec{Servers: []domain.Server{{URL: "/v2"}}},
			want:   "https://localhost/v2",
			wantOK: true,
		},
		{
			name:   "absolute server url",
			spec:   &domain.APISpec{Servers: []domain.Server{{URL: "https://api.example.com/v1/"}}},
			want:   "https://api.example.com/v1",
			wantOK: true,
		},
		{
			name:   "swagger host with scheme",
			spec:   &domain.APISpec{Host: "api.x.com", BasePath: "/v1", Schemes: []string{"http"}},
			want:   "http://api.x.com/v1",
			wantOK: true,
		},
		{
			name:   "swagger host without scheme",
			spec:   &domain.APISpec{Host: "api.x.com"},
			want:   "https://api.x.com",
			wantOK: true,
		},
		{
			name: "servers win over host",
			spec: &domain.APISpec{
				Servers: []domain.Server{{URL: "https://a.example.com"}},
				Host:    "b.example.com",
			},
			want:   "https://a.example.com",
			wantOK: true,
		},
		{
			name: "nothing declared",
			spec: &domain.APISpec{},
		},
		{
			name: "nil spec",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.spec)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandVariables(t *testing.T) {
	got := ExpandVariables("https://{env}.example.com:{port}/{missing}", map[string]string{
		"env":  "staging",
		"port": "8443",
	})
	assert.Equal(t, "https://staging.example.com:8443/{missing}", got)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want Target
	}{
		{"https://api.example.com/v1", Target{"https", "api.example.com", "443", "/v1"}},
		{"http://api.example.com:8080/", Target{"http", "api.example.com", "8080", ""}},
		{"http://api.x.com/v1", Target{"http", "api.x.com", "80", "/v1"}},
		{"api.example.com:9000/base", Target{"https", "api.example.com", "9000", "/base"}},
		{"api.example.com", Target{"https", "api.example.com", "443", ""}},
		{"", Target{"https", "localhost", "443", ""}},
		{"http:///only/path", Target{"http", "localhost", "80", "/only/path"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTarget(tt.raw))
		})
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "https://localhost/v2", ParseTarget("https://localhost/v2").String())
	assert.Equal(t, "http://h:8080", Target{"http", "h", "8080", ""}.String())
}

func TestSameOrigin(t *testing.T) {
	a := ParseTarget("https://api.example.com/v1")
	assert.True(t, a.SameOrigin(ParseTarget("https://API.example.com:443/other")))
	assert.False(t, a.SameOrigin(ParseTarget("http://api.example.com")))
}
