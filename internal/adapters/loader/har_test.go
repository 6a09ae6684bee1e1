package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

const sampleHAR = `{
  "log": {
    "version": "1.2",
    "entries": [
      {
        "startedDateTime": "2024-05-01T10:00:02.000Z",
        "request": {
          "method": "POST",
          "url": "https://api.shop.io/orders?dry_run=true",
          "headers": [
            {"name": "Host", "value": "api.shop.io"},
            {"name": ":authority", "value": "api.shop.io"},
            {"name": "Authorization", "value": "Bearer abc.def"},
            {"name": "X-API-Key", "value": "secret"},
            {"name": "Accept", "value": "application/json"}
          ],
          "postData": {"mimeType": "application/json", "text": "eyJxdHkiOjJ9", "encoding": "base64"}
        },
        "response": {"status": 201, "content": {"mimeType": "application/json"}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:00.000Z",
        "request": {"method": "GET", "url": "https://api.shop.io/users/42", "headers": []},
        "response": {"status": 200, "content": {"mimeType": "application/json; charset=utf-8"}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:01.000Z",
        "request": {"method": "OPTIONS", "url": "https://api.shop.io/orders", "headers": []},
        "response": {"status": 204, "content": {}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:03.000Z",
        "request": {"method": "GET", "url": "https://cdn.shop.io/app.js", "headers": []},
        "response": {"status": 200, "content": {"mimeType": "application/javascript"}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:04.000Z",
        "request": {"method": "GET", "url": "https://api.shop.io/", "headers": []},
        "response": {"status": 200, "content": {"mimeType": "text/html"}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:05.000Z",
        "request": {"method": "GET", "url": "https://api.shop.io/users/42", "headers": []},
        "response": {"status": 304, "content": {}}
      },
      {
        "startedDateTime": "2024-05-01T10:00:06.000Z",
        "request": {"method": "PUT", "url": "http://legacy.shop.io:8080/avatars", "headers": []},
        "response": {"status": 200, "content": {}},
        "postData": null
      }
    ]
  }
}`

func TestParseHAR(t *testing.T) {
	spec, err := ParseHAR([]byte(sampleHAR), DefaultHARFilter())
	require.NoError(t, err)

	assert.Equal(t, domain.SourceHAR, spec.Source)
	require.Len(t, spec.Servers, 1)
	assert.Equal(t, "https://api.shop.io", spec.Servers[0].URL)
	assert.True(t, spec.HasSecurity())

	require.Len(t, spec.Operations, 3)

	get := spec.Operations[0]
	assert.Equal(t, "GET", get.Method)
	assert.Equal(t, "/users/42", get.Path)
	assert.Equal(t, []string{"users"}, get.Tags)
	assert.Contains(t, get.Responses, "200")
	assert.Contains(t, get.Responses, "304")
	assert.False(t, get.Secured)

	post := spec.Operations[1]
	assert.Equal(t, "/orders", post.Path)
	assert.Equal(t, `{"qty":2}`, post.RecordedBody)
	assert.Equal(t, "dry_run=true", post.RecordedQuery)
	assert.True(t, post.Secured)
	assert.Equal(t, []domain.Header{
		{Name: "Authorization", Value: "Bearer ${auth_token}"},
		{Name: "X-API-Key", Value: "${x_api_key}"},
		{Name: "Accept", Value: "application/json"},
	}, post.RecordedHeaders)
	require.Len(t, post.Parameters, 1)
	assert.Equal(t, "dry_run", post.Parameters[0].Name)
	assert.Equal(t, &domain.Origin{Protocol: "https", Domain: "api.shop.io", Port: "443"}, post.Origin)

	put := spec.Operations[2]
	assert.Equal(t, &domain.Origin{Protocol: "http", Domain: "legacy.shop.io", Port: "8080"}, put.Origin)
	assert.Nil(t, put.RequestBody)
}

func TestParseHARIgnorePaths(t *testing.T) {
	filter := DefaultHARFilter()
	filter.IgnorePaths = []string{"/users"}

	spec, err := ParseHAR([]byte(sampleHAR), filter)
	require.NoError(t, err)
	require.Len(t, spec.Operations, 2)
	assert.Equal(t, "/orders", spec.Operations[0].Path)
	assert.Equal(t, "https://api.shop.io", spec.Servers[0].URL)
}

func TestParseHARInvalid(t *testing.T) {
	for name, input := range map[string]string{
		"not json":    "log:",
		"no log":      `{"entries": []}`,
		"no entries":  `{"log": {"version": "1.2"}}`,
		"log not obj": `{"log": 3}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseHAR([]byte(input), DefaultHARFilter())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidHAR))
			assert.Contains(t, err.Error(), "Invalid HAR file format")
		})
	}
}

func TestParseHAREmptyEntries(t *testing.T) {
	spec, err := ParseHAR([]byte(`{"log": {"entries": []}}`), DefaultHARFilter())
	require.NoError(t, err)
	assert.Empty(t, spec.Operations)
	assert.Empty(t, spec.Servers)
}

func TestMatchesContentType(t *testing.T) {
	ignores := []string{"image/*", "text/html"}
	assert.True(t, matchesContentType("image/png", ignores))
	assert.True(t, matchesContentType("text/html; charset=utf-8", ignores))
	assert.False(t, matchesContentType("application/json", ignores))
	assert.False(t, matchesContentType("", ignores))
}

func TestTemplatize(t *testing.T) {
	assert.Equal(t, "Bearer ${auth_token}", templatize("authorization", "Bearer x"))
	assert.Equal(t, "${auth_token}", templatize("authorization", "opaque"))
	assert.Equal(t, "${cookie}", templatize("cookie", "a=b"))
}
