package loader

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/GabrielNunesIT/loadplan/internal/baseurl"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// HARFilter decides which recorded requests become operations.
type HARFilter struct {
	IgnoreExtensions   []string `koanf:"ignore_extensions"`
	IgnoreContentTypes []string `koanf:"ignore_content_types"`
	IgnorePaths        []string `koanf:"ignore_paths"`
	SensitiveHeaders   []string `koanf:"sensitive_headers"`
}

// DefaultHARFilter drops static assets and templatizes credentials.
func DefaultHARFilter() HARFilter {
	return HARFilter{
		IgnoreExtensions: []string{
			".js", ".css", ".map", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
			".woff", ".woff2", ".ttf", ".eot", ".otf", ".mp4", ".webm", ".mp3", ".html", ".htm",
		},
		IgnoreContentTypes: []string{
			"text/html", "text/css", "text/javascript", "application/javascript",
			"image/*", "font/*", "audio/*", "video/*",
		},
		SensitiveHeaders: []string{"Authorization", "Cookie", "X-API-Key", "X-Auth-Token", "X-CSRF-Token"},
	}
}

// Headers that JMeter computes itself or that only make sense on the recorded connection.
var droppedHeaders = map[string]bool{
	"host":              true,
	"content-length":    true,
	"connection":        true,
	"accept-encoding":   true,
	"transfer-encoding": true,
	"keep-alive":        true,
}

type harFile struct {
	Log *struct {
		Entries *[]harEntry `json:"entries"`
	} `json:"log"`
}

type harEntry struct {
	StartedDateTime string `json:"startedDateTime"`
	Request         struct {
		Method   string      `json:"method"`
		URL      string      `json:"url"`
		Headers  []harHeader `json:"headers"`
		PostData *struct {
			MimeType string `json:"mimeType"`
			Text     string `json:"text"`
			Encoding string `json:"encoding"`
		} `json:"postData"`
	} `json:"request"`
	Response struct {
		Status  int `json:"status"`
		Content struct {
			MimeType string `json:"mimeType"`
		} `json:"content"`
	} `json:"response"`
}

type harHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type recorded struct {
	at    time.Time
	entry harEntry
	url   *url.URL
}

// ParseHAR turns a HAR capture into an APISpec with one operation per distinct
// method and path. Every failure wraps ErrInvalidHAR.
func ParseHAR(data []byte, filter HARFilter) (*domain.APISpec, error) {
	var hf harFile
	if err := json.Unmarshal(data, &hf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHAR, err)
	}
	if hf.Log == nil || hf.Log.Entries == nil {
		return nil, fmt.Errorf("%w: missing log.entries", ErrInvalidHAR)
	}

	var entries []recorded
	for _, e := range *hf.Log.Entries {
		u, err := url.Parse(e.Request.URL)
		if err != nil || u.Host == "" {
			continue
		}
		at, _ := time.Parse(time.RFC3339Nano, e.StartedDateTime)
		entries = append(entries, recorded{at: at, entry: e, url: u})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].at.Before(entries[j].at)
	})

	spec := &domain.APISpec{
		Source:          domain.SourceHAR,
		Title:           "Recorded traffic",
		Components:      map[string]*domain.Schema{},
		SecuritySchemes: map[string]domain.SecurityScheme{},
	}

	sensitive := toLowerSet(filter.SensitiveHeaders)
	seen := map[string]int{}

	for _, r := range entries {
		e := r.entry
		method := strings.ToUpper(e.Request.Method)
		if method == "OPTIONS" ||
			hasIgnoredExtension(r.url.Path, filter.IgnoreExtensions) ||
			matchesContentType(e.Response.Content.MimeType, filter.IgnoreContentTypes) ||
			hasIgnoredPath(r.url.Path, filter.IgnorePaths) {
			continue
		}

		p := r.url.EscapedPath()
		if p == "" {
			p = "/"
		}

		key := method + " " + p
		if i, ok := seen[key]; ok {
			code := fmt.Sprint(e.Response.Status)
			if _, exists := spec.Operations[i].Responses[code]; !exists && e.Response.Status > 0 {
				spec.Operations[i].Responses[code] = domain.Response{StatusCode: code}
			}
			continue
		}

		if len(spec.Operations) == 0 {
			spec.Servers = []domain.Server{{URL: r.url.Scheme + "://" + r.url.Host, Description: "recorded origin"}}
			spec.Title = "Recorded traffic for " + r.url.Host
		}

		op := recordedOperation(method, p, r, sensitive)
		if op.Secured {
			spec.SecuritySchemes["recorded"] = domain.SecurityScheme{Type: "http", Scheme: "bearer"}
		}

		seen[key] = len(spec.Operations)
		spec.Operations = append(spec.Operations, op)
	}

	return spec, nil
}

func recordedOperation(method, p string, r recorded, sensitive map[string]struct{}) domain.Operation {
	e := r.entry
	target := baseurl.ParseTarget(r.url.Scheme + "://" + r.url.Host)

	op := domain.Operation{
		Path:          p,
		Method:        method,
		Summary:       method + " " + p,
		Tags:          []string{firstSegment(p)},
		Responses:     map[string]domain.Response{},
		RecordedQuery: r.url.RawQuery,
		Origin: &domain.Origin{
			Protocol: target.Protocol,
			Domain:   target.Domain,
			Port:     target.Port,
		},
	}

	if e.Response.Status > 0 {
		code := fmt.Sprint(e.Response.Status)
		op.Responses[code] = domain.Response{StatusCode: code}
	}

	query := r.url.Query()
	names := make([]string, 0, len(query))
	for name := range query {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		op.Parameters = append(op.Parameters, domain.Parameter{
			Name:    name,
			In:      "query",
			Schema:  &domain.Schema{Type: "string"},
			Example: query.Get(name),
		})
	}

	for _, h := range e.Request.Headers {
		lower := strings.ToLower(h.Name)
		if strings.HasPrefix(h.Name, ":") || droppedHeaders[lower] {
			continue
		}
		value := h.Value
		if _, ok := sensitive[lower]; ok {
			value = templatize(lower, h.Value)
			op.Secured = true
		}
		op.RecordedHeaders = append(op.RecordedHeaders, domain.Header{Name: h.Name, Value: value})
	}

	if pd := e.Request.PostData; pd != nil {
		op.RecordedBody = decodeBody(pd.Text, pd.Encoding, pd.MimeType)
		op.RecordedMime = pd.MimeType
		if op.RecordedBody != "" {
			op.RequestBody = &domain.RequestBody{
				Content: map[string]domain.MediaType{
					mimeOrDefault(pd.MimeType): {Example: exampleOf(op.RecordedBody)},
				},
			}
		}
	}

	return op
}

// templatize replaces a credential with a JMeter variable, keeping the auth scheme.
func templatize(lowerName, value string) string {
	if lowerName == "authorization" {
		if scheme, _, ok := strings.Cut(value, " "); ok {
			return scheme + " ${auth_token}"
		}
		return "${auth_token}"
	}
	return "${" + strings.NewReplacer("-", "_", " ", "_").Replace(lowerName) + "}"
}

func firstSegment(p string) string {
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			return seg
		}
	}
	return domain.DefaultBucket
}

func mimeOrDefault(mime string) string {
	base := strings.TrimSpace(strings.Split(mime, ";")[0])
	if base == "" {
		return "application/json"
	}
	return base
}

func exampleOf(body string) any {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err == nil {
		return v
	}
	return body
}

func decodeBody(text, encoding, mimeType string) string {
	if text == "" || isBinaryContentType(mimeType) {
		return ""
	}
	if strings.EqualFold(encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	return text
}

func isBinaryContentType(mimeType string) bool {
	mt := strings.ToLower(mimeType)
	return strings.HasPrefix(mt, "image/") ||
		strings.HasPrefix(mt, "audio/") ||
		strings.HasPrefix(mt, "video/") ||
		strings.HasPrefix(mt, "font/") ||
		mt == "application/octet-stream" ||
		mt == "application/pdf" ||
		mt == "application/zip"
}

func hasIgnoredExtension(p string, exts []string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(strings.TrimSpace(e)) == ext {
			return true
		}
	}
	return false
}

func hasIgnoredPath(p string, prefixes []string) bool {
	for _, pref := range prefixes {
		pref = strings.TrimSpace(pref)
		if pref != "" && strings.HasPrefix(p, pref) {
			return true
		}
	}
	return false
}

func matchesContentType(ct string, ignores []string) bool {
	if strings.TrimSpace(ct) == "" {
		return false
	}
	base := strings.ToLower(strings.TrimSpace(strings.Split(ct, ";")[0]))
	for _, p := range ignores {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if prefix, ok := strings.CutSuffix(p, "*"); ok && strings.HasSuffix(prefix, "/") {
			if strings.HasPrefix(base, prefix) {
				return true
			}
			continue
		}
		if base == p {
			return true
		}
	}
	return false
}

func toLowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, v := range items {
		v = strings.TrimSpace(strings.ToLower(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
