// Package baseurl resolves the target base URL of an API description and splits it
// into the protocol/domain/port/path parts a JMeter plan needs.
package baseurl

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// Fallback is used when neither the document nor the caller names a base URL.
const Fallback = "https://localhost"

// Resolve returns the base URL declared by the document.
// OpenAPI 3 servers win over Swagger 2 host/basePath; ok is false when neither is present.
func Resolve(spec *domain.APISpec) (string, bool) {
	if spec == nil {
		return "", false
	}

	if len(spec.Servers) > 0 && strings.TrimSpace(spec.Servers[0].URL) != "" {
		u := strings.TrimSpace(spec.Servers[0].URL)
		if strings.HasPrefix(u, "/") {
			return Fallback + strings.TrimRight(u, "/"), true
		}
		return strings.TrimRight(u, "/"), true
	}

	if spec.Host != "" {
		scheme := "https"
		if len(spec.Schemes) > 0 && spec.Schemes[0] != "" {
			scheme = spec.Schemes[0]
		}
		return scheme + "://" + spec.Host + strings.TrimRight(spec.BasePath, "/"), true
	}

	return "", false
}

// ExpandVariables replaces {name} placeholders in a server URL with their default values.
// Unknown placeholders are left as they are.
func ExpandVariables(raw string, defaults map[string]string) string {
	for name, value := range defaults {
		raw = strings.ReplaceAll(raw, "{"+name+"}", value)
	}
	return raw
}

// Target is a base URL split for JMeter's HTTP sampler fields.
type Target struct {
	Protocol string
	Domain   string
	Port     string
	Path     string // Without trailing slash; empty for the root
}

// String reassembles the target, omitting default ports.
func (t Target) String() string {
	host := t.Domain
	if t.Port != "" && t.Port != DefaultPort(t.Protocol) {
		host += ":" + t.Port
	}
	return t.Protocol + "://" + host + t.Path
}

// SameOrigin reports whether both targets address the same scheme, host and port.
func (t Target) SameOrigin(o Target) bool {
	return strings.EqualFold(t.Protocol, o.Protocol) &&
		strings.EqualFold(t.Domain, o.Domain) &&
		t.Port == o.Port
}

// DefaultPort returns 80 for http and 443 for anything else.
func DefaultPort(protocol string) string {
	if strings.EqualFold(protocol, "http") {
		return "80"
	}
	return "443"
}

// ParseTarget splits raw into a Target. It never fails: missing parts fall back
// to https, localhost and the protocol's default port.
func ParseTarget(raw string) Target {
	raw = strings.TrimSpace(raw)

	if t, ok := parseURL(raw); ok {
		return t
	}

	return parseManual(raw)
}

func parseURL(raw string) (Target, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Target{}, false
	}

	t := Target{
		Protocol: strings.ToLower(u.Scheme),
		Domain:   u.Hostname(),
		Port:     u.Port(),
		Path:     strings.TrimRight(u.Path, "/"),
	}
	return t.withDefaults(), true
}

func parseManual(raw string) Target {
	var t Target

	rest := raw
	if i := strings.Index(rest, "://"); i >= 0 {
		t.Protocol = strings.ToLower(rest[:i])
		rest = rest[i+3:]
	}

	hostport := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		hostport = rest[:i]
		t.Path = strings.TrimRight(rest[i:], "/")
	}

	t.Domain = hostport
	if i := strings.LastIndex(hostport, ":"); i >= 0 {
		if _, err := strconv.Atoi(hostport[i+1:]); err == nil {
			t.Domain = hostport[:i]
			t.Port = hostport[i+1:]
		}
	}

	return t.withDefaults()
}

func (t Target) withDefaults() Target {
	if t.Protocol == "" {
		t.Protocol = "https"
	}
	if t.Domain == "" {
		t.Domain = "localhost"
	}
	if t.Port == "" {
		t.Port = DefaultPort(t.Protocol)
	}
	return t
}
