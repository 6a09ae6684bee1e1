package converters

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/loadplan/internal/baseurl"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/jmx"
	"github.com/GabrielNunesIT/loadplan/internal/sample"
)

const (
	jmeterFormat       = "jmeter"
	csvDataFile        = "test_data.csv"
	successCodePattern = `2\d\d`
)

// Response fields worth carrying from a create call into later requests.
var correlatedFields = []string{"id", "token", "access_token"}

// JMeterConverter assembles a JMeter test plan with one thread group per tag or path root.
type JMeterConverter struct {
	log logger.ILogger
}

// NewJMeterConverter creates a new JMeter converter.
func NewJMeterConverter(log logger.ILogger) *JMeterConverter {
	return &JMeterConverter{log: log}
}

// Format returns the output format name.
func (c *JMeterConverter) Format() string {
	return jmeterFormat
}

// Convert writes the test plan XML.
func (c *JMeterConverter) Convert(spec *domain.APISpec, opts domain.GenerateOptions, output io.Writer) error {
	plan := c.Build(spec, opts)
	if err := jmx.Encode(output, plan); err != nil {
		return fmt.Errorf("failed to write test plan: %w", err)
	}
	return nil
}

// Build returns the test plan tree without serializing it.
func (c *JMeterConverter) Build(spec *domain.APISpec, opts domain.GenerateOptions) *jmx.Node {
	load := withLoadDefaults(opts.Load)
	target := c.target(spec, opts)

	b := planBuilder{
		spec:   spec,
		load:   load,
		target: target,
		prefix: pathPrefix(target.Path, spec.BasePath),
		gen:    sample.New(spec.Components, opts.Clock()),
		now:    opts.Clock(),
	}

	plan := jmx.TestPlan(load.TestPlanName, b.comments(), []jmx.Variable{
		{Name: "domain", Value: target.Domain},
		{Name: "port", Value: target.Port},
		{Name: "protocol", Value: target.Protocol},
	})

	tree := jmx.HashTree()
	if load.GenerateCSVConfig {
		tree.Append(jmx.CSVDataSet("Test Data", csvDataFile, b.csvVariables()), jmx.HashTree())
	}
	for _, bucket := range b.buckets() {
		tree.Append(b.threadGroup(bucket)...)
	}
	tree.Append(jmx.SummaryReport("Summary Report"), jmx.HashTree())

	return jmx.Document(plan, tree)
}

// target resolves the base URL: explicit option, then the document, then localhost.
func (c *JMeterConverter) target(spec *domain.APISpec, opts domain.GenerateOptions) baseurl.Target {
	if strings.TrimSpace(opts.BaseURL) != "" {
		return baseurl.ParseTarget(opts.BaseURL)
	}
	if u, ok := baseurl.Resolve(spec); ok {
		return baseurl.ParseTarget(u)
	}
	c.log.Warningf("No base URL in %q and none given, using %s", spec.Title, baseurl.Fallback)
	return baseurl.ParseTarget(baseurl.Fallback)
}

type bucket struct {
	name string
	ops  []*domain.Operation
}

type planBuilder struct {
	spec   *domain.APISpec
	load   domain.LoadConfig
	target baseurl.Target
	prefix string
	gen    *sample.Generator
	now    func() time.Time
}

func (b planBuilder) comments() string {
	t := b.load.Thresholds
	return fmt.Sprintf("Generated from %s. Thresholds: max response time %d ms, max error rate %g%%.",
		nonEmpty(b.spec.Title, "API specification"), t.MaxResponseTimeMs, t.MaxErrorRatePercent)
}

// buckets groups operations in first-appearance order.
func (b planBuilder) buckets() []bucket {
	var out []bucket
	index := map[string]int{}

	for i := range b.spec.Operations {
		op := &b.spec.Operations[i]
		name := op.PrimaryTag()
		if b.load.GroupBy == domain.GroupByPath {
			name = pathRoot(op.Path)
		}

		if j, ok := index[name]; ok {
			out[j].ops = append(out[j].ops, op)
			continue
		}
		index[name] = len(out)
		out = append(out, bucket{name: name, ops: []*domain.Operation{op}})
	}

	return out
}

func (b planBuilder) threadGroup(bk bucket) []*jmx.Node {
	group := jmx.ThreadGroup(jmx.ThreadGroupSettings{
		Name:          bk.name,
		Threads:       b.load.Threads,
		RampUpSeconds: b.load.RampUpSeconds,
		Loops:         b.load.Loops,
	})

	children := jmx.HashTree(
		jmx.HeaderManager("HTTP Header Manager", b.groupHeaders()),
		jmx.HashTree(),
	)
	for _, op := range bk.ops {
		children.Append(b.sampler(op), b.samplerChildren(op))
	}

	return []*jmx.Node{group, children}
}

func (b planBuilder) groupHeaders() []jmx.Variable {
	headers := []jmx.Variable{
		{Name: "Content-Type", Value: "application/json"},
		{Name: "Accept", Value: "application/json"},
	}
	if h, ok := authHeader(b.spec.SecuritySchemes); ok {
		headers = append(headers, h)
	}
	return headers
}

// authHeader templatizes the first header-carried security scheme by name.
func authHeader(schemes map[string]domain.SecurityScheme) (jmx.Variable, bool) {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := schemes[name]
		switch strings.ToLower(s.Type) {
		case "http":
			if strings.EqualFold(s.Scheme, "basic") {
				return jmx.Variable{Name: "Authorization", Value: "Basic ${basic_auth}"}, true
			}
			return jmx.Variable{Name: "Authorization", Value: "Bearer ${auth_token}"}, true
		case "basic":
			return jmx.Variable{Name: "Authorization", Value: "Basic ${basic_auth}"}, true
		case "oauth2", "openidconnect":
			return jmx.Variable{Name: "Authorization", Value: "Bearer ${auth_token}"}, true
		case "apikey":
			if strings.EqualFold(s.In, "header") && s.Name != "" {
				return jmx.Variable{Name: s.Name, Value: "${api_key}"}, true
			}
		}
	}
	return jmx.Variable{}, false
}

func (b planBuilder) sampler(op *domain.Operation) *jmx.Node {
	settings := jmx.SamplerSettings{
		Name:              op.Method + " " + op.Path,
		Method:            op.Method,
		Path:              b.samplerPath(op),
		Body:              b.body(op),
		ConnectTimeoutMs:  b.load.ConnectTimeoutMs,
		ResponseTimeoutMs: b.load.ResponseTimeoutMs,
	}

	if o := op.Origin; o != nil {
		origin := baseurl.Target{Protocol: o.Protocol, Domain: o.Domain, Port: o.Port}
		if !origin.SameOrigin(b.target) {
			settings.Domain = o.Domain
			settings.Port = o.Port
			settings.Protocol = o.Protocol
		}
	}

	return jmx.HTTPSampler(settings)
}

func (b planBuilder) samplerChildren(op *domain.Operation) *jmx.Node {
	tree := jmx.HashTree()

	if len(op.RecordedHeaders) > 0 {
		headers := make([]jmx.Variable, 0, len(op.RecordedHeaders))
		for _, h := range op.RecordedHeaders {
			headers = append(headers, jmx.Variable{Name: h.Name, Value: h.Value})
		}
		tree.Append(jmx.HeaderManager("Recorded Headers", headers), jmx.HashTree())
	}

	if b.load.AddAssertions {
		tree.Append(jmx.ResponseCodeAssertion("Response Code 2xx", successCodePattern), jmx.HashTree())
		if limit := b.load.Thresholds.MaxResponseTimeMs; limit > 0 {
			tree.Append(jmx.DurationAssertion(fmt.Sprintf("Response Time <= %d ms", limit), limit), jmx.HashTree())
		}
	}

	if b.load.AddCorrelation && op.Method == "POST" {
		for _, field := range b.correlatedFields(op) {
			tree.Append(jmx.JSONExtractor("Extract "+field, field, "$."+field), jmx.HashTree())
		}
	}

	return tree
}

// correlatedFields lists the correlatable properties of the lowest 2xx JSON response.
func (b planBuilder) correlatedFields(op *domain.Operation) []string {
	codes := make([]string, 0, len(op.Responses))
	for code := range op.Responses {
		if strings.HasPrefix(code, "2") {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	for _, code := range codes {
		rb := &domain.RequestBody{Content: op.Responses[code].Content}
		_, media, ok := rb.JSONMedia()
		if !ok || media.Schema == nil {
			continue
		}
		props := b.gen.Properties(media.Schema)
		var fields []string
		for _, f := range correlatedFields {
			if _, ok := props[f]; ok {
				fields = append(fields, f)
			}
		}
		return fields
	}
	return nil
}

// samplerPath joins the base path and the operation path with {param} turned into
// ${param}, then appends the query string.
func (b planBuilder) samplerPath(op *domain.Operation) string {
	p := op.Path
	for _, name := range op.PathParams() {
		p = strings.ReplaceAll(p, "{"+name+"}", "${"+name+"}")
	}
	full := normalizePath(b.prefix + "/" + p)

	if op.IsRecorded() {
		if op.RecordedQuery != "" {
			full += "?" + op.RecordedQuery
		}
		return full
	}

	query := url.Values{}
	for _, param := range op.Parameters {
		if param.In == "query" && param.Required {
			value := param.Example
			if value == nil {
				value = b.gen.Generate(param.Schema)
			}
			query.Set(param.Name, scalarString(value))
		}
	}
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}

// body returns the raw request body for methods that carry one.
func (b planBuilder) body(op *domain.Operation) string {
	if !carriesBody(op.Method) {
		return ""
	}
	if op.IsRecorded() {
		return op.RecordedBody
	}
	if v, ok := b.gen.Body(op); ok {
		return encodeJSON(v)
	}
	return encodeJSON(b.fallbackBody())
}

func (b planBuilder) fallbackBody() map[string]any {
	return map[string]any{
		"id":          1,
		"name":        "sample_name",
		"description": "sample_description",
		"status":      "active",
		"timestamp":   b.now().UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

func (b planBuilder) csvVariables() []string {
	seen := map[string]bool{}
	var vars []string
	for _, op := range b.spec.Operations {
		for _, name := range op.PathParams() {
			if !seen[name] {
				seen[name] = true
				vars = append(vars, name)
			}
		}
	}
	if len(vars) == 0 {
		return []string{"id"}
	}
	sort.Strings(vars)
	return vars
}

func carriesBody(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

// pathPrefix appends the Swagger basePath to the base URL path unless it is already there.
func pathPrefix(urlPath, swaggerBase string) string {
	prefix := normalizePath(urlPath)
	swaggerBase = normalizePath(swaggerBase)
	if swaggerBase != "/" && !strings.HasSuffix(prefix, swaggerBase) {
		prefix = normalizePath(prefix + swaggerBase)
	}
	if prefix == "/" {
		return ""
	}
	return prefix
}

// normalizePath collapses empty segments and forces a leading slash.
func normalizePath(p string) string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return "/" + strings.Join(segs, "/")
}

func pathRoot(p string) string {
	for _, s := range strings.Split(p, "/") {
		if s != "" && !strings.HasPrefix(s, "{") {
			return s
		}
	}
	return domain.DefaultBucket
}

func withLoadDefaults(cfg domain.LoadConfig) domain.LoadConfig {
	def := domain.DefaultLoadConfig()
	if cfg.TestPlanName == "" {
		cfg.TestPlanName = def.TestPlanName
	}
	if cfg.Threads == 0 {
		cfg.Threads = def.Threads
	}
	if cfg.Loops == 0 {
		cfg.Loops = def.Loops
	}
	if cfg.GroupBy == "" {
		cfg.GroupBy = def.GroupBy
	}
	return cfg
}
