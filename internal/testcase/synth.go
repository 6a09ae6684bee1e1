package testcase

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/sample"
)

// Sizes of the oversized payload fields.
const (
	LargeFieldLength = 10240
	LargeArrayLength = 1000
)

// NotFoundID replaces every path parameter in resource-not-found cases.
const NotFoundID = "nonexistent_id"

var wrongMethodOrder = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// Synthesize derives the test cases for every operation of spec, in operation order.
// Serial numbers run across the whole result starting at 1.
func Synthesize(spec *domain.APISpec, opts domain.GenerateOptions) []Row {
	s := synthesizer{
		spec:  spec,
		gen:   sample.New(spec.Components, opts.Clock()),
		roles: ExtractRoles(opts.CustomPrompt),
	}

	l := newLedger()
	for i := range spec.Operations {
		l = s.operation(l, &spec.Operations[i])
	}
	return l.rows
}

type synthesizer struct {
	spec  *domain.APISpec
	gen   *sample.Generator
	roles []string
}

// caseContext is what every rule needs to know about one operation.
type caseContext struct {
	op          *domain.Operation
	module      string
	contentType string
	secured     bool
	success     int
	body        any
	hasBody     bool
}

// bodyText is the request body as sent. Recorded bodies go out verbatim;
// generated values are always JSON.
func (c caseContext) bodyText() string {
	if c.op.RecordedBody != "" {
		return c.op.RecordedBody
	}
	return encode(c.body)
}

func (s synthesizer) operation(l ledger, op *domain.Operation) ledger {
	c := caseContext{
		op:          op,
		module:      op.PrimaryTag(),
		contentType: "application/json",
		secured:     s.spec.HasSecurity() && op.Secured,
		success:     successStatus(op),
	}
	if name, _, ok := op.RequestBody.JSONMedia(); ok {
		c.contentType = name
	}
	c.body, c.hasBody = s.gen.Body(op)

	l = l.add(s.positive(c))
	l = l.add(s.roleRows(c)...)
	if c.secured && len(s.roles) == 0 {
		l = l.add(s.missingAuth(c))
	}
	if op.HasRequiredParams() {
		l = l.add(s.missingParams(c))
	}
	if c.hasBody {
		l = l.add(s.invalidTypes(c))
	}
	if r, ok := s.boundary(c); ok {
		l = l.add(r)
	}
	if len(op.PathParams()) > 0 {
		l = l.add(s.notFound(c))
	}
	l = l.add(s.methodNotAllowed(c))
	if isBodyMethod(op.Method) {
		l = l.add(s.invalidContentType(c))
		if c.hasBody {
			l = l.add(s.largePayload(c))
		}
	}
	return l
}

func (s synthesizer) base(c caseContext) Row {
	r := Row{
		Module:       c.module,
		Method:       c.op.Method,
		Endpoint:     c.op.Path,
		ContentType:  c.contentType,
		RequiresAuth: c.secured,
		Headers:      headers(c.contentType, c.secured, "{{auth_token}}"),
	}
	if c.hasBody {
		r.RequestBody = c.bodyText()
	}
	return r
}

func (s synthesizer) positive(c caseContext) Row {
	r := s.base(c)
	r.Description = fmt.Sprintf("Verify %s %s succeeds with valid input", c.op.Method, c.op.Path)
	if c.op.Summary != "" {
		r.Description += " (" + c.op.Summary + ")"
	}
	r.ExpectedStatus = c.success
	r.ExpectedResult = "Request succeeds and the response matches the documented schema"
	r.TestType = TypePositive
	r.Priority = PriorityHigh
	r.Preconditions = preconditions(c)
	return r
}

func (s synthesizer) roleRows(c caseContext) []Row {
	rows := make([]Row, 0, len(s.roles))
	for _, role := range s.roles {
		r := s.base(c)
		r.RequiresAuth = true
		r.Headers = headers(c.contentType, true, "{{"+strings.ToLower(role)+"_token}}")
		r.Role = role
		r.ExpectedStatus = roleStatus(role, c.op.Method, c.success)
		r.Description = fmt.Sprintf("Verify %s access to %s %s", role, c.op.Method, c.op.Path)
		if r.ExpectedStatus == 403 {
			r.ExpectedResult = fmt.Sprintf("Request is rejected because %s lacks permission", role)
		} else {
			r.ExpectedResult = fmt.Sprintf("Request succeeds for %s", role)
		}
		r.TestType = TypeRole
		r.Priority = PriorityHigh
		r.Preconditions = "Authenticated as " + role
		rows = append(rows, r)
	}
	return rows
}

func (s synthesizer) missingAuth(c caseContext) Row {
	r := s.base(c)
	r.Headers = headers(c.contentType, false, "")
	r.Description = fmt.Sprintf("Verify %s %s rejects requests without authentication", c.op.Method, c.op.Path)
	r.ExpectedStatus = 401
	r.ExpectedResult = "Request is rejected as unauthorized"
	r.TestType = TypeSecurity
	r.Priority = PriorityHigh
	r.Preconditions = "No authentication token"
	return r
}

func (s synthesizer) missingParams(c caseContext) Row {
	var names []string
	for _, p := range c.op.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}

	r := s.base(c)
	r.Description = fmt.Sprintf("Verify %s %s rejects requests missing required parameters: %s",
		c.op.Method, c.op.Path, strings.Join(names, ", "))
	r.ExpectedStatus = 400
	r.ExpectedResult = "Request is rejected with a validation error"
	r.TestType = TypeValidation
	r.Priority = PriorityMedium
	r.Preconditions = preconditions(c)
	return r
}

func (s synthesizer) invalidTypes(c caseContext) Row {
	r := s.base(c)
	r.RequestBody = encode(wrongTypes(c.body))
	r.Description = fmt.Sprintf("Verify %s %s rejects a body with invalid data types", c.op.Method, c.op.Path)
	r.ExpectedStatus = 400
	r.ExpectedResult = "Request is rejected with a validation error"
	r.TestType = TypeValidation
	r.Priority = PriorityMedium
	r.Preconditions = preconditions(c)
	return r
}

// boundary builds one row whose body pushes every bounded property just past
// its limit. ok is false when no property declares bounds.
func (s synthesizer) boundary(c caseContext) (Row, bool) {
	if !c.hasBody {
		return Row{}, false
	}
	props := s.gen.Properties(s.gen.BodySchema(c.op))

	names := make([]string, 0, len(props))
	for name, p := range props {
		if p.HasBounds() {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var (
		body  any = c.body
		rules []string
	)
	for _, name := range names {
		value, rule := BoundaryValue(props[name])
		if rule == "" {
			continue
		}
		body = withField(body, name, value)
		rules = append(rules, name+" "+rule)
	}
	if len(rules) == 0 {
		return Row{}, false
	}

	r := s.base(c)
	r.RequestBody = encode(body)
	r.Description = fmt.Sprintf("Verify %s %s rejects values outside their bounds (%s)", c.op.Method, c.op.Path, strings.Join(rules, ", "))
	r.ExpectedStatus = 400
	r.ExpectedResult = "Request is rejected because fields violate their declared bounds"
	r.TestType = TypeBoundary
	r.Priority = PriorityMedium
	r.Preconditions = preconditions(c)
	return r, true
}

func (s synthesizer) notFound(c caseContext) Row {
	endpoint := c.op.Path
	for _, name := range c.op.PathParams() {
		endpoint = strings.ReplaceAll(endpoint, "{"+name+"}", NotFoundID)
	}

	r := s.base(c)
	r.Endpoint = endpoint
	r.Description = fmt.Sprintf("Verify %s %s returns not found for a nonexistent resource", c.op.Method, c.op.Path)
	r.ExpectedStatus = 404
	r.ExpectedResult = "Request fails because the resource does not exist"
	r.TestType = TypeNegative
	r.Priority = PriorityMedium
	r.Preconditions = "Resource does not exist"
	return r
}

func (s synthesizer) methodNotAllowed(c caseContext) Row {
	method := ""
	for _, m := range wrongMethodOrder {
		if m != c.op.Method {
			method = m
			break
		}
	}

	r := s.base(c)
	r.Method = method
	r.RequestBody = ""
	r.Description = fmt.Sprintf("Verify %s %s is not allowed", method, c.op.Path)
	r.ExpectedStatus = 405
	r.ExpectedResult = "Request is rejected because the method is not supported"
	r.TestType = TypeNegative
	r.Priority = PriorityLow
	r.Preconditions = "None"
	return r
}

func (s synthesizer) invalidContentType(c caseContext) Row {
	r := s.base(c)
	r.ContentType = "text/plain"
	r.Headers = headers("text/plain", c.secured, "{{auth_token}}")
	r.Description = fmt.Sprintf("Verify %s %s rejects an unsupported content type", c.op.Method, c.op.Path)
	r.ExpectedStatus = 415
	r.ExpectedResult = "Request is rejected because the media type is not supported"
	r.TestType = TypeNegative
	r.Priority = PriorityLow
	r.Preconditions = preconditions(c)
	return r
}

func (s synthesizer) largePayload(c caseContext) Row {
	items := make([]any, LargeArrayLength)
	for i := range items {
		items[i] = i
	}
	body := withField(c.body, "large_field", strings.Repeat("A", LargeFieldLength))
	body["large_array"] = items

	r := s.base(c)
	r.RequestBody = encode(body)
	r.Description = fmt.Sprintf("Verify %s %s rejects an oversized payload", c.op.Method, c.op.Path)
	r.ExpectedStatus = 413
	r.ExpectedResult = "Request is rejected because the payload is too large"
	r.TestType = TypePerformance
	r.Priority = PriorityLow
	r.Preconditions = preconditions(c)
	return r
}

// successStatus is the lowest declared 2xx code, else 201 for POST and 200 otherwise.
func successStatus(op *domain.Operation) int {
	best := 0
	for code := range op.Responses {
		n, err := strconv.Atoi(code)
		if err != nil || n < 200 || n > 299 {
			continue
		}
		if best == 0 || n < best {
			best = n
		}
	}
	switch {
	case best != 0:
		return best
	case op.Method == "POST":
		return 201
	}
	return 200
}

func isBodyMethod(method string) bool {
	return method == "POST" || method == "PUT" || method == "PATCH"
}

func headers(contentType string, auth bool, token string) string {
	h := "Content-Type: " + contentType
	if auth {
		h += "; Authorization: Bearer " + token
	}
	return h
}

func preconditions(c caseContext) string {
	var p []string
	if c.secured {
		p = append(p, "Valid authentication token")
	}
	if len(c.op.PathParams()) > 0 {
		p = append(p, "Resource exists")
	}
	if len(p) == 0 {
		return "None"
	}
	return strings.Join(p, "; ")
}

// withField copies body (wrapping non-objects under "data") and sets name to value.
func withField(body any, name string, value any) map[string]any {
	out := map[string]any{}
	if m, ok := body.(map[string]any); ok {
		for k, v := range m {
			out[k] = v
		}
	} else if body != nil {
		out["data"] = body
	}
	out[name] = value
	return out
}

// wrongTypes swaps every top-level value for one of a different JSON type.
func wrongTypes(body any) any {
	m, ok := body.(map[string]any)
	if !ok {
		return wrongType(body)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = wrongType(v)
	}
	return out
}

func wrongType(v any) any {
	switch v.(type) {
	case string:
		return 12345
	case bool:
		return "not_a_boolean"
	case []any:
		return "not_an_array"
	case map[string]any:
		return "not_an_object"
	case nil:
		return 12345
	}
	return "not_a_number"
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
