package loader

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/GabrielNunesIT/loadplan/internal/baseurl"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// Methods in the order operations are emitted for each path.
var methodOrder = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// ParseSpec parses an OpenAPI 3.x or Swagger 2.x document in JSON or YAML.
// Every failure wraps ErrInvalidSpec.
func ParseSpec(data []byte) (*domain.APISpec, error) {
	raw, err := toJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	var version struct {
		OpenAPI string `json:"openapi"`
		Swagger string `json:"swagger"`
	}
	if err := json.Unmarshal(raw, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	switch {
	case version.OpenAPI != "":
		return parseOpenAPI3(raw)
	case version.Swagger != "":
		return parseSwagger2(raw)
	default:
		return nil, fmt.Errorf("%w: missing openapi or swagger version field", ErrInvalidSpec)
	}
}

func parseOpenAPI3(raw []byte) (*domain.APISpec, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	spec := convertSpec(doc)
	spec.Source = domain.SourceOpenAPI3
	return spec, nil
}

func parseSwagger2(raw []byte) (*domain.APISpec, error) {
	var doc2 openapi2.T
	if err := json.Unmarshal(raw, &doc2); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	spec := convertSpec(doc3)
	spec.Source = domain.SourceSwagger2
	spec.Servers = nil
	spec.Host = doc2.Host
	spec.BasePath = doc2.BasePath
	spec.Schemes = doc2.Schemes
	return spec, nil
}

func convertSpec(doc *openapi3.T) *domain.APISpec {
	spec := &domain.APISpec{
		Components:      make(map[string]*domain.Schema),
		SecuritySchemes: make(map[string]domain.SecurityScheme),
	}

	if doc.Info != nil {
		spec.Title = doc.Info.Title
		spec.Version = doc.Info.Version
		spec.Description = doc.Info.Description
	}

	for _, server := range doc.Servers {
		if server == nil {
			continue
		}
		defaults := make(map[string]string, len(server.Variables))
		for name, v := range server.Variables {
			if v != nil {
				defaults[name] = v.Default
			}
		}
		spec.Servers = append(spec.Servers, domain.Server{
			URL:         baseurl.ExpandVariables(server.URL, defaults),
			Description: server.Description,
		})
	}

	if doc.Components != nil {
		for name, ref := range doc.Components.Schemas {
			if ref != nil && ref.Value != nil {
				spec.Components[name] = convertSchemaValue(ref.Value)
			}
		}
		for name, ref := range doc.Components.SecuritySchemes {
			if ref == nil || ref.Value == nil {
				continue
			}
			spec.SecuritySchemes[name] = domain.SecurityScheme{
				Type:   ref.Value.Type,
				Scheme: ref.Value.Scheme,
				In:     ref.Value.In,
				Name:   ref.Value.Name,
			}
		}
	}

	if doc.Paths == nil {
		return spec
	}

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for _, method := range methodOrder {
			op := item.GetOperation(method)
			if op == nil {
				continue
			}
			spec.Operations = append(spec.Operations, convertOperation(doc, spec, path, method, item, op))
		}
	}

	return spec
}

func convertOperation(doc *openapi3.T, spec *domain.APISpec, path, method string, item *openapi3.PathItem, op *openapi3.Operation) domain.Operation {
	operation := domain.Operation{
		Path:        path,
		Method:      method,
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Parameters:  convertParameters(item.Parameters, op.Parameters),
		Responses:   make(map[string]domain.Response),
	}

	// An explicit empty requirement list on the operation opts out of document security.
	requirements := doc.Security
	if op.Security != nil {
		requirements = *op.Security
	}
	operation.Secured = spec.HasSecurity() && (op.Security == nil || len(requirements) > 0)

	if op.Responses != nil {
		for code, ref := range op.Responses.Map() {
			if ref == nil || ref.Value == nil {
				continue
			}
			resp := domain.Response{
				StatusCode: code,
				Content:    convertContent(ref.Value.Content),
			}
			if ref.Value.Description != nil {
				resp.Description = *ref.Value.Description
			}
			operation.Responses[code] = resp
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		operation.RequestBody = &domain.RequestBody{
			Description: op.RequestBody.Value.Description,
			Required:    op.RequestBody.Value.Required,
			Content:     convertContent(op.RequestBody.Value.Content),
		}
	}

	return operation
}

// convertParameters merges path-level and operation-level parameters; the operation
// wins when both declare the same name and location.
func convertParameters(shared, own openapi3.Parameters) []domain.Parameter {
	var params []domain.Parameter
	index := map[string]int{}

	for _, list := range []openapi3.Parameters{shared, own} {
		for _, ref := range list {
			if ref == nil || ref.Value == nil {
				continue
			}
			p := domain.Parameter{
				Name:        ref.Value.Name,
				In:          ref.Value.In,
				Description: ref.Value.Description,
				Required:    ref.Value.Required,
				Schema:      convertSchema(ref.Value.Schema),
				Example:     ref.Value.Example,
			}
			key := p.In + ":" + p.Name
			if i, ok := index[key]; ok {
				params[i] = p
				continue
			}
			index[key] = len(params)
			params = append(params, p)
		}
	}

	return params
}

func convertContent(content openapi3.Content) map[string]domain.MediaType {
	result := make(map[string]domain.MediaType, len(content))

	for name, item := range content {
		if item == nil {
			continue
		}
		mt := domain.MediaType{
			Schema:  convertSchema(item.Schema),
			Example: item.Example,
		}

		exampleNames := make([]string, 0, len(item.Examples))
		for k := range item.Examples {
			exampleNames = append(exampleNames, k)
		}
		sort.Strings(exampleNames)
		for _, k := range exampleNames {
			ex := domain.NamedExample{Name: k}
			if ref := item.Examples[k]; ref != nil && ref.Value != nil {
				ex.Value = exampleValue(ref.Value)
			}
			mt.Examples = append(mt.Examples, ex)
		}

		result[name] = mt
	}

	return result
}

// exampleValue is the example's value, or the entry itself when it has none
// (an externalValue-only example, say).
func exampleValue(e *openapi3.Example) any {
	if e.Value != nil {
		return e.Value
	}
	entry := map[string]any{}
	if e.Summary != "" {
		entry["summary"] = e.Summary
	}
	if e.Description != "" {
		entry["description"] = e.Description
	}
	if e.ExternalValue != "" {
		entry["externalValue"] = e.ExternalValue
	}
	return entry
}

// convertSchema stops at references so cyclic component graphs convert in finite time.
func convertSchema(ref *openapi3.SchemaRef) *domain.Schema {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return &domain.Schema{Ref: ref.Ref}
	}
	if ref.Value == nil {
		return nil
	}
	return convertSchemaValue(ref.Value)
}

func convertSchemaValue(v *openapi3.Schema) *domain.Schema {
	schema := &domain.Schema{
		Format:      v.Format,
		Description: v.Description,
		Example:     v.Example,
		Default:     v.Default,
		Enum:        v.Enum,
		Required:    v.Required,
		MaxLength:   v.MaxLength,
		Minimum:     v.Min,
		Maximum:     v.Max,
		Items:       convertSchema(v.Items),
	}

	if types := v.Type.Slice(); len(types) > 0 {
		schema.Type = types[0]
	}
	if v.MinLength > 0 {
		minLength := v.MinLength
		schema.MinLength = &minLength
	}

	if len(v.Properties) > 0 {
		schema.Properties = make(map[string]*domain.Schema, len(v.Properties))
		for name, prop := range v.Properties {
			if s := convertSchema(prop); s != nil {
				schema.Properties[name] = s
			}
		}
	}

	for _, member := range v.AllOf {
		if s := convertSchema(member); s != nil {
			schema.AllOf = append(schema.AllOf, s)
		}
	}

	return schema
}
