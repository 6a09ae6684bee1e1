package generate

import (
	"sort"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// OperationSummary is the flat view of an operation printed by inspect and
// returned by the operations endpoint.
type OperationSummary struct {
	Method      string   `json:"method" yaml:"method"`
	Path        string   `json:"path" yaml:"path"`
	OperationID string   `json:"operation_id,omitempty" yaml:"operation_id,omitempty"`
	Summary     string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Group       string   `json:"group" yaml:"group"`
	Parameters  []string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	BodyType    string   `json:"body_type,omitempty" yaml:"body_type,omitempty"`
	Responses   []string `json:"responses,omitempty" yaml:"responses,omitempty"`
	Secured     bool     `json:"secured" yaml:"secured"`
	Recorded    bool     `json:"recorded,omitempty" yaml:"recorded,omitempty"`
}

// SpecSummary describes a parsed document.
type SpecSummary struct {
	Source     string             `json:"source" yaml:"source"`
	Title      string             `json:"title" yaml:"title"`
	Version    string             `json:"version,omitempty" yaml:"version,omitempty"`
	Operations []OperationSummary `json:"operations" yaml:"operations"`
}

// Summarize flattens spec for display.
func Summarize(spec *domain.APISpec) SpecSummary {
	out := SpecSummary{
		Source:     spec.Source,
		Title:      spec.Title,
		Version:    spec.Version,
		Operations: make([]OperationSummary, 0, len(spec.Operations)),
	}

	for i := range spec.Operations {
		op := &spec.Operations[i]
		sum := OperationSummary{
			Method:      op.Method,
			Path:        op.Path,
			OperationID: op.OperationID,
			Summary:     op.Summary,
			Group:       op.PrimaryTag(),
			Secured:     op.Secured,
			Recorded:    op.IsRecorded(),
		}
		for _, p := range op.Parameters {
			flag := ""
			if p.Required {
				flag = "*"
			}
			sum.Parameters = append(sum.Parameters, p.In+":"+p.Name+flag)
		}
		if mime, _, ok := op.RequestBody.JSONMedia(); ok {
			sum.BodyType = mime
		} else if op.RecordedMime != "" {
			sum.BodyType = op.RecordedMime
		}
		for code := range op.Responses {
			sum.Responses = append(sum.Responses, code)
		}
		sort.Strings(sum.Responses)
		out.Operations = append(out.Operations, sum)
	}
	return out
}
