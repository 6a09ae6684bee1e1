package testcase

import (
	"fmt"
	"strings"

	"github.com/GabrielNunesIT/loadplan/internal/domain"
)

// BoundaryValue returns a value just outside the declared bounds of p and the rule
// it breaks. maxLength wins over minLength and maximum over minimum.
func BoundaryValue(p *domain.Schema) (any, string) {
	switch {
	case p == nil:
		return nil, ""
	case p.MaxLength != nil:
		return strings.Repeat("a", int(*p.MaxLength)+1), fmt.Sprintf("maxLength %d", *p.MaxLength)
	case p.MinLength != nil:
		if *p.MinLength <= 1 {
			return "", fmt.Sprintf("minLength %d", *p.MinLength)
		}
		return strings.Repeat("a", int(*p.MinLength)-1), fmt.Sprintf("minLength %d", *p.MinLength)
	case p.Maximum != nil:
		return number(p, *p.Maximum+1), fmt.Sprintf("maximum %g", *p.Maximum)
	case p.Minimum != nil:
		return number(p, *p.Minimum-1), fmt.Sprintf("minimum %g", *p.Minimum)
	}
	return nil, ""
}

func number(p *domain.Schema, v float64) any {
	if p.Type == "integer" {
		return int64(v)
	}
	return v
}
