// Package validity decides whether a form can be generated: every required
// field must hold a non-blank value. No other validation is applied.
package validity

import (
	"strings"

	"github.com/goliatone/go-certgen/pkg/schema"
)

// Gate checks required fields against a schema.
type Gate struct {
	required []string
}

// New captures the required keys of s.
func New(s *schema.Schema) *Gate {
	g := &Gate{}
	for _, field := range s.Required() {
		g.required = append(g.required, field.Key)
	}
	return g
}

// IsValid reports whether every required field is non-blank.
func (g *Gate) IsValid(values schema.Values) bool {
	for _, key := range g.required {
		if isBlank(values.Get(key)) {
			return false
		}
	}
	return true
}

// Missing lists the blank required keys in catalog order.
func (g *Gate) Missing(values schema.Values) []string {
	var out []string
	for _, key := range g.required {
		if isBlank(values.Get(key)) {
			out = append(out, key)
		}
	}
	return out
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
