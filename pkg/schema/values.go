package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Values maps field keys to their raw string input. Missing keys read as
// empty strings.
type Values map[string]string

// Get returns the raw value for key, or "" when absent.
func (v Values) Get(key string) string {
	if v == nil {
		return ""
	}
	return v[key]
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// Filter drops every key that the schema does not declare.
func (v Values) Filter(s *Schema) Values {
	out := make(Values, len(v))
	for key, value := range v {
		if s.Has(key) {
			out[key] = value
		}
	}
	return out
}

// ParseValues decodes a flat JSON or YAML mapping of field values. Scalars
// are kept as written, so unquoted YAML dates and times survive unchanged.
func ParseValues(raw []byte) (Values, error) {
	out := Values{}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return out, nil
	}
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("schema: parse values: %w", err)
	}
	return out, nil
}

// ReadValuesFile reads a JSON or YAML values file from disk.
func ReadValuesFile(path string) (Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read values %s: %w", path, err)
	}
	return ParseValues(data)
}
