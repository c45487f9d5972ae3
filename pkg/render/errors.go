package render

import (
	"strings"

	"github.com/goliatone/go-certgen/pkg/schema"
)

// ErrorMapping splits messages into field-level entries keyed by schema key
// and form-level messages that match no field.
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// MergeFormErrors concatenates and normalises form-level messages, trimming
// whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MissingFieldErrors reports each missing required key as "<Label> is
// required." in catalog order.
func MissingFieldErrors(s *schema.Schema, missing []string) map[string][]string {
	if len(missing) == 0 {
		return nil
	}
	out := make(map[string][]string, len(missing))
	for _, key := range missing {
		label := key
		if field, ok := s.Lookup(key); ok {
			label = field.Label
		}
		out[key] = []string{label + " is required."}
	}
	return out
}

// MapErrorPayload normalises a keyed error payload onto schema keys. Keys may
// carry JSON pointer or dotted prefixes ("/values/fullName",
// "$.body.fullName"); the last segment naming a schema field wins. Anything
// else becomes a form-level message so nothing is lost.
func MapErrorPayload(s *schema.Schema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}
		key, ok := mapErrorPath(s, rawPath)
		if !ok {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[key] = append(mapping.Fields[key], normalized...)
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func mapErrorPath(s *schema.Schema, raw string) (string, bool) {
	segments := parsePathSegments(raw)
	for i := len(segments) - 1; i >= 0; i-- {
		if s.Has(segments[i]) {
			return segments[i], true
		}
	}
	return "", false
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimLeft(clean, "#/.$")
	}
	if clean == "" {
		return nil
	}
	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
