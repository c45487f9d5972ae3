package schema

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// OrderExtension positions a property within the catalog. Properties
// without it follow the ordered ones, sorted by key.
const OrderExtension = "x-certgen-order"

// FromOpenAPI builds a Schema from an object schema declared under
// components.schemas in an OpenAPI 3 document.
func FromOpenAPI(ctx context.Context, doc Document, component string) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	component = strings.TrimSpace(component)
	if component == "" {
		return nil, errors.New("schema: openapi component name is required")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi %s: %w", doc.Location(), err)
	}
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil, fmt.Errorf("schema: openapi %s declares no component schemas", doc.Location())
	}

	ref, ok := spec.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("schema: openapi component %q not found", component)
	}
	root := ref.Value
	if len(root.Properties) == 0 {
		return nil, fmt.Errorf("schema: openapi component %q has no properties", component)
	}

	required := make(map[string]struct{}, len(root.Required))
	for _, name := range root.Required {
		required[name] = struct{}{}
	}

	type entry struct {
		order int
		field FieldDescriptor
	}
	entries := make([]entry, 0, len(root.Properties))
	for name, prop := range root.Properties {
		field := FieldDescriptor{Key: name, Kind: KindText}
		order := -1
		if prop != nil && prop.Value != nil {
			field.Label = strings.TrimSpace(prop.Value.Title)
			field.Kind = kindFromFormat(prop.Value.Format)
			field.ReadOnly = prop.Value.ReadOnly
			order = extensionOrder(prop.Value.Extensions)
		}
		_, field.Required = required[name]
		entries = append(entries, entry{order: order, field: field})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.order >= 0 && b.order >= 0 && a.order != b.order:
			return a.order < b.order
		case a.order >= 0 && b.order < 0:
			return true
		case a.order < 0 && b.order >= 0:
			return false
		default:
			return a.field.Key < b.field.Key
		}
	})

	fields := make([]FieldDescriptor, len(entries))
	for i, e := range entries {
		fields[i] = e.field
	}
	return New(fields, WithTitle(root.Title))
}

func kindFromFormat(format string) FieldKind {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "date":
		return KindDate
	case "time", "partial-time":
		return KindTime
	default:
		return KindText
	}
}

func extensionOrder(ext map[string]any) int {
	raw, ok := ext[OrderExtension]
	if !ok {
		return -1
	}
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return -1
		}
		return int(n)
	case json.RawMessage:
		n, err := strconv.Atoi(strings.TrimSpace(string(v)))
		if err != nil {
			return -1
		}
		return n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return -1
		}
		return n
	default:
		return -1
	}
}
