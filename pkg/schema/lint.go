package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ExtensionNamespace prefixes every vendor extension the catalog reader
// understands.
const ExtensionNamespace = "x-certgen"

// Violation is a single lint finding.
type Violation struct {
	Location string
	Message  string
}

func (v Violation) String() string {
	return v.Location + " -> " + v.Message
}

// LintOpenAPI checks the certgen extensions and field formats of a component
// schema. A document that cannot be converted at all returns an error instead
// of violations.
func LintOpenAPI(ctx context.Context, doc Document, component string) ([]Violation, error) {
	if _, err := FromOpenAPI(ctx, doc, component); err != nil {
		return nil, err
	}
	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(doc.Raw())
	if err != nil {
		return nil, fmt.Errorf("schema: load openapi %s: %w", doc.Location(), err)
	}
	root := spec.Components.Schemas[component].Value

	names := make([]string, 0, len(root.Properties))
	for name := range root.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Violation
	orders := make(map[int]string)
	for _, name := range names {
		prop := root.Properties[name]
		if prop == nil || prop.Value == nil {
			continue
		}
		location := strings.Join([]string{"components", "schemas", component, "properties", name}, " > ")
		out = append(out, lintExtensions(location, prop.Value.Extensions)...)

		if _, ok := prop.Value.Extensions[OrderExtension]; ok {
			order := extensionOrder(prop.Value.Extensions)
			if order < 0 {
				out = append(out, Violation{Location: location, Message: fmt.Sprintf("%s must be a non-negative integer", OrderExtension)})
			} else if other, dup := orders[order]; dup {
				out = append(out, Violation{Location: location, Message: fmt.Sprintf("%s %d already used by %q", OrderExtension, order, other)})
			} else {
				orders[order] = name
			}
		}

		if format := strings.TrimSpace(prop.Value.Format); format != "" && kindFromFormat(format) == KindText {
			out = append(out, Violation{Location: location, Message: fmt.Sprintf("format %q is rendered as plain text", format)})
		}
		if strings.TrimSpace(prop.Value.Title) == "" {
			out = append(out, Violation{Location: location, Message: "missing title; the key is used as the label"})
		}
	}
	return out, nil
}

func lintExtensions(location string, extensions map[string]any) []Violation {
	keys := make([]string, 0, len(extensions))
	for key := range extensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var out []Violation
	for _, key := range keys {
		if !strings.HasPrefix(key, ExtensionNamespace+"-") && key != ExtensionNamespace {
			continue
		}
		if key != OrderExtension {
			out = append(out, Violation{
				Location: location,
				Message:  fmt.Sprintf("unsupported extension %q (supported: %s)", key, OrderExtension),
			})
		}
	}
	return out
}
