package certgen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-certgen/pkg/schema"
)

// LoadCatalog reads a field catalog from path. When component is set the
// file is treated as an OpenAPI document and the named schema component is
// converted; otherwise it is read as a plain JSON or YAML catalog. An empty
// path returns the bundled birth certificate catalog.
func LoadCatalog(ctx context.Context, path, component string) (*schema.Schema, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return schema.Default(), nil
	}
	if strings.TrimSpace(component) == "" {
		return schema.LoadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("certgen: read %s: %w", path, err)
	}
	doc, err := schema.NewDocument(schema.SourceFromFile(path), data)
	if err != nil {
		return nil, err
	}
	return schema.FromOpenAPI(ctx, doc, component)
}
