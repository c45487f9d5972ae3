package schema

import (
	"embed"
	"io/fs"
	"sync"
)

//go:embed catalog/*.yaml catalog/*.json
var embeddedCatalog embed.FS

// DefaultCatalogName is the bundled birth certificate catalog.
const DefaultCatalogName = "birth-certificate.yaml"

// DefaultOpenAPIName is the same catalog expressed as an OpenAPI component.
const DefaultOpenAPIName = "birth-certificate.openapi.json"

var (
	defaultOnce   sync.Once
	defaultSchema *Schema
)

// CatalogFS exposes the bundled catalogs.
func CatalogFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalog, "catalog")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default returns the bundled birth certificate schema.
func Default() *Schema {
	defaultOnce.Do(func() {
		s, err := LoadFS(CatalogFS(), DefaultCatalogName)
		if err != nil {
			panic(err)
		}
		defaultSchema = s
	})
	return defaultSchema
}
