package certgen

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-certgen/pkg/schema"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	data, err := fs.ReadFile(AssetsFS(), "certificate.css")
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(data), "--cert-") {
		t.Fatalf("expected stylesheet to use theme variables")
	}
}

func TestEmbeddedTemplatesIncludeFragmentAndPage(t *testing.T) {
	for _, name := range []string{"templates/certificate.tmpl", "templates/page.tmpl"} {
		if _, err := fs.Stat(EmbeddedTemplates(), name); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestGenerateHTML(t *testing.T) {
	out, err := GenerateHTML(context.Background(), Values{
		"fullName":         "Jane Ann Doe",
		"gender":           "Female",
		"dateOfBirth":      "2024-03-07",
		"placeOfBirth":     "Springfield General",
		"motherName":       "Mary Doe",
		"registrationDate": "2024-03-10",
	})
	if err != nil {
		t.Fatalf("generate html: %v", err)
	}
	if !strings.HasPrefix(string(out), "<!DOCTYPE html>") || !strings.Contains(string(out), "Jane Ann Doe") {
		t.Fatalf("unexpected document:\n%s", out)
	}
}

func TestLoadCatalog(t *testing.T) {
	ctx := context.Background()

	s, err := LoadCatalog(ctx, "", "")
	if err != nil || s.Title() != schema.Default().Title() {
		t.Fatalf("expected bundled catalog, got %v (%v)", s, err)
	}

	dir := t.TempDir()
	raw, err := fs.ReadFile(schema.CatalogFS(), schema.DefaultOpenAPIName)
	if err != nil {
		t.Fatalf("read bundled openapi: %v", err)
	}
	path := filepath.Join(dir, "catalog.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write openapi: %v", err)
	}
	fromOpenAPI, err := LoadCatalog(ctx, path, "BirthCertificate")
	if err != nil {
		t.Fatalf("load openapi catalog: %v", err)
	}
	if len(fromOpenAPI.Fields()) != len(schema.Default().Fields()) {
		t.Fatalf("expected %d fields, got %d", len(schema.Default().Fields()), len(fromOpenAPI.Fields()))
	}

	if _, err := LoadCatalog(ctx, filepath.Join(dir, "missing.yaml"), ""); err == nil {
		t.Fatalf("expected error for missing catalog")
	}
}
