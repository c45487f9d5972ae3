package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-certgen/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, render.Certificate, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistryRegisterAndList(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("text"))
	registry.MustRegister(namedRenderer("certificate"))

	if diff := cmp.Diff([]string{"certificate", "text"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if err := registry.Register(namedRenderer("text")); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := registry.Register(namedRenderer("  ")); err == nil {
		t.Fatalf("expected blank name error")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil renderer error")
	}
}

func TestRegistryResolve(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(namedRenderer("certificate"))
	registry.MustRegister(namedRenderer("text"))

	got, err := registry.Resolve("", "certificate")
	if err != nil || got.Name() != "certificate" {
		t.Fatalf("expected fallback renderer, got %v (%v)", got, err)
	}
	got, err = registry.Resolve("text", "certificate")
	if err != nil || got.Name() != "text" {
		t.Fatalf("expected named renderer, got %v (%v)", got, err)
	}

	_, err = registry.Resolve("pdf", "certificate")
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
	if !strings.Contains(err.Error(), "available: certificate, text") {
		t.Fatalf("expected available names in %q", err)
	}
}
