// Package certgen turns a birth certificate form into a live certificate
// preview and printable documents. The root package re-exports the most used
// entry points so callers can start with a single import.
package certgen

import (
	"context"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-certgen/pkg/orchestrator"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/session"
)

// Values maps field keys to raw input.
type Values = schema.Values

// Certificate is the view model handed to renderers.
type Certificate = render.Certificate

// RenderOptions describes per-render overrides such as standalone output and
// resolved theme configuration.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request for one-shot renders.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(options...)
}

// NewSession builds an orchestrator with options and returns a restored
// session over it.
func NewSession(ctx context.Context, options ...orchestrator.Option) (*session.Session, error) {
	o, err := orchestrator.New(options...)
	if err != nil {
		return nil, err
	}
	return o.NewSession(ctx)
}

// Generate runs values through the session pipeline and renders the result
// with the named renderer ("certificate" or "text"). It is the simplest entry
// point for callers that just want output.
func Generate(ctx context.Context, values Values, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	o, err := orchestrator.New(options...)
	if err != nil {
		return nil, err
	}
	return o.Generate(ctx, orchestrator.Request{Values: values, Renderer: rendererName})
}

// GenerateHTML renders a complete printable HTML document.
func GenerateHTML(ctx context.Context, values Values, options ...orchestrator.Option) ([]byte, error) {
	o, err := orchestrator.New(options...)
	if err != nil {
		return nil, err
	}
	return o.Generate(ctx, orchestrator.Request{Values: values, Standalone: true})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithTheme selects a theme and variant.
func WithTheme(name, variant string) orchestrator.Option {
	return orchestrator.WithTheme(name, variant)
}
