// Package certificate renders the certificate preview as HTML: an embeddable
// fragment for live preview, or a standalone printable document with the
// stylesheet and theme variables inlined.
package certificate

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-certgen/pkg/render"
	rendertemplate "github.com/goliatone/go-certgen/pkg/render/template"
	gotemplate "github.com/goliatone/go-certgen/pkg/render/template/gotemplate"
)

// Name is the registry name of the HTML renderer.
const Name = "certificate"

const (
	fragmentTemplate = "templates/certificate.tmpl"
	pageTemplate     = "templates/page.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet replaces the embedded stylesheet inlined into standalone
// documents.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		if strings.TrimSpace(css) != "" {
			cfg.stylesheet = css
		}
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the certificate renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), stylesheet: defaultStylesheet()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("certificate renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, stylesheet: cfg.stylesheet}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, cert render.Certificate, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("certificate renderer: template renderer is nil")
	}

	fragment, err := r.templates.RenderTemplate(fragmentTemplate, map[string]any{
		"cert": cert,
	})
	if err != nil {
		return nil, fmt.Errorf("certificate renderer: render fragment: %w", err)
	}
	if !options.Standalone {
		return []byte(fragment), nil
	}

	var cssVars string
	if options.Theme != nil {
		cssVars = render.CSSVarsStyle(options.Theme.CSSVars)
	}
	page, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"title":      cert.Title,
		"css_vars":   cssVars,
		"stylesheet": r.stylesheet,
		"fragment":   sanitizeFragment(fragment),
	})
	if err != nil {
		return nil, fmt.Errorf("certificate renderer: render page: %w", err)
	}
	return []byte(page), nil
}
