// Package export turns the certificate preview into a printable document and
// drives it through a render, settle, print, close sequence on a Surface.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/renderers/certificate"
)

// DefaultSettleDelay is the pause between rendering and printing.
const DefaultSettleDelay = 500 * time.Millisecond

// DefaultDocumentName is the base name of exported documents.
const DefaultDocumentName = "birth-certificate"

// Document is a rendered, self-contained certificate.
type Document struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"-"`
}

// Extension returns the file extension matching the content type.
func (d Document) Extension() string {
	mediaType, _, err := mime.ParseMediaType(d.ContentType)
	if err != nil {
		return ".bin"
	}
	switch mediaType {
	case "text/html":
		return ".html"
	case "text/plain":
		return ".txt"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}

// Handle identifies a document opened on a Surface.
type Handle struct {
	ID       string `json:"id"`
	Location string `json:"location,omitempty"`
}

// Surface is the print target: a window, a spool directory, a buffer.
type Surface interface {
	Render(ctx context.Context, doc Document) (Handle, error)
	Print(ctx context.Context, h Handle) error
	Close(ctx context.Context, h Handle) error
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithRenderer selects the registry renderer used for documents.
func WithRenderer(name string) Option {
	return func(e *Exporter) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			e.renderer = trimmed
		}
	}
}

// WithSettleDelay overrides the pause between render and print. Negative
// values are ignored.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Exporter) {
		if d >= 0 {
			e.settle = d
		}
	}
}

// WithSleep replaces time.Sleep, typically in tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Exporter) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithTheme passes resolved theme configuration to the renderer.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(e *Exporter) {
		e.theme = cfg
	}
}

// WithDocumentName overrides the exported document base name.
func WithDocumentName(name string) Option {
	return func(e *Exporter) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			e.name = trimmed
		}
	}
}

// WithLogger sets the exporter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Exporter renders standalone documents and hands them to a Surface.
type Exporter struct {
	registry *render.Registry
	surface  Surface
	renderer string
	settle   time.Duration
	sleep    func(time.Duration)
	theme    *theme.RendererConfig
	name     string
	logger   *slog.Logger
}

// New constructs an Exporter. The registry must contain the selected renderer
// (the HTML certificate renderer unless WithRenderer says otherwise).
func New(registry *render.Registry, surface Surface, options ...Option) (*Exporter, error) {
	if registry == nil {
		return nil, errors.New("export: renderer registry is required")
	}
	if surface == nil {
		return nil, errors.New("export: surface is required")
	}
	e := &Exporter{
		registry: registry,
		surface:  surface,
		renderer: certificate.Name,
		settle:   DefaultSettleDelay,
		sleep:    time.Sleep,
		name:     DefaultDocumentName,
		logger:   slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if !registry.Has(e.renderer) {
		return nil, fmt.Errorf("export: renderer %q not registered", e.renderer)
	}
	return e, nil
}

// Document renders cert as a standalone document without touching the
// surface.
func (e *Exporter) Document(ctx context.Context, cert render.Certificate) (Document, error) {
	renderer, err := e.registry.Get(e.renderer)
	if err != nil {
		return Document{}, fmt.Errorf("export: %w", err)
	}
	body, err := renderer.Render(ctx, cert, render.RenderOptions{Standalone: true, Theme: e.theme})
	if err != nil {
		return Document{}, fmt.Errorf("export: render %s: %w", e.renderer, err)
	}
	return Document{
		Name:        e.name,
		Title:       cert.Title,
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// Export renders cert, opens it on the surface, waits the settle delay,
// prints and closes it. The settle delay is not interrupted by ctx. Close runs
// whenever render succeeded, even if print failed.
func (e *Exporter) Export(ctx context.Context, cert render.Certificate) (Handle, error) {
	doc, err := e.Document(ctx, cert)
	if err != nil {
		return Handle{}, err
	}

	handle, err := e.surface.Render(ctx, doc)
	if err != nil {
		return Handle{}, fmt.Errorf("export: open document: %w", err)
	}
	e.logger.DebugContext(ctx, "document opened", "handle", handle.ID, "location", handle.Location)

	if e.settle > 0 {
		e.sleep(e.settle)
	}

	printErr := e.surface.Print(ctx, handle)
	closeErr := e.surface.Close(ctx, handle)
	if printErr != nil {
		return handle, fmt.Errorf("export: print document: %w", printErr)
	}
	if closeErr != nil {
		return handle, fmt.Errorf("export: close document: %w", closeErr)
	}
	e.logger.InfoContext(ctx, "document exported", "handle", handle.ID, "renderer", e.renderer)
	return handle, nil
}
