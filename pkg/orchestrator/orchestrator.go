package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/identifier"
	"github.com/goliatone/go-certgen/pkg/notify"
	"github.com/goliatone/go-certgen/pkg/persist"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/renderers/certificate"
	"github.com/goliatone/go-certgen/pkg/renderers/text"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/session"
)

const defaultRendererName = certificate.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithSchema replaces the bundled birth certificate catalog.
func WithSchema(s *schema.Schema) Option {
	return func(o *Orchestrator) {
		o.schema = s
	}
}

// WithBackend selects where session snapshots are stored.
func WithBackend(backend persist.Backend) Option {
	return func(o *Orchestrator) {
		o.backend = backend
	}
}

// WithStorageKey overrides persist.DefaultKey.
func WithStorageKey(key string) Option {
	return func(o *Orchestrator) {
		o.storageKey = key
	}
}

// WithRegistry injects a renderer registry. The certificate and text
// renderers are added when missing.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithSurface selects the print surface used by exports.
func WithSurface(surface export.Surface) Option {
	return func(o *Orchestrator) {
		o.surface = surface
	}
}

// WithDefaultRenderer overrides the renderer used for exports and one-shot
// renders that do not name one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.defaultRenderer = name
		}
	}
}

// WithSettleDelay overrides export.DefaultSettleDelay.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.exportOptions = append(o.exportOptions, export.WithSettleDelay(d))
	}
}

// WithExportOptions passes extra options to the exporter.
func WithExportOptions(options ...export.Option) Option {
	return func(o *Orchestrator) {
		o.exportOptions = append(o.exportOptions, options...)
	}
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.selector = selector
	}
}

// WithTheme picks the theme and variant resolved through the selector.
func WithTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeName = name
		o.themeVariant = variant
	}
}

// WithNotifier sets where session notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithClock overrides the clock for sessions and identifiers.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithSessionOptions appends options applied to every session.
func WithSessionOptions(options ...session.Option) Option {
	return func(o *Orchestrator) {
		o.sessionOptions = append(o.sessionOptions, options...)
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator assembles a catalog, store, renderers, theme and exporter into
// sessions. It applies sensible defaults (bundled catalog, in-memory storage,
// in-memory print surface, built-in palette) while remaining open to
// dependency injection for advanced callers.
type Orchestrator struct {
	schema          *schema.Schema
	backend         persist.Backend
	storageKey      string
	registry        *render.Registry
	surface         export.Surface
	defaultRenderer string
	exportOptions   []export.Option
	selector        theme.ThemeSelector
	themeName       string
	themeVariant    string
	notifier        notify.Notifier
	now             func() time.Time
	sessionOptions  []session.Option
	logger          *slog.Logger

	themeConfig *theme.RendererConfig
	exporter    *export.Exporter
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) (*Orchestrator, error) {
	o := &Orchestrator{defaultRenderer: defaultRendererName}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if err := o.applyDefaults(); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) applyDefaults() error {
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.schema == nil {
		o.schema = schema.Default()
	}
	if o.backend == nil {
		o.backend = persist.NewMemoryBackend()
	}
	if o.surface == nil {
		o.surface = export.NewMemorySurface()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
	}
	if !o.registry.Has(certificate.Name) {
		html, err := certificate.New()
		if err != nil {
			return fmt.Errorf("orchestrator: certificate renderer: %w", err)
		}
		if err := o.registry.Register(html); err != nil {
			return fmt.Errorf("orchestrator: %w", err)
		}
	}
	if !o.registry.Has(text.Name) {
		if err := o.registry.Register(text.New()); err != nil {
			return fmt.Errorf("orchestrator: %w", err)
		}
	}

	if o.selector == nil {
		selector, err := render.NewManifestSelector(render.DefaultThemeName, "", render.DefaultManifest())
		if err != nil {
			return fmt.Errorf("orchestrator: default theme: %w", err)
		}
		o.selector = selector
	}
	cfg, err := render.ResolveTheme(o.selector, o.themeName, o.themeVariant)
	if err != nil {
		return fmt.Errorf("orchestrator: resolve theme: %w", err)
	}
	o.themeConfig = cfg

	exportOptions := append([]export.Option{
		export.WithRenderer(o.defaultRenderer),
		export.WithTheme(o.themeConfig),
		export.WithLogger(o.logger),
	}, o.exportOptions...)
	exporter, err := export.New(o.registry, o.surface, exportOptions...)
	if err != nil {
		return fmt.Errorf("orchestrator: %w", err)
	}
	o.exporter = exporter
	return nil
}

// Schema returns the field catalog.
func (o *Orchestrator) Schema() *schema.Schema { return o.schema }

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry { return o.registry }

// Surface returns the print surface.
func (o *Orchestrator) Surface() export.Surface { return o.surface }

// Exporter returns the configured exporter.
func (o *Orchestrator) Exporter() *export.Exporter { return o.exporter }

// Theme returns the resolved theme configuration.
func (o *Orchestrator) Theme() *theme.RendererConfig { return o.themeConfig }

// NewSession builds a session over the configured store and restores it.
func (o *Orchestrator) NewSession(ctx context.Context, options ...session.Option) (*session.Session, error) {
	return o.newSession(ctx, o.backend, options...)
}

func (o *Orchestrator) newSession(ctx context.Context, backend persist.Backend, options ...session.Option) (*session.Session, error) {
	storeOptions := []persist.Option{persist.WithLogger(o.logger)}
	if o.storageKey != "" {
		storeOptions = append(storeOptions, persist.WithKey(o.storageKey))
	}
	base := []session.Option{
		session.WithStore(persist.New(backend, o.schema, storeOptions...)),
		session.WithGenerator(identifier.New(identifier.WithClock(o.now))),
		session.WithExporter(o.exporter),
		session.WithLogger(o.logger),
		session.WithClock(o.now),
	}
	if o.notifier != nil {
		base = append(base, session.WithNotifier(o.notifier))
	}
	base = append(base, o.sessionOptions...)
	base = append(base, options...)

	sess, err := session.New(o.schema, base...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	sess.Init(ctx)
	return sess, nil
}

// Request describes a one-shot render.
type Request struct {
	// Values are applied in catalog order through the session pipeline, so
	// identifiers are derived exactly as they would be interactively.
	Values schema.Values

	// Renderer names the renderer to use. Empty selects the default.
	Renderer string

	// Standalone asks HTML renderers for a complete printable document.
	Standalone bool
}

// IncompleteError lists the required keys a one-shot render was missing, in
// catalog order. It matches session.ErrIncomplete with errors.Is.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("orchestrator: required fields missing: %s", strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error { return session.ErrIncomplete }

// Generate runs values through a throwaway in-memory session, generates the
// certificate and renders it. Incomplete forms return session.ErrIncomplete.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderer, err := o.registry.Resolve(req.Renderer, o.defaultRenderer)
	if err != nil {
		return nil, err
	}

	sess, err := o.newSession(ctx, persist.NewMemoryBackend(), session.WithNotifier(notify.Discard))
	if err != nil {
		return nil, err
	}
	for _, key := range o.schema.Keys() {
		value, ok := req.Values[key]
		if !ok {
			continue
		}
		if err := sess.Change(ctx, key, value); err != nil {
			return nil, fmt.Errorf("orchestrator: apply %s: %w", key, err)
		}
	}
	if err := sess.Generate(ctx); err != nil {
		if errors.Is(err, session.ErrIncomplete) {
			return nil, &IncompleteError{Missing: sess.Snapshot().Missing}
		}
		return nil, err
	}

	output, err := renderer.Render(ctx, sess.Certificate(), render.RenderOptions{
		Standalone: req.Standalone,
		Theme:      o.themeConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

