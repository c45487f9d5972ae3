// Package session owns the form state and dispatches every user action
// through a fixed pipeline: validity check, preview refresh (only while the
// form is valid), then persistence.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/format"
	"github.com/goliatone/go-certgen/pkg/identifier"
	"github.com/goliatone/go-certgen/pkg/notify"
	"github.com/goliatone/go-certgen/pkg/persist"
	"github.com/goliatone/go-certgen/pkg/preview"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/validity"
)

var (
	ErrUnknownField   = errors.New("session: unknown field")
	ErrIncomplete     = errors.New("session: required fields missing")
	ErrExportDisabled = errors.New("session: export is disabled")
)

// User-facing messages.
const (
	MessageIncomplete   = "Please fill in all required fields."
	MessageGenerated    = "Certificate generated successfully!"
	MessageExported     = "Certificate ready for download/print!"
	MessageExportFailed = "Error generating PDF. Please try again."
)

// Export control labels.
const (
	LabelExport    = "Download PDF"
	LabelExporting = "Generating PDF..."
)

// Stage names a step of the change pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StagePreview  Stage = "preview"
	StagePersist  Stage = "persist"
)

// StageHook observes pipeline stages as they run.
type StageHook func(ctx context.Context, stage Stage, key string)

// Exporter turns a certificate into a printed document.
type Exporter interface {
	Export(ctx context.Context, cert render.Certificate) (export.Handle, error)
}

// Controls is the state of the export control.
type Controls struct {
	ExportEnabled bool   `json:"exportEnabled"`
	ExportLabel   string `json:"exportLabel"`
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Values   schema.Values `json:"values"`
	Preview  preview.Model `json:"preview"`
	Valid    bool          `json:"valid"`
	Missing  []string      `json:"missing"`
	Controls Controls      `json:"controls"`
}

// Option configures a Session.
type Option func(*Session)

// WithStore sets the persistence store. Without one the session keeps an
// in-memory store.
func WithStore(store *persist.Store) Option {
	return func(s *Session) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGenerator sets the identifier generator.
func WithGenerator(gen *identifier.Generator) Option {
	return func(s *Session) {
		if gen != nil {
			s.generator = gen
		}
	}
}

// WithBindings overrides which fields trigger identifier generation.
func WithBindings(b identifier.Bindings) Option {
	return func(s *Session) {
		s.bindings = b
	}
}

// WithNotifier sets where notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithExporter sets the document exporter.
func WithExporter(e Exporter) Option {
	return func(s *Session) {
		if e != nil {
			s.exporter = e
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for default dates and the preview.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStageHook registers a pipeline observer.
func WithStageHook(hook StageHook) Option {
	return func(s *Session) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// Session is the single owner of form values, preview and controls. All
// operations are serialised.
type Session struct {
	mu sync.Mutex

	schema    *schema.Schema
	gate      *validity.Gate
	preview   *preview.Sync
	store     *persist.Store
	generator *identifier.Generator
	bindings  identifier.Bindings
	notifier  notify.Notifier
	exporter  Exporter
	logger    *slog.Logger
	now       func() time.Time
	hooks     []StageHook

	values    schema.Values
	controls  Controls
	exporting bool
	resets    uint64
}

// New constructs a session over s. Call Init before dispatching changes.
func New(s *schema.Schema, options ...Option) (*Session, error) {
	if s == nil {
		return nil, errors.New("session: schema is required")
	}
	sess := &Session{
		schema:   s,
		gate:     validity.New(s),
		bindings: identifier.DefaultBindings(),
		notifier: notify.Discard,
		logger:   slog.Default(),
		now:      time.Now,
		values:   schema.Values{},
		controls: Controls{ExportLabel: LabelExport},
	}
	for _, opt := range options {
		if opt != nil {
			opt(sess)
		}
	}
	if sess.store == nil {
		sess.store = persist.New(nil, s, persist.WithLogger(sess.logger))
	}
	if sess.generator == nil {
		sess.generator = identifier.New(identifier.WithClock(sess.now))
	}
	sess.preview = preview.New(s, preview.WithClock(sess.now))
	return sess, nil
}

// Schema returns the field catalog.
func (s *Session) Schema() *schema.Schema {
	return s.schema
}

// Init applies defaults (registration date = today), lets the restored
// snapshot override them and refreshes the preview when the result is valid.
func (s *Session) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := schema.Values{}
	if s.schema.Has(schema.KeyRegistrationDate) {
		values[schema.KeyRegistrationDate] = format.InputDate(s.now())
	}
	for key, value := range s.store.Load(ctx) {
		values[key] = value
	}
	s.values = values
	s.preview.Reset()
	if s.gate.IsValid(s.values) {
		s.preview.Refresh(s.values)
	}
	s.logger.DebugContext(ctx, "session initialised", "fields", len(values), "valid", s.gate.IsValid(values))
}

// Change records a new value for key, runs the identifier trigger bound to
// it, then validates, refreshes the preview if valid and persists.
func (s *Session) Change(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.schema.Has(key) {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	s.values[key] = value
	if target, derived, ok := s.generator.Derive(s.bindings, key, value); ok && s.schema.Has(target) {
		s.values[target] = derived
	}
	s.dispatch(ctx, key)
	return nil
}

func (s *Session) dispatch(ctx context.Context, key string) {
	s.stage(ctx, StageValidate, key)
	if s.gate.IsValid(s.values) {
		s.stage(ctx, StagePreview, key)
		s.preview.Refresh(s.values)
	}
	s.stage(ctx, StagePersist, key)
	if err := s.store.Save(ctx, s.values); err != nil {
		s.logger.WarnContext(ctx, "persist form values failed", "error", err)
	}
}

func (s *Session) stage(ctx context.Context, stage Stage, key string) {
	for _, hook := range s.hooks {
		hook(ctx, stage, key)
	}
}

// Generate refreshes the preview and enables export when the form is valid.
// An incomplete form only produces an error notification.
func (s *Session) Generate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if missing := s.gate.Missing(s.values); len(missing) > 0 {
		s.notifier.Notify(ctx, MessageIncomplete, notify.SeverityError)
		return fmt.Errorf("%w: %v", ErrIncomplete, missing)
	}
	s.preview.Refresh(s.values)
	s.controls.ExportEnabled = true
	s.notifier.Notify(ctx, MessageGenerated, notify.SeveritySuccess)
	return nil
}

// Reset clears every value, restores the preview defaults, disables export
// and persists the empty state.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = schema.Values{}
	s.preview.Reset()
	s.resets++
	if s.exporting {
		s.controls = Controls{ExportLabel: LabelExporting}
	} else {
		s.controls = Controls{ExportLabel: LabelExport}
	}
	if err := s.store.Save(ctx, s.values); err != nil {
		s.logger.WarnContext(ctx, "persist reset state failed", "error", err)
	}
}

// Export prints the current preview. The control shows LabelExporting and is
// disabled while the exporter runs; the session lock is released meanwhile so
// reads and edits are not blocked by the settle delay. Success or failure,
// the control ends enabled with LabelExport, unless the form was reset while
// the export ran; then it ends disabled until the next Generate.
func (s *Session) Export(ctx context.Context) (handle export.Handle, err error) {
	s.mu.Lock()
	if !s.controls.ExportEnabled || s.exporting {
		s.mu.Unlock()
		return export.Handle{}, ErrExportDisabled
	}
	s.exporting = true
	s.controls = Controls{ExportEnabled: false, ExportLabel: LabelExporting}
	cert := render.NewCertificate(s.schema, s.preview.Model())
	exporter := s.exporter
	resets := s.resets
	s.mu.Unlock()

	handle, err = s.runExport(ctx, exporter, cert)

	s.mu.Lock()
	s.exporting = false
	enabled := s.resets == resets || s.controls.ExportEnabled
	s.controls = Controls{ExportEnabled: enabled, ExportLabel: LabelExport}
	s.mu.Unlock()

	if err != nil {
		s.logger.ErrorContext(ctx, "export failed", "error", err)
		s.notifier.Notify(ctx, MessageExportFailed, notify.SeverityError)
		return export.Handle{}, err
	}
	s.notifier.Notify(ctx, MessageExported, notify.SeveritySuccess)
	return handle, nil
}

func (s *Session) runExport(ctx context.Context, exporter Exporter, cert render.Certificate) (handle export.Handle, err error) {
	if exporter == nil {
		return export.Handle{}, errors.New("session: no exporter configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("session: export panicked: %v", r)
		}
	}()
	return exporter.Export(ctx, cert)
}

// Certificate returns the view model of the current preview.
func (s *Session) Certificate() render.Certificate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return render.NewCertificate(s.schema, s.preview.Model())
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	missing := s.gate.Missing(s.values)
	if missing == nil {
		missing = []string{}
	}
	return Snapshot{
		Values:   s.values.Clone(),
		Preview:  s.preview.Model(),
		Valid:    len(missing) == 0,
		Missing:  missing,
		Controls: s.controls,
	}
}
