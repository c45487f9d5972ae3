// Package httpapi serves the certificate form, live preview and export over
// HTTP.
package httpapi

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	theme "github.com/goliatone/go-theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-certgen/internal/metrics"
	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/notify"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-certgen/pkg/renderers/certificate"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/session"
)

//go:embed templates/*.tmpl
var pageTemplates embed.FS

const maxBodyBytes = 64 << 10

// DocumentSource returns the most recently printed document.
type DocumentSource interface {
	Last() (export.Document, bool)
}

// Option configures a Handler.
type Option func(*Handler)

// WithTray exposes the visible notification in state responses.
func WithTray(tray *notify.Tray) Option {
	return func(h *Handler) {
		h.tray = tray
	}
}

// WithDocuments enables GET /api/document.
func WithDocuments(src DocumentSource) Option {
	return func(h *Handler) {
		h.documents = src
	}
}

// WithMetrics records request outcomes and serves /metrics from gatherer.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(h *Handler) {
		h.metrics = m
		h.gatherer = gatherer
	}
}

// WithTheme applies resolved theme variables to the preview page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(h *Handler) {
		h.theme = cfg
	}
}

// WithLogger sets the handler logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Handler wires the HTTP surface to a session.
type Handler struct {
	session   *session.Session
	registry  *render.Registry
	tray      *notify.Tray
	documents DocumentSource
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	theme     *theme.RendererConfig
	logger    *slog.Logger
	pages     *gotemplate.Engine
}

// New constructs a handler. The registry must contain the HTML certificate
// renderer used for the preview fragment.
func New(sess *session.Session, registry *render.Registry, options ...Option) (*Handler, error) {
	if sess == nil || registry == nil {
		return nil, errors.New("httpapi: session and registry are required")
	}
	if !registry.Has(certificate.Name) {
		return nil, fmt.Errorf("httpapi: renderer %q not registered", certificate.Name)
	}
	templates, err := fs.Sub(pageTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("httpapi: page templates: %w", err)
	}
	pages, err := gotemplate.New(gotemplate.WithFS(templates), gotemplate.WithExtension(".tmpl"))
	if err != nil {
		return nil, fmt.Errorf("httpapi: page engine: %w", err)
	}
	h := &Handler{
		session:  sess,
		registry: registry,
		logger:   slog.Default(),
		pages:    pages,
	}
	for _, opt := range options {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Routes returns a router with every endpoint mounted.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	h.Register(r)
	return r
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.HandleIndex)
	r.Get("/healthz", h.HandleHealth)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(certificate.AssetsFS()))))
	if h.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/schema", h.HandleSchema)
		r.Get("/state", h.HandleState)
		r.Get("/preview", h.HandlePreview)
		r.Put("/fields/{key}", h.HandleChange)
		r.Patch("/fields", h.HandleChangeMany)
		r.Post("/generate", h.HandleGenerate)
		r.Post("/reset", h.HandleReset)
		r.Post("/export", h.HandleExport)
		r.Get("/document", h.HandleDocument)
	})
}

type schemaResponse struct {
	Title  string                   `json:"title"`
	Fields []schema.FieldDescriptor `json:"fields"`
}

type stateResponse struct {
	State        session.Snapshot     `json:"state"`
	Notification *notify.Notification `json:"notification,omitempty"`
	Errors       *render.ErrorMapping `json:"errors,omitempty"`
	Handle       *export.Handle       `json:"handle,omitempty"`
}

type changeRequest struct {
	Value string `json:"value"`
}

type changeManyRequest struct {
	Values map[string]string `json:"values"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

// HandleSchema handles GET /api/schema.
func (h *Handler) HandleSchema(w http.ResponseWriter, _ *http.Request) {
	s := h.session.Schema()
	writeJSON(w, http.StatusOK, schemaResponse{Title: s.Title(), Fields: s.Fields()})
}

// HandleState handles GET /api/state.
func (h *Handler) HandleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.state(nil))
}

// HandleChange handles PUT /api/fields/{key}.
func (h *Handler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	var req changeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.session.Change(ctx, key, req.Value); err != nil {
		if errors.Is(err, session.ErrUnknownField) {
			writeError(w, http.StatusNotFound, "unknown_field", err.Error())
			return
		}
		h.logger.ErrorContext(ctx, "field change failed", "field", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	if h.metrics != nil {
		h.metrics.IncrementFieldChange(key)
	}
	writeJSON(w, http.StatusOK, h.state(nil))
}

// HandleChangeMany handles PATCH /api/fields. Keys are applied in catalog
// order; unknown keys are reported as form-level errors.
func (h *Handler) HandleChangeMany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req changeManyRequest
	if !decode(w, r, &req) {
		return
	}

	s := h.session.Schema()
	failures := make(map[string][]string)
	for _, key := range s.Keys() {
		value, ok := req.Values[key]
		if !ok {
			continue
		}
		if err := h.session.Change(ctx, key, value); err != nil {
			failures[key] = append(failures[key], err.Error())
			continue
		}
		if h.metrics != nil {
			h.metrics.IncrementFieldChange(key)
		}
	}
	for key := range req.Values {
		if !s.Has(key) {
			failures[key] = append(failures[key], fmt.Sprintf("unknown field %q", key))
		}
	}

	var mapping *render.ErrorMapping
	if len(failures) > 0 {
		m := render.MapErrorPayload(s, failures)
		mapping = &m
	}
	writeJSON(w, http.StatusOK, h.state(mapping))
}

// HandleGenerate handles POST /api/generate.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	err := h.session.Generate(ctx)
	switch {
	case errors.Is(err, session.ErrIncomplete):
		h.recordGeneration(metrics.OutcomeIncomplete)
		snap := h.session.Snapshot()
		mapping := &render.ErrorMapping{
			Fields: render.MissingFieldErrors(h.session.Schema(), snap.Missing),
			Form:   []string{session.MessageIncomplete},
		}
		writeJSON(w, http.StatusUnprocessableEntity, h.state(mapping))
	case err != nil:
		h.recordGeneration(metrics.OutcomeFailure)
		h.logger.ErrorContext(ctx, "generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	default:
		h.recordGeneration(metrics.OutcomeSuccess)
		writeJSON(w, http.StatusOK, h.state(nil))
	}
}

// HandleReset handles POST /api/reset.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.session.Reset(r.Context())
	writeJSON(w, http.StatusOK, h.state(nil))
}

// HandleExport handles POST /api/export.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	handle, err := h.session.Export(ctx)
	switch {
	case errors.Is(err, session.ErrExportDisabled):
		writeError(w, http.StatusConflict, "export_disabled", "generate the certificate before exporting")
	case err != nil:
		h.recordExport(metrics.OutcomeFailure)
		writeJSON(w, http.StatusInternalServerError, h.state(nil))
	default:
		h.recordExport(metrics.OutcomeSuccess)
		h.logger.InfoContext(ctx, "certificate exported",
			"request_id", middleware.GetReqID(ctx),
			"handle", handle.ID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		resp := h.state(nil)
		resp.Handle = &handle
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleDocument handles GET /api/document.
func (h *Handler) HandleDocument(w http.ResponseWriter, _ *http.Request) {
	if h.documents == nil {
		writeError(w, http.StatusNotFound, "not_found", "no document store configured")
		return
	}
	doc, ok := h.documents.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no document exported yet")
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Name+doc.Extension()))
	_, _ = w.Write(doc.Body)
}

// HandlePreview handles GET /api/preview and returns the HTML fragment.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	fragment, err := h.renderPreview(r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "preview render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(fragment)
}

type pageField struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Required  bool     `json:"required"`
	ReadOnly  bool     `json:"read_only"`
	InputType string   `json:"input_type"`
	Value     string   `json:"value"`
	Missing   bool     `json:"missing"`
	Errors    []string `json:"errors,omitempty"`
}

// HandleIndex handles GET / with the form and live preview.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fragment, err := h.renderPreview(r)
	if err != nil {
		h.logger.ErrorContext(ctx, "preview render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	s := h.session.Schema()
	resp := h.state(nil)
	missing := make(map[string]struct{}, len(resp.State.Missing))
	for _, key := range resp.State.Missing {
		missing[key] = struct{}{}
	}
	fieldErrors := render.MissingFieldErrors(s, resp.State.Missing)

	fields := make([]pageField, 0, len(s.Fields()))
	for _, field := range s.Fields() {
		_, isMissing := missing[field.Key]
		fields = append(fields, pageField{
			Key:       field.Key,
			Label:     field.Label,
			Required:  field.Required,
			ReadOnly:  field.ReadOnly,
			InputType: inputType(field.Kind),
			Value:     resp.State.Values.Get(field.Key),
			Missing:   isMissing,
			Errors:    fieldErrors[field.Key],
		})
	}

	var cssVars string
	stylesheet := "/assets/" + certificate.StylesheetName
	if h.theme != nil {
		cssVars = render.CSSVarsStyle(h.theme.CSSVars)
		if h.theme.AssetURL != nil {
			if url := h.theme.AssetURL("certificate.stylesheet"); url != "" {
				stylesheet = url
			}
		}
	}

	page, err := h.pages.RenderTemplate("index", map[string]any{
		"title":          s.Title(),
		"stylesheet_url": stylesheet,
		"css_vars":       cssVars,
		"fields":         fields,
		"controls":       resp.State.Controls,
		"notification":   resp.Notification,
		"preview":        string(fragment),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "index render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, page)
}

func (h *Handler) renderPreview(r *http.Request) ([]byte, error) {
	renderer, err := h.registry.Get(certificate.Name)
	if err != nil {
		return nil, err
	}
	return renderer.Render(r.Context(), h.session.Certificate(), render.RenderOptions{Theme: h.theme})
}

func (h *Handler) state(mapping *render.ErrorMapping) stateResponse {
	resp := stateResponse{State: h.session.Snapshot(), Errors: mapping}
	if h.tray != nil {
		if n, ok := h.tray.Active(); ok {
			resp.Notification = &n
		}
	}
	return resp
}

func (h *Handler) recordGeneration(outcome string) {
	if h.metrics != nil {
		h.metrics.IncrementGeneration(outcome)
	}
}

func (h *Handler) recordExport(outcome string) {
	if h.metrics != nil {
		h.metrics.IncrementExport(outcome)
	}
}

func inputType(kind schema.FieldKind) string {
	switch kind {
	case schema.KindDate:
		return "date"
	case schema.KindTime:
		return "time"
	default:
		return "text"
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+strings.TrimSpace(err.Error()))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}
