package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/orchestrator"
	"github.com/goliatone/go-certgen/pkg/persist"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/renderers/text"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/session"
	"github.com/goliatone/go-certgen/pkg/testsupport"
)

var today = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func completeValues() schema.Values {
	return schema.Values{
		"fullName":         "Jane Ann Doe",
		"gender":           "Female",
		"dateOfBirth":      "2024-03-07",
		"placeOfBirth":     "Springfield General",
		"motherName":       "Mary Doe",
		"registrationDate": "2024-03-10",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRegistersDefaults(t *testing.T) {
	o, err := orchestrator.New(orchestrator.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	if diff := cmp.Diff([]string{"certificate", "text"}, o.Registry().List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
	if o.Theme() == nil || o.Theme().Theme != render.DefaultThemeName {
		t.Fatalf("expected default theme, got %+v", o.Theme())
	}
	if o.Schema().Title() != "Certificate of Live Birth" {
		t.Fatalf("unexpected schema title %q", o.Schema().Title())
	}
}

func TestNewRejectsUnknownTheme(t *testing.T) {
	_, err := orchestrator.New(orchestrator.WithTheme("neon", ""), orchestrator.WithLogger(quietLogger()))
	if err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestGenerateText(t *testing.T) {
	o, err := orchestrator.New(
		orchestrator.WithClock(testsupport.FixedClock(today)),
		orchestrator.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	out, err := o.Generate(context.Background(), orchestrator.Request{
		Values:   completeValues(),
		Renderer: text.Name,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	body := string(out)
	for _, want := range []string{
		"CERTIFICATE OF LIVE BIRTH",
		"Jane Ann Doe",
		"March 7, 2024",
		"Registration No.:",
		"JAD2026",
		"BC20240307",
		"Date Issued: October 19, 2026",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in output:\n%s", want, body)
		}
	}
}

func TestGenerateStandaloneUsesThemeVariant(t *testing.T) {
	o, err := orchestrator.New(
		orchestrator.WithTheme(render.DefaultThemeName, "mono"),
		orchestrator.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	out, err := o.Generate(context.Background(), orchestrator.Request{Values: completeValues(), Standalone: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), "--cert-seal: #ffffff;") {
		t.Fatalf("expected mono seal colour in standalone page:\n%s", out)
	}
}

func TestGenerateIncomplete(t *testing.T) {
	o, err := orchestrator.New(orchestrator.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	values := completeValues()
	delete(values, "motherName")

	_, err = o.Generate(context.Background(), orchestrator.Request{Values: values})
	if !errors.Is(err, session.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	var incomplete *orchestrator.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteError, got %T", err)
	}
	if diff := cmp.Diff([]string{"motherName"}, incomplete.Missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateUnknownRenderer(t *testing.T) {
	o, err := orchestrator.New(orchestrator.WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	_, err = o.Generate(context.Background(), orchestrator.Request{Values: completeValues(), Renderer: "pdf"})
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestNewSessionRestoresAndExports(t *testing.T) {
	backend := persist.NewMemoryBackend()
	if err := backend.Set(context.Background(), "custom", `{"fullName":"Jane Ann Doe"}`); err != nil {
		t.Fatalf("seed backend: %v", err)
	}
	surface := export.NewMemorySurface()
	o, err := orchestrator.New(
		orchestrator.WithBackend(backend),
		orchestrator.WithStorageKey("custom"),
		orchestrator.WithSurface(surface),
		orchestrator.WithSettleDelay(0),
		orchestrator.WithDefaultRenderer(text.Name),
		orchestrator.WithClock(testsupport.FixedClock(today)),
		orchestrator.WithLogger(quietLogger()),
	)
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	ctx := context.Background()
	sess, err := o.NewSession(ctx)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	snap := sess.Snapshot()
	if snap.Values["fullName"] != "Jane Ann Doe" || snap.Values["registrationDate"] != "2026-10-19" {
		t.Fatalf("unexpected restored values %v", snap.Values)
	}

	for key, value := range completeValues() {
		if err := sess.Change(ctx, key, value); err != nil {
			t.Fatalf("change %s: %v", key, err)
		}
	}
	if err := sess.Generate(ctx); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := sess.Export(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	doc, ok := surface.Last()
	if !ok {
		t.Fatalf("expected printed document")
	}
	if doc.Extension() != ".txt" || !strings.Contains(string(doc.Body), "Jane Ann Doe") {
		t.Fatalf("unexpected document %q (%s)", doc.Body, doc.Extension())
	}

	raw, ok, err := backend.Get(ctx, "custom")
	if err != nil || !ok || !strings.Contains(raw, "Springfield General") {
		t.Fatalf("expected snapshot under custom key, got %q (%v, %v)", raw, ok, err)
	}
}
