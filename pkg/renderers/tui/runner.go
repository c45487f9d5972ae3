// Package tui fills in a certificate session from the terminal: one prompt
// per editable field followed by an action menu mirroring the form buttons.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/format"
	"github.com/goliatone/go-certgen/pkg/notify"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/session"
)

// Session is the part of *session.Session the runner drives.
type Session interface {
	Schema() *schema.Schema
	Snapshot() session.Snapshot
	Certificate() render.Certificate
	Change(ctx context.Context, key, value string) error
	Generate(ctx context.Context) error
	Reset(ctx context.Context)
	Export(ctx context.Context) (export.Handle, error)
}

// Menu entries.
const (
	ActionGenerate = "Generate Certificate"
	ActionEdit     = "Edit a field"
	ActionReset    = "Reset"
	ActionQuit     = "Quit"
)

// Runner prompts for field values and dispatches them to a session.
type Runner struct {
	driver  PromptDriver
	preview render.Renderer
	theme   Theme
}

// New constructs a runner with the survey driver unless WithPromptDriver is
// given.
func New(options ...Option) *Runner {
	r := &Runner{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Notifier prints session notifications through the prompt driver.
func (r *Runner) Notifier() notify.Notifier {
	return notify.NotifierFunc(func(ctx context.Context, message string, severity notify.Severity) {
		_ = r.driver.Info(ctx, r.prefix(severity)+message)
	})
}

func (r *Runner) prefix(severity notify.Severity) string {
	switch severity {
	case notify.SeveritySuccess:
		return r.theme.SuccessPrefix
	case notify.SeverityError:
		return r.theme.ErrorPrefix
	default:
		return r.theme.InfoPrefix
	}
}

// Fill prompts every editable field in catalog order, defaulting to the
// current value. Read-only fields are generated and never prompted.
func (r *Runner) Fill(ctx context.Context, sess Session) error {
	if sess == nil {
		return ErrNoSession
	}
	for _, field := range sess.Schema().Fields() {
		if field.ReadOnly {
			continue
		}
		if err := r.promptField(ctx, sess, field); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, sess Session, field schema.FieldDescriptor) error {
	validate := fieldValidator(field)
	current := sess.Snapshot().Values.Get(field.Key)
	for {
		value, err := r.driver.Input(ctx, InputConfig{
			Message:   r.theme.PromptPrefix + promptLabel(field),
			Default:   current,
			Help:      promptHelp(field),
			Validator: validate,
		})
		if err != nil {
			return err
		}
		if err := validate(value); err != nil {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+err.Error()); err != nil {
				return err
			}
			continue
		}
		if err := sess.Change(ctx, field.Key, value); err != nil {
			return fmt.Errorf("tui: change %s: %w", field.Key, err)
		}
		return nil
	}
}

// Run fills the form, then loops over the action menu until the user quits.
func (r *Runner) Run(ctx context.Context, sess Session) error {
	if err := r.Fill(ctx, sess); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		controls := sess.Snapshot().Controls
		options := []string{ActionGenerate, ActionEdit, ActionReset, ActionQuit}
		if controls.ExportEnabled {
			options = []string{ActionGenerate, controls.ExportLabel, ActionEdit, ActionReset, ActionQuit}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: r.theme.PromptPrefix + "What next?",
			Options: options,
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			continue
		}

		switch choice := options[idx]; choice {
		case ActionGenerate:
			if err := r.generate(ctx, sess); err != nil {
				return err
			}
		case ActionEdit:
			if err := r.edit(ctx, sess); err != nil {
				return err
			}
		case ActionReset:
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Clear every field?"})
			if err != nil {
				return err
			}
			if ok {
				sess.Reset(ctx)
			}
		case ActionQuit:
			return nil
		default:
			// Export failures are reported through the session notifier.
			if _, err := sess.Export(ctx); errors.Is(err, session.ErrExportDisabled) {
				if err := r.driver.Info(ctx, r.theme.InfoPrefix+"Generate the certificate first."); err != nil {
					return err
				}
			}
		}
	}
}

func (r *Runner) generate(ctx context.Context, sess Session) error {
	if err := sess.Generate(ctx); err != nil {
		if errors.Is(err, session.ErrIncomplete) {
			missing := sess.Snapshot().Missing
			for _, message := range orderedErrors(sess.Schema(), render.MissingFieldErrors(sess.Schema(), missing)) {
				if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
					return err
				}
			}
			return nil
		}
		return err
	}
	if r.preview == nil {
		return nil
	}
	out, err := r.preview.Render(ctx, sess.Certificate(), render.RenderOptions{})
	if err != nil {
		return fmt.Errorf("tui: render preview: %w", err)
	}
	return r.driver.Info(ctx, strings.TrimRight(string(out), "\n"))
}

func (r *Runner) edit(ctx context.Context, sess Session) error {
	var editable []schema.FieldDescriptor
	var labels []string
	for _, field := range sess.Schema().Fields() {
		if field.ReadOnly {
			continue
		}
		editable = append(editable, field)
		labels = append(labels, field.Label)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: "Field", Options: labels})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(editable) {
		return nil
	}
	return r.promptField(ctx, sess, editable[idx])
}

func orderedErrors(s *schema.Schema, byKey map[string][]string) []string {
	var out []string
	for _, key := range s.Keys() {
		out = append(out, byKey[key]...)
	}
	return out
}

func promptLabel(field schema.FieldDescriptor) string {
	label := field.Label
	if label == "" {
		label = field.Key
	}
	if field.Required {
		label += " *"
	}
	return label
}

func promptHelp(field schema.FieldDescriptor) string {
	switch field.Kind {
	case schema.KindDate:
		return "Date as YYYY-MM-DD"
	case schema.KindTime:
		return "24-hour time as HH:MM"
	default:
		return ""
	}
}

func fieldValidator(field schema.FieldDescriptor) func(string) error {
	return func(value string) error {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			if field.Required {
				return errors.New(promptName(field) + " is required.")
			}
			return nil
		}
		switch field.Kind {
		case schema.KindDate:
			if _, ok := format.ParseDate(trimmed); !ok {
				return errors.New(promptName(field) + " must be a date like 2024-03-07.")
			}
		case schema.KindTime:
			if _, ok := format.ParseTime(trimmed); !ok {
				return errors.New(promptName(field) + " must be a time like 14:30.")
			}
		}
		return nil
	}
}

func promptName(field schema.FieldDescriptor) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Key
}
