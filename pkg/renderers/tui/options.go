package tui

import "github.com/goliatone/go-certgen/pkg/render"

// Theme captures optional prefixes the runner applies when printing
// messages. Keep minimal to avoid coupling flow logic to ANSI specifics.
type Theme struct {
	PromptPrefix  string
	InfoPrefix    string
	SuccessPrefix string
	ErrorPrefix   string
}

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithPreviewRenderer sets the renderer used to print the certificate after
// a successful generate. The plain text renderer is a good fit.
func WithPreviewRenderer(renderer render.Renderer) Option {
	return func(r *Runner) {
		r.preview = renderer
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}
