package render

import (
	theme "github.com/goliatone/go-theme"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the preview model.
type RenderOptions struct {
	// Standalone asks for a complete printable document (stylesheet and theme
	// variables inlined) rather than an embeddable fragment.
	Standalone bool
	// Theme carries resolved palette tokens and CSS variables. Nil means the
	// renderer's built-in palette.
	Theme *theme.RendererConfig
	// Errors surfaces missing required fields keyed by field key so hosts can
	// highlight them next to the preview.
	Errors map[string][]string
}
