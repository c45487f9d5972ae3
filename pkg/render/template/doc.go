// Package template defines the template engine seam certificate renderers
// depend on. The gotemplate subpackage provides the pongo2-backed engine.
package template
