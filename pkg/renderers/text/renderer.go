// Package text renders the certificate as aligned plain text for terminals
// and log attachments.
package text

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-certgen/pkg/render"
)

// Name is the registry name of the plain-text renderer.
const Name = "text"

type Renderer struct{}

var _ render.Renderer = Renderer{}

// New returns the plain-text renderer.
func New() Renderer {
	return Renderer{}
}

func (Renderer) Name() string {
	return Name
}

func (Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render writes the title, one "Label: value" line per body field and a
// footer with the issue date and authority. Standalone and theme options are
// ignored.
func (Renderer) Render(_ context.Context, cert render.Certificate, _ render.RenderOptions) ([]byte, error) {
	width := 0
	for _, field := range cert.Fields {
		if field.Footer {
			continue
		}
		if n := utf8.RuneCountInString(field.Label); n > width {
			width = n
		}
	}

	var buf bytes.Buffer
	title := strings.ToUpper(cert.Title)
	buf.WriteString(title)
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("=", utf8.RuneCountInString(title)))
	buf.WriteString("\n\n")

	for _, field := range cert.Fields {
		if field.Footer {
			continue
		}
		buf.WriteString(field.Label)
		buf.WriteByte(':')
		buf.WriteString(strings.Repeat(" ", width-utf8.RuneCountInString(field.Label)+1))
		buf.WriteString(field.Value)
		buf.WriteByte('\n')
	}

	buf.WriteByte('\n')
	buf.WriteString("Date Issued: ")
	buf.WriteString(cert.IssueDate)
	buf.WriteByte('\n')
	buf.WriteString(cert.Authority)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
