package render

import (
	"context"
)

// Renderer converts a Certificate into a byte representation (HTML, text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, cert Certificate, options RenderOptions) ([]byte, error)
}
