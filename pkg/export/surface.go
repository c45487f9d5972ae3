package export

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const stagingDir = ".staging"

// DirSurface spools documents into a directory. Render stages the file under
// .staging, Print publishes it as <name>-<id><ext>, and Close removes any
// staging leftovers.
type DirSurface struct {
	dir string

	mu      sync.Mutex
	pending map[string]string
}

// NewDirSurface returns a surface publishing into dir.
func NewDirSurface(dir string) (*DirSurface, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("export: output directory is required")
	}
	return &DirSurface{dir: filepath.Clean(dir), pending: make(map[string]string)}, nil
}

func (s *DirSurface) Render(ctx context.Context, doc Document) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	staging := filepath.Join(s.dir, stagingDir)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return Handle{}, fmt.Errorf("create staging dir: %w", err)
	}

	id := uuid.NewString()
	ext := doc.Extension()
	path := filepath.Join(staging, id+ext)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return Handle{}, fmt.Errorf("stage document: %w", err)
	}

	s.mu.Lock()
	s.pending[id] = filepath.Join(s.dir, doc.Name+"-"+id+ext)
	s.mu.Unlock()
	return Handle{ID: id, Location: path}, nil
}

func (s *DirSurface) Print(_ context.Context, h Handle) error {
	s.mu.Lock()
	target, ok := s.pending[h.ID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown document %q", h.ID)
	}
	if err := os.Rename(h.Location, target); err != nil {
		return fmt.Errorf("publish document: %w", err)
	}
	return nil
}

func (s *DirSurface) Close(_ context.Context, h Handle) error {
	s.mu.Lock()
	delete(s.pending, h.ID)
	s.mu.Unlock()
	if err := os.Remove(h.Location); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// PublishedPath returns where Print places the document for h.
func (s *DirSurface) PublishedPath(doc Document, h Handle) string {
	return filepath.Join(s.dir, doc.Name+"-"+h.ID+doc.Extension())
}

// MemorySurface keeps printed documents in memory and records every call.
// The HTTP host serves the last printed document from it.
type MemorySurface struct {
	// RenderErr, PrintErr and CloseErr force the matching step to fail.
	RenderErr error
	PrintErr  error
	CloseErr  error

	mu      sync.Mutex
	calls   []string
	open    map[string]Document
	printed []Document
}

// NewMemorySurface returns an empty in-memory surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{open: make(map[string]Document)}
}

func (s *MemorySurface) Render(_ context.Context, doc Document) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "render")
	if s.RenderErr != nil {
		return Handle{}, s.RenderErr
	}
	id := uuid.NewString()
	s.open[id] = doc
	return Handle{ID: id, Location: "memory:" + id}, nil
}

func (s *MemorySurface) Print(_ context.Context, h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "print")
	if s.PrintErr != nil {
		return s.PrintErr
	}
	doc, ok := s.open[h.ID]
	if !ok {
		return fmt.Errorf("unknown document %q", h.ID)
	}
	s.printed = append(s.printed, doc)
	return nil
}

func (s *MemorySurface) Close(_ context.Context, h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "close")
	delete(s.open, h.ID)
	return s.CloseErr
}

// Calls returns the recorded step names in order.
func (s *MemorySurface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Last returns the most recently printed document.
func (s *MemorySurface) Last() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.printed) == 0 {
		return Document{}, false
	}
	return s.printed[len(s.printed)-1], true
}

// Open reports how many documents are rendered but not yet closed.
func (s *MemorySurface) Open() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Recorder wraps a surface and remembers the last document it printed, so a
// directory spool can still back the HTTP document endpoint.
type Recorder struct {
	inner Surface

	mu      sync.Mutex
	pending map[string]Document
	last    *Document
}

// NewRecorder wraps inner.
func NewRecorder(inner Surface) *Recorder {
	return &Recorder{inner: inner, pending: make(map[string]Document)}
}

func (r *Recorder) Render(ctx context.Context, doc Document) (Handle, error) {
	h, err := r.inner.Render(ctx, doc)
	if err != nil {
		return h, err
	}
	r.mu.Lock()
	r.pending[h.ID] = doc
	r.mu.Unlock()
	return h, nil
}

func (r *Recorder) Print(ctx context.Context, h Handle) error {
	if err := r.inner.Print(ctx, h); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.pending[h.ID]; ok {
		r.last = &doc
	}
	return nil
}

func (r *Recorder) Close(ctx context.Context, h Handle) error {
	r.mu.Lock()
	delete(r.pending, h.ID)
	r.mu.Unlock()
	return r.inner.Close(ctx, h)
}

// Last returns the most recently printed document.
func (r *Recorder) Last() (Document, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Document{}, false
	}
	return *r.last, true
}
