// Package persist saves and restores the form values as a single JSON
// snapshot under a fixed key. Writes are last-write-wins; reads fail soft
// and yield empty values when the snapshot is absent or malformed.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-certgen/pkg/schema"
)

// DefaultKey is the storage identifier of the snapshot.
const DefaultKey = "birthCertificateData"

// Backend is a string key/value store.
type Backend interface {
	// Get returns the stored value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			s.key = trimmed
		}
	}
}

// WithLogger sets the logger used to report soft failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store reads and writes snapshots of schema values.
type Store struct {
	backend Backend
	schema  *schema.Schema
	key     string
	logger  *slog.Logger
}

// New constructs a Store. When backend is nil an in-memory backend is used.
func New(backend Backend, s *schema.Schema, options ...Option) *Store {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	store := &Store{
		backend: backend,
		schema:  s,
		key:     DefaultKey,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Key returns the storage key in use.
func (s *Store) Key() string {
	return s.key
}

// Save overwrites the snapshot with values.
func (s *Store) Save(ctx context.Context, values schema.Values) error {
	if values == nil {
		values = schema.Values{}
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("persist: encode snapshot: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, string(payload)); err != nil {
		return fmt.Errorf("persist: write snapshot %q: %w", s.key, err)
	}
	return nil
}

// Load restores the last snapshot. Keys outside the schema and non-string
// values are dropped; any read or decode failure yields empty values.
func (s *Store) Load(ctx context.Context) schema.Values {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "snapshot read failed, starting empty", "key", s.key, "error", err)
		return schema.Values{}
	}
	if !ok {
		return schema.Values{}
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		s.logger.WarnContext(ctx, "snapshot malformed, starting empty", "key", s.key, "error", err)
		return schema.Values{}
	}

	values := make(schema.Values, len(decoded))
	for key, rawValue := range decoded {
		if !s.schema.Has(key) {
			continue
		}
		var value string
		if err := json.Unmarshal(rawValue, &value); err != nil {
			continue
		}
		values[key] = value
	}
	return values
}
