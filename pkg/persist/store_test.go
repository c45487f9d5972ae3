package persist_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-certgen/pkg/persist"
	"github.com/goliatone/go-certgen/pkg/schema"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRoundTripKeepsSchemaKeysOnly(t *testing.T) {
	ctx := context.Background()
	store := persist.New(persist.NewMemoryBackend(), schema.Default(), persist.WithLogger(quietLogger()))

	values := schema.Values{
		"fullName":    "Jane Ann Doe",
		"dateOfBirth": "2024-03-07",
		"timeOfBirth": "",
		"nickname":    "JJ",
	}
	if err := store.Save(ctx, values); err != nil {
		t.Fatalf("save: %v", err)
	}

	want := schema.Values{
		"fullName":    "Jane Ann Doe",
		"dateOfBirth": "2024-03-07",
		"timeOfBirth": "",
	}
	if diff := cmp.Diff(want, store.Load(ctx)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveIsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := persist.New(nil, schema.Default())

	_ = store.Save(ctx, schema.Values{"fullName": "First", "gender": "F"})
	_ = store.Save(ctx, schema.Values{"fullName": "Second"})

	if diff := cmp.Diff(schema.Values{"fullName": "Second"}, store.Load(ctx)); diff != "" {
		t.Fatalf("load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"malformed":   "{not json",
		"array":       `["fullName"]`,
		"wrong types": `{"fullName": 42, "gender": null, "dateOfBirth": {"y": 2024}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			backend := persist.NewMemoryBackend()
			_ = backend.Set(ctx, persist.DefaultKey, raw)
			store := persist.New(backend, schema.Default(), persist.WithLogger(quietLogger()))

			got := store.Load(ctx)
			if len(got) != 0 {
				t.Fatalf("expected empty values, got %v", got)
			}
		})
	}

	empty := persist.New(persist.NewMemoryBackend(), schema.Default())
	if got := empty.Load(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil values when absent, got %#v", got)
	}
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func (failingBackend) Set(context.Context, string, string) error {
	return errors.New("disk on fire")
}

func TestBackendErrors(t *testing.T) {
	ctx := context.Background()
	store := persist.New(failingBackend{}, schema.Default(), persist.WithLogger(quietLogger()))

	if got := store.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty values on read failure, got %v", got)
	}
	if err := store.Save(ctx, schema.Values{"fullName": "x"}); err == nil {
		t.Fatalf("expected save to surface the write failure")
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")
	backend, err := persist.NewFileBackend(dir)
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	store := persist.New(backend, schema.Default(), persist.WithKey("custom"))

	if _, ok, err := backend.Get(ctx, "custom"); ok || err != nil {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	values := schema.Values{"fullName": "Jane", "issuingAuthority": "Clerk"}
	if err := store.Save(ctx, values); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.json")); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}
	if diff := cmp.Diff(values, store.Load(ctx)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestNewFileBackendRequiresDir(t *testing.T) {
	if _, err := persist.NewFileBackend("  "); err == nil {
		t.Fatalf("expected error for blank directory")
	}
}

func TestRedisBackendUnavailableFailsSoft(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	backend := persist.NewRedisBackend(client, "certgen:")
	defer backend.Close()

	store := persist.New(backend, schema.Default(), persist.WithLogger(quietLogger()))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if got := store.Load(ctx); len(got) != 0 {
		t.Fatalf("expected empty values when redis is unreachable, got %v", got)
	}
	if err := store.Save(ctx, schema.Values{"fullName": "Jane"}); err == nil {
		t.Fatalf("expected save error when redis is unreachable")
	}
}

func TestDialRedisRejectsBadURL(t *testing.T) {
	if _, err := persist.DialRedis(context.Background(), "::not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}
