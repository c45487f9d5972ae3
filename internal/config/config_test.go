package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "certgen.yaml")
	body := `
server:
  addr: ":9090"
storage:
  backend: redis
  redis_url: redis://localhost:6379/0
export:
  settle_delay: 250ms
theme:
  name: registry
  variant: mono
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CERTGEN_ADDR", "127.0.0.1:7000")
	t.Setenv("CERTGEN_NOTIFICATION_TTL", "5s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Fatalf("env override not applied: %q", cfg.Server.Addr)
	}
	if cfg.Storage.Backend != StorageRedis || cfg.Storage.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("storage not loaded: %+v", cfg.Storage)
	}
	if cfg.Storage.Prefix != "certgen:" {
		t.Fatalf("defaults should survive partial files: %+v", cfg.Storage)
	}
	if cfg.Export.SettleDelay != 250*time.Millisecond || cfg.NotificationTTL != 5*time.Second {
		t.Fatalf("durations not parsed: %v %v", cfg.Export.SettleDelay, cfg.NotificationTTL)
	}
	if cfg.Theme.Variant != "mono" {
		t.Fatalf("theme variant = %q", cfg.Theme.Variant)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend": {"CERTGEN_STORAGE": "etcd"},
		"redis no url":    {"CERTGEN_STORAGE": "redis"},
		"bad duration":    {"CERTGEN_EXPORT_SETTLE": "soon"},
		"zero ttl":        {"CERTGEN_NOTIFICATION_TTL": "0s"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil || !strings.HasPrefix(err.Error(), "config: ") {
				t.Fatalf("expected config error, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
	if Exists(filepath.Join(t.TempDir(), "absent.yaml")) {
		t.Fatalf("absent file reported as existing")
	}
}
