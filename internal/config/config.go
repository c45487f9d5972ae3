// Package config loads host configuration from an optional YAML file with
// CERTGEN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named and it exists in the
// working directory.
const DefaultPath = "certgen.yaml"

// Storage backends.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

// Server captures HTTP host configuration.
type Server struct {
	Addr string `yaml:"addr"`
}

// Storage selects where form snapshots are kept.
type Storage struct {
	Backend  string `yaml:"backend"`
	Dir      string `yaml:"dir"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
	Key      string `yaml:"key"`
}

// Export configures the print surface.
type Export struct {
	Dir         string        `yaml:"dir"`
	SettleDelay time.Duration `yaml:"settle_delay"`
	Renderer    string        `yaml:"renderer"`
}

// Theme picks the certificate palette.
type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

// Catalog points at an alternative field catalog. Component selects a schema
// inside an OpenAPI document; when empty the file is read as a plain catalog.
type Catalog struct {
	Path      string `yaml:"path"`
	Component string `yaml:"component"`
}

// Config is the full host configuration.
type Config struct {
	Server          Server        `yaml:"server"`
	Storage         Storage       `yaml:"storage"`
	Export          Export        `yaml:"export"`
	Theme           Theme         `yaml:"theme"`
	Catalog         Catalog       `yaml:"catalog"`
	NotificationTTL time.Duration `yaml:"notification_ttl"`
	LogLevel        string        `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:          Server{Addr: ":8080"},
		Storage:         Storage{Backend: StorageFile, Dir: ".certgen", Prefix: "certgen:"},
		Export:          Export{Dir: "certificates", SettleDelay: 500 * time.Millisecond, Renderer: "certificate"},
		Theme:           Theme{Name: "registry"},
		NotificationTTL: 3 * time.Second,
		LogLevel:        "info",
	}
}

// Load reads path over the defaults (a missing file is not an error when
// path is empty) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"CERTGEN_ADDR":              &c.Server.Addr,
		"CERTGEN_STORAGE":           &c.Storage.Backend,
		"CERTGEN_STORAGE_DIR":       &c.Storage.Dir,
		"CERTGEN_REDIS_URL":         &c.Storage.RedisURL,
		"CERTGEN_REDIS_PREFIX":      &c.Storage.Prefix,
		"CERTGEN_STORAGE_KEY":       &c.Storage.Key,
		"CERTGEN_EXPORT_DIR":        &c.Export.Dir,
		"CERTGEN_EXPORT_RENDERER":   &c.Export.Renderer,
		"CERTGEN_THEME":             &c.Theme.Name,
		"CERTGEN_THEME_VARIANT":     &c.Theme.Variant,
		"CERTGEN_CATALOG":           &c.Catalog.Path,
		"CERTGEN_CATALOG_COMPONENT": &c.Catalog.Component,
		"CERTGEN_LOG_LEVEL":         &c.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	durations := map[string]*time.Duration{
		"CERTGEN_EXPORT_SETTLE":    &c.Export.SettleDelay,
		"CERTGEN_NOTIFICATION_TTL": &c.NotificationTTL,
	}
	for name, dst := range durations {
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
		*dst = d
	}
	return nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.Storage.Dir) == "" {
			errs = append(errs, errors.New("storage.dir is required for the file backend"))
		}
	case StorageRedis:
		if strings.TrimSpace(c.Storage.RedisURL) == "" {
			errs = append(errs, errors.New("storage.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}
	if c.Export.SettleDelay < 0 {
		errs = append(errs, errors.New("export.settle_delay must not be negative"))
	}
	if c.NotificationTTL <= 0 {
		errs = append(errs, errors.New("notification_ttl must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Exists reports whether something exists at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
