package main

import (
	"context"
	"fmt"
	"log/slog"

	certgen "github.com/goliatone/go-certgen"
	"github.com/goliatone/go-certgen/internal/config"
	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/orchestrator"
	"github.com/goliatone/go-certgen/pkg/persist"
	"github.com/goliatone/go-certgen/pkg/schema"
)

// app holds what every subcommand shares: configuration, logger, catalog and
// the snapshot backend.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	schema  *schema.Schema
	backend persist.Backend
	closers []func() error
}

// newApp loads configuration and the catalog. One-shot commands pass
// withStorage=false and run against an in-memory backend.
func newApp(ctx context.Context, flags *globalFlags, withStorage bool) (*app, error) {
	path := flags.configPath
	if path == "" && config.Exists(config.DefaultPath) {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger := newLogger(level)
	slog.SetDefault(logger)

	catalog, err := certgen.LoadCatalog(ctx, cfg.Catalog.Path, cfg.Catalog.Component)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, schema: catalog}
	if !withStorage {
		a.backend = persist.NewMemoryBackend()
		return a, nil
	}
	if err := a.openBackend(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openBackend(ctx context.Context) error {
	switch a.cfg.Storage.Backend {
	case config.StorageMemory:
		a.backend = persist.NewMemoryBackend()
	case config.StorageFile:
		backend, err := persist.NewFileBackend(a.cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("open file storage: %w", err)
		}
		a.backend = backend
	case config.StorageRedis:
		client, err := persist.DialRedis(ctx, a.cfg.Storage.RedisURL)
		if err != nil {
			return fmt.Errorf("open redis storage: %w", err)
		}
		backend := persist.NewRedisBackend(client, a.cfg.Storage.Prefix)
		a.backend = backend
		a.closers = append(a.closers, backend.Close)
	default:
		return fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
	a.logger.Debug("storage ready", "backend", a.cfg.Storage.Backend)
	return nil
}

// orchestrator assembles the configured pieces around surface. Extra options
// are applied last.
func (a *app) orchestrator(surface export.Surface, extra ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	options := []orchestrator.Option{
		orchestrator.WithSchema(a.schema),
		orchestrator.WithBackend(a.backend),
		orchestrator.WithStorageKey(a.cfg.Storage.Key),
		orchestrator.WithTheme(a.cfg.Theme.Name, a.cfg.Theme.Variant),
		orchestrator.WithDefaultRenderer(a.cfg.Export.Renderer),
		orchestrator.WithSettleDelay(a.cfg.Export.SettleDelay),
		orchestrator.WithLogger(a.logger),
	}
	if surface != nil {
		options = append(options, orchestrator.WithSurface(surface))
	}
	return orchestrator.New(append(options, extra...)...)
}

func (a *app) printSurface() (*export.DirSurface, error) {
	surface, err := export.NewDirSurface(a.cfg.Export.Dir)
	if err != nil {
		return nil, fmt.Errorf("open export dir: %w", err)
	}
	return surface, nil
}

// Close releases the backend connections, logging failures.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}
