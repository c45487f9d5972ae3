package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-certgen/internal/httpapi"
	"github.com/goliatone/go-certgen/internal/metrics"
	"github.com/goliatone/go-certgen/pkg/export"
	"github.com/goliatone/go-certgen/pkg/notify"
	"github.com/goliatone/go-certgen/pkg/orchestrator"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the certificate form over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides server.addr")
	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, addr string) error {
	a, err := newApp(ctx, flags, true)
	if err != nil {
		return err
	}
	defer a.Close()
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	dir, err := a.printSurface()
	if err != nil {
		return err
	}
	recorder := export.NewRecorder(dir)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	tray := notify.NewTray(notify.WithTTL(a.cfg.NotificationTTL))
	notifier := m.Notifier(notify.Fanout{tray, notify.LogNotifier{Logger: a.logger}})

	o, err := a.orchestrator(recorder, orchestrator.WithNotifier(notifier))
	if err != nil {
		return err
	}
	sess, err := o.NewSession(ctx)
	if err != nil {
		return err
	}

	handler, err := httpapi.New(sess, o.Registry(),
		httpapi.WithTray(tray),
		httpapi.WithDocuments(recorder),
		httpapi.WithMetrics(m, registry),
		httpapi.WithTheme(o.Theme()),
		httpapi.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}

	srv := httpapi.NewServer(addr, handler.Routes())
	a.logger.Info("certgen ready",
		"version", Version,
		"addr", addr,
		"storage", a.cfg.Storage.Backend,
		"export_dir", a.cfg.Export.Dir)
	return httpapi.Serve(ctx, srv)
}
