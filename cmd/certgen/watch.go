package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-certgen/internal/watch"
	"github.com/goliatone/go-certgen/pkg/notify"
	"github.com/goliatone/go-certgen/pkg/orchestrator"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/renderers/certificate"
	"github.com/goliatone/go-certgen/pkg/session"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var (
		valuesPath string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a certificate preview in sync with a values file",
		Long: `Watch applies a YAML or JSON values file to the saved form every time
the file changes and rewrites the HTML preview, so the certificate can be
edited from any text editor.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, flags, valuesPath, outputPath)
		},
	}

	cmd.Flags().StringVarP(&valuesPath, "values", "f", "", "Values file to watch (YAML or JSON)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "preview.html", "Preview file rewritten after every change")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func runWatch(ctx context.Context, flags *globalFlags, valuesPath, outputPath string) error {
	a, err := newApp(ctx, flags, true)
	if err != nil {
		return err
	}
	defer a.Close()

	o, err := a.orchestrator(nil, orchestrator.WithNotifier(notify.LogNotifier{Logger: a.logger}))
	if err != nil {
		return err
	}
	sess, err := o.NewSession(ctx)
	if err != nil {
		return err
	}
	preview, err := o.Registry().Get(certificate.Name)
	if err != nil {
		return err
	}

	publish := func(ctx context.Context) error {
		out, err := preview.Render(ctx, sess.Certificate(), render.RenderOptions{
			Standalone: true,
			Theme:      o.Theme(),
		})
		if err != nil {
			return fmt.Errorf("render preview: %w", err)
		}
		if err := os.WriteFile(outputPath, out, 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		return nil
	}

	w, err := watch.New(valuesPath, sess,
		watch.WithOrder(a.schema.Keys()),
		watch.WithLogger(a.logger),
		watch.WithOnApply(func(ctx context.Context, changed []string, syncErr error) {
			if syncErr != nil {
				a.logger.Warn("values sync incomplete", "path", valuesPath, "error", syncErr)
			}
			if len(changed) == 0 {
				return
			}
			if err := publish(ctx); err != nil {
				a.logger.Error("preview update failed", "error", err)
				return
			}
			a.logger.Info("preview updated",
				"output", outputPath,
				"changed", changed,
				"valid", sess.Snapshot().Valid)
		}),
	)
	if err != nil {
		return err
	}

	if err := publish(ctx); err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("watching values file", "path", w.Path(), "output", outputPath)

	<-ctx.Done()
	if err := w.Stop(); err != nil {
		return err
	}
	return nil
}

var _ watch.Applier = (*session.Session)(nil)
