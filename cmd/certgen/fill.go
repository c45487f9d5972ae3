package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-certgen/pkg/orchestrator"
	"github.com/goliatone/go-certgen/pkg/renderers/text"
	"github.com/goliatone/go-certgen/pkg/renderers/tui"
)

func fillCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fill",
		Short: "Fill in the certificate from the terminal",
		Long: `Fill prompts for every editable field, restoring the last saved
values as defaults, then offers a menu to generate the certificate, print it,
edit a field or reset the form.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags, true)
			if err != nil {
				return err
			}
			defer a.Close()

			surface, err := a.printSurface()
			if err != nil {
				return err
			}
			runner := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithPreviewRenderer(text.New()),
			)
			o, err := a.orchestrator(surface, orchestrator.WithNotifier(runner.Notifier()))
			if err != nil {
				return err
			}
			sess, err := o.NewSession(ctx)
			if err != nil {
				return err
			}
			if err := runner.Run(ctx, sess); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					return nil
				}
				return err
			}
			return nil
		},
	}
}
