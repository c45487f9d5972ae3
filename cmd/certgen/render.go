package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-certgen/pkg/orchestrator"
	"github.com/goliatone/go-certgen/pkg/render"
	"github.com/goliatone/go-certgen/pkg/schema"
	"github.com/goliatone/go-certgen/pkg/session"
)

type renderFlags struct {
	values     string
	renderer   string
	output     string
	standalone bool
}

func renderCmd(flags *globalFlags) *cobra.Command {
	opts := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a certificate once from a values file",
		Long: `Render reads field values from a YAML or JSON file, runs them through
the same pipeline as the interactive form and writes the certificate to a
file or stdout. Incomplete forms list the missing fields and fail.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, flags, false)
			if err != nil {
				return err
			}
			defer a.Close()

			values, err := schema.ReadValuesFile(opts.values)
			if err != nil {
				return err
			}
			o, err := a.orchestrator(nil)
			if err != nil {
				return err
			}
			out, err := o.Generate(ctx, orchestrator.Request{
				Values:     values,
				Renderer:   opts.renderer,
				Standalone: opts.standalone,
			})
			var incomplete *orchestrator.IncompleteError
			if errors.As(err, &incomplete) {
				return incompleteError(a.schema, incomplete.Missing)
			}
			if err != nil {
				return err
			}

			if opts.output == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(opts.output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Certificate written to %s\n", opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.values, "values", "f", "", "Values file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.renderer, "renderer", "r", "", "Renderer to use (certificate, text); defaults to export.renderer")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.standalone, "standalone", true, "Render a complete printable HTML page")
	_ = cmd.MarkFlagRequired("values")
	return cmd
}

func incompleteError(s *schema.Schema, missing []string) error {
	messages := render.MissingFieldErrors(s, missing)
	var lines []string
	for _, key := range missing {
		lines = append(lines, messages[key]...)
	}
	return fmt.Errorf("%s\n  %s", session.MessageIncomplete, strings.Join(lines, "\n  "))
}
