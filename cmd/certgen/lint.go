package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-certgen/pkg/schema"
)

type fileViolation struct {
	file string
	schema.Violation
}

func lintCmd() *cobra.Command {
	var component string

	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check field catalogs for unsupported extensions",
		Long: `Lint loads each catalog and reports problems. With --component the
files are read as OpenAPI documents and the named schema is checked for
unknown ` + schema.ExtensionNamespace + ` extensions, bad field ordering and
unsupported formats.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			violations, err := lintFiles(cmd.Context(), args, component)
			if err != nil {
				return err
			}
			if len(violations) == 0 {
				return nil
			}
			printViolations(cmd.ErrOrStderr(), violations)
			return fmt.Errorf("%d lint violation(s)", len(violations))
		},
	}
	cmd.Flags().StringVar(&component, "component", "", "OpenAPI schema component holding the catalog")
	return cmd
}

func lintFiles(ctx context.Context, paths []string, component string) ([]fileViolation, error) {
	var out []fileViolation
	for _, path := range paths {
		if component == "" {
			if _, err := schema.LoadFile(path); err != nil {
				out = append(out, fileViolation{file: path, Violation: schema.Violation{Location: "catalog", Message: err.Error()}})
			}
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", path, err)
		}
		doc, err := schema.NewDocument(schema.SourceFromFile(path), raw)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", path, err)
		}
		found, err := schema.LintOpenAPI(ctx, doc, component)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", path, err)
		}
		for _, v := range found {
			out = append(out, fileViolation{file: path, Violation: v})
		}
	}
	return out, nil
}

func printViolations(w io.Writer, violations []fileViolation) {
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].file == violations[j].file {
			if violations[i].Location == violations[j].Location {
				return violations[i].Message < violations[j].Message
			}
			return violations[i].Location < violations[j].Location
		}
		return violations[i].file < violations[j].file
	})
	for _, v := range violations {
		fmt.Fprintf(w, "%s: %s\n", v.file, v.Violation)
	}
}
