package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/observability"
	"github.com/jonathan/jobcraft/internal/pipeline"
	"github.com/jonathan/jobcraft/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one job profile",
	Long: `Generates a job profile for a title, level and critical skill, reconciles the title
against the official catalog and optionally exports it.

Example:
  jobcraft generate --title "Sales Analyst" --level "Junior (0-2 years)" \
    --skill "CRM tools" --export pdf,markdown --out-dir out/`,
	RunE: runGenerate,
}

var (
	genTitle    string
	genLevel    string
	genSkill    string
	genExport   string
	genOutDir   string
	genRender   bool
	genOperator string
)

func init() {
	generateCmd.Flags().StringVar(&genTitle, "title", "", "Requested job title")
	generateCmd.Flags().StringVar(&genLevel, "level", "", "Seniority level")
	generateCmd.Flags().StringVar(&genSkill, "skill", "", "Critical skill for the position")
	generateCmd.Flags().StringVar(&genExport, "export", "", "Comma-separated export formats (text, csv, json, markdown, html, latex, pdf)")
	generateCmd.Flags().StringVarP(&genOutDir, "out-dir", "o", ".", "Directory for exported files")
	generateCmd.Flags().BoolVar(&genRender, "render", false, "Render the profile as Markdown in the terminal")
	generateCmd.Flags().StringVar(&genOperator, "operator", "", "Operator recorded in the generation log (defaults to N/A)")

	_ = generateCmd.MarkFlagRequired("title")
	_ = generateCmd.MarkFlagRequired("level")
	_ = generateCmd.MarkFlagRequired("skill")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	// Parse formats first so a typo fails before the model is called.
	var formats []export.Format
	if genExport != "" {
		parsed, err := export.ParseFormats(genExport)
		if err != nil {
			return err
		}
		formats = parsed
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	svc, err := newService(ctx, cfg, d, logger)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	svc.OnProgress = func(ev pipeline.ProgressEvent) {
		_, _ = fmt.Fprintf(stderr, "• %s\n", ev.Message)
	}

	req := types.GenerationRequest{Title: genTitle, Level: genLevel, CriticalSkill: genSkill}
	res, err := svc.Generate(ctx, req, genOperator)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	observability.NewPrinter(out).PrintJobProfile(res.Profile)
	if res.SaveErr != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: profile was not saved: %v\n", res.SaveErr)
	}
	if res.LogErr != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: generation log was not updated: %v\n", res.LogErr)
	}

	if genRender {
		rendered, err := observability.RenderMarkdown(string(export.RenderMarkdown(res.Profile)), 100)
		if err != nil {
			logger.Warn("markdown rendering failed", zap.Error(err))
		} else {
			_, _ = fmt.Fprint(out, rendered)
		}
	}

	if len(formats) == 0 {
		return nil
	}
	return writeExports(ctx, export.New(logger), formats, res.Profile, genOutDir, out)
}

// writeExports renders and writes each format. A failed format is reported and
// the others are still written.
func writeExports(ctx context.Context, exp *export.Exporter, formats []export.Format, p *types.JobProfile, dir string, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var errs []error
	for _, r := range exp.RenderAll(ctx, formats, p) {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		path := filepath.Join(dir, export.Filename(p, r.Format))
		if err := os.WriteFile(path, r.Data, 0o644); err != nil {
			errs = append(errs, &export.ExportError{Format: r.Format, Cause: err})
			continue
		}
		_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
	}
	return errors.Join(errs...)
}
