package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/observability"
	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/types"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Inspect and copy the competency dictionary and title catalog",
}

var referenceListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the reference tables from the configured source",
	RunE:  runReferenceList,
}

var referenceExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the reference tables to local files for offline use",
	Long: `Fetches both tables from the configured source and writes competencies.<ext> and
catalog.<ext> to --dir. The files can be read back with --reference-source files.`,
	RunE: runReferenceExport,
}

var referenceImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the database reference tables with local files",
	RunE:  runReferenceImport,
}

var (
	refJSON   bool
	refDir    string
	refFormat string
)

func init() {
	referenceListCmd.Flags().BoolVar(&refJSON, "json", false, "Print both tables as JSON")
	referenceExportCmd.Flags().StringVar(&refDir, "dir", "reference", "Output directory")
	referenceExportCmd.Flags().StringVar(&refFormat, "format", "csv", "File format: csv, json or yaml")
	referenceImportCmd.Flags().StringVar(&refDir, "dir", "reference", "Directory holding competencies and catalog files")

	referenceCmd.AddCommand(referenceListCmd, referenceExportCmd, referenceImportCmd)
	rootCmd.AddCommand(referenceCmd)
}

// Column headers written by export, matching the organization's worksheets.
var (
	competencyHeader = []string{"Familia", "Definición"}
	catalogHeader    = []string{"Título", "Nivel"}
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadSnapshot(ctx context.Context) (types.ReferenceSnapshot, error) {
	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return types.ReferenceSnapshot{}, err
	}
	defer d.Close()
	return refdata.Snapshot(ctx, d.source)
}

func runReferenceList(cmd *cobra.Command, _ []string) error {
	snap, err := loadSnapshot(commandContext(cmd))
	if err != nil {
		return err
	}
	return printSnapshot(cmd, snap, refJSON)
}

func printSnapshot(cmd *cobra.Command, snap types.ReferenceSnapshot, asJSON bool) error {
	out := cmd.OutOrStdout()
	if !asJSON {
		observability.NewPrinter(out).PrintReferenceSnapshot(snap)
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func runReferenceExport(cmd *cobra.Command, _ []string) error {
	ext, err := tableExtension(refFormat)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(commandContext(cmd))
	if err != nil {
		return err
	}
	paths, err := writeSnapshot(refDir, ext, snap)
	if err != nil {
		return err
	}
	for _, p := range paths {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", p)
	}
	return nil
}

func tableExtension(format string) (string, error) {
	switch format {
	case "csv", "json", "yaml":
		return "." + format, nil
	case "yml":
		return ".yaml", nil
	}
	return "", fmt.Errorf("unsupported reference format %q (use csv, json or yaml)", format)
}

func writeSnapshot(dir, ext string, snap types.ReferenceSnapshot) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	compPath := filepath.Join(dir, refdata.CompetenciesFile+ext)
	err := refdata.WriteTable(compPath, competencyHeader, snap.Competencies, func(e types.CompetencyEntry) []string {
		return []string{e.Family, e.Definition}
	})
	if err != nil {
		return nil, err
	}
	catPath := filepath.Join(dir, refdata.CatalogFile+ext)
	err = refdata.WriteTable(catPath, catalogHeader, snap.Catalog, func(e types.CatalogEntry) []string {
		return []string{e.Title, e.Level}
	})
	if err != nil {
		return nil, err
	}
	return []string{compPath, catPath}, nil
}

func runReferenceImport(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if cfg.DatabaseURL == "" {
		return &config.ConfigError{Field: "database_url", Message: "DATABASE_URL environment variable or --db-url flag is required"}
	}

	snap, err := refdata.Snapshot(ctx, &refdata.FileSource{Dir: refDir, Columns: columnsFor(cfg)})
	if err != nil {
		return err
	}

	d, err := openDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.db.ReplaceCompetencies(ctx, snap.Competencies); err != nil {
		return err
	}
	if err := d.db.ReplaceCatalog(ctx, snap.Catalog); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d competencies and %d catalog titles\n", len(snap.Competencies), len(snap.Catalog))
	return nil
}
