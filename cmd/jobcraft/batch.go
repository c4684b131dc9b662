package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobcraft/internal/batch"
	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/notify"
	"github.com/jonathan/jobcraft/internal/observability"
	"github.com/jonathan/jobcraft/internal/store"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate profiles for every row of an input file",
	Long: `Reads title, level and critical_skill rows from a CSV, JSON or YAML file and generates
one profile per row, in order. A failed row is reported and the run continues.

Each generated profile is appended as one row to --out-csv. With --notify, the first
profile is emailed to the configured recipient if it succeeded.`,
	RunE: runBatch,
}

var (
	batchIn       string
	batchNotify   bool
	batchOutCSV   string
	batchOperator string
)

func init() {
	batchCmd.Flags().StringVarP(&batchIn, "in", "i", "input_jobs.csv", "Input file with title, level and critical_skill columns")
	batchCmd.Flags().BoolVar(&batchNotify, "notify", false, "Email the first generated profile to the configured recipient")
	batchCmd.Flags().StringVar(&batchOutCSV, "out-csv", "jobcraft_output.csv", "Append generated profiles to this CSV file (empty to disable)")
	batchCmd.Flags().StringVar(&batchOperator, "operator", "", "Operator recorded in the generation log (defaults to N/A)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	reqs, err := batch.ReadRequests(batchIn)
	if err != nil {
		return err
	}

	runner := &batch.Runner{Operator: batchOperator, Logger: logger}
	if batchNotify {
		sender, err := notify.NewSender(ctx, &cfg, logger)
		if err != nil {
			return err
		}
		runner.Notifier = sender
		runner.Recipient = cfg.RecipientEmail
	}
	if batchOutCSV != "" {
		runner.Output = &store.CSVFile{Path: batchOutCSV, Header: export.CSVHeader()}
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
	runner.Generator = svc

	report := runner.Run(ctx, reqs)
	printReport(cmd, report)

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d profiles failed", report.Failed, report.Total)
	}
	return nil
}

func printReport(cmd *cobra.Command, report *batch.Report) {
	lines := make([]observability.BatchLine, 0, len(report.Items))
	for _, item := range report.Items {
		line := observability.BatchLine{Index: item.Index, Title: item.Request.Title, Err: item.Err}
		if item.Profile != nil {
			line.Origin = item.Profile.TitleOrigin
		}
		lines = append(lines, line)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintBatchSummary(lines, report.Notified)

	stderr := cmd.ErrOrStderr()
	if report.NotifyErr != nil {
		_, _ = fmt.Fprintf(stderr, "Warning: notification failed: %v\n", report.NotifyErr)
	}
	for _, item := range report.Items {
		if item.OutputErr != nil {
			_, _ = fmt.Fprintf(stderr, "Warning: row %d was not written to %s: %v\n", item.Index, batchOutCSV, item.OutputErr)
		}
	}
}
