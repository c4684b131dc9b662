package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobcraft/internal/schemas"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Validate job profile JSON files",
	Long: `Checks each file against the job profile schema, including the rule that NEW titles
carry official_title "N/A" and standardized titles name a catalog title.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	invalid := 0
	for _, path := range args {
		if err := validateFile(path); err != nil {
			invalid++
			_, _ = fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "✓ %s\n", path)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d files are invalid", invalid, len(args))
	}
	return nil
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = schemas.ParseJobProfile(string(data))
	return err
}
