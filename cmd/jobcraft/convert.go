package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert FILE",
	Short: "Convert an exported profile to other formats",
	Long: `Reads a profile previously exported as text, csv, html or json and writes it in the
formats given by --export.

Example:
  jobcraft convert jobcraft_sales-analyst_junior.txt --export pdf,latex --out-dir out/`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var (
	convFrom   string
	convExport string
	convOutDir string
)

func init() {
	convertCmd.Flags().StringVar(&convFrom, "from", "", "Input format (text, csv, html or json); defaults to the file extension")
	convertCmd.Flags().StringVar(&convExport, "export", "json", "Comma-separated output formats")
	convertCmd.Flags().StringVarP(&convOutDir, "out-dir", "o", ".", "Directory for converted files")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	formats, err := export.ParseFormats(convExport)
	if err != nil {
		return err
	}
	p, err := decodeFile(args[0], convFrom)
	if err != nil {
		return err
	}
	return writeExports(commandContext(cmd), export.New(logger), formats, p, convOutDir, cmd.OutOrStdout())
}

// decodeFile reads a profile in the named format, or the one implied by the
// file extension when from is empty.
func decodeFile(path, from string) (*types.JobProfile, error) {
	if from == "" {
		from = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	format, err := export.ParseFormat(from)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case export.FormatText:
		return export.DecodeText(data)
	case export.FormatCSV:
		return export.DecodeCSV(data)
	case export.FormatHTML:
		return export.DecodeHTML(data)
	case export.FormatJSON:
		return export.DecodeJSON(data)
	}
	return nil, fmt.Errorf("cannot read %s files; convert from text, csv, html or json", format)
}
