// Package main provides the jobcraft command line: single and batch job profile
// generation, the HTTP API server and reference data maintenance.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/logging"
)

var (
	configPath      string
	verbose         bool
	apiKeyFlag      string
	dbURLFlag       string
	referenceSource string

	// Set by PersistentPreRunE before any command runs.
	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "jobcraft",
	Short: "Generate structured job descriptions",
	Long: `JobCraft drafts job profiles (mission, responsibilities, competencies, education, KPIs)
for a title, level and critical skill, grounded in the organization's competency
dictionary and official title catalog.

Configuration can be loaded from a JSON file using --config. Command-line flags override
config file values and environment variables fill anything still unset.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	rootCmd.PersistentFlags().StringVar(&dbURLFlag, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().StringVar(&referenceSource, "reference-source", "", "Reference data source: sheets, postgres or files")
}

func setup(cmd *cobra.Command, _ []string) error {
	resolved, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	cfg = resolved

	l, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// resolveConfig layers the config file, explicitly set flags, environment
// variables and built-in defaults, in that order of precedence.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	var c config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		c = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		c.APIKey = apiKeyFlag
	}
	if flags.Changed("db-url") {
		c.DatabaseURL = dbURLFlag
	}
	if flags.Changed("reference-source") {
		c.ReferenceSource = referenceSource
	}
	if flags.Changed("verbose") {
		c.Verbose = verbose
	}

	c.ApplyEnv()
	c = c.MergeWithDefaults(config.Defaults())
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
