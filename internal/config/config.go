// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Reference data source kinds.
const (
	SourceSheets   = "sheets"
	SourcePostgres = "postgres"
	SourceFiles    = "files"
)

// Mail transports.
const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
)

// Default worksheet names used by the organization's spreadsheet.
const (
	DefaultCompetencyWorksheet = "Diccionario Competencias"
	DefaultCatalogWorksheet    = "Catálogo Puestos"
	DefaultLogWorksheet        = "Seguimiento Generaciones"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, CLI flags or environment variables.
type Config struct {
	// Generation
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	Model       string `json:"model,omitempty"`        // Model override for the standard tier
	MaxAttempts int    `json:"max_attempts,omitempty"` // Retry attempts for transient upstream failures
	RetryDelay  string `json:"retry_delay,omitempty"`  // Fixed delay between attempts, e.g. "2s"

	// Reference data
	ReferenceSource     string `json:"reference_source,omitempty"`     // sheets, postgres or files
	SheetID             string `json:"sheet_id,omitempty"`             // Google spreadsheet ID
	CredentialsFile     string `json:"credentials_file,omitempty"`     // Service account credentials
	CompetencyWorksheet string `json:"competency_worksheet,omitempty"` // Competency dictionary worksheet
	CatalogWorksheet    string `json:"catalog_worksheet,omitempty"`    // Title catalog worksheet
	LogWorksheet        string `json:"log_worksheet,omitempty"`        // Generation log worksheet
	ReferenceDir        string `json:"reference_dir,omitempty"`        // Directory with competencies/catalog files
	CacheTTL            string `json:"cache_ttl,omitempty"`            // Reference cache window, e.g. "1h"
	FamilyColumn        string `json:"family_column,omitempty"`        // Competency family header; empty uses built-in aliases
	DefinitionColumn    string `json:"definition_column,omitempty"`    // Competency definition header
	TitleColumn         string `json:"title_column,omitempty"`         // Catalog title header
	LevelColumn         string `json:"level_column,omitempty"`         // Catalog level header

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	LogCSV      string `json:"log_csv,omitempty"`      // Append-only CSV log path

	// Notification
	MailTransport  string `json:"mail_transport,omitempty"`  // smtp or gmail
	SMTPHost       string `json:"smtp_host,omitempty"`       // SMTP server host
	SMTPPort       int    `json:"smtp_port,omitempty"`       // SMTP server port
	SenderEmail    string `json:"sender_email,omitempty"`    // From address
	AppPassword    string `json:"app_password,omitempty"`    // SMTP application password
	RecipientEmail string `json:"recipient_email,omitempty"` // Fixed notification recipient

	// Server
	OperatorPasswordHash string `json:"operator_password_hash,omitempty"` // bcrypt hash; enables auth when set

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Debug logging
}

// ConfigError reports missing or invalid configuration. It is always fatal and is
// raised before any network call is made.
//
//nolint:revive // ConfigError reads better than Error at call sites
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		MaxAttempts:         3,
		RetryDelay:          "2s",
		ReferenceSource:     SourceFiles,
		CompetencyWorksheet: DefaultCompetencyWorksheet,
		CatalogWorksheet:    DefaultCatalogWorksheet,
		LogWorksheet:        DefaultLogWorksheet,
		ReferenceDir:        "reference",
		CacheTTL:            "1h",
		MailTransport:       TransportSMTP,
		SMTPHost:            "smtp.gmail.com",
		SMTPPort:            587,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv fills empty fields from environment variables.
func (c *Config) ApplyEnv() {
	envString(&c.APIKey, "GEMINI_API_KEY")
	envString(&c.Model, "GEMINI_MODEL")
	envString(&c.DatabaseURL, "DATABASE_URL")
	envString(&c.SheetID, "GOOGLE_SHEET_ID")
	envString(&c.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	envString(&c.ReferenceSource, "JOBCRAFT_REFERENCE_SOURCE")
	envString(&c.ReferenceDir, "JOBCRAFT_REFERENCE_DIR")
	envString(&c.LogCSV, "JOBCRAFT_LOG_CSV")
	envString(&c.SenderEmail, "SENDER_EMAIL")
	envString(&c.AppPassword, "SMTP_APP_PASSWORD")
	envString(&c.RecipientEmail, "RECIPIENT_EMAIL")
	envString(&c.OperatorPasswordHash, "OPERATOR_PASSWORD_HASH")
}

func envString(field *string, key string) {
	if *field != "" {
		return
	}
	if value := os.Getenv(key); value != "" {
		*field = value
	}
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.RetryDelay, defaults.RetryDelay)
	mergeString(&result.ReferenceSource, defaults.ReferenceSource)
	mergeString(&result.SheetID, defaults.SheetID)
	mergeString(&result.CredentialsFile, defaults.CredentialsFile)
	mergeString(&result.CompetencyWorksheet, defaults.CompetencyWorksheet)
	mergeString(&result.CatalogWorksheet, defaults.CatalogWorksheet)
	mergeString(&result.LogWorksheet, defaults.LogWorksheet)
	mergeString(&result.ReferenceDir, defaults.ReferenceDir)
	mergeString(&result.CacheTTL, defaults.CacheTTL)
	mergeString(&result.FamilyColumn, defaults.FamilyColumn)
	mergeString(&result.DefinitionColumn, defaults.DefinitionColumn)
	mergeString(&result.TitleColumn, defaults.TitleColumn)
	mergeString(&result.LevelColumn, defaults.LevelColumn)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.LogCSV, defaults.LogCSV)
	mergeString(&result.MailTransport, defaults.MailTransport)
	mergeString(&result.SMTPHost, defaults.SMTPHost)
	mergeString(&result.SenderEmail, defaults.SenderEmail)
	mergeString(&result.AppPassword, defaults.AppPassword)
	mergeString(&result.RecipientEmail, defaults.RecipientEmail)
	mergeString(&result.OperatorPasswordHash, defaults.OperatorPasswordHash)

	// Int fields: use default if zero
	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.SMTPPort == 0 {
		result.SMTPPort = defaults.SMTPPort
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func mergeString(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// Validate checks that the configuration has valid values.
// Required-ness of the API key is checked separately by RequireAPIKey since
// some commands (validate, convert, migrate) never call the model.
func (c *Config) Validate() error {
	if c.MaxAttempts < 0 {
		return &ConfigError{Field: "max_attempts", Message: "must be non-negative"}
	}
	if c.SMTPPort < 0 || c.SMTPPort > 65535 {
		return &ConfigError{Field: "smtp_port", Message: fmt.Sprintf("out of range: %d", c.SMTPPort)}
	}
	if c.RetryDelay != "" {
		if _, err := c.RetryDelayDuration(); err != nil {
			return &ConfigError{Field: "retry_delay", Message: err.Error()}
		}
	}
	if c.CacheTTL != "" {
		if _, err := c.CacheTTLDuration(); err != nil {
			return &ConfigError{Field: "cache_ttl", Message: err.Error()}
		}
	}

	switch c.ReferenceSource {
	case "", SourceFiles:
	case SourceSheets:
		if c.SheetID == "" {
			return &ConfigError{Field: "sheet_id", Message: "required when reference_source is sheets"}
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return &ConfigError{Field: "database_url", Message: "required when reference_source is postgres"}
		}
	default:
		return &ConfigError{Field: "reference_source", Message: fmt.Sprintf("unknown source %q", c.ReferenceSource)}
	}

	switch c.MailTransport {
	case "", TransportSMTP, TransportGmail:
	default:
		return &ConfigError{Field: "mail_transport", Message: fmt.Sprintf("unknown transport %q", c.MailTransport)}
	}

	return nil
}

// RequireAPIKey returns a ConfigError when no model credentials are configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return &ConfigError{
			Field:   "api_key",
			Message: "GEMINI_API_KEY environment variable or --api-key flag is required",
		}
	}
	return nil
}

// RequireMail returns a ConfigError when notification settings are incomplete.
func (c *Config) RequireMail() error {
	if c.RecipientEmail == "" {
		return &ConfigError{Field: "recipient_email", Message: "required for notifications"}
	}
	if c.MailTransport == TransportGmail {
		if c.CredentialsFile == "" {
			return &ConfigError{Field: "credentials_file", Message: "required for the gmail transport"}
		}
		return nil
	}
	if c.SenderEmail == "" {
		return &ConfigError{Field: "sender_email", Message: "required for the smtp transport"}
	}
	if c.AppPassword == "" {
		return &ConfigError{Field: "app_password", Message: "required for the smtp transport"}
	}
	return nil
}

// RetryDelayDuration parses RetryDelay.
func (c *Config) RetryDelayDuration() (time.Duration, error) {
	return parseDuration(c.RetryDelay)
}

// CacheTTLDuration parses CacheTTL.
func (c *Config) CacheTTLDuration() (time.Duration, error) {
	return parseDuration(c.CacheTTL)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be non-negative: %s", s)
	}
	return d, nil
}
