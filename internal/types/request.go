package types

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// GenerationRequest carries the operator inputs for one job profile.
type GenerationRequest struct {
	Title         string `json:"title" yaml:"title" validate:"required,max=200"`
	Level         string `json:"level" yaml:"level" validate:"required,max=100"`
	CriticalSkill string `json:"critical_skill" yaml:"critical_skill" validate:"required,max=2000"`
}

// Normalize trims surrounding whitespace from every input.
func (r *GenerationRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Level = strings.TrimSpace(r.Level)
	r.CriticalSkill = strings.TrimSpace(r.CriticalSkill)
}

// Validate validates the GenerationRequest using the validator.
func (r *GenerationRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// LogRecord is one append-only row describing a successful generation.
type LogRecord struct {
	Timestamp     time.Time   `json:"timestamp"`
	Title         string      `json:"title"`
	Level         string      `json:"level"`
	Origin        TitleOrigin `json:"origin"`
	CriticalSkill string      `json:"critical_skill"`
	Operator      string      `json:"operator"`
}

// NewLogRecord builds the log row for a generated profile.
func NewLogRecord(at time.Time, req GenerationRequest, profile *JobProfile, operator string) LogRecord {
	if operator == "" {
		operator = "N/A"
	}
	return LogRecord{
		Timestamp:     at,
		Title:         profile.Title,
		Level:         profile.Level,
		Origin:        profile.TitleOrigin,
		CriticalSkill: req.CriticalSkill,
		Operator:      operator,
	}
}

// Row returns the record as spreadsheet cells.
func (r LogRecord) Row() []string {
	return []string{
		r.Timestamp.Format("2006-01-02 15:04:05"),
		r.Title,
		r.Level,
		string(r.Origin),
		r.CriticalSkill,
		r.Operator,
	}
}

// StoredProfile is a persisted generation result.
type StoredProfile struct {
	ID        uuid.UUID         `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Request   GenerationRequest `json:"request"`
	Profile   *JobProfile       `json:"profile"`
	Attempts  int               `json:"attempts"`
	Operator  string            `json:"operator,omitempty"`
}
