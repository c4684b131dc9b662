package schemas

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/jobcraft/internal/types"
)

// Version is the JobProfile schema version this build accepts and emits.
const Version = "2"

//go:embed job_profile.v2.schema.json
var jobProfileSchema string

var (
	compiledOnce sync.Once
	compiled     *gojsonschema.Schema
	compileErr   error
)

// JobProfileSchema returns the embedded JSON Schema text for the current version.
func JobProfileSchema() string {
	return jobProfileSchema
}

// SchemaError means a document did not satisfy the JobProfile contract. The whole
// document is rejected; callers never receive a partially parsed profile.
type SchemaError struct {
	Version string
	Message string
	Fields  []FieldError
	Cause   error
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("schema error (job profile v%s): %s", e.Version, e.Message))
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("; %s: %s", f.Field, f.Message))
	}
	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	return sb.String()
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Transient reports false: an identical prompt is unlikely to fix a structural mismatch.
func (e *SchemaError) Transient() bool {
	return false
}

func schemaFor() (*gojsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiled, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(jobProfileSchema))
	})
	return compiled, compileErr
}

// ParseJobProfile parses raw model output (or a stored JSON document) into a JobProfile.
// It fails with *SchemaError when the text is not JSON, when the declared schema
// version differs, when any required field is missing or mistyped, or when the
// title origin and official title disagree.
func ParseJobProfile(raw string) (*types.JobProfile, error) {
	text := CleanJSONBlock(raw)
	if text == "" {
		return nil, &SchemaError{Version: Version, Message: "empty document"}
	}
	if !json.Valid([]byte(text)) {
		return nil, &SchemaError{Version: Version, Message: "document is not well-formed JSON"}
	}

	var probe struct {
		SchemaVersion *string `json:"schema_version"`
	}
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, &SchemaError{Version: Version, Message: "document is not a JSON object", Cause: err}
	}
	if probe.SchemaVersion != nil && *probe.SchemaVersion != Version {
		return nil, &SchemaError{
			Version: Version,
			Message: fmt.Sprintf("schema version mismatch: document declares %q", *probe.SchemaVersion),
		}
	}

	schema, err := schemaFor()
	if err != nil {
		return nil, &SchemaLoadError{Path: "job_profile.v2.schema.json", Message: "embedded schema is invalid", Cause: err}
	}
	result, err := schema.Validate(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, &SchemaError{Version: Version, Message: "document could not be validated", Cause: err}
	}
	if !result.Valid() {
		return nil, &SchemaError{Version: Version, Message: "document does not match schema", Fields: fieldErrors(result)}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.DisallowUnknownFields()
	var profile types.JobProfile
	if err := dec.Decode(&profile); err != nil {
		return nil, &SchemaError{Version: Version, Message: "failed to decode document", Cause: err}
	}

	if err := CheckConsistency(&profile); err != nil {
		return nil, err
	}

	profile.SchemaVersion = Version
	return &profile, nil
}

// CheckConsistency enforces the cross-field reconciliation rule: NEW titles carry
// official_title "N/A", standardized titles name the matched catalog title.
func CheckConsistency(p *types.JobProfile) error {
	official := strings.TrimSpace(p.OfficialTitle)
	switch p.TitleOrigin {
	case types.OriginNew:
		if official != types.NoOfficialTitle {
			return &SchemaError{
				Version: Version,
				Message: "inconsistent reconciliation verdict",
				Fields:  []FieldError{{Field: "official_title", Message: fmt.Sprintf("must be %q when title_origin is NEW", types.NoOfficialTitle)}},
			}
		}
	case types.OriginStandardized:
		if official == "" || official == types.NoOfficialTitle {
			return &SchemaError{
				Version: Version,
				Message: "inconsistent reconciliation verdict",
				Fields:  []FieldError{{Field: "official_title", Message: "must name the matched catalog title when title_origin is STANDARIZED"}},
			}
		}
	default:
		return &SchemaError{
			Version: Version,
			Message: "unknown title origin",
			Fields:  []FieldError{{Field: "title_origin", Message: fmt.Sprintf("unexpected value %q", p.TitleOrigin)}},
		}
	}
	return nil
}

// CleanJSONBlock removes markdown code block wrappers from model output.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language identifier on the opening fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
