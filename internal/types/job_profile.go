// Package types provides type definitions for structured data used throughout the jobcraft system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// TitleOrigin is the reconciliation verdict emitted by the model for a requested title.
type TitleOrigin string

const (
	// OriginStandardized means the requested title matched an official catalog entry.
	OriginStandardized TitleOrigin = "STANDARIZED"
	// OriginNew means no catalog entry matched and the title is new to the organization.
	OriginNew TitleOrigin = "NEW"
)

// NoOfficialTitle is the official_title value required when the origin is NEW.
const NoOfficialTitle = "N/A"

// JobProfile represents a generated job description. Schema version "2".
type JobProfile struct {
	SchemaVersion          string      `json:"schema_version,omitempty"`
	Title                  string      `json:"title"`
	Level                  string      `json:"level"`
	Mission                string      `json:"mission"`
	TitleOrigin            TitleOrigin `json:"title_origin"`
	OfficialTitle          string      `json:"official_title"`
	Annotation             string      `json:"annotation"`
	Responsibilities       []string    `json:"responsibilities"`
	BehavioralCompetencies []string    `json:"behavioral_competencies"`
	TechnicalCompetencies  []string    `json:"technical_competencies"`
	Education              []string    `json:"education"`
	KPIs                   []string    `json:"kpis"`
}

// IsStandardized reports whether the model matched the title against the catalog.
func (p *JobProfile) IsStandardized() bool {
	return p.TitleOrigin == OriginStandardized
}

// ListField pairs a human label with one of the profile's list fields.
type ListField struct {
	Key   string
	Label string
	Items []string
}

// Lists returns the list fields in display order.
func (p *JobProfile) Lists() []ListField {
	return []ListField{
		{Key: "responsibilities", Label: "Key Responsibilities", Items: p.Responsibilities},
		{Key: "behavioral_competencies", Label: "Behavioral Competencies", Items: p.BehavioralCompetencies},
		{Key: "technical_competencies", Label: "Technical Competencies", Items: p.TechnicalCompetencies},
		{Key: "education", Label: "Education Requirements", Items: p.Education},
		{Key: "kpis", Label: "Key Performance Indicators", Items: p.KPIs},
	}
}

// ListPointers returns addressable list fields keyed like Lists, used by decoders.
func (p *JobProfile) ListPointers() map[string]*[]string {
	return map[string]*[]string{
		"responsibilities":        &p.Responsibilities,
		"behavioral_competencies": &p.BehavioralCompetencies,
		"technical_competencies":  &p.TechnicalCompetencies,
		"education":               &p.Education,
		"kpis":                    &p.KPIs,
	}
}
