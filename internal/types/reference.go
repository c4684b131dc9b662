package types

// CompetencyEntry is one row of the organization's competency dictionary.
type CompetencyEntry struct {
	Family     string `json:"family" yaml:"family"`
	Definition string `json:"definition" yaml:"definition"`
}

// CatalogEntry is one official job title from the organization's catalog.
type CatalogEntry struct {
	Title string `json:"title" yaml:"title"`
	Level string `json:"level" yaml:"level"`
}

// ReferenceSnapshot holds the reference tables captured for a single generation.
// Snapshots are read-only once taken.
type ReferenceSnapshot struct {
	Competencies []CompetencyEntry `json:"competencies"`
	Catalog      []CatalogEntry    `json:"catalog"`
}
