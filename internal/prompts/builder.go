package prompts

import (
	"strings"

	"github.com/jonathan/jobcraft/internal/types"
)

// File holds the JobCraft prompt templates.
const File = "jobcraft.json"

// BuildJobProfilePrompt assembles the generation instruction for one request.
// Every competency and catalog entry is embedded verbatim, in the order given.
func BuildJobProfilePrompt(req types.GenerationRequest, refs types.ReferenceSnapshot) string {
	empty := MustGet(File, "empty-section")

	return Format(MustGet(File, "job-profile"), map[string]string{
		"Title":          req.Title,
		"Level":          req.Level,
		"CriticalSkill":  req.CriticalSkill,
		"Competencies":   FormatCompetencies(refs.Competencies, empty),
		"Catalog":        FormatCatalog(refs.Catalog, empty),
		"Reconciliation": MustGet(File, "reconciliation"),
		"OutputFormat":   MustGet(File, "output-format"),
	})
}

// FormatCompetencies renders the dictionary as "- Family: Definition" lines,
// or the marker when there are no entries.
func FormatCompetencies(entries []types.CompetencyEntry, marker string) string {
	if len(entries) == 0 {
		return marker
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, "- "+e.Family+": "+e.Definition)
	}
	return strings.Join(lines, "\n")
}

// FormatCatalog renders the catalog as "- Title (Level)" lines, or the marker
// when there are no entries.
func FormatCatalog(entries []types.CatalogEntry, marker string) string {
	if len(entries) == 0 {
		return marker
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Level == "" {
			lines = append(lines, "- "+e.Title)
			continue
		}
		lines = append(lines, "- "+e.Title+" ("+e.Level+")")
	}
	return strings.Join(lines, "\n")
}
