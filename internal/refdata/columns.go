package refdata

import (
	"fmt"
	"strings"

	"github.com/jonathan/jobcraft/internal/types"
)

// Accepted header names, compared after normalizeHeader.
var (
	familyHeaders     = []string{"familia", "family", "competencia", "competency"}
	definitionHeaders = []string{
		"definicion", "definition", "descripcion", "description",
		"corees_definicion_core_n1_inicial",
	}
	titleHeaders = []string{"titulo", "title", "puesto", "titulo del puesto", "job title"}
	levelHeaders = []string{"nivel", "level", "seniority"}
)

// Columns overrides the header expected for each reference column. An empty
// name falls back to the built-in aliases.
type Columns struct {
	Family     string
	Definition string
	Title      string
	Level      string
}

func headerNames(configured string, aliases []string) []string {
	if strings.TrimSpace(configured) == "" {
		return aliases
	}
	return []string{normalizeHeader(configured)}
}

var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
)

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return accentFolder.Replace(h)
}

// columnIndex finds the first header matching any of the names.
func columnIndex(header []string, names []string) int {
	for i, h := range header {
		n := normalizeHeader(h)
		for _, want := range names {
			if n == want {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// competenciesFromRows maps a header row plus data rows onto dictionary entries.
// Rows without a family are skipped.
func competenciesFromRows(rows [][]string, cols Columns) ([]types.CompetencyEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	family := columnIndex(rows[0], headerNames(cols.Family, familyHeaders))
	definition := columnIndex(rows[0], headerNames(cols.Definition, definitionHeaders))
	if family < 0 || definition < 0 {
		return nil, fmt.Errorf("competency table needs columns Familia and Definición, got %q", rows[0])
	}

	entries := make([]types.CompetencyEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := types.CompetencyEntry{Family: cell(row, family), Definition: cell(row, definition)}
		if e.Family == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// catalogFromRows maps a header row plus data rows onto catalog entries. The
// level column is optional; rows without a title are skipped.
func catalogFromRows(rows [][]string, cols Columns) ([]types.CatalogEntry, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	title := columnIndex(rows[0], headerNames(cols.Title, titleHeaders))
	level := columnIndex(rows[0], headerNames(cols.Level, levelHeaders))
	if title < 0 {
		return nil, fmt.Errorf("catalog table needs a Título column, got %q", rows[0])
	}

	entries := make([]types.CatalogEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		e := types.CatalogEntry{Title: cell(row, title), Level: cell(row, level)}
		if e.Title == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
