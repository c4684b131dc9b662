package refdata

import (
	"context"

	"github.com/jonathan/jobcraft/internal/types"
)

// RowReader reads a worksheet as rows of cells, header first.
type RowReader interface {
	ReadRows(ctx context.Context, worksheet string) ([][]string, error)
}

// SheetsSource reads the reference tables from spreadsheet worksheets.
type SheetsSource struct {
	Reader              RowReader
	CompetencyWorksheet string
	CatalogWorksheet    string
	Columns             Columns
}

// NewSheetsSource returns a SheetsSource over the named worksheets.
func NewSheetsSource(reader RowReader, competencyWorksheet, catalogWorksheet string) *SheetsSource {
	return &SheetsSource{
		Reader:              reader,
		CompetencyWorksheet: competencyWorksheet,
		CatalogWorksheet:    catalogWorksheet,
	}
}

func (s *SheetsSource) Competencies(ctx context.Context) ([]types.CompetencyEntry, error) {
	rows, err := s.Reader.ReadRows(ctx, s.CompetencyWorksheet)
	if err != nil {
		return nil, err
	}
	return competenciesFromRows(rows, s.Columns)
}

func (s *SheetsSource) Catalog(ctx context.Context) ([]types.CatalogEntry, error) {
	rows, err := s.Reader.ReadRows(ctx, s.CatalogWorksheet)
	if err != nil {
		return nil, err
	}
	return catalogFromRows(rows, s.Columns)
}
