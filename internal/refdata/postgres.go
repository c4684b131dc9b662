package refdata

import (
	"context"

	"github.com/jonathan/jobcraft/internal/types"
)

// TableReader is the subset of *db.DB used to read reference tables.
type TableReader interface {
	ListCompetencies(ctx context.Context) ([]types.CompetencyEntry, error)
	ListCatalog(ctx context.Context) ([]types.CatalogEntry, error)
}

// PostgresSource reads the reference tables from the database.
type PostgresSource struct {
	DB TableReader
}

func (s *PostgresSource) Competencies(ctx context.Context) ([]types.CompetencyEntry, error) {
	return s.DB.ListCompetencies(ctx)
}

func (s *PostgresSource) Catalog(ctx context.Context) ([]types.CatalogEntry, error) {
	return s.DB.ListCatalog(ctx)
}
