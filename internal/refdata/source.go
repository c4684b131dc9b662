// Package refdata loads the competency dictionary and the official title catalog.
package refdata

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobcraft/internal/types"
)

// Table names used in errors and logs.
const (
	TableCompetencies = "competencies"
	TableCatalog      = "catalog"
)

// Source provides the two reference tables.
type Source interface {
	Competencies(ctx context.Context) ([]types.CompetencyEntry, error)
	Catalog(ctx context.Context) ([]types.CatalogEntry, error)
}

// ReferenceDataError means a reference table could not be fetched. Generation
// must not proceed without both tables.
type ReferenceDataError struct {
	Table string
	Cause error
}

func (e *ReferenceDataError) Error() string {
	return fmt.Sprintf("failed to load %s reference data: %v", e.Table, e.Cause)
}

func (e *ReferenceDataError) Unwrap() error {
	return e.Cause
}

// Snapshot fetches both tables concurrently. The returned snapshot is owned by
// the caller.
func Snapshot(ctx context.Context, src Source) (types.ReferenceSnapshot, error) {
	var snap types.ReferenceSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entries, err := src.Competencies(gctx)
		if err != nil {
			return &ReferenceDataError{Table: TableCompetencies, Cause: err}
		}
		snap.Competencies = entries
		return nil
	})
	g.Go(func() error {
		entries, err := src.Catalog(gctx)
		if err != nil {
			return &ReferenceDataError{Table: TableCatalog, Cause: err}
		}
		snap.Catalog = entries
		return nil
	})

	if err := g.Wait(); err != nil {
		return types.ReferenceSnapshot{}, err
	}
	return snap, nil
}
