package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/jobcraft/internal/types"
)

// ListCompetencies returns the competency dictionary in stored order.
func (db *DB) ListCompetencies(ctx context.Context) ([]types.CompetencyEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT family, definition FROM competencies ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list competencies: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.CompetencyEntry, error) {
		var e types.CompetencyEntry
		err := row.Scan(&e.Family, &e.Definition)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan competency: %w", err)
	}
	return entries, nil
}

// ListCatalog returns the official title catalog in stored order.
func (db *DB) ListCatalog(ctx context.Context) ([]types.CatalogEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT title, level FROM title_catalog ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.CatalogEntry, error) {
		var e types.CatalogEntry
		err := row.Scan(&e.Title, &e.Level)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
	}
	return entries, nil
}

// ReplaceCompetencies swaps the whole dictionary in one transaction.
func (db *DB) ReplaceCompetencies(ctx context.Context, entries []types.CompetencyEntry) error {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{i, e.Family, e.Definition}
	}
	return db.replaceTable(ctx, "competencies", []string{"position", "family", "definition"}, rows)
}

// ReplaceCatalog swaps the whole title catalog in one transaction.
func (db *DB) ReplaceCatalog(ctx context.Context, entries []types.CatalogEntry) error {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{i, e.Title, e.Level}
	}
	return db.replaceTable(ctx, "title_catalog", []string{"position", "title", "level"}, rows)
}

func (db *DB) replaceTable(ctx context.Context, table string, columns []string, rows [][]any) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin %s replace: %w", table, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+pgx.Identifier{table}.Sanitize()); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("failed to load %s: %w", table, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s replace: %w", table, err)
	}
	return nil
}
