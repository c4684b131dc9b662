package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/db"
	"github.com/jonathan/jobcraft/internal/generation"
	"github.com/jonathan/jobcraft/internal/llm"
	"github.com/jonathan/jobcraft/internal/pipeline"
	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/retry"
	"github.com/jonathan/jobcraft/internal/sheets"
	"github.com/jonathan/jobcraft/internal/store"
)

// deps holds the connections shared by the commands. Fields are nil when the
// configuration does not call for them.
type deps struct {
	db     *db.DB
	sheet  *sheets.Client
	source refdata.Source
	log    store.LogSink
	store  store.ProfileStore
	client llm.Client
}

func (d *deps) Close() {
	if d.client != nil {
		_ = d.client.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// openDeps connects to whatever the configuration names: the database when a
// URL is set and the spreadsheet when a sheet ID is set.
func openDeps(ctx context.Context, c config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{}

	if c.DatabaseURL != "" {
		database, err := db.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		d.db = database
	}

	if c.SheetID != "" {
		sheet, err := sheets.New(ctx, c.SheetID, c.CredentialsFile)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.sheet = sheet
	}

	src, err := referenceFor(c, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	ttl, _ := c.CacheTTLDuration()
	d.source = refdata.NewCached(src, ttl)

	d.log = logSinksFor(c, d)
	if d.db != nil {
		d.store = d.db
	} else {
		logger.Debug("no database configured; profiles are kept in memory")
		d.store = store.NewMemoryStore()
	}
	return d, nil
}

// referenceFor returns the uncached Source selected by ReferenceSource.
func referenceFor(c config.Config, d *deps) (refdata.Source, error) {
	cols := columnsFor(c)
	switch c.ReferenceSource {
	case config.SourceSheets:
		if d.sheet == nil {
			return nil, &config.ConfigError{Field: "sheet_id", Message: "required when reference_source is sheets"}
		}
		src := refdata.NewSheetsSource(d.sheet, c.CompetencyWorksheet, c.CatalogWorksheet)
		src.Columns = cols
		return src, nil
	case config.SourcePostgres:
		if d.db == nil {
			return nil, &config.ConfigError{Field: "database_url", Message: "required when reference_source is postgres"}
		}
		return &refdata.PostgresSource{DB: d.db}, nil
	default:
		return &refdata.FileSource{Dir: c.ReferenceDir, Columns: cols}, nil
	}
}

// columnsFor maps the configured header overrides onto refdata.Columns.
func columnsFor(c config.Config) refdata.Columns {
	return refdata.Columns{
		Family:     c.FamilyColumn,
		Definition: c.DefinitionColumn,
		Title:      c.TitleColumn,
		Level:      c.LevelColumn,
	}
}

// logSinksFor fans the generation log out to every configured destination.
func logSinksFor(c config.Config, d *deps) store.LogSink {
	var sinks store.MultiSink
	if d.sheet != nil && c.LogWorksheet != "" {
		sinks = append(sinks, &store.SheetsLog{Sheet: d.sheet, Worksheet: c.LogWorksheet})
	}
	if d.db != nil {
		sinks = append(sinks, &store.DBLog{DB: d.db})
	}
	if c.LogCSV != "" {
		sinks = append(sinks, store.NewCSVLog(c.LogCSV))
	}
	if len(sinks) == 0 {
		return store.NopSink{}
	}
	return sinks
}

// newService creates the model client and the generation service. The API key
// is checked before any network call.
func newService(ctx context.Context, c config.Config, d *deps, logger *zap.Logger) (*pipeline.Service, error) {
	if err := c.RequireAPIKey(); err != nil {
		return nil, err
	}
	if d.client == nil {
		client, err := llm.NewClient(ctx, llm.DefaultConfig().WithModel(llm.TierStandard, c.Model), c.APIKey)
		if err != nil {
			return nil, err
		}
		d.client = client
	}
	delay, _ := c.RetryDelayDuration()

	return &pipeline.Service{
		Source:    d.source,
		Generator: generation.New(d.client, logger),
		Retry: &retry.Controller{
			MaxAttempts: c.MaxAttempts,
			Delay:       delay,
			Logger:      logger,
		},
		Store:  d.store,
		Log:    d.log,
		Logger: logger,
	}, nil
}
