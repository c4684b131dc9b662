package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/jonathan/jobcraft/internal/types"
)

// LogHeader names the generation log columns in Row order.
var LogHeader = []string{"timestamp", "title", "level", "origin", "critical_skill", "operator"}

// RowAppender appends a row to a named worksheet; *sheets.Client satisfies it.
type RowAppender interface {
	AppendRow(ctx context.Context, worksheet string, row []string) error
}

// SheetsLog appends log rows to a spreadsheet worksheet.
type SheetsLog struct {
	Sheet     RowAppender
	Worksheet string
}

func (s *SheetsLog) Append(ctx context.Context, rec types.LogRecord) error {
	if err := s.Sheet.AppendRow(ctx, s.Worksheet, rec.Row()); err != nil {
		return fmt.Errorf("sheets log: %w", err)
	}
	return nil
}

// GenerationLogger is the subset of *db.DB used for the log table.
type GenerationLogger interface {
	AppendGenerationLog(ctx context.Context, rec types.LogRecord) error
}

// DBLog appends log rows to the generation_log table.
type DBLog struct {
	DB GenerationLogger
}

func (d *DBLog) Append(ctx context.Context, rec types.LogRecord) error {
	return d.DB.AppendGenerationLog(ctx, rec)
}

// CSVFile appends rows to a CSV file, writing the header once when the file
// is created or empty. Safe for concurrent use within one process.
type CSVFile struct {
	Path   string
	Header []string

	mu sync.Mutex
}

// AppendRow appends one record.
func (f *CSVFile) AppendRow(row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", f.Path, err)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 && len(f.Header) > 0 {
		if err := w.Write(f.Header); err != nil {
			return fmt.Errorf("failed to write header to %s: %w", f.Path, err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write row to %s: %w", f.Path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", f.Path, err)
	}
	return nil
}

// CSVLog appends log rows to a local CSV file.
type CSVLog struct {
	file *CSVFile
}

// NewCSVLog returns a CSVLog writing to path.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{file: &CSVFile{Path: path, Header: LogHeader}}
}

func (c *CSVLog) Append(_ context.Context, rec types.LogRecord) error {
	return c.file.AppendRow(rec.Row())
}
