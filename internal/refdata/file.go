package refdata

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/jobcraft/internal/types"
)

// Base names looked up by FileSource, tried with each extension in order.
const (
	CompetenciesFile = "competencies"
	CatalogFile      = "catalog"
)

var fileExtensions = []string{".csv", ".json", ".yaml", ".yml"}

// FileSource reads the reference tables from local CSV, JSON or YAML files.
// Columns applies to CSV files only.
type FileSource struct {
	Dir     string
	Columns Columns
}

func (s *FileSource) Competencies(ctx context.Context) ([]types.CompetencyEntry, error) {
	return loadTable(s.Dir, CompetenciesFile, s.Columns, competenciesFromRows)
}

func (s *FileSource) Catalog(ctx context.Context) ([]types.CatalogEntry, error) {
	return loadTable(s.Dir, CatalogFile, s.Columns, catalogFromRows)
}

func loadTable[T any](dir, base string, cols Columns, fromRows func([][]string, Columns) ([]T, error)) ([]T, error) {
	path, err := findTableFile(dir, base)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var entries []T
	switch filepath.Ext(path) {
	case ".csv":
		rows, err := ReadCSV(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if entries, err = fromRows(rows, cols); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	return entries, nil
}

func findTableFile(dir, base string) (string, error) {
	for _, ext := range fileExtensions {
		path := filepath.Join(dir, base+ext)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("no %s file (%s) in %s", base, strings.Join(fileExtensions, ", "), dir)
}

// ReadCSV reads all records, allowing ragged rows.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// WriteTable writes entries to path in the format implied by its extension.
// Used by the reference command to export a snapshot for offline use.
func WriteTable[T any](path string, header []string, entries []T, toRow func(T) []string) error {
	var buf bytes.Buffer
	switch filepath.Ext(path) {
	case ".csv":
		w := csv.NewWriter(&buf)
		if err := w.Write(header); err != nil {
			return err
		}
		for _, e := range entries {
			if err := w.Write(toRow(e)); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	case ".json":
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.NewEncoder(&buf).Encode(entries); err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported reference file extension %q", filepath.Ext(path))
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
