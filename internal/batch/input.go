package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/types"
)

// Columns are the required input columns.
var Columns = []string{"title", "level", "critical_skill"}

// InputError reports an unreadable or malformed batch input file.
type InputError struct {
	Path    string
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("batch input %s: %s", e.Path, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// ReadRequests loads generation requests from a CSV file with a header row, or
// from a JSON or YAML array of objects with the same keys.
func ReadRequests(path string) ([]types.GenerationRequest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", "":
		return readCSV(path)
	case ".json":
		return readDocument(path, json.Unmarshal)
	case ".yaml", ".yml":
		return readDocument(path, yaml.Unmarshal)
	default:
		return nil, &InputError{Path: path, Message: "unsupported file type, use .csv, .json or .yaml"}
	}
}

func readCSV(path string) ([]types.GenerationRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Message: "cannot open file", Cause: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := refdata.ReadCSV(f)
	if err != nil {
		return nil, &InputError{Path: path, Message: "invalid CSV", Cause: err}
	}
	if len(rows) == 0 {
		return nil, &InputError{Path: path, Message: "file is empty; " + expected()}
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &InputError{Path: path, Message: fmt.Sprintf("missing column(s) %s; %s", strings.Join(missing, ", "), expected())}
	}

	get := func(row []string, col string) string {
		if i := index[col]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	reqs := make([]types.GenerationRequest, 0, len(rows)-1)
	for _, row := range rows[1:] {
		reqs = append(reqs, types.GenerationRequest{
			Title:         get(row, "title"),
			Level:         get(row, "level"),
			CriticalSkill: get(row, "critical_skill"),
		})
	}
	return reqs, nil
}

func readDocument(path string, unmarshal func([]byte, any) error) ([]types.GenerationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Message: "cannot read file", Cause: err}
	}
	var reqs []types.GenerationRequest
	if err := unmarshal(data, &reqs); err != nil {
		return nil, &InputError{Path: path, Message: "expected an array of objects; " + expected(), Cause: err}
	}
	for i := range reqs {
		reqs[i].Normalize()
	}
	return reqs, nil
}

func expected() string {
	return "expected columns: " + strings.Join(Columns, ", ")
}
