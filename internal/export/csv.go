package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/jonathan/jobcraft/internal/types"
)

// ListSeparator joins list items inside a single CSV cell.
const ListSeparator = " | "

var itemEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// CSVHeader returns the column names of the tabular export.
func CSVHeader() []string {
	header := []string{"title", "level", "mission", "title_origin", "official_title", "annotation"}
	for _, list := range (&types.JobProfile{}).Lists() {
		header = append(header, list.Key)
	}
	return header
}

// CSVRow flattens p into one row matching CSVHeader.
func CSVRow(p *types.JobProfile) []string {
	row := []string{
		normalizeSpace(p.Title),
		normalizeSpace(p.Level),
		normalizeSpace(p.Mission),
		string(p.TitleOrigin),
		normalizeSpace(p.OfficialTitle),
		normalizeSpace(p.Annotation),
	}
	for _, list := range p.Lists() {
		row = append(row, joinItems(list.Items))
	}
	return row
}

// RenderCSV renders a header row and one data row.
func RenderCSV(p *types.JobProfile) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader()); err != nil {
		return nil, err
	}
	if err := w.Write(CSVRow(p)); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeCSV reads the first data row of a tabular export.
func DecodeCSV(data []byte) (*types.JobProfile, error) {
	profiles, err := DecodeCSVRows(data)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("csv export has no data row")
	}
	return profiles[0], nil
}

// DecodeCSVRows reads every data row, e.g. from an accumulated batch output file.
func DecodeCSVRows(data []byte) ([]*types.JobProfile, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv export: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv export is empty")
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range CSVHeader() {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("csv export is missing column %q", name)
		}
	}

	profiles := make([]*types.JobProfile, 0, len(records)-1)
	for n, rec := range records[1:] {
		get := func(name string) string {
			if i := index[name]; i < len(rec) {
				return rec[i]
			}
			return ""
		}
		p := types.JobProfile{
			Title:         get("title"),
			Level:         get("level"),
			Mission:       get("mission"),
			TitleOrigin:   types.TitleOrigin(get("title_origin")),
			OfficialTitle: get("official_title"),
			Annotation:    get("annotation"),
		}
		for key, list := range p.ListPointers() {
			*list = splitItems(get(key))
		}
		v, err := validated(&p)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", n+1, err)
		}
		profiles = append(profiles, v)
	}
	return profiles, nil
}

func joinItems(items []string) string {
	escaped := make([]string, len(items))
	for i, item := range items {
		escaped[i] = itemEscaper.Replace(normalizeSpace(item))
	}
	return strings.Join(escaped, ListSeparator)
}

// splitItems reverses joinItems: it splits on unescaped separators and
// removes the escapes.
func splitItems(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	var items []string
	var cur strings.Builder
	for i := 0; i < len(cell); i++ {
		c := cell[i]
		switch {
		case c == '\\' && i+1 < len(cell):
			i++
			cur.WriteByte(cell[i])
		case c == '|':
			items = append(items, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(items, strings.TrimSpace(cur.String()))
}
