package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobcraft/internal/types"
)

var record = types.LogRecord{
	Timestamp:     time.Date(2025, 3, 4, 10, 11, 12, 0, time.UTC),
	Title:         "Sales Analyst",
	Level:         "Junior",
	Origin:        types.OriginStandardized,
	CriticalSkill: "CRM tools",
	Operator:      "N/A",
}

type recordingAppender struct {
	worksheet string
	rows      [][]string
	err       error
}

func (r *recordingAppender) AppendRow(_ context.Context, worksheet string, row []string) error {
	r.worksheet = worksheet
	r.rows = append(r.rows, row)
	return r.err
}

type recordingDB struct{ recs []types.LogRecord }

func (r *recordingDB) AppendGenerationLog(_ context.Context, rec types.LogRecord) error {
	r.recs = append(r.recs, rec)
	return nil
}

func TestSheetsLog(t *testing.T) {
	sheet := &recordingAppender{}
	sink := &SheetsLog{Sheet: sheet, Worksheet: "Seguimiento Generaciones"}

	require.NoError(t, sink.Append(context.Background(), record))
	assert.Equal(t, "Seguimiento Generaciones", sheet.worksheet)
	assert.Equal(t, [][]string{{"2025-03-04 10:11:12", "Sales Analyst", "Junior", "STANDARIZED", "CRM tools", "N/A"}}, sheet.rows)
}

func TestDBLog(t *testing.T) {
	db := &recordingDB{}
	require.NoError(t, (&DBLog{DB: db}).Append(context.Background(), record))
	assert.Equal(t, []types.LogRecord{record}, db.recs)
}

func TestCSVLog_HeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	sink := NewCSVLog(path)

	require.NoError(t, sink.Append(context.Background(), record))
	require.NoError(t, sink.Append(context.Background(), record))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(LogHeader, ","), lines[0])
	assert.Equal(t, lines[1], lines[2])
}

func TestCSVFile_ExistingFileKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

	f := &CSVFile{Path: path, Header: []string{"a", "b"}}
	require.NoError(t, f.AppendRow([]string{"3", "4"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n3,4\n", string(data))
}

func TestMultiSink(t *testing.T) {
	ok := &recordingAppender{}
	failing := &recordingAppender{err: errors.New("quota")}
	db := &recordingDB{}

	err := MultiSink{
		&SheetsLog{Sheet: failing, Worksheet: "w"},
		&SheetsLog{Sheet: ok, Worksheet: "w"},
		&DBLog{DB: db},
	}.Append(context.Background(), record)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
	assert.Len(t, ok.rows, 1, "later sinks still run")
	assert.Len(t, db.recs, 1)
}

func TestMultiSink_Empty(t *testing.T) {
	assert.NoError(t, MultiSink{}.Append(context.Background(), record))
	assert.NoError(t, NopSink{}.Append(context.Background(), record))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		sp := &types.StoredProfile{
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Request:   types.GenerationRequest{Title: "T"},
			Profile:   &types.JobProfile{Title: "T"},
		}
		require.NoError(t, m.SaveProfile(ctx, sp))
		assert.NotEqual(t, uuid.Nil, sp.ID)
		ids = append(ids, sp.ID)
	}

	got, err := m.GetProfile(ctx, ids[1])
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ids[1], got.ID)

	missing, err := m.GetProfile(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := m.ListProfiles(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID, "newest first")
	assert.Equal(t, ids[1], list[1].ID)
}

func TestMemoryStore_CopiesProfile(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	sp := &types.StoredProfile{Profile: &types.JobProfile{Title: "original"}}
	require.NoError(t, m.SaveProfile(ctx, sp))

	sp.Profile.Title = "changed"
	got, err := m.GetProfile(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Profile.Title)
}

func TestInterfaces(t *testing.T) {
	var _ ProfileStore = NewMemoryStore()
	var _ LogSink = NewCSVLog("x")
	var _ LogSink = &SheetsLog{}
	var _ LogSink = &DBLog{}
	var _ LogSink = MultiSink{}
}
