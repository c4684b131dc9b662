package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/llm/llmtest"
	"github.com/jonathan/jobcraft/internal/notify"
	"github.com/jonathan/jobcraft/internal/pipeline"
	"github.com/jonathan/jobcraft/internal/store"
	"github.com/jonathan/jobcraft/internal/types"
)

type fakeGenerator struct {
	fail  map[string]error
	calls []types.GenerationRequest
}

func (f *fakeGenerator) Generate(_ context.Context, req types.GenerationRequest, _ string) (*pipeline.Result, error) {
	f.calls = append(f.calls, req)
	if err := f.fail[req.Title]; err != nil {
		return nil, err
	}
	p := llmtest.Profile(req.Title, req.Level, types.OriginNew, "")
	return &pipeline.Result{ID: uuid.New(), Profile: &p, Attempts: 1}, nil
}

type fakeSender struct {
	sent []notify.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg notify.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

var jobs = []types.GenerationRequest{
	{Title: "Sales Analyst", Level: "Junior", CriticalSkill: "CRM"},
	{Title: "Data Engineer", Level: "Senior", CriticalSkill: "Spark"},
	{Title: "Office Manager", Level: "Mid", CriticalSkill: "Scheduling"},
}

func TestRun_ContinuesAfterFailure(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]error{"Data Engineer": errors.New("quota exhausted")}}
	sender := &fakeSender{}
	runner := &Runner{Generator: gen, Notifier: sender, Recipient: "hr@example.com", Logger: zap.NewNop()}

	report := runner.Run(context.Background(), jobs)

	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Items, 3)
	assert.EqualError(t, report.Items[1].Err, "quota exhausted")
	assert.Equal(t, 3, report.Items[2].Index)
	assert.NotNil(t, report.Items[2].Profile)
	assert.Len(t, gen.calls, 3)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hr@example.com", sender.sent[0].To)
	assert.Equal(t, "[JobCraft] Generated profile: Sales Analyst", sender.sent[0].Subject)
	assert.True(t, report.Notified)
}

func TestRun_NoNotificationWhenFirstFails(t *testing.T) {
	gen := &fakeGenerator{fail: map[string]error{"Sales Analyst": errors.New("blocked")}}
	sender := &fakeSender{}
	runner := &Runner{Generator: gen, Notifier: sender, Recipient: "hr@example.com"}

	report := runner.Run(context.Background(), jobs)

	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, sender.sent)
	assert.False(t, report.Notified)
}

func TestRun_NotificationFailureIsNotFatal(t *testing.T) {
	sender := &fakeSender{err: errors.New("535 bad credentials")}
	runner := &Runner{Generator: &fakeGenerator{}, Notifier: sender, Recipient: "hr@example.com"}

	report := runner.Run(context.Background(), jobs)

	assert.Equal(t, 3, report.Succeeded)
	assert.False(t, report.Notified)
	assert.ErrorContains(t, report.NotifyErr, "535 bad credentials")
}

func TestRun_WritesOutputRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobcraft_output.csv")
	out := &store.CSVFile{Path: path, Header: export.CSVHeader()}
	gen := &fakeGenerator{fail: map[string]error{"Data Engineer": errors.New("boom")}}
	runner := &Runner{Generator: gen, Output: out}

	runner.Run(context.Background(), jobs)
	runner.Run(context.Background(), jobs[:1])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	profiles, err := export.DecodeCSVRows(data)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Sales Analyst", profiles[0].Title)
	assert.Equal(t, "Office Manager", profiles[1].Title)
	assert.Equal(t, "Sales Analyst", profiles[2].Title)
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen := &fakeGenerator{}

	report := (&Runner{Generator: gen}).Run(ctx, jobs)
	assert.Equal(t, 3, report.Failed)
	assert.Empty(t, gen.calls)
	assert.ErrorIs(t, report.Items[0].Err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	report := (&Runner{Generator: &fakeGenerator{}}).Run(context.Background(), nil)
	assert.Zero(t, report.Total)
	assert.Empty(t, report.Items)
}

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadRequests_CSV(t *testing.T) {
	path := write(t, "input_jobs.csv", "\ufeffTitle, level,critical_skill,notes\n"+
		"Sales Analyst,Junior,\"CRM, Excel\",x\n"+
		"Data Engineer,Senior,Spark\n")

	reqs, err := ReadRequests(path)
	require.NoError(t, err)
	assert.Equal(t, []types.GenerationRequest{
		{Title: "Sales Analyst", Level: "Junior", CriticalSkill: "CRM, Excel"},
		{Title: "Data Engineer", Level: "Senior", CriticalSkill: "Spark"},
	}, reqs)
}

func TestReadRequests_MissingColumn(t *testing.T) {
	path := write(t, "input_jobs.csv", "title,seniority\nSales Analyst,Junior\n")

	_, err := ReadRequests(path)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, err.Error(), "missing column(s) level, critical_skill")
	assert.Contains(t, err.Error(), "expected columns: title, level, critical_skill")
}

func TestReadRequests_YAMLAndJSON(t *testing.T) {
	yamlPath := write(t, "jobs.yaml", "- title: Sales Analyst\n  level: Junior\n  critical_skill: CRM\n")
	reqs, err := ReadRequests(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "CRM", reqs[0].CriticalSkill)

	jsonPath := write(t, "jobs.json", `[{"title":" Data Engineer ","level":"Senior","critical_skill":"Spark"}]`)
	reqs, err = ReadRequests(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "Data Engineer", reqs[0].Title)

	badPath := write(t, "jobs.json", `{"title":"x"}`)
	_, err = ReadRequests(badPath)
	assert.ErrorContains(t, err, "expected an array")
}

func TestReadRequests_Errors(t *testing.T) {
	_, err := ReadRequests(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "cannot open file")

	_, err = ReadRequests(write(t, "jobs.xlsx", ""))
	assert.ErrorContains(t, err, "unsupported file type")

	_, err = ReadRequests(write(t, "empty.csv", ""))
	assert.ErrorContains(t, err, "file is empty")
}
