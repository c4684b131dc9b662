package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/llm"
	"github.com/jonathan/jobcraft/internal/llm/llmtest"
	"github.com/jonathan/jobcraft/internal/retry"
	"github.com/jonathan/jobcraft/internal/schemas"
	"github.com/jonathan/jobcraft/internal/types"
)

var salesAnalyst = types.GenerationRequest{
	Title:         "Sales Analyst",
	Level:         "Junior (0-2 years)",
	CriticalSkill: "CRM tools",
}

var refs = types.ReferenceSnapshot{
	Competencies: []types.CompetencyEntry{{Family: "Customer orientation", Definition: "Anticipates customer needs."}},
	Catalog:      []types.CatalogEntry{{Title: "Commercial Analyst", Level: "Junior"}},
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestGenerate_Standardized(t *testing.T) {
	want := llmtest.Profile("Sales Analyst", "Junior (0-2 years)", types.OriginStandardized, "Commercial Analyst")
	client := llmtest.NewClient(llmtest.Reply{Text: llmtest.JSON(want)})

	got, err := New(client, nil).Generate(context.Background(), salesAnalyst, refs)
	require.NoError(t, err)

	assert.Equal(t, types.OriginStandardized, got.TitleOrigin)
	assert.Equal(t, "Commercial Analyst", got.OfficialTitle)
	assert.Equal(t, schemas.Version, got.SchemaVersion)

	require.Len(t, client.Prompts, 1)
	assert.Contains(t, client.Prompts[0], "- Commercial Analyst (Junior)")
	assert.Contains(t, client.Prompts[0], "- Customer orientation: Anticipates customer needs.")
	require.NotNil(t, client.Schemas[0])
	assert.Contains(t, client.Schemas[0].Required, "kpis")
}

func TestGenerate_New(t *testing.T) {
	want := llmtest.Profile("Growth Hacker", "Senior", types.OriginNew, "")
	client := llmtest.NewClient(llmtest.Reply{Text: llmtest.JSON(want)})

	got, err := New(client, nil).Generate(context.Background(), salesAnalyst, refs)
	require.NoError(t, err)
	assert.Equal(t, types.OriginNew, got.TitleOrigin)
	assert.Equal(t, "N/A", got.OfficialTitle)
}

func TestGenerate_SchemaError(t *testing.T) {
	client := llmtest.NewClient(llmtest.Reply{Text: "Sure! Here is a job description."})

	_, err := New(client, nil).Generate(context.Background(), salesAnalyst, refs)
	var schemaErr *schemas.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestGenerate_ClassifiesUpstream(t *testing.T) {
	client := llmtest.NewClient(llmtest.Reply{Err: &googleapi.Error{Code: 503}})

	_, err := New(client, nil).Generate(context.Background(), salesAnalyst, refs)
	var upstream *llm.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Transient())
}

func TestGenerateWithRetry_RecoversFromOverload(t *testing.T) {
	good := llmtest.JSON(llmtest.Profile("Sales Analyst", "Junior", types.OriginNew, ""))
	client := llmtest.NewClient(
		llmtest.Reply{Err: &googleapi.Error{Code: 429}},
		llmtest.Reply{Err: &googleapi.Error{Code: 503}},
		llmtest.Reply{Text: good},
	)
	ctrl := &retry.Controller{MaxAttempts: 3, Delay: time.Second, Sleep: noSleep}

	profile, outcome, err := New(client, nil).GenerateWithRetry(context.Background(), ctrl, salesAnalyst, refs)
	require.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Equal(t, retry.Succeeded, outcome.State)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, 3, client.Calls())
}

func TestGenerateWithRetry_SchemaErrorNotRetried(t *testing.T) {
	client := llmtest.NewClient(llmtest.Reply{Text: `{"title": "only"}`})
	ctrl := &retry.Controller{MaxAttempts: 3, Sleep: noSleep}

	profile, outcome, err := New(client, nil).GenerateWithRetry(context.Background(), ctrl, salesAnalyst, refs)
	assert.Nil(t, profile)
	assert.Equal(t, retry.FatalFailed, outcome.State)
	assert.Equal(t, 1, client.Calls())

	var schemaErr *schemas.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestGenerateWithRetry_Exhausted(t *testing.T) {
	client := llmtest.NewClient(llmtest.Reply{Err: &googleapi.Error{Code: 429}})
	ctrl := &retry.Controller{MaxAttempts: 3, Sleep: noSleep}

	_, outcome, err := New(client, nil).GenerateWithRetry(context.Background(), ctrl, salesAnalyst, refs)
	assert.Equal(t, retry.ExhaustedFailed, outcome.State)
	assert.Equal(t, 3, client.Calls())

	var exhausted *retry.ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	var upstream *llm.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestGenerateWithRetry_AuthFailureIsFatal(t *testing.T) {
	client := llmtest.NewClient(llmtest.Reply{Err: &googleapi.Error{Code: 401}})
	ctrl := &retry.Controller{MaxAttempts: 3, Sleep: noSleep}

	_, outcome, err := New(client, nil).GenerateWithRetry(context.Background(), ctrl, salesAnalyst, refs)
	assert.Equal(t, retry.FatalFailed, outcome.State)
	assert.Equal(t, 1, client.Calls())
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestGenerateWithRetry_MissingModelIsConfigError(t *testing.T) {
	client := llmtest.NewClient(llmtest.Reply{Err: &config.ConfigError{Field: "model", Message: "no model configured for tier standard"}})
	ctrl := &retry.Controller{MaxAttempts: 3, Sleep: noSleep}

	_, outcome, err := New(client, nil).GenerateWithRetry(context.Background(), ctrl, salesAnalyst, refs)
	assert.Equal(t, retry.FatalFailed, outcome.State)
	assert.Equal(t, 1, client.Calls())

	var cfgErr *config.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "model", cfgErr.Field)
	var upstream *llm.UpstreamError
	assert.False(t, errors.As(err, &upstream))
}
