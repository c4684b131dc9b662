// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"

	"github.com/jonathan/jobcraft/internal/llm"
	"github.com/jonathan/jobcraft/internal/types"
)

// Reply is one scripted response: either Text or Err.
type Reply struct {
	Text string
	Err  error
}

// Client replays Replies in order. Once the script is exhausted the last reply
// repeats. A nil Respond falls back to the script.
type Client struct {
	mu      sync.Mutex
	Replies []Reply
	Respond func(prompt string) (string, error)
	Prompts []string
	Schemas []*genai.Schema
	Closed  bool
}

// NewClient returns a Client that replays the given replies.
func NewClient(replies ...Reply) *Client {
	return &Client{Replies: replies}
}

func (c *Client) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier, schema *genai.Schema) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	call := len(c.Prompts)
	c.Prompts = append(c.Prompts, prompt)
	c.Schemas = append(c.Schemas, schema)

	if c.Respond != nil {
		return c.Respond(prompt)
	}
	if len(c.Replies) == 0 {
		return "", fmt.Errorf("llmtest: no scripted reply")
	}
	if call >= len(c.Replies) {
		call = len(c.Replies) - 1
	}
	return c.Replies[call].Text, c.Replies[call].Err
}

func (c *Client) GetModel(llm.ModelTier) string { return "llmtest" }

func (c *Client) Close() error {
	c.mu.Lock()
	c.Closed = true
	c.mu.Unlock()
	return nil
}

// Calls returns how many requests were made.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}

// Profile returns a valid profile for title and level.
func Profile(title, level string, origin types.TitleOrigin, official string) types.JobProfile {
	if origin == types.OriginNew {
		official = types.NoOfficialTitle
	}
	return types.JobProfile{
		Title:                  title,
		Level:                  level,
		Mission:                "Deliver measurable results as " + title + ".",
		TitleOrigin:            origin,
		OfficialTitle:          official,
		Annotation:             "Generated for tests.",
		Responsibilities:       []string{"Own the weekly reporting cycle", "Partner with stakeholders"},
		BehavioralCompetencies: []string{"Customer orientation"},
		TechnicalCompetencies:  []string{"CRM tools"},
		Education:              []string{"Bachelor's degree"},
		KPIs:                   []string{"Forecast accuracy"},
	}
}

// JSON marshals p as the model would return it.
func JSON(p types.JobProfile) string {
	b, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	return string(b)
}
