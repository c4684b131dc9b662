// Package generation turns a generation request into a validated JobProfile
// with one call to the text-generation endpoint.
package generation

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/llm"
	"github.com/jonathan/jobcraft/internal/prompts"
	"github.com/jonathan/jobcraft/internal/retry"
	"github.com/jonathan/jobcraft/internal/schemas"
	"github.com/jonathan/jobcraft/internal/types"
)

// Generator sends a prompt to the model and validates the reply.
type Generator struct {
	Client llm.Client
	Tier   llm.ModelTier
	Logger *zap.Logger
}

// New returns a Generator on the standard tier.
func New(client llm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{Client: client, Tier: llm.TierStandard, Logger: logger}
}

// Generate performs exactly one network request. Failures are
// *llm.UpstreamError or *schemas.SchemaError.
func (g *Generator) Generate(ctx context.Context, req types.GenerationRequest, refs types.ReferenceSnapshot) (*types.JobProfile, error) {
	prompt := prompts.BuildJobProfilePrompt(req, refs)
	g.Logger.Debug("sending generation request",
		zap.String("title", req.Title),
		zap.String("model", g.Client.GetModel(g.Tier)),
		zap.Int("prompt_bytes", len(prompt)),
		zap.Int("competencies", len(refs.Competencies)),
		zap.Int("catalog", len(refs.Catalog)))

	raw, err := g.Client.GenerateJSON(ctx, prompt, g.Tier, llm.JobProfileResponseSchema())
	if err != nil {
		return nil, llm.Classify(err)
	}

	profile, err := schemas.ParseJobProfile(raw)
	if err != nil {
		g.Logger.Warn("model reply rejected by schema", zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// GenerateWithRetry wraps Generate in the retry controller.
func (g *Generator) GenerateWithRetry(ctx context.Context, ctrl *retry.Controller, req types.GenerationRequest, refs types.ReferenceSnapshot) (*types.JobProfile, retry.Outcome, error) {
	var profile *types.JobProfile
	outcome, err := ctrl.Do(ctx, func(ctx context.Context, attempt int) error {
		p, err := g.Generate(ctx, req, refs)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, outcome, err
	}
	return profile, outcome, nil
}
