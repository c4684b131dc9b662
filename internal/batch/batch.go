// Package batch processes a file of generation requests one after another.
package batch

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/notify"
	"github.com/jonathan/jobcraft/internal/pipeline"
	"github.com/jonathan/jobcraft/internal/types"
)

// Generator produces one profile; *pipeline.Service satisfies it.
type Generator interface {
	Generate(ctx context.Context, req types.GenerationRequest, operator string) (*pipeline.Result, error)
}

// RowWriter appends a flattened profile row; *store.CSVFile satisfies it.
type RowWriter interface {
	AppendRow(row []string) error
}

// ItemResult is the outcome of one input row. Index is 1-based.
type ItemResult struct {
	Index     int
	Request   types.GenerationRequest
	ID        uuid.UUID
	Profile   *types.JobProfile
	Attempts  int
	Err       error
	OutputErr error
}

// Report summarizes a run.
type Report struct {
	Total     int
	Succeeded int
	Failed    int
	Items     []ItemResult
	Notified  bool
	NotifyErr error
}

// Runner processes requests sequentially. Notifier and Output are optional.
type Runner struct {
	Generator Generator
	Notifier  notify.Sender
	Recipient string
	Output    RowWriter
	Operator  string
	Logger    *zap.Logger
}

// Run processes every request in order. A failed item is recorded and the run
// continues. At most one notification is sent: for the first item, and only if
// it succeeded.
func (r *Runner) Run(ctx context.Context, reqs []types.GenerationRequest) *Report {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := &Report{Total: len(reqs), Items: make([]ItemResult, 0, len(reqs))}
	for i, req := range reqs {
		item := ItemResult{Index: i + 1, Request: req}
		itemLogger := logger.With(
			zap.Int("item", item.Index),
			zap.Int("total", report.Total),
			zap.String("title", req.Title))

		if err := ctx.Err(); err != nil {
			item.Err = err
			report.Failed++
			report.Items = append(report.Items, item)
			continue
		}

		itemLogger.Info("processing batch item")
		res, err := r.Generator.Generate(ctx, req, r.Operator)
		if err != nil {
			item.Err = err
			report.Failed++
			report.Items = append(report.Items, item)
			itemLogger.Error("batch item failed", zap.Error(err))
			continue
		}

		item.ID, item.Profile, item.Attempts = res.ID, res.Profile, res.Attempts
		report.Succeeded++

		if r.Output != nil {
			if err := r.Output.AppendRow(export.CSVRow(res.Profile)); err != nil {
				item.OutputErr = err
				itemLogger.Warn("failed to append output row", zap.Error(err))
			}
		}
		report.Items = append(report.Items, item)

		if i == 0 && r.Notifier != nil {
			report.NotifyErr = r.notify(ctx, req, res.Profile)
			report.Notified = report.NotifyErr == nil
			if report.NotifyErr != nil {
				itemLogger.Warn("notification failed", zap.Error(report.NotifyErr))
			}
		}
	}

	logger.Info("batch finished",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report
}

func (r *Runner) notify(ctx context.Context, req types.GenerationRequest, p *types.JobProfile) error {
	msg, err := notify.ProfileMessage(r.Recipient, req.Title, p)
	if err != nil {
		return err
	}
	if err := r.Notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify %s: %w", r.Recipient, err)
	}
	return nil
}
