// Package pipeline runs one generation end to end: request validation,
// reference data, model call with retries, persistence and logging.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/generation"
	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/retry"
	"github.com/jonathan/jobcraft/internal/store"
	"github.com/jonathan/jobcraft/internal/types"
)

// Progress steps reported through OnProgress.
const (
	StepValidate  = "validate"
	StepReference = "reference_data"
	StepGenerate  = "generate"
	StepSave      = "save"
	StepLog       = "log"
)

// ProgressEvent represents a progress update during one generation.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs.
type ProgressCallback func(event ProgressEvent)

// RequestError reports operator input that failed validation. Nothing was sent
// to the model.
type RequestError struct {
	Cause error
}

func (e *RequestError) Error() string {
	var verrs validator.ValidationErrors
	if errors.As(e.Cause, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag())
		}
		return "invalid request: " + strings.Join(fields, ", ")
	}
	return fmt.Sprintf("invalid request: %v", e.Cause)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Result is a generated profile and what happened after generation.
// SaveErr and LogErr are warnings: the profile is valid either way.
type Result struct {
	ID       uuid.UUID
	Profile  *types.JobProfile
	Attempts int
	SaveErr  error
	LogErr   error
}

// Service wires the generation dependencies. Source is usually a *refdata.Cached.
// Store and Log are optional.
type Service struct {
	Source     refdata.Source
	Generator  *generation.Generator
	Retry      *retry.Controller
	Store      store.ProfileStore
	Log        store.LogSink
	Logger     *zap.Logger
	Now        func() time.Time
	OnProgress ProgressCallback
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) emit(step, message string) {
	if s.OnProgress != nil {
		s.OnProgress(ProgressEvent{Step: step, Message: message})
	}
}

// Generate produces one profile. It returns an error only when no valid
// profile was obtained: *RequestError, *refdata.ReferenceDataError or the
// retry controller's terminal error.
func (s *Service) Generate(ctx context.Context, req types.GenerationRequest, operator string) (*Result, error) {
	logger := s.logger().With(zap.String("title", req.Title), zap.String("level", req.Level))

	req.Normalize()
	s.emit(StepValidate, "validating request")
	if err := req.Validate(); err != nil {
		return nil, &RequestError{Cause: err}
	}

	s.emit(StepReference, "loading competencies and title catalog")
	refs, err := refdata.Snapshot(ctx, s.Source)
	if err != nil {
		logger.Error("reference data unavailable", zap.Error(err))
		return nil, err
	}

	ctrl := s.Retry
	if ctrl == nil {
		ctrl = &retry.Controller{Logger: logger}
	}
	s.emit(StepGenerate, "requesting job profile")
	profile, outcome, err := s.Generator.GenerateWithRetry(ctx, ctrl, req, refs)
	if err != nil {
		logger.Error("generation failed",
			zap.String("state", string(outcome.State)),
			zap.Int("attempts", outcome.Attempts),
			zap.Error(err))
		return nil, err
	}

	result := &Result{ID: uuid.New(), Profile: profile, Attempts: outcome.Attempts}
	logger.Info("job profile generated",
		zap.String("origin", string(profile.TitleOrigin)),
		zap.String("official_title", profile.OfficialTitle),
		zap.Int("attempts", outcome.Attempts))

	if s.Store != nil {
		s.emit(StepSave, "saving profile")
		sp := &types.StoredProfile{
			ID:        result.ID,
			CreatedAt: s.now(),
			Request:   req,
			Profile:   profile,
			Attempts:  outcome.Attempts,
			Operator:  operator,
		}
		if err := s.Store.SaveProfile(ctx, sp); err != nil {
			result.SaveErr = err
			logger.Warn("failed to save profile", zap.Error(err))
		}
	}

	if s.Log != nil {
		s.emit(StepLog, "appending generation log")
		rec := types.NewLogRecord(s.now(), req, profile, operator)
		if err := s.Log.Append(ctx, rec); err != nil {
			result.LogErr = err
			logger.Warn("failed to append generation log", zap.Error(err))
		}
	}

	return result, nil
}
