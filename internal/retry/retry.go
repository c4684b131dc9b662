// Package retry runs a generation attempt inside a bounded, fixed-delay retry loop.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// State is a step of the retry state machine.
type State string

const (
	Idle            State = "idle"
	Attempting      State = "attempting"
	Succeeded       State = "succeeded"
	ExhaustedFailed State = "exhausted_failed"
	FatalFailed     State = "fatal_failed"
)

// Defaults used when a Controller field is zero.
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 2 * time.Second
)

// Transient is implemented by errors that know whether a retry may help.
// Errors that do not implement it are treated as fatal.
type Transient interface {
	Transient() bool
}

// IsTransient reports whether any error in err's chain is transient.
func IsTransient(err error) bool {
	var t Transient
	return errors.As(err, &t) && t.Transient()
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ExhaustedError is returned when every attempt failed transiently.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Outcome records how a Do call ended.
type Outcome struct {
	State    State
	Attempts int
	Err      error
}

// Controller retries an operation on transient failures with a fixed delay
// between attempts. A zero MaxAttempts or negative Delay uses the defaults.
type Controller struct {
	MaxAttempts int
	Delay       time.Duration
	Sleep       SleepFunc
	Logger      *zap.Logger
}

// Do calls op until it succeeds, fails fatally, or MaxAttempts transient
// failures occur. It never sleeps after the final attempt. The returned error is
// nil on success, *ExhaustedError when attempts ran out, the fatal error
// otherwise, or the context error if ctx ends during a delay.
func (c *Controller) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (Outcome, error) {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	delay := c.Delay
	if delay < 0 {
		delay = DefaultDelay
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	state := Idle
	transition := func(next State, attempt int) {
		logger.Debug("retry transition",
			zap.String("from", string(state)),
			zap.String("to", string(next)),
			zap.Int("attempt", attempt))
		state = next
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		transition(Attempting, attempt)

		err := op(ctx, attempt)
		if err == nil {
			transition(Succeeded, attempt)
			return Outcome{State: state, Attempts: attempt}, nil
		}
		lastErr = err

		if !IsTransient(err) {
			logger.Warn("attempt failed with fatal error", zap.Int("attempt", attempt), zap.Error(err))
			transition(FatalFailed, attempt)
			return Outcome{State: state, Attempts: attempt, Err: err}, err
		}

		if attempt == maxAttempts {
			break
		}

		logger.Info("attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		if serr := sleep(ctx, delay); serr != nil {
			transition(FatalFailed, attempt)
			return Outcome{State: state, Attempts: attempt, Err: serr}, serr
		}
	}

	exhausted := &ExhaustedError{Attempts: maxAttempts, Last: lastErr}
	logger.Warn("attempts exhausted", zap.Int("attempts", maxAttempts), zap.Error(lastErr))
	transition(ExhaustedFailed, maxAttempts)
	return Outcome{State: state, Attempts: maxAttempts, Err: exhausted}, exhausted
}
