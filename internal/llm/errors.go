package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/jonathan/jobcraft/internal/config"
)

// Kind categorizes an upstream failure.
type Kind string

const (
	KindRateLimited    Kind = "rate_limited"
	KindOverloaded     Kind = "overloaded"
	KindAuth           Kind = "auth"
	KindInvalidRequest Kind = "invalid_request"
	KindBlocked        Kind = "blocked"
	KindEmpty          Kind = "empty_response"
	KindCanceled       Kind = "canceled"
	KindUnknown        Kind = "unknown"
)

// UpstreamError wraps every failure reported by the generation endpoint.
type UpstreamError struct {
	Kind  Kind
	Code  int
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("upstream %s (code %d): %v", e.Kind, e.Code, e.Cause)
	}
	return fmt.Sprintf("upstream %s: %v", e.Kind, e.Cause)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Transient reports whether the same request may succeed if retried.
// Only rate limiting and overload qualify.
func (e *UpstreamError) Transient() bool {
	return e.Kind == KindRateLimited || e.Kind == KindOverloaded
}

// Classify wraps err in an *UpstreamError. Errors that are already classified
// and local *config.ConfigError values are returned unchanged; nil stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return err
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Kind: KindCanceled, Cause: err}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &UpstreamError{Kind: KindBlocked, Cause: err}
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Kind: kindForHTTP(apiErr.Code), Code: apiErr.Code, Cause: err}
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return &UpstreamError{Kind: kindForGRPC(st.Code()), Code: int(st.Code()), Cause: err}
	}

	return &UpstreamError{Kind: KindUnknown, Cause: err}
}

func kindForHTTP(code int) Kind {
	switch code {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusServiceUnavailable:
		return KindOverloaded
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusBadRequest, http.StatusNotFound:
		return KindInvalidRequest
	default:
		return KindUnknown
	}
}

func kindForGRPC(code codes.Code) Kind {
	switch code {
	case codes.ResourceExhausted:
		return KindRateLimited
	case codes.Unavailable:
		return KindOverloaded
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuth
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition:
		return KindInvalidRequest
	case codes.Canceled, codes.DeadlineExceeded:
		return KindCanceled
	default:
		return KindUnknown
	}
}
