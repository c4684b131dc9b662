package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/llm"
	"github.com/jonathan/jobcraft/internal/pipeline"
	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/retry"
	"github.com/jonathan/jobcraft/internal/schemas"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid operator or password"
}

// ErrNotFound indicates a missing resource
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the status code and a stable error code for err.
// Exhausted retries are checked before upstream errors since they wrap one.
func HTTPStatus(err error) (int, string) {
	var (
		validation  *ErrValidation
		request     *pipeline.RequestError
		credentials *ErrInvalidCredentials
		notFound    *ErrNotFound
		configErr   *config.ConfigError
		refErr      *refdata.ReferenceDataError
		exhausted   *retry.ExhaustedError
		schemaErr   *schemas.SchemaError
		upstream    *llm.UpstreamError
		exportErr   *export.ExportError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &request):
		return http.StatusBadRequest, "invalid_request"
	case errors.As(err, &credentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "not_found"
	case errors.As(err, &configErr):
		return http.StatusInternalServerError, "configuration"
	case errors.As(err, &refErr):
		return http.StatusBadGateway, "reference_data_unavailable"
	case errors.As(err, &exhausted):
		return http.StatusServiceUnavailable, "upstream_unavailable"
	case errors.As(err, &schemaErr):
		return http.StatusBadGateway, "invalid_model_output"
	case errors.As(err, &upstream):
		if upstream.Kind == llm.KindCanceled {
			return http.StatusGatewayTimeout, "upstream_timeout"
		}
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &exportErr):
		return http.StatusInternalServerError, "export_failed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
