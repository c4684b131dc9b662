package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/export"
	"github.com/jonathan/jobcraft/internal/llm"
	"github.com/jonathan/jobcraft/internal/pipeline"
	"github.com/jonathan/jobcraft/internal/refdata"
	"github.com/jonathan/jobcraft/internal/retry"
	"github.com/jonathan/jobcraft/internal/schemas"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "invalid operator or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "profile not found: abc", (&ErrNotFound{Resource: "profile", ID: "abc"}).Error())
	assert.Equal(t, "validation error: limit - must be positive", (&ErrValidation{Field: "limit", Message: "must be positive"}).Error())
}

func TestHTTPStatus(t *testing.T) {
	overloaded := &llm.UpstreamError{Kind: llm.KindOverloaded, Code: 503, Cause: errors.New("busy")}

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &ErrValidation{Field: "id", Message: "bad"}, http.StatusBadRequest, "invalid_request"},
		{"request", &pipeline.RequestError{Cause: errors.New("title required")}, http.StatusBadRequest, "invalid_request"},
		{"credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized, "invalid_credentials"},
		{"not found", &ErrNotFound{Resource: "profile", ID: "x"}, http.StatusNotFound, "not_found"},
		{"config", &config.ConfigError{Field: "api_key", Message: "missing"}, http.StatusInternalServerError, "configuration"},
		{"reference", &refdata.ReferenceDataError{Table: refdata.TableCatalog, Cause: errors.New("quota")}, http.StatusBadGateway, "reference_data_unavailable"},
		{"exhausted wraps upstream", &retry.ExhaustedError{Attempts: 3, Last: overloaded}, http.StatusServiceUnavailable, "upstream_unavailable"},
		{"schema", &schemas.SchemaError{Message: "missing kpis"}, http.StatusBadGateway, "invalid_model_output"},
		{"upstream", fmt.Errorf("generate: %w", &llm.UpstreamError{Kind: llm.KindBlocked}), http.StatusBadGateway, "upstream_error"},
		{"upstream canceled", &llm.UpstreamError{Kind: llm.KindCanceled}, http.StatusGatewayTimeout, "upstream_timeout"},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{"export", &export.ExportError{Format: export.FormatPDF, Cause: errors.New("no chrome")}, http.StatusInternalServerError, "export_failed"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := HTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
