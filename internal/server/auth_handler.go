package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/jobcraft/internal/config"
	"github.com/jonathan/jobcraft/internal/types"
)

// AuthHandler exchanges the operator password for an access token.
type AuthHandler struct {
	passwordHash string
	passwords    *config.PasswordConfig
	jwtService   *JWTService
	logger       *zap.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(passwordHash string, passwords *config.PasswordConfig, jwtService *JWTService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		passwordHash: passwordHash,
		passwords:    passwords,
		jwtService:   jwtService,
		logger:       logger,
	}
}

// Token handles POST /auth/token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, h.logger, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, r, &ErrValidation{Field: "body", Message: extractValidationErrors(err)})
		return
	}

	if !h.passwords.VerifyPassword(req.Password, h.passwordHash) {
		h.logger.Warn("rejected operator login", zap.String("operator", req.Operator))
		writeError(w, h.logger, r, &ErrInvalidCredentials{})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(req.Operator)
	if err != nil {
		writeError(w, h.logger, r, fmt.Errorf("failed to generate token: %w", err))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, types.TokenResponse{Token: token, ExpiresAt: expiresAt})
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("%s failed %s", ve.Field(), ve.Tag())
	}
	return "invalid request"
}
