package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TokenRequest represents an operator login for the HTTP API.
type TokenRequest struct {
	Operator string `json:"operator" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenResponse carries a signed access token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
