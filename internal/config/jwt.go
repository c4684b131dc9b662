package config

import (
	"fmt"
	"os"
	"strconv"
)

// JWTConfig holds configuration for operator access tokens issued by the HTTP server.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 8).
func NewJWTConfig() (*JWTConfig, error) {
	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "8"
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, &ConfigError{Field: "JWT_EXPIRATION_HOURS", Message: fmt.Sprintf("invalid value: %v", err)}
	}

	config := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		ExpirationHours: expirationHours,
		Issuer:          "jobcraft",
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return &ConfigError{Field: "JWT_SECRET", Message: "required when operator authentication is enabled"}
	}
	if len(c.Secret) < 32 {
		return &ConfigError{Field: "JWT_SECRET", Message: "must be at least 32 characters"}
	}
	if c.ExpirationHours < 1 {
		return &ConfigError{Field: "JWT_EXPIRATION_HOURS", Message: fmt.Sprintf("must be at least 1 hour, got: %d", c.ExpirationHours)}
	}
	return nil
}
