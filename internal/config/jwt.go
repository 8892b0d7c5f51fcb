// Package config provides JWT configuration functionality.
package config

import (
	"fmt"
	"os"
	"time"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_TOKEN_TTL (default: 24h) and
// JWT_ISSUER (default: resume-parser).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	ttl := 24 * time.Hour
	if ttlStr := os.Getenv("JWT_TOKEN_TTL"); ttlStr != "" {
		parsed, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TOKEN_TTL: %v", err)
		}
		ttl = parsed
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "resume-parser"
	}

	config := &JWTConfig{
		Secret:   secret,
		TokenTTL: ttl,
		Issuer:   issuer,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.TokenTTL < time.Minute {
		return fmt.Errorf("JWT_TOKEN_TTL must be at least one minute, got: %s", c.TokenTTL)
	}
	return nil
}
