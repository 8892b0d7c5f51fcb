package server

import (
	"github.com/jonathan/resume-parser/internal/config"
)

// AuthService verifies API keys against the configured bcrypt hash.
// There is no user store; the server authenticates a single shared key
// and issues short-lived tokens for it.
type AuthService struct {
	creds      *config.Credentials
	apiKeyHash string
}

// NewAuthService creates an AuthService for the given credential
// parameters and stored API key hash.
func NewAuthService(creds *config.Credentials, apiKeyHash string) *AuthService {
	return &AuthService{
		creds:      creds,
		apiKeyHash: apiKeyHash,
	}
}

// Enabled reports whether an API key hash is configured.
func (s *AuthService) Enabled() bool {
	return s.apiKeyHash != ""
}

// Authenticate checks the presented API key against the stored hash.
func (s *AuthService) Authenticate(apiKey string) error {
	if !s.Enabled() {
		return &ErrAuthDisabled{}
	}
	if !s.creds.VerifyKey(apiKey, s.apiKeyHash) {
		return &ErrInvalidCredentials{}
	}
	return nil
}
