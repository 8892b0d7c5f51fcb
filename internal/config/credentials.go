// Package config provides configuration loading and validation for the resume parser.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Credentials holds the parameters for hashing and verifying the API
// key that guards the HTTP parse endpoint.
type Credentials struct {
	BcryptCost int
	Pepper     string // optional global secret mixed into the key before hashing
}

// NewCredentials builds credential parameters from environment
// variables: BCRYPT_COST (default 12) and optionally API_KEY_PEPPER.
func NewCredentials() (*Credentials, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12"
	}
	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	c := &Credentials{
		BcryptCost: cost,
		Pepper:     os.Getenv("API_KEY_PEPPER"),
	}
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return c, nil
}

// HashKey hashes an API key with bcrypt, mixing in the pepper when set.
func (c *Credentials) HashKey(key string) (string, error) {
	if c.Pepper != "" {
		key += c.Pepper
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

// VerifyKey checks an API key against a stored bcrypt hash.
func (c *Credentials) VerifyKey(key, storedHash string) bool {
	if c.Pepper != "" {
		key += c.Pepper
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(key)) == nil
}
