package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultRequiredRole is the role claim the identity provider puts on signed-in users.
const DefaultRequiredRole = "authenticated"

// JWTConfig holds configuration for JWT token validation.
// Tokens are issued by the external identity provider and verified with its
// shared HS256 secret. ExpirationHours only applies to locally minted tokens.
type JWTConfig struct {
	Secret          string
	RequiredRole    string
	ExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads SUPABASE_JWT_SECRET (falling back to JWT_SECRET, one is required),
// JWT_REQUIRED_ROLE (default: authenticated) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		return nil, fmt.Errorf("SUPABASE_JWT_SECRET or JWT_SECRET is required but not set")
	}

	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24"
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
	}

	role := os.Getenv("JWT_REQUIRED_ROLE")
	if role == "" {
		role = DefaultRequiredRole
	}

	config := &JWTConfig{
		Secret:          secret,
		RequiredRole:    role,
		ExpirationHours: expirationHours,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT secret cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
