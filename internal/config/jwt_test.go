package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearJWTEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SUPABASE_JWT_SECRET", "JWT_SECRET", "JWT_EXPIRATION_HOURS", "JWT_REQUIRED_ROLE"} {
		t.Setenv(key, "")
	}
}

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	clearJWTEnv(t)
	t.Setenv("JWT_SECRET", "test-secret-key")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "test-secret-key", cfg.Secret)
	assert.Equal(t, "authenticated", cfg.RequiredRole)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
}

func TestNewJWTConfig_PrefersSupabaseSecret(t *testing.T) {
	clearJWTEnv(t)
	t.Setenv("SUPABASE_JWT_SECRET", "supabase-secret")
	t.Setenv("JWT_SECRET", "local-secret")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "supabase-secret", cfg.Secret)
}

func TestNewJWTConfig_MissingSecret(t *testing.T) {
	clearJWTEnv(t)

	cfg, err := NewJWTConfig()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "required")
}

func TestNewJWTConfig_CustomExpiration(t *testing.T) {
	tests := []struct {
		name          string
		expiration    string
		expectedHours int
		wantErr       bool
	}{
		{"custom expiration 12 hours", "12", 12, false},
		{"minimum expiration 1 hour", "1", 1, false},
		{"zero is rejected", "0", 0, true},
		{"negative is rejected", "-5", 0, true},
		{"not a number", "soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearJWTEnv(t)
			t.Setenv("JWT_SECRET", "test-secret-key")
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)

			cfg, err := NewJWTConfig()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedHours, cfg.ExpirationHours)
		})
	}
}

func TestNewJWTConfig_CustomRole(t *testing.T) {
	clearJWTEnv(t)
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_REQUIRED_ROLE", "service_role")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	assert.Equal(t, "service_role", cfg.RequiredRole)
}
