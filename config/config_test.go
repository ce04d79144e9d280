package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:    "valid config",
			config:  Config{DatabaseURL: "postgres://localhost/kiosk", JWTSecret: "secret"},
			wantErr: "",
		},
		{
			name:    "missing database url",
			config:  Config{JWTSecret: "secret"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "missing jwt secret",
			config:  Config{DatabaseURL: "postgres://localhost/kiosk"},
			wantErr: "JWT_SECRET is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestConfigEnvironmentHelpers(t *testing.T) {
	assert.True(t, (&Config{GoEnv: "production"}).IsProduction())
	assert.True(t, (&Config{GoEnv: "test"}).IsTest())
	assert.True(t, (&Config{GoEnv: "development"}).IsDevelopment())
	assert.False(t, (&Config{GoEnv: "development"}).IsProduction())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING_VAR", "hello")
	assert.Equal(t, "hello", getEnv("TEST_STRING_VAR", "fallback"))
	assert.Equal(t, "fallback", getEnv("TEST_UNSET_VAR", "fallback"))

	t.Setenv("TEST_INT_VAR", "7")
	assert.Equal(t, 7, getEnvInt("TEST_INT_VAR", 5))
	t.Setenv("TEST_BAD_INT_VAR", "not-a-number")
	assert.Equal(t, 5, getEnvInt("TEST_BAD_INT_VAR", 5))
	assert.Equal(t, 5, getEnvInt("TEST_UNSET_INT_VAR", 5))
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("DATABASE_URL", "postgres://localhost/kiosk_test")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.QueuePollSeconds)
	assert.Equal(t, "https://api.ipify.org?format=json", cfg.IPEchoURL)
	assert.True(t, cfg.IsTest())
	assert.Same(t, cfg, GetConfig())
}
