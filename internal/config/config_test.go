package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults with a full environment", func(t *testing.T) {
		t.Setenv("CHARGINGHUB_ENV", "")
		t.Setenv("CHARGINGHUB_HTTP_PORT", "")
		t.Setenv("CHARGINGHUB_DATABASE_URL", "postgres://localhost/charginghub")
		t.Setenv("CHARGINGHUB_JWT_SECRET", "topsecret")
		t.Setenv("CHARGINGHUB_TOKEN_TTL", "")
		t.Setenv("CHARGINGHUB_UPLOAD_DIR", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "production", cfg.Environment)
		require.Equal(t, 8080, cfg.HTTPPort)
		require.Equal(t, time.Hour, cfg.TokenTTL)
		require.Equal(t, "uploads", cfg.UploadDir)
		require.Equal(t, "topsecret", cfg.JWTSecret)
		require.False(t, cfg.GeneratedSecret)
	})

	t.Run("requires secret and database outside development", func(t *testing.T) {
		t.Setenv("CHARGINGHUB_ENV", "production")
		t.Setenv("CHARGINGHUB_DATABASE_URL", "")
		t.Setenv("CHARGINGHUB_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "CHARGINGHUB_JWT_SECRET")
		require.Contains(t, err.Error(), "CHARGINGHUB_DATABASE_URL")
	})

	t.Run("generates a secret in the development profile", func(t *testing.T) {
		t.Setenv("CHARGINGHUB_ENV", "development")
		t.Setenv("CHARGINGHUB_DATABASE_URL", "")
		t.Setenv("CHARGINGHUB_JWT_SECRET", "")

		cfg, err := Load()
		require.NoError(t, err)
		require.True(t, cfg.GeneratedSecret)
		require.NotEmpty(t, cfg.JWTSecret)
		require.Empty(t, cfg.DatabaseURL)
	})

	t.Run("rejects malformed numeric and duration values", func(t *testing.T) {
		t.Setenv("CHARGINGHUB_ENV", "development")
		t.Setenv("CHARGINGHUB_JWT_SECRET", "topsecret")
		t.Setenv("CHARGINGHUB_HTTP_PORT", "not-a-port")
		t.Setenv("CHARGINGHUB_TOKEN_TTL", "-5m")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "CHARGINGHUB_HTTP_PORT")
		require.Contains(t, err.Error(), "CHARGINGHUB_TOKEN_TTL")
	})
}
