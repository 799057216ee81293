package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("AUTH_LATENCY", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 800*time.Millisecond, cfg.AuthLatency)
	assert.Equal(t, 10, cfg.LowStockThreshold)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("MPESA_CONFIRM_DELAY", "150ms")
	t.Setenv("LOW_STOCK_THRESHOLD", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 150*time.Millisecond, cfg.MpesaConfirmDelay)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CARD_DELAY", "soon")
	t.Setenv("SMTP_PORT", "abc")

	cfg := Load()

	assert.Equal(t, 2*time.Second, cfg.CardDelay)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	assert.Empty(t, cfg.JWTSecret)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecret)

	t.Setenv("SESSION_SECRET", "s3ss10n")
	assert.ErrorIs(t, Load().Validate(), ErrMissingSecret)

	t.Setenv("JWT_SECRET", devJWTSecret)
	assert.ErrorIs(t, Load().Validate(), ErrMissingSecret)

	t.Setenv("JWT_SECRET", "jwt-s3cret")
	require.NoError(t, Load().Validate())
}

func TestDevelopmentFallsBackToDevSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	require.NoError(t, cfg.Validate())
}
