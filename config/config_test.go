package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DEMO_MODE", "false")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET_KEY is not set")
}

func TestLoadDemoModeWithoutSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("DEMO_USER_ID", "local")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, "local", cfg.DemoUserID)
	assert.NotEmpty(t, cfg.JWT.SecretKey)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("TIMEZONE", "Europe/Berlin")
	t.Setenv("JWT_EXPIRATION_TIME", "15m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MONGO_DB", "habits_test")
	t.Setenv("STATS_CACHE_TTL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "habits_test", cfg.Database.DatabaseName)
	assert.Equal(t, time.Minute, cfg.Redis.StatsTTL)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	t.Setenv("TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}
