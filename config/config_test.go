package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SMTP_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.ClinicTimezone)
	assert.Equal(t, "*/15 * * * *", cfg.ReconcileSchedule)
	assert.False(t, cfg.EmailEnabled())
	assert.Error(t, cfg.RequireDatabase())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("DATABASE_URL", "postgres://clinic@localhost/clinic")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.EmailEnabled())
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoadRejectsNonPositiveTTL(t *testing.T) {
	t.Setenv("JWT_TTL", "0s")

	_, err := Load()
	assert.Error(t, err)
}
