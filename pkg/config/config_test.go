package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, 5*time.Minute, cfg.Projects.CacheTTL)
	assert.False(t, cfg.Projects.RereviewOnEdit)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_EXPIRATION", "2h")
	t.Setenv("PROJECTS_REREVIEW_ON_EDIT", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://edubuild.example ,")
	t.Setenv("AI_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expiration)
	assert.True(t, cfg.Projects.RereviewOnEdit)
	assert.Equal(t, []string{"http://localhost:5173", "https://edubuild.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.AI.Timeout)
}

func TestAIConfigEnabled(t *testing.T) {
	assert.False(t, AIConfig{}.Enabled())
	assert.False(t, AIConfig{APIKey: "  "}.Enabled())
	assert.False(t, AIConfig{APIKey: "YOUR_GEMINI_API_KEY_HERE"}.Enabled())
	assert.True(t, AIConfig{APIKey: "real-key"}.Enabled())
}
