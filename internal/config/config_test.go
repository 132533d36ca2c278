package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"murphy/internal/ratelimit"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30, cfg.VoteLimit)
	assert.Equal(t, 5, cfg.SubmitLimit)
	assert.Equal(t, 60*time.Second, cfg.RateWindow)
	assert.False(t, cfg.IsDev())
	assert.False(t, cfg.CaptchaEnabled())
	assert.Equal(t, ratelimit.Limits{ratelimit.ActionVote: 30, ratelimit.ActionSubmit: 5}, cfg.Limits())
}

func TestLoadFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("APP_SUBMIT_LIMIT=2\nAPP_BUILD_MODE=dev\n"), 0o600))
	t.Setenv("APP_VOTE_LIMIT", "10")
	t.Setenv("APP_RATE_WINDOW", "30s")
	// godotenv does not overwrite variables that are already set
	t.Setenv("APP_SUBMIT_LIMIT", "3")
	t.Setenv("APP_BUILD_MODE", "dev")

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.VoteLimit)
	assert.Equal(t, 3, cfg.SubmitLimit)
	assert.Equal(t, 30*time.Second, cfg.RateWindow)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DBDriver:    "sqlite",
			BuildMode:   BuildModeProd,
			VoteLimit:   30,
			SubmitLimit: 5,
			RateWindow:  time.Minute,
			LogLevel:    "info",
		}
	}
	ok := base()
	assert.NoError(t, ok.Validate())

	cases := map[string]func(*Config){
		"driver": func(c *Config) { c.DBDriver = "oracle" },
		"mode":   func(c *Config) { c.BuildMode = "staging" },
		"vote":   func(c *Config) { c.VoteLimit = 0 },
		"submit": func(c *Config) { c.SubmitLimit = -1 },
		"window": func(c *Config) { c.RateWindow = 0 },
		"global": func(c *Config) { c.GlobalLimit = -5 },
		"level":  func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}
