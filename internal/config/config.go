// Package config loads the process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"murphy/internal/ratelimit"
	"murphy/internal/store"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

const (
	Prefix = "APP"

	BuildModeDev  = "dev"
	BuildModeProd = "prod"
)

type Config struct {
	Port      string `envconfig:"PORT" default:":8080"`
	BuildMode string `envconfig:"BUILD_MODE" default:"prod"`
	SystemKey string `envconfig:"SYSTEM_KEY"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DB       string `envconfig:"DB" default:"file:murphy.db?_pragma=journal_mode(WAL)"`
	DBDebug  bool   `envconfig:"DB_DEBUG" default:"false"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE" default:"app.log"`

	VoteLimit   int           `envconfig:"VOTE_LIMIT" default:"30"`
	SubmitLimit int           `envconfig:"SUBMIT_LIMIT" default:"5"`
	RateWindow  time.Duration `envconfig:"RATE_WINDOW" default:"60s"`
	GlobalLimit int           `envconfig:"GLOBAL_LIMIT" default:"120"`
	RedisAddr   string        `envconfig:"REDIS_ADDR"`

	GeetestID  string `envconfig:"GEETEST_ID"`
	GeetestKey string `envconfig:"GEETEST_KEY"`

	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads .env when present, then the APP_* environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case store.DriverSQLite, store.DriverMySQL, store.DriverPostgres:
	default:
		return fmt.Errorf("unknown database driver: %s", c.DBDriver)
	}
	switch c.BuildMode {
	case BuildModeDev, BuildModeProd:
	default:
		return fmt.Errorf("unknown build mode: %s", c.BuildMode)
	}
	if c.VoteLimit <= 0 || c.SubmitLimit <= 0 {
		return fmt.Errorf("rate limits must be positive (vote=%d submit=%d)", c.VoteLimit, c.SubmitLimit)
	}
	if c.GlobalLimit < 0 {
		return fmt.Errorf("global limit must not be negative: %d", c.GlobalLimit)
	}
	if c.RateWindow <= 0 {
		return fmt.Errorf("rate window must be positive: %s", c.RateWindow)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c *Config) IsDev() bool { return c.BuildMode == BuildModeDev }

func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	if c.IsDev() && lvl > zerolog.DebugLevel {
		return zerolog.DebugLevel
	}
	return lvl
}

func (c *Config) Limits() ratelimit.Limits {
	return ratelimit.Limits{
		ratelimit.ActionVote:   c.VoteLimit,
		ratelimit.ActionSubmit: c.SubmitLimit,
	}
}

func (c *Config) CaptchaEnabled() bool {
	return c.GeetestID != "" && c.GeetestKey != ""
}
