package config

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var (
	BotToken         = "BOT_TOKEN"
	OwnerID          = "OWNER_ID"
	DbPath           = "DB_PATH"
	StepPollInterval = "STEP_POLL_INTERVAL"
	LogLevel         = "LOG_LEVEL"

	defaultDbPath           = "wizard.db"
	defaultStepPollInterval = 5 * time.Second
	defaultLogLevel         = "info"
)

type Config struct {
	BotToken         string
	OwnerID          int64
	DbPath           string
	StepPollInterval time.Duration
	LogLevel         log.Level
}

// LoadConfig reads the configuration from the environment. BOT_TOKEN and
// OWNER_ID are only enforced by Validate, so tools that never talk to
// Telegram can share the loader.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault(DbPath, defaultDbPath)
	v.SetDefault(StepPollInterval, defaultStepPollInterval)
	v.SetDefault(LogLevel, defaultLogLevel)

	level, err := log.ParseLevel(strings.TrimSpace(v.GetString(LogLevel)))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", LogLevel, err)
	}

	interval := v.GetDuration(StepPollInterval)
	if interval <= 0 {
		return nil, fmt.Errorf("invalid %s: %q", StepPollInterval, v.GetString(StepPollInterval))
	}

	var ownerID int64
	if raw := strings.TrimSpace(v.GetString(OwnerID)); raw != "" {
		ownerID = v.GetInt64(OwnerID)
		if ownerID == 0 {
			return nil, fmt.Errorf("invalid %s: %q", OwnerID, raw)
		}
	}

	return &Config{
		BotToken:         v.GetString(BotToken),
		OwnerID:          ownerID,
		DbPath:           v.GetString(DbPath),
		StepPollInterval: interval,
		LogLevel:         level,
	}, nil
}

// Validate checks the settings the Telegram bot cannot run without.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("%s environment variable is required", BotToken)
	}
	if c.OwnerID == 0 {
		return fmt.Errorf("%s environment variable is required", OwnerID)
	}
	return nil
}

// DSN is the sqlite connection string used by every binary.
func (c *Config) DSN() string {
	return c.DbPath + "?_journal_mode=WAL&_busy_timeout=5000"
}
