package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"task-planner/internal/logger"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken       string `mapstructure:"telegram_token"`
	DatabaseDriver      string `mapstructure:"database_driver" validate:"oneof=sqlite postgres"`
	DatabaseURL         string `mapstructure:"database_url" validate:"required"`
	HTTPAddr            string `mapstructure:"http_addr" validate:"required"`
	ReportIntervalHours int    `mapstructure:"report_interval_hours" validate:"gte=0"`
	ReportTime          string `mapstructure:"report_time" validate:"omitempty,datetime=15:04"`
	BotPageSize         int    `mapstructure:"bot_page_size" validate:"gt=0,lte=10"`
	APIPageSize         int    `mapstructure:"api_page_size" validate:"gt=0,lte=200"`
	LogLevel            string `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	LogDev              bool   `mapstructure:"log_dev"`
	LogFile             string `mapstructure:"log_file"`
	LogMaxAgeDays       int    `mapstructure:"log_max_age_days" validate:"gte=0"`
}

var defaults = map[string]any{
	"telegram_token":        "",
	"database_driver":       "sqlite",
	"database_url":          "daily_planner.db",
	"http_addr":             ":8080",
	"report_interval_hours": 5,
	"report_time":           "",
	"bot_page_size":         3,
	"api_page_size":         20,
	"log_level":             "info",
	"log_dev":               false,
	"log_file":              "",
	"log_max_age_days":      7,
}

var validate = validator.New()

// Load reads configuration from the environment (and a .env file, if present)
// with sane defaults.
func Load() (Config, error) {
	// best-effort: a missing .env is not an error
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReportInterval is how often digests are sent when no daily time is set.
func (c Config) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalHours) * time.Hour
}

// BotEnabled reports whether a Telegram token was configured.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// Logger returns the logging section.
func (c Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Dev:        c.LogDev,
		File:       c.LogFile,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}
