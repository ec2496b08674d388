package config

import (
	"fmt"
	"os"
	"strings"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken string
	DatabaseURL   string
	BindingFile   string
	Timezone      string
	ReportTime    string
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		BindingFile:   strings.TrimSpace(os.Getenv("CONFIG_FILE")),
		Timezone:      strings.TrimSpace(os.Getenv("TIMEZONE")),
		ReportTime:    strings.TrimSpace(os.Getenv("REPORT_TIME")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "bot_data.db"
	}

	if cfg.BindingFile == "" {
		cfg.BindingFile = "config.json"
	}

	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Moscow"
	}

	if cfg.ReportTime == "" {
		cfg.ReportTime = "00:00"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}
