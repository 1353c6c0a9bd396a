package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultModel      = "gemini-1.5-flash"
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultTimezone   = "UTC"
	DefaultReminderAt = "20:30"
	DefaultBufSize    = 100
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Gemini   GeminiConfig   `json:"gemini"`
	Store    StoreConfig    `json:"store"`
	Clock    ClockConfig    `json:"clock"`
	Reminder ReminderConfig `json:"reminder"`
}

type TelegramConfig struct {
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom,omitempty"`
	Proxy     string   `json:"proxy,omitempty"`
}

type GeminiConfig struct {
	APIKey  string `json:"apiKey"`
	Model   string `json:"model"`
	BaseURL string `json:"baseUrl,omitempty"`
}

type StoreConfig struct {
	DBPath string `json:"dbPath,omitempty"`
}

// ClockConfig fixes the time zone used for day windowing. The window is
// computed in this zone regardless of where the process runs.
type ClockConfig struct {
	Timezone string `json:"timezone"`
}

type ReminderConfig struct {
	Enabled bool   `json:"enabled"`
	At      string `json:"at,omitempty"` // HH:MM in the configured timezone
}

func DefaultConfig() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model:   DefaultModel,
			BaseURL: DefaultBaseURL,
		},
		Clock: ClockConfig{Timezone: DefaultTimezone},
		Reminder: ReminderConfig{
			Enabled: false,
			At:      DefaultReminderAt,
		},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".dailyecho")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func (c *Config) DBPath() string {
	if c.Store.DBPath != "" {
		return c.Store.DBPath
	}
	return filepath.Join(ConfigDir(), "data", "dailyecho.db")
}

// Location resolves the configured time zone, defaulting to UTC.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Clock.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

func LoadConfig() (*Config, error) {
	// A .env alongside the process is honored before reading env vars.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if token := os.Getenv("DAILYECHO_TELEGRAM_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	if token := os.Getenv("BOT_TOKEN"); token != "" && cfg.Telegram.Token == "" {
		cfg.Telegram.Token = token
	}
	if key := os.Getenv("DAILYECHO_GEMINI_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if key := os.Getenv("GEMINI_KEY"); key != "" && cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = key
	}
	if model := os.Getenv("DAILYECHO_GEMINI_MODEL"); model != "" {
		cfg.Gemini.Model = model
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" && cfg.Gemini.Model == DefaultModel {
		cfg.Gemini.Model = model
	}
	if url := os.Getenv("DAILYECHO_GEMINI_BASE_URL"); url != "" {
		cfg.Gemini.BaseURL = url
	}
	if dbPath := os.Getenv("DAILYECHO_DB_PATH"); dbPath != "" {
		cfg.Store.DBPath = dbPath
	}
	if tz := os.Getenv("DAILYECHO_TIMEZONE"); tz != "" {
		cfg.Clock.Timezone = tz
	}
	if enabled := os.Getenv("DAILYECHO_REMINDER_ENABLED"); enabled != "" {
		if parsed, err := strconv.ParseBool(enabled); err == nil {
			cfg.Reminder.Enabled = parsed
		}
	}
	if at := os.Getenv("DAILYECHO_REMINDER_AT"); at != "" {
		cfg.Reminder.At = at
	}

	return cfg, nil
}
