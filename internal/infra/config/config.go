package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL    string // empty selects the in-memory stores
	HTTPAddr       string
	LogLevel       string
	Environment    string
	Location       *time.Location // zone the calendar day is taken in
	CronSpecPass   string
	ReactivePasses bool // run a pass after every customer or settings change

	SMTP     SMTPConfig
	Telegram TelegramConfig
	Geocoder GeocoderConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether email delivery is configured.
func (c SMTPConfig) Enabled() bool { return c.Host != "" }

type TelegramConfig struct {
	Token  string
	ChatID int64
}

func (c TelegramConfig) Enabled() bool { return c.Token != "" && c.ChatID != 0 }

type GeocoderConfig struct {
	URL       string
	UserAgent string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Environment:  strings.ToLower(getEnv("ENVIRONMENT", "development")),
		CronSpecPass: getEnv("CRON_SPEC_PASS", "*/15 * * * *"),
	}
	var err error

	tz := getEnv("TIMEZONE", "UTC")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	cfg.ReactivePasses, err = strconv.ParseBool(getEnv("REACTIVE_PASSES", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid REACTIVE_PASSES: %w", err)
	}

	cfg.SMTP = SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	cfg.SMTP.Port, err = strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	if cfg.SMTP.Enabled() && cfg.SMTP.From == "" {
		return nil, fmt.Errorf("SMTP_FROM is not set")
	}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.Telegram.ChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}

	cfg.Geocoder = GeocoderConfig{
		URL:       os.Getenv("GEOCODER_URL"),
		UserAgent: getEnv("GEOCODER_USER_AGENT", "septic-reminder-service/1.0"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
