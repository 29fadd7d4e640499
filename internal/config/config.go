package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Env  string
	Port string

	BotToken        string
	ChannelID       string
	WebhookSecret   string
	TelegramAPIBase string
	RequestTimeout  time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	DataDir      string
	MappingFile  string
	SessionsFile string
	LastSpinFile string

	RedisAddr string
	RedisPass string
	RedisDB   int

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "5174"),

		BotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChannelID:       os.Getenv("CHANNEL_ID"),
		TelegramAPIBase: getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		RequestTimeout:  getDuration("TELEGRAM_REQUEST_TIMEOUT", 30*time.Second),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getDuration("TOKEN_TTL", 24*time.Hour),

		DataDir: getEnv("DATA_DIR", "./data"),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Older deployments used WEBHOOK_SECRET without the TELEGRAM_ prefix.
	cfg.WebhookSecret = os.Getenv("TELEGRAM_WEBHOOK_SECRET")
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = os.Getenv("WEBHOOK_SECRET")
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %v", dbStr, err)
		}
		cfg.RedisDB = db
	}

	cfg.MappingFile = getEnv("MAPPING_FILE", filepath.Join(cfg.DataDir, "mapping.json"))
	cfg.SessionsFile = getEnv("SESSIONS_FILE", filepath.Join(cfg.DataDir, "sessions.json"))
	cfg.LastSpinFile = getEnv("LAST_SPIN_FILE", filepath.Join(cfg.DataDir, "last-spin.json"))

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = cfg.BotToken
	}

	return cfg, nil
}

func (c *Config) BotConfigured() bool {
	return c.BotToken != ""
}

func (c *Config) ChannelConfigured() bool {
	return c.ChannelID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
