package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds everything the bot reads from the environment
type Config struct {
	TelegramToken string
	AdminIDs      []int64
	GroupID       int64
	DataFile      string
	MuteFile      string

	DatabaseURL       string
	DiscordWebhookURL string

	GiftAPIID       int
	GiftAPIHash     string
	GiftSessionFile string

	Port      string
	LogLevel  string
	LogFormat string
}

// LoadConfig reads the .env file (if any) and the process environment
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Info("The .env file not found, using process environment")
	}

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
		DataFile:          getEnvDefault("SLOT_DATA_FILE", "slot_data.json"),
		MuteFile:          getEnvDefault("SLOT_MUTE_FILE", "slot_mutes.json"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		GiftAPIHash:       os.Getenv("GIFT_API_HASH"),
		GiftSessionFile:   getEnvDefault("GIFT_SESSION_FILE", "gift_session.json"),
		Port:              getEnvDefault("PORT", "8080"),
		LogLevel:          getEnvDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvDefault("LOG_FORMAT", "text"),
	}

	admins, err := ParseIDList(os.Getenv("TELEGRAM_ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("TELEGRAM_ADMIN_IDS: %w", err)
	}
	cfg.AdminIDs = admins

	if raw := os.Getenv("TELEGRAM_GROUP_ID"); raw != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_GROUP_ID: %w", err)
		}
		cfg.GroupID = id
	}

	if raw := os.Getenv("GIFT_API_ID"); raw != "" {
		id, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("GIFT_API_ID: %w", err)
		}
		cfg.GiftAPIID = id
	}

	return cfg, cfg.Validate()
}

// Validate checks that the required values are present
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("TELEGRAM_ADMIN_IDS must list at least one admin")
	}
	if c.GroupID == 0 {
		return fmt.Errorf("TELEGRAM_GROUP_ID is required")
	}
	if (c.GiftAPIID == 0) != (c.GiftAPIHash == "") {
		return fmt.Errorf("GIFT_API_ID and GIFT_API_HASH must be set together")
	}
	return nil
}

// GiftsEnabled reports whether the reward sender is configured
func (c *Config) GiftsEnabled() bool {
	return c.GiftAPIID != 0 && c.GiftAPIHash != ""
}

// ParseIDList parses a comma separated list of numeric chat ids
func ParseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
