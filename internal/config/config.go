// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Facebook holds the Graph API credential pair for a page.
type Facebook struct {
	AccessToken string
	PageID      string
	BaseURL     string
}

// Instagram holds the Graph API credential pair for a business account.
type Instagram struct {
	AccessToken  string
	AccountID    string
	BaseURL      string
	MediaBaseURL string
}

// Telegram holds the Bot API credential pair for a chat.
type Telegram struct {
	BotToken string
	ChatID   string
	BaseURL  string
}

// LinkedIn holds the UGC API credential pair for a member.
type LinkedIn struct {
	AccessToken string
	PersonID    string
	BaseURL     string
}

// Config holds all application configuration. It is built once at
// process start and read-only afterwards.
type Config struct {
	Facebook  Facebook
	Instagram Instagram
	Telegram  Telegram
	LinkedIn  LinkedIn

	RetryMaxAttempts int
	RetryDelay       time.Duration

	DatabasePath string
	LogLevel     string
}

// Load reads configuration from environment variables, loading a .env
// file first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Facebook: Facebook{
			AccessToken: os.Getenv("FACEBOOK_ACCESS_TOKEN"),
			PageID:      os.Getenv("FACEBOOK_PAGE_ID"),
			BaseURL:     os.Getenv("FACEBOOK_BASE_URL"),
		},
		Instagram: Instagram{
			AccessToken:  os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
			AccountID:    os.Getenv("INSTAGRAM_ACCOUNT_ID"),
			BaseURL:      os.Getenv("INSTAGRAM_BASE_URL"),
			MediaBaseURL: os.Getenv("INSTAGRAM_MEDIA_BASE_URL"),
		},
		Telegram: Telegram{
			BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
			BaseURL:  os.Getenv("TELEGRAM_BASE_URL"),
		},
		LinkedIn: LinkedIn{
			AccessToken: os.Getenv("LINKEDIN_ACCESS_TOKEN"),
			PersonID:    os.Getenv("LINKEDIN_PERSON_ID"),
			BaseURL:     os.Getenv("LINKEDIN_BASE_URL"),
		},
		DatabasePath: getEnv("DATABASE_PATH", "data/crosspost.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}

	maxRetries, err := strconv.Atoi(getEnv("MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_RETRIES: %w", err)
	}
	cfg.RetryMaxAttempts = maxRetries

	delayMS, err := strconv.Atoi(getEnv("RETRY_DELAY", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_DELAY: %w", err)
	}
	cfg.RetryDelay = time.Duration(delayMS) * time.Millisecond

	return cfg, nil
}

// requiredVars maps each platform to the env vars its credential pair
// comes from.
var requiredVars = map[string][]string{
	"facebook":  {"FACEBOOK_ACCESS_TOKEN", "FACEBOOK_PAGE_ID"},
	"instagram": {"INSTAGRAM_ACCESS_TOKEN", "INSTAGRAM_ACCOUNT_ID"},
	"telegram":  {"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"},
	"linkedin":  {"LINKEDIN_ACCESS_TOKEN", "LINKEDIN_PERSON_ID"},
}

// MissingVars reports, per platform, which required env vars are unset.
// An empty slice means the platform's credential pair is complete.
func (c *Config) MissingVars() map[string][]string {
	values := map[string]string{
		"FACEBOOK_ACCESS_TOKEN":  c.Facebook.AccessToken,
		"FACEBOOK_PAGE_ID":       c.Facebook.PageID,
		"INSTAGRAM_ACCESS_TOKEN": c.Instagram.AccessToken,
		"INSTAGRAM_ACCOUNT_ID":   c.Instagram.AccountID,
		"TELEGRAM_BOT_TOKEN":     c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":       c.Telegram.ChatID,
		"LINKEDIN_ACCESS_TOKEN":  c.LinkedIn.AccessToken,
		"LINKEDIN_PERSON_ID":     c.LinkedIn.PersonID,
	}

	missing := make(map[string][]string, len(requiredVars))
	for platform, vars := range requiredVars {
		missing[platform] = []string{}
		for _, v := range vars {
			if values[v] == "" {
				missing[platform] = append(missing[platform], v)
			}
		}
	}
	return missing
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
