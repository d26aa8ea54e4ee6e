package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Token           string
	GuildID         string
	DatabaseURL     string
	RedisAddr       string
	HistoryCapacity int
	HistoryMaxUsers int
	ComposeMaxDepth int
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment (Docker, CI, ...).
	_ = godotenv.Load()

	cfg := &Config{
		Token:           os.Getenv("TOKEN"),
		GuildID:         os.Getenv("GUILD_ID"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		HistoryCapacity: 3,
		HistoryMaxUsers: 10000,
		ComposeMaxDepth: 5,
	}

	var err error
	if cfg.HistoryCapacity, err = intEnv("HISTORY_CAPACITY", cfg.HistoryCapacity); err != nil {
		return nil, err
	}
	if cfg.HistoryMaxUsers, err = intEnv("HISTORY_MAX_USERS", cfg.HistoryMaxUsers); err != nil {
		return nil, err
	}
	if cfg.ComposeMaxDepth, err = intEnv("COMPOSE_MAX_DEPTH", cfg.ComposeMaxDepth); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer, got %q", name, raw)
	}
	return v, nil
}

// validate applies every rule on the loaded configuration.
func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN is required and cannot be empty")
	}

	if c.DatabaseURL != "" {
		parsed, err := url.Parse(c.DatabaseURL)
		if err != nil {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
		}
	}

	if c.HistoryCapacity < 1 {
		return fmt.Errorf("config: HISTORY_CAPACITY must be at least 1")
	}
	if c.HistoryMaxUsers < 1 {
		return fmt.Errorf("config: HISTORY_MAX_USERS must be at least 1")
	}
	if c.ComposeMaxDepth < 1 {
		return fmt.Errorf("config: COMPOSE_MAX_DEPTH must be at least 1")
	}
	return nil
}
