package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the jobscout bot.
type Config struct {
	Telegram  TelegramConfig
	Store     StoreConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
	Digest    DigestConfig
}

// TelegramConfig holds the bot credential and long-poll tuning.
type TelegramConfig struct {
	Token       string        // expanded from env var by Load
	PollTimeout time.Duration // getUpdates long-poll timeout
}

// StoreConfig selects the settings-store backend.
type StoreConfig struct {
	Type     string `yaml:"type"`      // "sqlite", "redis" or "memory"
	Path     string `yaml:"path"`      // sqlite file path
	RedisURL string `yaml:"redis_url"` // required if type is "redis"
}

// SearchConfig controls the search fan-out and the individual providers.
type SearchConfig struct {
	Timeout    time.Duration // per-provider budget for one search
	HeadHunter ProviderConfig
	LinkedIn   ProviderConfig
}

// ProviderConfig enables one search provider and overrides its endpoint.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	PerPage int    `yaml:"per_page"`
}

// RateLimitConfig enforces a minimum gap between calls to the same board.
type RateLimitConfig struct {
	MinDelay time.Duration
}

// DigestConfig controls the optional periodic background search.
type DigestConfig struct {
	Enabled  bool
	Interval time.Duration
}

const (
	defaultHHBaseURL       = "https://api.hh.ru"
	defaultLinkedInBaseURL = "https://www.linkedin.com"
	defaultPerPage         = 20
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	Telegram struct {
		Token       string `yaml:"token"`
		PollTimeout string `yaml:"poll_timeout"`
	} `yaml:"telegram"`
	Store  StoreConfig `yaml:"store"`
	Search struct {
		Timeout    string         `yaml:"timeout"`
		HeadHunter ProviderConfig `yaml:"headhunter"`
		LinkedIn   ProviderConfig `yaml:"linkedin"`
	} `yaml:"search"`
	RateLimit struct {
		MinDelay string `yaml:"min_delay"`
	} `yaml:"rate_limit"`
	Digest struct {
		Enabled  bool   `yaml:"enabled"`
		Interval string `yaml:"interval"`
	} `yaml:"digest"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variables in the file are expanded, so the
// bot token can be written as ${JOBSCOUT_TELEGRAM_TOKEN}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pollTimeout, err := durationOr(raw.Telegram.PollTimeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("parse telegram.poll_timeout %q: %w", raw.Telegram.PollTimeout, err)
	}

	searchTimeout, err := durationOr(raw.Search.Timeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("parse search.timeout %q: %w", raw.Search.Timeout, err)
	}

	minDelay, err := durationOr(raw.RateLimit.MinDelay, 0)
	if err != nil {
		return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
	}

	digestInterval, err := durationOr(raw.Digest.Interval, 6*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("parse digest.interval %q: %w", raw.Digest.Interval, err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token:       raw.Telegram.Token,
			PollTimeout: pollTimeout,
		},
		Store: raw.Store,
		Search: SearchConfig{
			Timeout:    searchTimeout,
			HeadHunter: raw.Search.HeadHunter,
			LinkedIn:   raw.Search.LinkedIn,
		},
		RateLimit: RateLimitConfig{MinDelay: minDelay},
		Digest: DigestConfig{
			Enabled:  raw.Digest.Enabled,
			Interval: digestInterval,
		},
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func durationOr(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Type == "" {
		cfg.Store.Type = "sqlite"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "jobscout.db"
	}
	if cfg.Search.HeadHunter.BaseURL == "" {
		cfg.Search.HeadHunter.BaseURL = defaultHHBaseURL
	}
	if cfg.Search.HeadHunter.PerPage == 0 {
		cfg.Search.HeadHunter.PerPage = defaultPerPage
	}
	if cfg.Search.LinkedIn.BaseURL == "" {
		cfg.Search.LinkedIn.BaseURL = defaultLinkedInBaseURL
	}
}

func validate(cfg *Config) error {
	switch cfg.Store.Type {
	case "sqlite", "memory":
	case "redis":
		if cfg.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required when type is \"redis\"")
		}
	default:
		return fmt.Errorf("unknown store.type %q", cfg.Store.Type)
	}

	if !cfg.Search.HeadHunter.Enabled && !cfg.Search.LinkedIn.Enabled {
		return fmt.Errorf("at least one search provider must be enabled")
	}

	if cfg.Search.HeadHunter.PerPage < 1 || cfg.Search.HeadHunter.PerPage > 100 {
		return fmt.Errorf("search.headhunter.per_page must be between 1 and 100, got %d", cfg.Search.HeadHunter.PerPage)
	}

	if cfg.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %v", cfg.Search.Timeout)
	}

	if cfg.Digest.Enabled && cfg.Digest.Interval <= 0 {
		return fmt.Errorf("digest.interval must be positive when digest is enabled, got %v", cfg.Digest.Interval)
	}

	return nil
}
