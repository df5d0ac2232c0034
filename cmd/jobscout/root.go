package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvoronin/jobscout/internal/config"
	"github.com/mvoronin/jobscout/internal/model"
	"github.com/mvoronin/jobscout/internal/provider"
	"github.com/mvoronin/jobscout/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job search assistant in your chat",
	Long:  "JobScout is a Telegram bot that searches job boards with per-user criteria.",
	// Default to `run` so that `jobscout` with no args starts the daemon.
	// This keeps systemd unit files that invoke the binary directly working.
	RunE: runDaemon,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (model.SettingsStore, error) {
	switch cfg.Store.Type {
	case "redis":
		logger.Info("using redis settings store")
		return store.NewRedisStore(ctx, cfg.Store.RedisURL)
	case "memory":
		logger.Info("using in-memory settings store, settings will not survive a restart")
		return store.NewMemoryStore(), nil
	default:
		logger.Info("using sqlite settings store", "path", cfg.Store.Path)
		return store.NewSQLiteStore(cfg.Store.Path)
	}
}

func buildProviders(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.SearchProvider {
	limiter := provider.NewBoardRateLimiter(cfg.RateLimit.MinDelay)

	var providers []model.SearchProvider
	add := func(p model.SearchProvider) {
		p = provider.NewRateLimitedProvider(p, limiter)
		p = provider.NewRetryProvider(p, 2, 5*time.Second, logger)
		providers = append(providers, p)
		logger.Info("registered provider", "name", p.Name())
	}

	if cfg.Search.HeadHunter.Enabled {
		add(provider.NewHeadHunterProvider(cfg.Search.HeadHunter.BaseURL, cfg.Search.HeadHunter.PerPage, httpClient))
	}
	if cfg.Search.LinkedIn.Enabled {
		add(provider.NewLinkedInProvider(cfg.Search.LinkedIn.BaseURL, httpClient))
	}
	return providers
}
