package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvoronin/jobscout/internal/digest"
	"github.com/mvoronin/jobscout/internal/session"
	"github.com/mvoronin/jobscout/internal/transport"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot daemon",
	Long:  "Start the Telegram long-polling daemon; blocks until SIGINT/SIGTERM.",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.Telegram.Token == "" {
		logger.Error("telegram.token is not set, export JOBSCOUT_TELEGRAM_TOKEN or set it in config")
		os.Exit(1)
	}

	logger.Info("config loaded",
		"store", cfg.Store.Type,
		"poll_timeout", cfg.Telegram.PollTimeout.String(),
		"search_timeout", cfg.Search.Timeout.String(),
		"digest_enabled", cfg.Digest.Enabled,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settingsStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer settingsStore.Close()

	// The long-poll request holds for PollTimeout, so the client timeout
	// must exceed it.
	httpClient := &http.Client{Timeout: cfg.Telegram.PollTimeout + 10*time.Second}

	providers := buildProviders(cfg, httpClient, logger)
	if len(providers) == 0 {
		logger.Error("no search providers enabled")
		os.Exit(1)
	}

	client := transport.NewClient(transport.DefaultBaseURL, cfg.Telegram.Token, httpClient, logger)
	sess := session.New(settingsStore, providers, client, cfg.Search.Timeout, logger)

	if cfg.Digest.Enabled {
		d := digest.New(settingsStore, sess, cfg.Digest.Interval, logger)
		go func() {
			if err := d.Run(ctx); err != nil {
				logger.Error("digest error", "error", err)
			}
		}()
	}

	poller := transport.NewPoller(client, cfg.Telegram.PollTimeout, sess.HandleMessage, logger)
	if err := poller.Run(ctx); err != nil {
		logger.Error("poller error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
