package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvoronin/jobscout/internal/session"
	"github.com/mvoronin/jobscout/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot in your terminal",
	Long:  "Run the full dialog flow locally without a Telegram token.",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	settingsStore, err := buildStore(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer settingsStore.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	providers := buildProviders(cfg, httpClient, logger)
	if len(providers) == 0 {
		logger.Error("no search providers enabled")
		os.Exit(1)
	}

	sender := tui.NewSender()
	sess := session.New(settingsStore, providers, sender, cfg.Search.Timeout, logger)

	return tui.Run(sess.HandleMessage, sender)
}
