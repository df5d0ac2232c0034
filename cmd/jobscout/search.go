package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvoronin/jobscout/internal/model"
)

var searchUserID int64

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the results",
	Long:  "Run a one-shot search with a user's stored settings (or the defaults) and print postings to stdout.",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().Int64Var(&searchUserID, "user", 1, "user id whose stored settings to search with")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	settingsStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer settingsStore.Close()

	settings, ok, err := settingsStore.Get(ctx, searchUserID)
	if err != nil {
		logger.Error("failed to load settings", "user_id", searchUserID, "error", err)
		os.Exit(1)
	}
	if !ok {
		logger.Info("no stored settings for user, searching with defaults", "user_id", searchUserID)
		settings = model.DefaultSettings()
	}

	fmt.Printf("Searching: keywords=%s locations=%s salary>=%d experience=%s\n\n",
		strings.Join(settings.Keywords, ","),
		strings.Join(settings.Locations, ","),
		settings.SalaryMin,
		settings.Experience.Label(),
	)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	providers := buildProviders(cfg, httpClient, logger)
	if len(providers) == 0 {
		logger.Error("no search providers enabled")
		os.Exit(1)
	}

	total := 0
	for _, p := range providers {
		searchCtx, cancel := context.WithTimeout(ctx, cfg.Search.Timeout)
		postings, err := p.Search(searchCtx, settings)
		cancel()
		if err != nil {
			logger.Error("provider search failed", "provider", p.Name(), "error", err)
			continue
		}
		for _, posting := range postings {
			salary := posting.Salary
			if salary == "" {
				salary = model.SalaryNotSpecified
			}
			fmt.Printf("%s: %s\n  salary: %s\n  source: %s\n  %s\n\n",
				posting.Company, posting.Title, salary, posting.Source, posting.URL)
		}
		total += len(postings)
	}

	fmt.Printf("Found %d postings\n", total)
	return nil
}
