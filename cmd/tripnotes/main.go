package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/tripnotes/internal/api"
	"github.com/csheth/tripnotes/internal/config"
	"github.com/csheth/tripnotes/internal/store"
	"github.com/csheth/tripnotes/internal/tui"
	"github.com/csheth/tripnotes/internal/workflow"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tripnotes:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Println("usage: tripnotes [-config file] [-env-file file] [-data-dir dir] [-store file|sqlite|memory] [-api-url url] [-api-token token] [-autosave 2s] [-no-alt-screen]")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := config.SetupLogFile(cfg.LogDir(), cfg.LogRetention)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := config.NewLogger(logFile, cfg)
	logger.Info("starting", "data_dir", cfg.DataDir, "store", cfg.StoreDriver, "api_url", cfg.APIBaseURL)

	backend, err := store.Open(cfg.StoreDriver, cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}

	client, err := api.NewFromEnv(api.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("travel backend: %w", err)
	}

	cache, err := api.NewPlanCache(cfg.CacheDir(), cfg.PlanCacheTTL)
	if err != nil {
		logger.Warn("plan cache disabled", "err", err)
		cache = nil
	}

	ws, err := workflow.OpenWorkspace(backend, client, workflow.Options{
		Logger:        logger,
		AutosaveDelay: cfg.AutosaveDelay,
		PlanCache:     cache,
	})
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}

	opts := []tea.ProgramOption{}
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{Workspace: ws, Logger: logger}), opts...)
	if _, err := program.Run(); err != nil {
		logger.Error("program error", "err", err)
		return err
	}
	logger.Info("bye")
	return nil
}
