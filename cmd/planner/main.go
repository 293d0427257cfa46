package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"planner/internal/config"
	"planner/internal/storage"
	"planner/internal/ui"
)

func main() {
	if err := run(config.ResolveConfigPath()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// run owns every resource so that deferred closes happen before main exits.
func run(configPath string) error {
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := tea.LogToFile(cfg.LogPath, "planner")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Printf("open %s: %v", cfg.DBPath, err)
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}()
	log.Printf("opened %s", cfg.DBPath)

	if err := ui.Run(store, cfg); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
