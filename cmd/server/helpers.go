package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/liamwears/lbmovies/internal/catalog"
	"github.com/liamwears/lbmovies/internal/config"
	"github.com/liamwears/lbmovies/internal/logging"
)

var (
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginTop(1)
)

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Production always logs JSON.
func newLogger(cfg *config.Config, out io.Writer) *logging.Logger {
	format := cfg.Log.Format
	if cfg.IsProduction() {
		format = "json"
	}
	return logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Format:     format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}, out)
}

func newCatalogClient(cfg *config.Config, logger *logging.Logger) *catalog.Client {
	return catalog.NewClient(catalog.Config{
		ProxyURL: cfg.CatalogProxyURL(),
		Timeout:  cfg.Catalog.Timeout,
	}, logger)
}
