package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newProxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "proxy",
		Short: "Run only the TMDB proxy endpoint",
		Long:  "Serves /proxy without a database or Redis, for catalog clients that need nothing else.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runProxy()
		},
	}
}

func runProxy() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stdout)
	defer logger.Close()

	if cfg.TMDB.APIKey == "" && cfg.TMDB.ReadAccessToken == "" {
		logger.Warn("no TMDB credential configured, proxy requests will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.Handle("/proxy", newProxy(cfg, logger))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return listen(ctx, cfg, mux, logger)
}
