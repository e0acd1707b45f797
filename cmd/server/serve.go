package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liamwears/lbmovies/internal/config"
	"github.com/liamwears/lbmovies/internal/database"
	"github.com/liamwears/lbmovies/internal/handlers"
	"github.com/liamwears/lbmovies/internal/middleware"
	"github.com/liamwears/lbmovies/internal/proxy"
	"github.com/liamwears/lbmovies/internal/services"
)

const sessionCookieName = "lbmovies_session"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

// app holds everything the router needs
type app struct {
	auth    *handlers.AuthHandler
	browse  *handlers.BrowseHandler
	titles  *handlers.TitleHandler
	library *handlers.LibraryHandler
	social  *handlers.SocialHandler
	proxy   http.Handler
	health  http.HandlerFunc
	authMW  *middleware.AuthMiddleware
	limiter *middleware.RateLimiter
}

func runServe() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stdout)
	defer logger.Close()
	logger.WithField("env", cfg.Server.Env).Info("starting lbmovies server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, database.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		TLS:      cfg.Redis.TLS,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	sessionStore := database.NewSessionStore(redisClient.Client, cfg.Session.TTL)

	userService := services.NewUserService(db.Pool)
	socialService := services.NewSocialService(db.Pool, logger)
	libraryService := services.NewLibraryService(db.Pool, socialService)

	catalogClient := newCatalogClient(cfg, logger)
	defer catalogClient.Close()

	renderer, err := handlers.NewRenderer(cfg.TMDB.ImageBaseURL, logger)
	if err != nil {
		return fmt.Errorf("initialize renderer: %w", err)
	}

	authMW := middleware.NewAuthMiddleware(sessionStore, userService, sessionCookieName, cfg.Session.TTL, cfg.IsProduction(), logger)

	a := &app{
		auth: handlers.NewAuthHandler(userService, sessionStore, authMW, renderer, handlers.AuthConfig{
			GoogleClientID:     cfg.OAuth.GoogleClientID,
			GoogleClientSecret: cfg.OAuth.GoogleClientSecret,
			GitHubClientID:     cfg.OAuth.GitHubClientID,
			GitHubClientSecret: cfg.OAuth.GitHubClientSecret,
			CallbackHost:       cfg.OAuth.CallbackHost,
		}, logger),
		browse:  handlers.NewBrowseHandler(catalogClient, renderer, cfg.Catalog.Timeout+5*time.Second, logger),
		titles:  handlers.NewTitleHandler(catalogClient, libraryService, socialService, renderer, logger),
		library: handlers.NewLibraryHandler(libraryService, renderer, logger),
		social:  handlers.NewSocialHandler(socialService, renderer, logger),
		proxy:   newProxy(cfg, logger),
		health:  healthHandler(db, redisClient),
		authMW:  authMW,
		limiter: middleware.NewRateLimiter(redisClient.Client, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window, cfg.IsProduction(), logger),
	}

	return listen(ctx, cfg, a.routes(), logger)
}

func newProxy(cfg *config.Config, logger logrus.FieldLogger) http.Handler {
	return proxy.New(proxy.Config{
		BaseURL:           cfg.TMDB.BaseURL,
		APIKey:            cfg.TMDB.APIKey,
		ReadAccessToken:   cfg.TMDB.ReadAccessToken,
		RequestsPerSecond: cfg.TMDB.RequestsPerSecond,
		Timeout:           cfg.TMDB.Timeout,
	}, logger)
}

// pinger is satisfied by the database pool and the redis client
type pinger interface {
	Health(ctx context.Context) error
}

func healthHandler(db, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "database": "up", "redis": "up"}
		code := http.StatusOK

		if err := db.Health(r.Context()); err != nil {
			status["database"] = "down"
		}
		if err := cache.Health(r.Context()); err != nil {
			status["redis"] = "down"
		}
		if status["database"] == "down" || status["redis"] == "down" {
			status["status"] = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}

// listen serves until ctx is cancelled, then shuts down gracefully
func listen(ctx context.Context, cfg *config.Config, handler http.Handler, logger logrus.FieldLogger) error {
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      middleware.Logger(logger)(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
