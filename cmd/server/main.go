package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"kinokod/internal/config"
	"kinokod/internal/domain"
	"kinokod/internal/feed"
	"kinokod/internal/gateway"
	"kinokod/internal/httpserver"
	"kinokod/internal/notify"
	"kinokod/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to TOML config file (default $KINOKOD_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))

	repo, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info("database opened", "path", cfg.DatabasePath)

	notifier := notify.NewClient(cfg.NotifyURL, cfg.NotifyToken, logger)
	sessions := domain.NewSessionStore()

	indexer := domain.NewIndexer(repo, repo, repo, notifier, logger)
	resolver := domain.NewResolver(repo, repo, cfg.Lookup.PrefixFallback, logger)
	curation := domain.NewCurationService(repo, repo, sessions, cfg.Lookup.SeedCategories, cfg.Lookup.DraftListLimit, logger)
	navigator := domain.NewNavigator(repo, sessions, cfg.Lookup.PageSize)

	gw := gateway.New(resolver, curation, navigator, sessions, logger)

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start the feed subscriber in the background
	subscriber := feed.NewSubscriber(cfg.FeedURL, indexer, repo, logger)
	go func() {
		if err := subscriber.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("feed subscriber exited with error", "error", err)
		}
	}()

	// Start the HTTP server
	server := httpserver.NewServer(cfg, gw, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("server started", "port", cfg.Port, "feed_url", cfg.FeedURL)

	// Wait for shutdown signal
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
