package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jrh3k5/transfer-explorer/internal/alchemy"
	"github.com/jrh3k5/transfer-explorer/internal/config"
	ctshttp "github.com/jrh3k5/transfer-explorer/internal/http"
	ctsslog "github.com/jrh3k5/transfer-explorer/internal/logging/slog"
	"github.com/jrh3k5/transfer-explorer/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var configPath string
	for _, arg := range os.Args[1:] {
		parsedPath, hasPrefix := strings.CutPrefix(arg, "--config=")
		if hasPrefix {
			configPath = parsedPath

			break
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to configure logging", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(ctsslog.NewHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if cfg.Alchemy.APIKey == "" {
		slog.WarnContext(ctx, "No Alchemy API key is configured; upstream requests will likely be rejected")
	}

	doer := ctshttp.NewRateLimitedDoer(&http.Client{}, cfg.API.RateLimit.RPS, cfg.API.RateLimit.Burst)
	fetcher := alchemy.NewClient(doer, cfg.AlchemyEndpoint())

	srv := server.New(fetcher, server.Config{
		Listen:          cfg.Server.Listen,
		UpstreamTimeout: cfg.API.Timeout,
		CacheTTL:        cfg.Server.CacheTTL,
		CacheSize:       cfg.Server.CacheSize,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		AllowedMethods:  cfg.Server.AllowedMethods,
		AllowedHeaders:  cfg.Server.AllowedHeaders,
	})

	if err := srv.Start(); err != nil {
		slog.ErrorContext(ctx, "Failed to start transfer proxy", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "Failed to shut down transfer proxy cleanly", "error", err)
	}
}
