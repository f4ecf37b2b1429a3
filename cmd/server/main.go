package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockquote/internal/batch"
	"stockquote/internal/config"
	"stockquote/internal/httpx"
	"stockquote/internal/observability"
	"stockquote/internal/provider"
	"stockquote/internal/provider/sina"
	"stockquote/internal/provider/tencent"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	logger := observability.InitLogger(cfg.Server.Production, slog.LevelInfo)

	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

	var primary, fallback provider.Provider
	if cfg.Tencent.Enabled {
		primary = tencent.New(tencent.Config{
			BaseURL:   cfg.Tencent.Endpoint,
			Referer:   cfg.Tencent.Referer,
			UserAgent: httpClient.UserAgent,
		}, httpClient.HTTP)
	}
	if cfg.Sina.Enabled {
		fallback = sina.New(sina.Config{
			BaseURL: cfg.Sina.Endpoint,
			Referer: cfg.Sina.Referer,
		}, httpClient)
	}
	if primary == nil {
		// Sina alone can serve the reduced schema
		primary, fallback = fallback, nil
	}
	if primary == nil {
		logger.Error("no provider enabled")
		os.Exit(1)
	}

	orch := batch.New(primary, fallback, cfg.Batch.MaxConcurrency, logger)
	h := NewAPIHandler(orch, &cfg, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           NewRouter(h, &cfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
