package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricestream/internal/app"
	"pricestream/internal/server"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start the quote feed (one vendor poll per interval)
	if err := bootstrap.Feed.Start(ctx); err != nil {
		slog.Error("❌ Failed to start price feed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Feed.Stop()
	slog.InfoContext(ctx, "✅ Price feed started", slog.String("symbol", bootstrap.Feed.Symbol()))

	// 5. Dashboard Server
	cfg := bootstrap.Config
	srv := server.New(server.Config{
		Addr:    cfg.Server.Addr,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	}, bootstrap.Feed, bootstrap.Storage)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	slog.InfoContext(ctx, "✨ pricestream fully operational. Press Ctrl+C to exit.")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		slog.Error("❌ HTTP server failed", slog.Any("error", err))
	}

	slog.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown incomplete", slog.Any("error", err))
	}
}
