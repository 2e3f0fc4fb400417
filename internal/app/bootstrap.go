package app

import (
	"log/slog"
	"os"

	"pricestream/internal/domain"
	"pricestream/internal/infra"
	"pricestream/internal/infra/iex"
	"pricestream/internal/infra/storage"
	"pricestream/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Feed    *service.Feed
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, feed)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping pricestream...")

	// 1. Load Config
	configPath := os.Getenv("PRICESTREAM_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	// 4. Build the quote feed
	client := iex.NewClientWithConfig(cfg.IEX.BaseURL, cfg.IEX.Token, cfg.RequestTimeout())
	b.Feed = service.NewFeed(client, store, service.FeedConfig{
		WindowSize:   cfg.Chart.WindowSize,
		PollInterval: cfg.PollInterval(),
		Location:     cfg.Location(),
	})

	if err := b.restoreSymbol(); err != nil {
		slog.Warn("Could not restore last symbol", slog.Any("error", err))
	}
	slog.Info("✅ Price feed ready", slog.String("symbol", b.Feed.Symbol()))

	return nil
}

// restoreSymbol seeds the feed with the previously watched ticker so a
// restart resumes where the dashboard left off. The configured default
// applies only when nothing was stored.
func (b *Bootstrap) restoreSymbol() error {
	symbol, err := b.Storage.GetSetting(domain.SettingLastSymbol)
	if err != nil {
		return err
	}
	if symbol == "" {
		symbol = b.Config.Chart.DefaultSymbol
	}
	if symbol != "" {
		b.Feed.RestoreSymbol(symbol)
	}
	return nil
}
