package domain

import (
	"context"
)

// QuoteSource defines the interface for last-trade quote vendors
type QuoteSource interface {
	LastTrade(ctx context.Context, symbol string) (Quote, error)
}

// SymbolRepository defines how watched-symbol state is persisted across restarts
type SymbolRepository interface {
	SaveSetting(key, value string) error
	GetSetting(key string) (string, error)
	TouchSymbol(symbol string) error
	RecentSymbols(limit int) ([]WatchedSymbol, error)
}
