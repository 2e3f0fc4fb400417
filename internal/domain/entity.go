package domain

import (
	"time"
)

// WatchedSymbol represents a ticker the user has watched at least once.
// It backs the recent-symbols list on the dashboard.
type WatchedSymbol struct {
	Symbol        string    `gorm:"primaryKey" json:"symbol"`
	WatchCount    int64     `json:"watch_count"`                    // Times the symbol was selected
	LastWatchedAt time.Time `json:"last_watched_at" gorm:"index"`   // Most recent selection time
	CreatedAt     time.Time `json:"created_at"`
}

// Setting represents user-specific configuration (Key-Value). Only UI
// state lives here; price history is never persisted.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingLastSymbol is the settings key holding the most recently
// watched ticker, restored on startup.
const SettingLastSymbol = "last_symbol"
