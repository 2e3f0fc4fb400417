package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pricestream/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists dashboard state in SQLite. Only UI state lives here;
// the price window itself is in-memory and never written out.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at path
func NewStorage(path string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.WatchedSymbol{}, &domain.Setting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// ======================================================================================
// Symbol Operations
// ======================================================================================

// TouchSymbol records that symbol was watched just now, creating the row
// on first watch and bumping the counter afterwards.
func (s *Storage) TouchSymbol(symbol string) error {
	now := time.Now().UTC()

	var ws domain.WatchedSymbol
	err := s.db.First(&ws, "symbol = ?", symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ws = domain.WatchedSymbol{
			Symbol:        symbol,
			WatchCount:    1,
			LastWatchedAt: now,
			CreatedAt:     now,
		}
		return s.db.Create(&ws).Error
	}
	if err != nil {
		return err
	}

	ws.WatchCount++
	ws.LastWatchedAt = now
	return s.db.Save(&ws).Error
}

// RecentSymbols returns up to limit symbols ordered by most recently watched
func (s *Storage) RecentSymbols(limit int) ([]domain.WatchedSymbol, error) {
	if limit <= 0 {
		limit = 10
	}
	var symbols []domain.WatchedSymbol
	err := s.db.Order("last_watched_at DESC").Limit(limit).Find(&symbols).Error
	return symbols, err
}

// ======================================================================================
// Settings Operations
// ======================================================================================

// SaveSetting saves a user setting
func (s *Storage) SaveSetting(key, value string) error {
	setting := domain.Setting{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&setting).Error
}

// GetSetting retrieves a setting value by key
func (s *Storage) GetSetting(key string) (string, error) {
	var setting domain.Setting
	err := s.db.First(&setting, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil // Not found is not an error
	}
	return setting.Value, err
}
