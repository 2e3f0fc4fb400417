package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Storage {
	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return s
}

func TestSaveAndGetSetting(t *testing.T) {
	s := setupTestDB(t)

	// 1. Create
	if err := s.SaveSetting("last_symbol", "AAPL"); err != nil {
		t.Fatalf("SaveSetting failed: %v", err)
	}

	// 2. Get
	value, err := s.GetSetting("last_symbol")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "AAPL" {
		t.Errorf("expected value AAPL, got %s", value)
	}
}

func TestGetSetting_Missing(t *testing.T) {
	s := setupTestDB(t)

	value, err := s.GetSetting("never_saved")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for missing key, got %s", value)
	}
}

func TestUpdateSetting(t *testing.T) {
	s := setupTestDB(t)
	s.SaveSetting("last_symbol", "AAPL")

	// Update
	if err := s.SaveSetting("last_symbol", "GOOG"); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	value, _ := s.GetSetting("last_symbol")
	if value != "GOOG" {
		t.Errorf("expected value 'GOOG', got '%s'", value)
	}
}

func TestTouchSymbol(t *testing.T) {
	s := setupTestDB(t)

	// First watch creates the row
	if err := s.TouchSymbol("AAPL"); err != nil {
		t.Fatalf("TouchSymbol failed: %v", err)
	}

	symbols, err := s.RecentSymbols(10)
	if err != nil {
		t.Fatalf("RecentSymbols failed: %v", err)
	}
	if len(symbols) != 1 {
		t.Fatalf("expected 1 symbol, got %d", len(symbols))
	}
	if symbols[0].WatchCount != 1 {
		t.Errorf("expected watch count 1, got %d", symbols[0].WatchCount)
	}

	// Second watch bumps the counter
	if err := s.TouchSymbol("AAPL"); err != nil {
		t.Fatalf("TouchSymbol failed: %v", err)
	}

	symbols, _ = s.RecentSymbols(10)
	if symbols[0].WatchCount != 2 {
		t.Errorf("expected watch count 2, got %d", symbols[0].WatchCount)
	}
}

func TestRecentSymbols_Order(t *testing.T) {
	s := setupTestDB(t)

	for _, sym := range []string{"AAPL", "GOOG", "MSFT", "AAPL"} {
		s.TouchSymbol(sym) // AAPL ends up most recent again
		time.Sleep(2 * time.Millisecond)
	}

	symbols, err := s.RecentSymbols(2)
	if err != nil {
		t.Fatalf("RecentSymbols failed: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(symbols))
	}
	if symbols[0].Symbol != "AAPL" {
		t.Errorf("expected AAPL first, got %s", symbols[0].Symbol)
	}
}
