package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestQuote_Sample(t *testing.T) {
	at := time.Date(2025, 6, 2, 14, 30, 15, 0, time.UTC)
	q := Quote{
		Symbol: "AAPL",
		Price:  decimal.NewFromFloat(201.45),
		Size:   100,
		Time:   at,
	}

	s := q.Sample()
	if s.Price != 201.45 {
		t.Errorf("Price = %v, want 201.45", s.Price)
	}
	if !s.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", s.Time, at)
	}
}

func TestQuote_IsZero(t *testing.T) {
	t.Run("Zero Value", func(t *testing.T) {
		if !(Quote{}).IsZero() {
			t.Error("Zero quote should report IsZero")
		}
	})

	t.Run("Vendor Stub", func(t *testing.T) {
		q := Quote{Symbol: "ZZZZ", Price: decimal.Zero}
		if !q.IsZero() {
			t.Error("Stub without a trade time should report IsZero")
		}
	})

	t.Run("Real Trade", func(t *testing.T) {
		q := Quote{Symbol: "GOOG", Price: decimal.NewFromInt(1), Time: time.Now()}
		if q.IsZero() {
			t.Error("Populated quote should not report IsZero")
		}
	})
}
