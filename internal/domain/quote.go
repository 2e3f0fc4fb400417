package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the last trade the vendor reports for a single symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"` // last trade price
	Size   int64           `json:"size"`  // last trade size, not plotted
	Time   time.Time       `json:"time"`  // trade time, UTC
}

// Sample converts the quote into a plottable sample.
func (q Quote) Sample() Sample {
	return Sample{Time: q.Time, Price: q.Price.InexactFloat64()}
}

// IsZero reports whether the quote carries no trade. The vendor answers
// inactive symbols with stub rows that have no trade time.
func (q Quote) IsZero() bool {
	return q.Time.IsZero()
}
