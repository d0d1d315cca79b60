package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceBar represents one daily OHLCV bar for a symbol.
// Bars are immutable once stored; (symbol, date) is the uniqueness key.
type PriceBar struct {
	ID        int             `json:"id"`
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

// DateKey returns the bar date as a YYYY-MM-DD string. Duplicate detection
// is done on the date string, not the full timestamp.
func (p *PriceBar) DateKey() string {
	return p.Date.Format("2006-01-02")
}
