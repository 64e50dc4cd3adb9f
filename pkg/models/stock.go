// Package models defines the core data structures used throughout Fundamenta.
package models

import (
	"fmt"
	"time"
)

// Stock represents basic stock identity information.
type Stock struct {
	Ticker    string  `json:"ticker"`     // e.g., "ITUB4"
	YahooSym  string  `json:"yahoo_sym"`  // e.g., "ITUB4.SA"
	Name      string  `json:"name"`       // e.g., "Itaú Unibanco Holding S.A."
	Exchange  string  `json:"exchange"`   // "B3"
	Sector    string  `json:"sector"`     // e.g., "Financial Services"
	Industry  string  `json:"industry"`   // e.g., "Banks - Regional"
	Currency  string  `json:"currency"`   // "BRL"
	MarketCap float64 `json:"market_cap"` // raw value, not formatted
}

// PriceBar is one daily candlestick of price data.
// Close and Volume are the only fields the analytics core consumes;
// Open/High/Low may be zero for sources that omit them.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceHistory is an immutable, chronologically ordered sequence of PriceBars.
// Construct with NewPriceHistory; the zero value is an empty history.
type PriceHistory struct {
	bars []PriceBar
}

// NewPriceHistory validates and wraps a bar slice. Dates must be strictly
// increasing; calendar gaps (weekends, holidays) are fine. The input slice
// is copied, so later caller mutations do not leak in.
func NewPriceHistory(bars []PriceBar) (PriceHistory, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return PriceHistory{}, fmt.Errorf("price history: dates not strictly increasing at index %d (%s >= %s)",
				i, bars[i-1].Date.Format("2006-01-02"), bars[i].Date.Format("2006-01-02"))
		}
	}
	cp := make([]PriceBar, len(bars))
	copy(cp, bars)
	return PriceHistory{bars: cp}, nil
}

// Len returns the number of bars.
func (h PriceHistory) Len() int { return len(h.bars) }

// Bar returns the bar at index i (0 = oldest).
func (h PriceHistory) Bar(i int) PriceBar { return h.bars[i] }

// Bars returns a copy of the underlying bars.
func (h PriceHistory) Bars() []PriceBar {
	cp := make([]PriceBar, len(h.bars))
	copy(cp, h.bars)
	return cp
}

// Closes returns the closing price series, oldest first.
func (h PriceHistory) Closes() []float64 {
	out := make([]float64, len(h.bars))
	for i, b := range h.bars {
		out[i] = b.Close
	}
	return out
}

// Volumes returns the volume series, oldest first.
func (h PriceHistory) Volumes() []int64 {
	out := make([]int64, len(h.bars))
	for i, b := range h.bars {
		out[i] = b.Volume
	}
	return out
}

// Last returns the most recent bar, or false for an empty history.
func (h PriceHistory) Last() (PriceBar, bool) {
	if len(h.bars) == 0 {
		return PriceBar{}, false
	}
	return h.bars[len(h.bars)-1], true
}

// Quote represents a point-in-time stock quote.
type Quote struct {
	Ticker     string    `json:"ticker"`
	Name       string    `json:"name"`
	LastPrice  float64   `json:"last_price"`
	Change     float64   `json:"change"`
	ChangePct  float64   `json:"change_pct"`
	PrevClose  float64   `json:"prev_close"`
	Volume     int64     `json:"volume"`
	WeekHigh52 float64   `json:"week_high_52"`
	WeekLow52  float64   `json:"week_low_52"`
	MarketCap  float64   `json:"market_cap"`
	Timestamp  time.Time `json:"timestamp"`
}

// SummaryStats is the value object produced by the indicator engine's
// Summary call. All rates are decimals (0.12 = 12%).
type SummaryStats struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	CurrentPrice     float64 `json:"current_price"`
	High52W          float64 `json:"high_52w"`
	Low52W           float64 `json:"low_52w"`
	AvgVolume        float64 `json:"avg_volume"`
}

// StockProfile aggregates the data fetched for one stock.
type StockProfile struct {
	Stock        Stock               `json:"stock"`
	Quote        *Quote              `json:"quote,omitempty"`
	History      PriceHistory        `json:"-"`
	Fundamentals *FundamentalsRecord `json:"fundamentals,omitempty"`
	FetchedAt    time.Time           `json:"fetched_at"`
}
