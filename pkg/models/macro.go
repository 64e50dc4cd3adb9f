package models

import "time"

// MacroIndicators holds the Brazilian macroeconomic snapshot fetched from
// the central bank. Nil fields mean the series could not be retrieved.
// Rates are annual percentages (10.75 = 10.75%/yr).
type MacroIndicators struct {
	Selic     *float64  `json:"selic,omitempty"`    // SELIC target rate
	IPCA12M   *float64  `json:"ipca_12m,omitempty"` // 12-month accumulated inflation
	CDI       *float64  `json:"cdi,omitempty"`      // interbank rate
	USDBRL    *float64  `json:"usd_brl,omitempty"`  // PTAX dollar
	FetchedAt time.Time `json:"fetched_at"`
}

// RatePoint is one observation of a central bank time series.
type RatePoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SectorBenchmark holds heuristic sector-average multiples for the
// Brazilian market. Used to contextualize a stock's multiples and to
// normalize extraordinary dividend yields before a Bazin valuation.
type SectorBenchmark struct {
	AvgPE float64 `json:"avg_pe"`
	AvgPB float64 `json:"avg_pb"`
	AvgDY float64 `json:"avg_dy"` // decimal, 0.06 = 6%
}

// NewsItem is one market news headline from an RSS feed.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
