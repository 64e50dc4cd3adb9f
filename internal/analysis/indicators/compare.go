package indicators

import (
	"sort"

	"github.com/fundamenta/fundamenta/pkg/models"
)

// ComparisonRow pairs a ticker with its summary statistics.
type ComparisonRow struct {
	Ticker string
	Stats  models.SummaryStats
}

// Compare produces a side-by-side performance table for several analyzers,
// one row per ticker, sorted by ticker for stable output. riskFreeRate and
// window are passed through to Summary.
func Compare(analyzers map[string]*Analyzer, riskFreeRate float64, window int) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(analyzers))
	for ticker, a := range analyzers {
		rows = append(rows, ComparisonRow{
			Ticker: ticker,
			Stats:  a.Summary(riskFreeRate, window),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Ticker < rows[j].Ticker })
	return rows
}
