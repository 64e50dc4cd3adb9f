package datasource

import (
	"strings"

	"github.com/fundamenta/fundamenta/pkg/models"
)

// Heuristic sector-average multiples for the Brazilian market, keyed by
// the sector names Yahoo Finance reports.
var sectorBenchmarks = map[string]models.SectorBenchmark{
	"Financial Services":     {AvgPE: 8, AvgPB: 1.2, AvgDY: 0.06},
	"Banks":                  {AvgPE: 7, AvgPB: 1.0, AvgDY: 0.07},
	"Technology":             {AvgPE: 25, AvgPB: 5.0, AvgDY: 0.01},
	"Consumer Cyclical":      {AvgPE: 15, AvgPB: 2.5, AvgDY: 0.03},
	"Consumer Defensive":     {AvgPE: 18, AvgPB: 3.0, AvgDY: 0.04},
	"Energy":                 {AvgPE: 6, AvgPB: 1.2, AvgDY: 0.10},
	"Basic Materials":        {AvgPE: 8, AvgPB: 1.5, AvgDY: 0.06},
	"Industrials":            {AvgPE: 12, AvgPB: 2.0, AvgDY: 0.03},
	"Healthcare":             {AvgPE: 20, AvgPB: 3.5, AvgDY: 0.02},
	"Utilities":              {AvgPE: 10, AvgPB: 1.5, AvgDY: 0.06},
	"Real Estate":            {AvgPE: 12, AvgPB: 1.0, AvgDY: 0.07},
	"Communication Services": {AvgPE: 15, AvgPB: 2.0, AvgDY: 0.04},
}

// DefaultBenchmark covers sectors with no mapping.
var DefaultBenchmark = models.SectorBenchmark{AvgPE: 12, AvgPB: 2.0, AvgDY: 0.04}

// extraordinaryYieldThreshold flags a trailing yield as distorted by
// one-off payouts. Above it the yield is no sustainable dividend signal.
const extraordinaryYieldThreshold = 0.15

// SectorBenchmarkFor returns the benchmark for a sector, matching the
// exact name first and then substrings in either direction.
func SectorBenchmarkFor(sector string) models.SectorBenchmark {
	if sector == "" {
		return DefaultBenchmark
	}
	if b, ok := sectorBenchmarks[sector]; ok {
		return b
	}

	lower := strings.ToLower(sector)
	for name, b := range sectorBenchmarks {
		nameLower := strings.ToLower(name)
		if strings.Contains(lower, nameLower) || strings.Contains(nameLower, lower) {
			return b
		}
	}

	return DefaultBenchmark
}

// NormalizedDPS caps an extraordinary dividend before a yield-based
// valuation. When the trailing DPS implies a yield above 15% — typically
// a one-off payout that will not repeat — it is replaced by the sector's
// average yield times the current price. Ordinary payouts pass through
// unchanged.
func NormalizedDPS(dps, price float64, sector string) (float64, bool) {
	if dps <= 0 || price <= 0 {
		return dps, false
	}
	if dps/price <= extraordinaryYieldThreshold {
		return dps, false
	}
	return SectorBenchmarkFor(sector).AvgDY * price, true
}
