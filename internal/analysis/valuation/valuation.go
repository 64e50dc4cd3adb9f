// Package valuation implements classical fair-price models: the Graham
// formula (original and rate-adjusted), the Bazin dividend rule and the
// Gordon dividend discount model, plus margin-of-safety classification.
//
// Every model reports "not applicable" through the comma-ok idiom: a
// false second result means a precondition failed (missing or
// economically invalid input), never an error. Callers must not read a
// false result as a fair price of zero.
package valuation

import (
	"fmt"
	"math"

	"github.com/fundamenta/fundamenta/pkg/models"
)

const (
	// grahamMultiplier is 22.5 = P/E of 15 × P/B of 1.5, Graham's ceiling
	// for a defensively priced stock.
	grahamMultiplier = 22.5

	// grahamBaseYieldPct is the AAA bond yield (4.4%) Graham's formula
	// was calibrated against; the adjusted variant scales the multiplier
	// by baseYield/currentYield, capped at 1.
	grahamBaseYieldPct = 4.4

	// DefaultBazinYield is Bazin's minimum acceptable dividend yield (6%).
	DefaultBazinYield = 0.06

	// DefaultDDMGrowth is the perpetual dividend growth assumed by
	// FullValuation's Gordon model run.
	DefaultDDMGrowth = 0.03

	// DefaultRiskPremium is the equity risk premium added to the
	// risk-free rate to form the Gordon discount rate.
	DefaultRiskPremium = 0.05
)

// GrahamOriginal computes √(22.5 × EPS × BVPS). Not applicable unless
// both inputs are strictly positive; the formula has no meaning for
// loss-making or negative-equity companies.
func GrahamOriginal(eps, bvps float64) (float64, bool) {
	if eps <= 0 || bvps <= 0 {
		return 0, false
	}
	return math.Sqrt(grahamMultiplier * eps * bvps), true
}

// GrahamAdjusted scales the Graham multiplier for a high interest-rate
// environment: 22.5 × min(4.4/riskFreePct, 1). The cap keeps the
// adjusted price at or below the original-formula price. Not applicable
// when EPS, BVPS or the risk-free rate is non-positive.
func GrahamAdjusted(eps, bvps, riskFreePct float64) (float64, bool) {
	if eps <= 0 || bvps <= 0 || riskFreePct <= 0 {
		return 0, false
	}
	adjust := math.Min(grahamBaseYieldPct/riskFreePct, 1.0)
	return math.Sqrt(grahamMultiplier * adjust * eps * bvps), true
}

// Bazin prices a stock as DPS / minimum acceptable yield. Not applicable
// when the company pays no dividend or the yield floor is non-positive.
func Bazin(dps, minYield float64) (float64, bool) {
	if dps <= 0 || minYield <= 0 {
		return 0, false
	}
	return dps / minYield, true
}

// GordonDDM is the constant-growth dividend discount model:
// DPS × (1+g) / (r-g). Not applicable when there is no dividend or when
// r <= g, where the perpetuity diverges.
func GordonDDM(dps, growth, discount float64) (float64, bool) {
	if dps <= 0 {
		return 0, false
	}
	if discount <= growth {
		return 0, false
	}
	return dps * (1 + growth) / (discount - growth), true
}

// SafetyMargin is the discount of the current price to the fair price:
// (fair - current) / fair. Returns 0 when the fair price is zero (or
// negative), so an inapplicable model never reads as an opportunity.
func SafetyMargin(fairPrice, currentPrice float64) float64 {
	if fairPrice <= 0 {
		return 0
	}
	return (fairPrice - currentPrice) / fairPrice
}

// Classify maps a safety margin to a recommendation band. Bands are
// checked top-down with inclusive lower bounds; the first match wins.
func Classify(margin float64) models.Recommendation {
	switch {
	case margin >= 0.30:
		return models.VeryCheap
	case margin >= 0.15:
		return models.Cheap
	case margin >= -0.10:
		return models.FairPrice
	case margin >= -0.30:
		return models.Expensive
	default:
		return models.VeryExpensive
	}
}

// Input is one instrument snapshot for FullValuation. EPS, BVPS and DPS
// are nullable; a nil field simply rules out the models that need it.
// RiskFreePct is the annual risk-free rate in percent (10.75 = 10.75%).
// BazinYield, DDMGrowth and RiskPremium override the package defaults
// when positive.
type Input struct {
	Ticker      string
	Price       float64
	EPS         *float64
	BVPS        *float64
	DPS         *float64
	RiskFreePct float64

	BazinYield  float64
	DDMGrowth   float64
	RiskPremium float64
}

// FullValuation runs every model against one snapshot and returns the
// results for the models whose preconditions held. Models that cannot
// price the stock are omitted, not reported as errors or zeros.
func FullValuation(in Input) []models.ValuationResult {
	results := make([]models.ValuationResult, 0, 4)

	eps := deref(in.EPS)
	bvps := deref(in.BVPS)
	dps := deref(in.DPS)

	if fair, ok := GrahamOriginal(eps, bvps); ok {
		results = append(results, build("Graham (Original)", fair, in.Price,
			fmt.Sprintf("√(22.5 × EPS × BVPS) = √(22.5 × %.2f × %.2f)", eps, bvps)))
	}

	if fair, ok := GrahamAdjusted(eps, bvps, in.RiskFreePct); ok {
		results = append(results, build("Graham (Rate-Adjusted)", fair, in.Price,
			fmt.Sprintf("multiplier scaled for a %.2f%% risk-free rate", in.RiskFreePct)))
	}

	bazinYield := orDefault(in.BazinYield, DefaultBazinYield)
	if fair, ok := Bazin(dps, bazinYield); ok {
		results = append(results, build(fmt.Sprintf("Bazin (%.0f%% yield)", bazinYield*100), fair, in.Price,
			fmt.Sprintf("DPS / %.0f%% = %.2f / %.2f", bazinYield*100, dps, bazinYield)))
	}

	growth := orDefault(in.DDMGrowth, DefaultDDMGrowth)
	discount := in.RiskFreePct/100 + orDefault(in.RiskPremium, DefaultRiskPremium)
	if fair, ok := GordonDDM(dps, growth, discount); ok {
		results = append(results, build("Gordon DDM", fair, in.Price,
			fmt.Sprintf("DPS × (1+g) / (r-g), g=%.0f%%, r=%.1f%%", growth*100, discount*100)))
	}

	return results
}

func build(method string, fair, current float64, rationale string) models.ValuationResult {
	margin := SafetyMargin(fair, current)
	return models.ValuationResult{
		Method:         method,
		FairPrice:      fair,
		CurrentPrice:   current,
		SafetyMargin:   margin,
		Recommendation: Classify(margin),
		Rationale:      rationale,
	}
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
