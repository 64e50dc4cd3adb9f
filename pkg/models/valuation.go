package models

// Recommendation is the price classification band derived from the margin
// of safety. Bands are ordered from cheapest to most expensive.
type Recommendation string

const (
	VeryCheap     Recommendation = "VERY CHEAP"
	Cheap         Recommendation = "CHEAP"
	FairPrice     Recommendation = "FAIR"
	Expensive     Recommendation = "EXPENSIVE"
	VeryExpensive Recommendation = "VERY EXPENSIVE"
)

// ValuationResult is the outcome of one valuation model applied to one
// stock snapshot. Results only exist for models whose preconditions were
// met; a model that cannot price the stock produces no result at all.
type ValuationResult struct {
	Method         string         `json:"method"`
	FairPrice      float64        `json:"fair_price"`
	CurrentPrice   float64        `json:"current_price"`
	SafetyMargin   float64        `json:"safety_margin"` // (fair - current) / fair
	Recommendation Recommendation `json:"recommendation"`
	Rationale      string         `json:"rationale"`
}
