package models

import "strings"

// FundamentalsRecord holds the fundamental figures reported for one stock.
// Every numeric field is a nullable pointer: nil means the provider did not
// report the figure, which is different from a reported zero and from a
// reported negative value. Consumers must check for nil instead of relying
// on a falsy-value convention.
//
// Ratios (DividendYield, ROE, margins, ...) are decimals: 0.06 = 6%.
type FundamentalsRecord struct {
	EPS             *float64 `json:"eps,omitempty"`              // LPA
	BookValue       *float64 `json:"book_value,omitempty"`       // VPA, per share
	PE              *float64 `json:"pe,omitempty"`               // P/L
	PB              *float64 `json:"pb,omitempty"`               // P/VP
	DividendYield   *float64 `json:"dividend_yield,omitempty"`
	PayoutRatio     *float64 `json:"payout_ratio,omitempty"`
	ROE             *float64 `json:"roe,omitempty"`
	ROA             *float64 `json:"roa,omitempty"`
	NetMargin       *float64 `json:"net_margin,omitempty"`
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"`
	Revenue         *float64 `json:"revenue,omitempty"`
	NetIncome       *float64 `json:"net_income,omitempty"`
	EBITDA          *float64 `json:"ebitda,omitempty"`
	EnterpriseValue *float64 `json:"enterprise_value,omitempty"`
	MarketCap       *float64 `json:"market_cap,omitempty"`
	Sector          string   `json:"sector,omitempty"`
}

// Float returns a pointer to v. Convenience for building records.
func Float(v float64) *float64 { return &v }

// Field resolves a column name to the corresponding value. Both the
// Portuguese short names used by B3 data sources (pl, pvp, lpa, vpa, dy)
// and the English names are accepted. Unknown names return nil, which the
// screener treats as a failed predicate, never an error.
func (f *FundamentalsRecord) Field(name string) *float64 {
	if f == nil {
		return nil
	}
	switch strings.ToLower(name) {
	case "lpa", "eps":
		return f.EPS
	case "vpa", "bvps", "book_value":
		return f.BookValue
	case "pl", "pe":
		return f.PE
	case "pvp", "pb":
		return f.PB
	case "dy", "dividend_yield":
		return f.DividendYield
	case "payout", "payout_ratio":
		return f.PayoutRatio
	case "roe":
		return f.ROE
	case "roa":
		return f.ROA
	case "net_margin", "margem_liquida":
		return f.NetMargin
	case "gross_margin":
		return f.GrossMargin
	case "debt_to_equity", "divida_patrimonio":
		return f.DebtToEquity
	case "revenue":
		return f.Revenue
	case "net_income":
		return f.NetIncome
	case "ebitda":
		return f.EBITDA
	case "enterprise_value", "ev":
		return f.EnterpriseValue
	case "market_cap":
		return f.MarketCap
	default:
		return nil
	}
}

// DPS estimates the trailing dividend per share as yield × price.
// Returns nil when the yield is missing or the price is not positive.
func (f *FundamentalsRecord) DPS(price float64) *float64 {
	if f == nil || f.DividendYield == nil || price <= 0 {
		return nil
	}
	dps := *f.DividendYield * price
	return &dps
}

// ScreenerRow is one entry in the screener universe: stock identity plus
// its fundamentals. The ticker is the unique key.
type ScreenerRow struct {
	Ticker string             `json:"ticker"`
	Name   string             `json:"name"`
	Sector string             `json:"sector"`
	Price  float64            `json:"price"`
	Fund   FundamentalsRecord `json:"fundamentals"`
}

// Field resolves a column on the row; "price" maps to the quoted price,
// everything else falls through to the fundamentals record.
func (r *ScreenerRow) Field(name string) *float64 {
	switch strings.ToLower(name) {
	case "price", "preco", "cotacao":
		if r.Price == 0 {
			return nil
		}
		return &r.Price
	default:
		return r.Fund.Field(name)
	}
}
