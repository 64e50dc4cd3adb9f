package datasource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/fundamenta/fundamenta/pkg/models"
	"github.com/fundamenta/fundamenta/pkg/utils"
)

const fundamentusResultURL = "https://www.fundamentus.com.br/resultado.php"

// Fundamentus scrapes the fundamentus.com.br screener table, the fastest
// way to load fundamentals for the whole B3 market in one request.
type Fundamentus struct {
	cache   *Cache
	limiter *RateLimiter
	retry   RetryPolicy
}

// NewFundamentus creates a Fundamentus client.
func NewFundamentus() *Fundamentus {
	return &Fundamentus{
		cache:   NewCache(30 * time.Minute),
		limiter: NewRateLimiter(1, time.Second), // conservative: 1 req/s
		retry:   DefaultRetryPolicy,
	}
}

// Name returns the data source name.
func (f *Fundamentus) Name() string { return "Fundamentus" }

// FetchUniverse returns one screener row per listed ticker. Rows are in
// the site's order; figures the site leaves blank stay nil.
func (f *Fundamentus) FetchUniverse(ctx context.Context) ([]models.ScreenerRow, error) {
	const cacheKey = "fundamentus:universe"
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.([]models.ScreenerRow), nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var doc *goquery.Document
	err := f.retry.Do(ctx, "fundamentus universe", func() error {
		body, _, err := doGet(ctx, fundamentusResultURL, map[string]string{
			"Accept": "text/html",
		})
		if err != nil {
			return err
		}
		defer body.Close()

		doc, err = goquery.NewDocumentFromReader(body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fundamentus universe: %w", err)
	}

	rows := parseResultTable(doc)
	if len(rows) == 0 {
		return nil, fmt.Errorf("fundamentus universe: %w", ErrNoData)
	}

	logger.Info().Int("tickers", len(rows)).Msg("fundamentus universe loaded")
	f.cache.Set(cacheKey, rows)
	return rows, nil
}

// FetchRow returns the universe row for one ticker.
func (f *Fundamentus) FetchRow(ctx context.Context, ticker string) (*models.ScreenerRow, error) {
	symbol := utils.NormalizeTicker(ticker)

	rows, err := f.FetchUniverse(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Ticker == symbol {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
}

// --- Parsing ---

// Column order of the resultado.php table. Only the columns mapped onto
// the fundamentals record are named.
const (
	colTicker    = 0
	colPrice     = 1
	colPE        = 2
	colPB        = 3
	colDY        = 5
	colEVEBITDA  = 11
	colNetMargin = 13
	colROE       = 16
	colDebtEq    = 19
)

func parseResultTable(doc *goquery.Document) []models.ScreenerRow {
	var rows []models.ScreenerRow

	doc.Find("table#resultado tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		if len(cells) <= colDebtEq {
			return
		}

		ticker := utils.NormalizeTicker(cells[colTicker])
		if ticker == "" {
			return
		}

		row := models.ScreenerRow{Ticker: ticker, Name: ticker}
		if price, ok := parseBRNumber(cells[colPrice]); ok {
			row.Price = price
		}
		row.Fund.PE = brField(cells[colPE], 1)
		row.Fund.PB = brField(cells[colPB], 1)
		row.Fund.DividendYield = brField(cells[colDY], 100) // "8,5%" → 0.085
		row.Fund.NetMargin = brField(cells[colNetMargin], 100)
		row.Fund.ROE = brField(cells[colROE], 100)
		row.Fund.DebtToEquity = brField(cells[colDebtEq], 1)

		rows = append(rows, row)
	})

	return rows
}

// brField parses one table cell, dividing by scale (100 turns a percent
// column into a decimal). Blank or dash cells give nil.
func brField(s string, scale float64) *float64 {
	v, ok := parseBRNumber(s)
	if !ok {
		return nil
	}
	return models.Float(v / scale)
}

// parseBRNumber parses Brazilian-formatted numbers: "1.234,56" → 1234.56,
// "8,5%" → 8.5. Empty strings and dashes are not numbers.
func parseBRNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || s == "--" {
		return 0, false
	}

	// Thousands dots out, decimal comma in.
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
