package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fundamenta/fundamenta/pkg/models"
	"github.com/fundamenta/fundamenta/pkg/utils"
)

// Yahoo fetches quotes, daily price history and fundamentals from the
// Yahoo Finance API, mapping B3 tickers to their ".SA" symbols.
type Yahoo struct {
	cache   *Cache
	limiter *RateLimiter
	retry   RetryPolicy
}

// NewYahoo creates a Yahoo Finance client with sensible cache and
// rate-limit defaults.
func NewYahoo() *Yahoo {
	return &Yahoo{
		cache:   NewCache(5 * time.Minute),
		limiter: NewRateLimiter(5, time.Second), // 5 req/s
		retry:   DefaultRetryPolicy,
	}
}

// Name returns the data source name.
func (y *Yahoo) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol                     string  `json:"symbol"`
	ShortName                  string  `json:"shortName"`
	LongName                   string  `json:"longName"`
	RegularMarketPrice         float64 `json:"regularMarketPrice"`
	RegularMarketChange        float64 `json:"regularMarketChange"`
	RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
	RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
	RegularMarketVolume        int64   `json:"regularMarketVolume"`
	MarketCap                  float64 `json:"marketCap"`
	FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
	RegularMarketTime          int64   `json:"regularMarketTime"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

// Entries are nil on bars Yahoo could not price (holidays, suspensions).
type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	SummaryProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"summaryProfile"`
	SummaryDetail *struct {
		DividendYield yfValue `json:"dividendYield"`
		PayoutRatio   yfValue `json:"payoutRatio"`
		TrailingPE    yfValue `json:"trailingPE"`
		MarketCap     yfValue `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		TrailingEps     yfValue `json:"trailingEps"`
		BookValue       yfValue `json:"bookValue"`
		PriceToBook     yfValue `json:"priceToBook"`
		EnterpriseValue yfValue `json:"enterpriseValue"`
	} `json:"defaultKeyStatistics"`
	FinancialData *struct {
		ReturnOnEquity yfValue `json:"returnOnEquity"`
		ReturnOnAssets yfValue `json:"returnOnAssets"`
		ProfitMargins  yfValue `json:"profitMargins"`
		GrossMargins   yfValue `json:"grossMargins"`
		DebtToEquity   yfValue `json:"debtToEquity"` // percent, not decimal
		TotalRevenue   yfValue `json:"totalRevenue"`
		Ebitda         yfValue `json:"ebitda"`
	} `json:"financialData"`
	IncomeStatementHistory *struct {
		Statements []struct {
			NetIncome yfValue `json:"netIncome"`
		} `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`
}

// yfValue is Yahoo's {raw, fmt} number envelope. Raw stays nil when the
// figure is not reported.
type yfValue struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Public methods ---

// GetQuote returns a near-real-time quote.
func (y *Yahoo) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	symbol := utils.YahooSymbol(ticker)

	cacheKey := "quote:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.Quote), nil
	}

	url := fmt.Sprintf("https://query1.finance.yahoo.com/v7/finance/quote?symbols=%s", symbol)

	var resp yfQuoteResponse
	if err := y.getJSON(ctx, "yahoo quote", url, &resp); err != nil {
		return nil, fmt.Errorf("yahoo quote %s: %w", symbol, err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yahoo quote %s: %s", symbol, resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	r := resp.QuoteResponse.Result[0]
	quote := &models.Quote{
		Ticker:     utils.NormalizeTicker(r.Symbol),
		Name:       coalesce(r.LongName, r.ShortName),
		LastPrice:  r.RegularMarketPrice,
		Change:     r.RegularMarketChange,
		ChangePct:  r.RegularMarketChangePercent,
		PrevClose:  r.RegularMarketPreviousClose,
		Volume:     r.RegularMarketVolume,
		WeekHigh52: r.FiftyTwoWeekHigh,
		WeekLow52:  r.FiftyTwoWeekLow,
		MarketCap:  r.MarketCap,
		Timestamp:  time.Unix(r.RegularMarketTime, 0),
	}

	y.cache.Set(cacheKey, quote)
	return quote, nil
}

// GetHistory returns daily bars for the given date range.
func (y *Yahoo) GetHistory(ctx context.Context, ticker string, from, to time.Time) (models.PriceHistory, error) {
	symbol := utils.YahooSymbol(ticker)

	cacheKey := fmt.Sprintf("hist:%s:%d:%d", symbol, from.Unix(), to.Unix())
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(models.PriceHistory), nil
	}

	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d",
		symbol, from.Unix(), to.Unix(),
	)

	var resp yfChartResponse
	if err := y.getJSON(ctx, "yahoo chart", url, &resp); err != nil {
		return models.PriceHistory{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return models.PriceHistory{}, fmt.Errorf("yahoo chart %s: %s", symbol, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return models.PriceHistory{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	bars := parseChartBars(resp.Chart.Result[0])
	if len(bars) == 0 {
		return models.PriceHistory{}, fmt.Errorf("yahoo chart %s: %w", symbol, ErrNoData)
	}
	history, err := models.NewPriceHistory(bars)
	if err != nil {
		return models.PriceHistory{}, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	y.cache.SetWithTTL(cacheKey, history, 15*time.Minute)
	return history, nil
}

// GetFundamentals returns the fundamentals snapshot Yahoo reports for a
// ticker. Figures Yahoo omits stay nil.
func (y *Yahoo) GetFundamentals(ctx context.Context, ticker string) (*models.FundamentalsRecord, error) {
	symbol := utils.YahooSymbol(ticker)

	cacheKey := "fund:" + symbol
	if cached, ok := y.cache.Get(cacheKey); ok {
		return cached.(*models.FundamentalsRecord), nil
	}

	modules := "summaryProfile,summaryDetail,defaultKeyStatistics,financialData,incomeStatementHistory"
	url := fmt.Sprintf(
		"https://query1.finance.yahoo.com/v10/finance/quoteSummary/%s?modules=%s",
		symbol, modules,
	)

	var resp yfSummaryResponse
	if err := y.getJSON(ctx, "yahoo summary", url, &resp); err != nil {
		return nil, fmt.Errorf("yahoo summary %s: %w", symbol, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yahoo summary %s: %s", symbol, resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	record := parseSummary(resp.QuoteSummary.Result[0])

	y.cache.SetWithTTL(cacheKey, record, 1*time.Hour)
	return record, nil
}

// GetProfile assembles a stock profile from quote and fundamentals.
// History is not included; the aggregator fetches it separately.
func (y *Yahoo) GetProfile(ctx context.Context, ticker string) (*models.StockProfile, error) {
	quote, err := y.GetQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	profile := &models.StockProfile{
		Stock: models.Stock{
			Ticker:    utils.NormalizeTicker(ticker),
			YahooSym:  utils.YahooSymbol(ticker),
			Name:      quote.Name,
			Exchange:  "B3",
			Currency:  "BRL",
			MarketCap: quote.MarketCap,
		},
		Quote:     quote,
		FetchedAt: time.Now(),
	}

	if fund, err := y.GetFundamentals(ctx, ticker); err == nil {
		profile.Fundamentals = fund
		profile.Stock.Sector = fund.Sector
	} else {
		logger.Debug().Str("ticker", ticker).Err(err).Msg("fundamentals unavailable")
	}

	return profile, nil
}

// --- Helpers ---

// getJSON rate-limits, fetches and decodes one endpoint, retrying
// transient failures.
func (y *Yahoo) getJSON(ctx context.Context, op, url string, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return err
	}
	return y.retry.Do(ctx, op, func() error {
		body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
		if err != nil {
			return err
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return json.Unmarshal(data, out)
	})
}

// parseChartBars converts a chart result to daily bars. Bars without a
// close are dropped; the indicator engine cannot use them.
func parseChartBars(result yfChartResult) []models.PriceBar {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}
	q := result.Indicators.Quote[0]

	bars := make([]models.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		b := models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			b.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			b.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			b.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			b.Volume = *q.Volume[i]
		}
		bars = append(bars, b)
	}
	return bars
}

// parseSummary maps a quoteSummary result onto a fundamentals record.
func parseSummary(r yfSummaryResult) *models.FundamentalsRecord {
	rec := &models.FundamentalsRecord{}

	if p := r.SummaryProfile; p != nil {
		rec.Sector = p.Sector
	}
	if d := r.SummaryDetail; d != nil {
		rec.DividendYield = d.DividendYield.Raw
		rec.PayoutRatio = d.PayoutRatio.Raw
		rec.PE = d.TrailingPE.Raw
		rec.MarketCap = d.MarketCap.Raw
	}
	if k := r.DefaultKeyStatistics; k != nil {
		rec.EPS = k.TrailingEps.Raw
		rec.BookValue = k.BookValue.Raw
		rec.PB = k.PriceToBook.Raw
		rec.EnterpriseValue = k.EnterpriseValue.Raw
	}
	if f := r.FinancialData; f != nil {
		rec.ROE = f.ReturnOnEquity.Raw
		rec.ROA = f.ReturnOnAssets.Raw
		rec.NetMargin = f.ProfitMargins.Raw
		rec.GrossMargin = f.GrossMargins.Raw
		rec.Revenue = f.TotalRevenue.Raw
		rec.EBITDA = f.Ebitda.Raw
		if f.DebtToEquity.Raw != nil {
			rec.DebtToEquity = models.Float(*f.DebtToEquity.Raw / 100)
		}
	}
	if h := r.IncomeStatementHistory; h != nil && len(h.Statements) > 0 {
		rec.NetIncome = h.Statements[0].NetIncome.Raw
	}

	return rec
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
