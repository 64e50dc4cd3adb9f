package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fundamenta/fundamenta/pkg/models"
	"github.com/fundamenta/fundamenta/pkg/utils"
)

// Aggregator fans requests out across the concrete sources and merges
// the results, so callers never talk to a source directly.
type Aggregator struct {
	yahoo       *Yahoo
	fundamentus *Fundamentus
	bcb         *BCB
	news        *News
	concurrency int
}

// DefaultConcurrency bounds parallel per-ticker fetches in universe loads.
const DefaultConcurrency = 4

// NewAggregator creates an aggregator with all default sources.
func NewAggregator() *Aggregator {
	return &Aggregator{
		yahoo:       NewYahoo(),
		fundamentus: NewFundamentus(),
		bcb:         NewBCB(),
		news:        NewNews(),
		concurrency: DefaultConcurrency,
	}
}

// SetConcurrency bounds parallel per-ticker fetches. Values below 1 are
// ignored.
func (a *Aggregator) SetConcurrency(n int) {
	if n >= 1 {
		a.concurrency = n
	}
}

// SetRetryPolicy applies one retry policy to every HTTP source.
func (a *Aggregator) SetRetryPolicy(p RetryPolicy) {
	a.yahoo.retry = p
	a.fundamentus.retry = p
	a.bcb.retry = p
}

// Yahoo returns the Yahoo Finance source for direct access.
func (a *Aggregator) Yahoo() *Yahoo { return a.yahoo }

// Fundamentus returns the Fundamentus source for direct access.
func (a *Aggregator) Fundamentus() *Fundamentus { return a.fundamentus }

// BCB returns the central bank source for direct access.
func (a *Aggregator) BCB() *BCB { return a.bcb }

// NewsSource returns the news source for direct access.
func (a *Aggregator) NewsSource() *News { return a.news }

// FetchProfile fetches quote, one year of daily history and fundamentals
// for a ticker concurrently. History and fundamentals failures are
// non-fatal; a profile without a quote is an error.
func (a *Aggregator) FetchProfile(ctx context.Context, ticker string) (*models.StockProfile, error) {
	symbol := utils.NormalizeTicker(ticker)

	profile := &models.StockProfile{
		Stock: models.Stock{
			Ticker:   symbol,
			YahooSym: utils.YahooSymbol(symbol),
			Exchange: "B3",
			Currency: "BRL",
		},
		FetchedAt: time.Now(),
	}

	var mu sync.Mutex
	var errs []error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		quote, err := a.yahoo.GetQuote(gctx, symbol)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("quote: %w", err))
			mu.Unlock()
			return nil // non-fatal here, checked after Wait
		}
		mu.Lock()
		profile.Quote = quote
		profile.Stock.Name = quote.Name
		profile.Stock.MarketCap = quote.MarketCap
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		to := time.Now()
		from := to.AddDate(-1, 0, 0)
		history, err := a.yahoo.GetHistory(gctx, symbol, from, to)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("history: %w", err))
			mu.Unlock()
			return nil
		}
		mu.Lock()
		profile.History = history
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		fund, err := a.yahoo.GetFundamentals(gctx, symbol)
		if err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("fundamentals: %w", err))
			mu.Unlock()
			return nil
		}
		mu.Lock()
		profile.Fundamentals = fund
		profile.Stock.Sector = fund.Sector
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return profile, err
	}

	if profile.Quote == nil {
		return nil, fmt.Errorf("all sources failed for %s: %w", symbol, errors.Join(errs...))
	}
	for _, err := range errs {
		logger.Debug().Str("ticker", symbol).Err(err).Msg("partial profile")
	}

	return profile, nil
}

// FetchUniverse builds screener rows for the given tickers from Yahoo
// fundamentals, with bounded concurrency. Tickers that fail are logged
// and skipped; the call only errs when every ticker fails.
func (a *Aggregator) FetchUniverse(ctx context.Context, tickers []string) ([]models.ScreenerRow, error) {
	if len(tickers) == 0 {
		return nil, nil
	}

	rows := make([]models.ScreenerRow, len(tickers))
	ok := make([]bool, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, t := range tickers {
		i, t := i, t
		g.Go(func() error {
			symbol := utils.NormalizeTicker(t)

			quote, err := a.yahoo.GetQuote(gctx, symbol)
			if err != nil {
				logger.Warn().Str("ticker", symbol).Err(err).Msg("universe: quote failed")
				return nil
			}
			fund, err := a.yahoo.GetFundamentals(gctx, symbol)
			if err != nil {
				logger.Warn().Str("ticker", symbol).Err(err).Msg("universe: fundamentals failed")
				return nil
			}

			rows[i] = models.ScreenerRow{
				Ticker: symbol,
				Name:   quote.Name,
				Sector: fund.Sector,
				Price:  quote.LastPrice,
				Fund:   *fund,
			}
			ok[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.ScreenerRow, 0, len(tickers))
	for i := range rows {
		if ok[i] {
			out = append(out, rows[i])
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("universe: every ticker failed: %w", ErrNoData)
	}
	return out, nil
}

// FetchFullUniverse loads the whole listed market from Fundamentus in a
// single request, cheaper than per-ticker Yahoo calls when screening
// broadly.
func (a *Aggregator) FetchFullUniverse(ctx context.Context) ([]models.ScreenerRow, error) {
	return a.fundamentus.FetchUniverse(ctx)
}

// FetchMacro returns the current macro snapshot.
func (a *Aggregator) FetchMacro(ctx context.Context) *models.MacroIndicators {
	return a.bcb.GetAll(ctx)
}

// FetchMarketNews returns recent market headlines.
func (a *Aggregator) FetchMarketNews(ctx context.Context, limit int) ([]models.NewsItem, error) {
	return a.news.GetMarketNews(ctx, limit)
}

// FetchStockNews returns recent headlines for a ticker.
func (a *Aggregator) FetchStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	return a.news.GetStockNews(ctx, ticker, limit)
}
