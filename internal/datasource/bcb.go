package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fundamenta/fundamenta/pkg/models"
)

// SGS series codes published by the Banco Central do Brasil.
const (
	seriesSelic   = 432   // SELIC target rate, % per year
	seriesIPCA12M = 13522 // IPCA accumulated over 12 months, %
	seriesCambio  = 1     // PTAX USD/BRL
)

const bcbSeriesURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs.%d/dados/ultimos/%d?formato=json"

// cdiSpread approximates the CDI from the SELIC target: CDI ≈ SELIC − 0.10.
const cdiSpread = 0.10

// BCB fetches macroeconomic series from the central bank's SGS API.
type BCB struct {
	cache   *Cache
	limiter *RateLimiter
	retry   RetryPolicy
}

// NewBCB creates a central bank client. Macro series move slowly, so the
// cache TTL is generous.
func NewBCB() *BCB {
	return &BCB{
		cache:   NewCache(1 * time.Hour),
		limiter: NewRateLimiter(3, time.Second),
		retry:   DefaultRetryPolicy,
	}
}

// Name returns the data source name.
func (b *BCB) Name() string { return "Banco Central do Brasil" }

// sgsObservation is one SGS data point. Values arrive as strings.
type sgsObservation struct {
	Data  string `json:"data"` // "02/01/2006"
	Valor string `json:"valor"`
}

// GetSelic returns the current SELIC target rate in % per year.
func (b *BCB) GetSelic(ctx context.Context) (float64, error) {
	return b.latest(ctx, "selic", seriesSelic)
}

// GetIPCA12M returns the 12-month accumulated IPCA inflation in %.
func (b *BCB) GetIPCA12M(ctx context.Context) (float64, error) {
	return b.latest(ctx, "ipca12m", seriesIPCA12M)
}

// GetCDI approximates the annualized CDI from the SELIC target.
func (b *BCB) GetCDI(ctx context.Context) (float64, error) {
	selic, err := b.GetSelic(ctx)
	if err != nil {
		return 0, err
	}
	return selic - cdiSpread, nil
}

// GetFX returns the PTAX USD/BRL rate.
func (b *BCB) GetFX(ctx context.Context) (float64, error) {
	return b.latest(ctx, "cambio", seriesCambio)
}

// GetAll fetches the full macro snapshot. Individual series failures are
// tolerated: the corresponding field stays nil and the call still
// succeeds, so one flaky series never blocks an analysis run.
func (b *BCB) GetAll(ctx context.Context) *models.MacroIndicators {
	out := &models.MacroIndicators{FetchedAt: time.Now()}

	if selic, err := b.GetSelic(ctx); err == nil {
		out.Selic = models.Float(selic)
		out.CDI = models.Float(selic - cdiSpread)
	} else {
		logger.Warn().Err(err).Msg("selic unavailable")
	}
	if ipca, err := b.GetIPCA12M(ctx); err == nil {
		out.IPCA12M = models.Float(ipca)
	} else {
		logger.Warn().Err(err).Msg("ipca unavailable")
	}
	if fx, err := b.GetFX(ctx); err == nil {
		out.USDBRL = models.Float(fx)
	} else {
		logger.Warn().Err(err).Msg("ptax unavailable")
	}

	return out
}

// GetSelicHistory returns the last n observations of the SELIC target.
func (b *BCB) GetSelicHistory(ctx context.Context, n int) ([]models.RatePoint, error) {
	if n < 1 {
		n = 12
	}
	obs, err := b.fetchSeries(ctx, "selic history", seriesSelic, n)
	if err != nil {
		return nil, err
	}

	points := make([]models.RatePoint, 0, len(obs))
	for _, o := range obs {
		p, err := parseObservation(o)
		if err != nil {
			continue
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("selic history: %w", ErrNoData)
	}
	return points, nil
}

// --- Internal helpers ---

// latest fetches the newest observation of one series.
func (b *BCB) latest(ctx context.Context, name string, code int) (float64, error) {
	cacheKey := "bcb:" + name
	if cached, ok := b.cache.Get(cacheKey); ok {
		return cached.(float64), nil
	}

	obs, err := b.fetchSeries(ctx, name, code, 1)
	if err != nil {
		return 0, err
	}
	if len(obs) == 0 {
		return 0, fmt.Errorf("bcb %s: %w", name, ErrNoData)
	}

	p, err := parseObservation(obs[len(obs)-1])
	if err != nil {
		return 0, fmt.Errorf("bcb %s: %w", name, err)
	}

	b.cache.Set(cacheKey, p.Value)
	return p.Value, nil
}

func (b *BCB) fetchSeries(ctx context.Context, op string, code, n int) ([]sgsObservation, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(bcbSeriesURL, code, n)

	var obs []sgsObservation
	err := b.retry.Do(ctx, op, func() error {
		body, _, err := doGet(ctx, url, map[string]string{"Accept": "application/json"})
		if err != nil {
			return err
		}
		defer body.Close()

		data, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return json.Unmarshal(data, &obs)
	})
	if err != nil {
		return nil, fmt.Errorf("bcb series %d: %w", code, err)
	}
	return obs, nil
}

func parseObservation(o sgsObservation) (models.RatePoint, error) {
	date, err := time.Parse("02/01/2006", o.Data)
	if err != nil {
		return models.RatePoint{}, fmt.Errorf("parse date %q: %w", o.Data, err)
	}
	// Some series use a decimal comma.
	raw := strings.ReplaceAll(o.Valor, ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.RatePoint{}, fmt.Errorf("parse value %q: %w", o.Valor, err)
	}
	return models.RatePoint{Date: date, Value: value}, nil
}
