package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/fundamenta/fundamenta/pkg/models"
)

// makeHistory builds a daily history from closing prices, with volume
// 1000 + 10*i per bar.
func makeHistory(t *testing.T, closes ...float64) models.PriceHistory {
	t.Helper()
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{
			Date:   start.AddDate(0, 0, i),
			Close:  c,
			Volume: int64(1000 + 10*i),
		}
	}
	h, err := models.NewPriceHistory(bars)
	if err != nil {
		t.Fatalf("fixture history: %v", err)
	}
	return h
}

// trendingHistory builds n bars compounding at the given daily rate.
func trendingHistory(t *testing.T, n int, base, dailyRate float64) models.PriceHistory {
	t.Helper()
	closes := make([]float64, n)
	price := base
	for i := range closes {
		closes[i] = price
		price *= 1 + dailyRate
	}
	return makeHistory(t, closes...)
}

func approx(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

func TestDerivedSeries(t *testing.T) {
	a := NewAnalyzer(makeHistory(t, 100, 110, 99))

	rets := a.Returns(0)
	if len(rets) != 3 {
		t.Fatalf("expected 3 return entries, got %d", len(rets))
	}
	if !math.IsNaN(rets[0]) {
		t.Error("first bar's return should be NaN")
	}
	approx(t, "returns[1]", rets[1], 0.10, 1e-12)
	approx(t, "returns[2]", rets[2], -0.10, 1e-12)

	logs := a.LogReturns()
	approx(t, "logReturns[1]", logs[1], math.Log(1.10), 1e-12)

	cum := a.CumulativeReturns()
	if !math.IsNaN(cum[0]) {
		t.Error("first cumulative return should be NaN")
	}
	approx(t, "cumReturns[2]", cum[2], 1.1*0.9-1, 1e-9)
}

func TestReturnsWindow(t *testing.T) {
	a := NewAnalyzer(makeHistory(t, 100, 110, 121, 133.1))

	rets := a.Returns(2)
	if len(rets) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rets))
	}
	approx(t, "windowed returns[0]", rets[0], 0.10, 1e-9)

	// Window covering the whole history includes the leading NaN.
	all := a.Returns(4)
	if !math.IsNaN(all[0]) {
		t.Error("oldest entry should be NaN when the window reaches the first bar")
	}
}

func TestTotalReturn(t *testing.T) {
	single := NewAnalyzer(makeHistory(t, 42))
	if got := single.TotalReturn(0); got != 0.0 {
		t.Errorf("one-bar total return should be 0.0, got %v", got)
	}
	if got := single.TotalReturn(10); got != 0.0 {
		t.Errorf("windowed one-bar total return should be 0.0, got %v", got)
	}

	a := NewAnalyzer(makeHistory(t, 100, 110, 121, 133.1))
	approx(t, "full total return", a.TotalReturn(0), 0.331, 1e-9)

	// A window of 2 consumes 3 price points: 110 → 133.1.
	approx(t, "windowed total return", a.TotalReturn(2), 133.1/110-1, 1e-9)
}

func TestAnnualizedReturn(t *testing.T) {
	// With window == 252 the exponent is exactly 1: annualized == total.
	a := NewAnalyzer(trendingHistory(t, 253, 100, 0.001))
	total := a.TotalReturn(252)
	approx(t, "annualized(252)", a.AnnualizedReturn(252), total, 1e-9)

	// Unset window annualizes over the full bar count.
	b := NewAnalyzer(makeHistory(t, 100, 121))
	want := math.Pow(1.21, 252.0/2.0) - 1
	approx(t, "annualized(full)", b.AnnualizedReturn(0), want, 1e-6)

	empty := NewAnalyzer(models.PriceHistory{})
	if got := empty.AnnualizedReturn(0); got != 0.0 {
		t.Errorf("empty history should annualize to 0.0, got %v", got)
	}
}

func TestVolatility(t *testing.T) {
	// Alternating ±10% daily returns.
	a := NewAnalyzer(makeHistory(t, 100, 110, 99, 108.9, 98.01))
	rets := []float64{0.1, -0.1, 0.1, -0.1}
	m := 0.0
	for _, r := range rets {
		m += r
	}
	m /= 4
	sumSq := 0.0
	for _, r := range rets {
		sumSq += (r - m) * (r - m)
	}
	want := math.Sqrt(sumSq / 3)
	approx(t, "daily volatility", a.Volatility(0, false), want, 1e-9)
	approx(t, "annualized volatility", a.Volatility(0, true), want*math.Sqrt(252), 1e-9)

	// Flat prices have zero volatility.
	flat := NewAnalyzer(makeHistory(t, 50, 50, 50, 50))
	if got := flat.Volatility(0, true); got != 0.0 {
		t.Errorf("flat series volatility should be 0.0, got %v", got)
	}

	// Two bars leave a single valid return after dropping the NaN.
	short := NewAnalyzer(makeHistory(t, 100, 105))
	if got := short.Volatility(0, true); got != 0.0 {
		t.Errorf("single valid return should give 0.0, got %v", got)
	}
}

func TestSharpeRatioSaturatesAtZeroVolatility(t *testing.T) {
	flat := NewAnalyzer(makeHistory(t, 50, 50, 50, 50))
	for _, rf := range []float64{-0.05, 0, 0.1075, 1.5} {
		if got := flat.SharpeRatio(rf, 0); got != 0.0 {
			t.Errorf("SharpeRatio(rf=%v) with zero volatility = %v, want 0.0", rf, got)
		}
	}
}

func TestSharpeRatioSign(t *testing.T) {
	up := NewAnalyzer(trendingHistory(t, 100, 100, 0.002))
	if got := up.SharpeRatio(0, 0); got <= 0 {
		t.Errorf("uptrend Sharpe with rf=0 should be positive, got %v", got)
	}
	if hi := up.SharpeRatio(10.0, 0); hi >= 0 {
		t.Errorf("absurd risk-free rate should push Sharpe negative, got %v", hi)
	}
}

func TestMaxDrawdown(t *testing.T) {
	nonDecreasing := NewAnalyzer(makeHistory(t, 10, 10, 11, 11, 15))
	if got := nonDecreasing.MaxDrawdown(0); got != 0.0 {
		t.Errorf("non-decreasing series drawdown should be 0.0, got %v", got)
	}

	a := NewAnalyzer(makeHistory(t, 100, 120, 90, 105))
	approx(t, "max drawdown", a.MaxDrawdown(0), -0.25, 1e-9)

	if dd := a.MaxDrawdown(2); dd > 0 {
		t.Errorf("drawdown must never be positive, got %v", dd)
	}
}

func TestMovingAverage(t *testing.T) {
	a := NewAnalyzer(makeHistory(t, 10, 20, 30, 40, 50))
	ma := a.MovingAverage(3)
	if len(ma) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(ma))
	}
	if !math.IsNaN(ma[0]) || !math.IsNaN(ma[1]) {
		t.Error("first n-1 moving average entries should be NaN")
	}
	approx(t, "ma[2]", ma[2], 20, 1e-12)
	approx(t, "ma[4]", ma[4], 40, 1e-12)

	short := a.MovingAverage(10)
	for i, v := range short {
		if !math.IsNaN(v) {
			t.Errorf("window longer than history: entry %d should be NaN, got %v", i, v)
		}
	}
}

func TestMovingAverages(t *testing.T) {
	a := NewAnalyzer(trendingHistory(t, 60, 100, 0.001))
	mas := a.MovingAverages(20, 50)
	if len(mas) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(mas))
	}
	if math.IsNaN(mas[20][len(mas[20])-1]) {
		t.Error("20-bar SMA should be defined at the last bar")
	}
}

func TestSummary(t *testing.T) {
	a := NewAnalyzer(makeHistory(t, 100, 120, 90, 105))
	stats := a.Summary(0.10, 0)

	if stats.CurrentPrice != 105 {
		t.Errorf("expected current price 105, got %v", stats.CurrentPrice)
	}
	if stats.High52W != 120 || stats.Low52W != 90 {
		t.Errorf("expected 52w range [90, 120], got [%v, %v]", stats.Low52W, stats.High52W)
	}
	approx(t, "summary total return", stats.TotalReturn, 0.05, 1e-9)
	approx(t, "summary drawdown", stats.MaxDrawdown, -0.25, 1e-9)
	// Volumes are 1000, 1010, 1020, 1030.
	approx(t, "summary avg volume", stats.AvgVolume, 1015, 1e-9)
}

func TestSummaryWindowedVolume(t *testing.T) {
	a := NewAnalyzer(makeHistory(t, 100, 120, 90, 105))
	stats := a.Summary(0, 2)
	// Last two volumes: 1020, 1030.
	approx(t, "windowed avg volume", stats.AvgVolume, 1025, 1e-9)
}

func TestCompare(t *testing.T) {
	analyzers := map[string]*Analyzer{
		"PETR4": NewAnalyzer(makeHistory(t, 30, 33)),
		"ITUB4": NewAnalyzer(makeHistory(t, 32, 32.5)),
	}
	rows := Compare(analyzers, 0.10, 0)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Ticker != "ITUB4" || rows[1].Ticker != "PETR4" {
		t.Error("rows should be sorted by ticker")
	}
	approx(t, "PETR4 total return", rows[1].Stats.TotalReturn, 0.10, 1e-9)
}
