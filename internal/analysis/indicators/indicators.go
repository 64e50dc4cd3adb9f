// Package indicators computes time-series performance statistics over a
// stock's price history: returns, volatility, Sharpe ratio, drawdown and
// moving averages. All methods are pure functions of the history supplied
// at construction; undefined points in derived series are math.NaN().
package indicators

import (
	"math"

	"github.com/fundamenta/fundamenta/pkg/models"
)

// TradingDaysPerYear is the bar count used to annualize daily figures.
const TradingDaysPerYear = 252

// DefaultWindow is the default trailing window (~1 trading year).
const DefaultWindow = 252

// Analyzer computes indicators for one instrument. The derived return
// series are computed once at construction and never mutated; a window
// argument of 0 (or negative) means "the full history". Analyzers for
// distinct instruments share no state and may be used concurrently.
type Analyzer struct {
	history    models.PriceHistory
	closes     []float64
	returns    []float64 // simple daily returns; index 0 is NaN
	logReturns []float64 // ln(close[t]/close[t-1]); index 0 is NaN
	cumReturns []float64 // compounded return since the first bar
}

// NewAnalyzer builds an Analyzer and caches the derived series.
func NewAnalyzer(history models.PriceHistory) *Analyzer {
	a := &Analyzer{
		history: history,
		closes:  history.Closes(),
	}

	n := len(a.closes)
	a.returns = make([]float64, n)
	a.logReturns = make([]float64, n)
	a.cumReturns = make([]float64, n)

	growth := 1.0
	for i := 0; i < n; i++ {
		if i == 0 || a.closes[i-1] == 0 {
			a.returns[i] = math.NaN()
			a.logReturns[i] = math.NaN()
			a.cumReturns[i] = math.NaN()
			continue
		}
		r := a.closes[i]/a.closes[i-1] - 1
		a.returns[i] = r
		a.logReturns[i] = math.Log(a.closes[i] / a.closes[i-1])
		growth *= 1 + r
		a.cumReturns[i] = growth - 1
	}

	return a
}

// History returns the underlying price history.
func (a *Analyzer) History() models.PriceHistory { return a.history }

// Returns gives the daily simple-return series. With window > 0 it is the
// most recent window values; the oldest entry is NaN when it is the very
// first bar of the history. The result is a copy.
func (a *Analyzer) Returns(window int) []float64 {
	return tail(a.returns, window)
}

// LogReturns gives the full daily log-return series.
func (a *Analyzer) LogReturns() []float64 {
	return tail(a.logReturns, 0)
}

// CumulativeReturns gives the full compounded-return series.
func (a *Analyzer) CumulativeReturns() []float64 {
	return tail(a.cumReturns, 0)
}

// TotalReturn is close[last]/close[first] - 1 over the trailing slice.
// A window of w consumes w+1 price points so that w return observations
// are covered. Returns 0.0 with fewer than 2 bars available.
func (a *Analyzer) TotalReturn(window int) float64 {
	prices := a.closes
	if window > 0 {
		prices = tail(a.closes, window+1)
	}
	if len(prices) < 2 || prices[0] == 0 {
		return 0.0
	}
	return prices[len(prices)-1]/prices[0] - 1
}

// AnnualizedReturn compounds the total return to a 252-day year:
// (1+total)^(252/n) - 1, where n is the window, or the full bar count
// when the window is unset. Returns 0.0 when n is zero.
func (a *Analyzer) AnnualizedReturn(window int) float64 {
	total := a.TotalReturn(window)
	n := window
	if n <= 0 {
		n = a.history.Len()
	}
	if n == 0 {
		return 0.0
	}
	return math.Pow(1+total, TradingDaysPerYear/float64(n)) - 1
}

// Volatility is the sample standard deviation of the trailing window of
// daily returns, NaN entries dropped first, scaled by sqrt(252) when
// annualized. Returns 0.0 with fewer than 2 valid observations.
func (a *Analyzer) Volatility(window int, annualized bool) float64 {
	rets := dropNaN(tail(a.returns, window))
	if len(rets) < 2 {
		return 0.0
	}
	vol := stddev(rets)
	if annualized {
		vol *= math.Sqrt(TradingDaysPerYear)
	}
	return vol
}

// SharpeRatio is the excess annualized return over the risk-free rate,
// divided by the annualized volatility. riskFreeRate is a decimal
// (0.1075 = 10.75%/yr). When volatility is exactly zero the ratio
// saturates to 0.0 instead of dividing by zero.
func (a *Analyzer) SharpeRatio(riskFreeRate float64, window int) float64 {
	vol := a.Volatility(window, true)
	if vol == 0 {
		return 0.0
	}
	return (a.AnnualizedReturn(window) - riskFreeRate) / vol
}

// MaxDrawdown is the worst peak-to-trough decline over the trailing
// closing-price slice: min of (price - runningMax) / runningMax.
// Always <= 0; exactly 0 for a non-decreasing series.
func (a *Analyzer) MaxDrawdown(window int) float64 {
	prices := tail(a.closes, window)
	if len(prices) == 0 {
		return 0.0
	}

	peak := prices[0]
	worst := 0.0
	for _, p := range prices {
		if p > peak {
			peak = p
		}
		if peak > 0 {
			if dd := (p - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// MovingAverage is the simple mean of the trailing n closes at each bar.
// The first n-1 entries are NaN.
func (a *Analyzer) MovingAverage(n int) []float64 {
	size := len(a.closes)
	out := make([]float64, size)
	if n <= 0 || size < n {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	sum := 0.0
	for i := 0; i < size; i++ {
		sum += a.closes[i]
		if i < n-1 {
			out[i] = math.NaN()
			continue
		}
		if i >= n {
			sum -= a.closes[i-n]
		}
		out[i] = sum / float64(n)
	}
	return out
}

// MovingAverages computes several SMAs at once, keyed by window.
func (a *Analyzer) MovingAverages(windows ...int) map[int][]float64 {
	out := make(map[int][]float64, len(windows))
	for _, w := range windows {
		out[w] = a.MovingAverage(w)
	}
	return out
}

// Summary aggregates the headline statistics over a trailing window.
// riskFreeRate is a decimal used for the Sharpe ratio. The 52-week
// high/low are always taken over the last 252 bars regardless of window.
func (a *Analyzer) Summary(riskFreeRate float64, window int) models.SummaryStats {
	stats := models.SummaryStats{
		TotalReturn:      a.TotalReturn(window),
		AnnualizedReturn: a.AnnualizedReturn(window),
		AnnualVolatility: a.Volatility(window, true),
		SharpeRatio:      a.SharpeRatio(riskFreeRate, window),
		MaxDrawdown:      a.MaxDrawdown(window),
	}

	if last, ok := a.history.Last(); ok {
		stats.CurrentPrice = last.Close
	}

	year := tail(a.closes, DefaultWindow)
	for i, p := range year {
		if i == 0 || p > stats.High52W {
			stats.High52W = p
		}
		if i == 0 || p < stats.Low52W {
			stats.Low52W = p
		}
	}

	vols := a.history.Volumes()
	if window > 0 && window < len(vols) {
		vols = vols[len(vols)-window:]
	}
	if len(vols) > 0 {
		sum := 0.0
		for _, v := range vols {
			sum += float64(v)
		}
		stats.AvgVolume = sum / float64(len(vols))
	}

	return stats
}

// --- helpers ---

// tail returns a copy of the last window entries, or all of them when
// window <= 0 or exceeds the length.
func tail(data []float64, window int) []float64 {
	if window > 0 && window < len(data) {
		data = data[len(data)-window:]
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	return cp
}

func dropNaN(data []float64) []float64 {
	out := data[:0]
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1))
}
