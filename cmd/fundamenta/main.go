// Fundamenta — fundamentalist analysis for B3 stocks.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fundamenta/fundamenta/internal/analysis/indicators"
	"github.com/fundamenta/fundamenta/internal/analysis/screener"
	"github.com/fundamenta/fundamenta/internal/analysis/valuation"
	"github.com/fundamenta/fundamenta/internal/config"
	"github.com/fundamenta/fundamenta/internal/datasource"
	"github.com/fundamenta/fundamenta/pkg/models"
	"github.com/fundamenta/fundamenta/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg    *config.Config
	agg    *datasource.Aggregator
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fundamenta",
	Short: "Fundamenta — fundamentalist analysis for B3 stocks",
	Long: `Fundamenta computes performance indicators, classical fair-price
valuations (Graham, Bazin, Gordon) and fundamental screenings for
Brazilian stocks, with data from Yahoo Finance, Fundamentus and the
Banco Central do Brasil.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = buildLogger(cfg.Logging)
		datasource.SetLogger(logger)

		agg = datasource.NewAggregator()
		agg.SetConcurrency(cfg.Fetch.ConcurrentFetches)
		if cfg.Fetch.RetryAttempts > 0 {
			agg.SetRetryPolicy(datasource.RetryPolicy{
				MaxAttempts: cfg.Fetch.RetryAttempts,
				BaseDelay:   time.Duration(cfg.Fetch.RetryBaseDelayMs) * time.Millisecond,
				MaxDelay:    5 * time.Second,
			})
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(valuationCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(screenerCmd)
	rootCmd.AddCommand(macroCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(statusCmd)
}

func buildLogger(lc config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(lc.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var l zerolog.Logger
	if lc.Format == "json" {
		l = zerolog.New(os.Stderr)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}
	return l.Level(level).With().Timestamp().Logger()
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Fundamenta %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]",
	Short: "Compute performance indicators for a stock",
	Long:  "Fetches one year of daily prices and reports returns, volatility, Sharpe ratio, drawdown and moving averages.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		window, _ := cmd.Flags().GetInt("window")
		if window == 0 {
			window = cfg.Analysis.WindowDays
		}

		ctx := cmd.Context()
		profile, err := agg.FetchProfile(ctx, ticker)
		if err != nil {
			return err
		}
		if profile.History.Len() < 2 {
			return fmt.Errorf("not enough price history for %s", ticker)
		}

		a := indicators.NewAnalyzer(profile.History)
		stats := a.Summary(riskFreeRate(ctx), window)

		fmt.Printf("📊 %s — %s\n\n", ticker, profile.Stock.Name)
		fmt.Printf("  %-22s %s\n", "Current Price:", utils.FormatBRL(stats.CurrentPrice))
		fmt.Printf("  %-22s %s\n", "52w Range:", utils.FormatBRL(stats.Low52W)+" – "+utils.FormatBRL(stats.High52W))
		fmt.Printf("  %-22s %s\n", "Total Return:", utils.FormatPercent(stats.TotalReturn))
		fmt.Printf("  %-22s %s\n", "Annualized Return:", utils.FormatPercent(stats.AnnualizedReturn))
		fmt.Printf("  %-22s %s\n", "Annual Volatility:", utils.FormatPercent(stats.AnnualVolatility))
		fmt.Printf("  %-22s %s\n", "Sharpe Ratio:", utils.FormatNumber(stats.SharpeRatio))
		fmt.Printf("  %-22s %s\n", "Max Drawdown:", utils.FormatPercent(stats.MaxDrawdown))
		fmt.Printf("  %-22s %s\n", "Avg Daily Volume:", utils.FormatNumber(stats.AvgVolume))

		mas := a.MovingAverages(20, 50, 200)
		fmt.Println("\n  Moving Averages (close):")
		for _, w := range []int{20, 50, 200} {
			series := mas[w]
			if len(series) == 0 {
				continue
			}
			fmt.Printf("    SMA %-4d %s\n", w, utils.FormatNumber(series[len(series)-1]))
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("window", 0, "return observations to analyze (default: config window_days)")
}

// --- Valuation Command ---

var valuationCmd = &cobra.Command{
	Use:   "valuation [ticker]",
	Short: "Compute fair prices with Graham, Bazin and Gordon models",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticker := utils.NormalizeTicker(args[0])
		ctx := cmd.Context()

		profile, err := agg.FetchProfile(ctx, ticker)
		if err != nil {
			return err
		}
		if profile.Fundamentals == nil {
			return fmt.Errorf("no fundamentals available for %s", ticker)
		}

		price := profile.Quote.LastPrice
		fund := profile.Fundamentals

		in := valuation.Input{
			Ticker:      ticker,
			Price:       price,
			EPS:         fund.EPS,
			BVPS:        fund.BookValue,
			DPS:         fund.DPS(price),
			RiskFreePct: riskFreeRate(ctx) * 100,
			BazinYield:  cfg.Valuation.BazinYield,
			DDMGrowth:   cfg.Valuation.DDMGrowth,
			RiskPremium: cfg.Valuation.RiskPremium,
		}

		normalize, _ := cmd.Flags().GetBool("normalize-dividends")
		if !cmd.Flags().Changed("normalize-dividends") {
			normalize = cfg.Valuation.NormalizeDividends
		}
		if normalize && in.DPS != nil {
			if dps, capped := datasource.NormalizedDPS(*in.DPS, price, fund.Sector); capped {
				fmt.Printf("ℹ️  Trailing dividend looks extraordinary; using sector-average yield instead (DPS %s → %s)\n\n",
					utils.FormatBRL(*in.DPS), utils.FormatBRL(dps))
				in.DPS = models.Float(dps)
			}
		}

		results := valuation.FullValuation(in)
		if len(results) == 0 {
			return fmt.Errorf("no valuation model applicable to %s (missing EPS, book value and dividends)", ticker)
		}

		fmt.Printf("💰 %s — Fair Price Models (current %s)\n\n", ticker, utils.FormatBRL(price))
		fmt.Printf("  %-24s %12s %10s  %s\n", "Model", "Fair Price", "Margin", "Signal")
		for _, r := range results {
			fmt.Printf("  %-24s %12s %10s  %s\n",
				r.Method,
				utils.FormatBRL(r.FairPrice),
				utils.FormatPercent(r.SafetyMargin),
				r.Recommendation)
		}
		return nil
	},
}

func init() {
	valuationCmd.Flags().Bool("normalize-dividends", false, "cap extraordinary dividends at the sector-average yield")
}

// --- Compare Command ---

var compareCmd = &cobra.Command{
	Use:   "compare [tickers...]",
	Short: "Compare performance statistics across stocks",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rf := riskFreeRate(ctx)

		analyzers := make(map[string]*indicators.Analyzer, len(args))
		to := time.Now()
		from := to.AddDate(-1, 0, 0)
		for _, arg := range args {
			ticker := utils.NormalizeTicker(arg)
			history, err := agg.Yahoo().GetHistory(ctx, ticker, from, to)
			if err != nil {
				logger.Warn().Str("ticker", ticker).Err(err).Msg("skipping ticker")
				continue
			}
			analyzers[ticker] = indicators.NewAnalyzer(history)
		}
		if len(analyzers) == 0 {
			return fmt.Errorf("no price history available for any ticker")
		}

		rows := indicators.Compare(analyzers, rf, cfg.Analysis.WindowDays)

		fmt.Printf("⚖️  Comparison (risk-free %s)\n\n", utils.FormatPercent(rf))
		fmt.Printf("  %-8s %10s %10s %10s %8s %10s\n", "Ticker", "Return", "Ann.Ret", "Vol", "Sharpe", "Drawdown")
		for _, row := range rows {
			fmt.Printf("  %-8s %10s %10s %10s %8s %10s\n",
				row.Ticker,
				utils.FormatPercent(row.Stats.TotalReturn),
				utils.FormatPercent(row.Stats.AnnualizedReturn),
				utils.FormatPercent(row.Stats.AnnualVolatility),
				utils.FormatNumber(row.Stats.SharpeRatio),
				utils.FormatPercent(row.Stats.MaxDrawdown))
		}
		return nil
	},
}

// --- Screener Command ---

var screenerCmd = &cobra.Command{
	Use:   "screener",
	Short: "Filter and rank stocks by fundamentals",
	Long: `Screens the configured universe (or the whole listed market with
--full) by fundamental criteria.

Examples:
  fundamenta screener --preset value
  fundamenta screener --preset dividend --top 5
  fundamenta screener --pl-max 10 --roe-min 0.15 --full
  fundamenta screener --sector energia --dy-min 0.06`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		full, _ := cmd.Flags().GetBool("full")
		var rows []models.ScreenerRow
		var err error
		if full {
			rows, err = agg.FetchFullUniverse(ctx)
		} else {
			rows, err = agg.FetchUniverse(ctx, cfg.Universe.Tickers)
		}
		if err != nil {
			return err
		}

		s := screener.New(rows)
		top, _ := cmd.Flags().GetInt("top")

		preset, _ := cmd.Flags().GetString("preset")
		var result []models.ScreenerRow
		switch preset {
		case "value":
			result, err = s.ValueStocks(top)
		case "dividend":
			result, err = s.DividendStocks(top)
		case "quality":
			result, err = s.QualityStocks(top)
		case "":
			var preds []screener.Predicate
			if v, _ := cmd.Flags().GetFloat64("pl-max"); v > 0 {
				preds = append(preds, screener.Gt("pl", 0), screener.Max("pl", v))
			}
			if v, _ := cmd.Flags().GetFloat64("pvp-max"); v > 0 {
				preds = append(preds, screener.Gt("pvp", 0), screener.Max("pvp", v))
			}
			if v, _ := cmd.Flags().GetFloat64("dy-min"); v > 0 {
				preds = append(preds, screener.Min("dy", v))
			}
			if v, _ := cmd.Flags().GetFloat64("roe-min"); v > 0 {
				preds = append(preds, screener.Min("roe", v))
			}
			if sector, _ := cmd.Flags().GetString("sector"); sector != "" {
				preds = append(preds, screener.SectorContains(sector))
			}
			result, err = s.Filter(preds...)
			if err == nil && top > 0 && len(result) > top {
				result = result[:top]
			}
		default:
			return fmt.Errorf("unknown preset %q (value, dividend, quality)", preset)
		}
		if err != nil {
			return err
		}
		if len(result) == 0 {
			fmt.Println("No stocks matched the criteria.")
			return nil
		}

		fmt.Printf("🔎 Screener — %d match(es)\n\n", len(result))
		fmt.Printf("  %-8s %10s %8s %8s %8s %8s\n", "Ticker", "Price", "P/L", "P/VP", "DY", "ROE")
		for _, r := range result {
			fmt.Printf("  %-8s %10s %8s %8s %8s %8s\n",
				r.Ticker,
				utils.FormatBRL(r.Price),
				fmtField(r.Fund.PE, false),
				fmtField(r.Fund.PB, false),
				fmtField(r.Fund.DividendYield, true),
				fmtField(r.Fund.ROE, true))
		}
		return nil
	},
}

func init() {
	screenerCmd.Flags().String("preset", "", "preset screen: value, dividend or quality")
	screenerCmd.Flags().Int("top", 10, "maximum results")
	screenerCmd.Flags().Bool("full", false, "screen the whole listed market via Fundamentus")
	screenerCmd.Flags().Float64("pl-max", 0, "maximum P/E (positive earnings implied)")
	screenerCmd.Flags().Float64("pvp-max", 0, "maximum P/B")
	screenerCmd.Flags().Float64("dy-min", 0, "minimum dividend yield (decimal, 0.06 = 6%)")
	screenerCmd.Flags().Float64("roe-min", 0, "minimum ROE (decimal)")
	screenerCmd.Flags().String("sector", "", "sector substring filter")
}

// --- Macro Command ---

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Show Brazilian macroeconomic indicators",
	RunE: func(cmd *cobra.Command, args []string) error {
		macro := agg.FetchMacro(cmd.Context())

		fmt.Println("🏦 Macro Indicators (Banco Central do Brasil)")
		fmt.Println()
		printRate := func(name string, v *float64, suffix string) {
			if v == nil {
				fmt.Printf("  %-12s unavailable\n", name+":")
				return
			}
			fmt.Printf("  %-12s %s%s\n", name+":", utils.FormatNumber(*v), suffix)
		}
		printRate("SELIC", macro.Selic, "% a.a.")
		printRate("CDI", macro.CDI, "% a.a.")
		printRate("IPCA 12m", macro.IPCA12M, "%")
		printRate("USD/BRL", macro.USDBRL, "")
		fmt.Printf("\n  fetched at %s\n", macro.FetchedAt.In(utils.BRT).Format("02/01/2006 15:04"))
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [ticker]",
	Short: "Show market headlines, optionally filtered by ticker",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		ctx := cmd.Context()

		var items []models.NewsItem
		var err error
		if len(args) == 1 {
			items, err = agg.FetchStockNews(ctx, args[0], limit)
		} else {
			items, err = agg.FetchMarketNews(ctx, limit)
		}
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No headlines found.")
			return nil
		}

		fmt.Println("📰 Headlines")
		for _, item := range items {
			fmt.Printf("\n  [%s] %s\n  %s\n", item.Source, item.Title, item.Link)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "maximum headlines")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  Fundamenta — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus())
		fmt.Printf("  Time (BRT):    %s\n", utils.NowBRT().Format("02/01/2006 15:04"))
		fmt.Println()
		fmt.Println("  Configuration:")
		fmt.Printf("    Universe:      %d tickers\n", len(cfg.Universe.Tickers))
		fmt.Printf("    Window:        %d trading days\n", cfg.Analysis.WindowDays)
		fmt.Printf("    Bazin Yield:   %s\n", utils.FormatPercent(cfg.Valuation.BazinYield))
		fmt.Printf("    Concurrency:   %d\n", cfg.Fetch.ConcurrentFetches)
		fmt.Printf("    Log Level:     %s\n", cfg.Logging.Level)
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Helpers ---

// riskFreeRate returns the current SELIC as a decimal, falling back to
// the configured rate when the central bank is unreachable.
func riskFreeRate(ctx context.Context) float64 {
	if selic, err := agg.BCB().GetSelic(ctx); err == nil {
		return selic / 100
	}
	logger.Warn().Msg("SELIC unavailable, using configured risk-free rate")
	return cfg.Analysis.RiskFreeRate
}

func fmtField(v *float64, percent bool) string {
	if v == nil {
		return "-"
	}
	if percent {
		return utils.FormatPercent(*v)
	}
	return utils.FormatNumber(*v)
}
