package datasource

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/fundamenta/fundamenta/pkg/models"
	"github.com/fundamenta/fundamenta/pkg/utils"
)

// NewsSource is one Brazilian financial news RSS feed.
type NewsSource struct {
	Name   string
	RSSURL string
}

// DefaultNewsSources lists the configured Brazilian financial news feeds.
var DefaultNewsSources = []NewsSource{
	{Name: "InfoMoney", RSSURL: "https://www.infomoney.com.br/feed/"},
	{Name: "Money Times", RSSURL: "https://www.moneytimes.com.br/feed/"},
	{Name: "Suno Notícias", RSSURL: "https://www.suno.com.br/noticias/feed/"},
	{Name: "Exame Invest", RSSURL: "https://exame.com/invest/feed/"},
}

// News fetches market headlines from Brazilian RSS feeds.
type News struct {
	sources []NewsSource
	cache   *Cache
	limiter *RateLimiter
	parser  *gofeed.Parser
}

// NewNews creates a news client with the default Brazilian sources.
func NewNews() *News {
	return NewNewsWithSources(DefaultNewsSources)
}

// NewNewsWithSources creates a news client with custom sources.
func NewNewsWithSources(sources []NewsSource) *News {
	return &News{
		sources: sources,
		cache:   NewCache(10 * time.Minute),
		limiter: NewRateLimiter(2, time.Second),
		parser:  gofeed.NewParser(),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Notícias B3" }

// GetMarketNews returns recent headlines from every configured source,
// newest first. Sources that fail are skipped, not fatal.
func (n *News) GetMarketNews(ctx context.Context, limit int) ([]models.NewsItem, error) {
	cacheKey := fmt.Sprintf("news:market:%d", limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem), nil
	}

	var items []models.NewsItem
	for _, src := range n.sources {
		fetched, err := n.fetchRSS(ctx, src)
		if err != nil {
			logger.Warn().Str("source", src.Name).Err(err).Msg("news feed failed")
			continue
		}
		items = append(items, fetched...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	n.cache.Set(cacheKey, items)
	return items, nil
}

// GetStockNews returns headlines mentioning a specific ticker or the
// company behind it.
func (n *News) GetStockNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error) {
	symbol := utils.NormalizeTicker(ticker)

	cacheKey := fmt.Sprintf("news:stock:%s:%d", symbol, limit)
	if cached, ok := n.cache.Get(cacheKey); ok {
		return cached.([]models.NewsItem), nil
	}

	all, err := n.GetMarketNews(ctx, 0)
	if err != nil {
		return nil, err
	}

	keywords := tickerKeywords(symbol)
	var filtered []models.NewsItem
	for _, item := range all {
		if matchesAny(item.Title, keywords) {
			filtered = append(filtered, item)
		}
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}

	n.cache.Set(cacheKey, filtered)
	return filtered, nil
}

// --- Internal helpers ---

func (n *News) fetchRSS(ctx context.Context, src NewsSource) ([]models.NewsItem, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := n.parser.ParseURLWithContext(src.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		ni := models.NewsItem{
			Title:  cleanHTML(item.Title),
			Link:   item.Link,
			Source: src.Name,
		}
		if item.PublishedParsed != nil {
			ni.PublishedAt = *item.PublishedParsed
		}
		items = append(items, ni)
	}

	return items, nil
}

// cleanHTML strips markup some feeds leak into titles.
func cleanHTML(s string) string {
	if !strings.Contains(s, "<") && !strings.Contains(s, "&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}

// tickerKeywords returns search terms for a ticker: the ticker itself
// plus the company names the headlines actually use.
// For example, "PETR4" → ["petr4", "petrobras"].
func tickerKeywords(ticker string) []string {
	t := strings.ToLower(ticker)
	keywords := []string{t}

	nameMap := map[string][]string{
		"petr4": {"petrobras"},
		"petr3": {"petrobras"},
		"vale3": {"vale"},
		"itub4": {"itaú", "itau unibanco"},
		"bbdc4": {"bradesco"},
		"bbas3": {"banco do brasil"},
		"abev3": {"ambev"},
		"wege3": {"weg"},
		"mglu3": {"magazine luiza", "magalu"},
		"b3sa3": {"b3"},
		"rent3": {"localiza"},
		"suzb3": {"suzano"},
		"ggbr4": {"gerdau"},
		"elet3": {"eletrobras"},
		"itsa4": {"itaúsa", "itausa"},
		"prio3": {"prio", "petrorio"},
		"radl3": {"raia drogasil"},
		"taee11": {"taesa"},
	}

	if extra, ok := nameMap[t]; ok {
		keywords = append(keywords, extra...)
	}

	return keywords
}

// matchesAny checks if text contains any of the keywords (case-insensitive).
func matchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
