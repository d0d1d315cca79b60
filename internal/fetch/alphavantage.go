package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// AlphaVantageClient fetches daily price series and news from the
// Alpha Vantage API. It serves as the fallback price source and the
// primary news source.
type AlphaVantageClient struct {
	BaseURL string
	apiKey  string
	client  *http.Client
	cache   *ResponseCache
	log     *zap.Logger
}

// NewAlphaVantageClient creates an Alpha Vantage provider.
func NewAlphaVantageClient(apiKey string, cache *ResponseCache, log *zap.Logger) *AlphaVantageClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &AlphaVantageClient{
		BaseURL: defaultAlphaVantageBaseURL,
		apiKey:  apiKey,
		client:  newHTTPClient(),
		cache:   cache,
		log:     log,
	}
}

func (c *AlphaVantageClient) Name() string { return "alphavantage" }

type avDailyResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// FetchPriceHistory retrieves the full daily series and trims it to
// [start, end].
func (c *AlphaVantageClient) FetchPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	u := fmt.Sprintf("%s/query?function=TIME_SERIES_DAILY&symbol=%s&outputsize=full&apikey=%s",
		c.BaseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	body, err := getBody(ctx, c.client, c.cache, u)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage fetch for %s: %w", symbol, err)
	}

	var resp avDailyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("alpha vantage decode: %w", err)
	}
	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("alpha vantage api error: %s", resp.ErrorMessage)
	}
	if resp.TimeSeries == nil {
		return nil, fmt.Errorf("alpha vantage: unexpected response format")
	}

	start = dateOnly(start)
	end = dateOnly(end)
	bars := make([]models.PriceBar, 0, len(resp.TimeSeries))
	for dateStr, values := range resp.TimeSeries {
		date, err := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
		if err != nil {
			c.log.Warn("skipping malformed date in alpha vantage series",
				zap.String("date", dateStr), zap.Error(err))
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}

		bar, err := parseAVBar(symbol, date, values)
		if err != nil {
			c.log.Warn("skipping malformed alpha vantage bar",
				zap.String("date", dateStr), zap.Error(err))
			continue
		}
		bars = append(bars, bar)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

func parseAVBar(symbol string, date time.Time, values map[string]string) (models.PriceBar, error) {
	open, err := decimal.NewFromString(values["1. open"])
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad open: %w", err)
	}
	high, err := decimal.NewFromString(values["2. high"])
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad high: %w", err)
	}
	low, err := decimal.NewFromString(values["3. low"])
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad low: %w", err)
	}
	cl, err := decimal.NewFromString(values["4. close"])
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad close: %w", err)
	}
	volume, err := strconv.ParseInt(values["5. volume"], 10, 64)
	if err != nil {
		return models.PriceBar{}, fmt.Errorf("bad volume: %w", err)
	}

	return models.PriceBar{
		Symbol: symbol,
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cl,
		Volume: volume,
	}, nil
}

type avNewsResponse struct {
	Feed []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		TimePublished string `json:"time_published"`
		Summary       string `json:"summary"`
		Source        string `json:"source"`
	} `json:"feed"`
}

// FetchNews retrieves news articles for the symbol published within the
// lookback window.
func (c *AlphaVantageClient) FetchNews(ctx context.Context, symbol string, lookbackDays int) ([]models.NewsArticle, error) {
	u := fmt.Sprintf("%s/query?function=NEWS_SENTIMENT&tickers=%s&limit=50&apikey=%s",
		c.BaseURL, url.QueryEscape(symbol), url.QueryEscape(c.apiKey))

	body, err := getBody(ctx, c.client, c.cache, u)
	if err != nil {
		return nil, fmt.Errorf("alpha vantage news fetch for %s: %w", symbol, err)
	}

	var resp avNewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("alpha vantage news decode: %w", err)
	}
	if resp.Feed == nil {
		return nil, fmt.Errorf("alpha vantage news: unexpected response format")
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	var articles []models.NewsArticle
	for _, item := range resp.Feed {
		published, err := parseAVTimestamp(item.TimePublished)
		if err != nil {
			c.log.Warn("skipping article with malformed timestamp",
				zap.String("time_published", item.TimePublished), zap.Error(err))
			continue
		}
		if published.Before(cutoff) {
			continue
		}

		source := item.Source
		if source == "" {
			source = "Alpha Vantage"
		}
		articles = append(articles, models.NewsArticle{
			Title:       item.Title,
			Source:      source,
			URL:         item.URL,
			PublishedAt: published,
			Content:     item.Summary,
			Symbols:     symbol,
		})
	}

	return articles, nil
}

// parseAVTimestamp parses the compact "20240115T093000" format, tolerating
// a trailing timezone suffix.
func parseAVTimestamp(s string) (time.Time, error) {
	if len(s) > 15 {
		s = s[:15]
	}
	s = strings.TrimSpace(s)
	return time.ParseInLocation("20060102T150405", s, time.UTC)
}
