package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

const defaultGoogleNewsBaseURL = "https://news.google.com"

// GoogleNewsClient scrapes the Google News RSS feed as a secondary news
// source when the primary API under-fills.
type GoogleNewsClient struct {
	BaseURL     string
	MaxArticles int
	client      *http.Client
	cache       *ResponseCache
	log         *zap.Logger
}

// NewGoogleNewsClient creates the RSS fallback news provider.
func NewGoogleNewsClient(cache *ResponseCache, log *zap.Logger) *GoogleNewsClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &GoogleNewsClient{
		BaseURL:     defaultGoogleNewsBaseURL,
		MaxArticles: 10,
		client:      newHTTPClient(),
		cache:       cache,
		log:         log,
	}
}

func (c *GoogleNewsClient) Name() string { return "googlenews" }

type rssFeed struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

// FetchNews retrieves up to MaxArticles recent articles mentioning the
// symbol.
func (c *GoogleNewsClient) FetchNews(ctx context.Context, symbol string, lookbackDays int) ([]models.NewsArticle, error) {
	u := fmt.Sprintf("%s/rss/search?q=%s+stock&hl=en-US&gl=US&ceid=US:en",
		c.BaseURL, url.QueryEscape(symbol))

	body, err := getBody(ctx, c.client, c.cache, u)
	if err != nil {
		return nil, fmt.Errorf("google news fetch for %s: %w", symbol, err)
	}

	var feed rssFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("google news parse: %w", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -lookbackDays)
	var articles []models.NewsArticle
	for _, item := range feed.Channel.Items {
		if len(articles) >= c.MaxArticles {
			break
		}

		published := parsePubDate(item.PubDate)
		if !published.IsZero() && published.Before(cutoff) {
			continue
		}
		if published.IsZero() {
			published = time.Now().UTC()
		}

		articles = append(articles, models.NewsArticle{
			Title:       cleanTitle(item.Title),
			Source:      extractSource(item.Title),
			URL:         item.Link,
			PublishedAt: published,
			Content:     stripHTML(item.Description),
			Symbols:     symbol,
		})
	}

	return articles, nil
}

func parsePubDate(s string) time.Time {
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Google News titles carry the source as a " - Publisher" suffix.
func cleanTitle(title string) string {
	if idx := strings.LastIndex(title, " - "); idx > 0 {
		return strings.TrimSpace(title[:idx])
	}
	return title
}

func extractSource(title string) string {
	if idx := strings.LastIndex(title, " - "); idx >= 0 && idx < len(title)-3 {
		if source := strings.TrimSpace(title[idx+3:]); source != "" {
			return source
		}
	}
	return "Google News"
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
