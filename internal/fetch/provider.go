// Package fetch normalizes heterogeneous external market-data and news
// responses into the canonical record shapes. Providers are best-effort:
// a failed or malformed response surfaces as an error to the caller, which
// decides whether a fallback source can serve instead.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// PriceProvider fetches historical daily bars for a symbol.
type PriceProvider interface {
	Name() string
	FetchPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
}

// NewsProvider fetches recent news articles related to a symbol.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, lookbackDays int) ([]models.NewsArticle, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// getBody performs a GET through the optional response cache. Cached
// payloads are keyed by the full URL; a cache failure silently degrades to
// a live request.
func getBody(ctx context.Context, client *http.Client, cache *ResponseCache, url string) ([]byte, error) {
	if body, ok := cache.Get(ctx, url); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	cache.Set(ctx, url, body)
	return body, nil
}

// dateOnly truncates a timestamp to UTC date granularity.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
