package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

func TestAlphaVantagePriceHistory(t *testing.T) {
	t.Run("parses and sorts daily series", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Query().Get("function"), "TIME_SERIES_DAILY")
			fmt.Fprint(w, `{
				"Time Series (Daily)": {
					"2024-01-16": {"1. open": "101.0", "2. high": "103.0", "3. low": "100.0", "4. close": "102.5", "5. volume": "2000"},
					"2024-01-15": {"1. open": "100.0", "2. high": "102.0", "3. low": "99.0", "4. close": "101.0", "5. volume": "1000"}
				}
			}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient("demo", nil, nil)
		client.BaseURL = server.URL

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		bars, err := client.FetchPriceHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, bars, 2)
		assert.Equal(t, "2024-01-15", bars[0].DateKey())
		assert.Equal(t, "2024-01-16", bars[1].DateKey())
		assert.Equal(t, "101", bars[0].Close.String())
		assert.Equal(t, int64(1000), bars[0].Volume)
	})

	t.Run("filters outside the requested range", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"Time Series (Daily)": {
					"2023-12-01": {"1. open": "90", "2. high": "91", "3. low": "89", "4. close": "90.5", "5. volume": "500"},
					"2024-01-15": {"1. open": "100", "2. high": "102", "3. low": "99", "4. close": "101", "5. volume": "1000"}
				}
			}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient("demo", nil, nil)
		client.BaseURL = server.URL

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		bars, err := client.FetchPriceHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, "2024-01-15", bars[0].DateKey())
	})

	t.Run("api error surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Error Message": "Invalid API call"}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient("demo", nil, nil)
		client.BaseURL = server.URL

		_, err := client.FetchPriceHistory(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
		assert.Error(t, err)
	})

	t.Run("malformed bar skipped, rest parsed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"Time Series (Daily)": {
					"2024-01-15": {"1. open": "not-a-number", "2. high": "102", "3. low": "99", "4. close": "101", "5. volume": "1000"},
					"2024-01-16": {"1. open": "101", "2. high": "103", "3. low": "100", "4. close": "102.5", "5. volume": "2000"}
				}
			}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient("demo", nil, nil)
		client.BaseURL = server.URL

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		bars, err := client.FetchPriceHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, "2024-01-16", bars[0].DateKey())
	})
}

func TestAlphaVantageNews(t *testing.T) {
	t.Run("parses feed within lookback window", func(t *testing.T) {
		recent := time.Now().UTC().Add(-2 * time.Hour).Format("20060102T150405")
		stale := time.Now().UTC().AddDate(0, 0, -30).Format("20060102T150405")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{
				"feed": [
					{"title": "AAPL beats estimates", "url": "https://example.com/1", "time_published": "%s", "summary": "Strong quarter.", "source": "Newswire"},
					{"title": "Old news", "url": "https://example.com/2", "time_published": "%s", "summary": "Stale.", "source": ""}
				]
			}`, recent, stale)
		}))
		defer server.Close()

		client := NewAlphaVantageClient("demo", nil, nil)
		client.BaseURL = server.URL

		articles, err := client.FetchNews(context.Background(), "AAPL", 7)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "AAPL beats estimates", articles[0].Title)
		assert.Equal(t, "Newswire", articles[0].Source)
		assert.Equal(t, "AAPL", articles[0].Symbols)
	})

	t.Run("missing feed key is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Information": "rate limited"}`)
		}))
		defer server.Close()

		client := NewAlphaVantageClient("demo", nil, nil)
		client.BaseURL = server.URL

		_, err := client.FetchNews(context.Background(), "AAPL", 7)
		assert.Error(t, err)
	})
}

func TestYahooPriceHistory(t *testing.T) {
	t.Run("parses chart response and skips null bars", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"chart": {
					"result": [{
						"timestamp": [1705276800, 1705363200],
						"indicators": {"quote": [{
							"open":   [100.0, null],
							"high":   [102.0, null],
							"low":    [99.0, null],
							"close":  [101.0, null],
							"volume": [1000, null]
						}]}
					}]
				}
			}`)
		}))
		defer server.Close()

		client := NewYahooClient(nil, nil)
		client.BaseURL = server.URL

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		bars, err := client.FetchPriceHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, "101", bars[0].Close.String())
		assert.Equal(t, int64(1000), bars[0].Volume)
	})

	t.Run("truncated quote arrays parse what they can", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"chart": {
					"result": [{
						"timestamp": [1705276800, 1705363200],
						"indicators": {"quote": [{
							"open":   [100.0],
							"high":   [102.0, 103.0],
							"low":    [99.0, 100.0],
							"close":  [101.0, 102.0],
							"volume": [1000]
						}]}
					}]
				}
			}`)
		}))
		defer server.Close()

		client := NewYahooClient(nil, nil)
		client.BaseURL = server.URL

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		bars, err := client.FetchPriceHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, "101", bars[0].Close.String())
	})

	t.Run("bar with a partially null quote is skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"chart": {
					"result": [{
						"timestamp": [1705276800, 1705363200],
						"indicators": {"quote": [{
							"open":   [null, 101.0],
							"high":   [102.0, 103.0],
							"low":    [99.0, 100.0],
							"close":  [101.0, 102.5],
							"volume": [1000, 2000]
						}]}
					}]
				}
			}`)
		}))
		defer server.Close()

		client := NewYahooClient(nil, nil)
		client.BaseURL = server.URL

		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		bars, err := client.FetchPriceHistory(context.Background(), "AAPL", start, end)
		require.NoError(t, err)
		require.Len(t, bars, 1)
		assert.Equal(t, "102.5", bars[0].Close.String())
	})

	t.Run("api error surfaces as error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found"}}}`)
		}))
		defer server.Close()

		client := NewYahooClient(nil, nil)
		client.BaseURL = server.URL

		_, err := client.FetchPriceHistory(context.Background(), "NOPE", time.Now().AddDate(0, -1, 0), time.Now())
		assert.Error(t, err)
	})
}

func TestGoogleNewsFeed(t *testing.T) {
	t.Run("parses RSS items", func(t *testing.T) {
		pubDate := time.Now().UTC().Add(-3 * time.Hour).Format(time.RFC1123Z)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<?xml version="1.0"?>
				<rss><channel>
					<item>
						<title>Apple hits new high - MarketWatch</title>
						<link>https://example.com/article</link>
						<pubDate>%s</pubDate>
						<description>&lt;b&gt;Shares rallied&lt;/b&gt; today.</description>
					</item>
				</channel></rss>`, pubDate)
		}))
		defer server.Close()

		client := NewGoogleNewsClient(nil, nil)
		client.BaseURL = server.URL

		articles, err := client.FetchNews(context.Background(), "AAPL", 7)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "Apple hits new high", articles[0].Title)
		assert.Equal(t, "MarketWatch", articles[0].Source)
		assert.Equal(t, "Shares rallied today.", articles[0].Content)
		assert.Equal(t, "AAPL", articles[0].Symbols)
	})
}

type stubPriceProvider struct {
	name string
	bars []models.PriceBar
	err  error
}

func (s *stubPriceProvider) Name() string { return s.name }
func (s *stubPriceProvider) FetchPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	return s.bars, s.err
}

func TestPriceChain(t *testing.T) {
	ctx := context.Background()
	window := time.Now()

	t.Run("falls through to the next provider on failure", func(t *testing.T) {
		bar := models.PriceBar{Symbol: "AAPL"}
		chain := NewPriceChain(nil,
			&stubPriceProvider{name: "first", err: errors.New("boom")},
			&stubPriceProvider{name: "second", bars: []models.PriceBar{bar}},
		)

		bars, err := chain.FetchPriceHistory(ctx, "AAPL", window, window)
		require.NoError(t, err)
		assert.Len(t, bars, 1)
	})

	t.Run("empty result also falls through", func(t *testing.T) {
		bar := models.PriceBar{Symbol: "AAPL"}
		chain := NewPriceChain(nil,
			&stubPriceProvider{name: "first"},
			&stubPriceProvider{name: "second", bars: []models.PriceBar{bar}},
		)

		bars, err := chain.FetchPriceHistory(ctx, "AAPL", window, window)
		require.NoError(t, err)
		assert.Len(t, bars, 1)
	})

	t.Run("all sources failing returns the last error", func(t *testing.T) {
		chain := NewPriceChain(nil,
			&stubPriceProvider{name: "first", err: errors.New("first down")},
			&stubPriceProvider{name: "second", err: errors.New("second down")},
		)

		bars, err := chain.FetchPriceHistory(ctx, "AAPL", window, window)
		assert.Error(t, err)
		assert.Empty(t, bars)
	})

	t.Run("all sources empty returns no data and no error", func(t *testing.T) {
		chain := NewPriceChain(nil,
			&stubPriceProvider{name: "first"},
			&stubPriceProvider{name: "second"},
		)

		bars, err := chain.FetchPriceHistory(ctx, "AAPL", window, window)
		require.NoError(t, err)
		assert.Empty(t, bars)
	})
}
