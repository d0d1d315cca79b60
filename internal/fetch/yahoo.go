package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches daily bars from the Yahoo Finance chart API.
type YahooClient struct {
	BaseURL string
	client  *http.Client
	cache   *ResponseCache
	log     *zap.Logger
}

// NewYahooClient creates a Yahoo Finance price provider.
func NewYahooClient(cache *ResponseCache, log *zap.Logger) *YahooClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &YahooClient{
		BaseURL: defaultYahooBaseURL,
		client:  newHTTPClient(),
		cache:   cache,
		log:     log,
	}
}

func (c *YahooClient) Name() string { return "yahoo" }

// yahooChart is the response structure of the chart API. OHLC arrays hold
// nulls for non-trading days, hence interface{} elements.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// quoteValue extracts one numeric quote element. Null elements (non-trading
// days, padded arrays) report ok=false.
func quoteValue(v interface{}) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}

// FetchPriceHistory retrieves daily bars for [start, end].
func (c *YahooClient) FetchPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.BaseURL, url.PathEscape(symbol), start.Unix(), end.AddDate(0, 0, 1).Unix())

	body, err := getBody(ctx, c.client, c.cache, u)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch for %s: %w", symbol, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		c.log.Warn("no data returned from yahoo", zap.String("symbol", symbol))
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	// A truncated quote array must not take down the request; bound the
	// walk by the shortest array.
	n := len(result.Timestamp)
	for _, arr := range [][]interface{}{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(arr) < n {
			n = len(arr)
		}
	}

	bars := make([]models.PriceBar, 0, n)
	for i := 0; i < n; i++ {
		o, okO := quoteValue(quote.Open[i])
		h, okH := quoteValue(quote.High[i])
		l, okL := quoteValue(quote.Low[i])
		cl, okC := quoteValue(quote.Close[i])
		if !okO || !okH || !okL || !okC {
			continue // null bar (holiday etc.)
		}
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue
		}
		bars = append(bars, models.PriceBar{
			Symbol: symbol,
			Date:   dateOnly(time.Unix(result.Timestamp[i], 0)),
			Open:   decimal.NewFromFloat(o),
			High:   decimal.NewFromFloat(h),
			Low:    decimal.NewFromFloat(l),
			Close:  decimal.NewFromFloat(cl),
			Volume: int64(toFloat(quote.Volume[i])),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}
