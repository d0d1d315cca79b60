package fetch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// PriceChain tries each configured price provider in order and returns the
// first non-empty result. Individual provider failures are logged and
// degrade to the next source; only when every source comes back empty does
// the chain report no data.
type PriceChain struct {
	providers []PriceProvider
	log       *zap.Logger
}

// NewPriceChain creates a provider chain in priority order.
func NewPriceChain(log *zap.Logger, providers ...PriceProvider) *PriceChain {
	if log == nil {
		log = zap.NewNop()
	}
	return &PriceChain{providers: providers, log: log}
}

func (c *PriceChain) Name() string { return "chain" }

// FetchPriceHistory implements PriceProvider over the chain.
func (c *PriceChain) FetchPriceHistory(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	var lastErr error
	for _, p := range c.providers {
		bars, err := p.FetchPriceHistory(ctx, symbol, start, end)
		if err != nil {
			c.log.Warn("price provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("symbol", symbol),
				zap.Error(err))
			lastErr = err
			continue
		}
		if len(bars) > 0 {
			return bars, nil
		}
		c.log.Warn("price provider returned no data, trying next",
			zap.String("provider", p.Name()),
			zap.String("symbol", symbol))
	}
	return nil, lastErr
}
