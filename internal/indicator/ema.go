package indicator

import (
	"errors"
	"math"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// computeEMA calculates the exponential moving average of closing prices.
// The recurrence is seeded with the first close, so a point is emitted for
// every bar from the first onward.
func computeEMA(bars []models.PriceBar, period int) ([]models.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.New("ema: period must be positive")
	}

	ema := ewma(closeSeries(bars), period)
	params := models.IndicatorParams{"period": float64(period)}.Canonical()

	points := make([]models.IndicatorPoint, 0, len(bars))
	for i, b := range bars {
		if math.IsNaN(ema[i]) {
			continue
		}
		points = append(points, models.IndicatorPoint{
			Symbol:     b.Symbol,
			Date:       b.Date,
			Kind:       models.KindEMA,
			Parameters: params,
			Value:      ema[i],
		})
	}
	return points, nil
}
