package indicator

import (
	"errors"
	"math"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// computeSMA calculates the simple moving average of closing prices.
// No point is emitted for the first period-1 bars.
func computeSMA(bars []models.PriceBar, period int) ([]models.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.New("sma: period must be positive")
	}

	mean := rollingMean(closeSeries(bars), period)
	params := models.IndicatorParams{"period": float64(period)}.Canonical()

	points := make([]models.IndicatorPoint, 0, len(bars))
	for i, b := range bars {
		if math.IsNaN(mean[i]) {
			continue
		}
		points = append(points, models.IndicatorPoint{
			Symbol:     b.Symbol,
			Date:       b.Date,
			Kind:       models.KindSMA,
			Parameters: params,
			Value:      mean[i],
		})
	}
	return points, nil
}
