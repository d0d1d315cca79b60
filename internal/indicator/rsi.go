package indicator

import (
	"errors"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// computeRSI calculates the relative strength index from simple rolling
// means of gains and losses. The first delta needs one bar of warm-up, so
// no point is emitted for the first period bars. A window with no losses
// saturates to RSI=100 rather than dividing by zero.
func computeRSI(bars []models.PriceBar, period int) ([]models.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.New("rsi: period must be positive")
	}

	closes := closeSeries(bars)
	n := len(closes)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	params := models.IndicatorParams{"period": float64(period)}.Canonical()
	points := make([]models.IndicatorPoint, 0, n)

	var gainSum, lossSum float64
	for i := 1; i < n; i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}

		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)

		rsi := 100.0
		if avgLoss != 0 {
			rs := avgGain / avgLoss
			rsi = 100.0 - 100.0/(1.0+rs)
		}

		points = append(points, models.IndicatorPoint{
			Symbol:     bars[i].Symbol,
			Date:       bars[i].Date,
			Kind:       models.KindRSI,
			Parameters: params,
			Value:      rsi,
		})
	}
	return points, nil
}
