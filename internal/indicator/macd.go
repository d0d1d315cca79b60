package indicator

import (
	"errors"
	"math"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// computeMACD calculates the MACD line (fast EMA minus slow EMA), its signal
// line (an EMA of the MACD line), and the histogram (MACD minus signal).
// All three EMAs use the same first-value seeding, so every bar produces a
// point.
func computeMACD(bars []models.PriceBar, fast, slow, signalPeriod int) ([]models.IndicatorPoint, error) {
	if fast <= 0 || slow <= 0 || signalPeriod <= 0 {
		return nil, errors.New("macd: all periods must be positive")
	}

	closes := closeSeries(bars)
	fastEMA := ewma(closes, fast)
	slowEMA := ewma(closes, slow)

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signal := ewma(macd, signalPeriod)

	params := models.IndicatorParams{
		"fast_period":   float64(fast),
		"slow_period":   float64(slow),
		"signal_period": float64(signalPeriod),
	}.Canonical()

	points := make([]models.IndicatorPoint, 0, len(bars))
	for i, b := range bars {
		hist := macd[i] - signal[i]
		if math.IsNaN(macd[i]) || math.IsNaN(signal[i]) || math.IsNaN(hist) {
			continue
		}
		points = append(points, models.IndicatorPoint{
			Symbol:     b.Symbol,
			Date:       b.Date,
			Kind:       models.KindMACD,
			Parameters: params,
			Value:      macd[i],
			Signal:     signal[i],
			Histogram:  hist,
		})
	}
	return points, nil
}
