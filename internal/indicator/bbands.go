package indicator

import (
	"errors"
	"math"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// computeBollingerBands calculates the middle band (SMA), and upper/lower
// bands offset by stdDev multiples of the rolling sample standard deviation
// over the same window. No point is emitted until the window has filled.
func computeBollingerBands(bars []models.PriceBar, period int, stdDev float64) ([]models.IndicatorPoint, error) {
	if period <= 0 {
		return nil, errors.New("bbands: period must be positive")
	}

	closes := closeSeries(bars)
	middle := rollingMean(closes, period)
	std := rollingStd(closes, period)

	params := models.IndicatorParams{
		"period":  float64(period),
		"std_dev": stdDev,
	}.Canonical()

	points := make([]models.IndicatorPoint, 0, len(bars))
	for i, b := range bars {
		upper := middle[i] + stdDev*std[i]
		lower := middle[i] - stdDev*std[i]
		if math.IsNaN(middle[i]) || math.IsNaN(upper) || math.IsNaN(lower) {
			continue
		}
		points = append(points, models.IndicatorPoint{
			Symbol:     b.Symbol,
			Date:       b.Date,
			Kind:       models.KindBBANDS,
			Parameters: params,
			Value:      middle[i],
			Upper:      upper,
			Lower:      lower,
		})
	}
	return points, nil
}
