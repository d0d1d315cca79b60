package report

import (
	"fmt"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// movingAverageInsight describes the recent trend of an SMA/EMA series by
// comparing the first and last of its most recent five points.
func movingAverageInsight(symbol string, kind models.IndicatorKind, points []models.IndicatorPoint) string {
	if len(points) == 0 {
		return fmt.Sprintf("Insufficient data to generate %s insights for %s.", kind, symbol)
	}

	recent := points
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	if len(recent) < 2 {
		return fmt.Sprintf("Recent %s data is available for %s.", kind, symbol)
	}

	first := recent[0].Value
	last := recent[len(recent)-1].Value
	switch {
	case last > first && first != 0:
		change := (last - first) / first * 100
		return fmt.Sprintf("%s for %s is in an uptrend, increasing by %.2f%% over the last %d periods.",
			kind, symbol, change, len(recent))
	case last < first && first != 0:
		change := (first - last) / first * 100
		return fmt.Sprintf("%s for %s is in a downtrend, decreasing by %.2f%% over the last %d periods.",
			kind, symbol, change, len(recent))
	default:
		return fmt.Sprintf("%s for %s has remained flat recently.", kind, symbol)
	}
}

// rsiInsight classifies the most recent RSI value.
func rsiInsight(symbol string, points []models.IndicatorPoint) string {
	if len(points) == 0 {
		return fmt.Sprintf("Insufficient data to generate RSI insights for %s.", symbol)
	}

	latest := points[len(points)-1].Value
	switch {
	case latest > rsiOverbought:
		return fmt.Sprintf("RSI for %s is currently at %.2f, indicating an overbought condition. Consider watching for potential reversal signals.", symbol, latest)
	case latest < rsiOversold:
		return fmt.Sprintf("RSI for %s is currently at %.2f, indicating an oversold condition. Consider watching for potential recovery signals.", symbol, latest)
	case latest > 50:
		return fmt.Sprintf("RSI for %s is currently at %.2f, showing moderate positive momentum.", symbol, latest)
	default:
		return fmt.Sprintf("RSI for %s is currently at %.2f, showing moderate negative momentum.", symbol, latest)
	}
}

// macdInsight detects signal-line crossovers in the last two MACD points.
func macdInsight(symbol string, points []models.IndicatorPoint) string {
	if len(points) < 2 {
		return fmt.Sprintf("Insufficient data to generate MACD insights for %s.", symbol)
	}

	current := points[len(points)-1]
	previous := points[len(points)-2]
	switch {
	case current.Value > current.Signal && previous.Value <= previous.Signal:
		return fmt.Sprintf("MACD for %s recently crossed above the signal line, indicating a potential bullish trend is forming.", symbol)
	case current.Value < current.Signal && previous.Value >= previous.Signal:
		return fmt.Sprintf("MACD for %s recently crossed below the signal line, indicating a potential bearish trend is forming.", symbol)
	case current.Value > 0 && current.Signal > 0:
		return fmt.Sprintf("MACD and signal line for %s are both positive, suggesting continued upward momentum.", symbol)
	case current.Value < 0 && current.Signal < 0:
		return fmt.Sprintf("MACD and signal line for %s are both negative, suggesting continued downward momentum.", symbol)
	default:
		return fmt.Sprintf("MACD for %s is at %.2f with signal line at %.2f.", symbol, current.Value, current.Signal)
	}
}

// bollingerInsight interprets the current band width as volatility.
func bollingerInsight(symbol string, points []models.IndicatorPoint) string {
	if len(points) == 0 {
		return fmt.Sprintf("Insufficient data to generate Bollinger Bands insights for %s.", symbol)
	}

	recent := points[len(points)-1]
	if recent.Value == 0 {
		return fmt.Sprintf("Bollinger Bands analysis available for %s.", symbol)
	}

	bandwidth := (recent.Upper - recent.Lower) / recent.Value * 100
	switch {
	case bandwidth > 20:
		return fmt.Sprintf("Bollinger Bands for %s are wide (bandwidth: %.2f%%), indicating high volatility.", symbol, bandwidth)
	case bandwidth < 10:
		return fmt.Sprintf("Bollinger Bands for %s are narrow (bandwidth: %.2f%%), suggesting a potential breakout may occur soon.", symbol, bandwidth)
	default:
		return fmt.Sprintf("Bollinger Bands for %s show moderate volatility (bandwidth: %.2f%%).", symbol, bandwidth)
	}
}

// indicatorInsight dispatches to the kind-specific insight generator.
func indicatorInsight(symbol string, kind models.IndicatorKind, points []models.IndicatorPoint) string {
	switch kind {
	case models.KindSMA, models.KindEMA:
		return movingAverageInsight(symbol, kind, points)
	case models.KindRSI:
		return rsiInsight(symbol, points)
	case models.KindMACD:
		return macdInsight(symbol, points)
	case models.KindBBANDS:
		return bollingerInsight(symbol, points)
	default:
		return fmt.Sprintf("Analysis available for %s using %s.", symbol, kind)
	}
}
