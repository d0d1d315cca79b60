package indicator

import (
	"sort"

	"go.uber.org/zap"

	"github.com/finsightlab/market-analysis-service/internal/models"
)

// Default indicator parameters, matching the parameter names accepted by
// Engine.Compute.
const (
	DefaultSMAPeriod    = 20
	DefaultEMAPeriod    = 20
	DefaultRSIPeriod    = 14
	DefaultMACDFast     = 12
	DefaultMACDSlow     = 26
	DefaultMACDSignal   = 9
	DefaultBBandsPeriod = 20
	DefaultBBandsStdDev = 2.0
)

// Engine computes technical indicators over an ordered daily price series.
// All computations are deterministic pure functions of the input series and
// parameters.
type Engine struct {
	log *zap.Logger
}

// NewEngine creates an indicator engine.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Compute calculates the requested indicators for one symbol's price series.
// The input is sorted ascending and deduplicated by date before computation.
// Every requested kind gets an entry in the result; a kind whose computation
// fails (or has no defined points) maps to an empty slice rather than
// aborting the batch.
func (e *Engine) Compute(series []models.PriceBar, kinds []models.IndicatorKind, params models.IndicatorParams) map[models.IndicatorKind][]models.IndicatorPoint {
	if len(kinds) == 0 {
		kinds = models.AllKinds()
	}
	if params == nil {
		params = models.IndicatorParams{}
	}

	bars := normalizeSeries(series)
	results := make(map[models.IndicatorKind][]models.IndicatorPoint, len(kinds))
	for _, kind := range kinds {
		results[kind] = e.computeOne(bars, kind, params)
	}
	return results
}

func (e *Engine) computeOne(bars []models.PriceBar, kind models.IndicatorKind, params models.IndicatorParams) (points []models.IndicatorPoint) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("indicator computation panicked",
				zap.String("kind", string(kind)),
				zap.Any("panic", r))
			points = []models.IndicatorPoint{}
		}
	}()

	if len(bars) == 0 {
		e.log.Warn("empty price series, skipping indicator", zap.String("kind", string(kind)))
		return []models.IndicatorPoint{}
	}

	var err error
	switch kind {
	case models.KindSMA:
		points, err = computeSMA(bars, params.GetInt("sma_period", DefaultSMAPeriod))
	case models.KindEMA:
		points, err = computeEMA(bars, params.GetInt("ema_period", DefaultEMAPeriod))
	case models.KindRSI:
		points, err = computeRSI(bars, params.GetInt("rsi_period", DefaultRSIPeriod))
	case models.KindMACD:
		points, err = computeMACD(bars,
			params.GetInt("macd_fast_period", DefaultMACDFast),
			params.GetInt("macd_slow_period", DefaultMACDSlow),
			params.GetInt("macd_signal_period", DefaultMACDSignal))
	case models.KindBBANDS:
		points, err = computeBollingerBands(bars,
			params.GetInt("bb_period", DefaultBBandsPeriod),
			params.Get("bb_std_dev", DefaultBBandsStdDev))
	default:
		e.log.Error("unknown indicator kind", zap.String("kind", string(kind)))
		return []models.IndicatorPoint{}
	}

	if err != nil {
		e.log.Error("indicator computation failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return []models.IndicatorPoint{}
	}
	return points
}

// StoredParams returns the canonical parameter string an indicator of the
// given kind is stored under when computed with the given request
// parameters. Lookups and computed writes must agree on this string for
// the cache to hit.
func StoredParams(kind models.IndicatorKind, params models.IndicatorParams) string {
	if params == nil {
		params = models.IndicatorParams{}
	}
	switch kind {
	case models.KindSMA:
		return models.IndicatorParams{"period": float64(params.GetInt("sma_period", DefaultSMAPeriod))}.Canonical()
	case models.KindEMA:
		return models.IndicatorParams{"period": float64(params.GetInt("ema_period", DefaultEMAPeriod))}.Canonical()
	case models.KindRSI:
		return models.IndicatorParams{"period": float64(params.GetInt("rsi_period", DefaultRSIPeriod))}.Canonical()
	case models.KindMACD:
		return models.IndicatorParams{
			"fast_period":   float64(params.GetInt("macd_fast_period", DefaultMACDFast)),
			"slow_period":   float64(params.GetInt("macd_slow_period", DefaultMACDSlow)),
			"signal_period": float64(params.GetInt("macd_signal_period", DefaultMACDSignal)),
		}.Canonical()
	case models.KindBBANDS:
		return models.IndicatorParams{
			"period":  float64(params.GetInt("bb_period", DefaultBBandsPeriod)),
			"std_dev": params.Get("bb_std_dev", DefaultBBandsStdDev),
		}.Canonical()
	default:
		return params.Canonical()
	}
}

// normalizeSeries sorts bars ascending by date and drops duplicate dates,
// keeping the first occurrence.
func normalizeSeries(series []models.PriceBar) []models.PriceBar {
	bars := make([]models.PriceBar, len(series))
	copy(bars, series)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	seen := make(map[string]bool, len(bars))
	out := bars[:0]
	for _, b := range bars {
		key := b.DateKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}

func closeSeries(bars []models.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}
	return closes
}
