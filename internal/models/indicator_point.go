package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// IndicatorKind identifies one of the supported technical indicators.
// The set is closed: adding a kind means extending the engine's dispatch.
type IndicatorKind string

const (
	KindSMA    IndicatorKind = "SMA"
	KindEMA    IndicatorKind = "EMA"
	KindRSI    IndicatorKind = "RSI"
	KindMACD   IndicatorKind = "MACD"
	KindBBANDS IndicatorKind = "BBANDS"
)

// AllKinds lists every supported indicator kind.
func AllKinds() []IndicatorKind {
	return []IndicatorKind{KindSMA, KindEMA, KindRSI, KindMACD, KindBBANDS}
}

// ParseIndicatorKind normalizes a string to an IndicatorKind.
func ParseIndicatorKind(s string) (IndicatorKind, error) {
	switch IndicatorKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindSMA:
		return KindSMA, nil
	case KindEMA:
		return KindEMA, nil
	case KindRSI:
		return KindRSI, nil
	case KindMACD:
		return KindMACD, nil
	case KindBBANDS:
		return KindBBANDS, nil
	}
	return "", fmt.Errorf("unknown indicator kind: %q", s)
}

// IndicatorParams holds indicator parameters keyed by name.
type IndicatorParams map[string]float64

// Canonical serializes the parameter set as JSON with sorted keys, so that
// equivalent parameter sets produce the same uniqueness key.
func (p IndicatorParams) Canonical() string {
	if len(p) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys
	data, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Get returns the parameter value, or def when absent.
func (p IndicatorParams) Get(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// GetInt returns the parameter value truncated to int, or def when absent.
func (p IndicatorParams) GetInt(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(v)
	}
	return def
}

// IndicatorPoint is one computed indicator value at a point in time.
// Uniqueness key: (symbol, date, kind, parameters). The payload fields
// populated depend on the kind:
//
//	SMA/EMA/RSI: Value
//	MACD:        Value (macd line), Signal, Histogram
//	BBANDS:      Value (middle band), Upper, Lower
type IndicatorPoint struct {
	ID         int           `json:"id"`
	Symbol     string        `json:"symbol"`
	Date       time.Time     `json:"date"`
	Kind       IndicatorKind `json:"indicator_kind"`
	Parameters string        `json:"parameters"`
	Value      float64       `json:"value"`
	Signal     float64       `json:"signal,omitempty"`
	Histogram  float64       `json:"histogram,omitempty"`
	Upper      float64       `json:"upper,omitempty"`
	Lower      float64       `json:"lower,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
