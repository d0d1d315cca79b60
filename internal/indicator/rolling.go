package indicator

import "math"

// rollingMean returns a slice the same length as values where index i holds
// the arithmetic mean of values[i-period+1..i]. Positions before the window
// has filled are NaN.
func rollingMean(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// rollingStd returns the rolling sample standard deviation (n-1 denominator)
// over the same window as rollingMean. NaN until the window has filled, and
// always NaN for period < 2.
func rollingStd(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 || period < 2 {
			out[i] = math.NaN()
			continue
		}
		window := values[i-period+1 : i+1]
		var mean float64
		for _, v := range window {
			mean += v
		}
		mean /= float64(period)
		var ss float64
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out
}

// ewma returns the exponentially weighted moving average with smoothing
// factor alpha = 2/(period+1), seeded with the first value. The seed choice
// biases early values toward the first observation; downstream consumers
// rely on that convention, so it must not be bias-corrected.
func ewma(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}
