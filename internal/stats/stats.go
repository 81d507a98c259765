// Package stats holds the small numeric helpers shared by the delay
// predictor and the anomaly rules.
package stats

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// TrailingMean averages the last window values of an oldest-first series.
// A window below 1 is treated as 1 and a window above len(values) uses
// the whole series.
func TrailingMean(values []float64, window int) float64 {
	if len(values) == 0 {
		return 0
	}
	if window < 1 {
		window = 1
	}
	if window > len(values) {
		window = len(values)
	}
	return Mean(values[len(values)-window:])
}

// Regression is an ordinary least squares fit y = Slope*x + Intercept.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// At projects the fitted line at x.
func (r Regression) At(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// LinearRegression fits xs against ys. It returns false when the inputs
// differ in length, hold fewer than two points, or all xs are equal.
// RSquared is 0 when ys has no variance.
func LinearRegression(xs, ys []float64) (Regression, bool) {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return Regression{}, false
	}

	meanX := Mean(xs)
	meanY := Mean(ys)

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return Regression{}, false
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var ssRes, ssTot float64
	for i := range xs {
		predicted := slope*xs[i] + intercept
		ssRes += (ys[i] - predicted) * (ys[i] - predicted)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
	}

	return Regression{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  clamp(rSquared, 0, 1),
	}, true
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

// Round2 rounds v to two decimal places.
func Round2(v float64) float64 {
	return Round(v, 2)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
