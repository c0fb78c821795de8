package utils

import "math"

// LinearRegression fits y = a + b*x by ordinary least squares and returns
// the slope b together with the Pearson correlation of x and y. Fewer than
// two points, or degenerate x, yield (0, 0).
func LinearRegression(x, y []float64) (slope, correlation float64) {
	if len(x) != len(y) || len(x) < 2 {
		return 0, 0
	}

	n := float64(len(x))
	var sumX, sumY, sumXY, sumXX, sumYY float64

	for i := range x {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumXX += x[i] * x[i]
		sumYY += y[i] * y[i]
	}

	denominator := n*sumXX - sumX*sumX
	if denominator == 0 {
		return 0, 0
	}

	numerator := n*sumXY - sumX*sumY
	slope = numerator / denominator

	denominatorCorr := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denominatorCorr != 0 {
		correlation = numerator / denominatorCorr
	}

	return slope, correlation
}
