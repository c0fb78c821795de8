package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinearRegression(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{10, 12, 14, 16, 18}

	slope, corr := LinearRegression(x, y)
	assert.InDelta(t, 2.0, slope, 0.0001)
	assert.InDelta(t, 1.0, corr, 0.0001)
}

func TestLinearRegressionDegenerate(t *testing.T) {
	slope, corr := LinearRegression([]float64{1}, []float64{2})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, corr)

	// Constant x has no usable spread.
	slope, corr = LinearRegression([]float64{3, 3, 3}, []float64{1, 2, 3})
	assert.Equal(t, 0.0, slope)
	assert.Equal(t, 0.0, corr)

	slope, _ = LinearRegression([]float64{1, 2}, []float64{5})
	assert.Equal(t, 0.0, slope)
}

func TestNormalizedVariance(t *testing.T) {
	values := []float64{1, 1, 1, 1}
	mean := CalculateMean(values)
	assert.InDelta(t, 0.0, CalculateNormalizedVariance(values, mean), 0.0001)

	erratic := []float64{0.1, 5, 0.1, 5}
	mean = CalculateMean(erratic)
	assert.Greater(t, CalculateNormalizedVariance(erratic, mean), 0.5)
}
