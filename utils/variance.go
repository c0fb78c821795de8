package utils

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// CalculateMean returns the arithmetic mean of numeric values.
func CalculateMean[T Numeric](values []T) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// CalculateVariance returns the population variance around the given mean.
func CalculateVariance[T Numeric](values []T, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	variance := 0.0
	for _, v := range values {
		diff := float64(v) - mean
		variance += diff * diff
	}
	return variance / float64(len(values))
}

// CalculateNormalizedVariance returns the squared coefficient of variation,
// a scale-free consistency measure.
func CalculateNormalizedVariance[T Numeric](values []T, mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	return CalculateVariance(values, mean) / (mean * mean)
}
