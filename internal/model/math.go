package model

import (
	"fmt"
	"math"
)

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softmax is shifted by the max margin to stay finite for large inputs.
func softmax(z []float64) []float64 {
	out := make([]float64, len(z))
	if len(z) == 0 {
		return out
	}
	peak := z[0]
	for _, v := range z[1:] {
		if v > peak {
			peak = v
		}
	}
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func checkWidth(features []float64, want int) error {
	if want > 0 && len(features) != want {
		return fmt.Errorf("estimator expects %d features, got %d", want, len(features))
	}
	return nil
}
