package model

import (
	"fmt"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

// Logistic is a fitted logistic regression. A single coefficient row is a
// binary model giving the log-odds of class 1; otherwise one row per class
// feeds a softmax.
type Logistic struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

var _ pipeline.ProbabilisticEstimator = (*Logistic)(nil)

func (m *Logistic) NumFeatures() int { return len(m.Coef[0]) }

func (m *Logistic) NumClasses() int {
	if len(m.Coef) == 1 {
		return 2
	}
	return len(m.Coef)
}

func (m *Logistic) PredictProba(features []float64) ([]float64, error) {
	if err := checkWidth(features, m.NumFeatures()); err != nil {
		return nil, err
	}
	if len(m.Coef) == 1 {
		p := sigmoid(dot(m.Coef[0], features) + m.Intercept[0])
		return []float64{1 - p, p}, nil
	}
	z := make([]float64, len(m.Coef))
	for k, row := range m.Coef {
		z[k] = dot(row, features) + m.Intercept[k]
	}
	return softmax(z), nil
}

func (m *Logistic) Predict(features []float64) (int, error) {
	probs, err := m.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(probs), nil
}

func (m *Logistic) validate() error {
	if len(m.Coef) == 0 || len(m.Coef[0]) == 0 {
		return fmt.Errorf("logistic model has no coefficients")
	}
	if len(m.Intercept) != len(m.Coef) {
		return fmt.Errorf("logistic model has %d coefficient rows but %d intercepts", len(m.Coef), len(m.Intercept))
	}
	for i, row := range m.Coef {
		if len(row) != len(m.Coef[0]) {
			return fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), len(m.Coef[0]))
		}
	}
	return nil
}
