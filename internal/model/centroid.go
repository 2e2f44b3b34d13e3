package model

import (
	"fmt"
	"math"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

// Centroid is a nearest-centroid classifier. It reports no probabilities.
type Centroid struct {
	Centroids [][]float64 `json:"centroids"`
}

var _ pipeline.Estimator = (*Centroid)(nil)

func (c *Centroid) NumFeatures() int { return len(c.Centroids[0]) }

func (c *Centroid) NumClasses() int { return len(c.Centroids) }

func (c *Centroid) Predict(features []float64) (int, error) {
	if err := checkWidth(features, c.NumFeatures()); err != nil {
		return 0, err
	}
	best, bestDist := 0, math.Inf(1)
	for k, centre := range c.Centroids {
		var d float64
		for i, x := range features {
			diff := x - centre[i]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = k, d
		}
	}
	return best, nil
}

func (c *Centroid) validate() error {
	if len(c.Centroids) < 2 || len(c.Centroids[0]) == 0 {
		return fmt.Errorf("centroid model needs at least two non-empty centroids")
	}
	for k, centre := range c.Centroids {
		if len(centre) != len(c.Centroids[0]) {
			return fmt.Errorf("centroid %d has %d values, want %d", k, len(centre), len(c.Centroids[0]))
		}
	}
	return nil
}
