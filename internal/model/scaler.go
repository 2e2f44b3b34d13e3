// Package model implements the artifact types the pipeline runs: feature
// scalers, label encoders and estimators, each decoded from a JSON artifact.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
	ScalerIdentity = "identity"
)

// Scaler is a fitted column transform. FeatureNames is the ordered schema the
// scaler was fit against.
type Scaler struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names_in"`
	Mean         []float64 `json:"mean,omitempty"`
	Scale        []float64 `json:"scale,omitempty"`
	Min          []float64 `json:"min,omitempty"`
}

var _ pipeline.Scaler = (*Scaler)(nil)

func (s *Scaler) Columns() []string { return s.FeatureNames }

// Transform applies the fitted transform. standard: (x-mean)/scale,
// minmax: x*scale+min, identity: copy. A zero scale is treated as 1.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.FeatureNames) {
		return nil, fmt.Errorf("scaler expects %d columns, got %d", len(s.FeatureNames), len(row))
	}
	out := make([]float64, len(row))
	for i, x := range row {
		switch s.Kind {
		case ScalerStandard:
			out[i] = (x - s.Mean[i]) / nonZero(s.Scale[i])
		case ScalerMinMax:
			out[i] = x*s.Scale[i] + s.Min[i]
		default:
			out[i] = x
		}
	}
	return out, nil
}

func (s *Scaler) validate() error {
	n := len(s.FeatureNames)
	if n == 0 {
		return fmt.Errorf("scaler has no feature_names_in")
	}
	seen := make(map[string]struct{}, n)
	for _, name := range s.FeatureNames {
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = struct{}{}
	}
	switch s.Kind {
	case ScalerStandard:
		if len(s.Mean) != n || len(s.Scale) != n {
			return fmt.Errorf("standard scaler needs %d mean and scale values", n)
		}
	case ScalerMinMax:
		if len(s.Min) != n || len(s.Scale) != n {
			return fmt.Errorf("minmax scaler needs %d min and scale values", n)
		}
	case ScalerIdentity:
	default:
		return fmt.Errorf("unknown scaler kind %q", s.Kind)
	}
	return nil
}

// DecodeScaler parses and validates a scaler artifact.
func DecodeScaler(data []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
