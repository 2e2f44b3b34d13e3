package model

import (
	"fmt"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

// BoostedTree is one regression tree of a gradient boosted ensemble. Its leaf
// Value holds a single margin added to Class.
type BoostedTree struct {
	Class int    `json:"class"`
	Nodes []Node `json:"nodes"`
}

// Boosted is a gradient boosted tree classifier. Splits send x < threshold
// left. With two classes all trees contribute to one margin, the log-odds of
// class 1; otherwise each class has its own margin and a softmax is applied.
type Boosted struct {
	Classes    int           `json:"n_classes"`
	Features   int           `json:"n_features"`
	BaseMargin float64       `json:"base_margin"`
	Trees      []BoostedTree `json:"trees"`
}

var _ pipeline.ProbabilisticEstimator = (*Boosted)(nil)

func (b *Boosted) NumFeatures() int { return b.Features }

func (b *Boosted) NumClasses() int { return b.Classes }

func (b *Boosted) margins(features []float64) []float64 {
	n := b.Classes
	if n == 2 {
		n = 1
	}
	m := make([]float64, n)
	for i := range m {
		m[i] = b.BaseMargin
	}
	for _, t := range b.Trees {
		leaf := Tree{Nodes: t.Nodes}.leaf(features, true)
		m[t.Class] += leaf.Value[0]
	}
	return m
}

func (b *Boosted) PredictProba(features []float64) ([]float64, error) {
	if err := checkWidth(features, b.Features); err != nil {
		return nil, err
	}
	m := b.margins(features)
	if b.Classes == 2 {
		p := sigmoid(m[0])
		return []float64{1 - p, p}, nil
	}
	return softmax(m), nil
}

func (b *Boosted) Predict(features []float64) (int, error) {
	probs, err := b.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(probs), nil
}

func (b *Boosted) validate() error {
	if b.Classes < 2 || b.Features < 1 {
		return fmt.Errorf("boosted model needs n_classes >= 2 and n_features >= 1")
	}
	if len(b.Trees) == 0 {
		return fmt.Errorf("boosted model has no trees")
	}
	groups := b.Classes
	if groups == 2 {
		groups = 1
	}
	for i, t := range b.Trees {
		if t.Class < 0 || t.Class >= groups {
			return fmt.Errorf("tree %d targets class %d of %d margins", i, t.Class, groups)
		}
		if err := (Tree{Nodes: t.Nodes}).validate(b.Features, 1); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
