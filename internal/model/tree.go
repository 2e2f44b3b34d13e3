package model

import (
	"fmt"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

// Node is one decision tree node. Leaves have Left == -1 and carry Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) isLeaf() bool { return n.Left < 0 }

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// leaf walks from the root. strict selects x < threshold for the left branch
// instead of x <= threshold.
func (t Tree) leaf(x []float64, strict bool) Node {
	i := 0
	for {
		n := t.Nodes[i]
		if n.isLeaf() {
			return n
		}
		v := x[n.Feature]
		if v < n.Threshold || (!strict && v == n.Threshold) {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// validate checks indexes and that every node is reachable at most once from
// the root, which also rules out cycles.
func (t Tree) validate(features, leafWidth int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	visited := make([]bool, len(t.Nodes))
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if i < 0 || i >= len(t.Nodes) {
			return fmt.Errorf("node index %d out of range", i)
		}
		if visited[i] {
			return fmt.Errorf("node %d reached twice", i)
		}
		visited[i] = true

		n := t.Nodes[i]
		if n.isLeaf() {
			if len(n.Value) != leafWidth {
				return fmt.Errorf("leaf %d has %d values, want %d", i, len(n.Value), leafWidth)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= features {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, features)
		}
		stack = append(stack, n.Left, n.Right)
	}
	return nil
}

// Forest is a random forest classifier: each leaf holds per-class counts or
// fractions, normalised per tree and averaged across trees.
type Forest struct {
	Classes  int    `json:"n_classes"`
	Features int    `json:"n_features"`
	Trees    []Tree `json:"trees"`
}

var _ pipeline.ProbabilisticEstimator = (*Forest)(nil)

func (f *Forest) NumFeatures() int { return f.Features }

func (f *Forest) NumClasses() int { return f.Classes }

func (f *Forest) PredictProba(features []float64) ([]float64, error) {
	if err := checkWidth(features, f.Features); err != nil {
		return nil, err
	}
	probs := make([]float64, f.Classes)
	for _, t := range f.Trees {
		leaf := t.leaf(features, false)
		var total float64
		for _, v := range leaf.Value {
			total += v
		}
		if total == 0 {
			continue
		}
		for k, v := range leaf.Value {
			probs[k] += v / total
		}
	}
	for k := range probs {
		probs[k] /= float64(len(f.Trees))
	}
	return probs, nil
}

func (f *Forest) Predict(features []float64) (int, error) {
	probs, err := f.PredictProba(features)
	if err != nil {
		return 0, err
	}
	return argmax(probs), nil
}

func (f *Forest) validate() error {
	if f.Classes < 2 || f.Features < 1 {
		return fmt.Errorf("forest needs n_classes >= 2 and n_features >= 1")
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}
	for i, t := range f.Trees {
		if err := t.validate(f.Features, f.Classes); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}
