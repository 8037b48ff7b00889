package inference

import (
	"fmt"
	"math"
)

// Node is one split or leaf of a regression tree. Leaves have Feature < 0.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// IsLeaf reports whether the node terminates the walk
func (n Node) IsLeaf() bool {
	return n.Feature < 0
}

// Tree is a flat array of nodes rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks the tree: x[feature] <= threshold goes left
func (t Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// Forest is a bagged ensemble of regression trees; its prediction is the mean
// of the tree outputs.
type Forest struct {
	Version   string `json:"version"`
	NFeatures int    `json:"n_features"`
	Trees     []Tree `json:"trees"`
}

// NumFeatures implements Regressor
func (f *Forest) NumFeatures() int {
	return f.NFeatures
}

// Predict implements Regressor
func (f *Forest) Predict(x []float64) (float64, error) {
	if len(x) != f.NFeatures {
		return 0, fmt.Errorf("forest expects %d features, got %d", f.NFeatures, len(x))
	}
	if len(f.Trees) == 0 {
		return 0, fmt.Errorf("forest has no trees")
	}

	var sum float64
	for _, t := range f.Trees {
		sum += t.Predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// Validate checks the structure so Predict cannot index out of range or loop.
// Children must sit after their parent in the node array.
func (f *Forest) Validate() error {
	if f.NFeatures <= 0 {
		return fmt.Errorf("forest declares %d features", f.NFeatures)
	}
	if len(f.Trees) == 0 {
		return fmt.Errorf("forest has no trees")
	}

	for ti, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, n := range t.Nodes {
			if n.IsLeaf() {
				if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
					return fmt.Errorf("tree %d node %d: non-finite leaf value", ti, ni)
				}
				continue
			}
			if n.Feature >= f.NFeatures {
				return fmt.Errorf("tree %d node %d: feature %d out of range", ti, ni, n.Feature)
			}
			if n.Left <= ni || n.Left >= len(t.Nodes) || n.Right <= ni || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: invalid children %d/%d", ti, ni, n.Left, n.Right)
			}
		}
	}
	return nil
}
