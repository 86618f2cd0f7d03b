package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Forest is a random forest exported to JSON: flat node arrays per tree,
// leaves carrying per-class sample counts. Artifacts exported from older
// training runs carry only a class label per leaf; those forests can vote
// but cannot estimate probabilities.
type Forest struct {
	classes  []int
	trees    [][]forestNode
	hasProba bool
}

type forestFile struct {
	Classes []int        `json:"classes"`
	Trees   []forestTree `json:"trees"`
}

type forestTree struct {
	Nodes []forestNode `json:"nodes"`
}

type forestNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Leaf      bool      `json:"leaf"`
	Label     int       `json:"label"`
	Counts    []float64 `json:"counts,omitempty"`
}

// LoadForest reads and validates a forest artifact.
func LoadForest(path string) (*Forest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read forest artifact: %w", err)
	}

	var file forestFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("parse forest artifact: %w", err)
	}
	if len(file.Classes) == 0 {
		return nil, fmt.Errorf("forest artifact has no classes")
	}
	if len(file.Trees) == 0 {
		return nil, fmt.Errorf("forest artifact has no trees")
	}

	f := &Forest{classes: file.Classes, hasProba: true}
	for ti, tree := range file.Trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				if len(node.Counts) == 0 {
					f.hasProba = false
				} else if len(node.Counts) != len(file.Classes) {
					return nil, fmt.Errorf("tree %d node %d: %d counts for %d classes", ti, ni, len(node.Counts), len(file.Classes))
				}
				continue
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
		f.trees = append(f.trees, tree.Nodes)
	}
	return f, nil
}

// Classes returns the class labels in artifact order.
func (f *Forest) Classes() []int { return f.classes }

// NumTrees returns the ensemble size.
func (f *Forest) NumTrees() int { return len(f.trees) }

// HasProba reports whether every leaf carries class counts, which is what
// probability estimates require.
func (f *Forest) HasProba() bool { return f.hasProba }

// PredictProba averages the normalized leaf distributions across trees.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if !f.hasProba {
		return nil, fmt.Errorf("forest artifact carries no probability estimates")
	}
	probs := make([]float64, len(f.classes))
	for _, tree := range f.trees {
		leaf, err := f.descend(tree, x)
		if err != nil {
			return nil, err
		}
		var total float64
		for _, c := range leaf.Counts {
			total += c
		}
		if total == 0 {
			continue
		}
		for i, c := range leaf.Counts {
			probs[i] += c / total
		}
	}
	for i := range probs {
		probs[i] /= float64(len(f.trees))
	}
	return probs, nil
}

// Predict returns the predicted class label: the argmax of PredictProba when
// probabilities are available, otherwise the majority label over trees.
func (f *Forest) Predict(x []float64) (int, error) {
	if f.hasProba {
		probs, err := f.PredictProba(x)
		if err != nil {
			return 0, err
		}
		best := 0
		for i, p := range probs {
			if p > probs[best] {
				best = i
			}
		}
		return f.classes[best], nil
	}

	votes := make(map[int]int)
	for _, tree := range f.trees {
		leaf, err := f.descend(tree, x)
		if err != nil {
			return 0, err
		}
		votes[leaf.Label]++
	}
	best, bestCount := 0, -1
	for label, count := range votes {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best, nil
}

func (f *Forest) descend(tree []forestNode, x []float64) (*forestNode, error) {
	idx := 0
	for steps := 0; steps <= len(tree); steps++ {
		node := &tree[idx]
		if node.Leaf {
			return node, nil
		}
		if node.Feature < 0 || node.Feature >= len(x) {
			return nil, fmt.Errorf("feature index %d out of range for %d features", node.Feature, len(x))
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return nil, fmt.Errorf("tree traversal did not reach a leaf")
}
