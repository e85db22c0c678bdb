package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
)

const KindDecisionTree = "decision_tree"

// leaf marks a node without children in the flat node arrays.
const leaf = -1

// Tree is a fitted decision tree stored as parallel node arrays. Node i
// splits on x[Feature[i]] <= Threshold[i] (left) or > (right); a leaf votes
// with Value[i], one count per class.
type Tree struct {
	NFeatures     int         `json:"n_features"`
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
	classes       []int
}

func decodeTree(env envelope) (Classifier, error) {
	var t Tree
	if err := json.Unmarshal(env.Params, &t); err != nil {
		return nil, err
	}
	t.classes = env.Classes
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tree) validate() error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return errors.New("tree has no nodes")
	}
	if t.NFeatures <= 0 {
		return errors.New("n_features must be positive")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return errors.New("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if (l == leaf) != (r == leaf) {
			return fmt.Errorf("node %d has one child", i)
		}
		if l == leaf {
			if len(t.Value[i]) != len(t.classes) {
				return fmt.Errorf("leaf %d has %d class counts, want %d", i, len(t.Value[i]), len(t.classes))
			}
			continue
		}
		// children always come after their parent, which also rules out cycles
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has out of order children", i)
		}
		if t.Feature[i] < 0 || t.Feature[i] >= t.NFeatures {
			return fmt.Errorf("node %d splits on feature %d", i, t.Feature[i])
		}
	}
	return nil
}

func (t *Tree) Width() int { return t.NFeatures }

func (t *Tree) leafFor(x []float64) []float64 {
	i := 0
	for t.ChildrenLeft[i] != leaf {
		if x[t.Feature[i]] <= t.Threshold[i] {
			i = t.ChildrenLeft[i]
		} else {
			i = t.ChildrenRight[i]
		}
	}
	return t.Value[i]
}

func (t *Tree) Predict(x []float64) (int, error) {
	if err := checkWidth(t, x); err != nil {
		return 0, err
	}
	counts := t.leafFor(x)
	best := 0
	for k, c := range counts {
		if c > counts[best] {
			best = k
		}
	}
	return t.classes[best], nil
}

// PredictProba is the leaf's share of the second class; binary trees only.
func (t *Tree) PredictProba(x []float64) (float64, error) {
	if err := checkWidth(t, x); err != nil {
		return 0, err
	}
	if len(t.classes) != 2 {
		return 0, errors.New("probability needs a binary tree")
	}
	counts := t.leafFor(x)
	total := counts[0] + counts[1]
	if total == 0 {
		return 0, nil
	}
	return counts[1] / total, nil
}
