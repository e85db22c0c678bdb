package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogistic(t *testing.T) {
	m, err := NewLogistic([]float64{2, -1}, -0.5, 0, [2]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Width())
	assert.Equal(t, 0.5, m.Threshold)

	p, err := m.PredictProba([]float64{0.25, 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	label, err := m.Predict([]float64{0.25, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, label, "ties go to the positive class")

	label, err = m.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	_, err = m.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrWidthMismatch)
}

func TestNewLogistic_Errors(t *testing.T) {
	_, err := NewLogistic(nil, 0, 0, [2]int{0, 1})
	assert.Error(t, err)
	_, err = NewLogistic([]float64{1}, 0, 1.5, [2]int{0, 1})
	assert.Error(t, err)
}

func TestLogistic_CopiesWeights(t *testing.T) {
	w := []float64{1}
	m, err := NewLogistic(w, 0, 0, [2]int{0, 1})
	require.NoError(t, err)
	w[0] = -100
	label, err := m.Predict([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

const treeJSON = `{
  "kind": "decision_tree",
  "classes": [0, 1],
  "params": {
    "n_features": 3,
    "children_left":  [1, -1, 3, -1, -1],
    "children_right": [2, -1, 4, -1, -1],
    "feature":        [0, -2, 2, -2, -2],
    "threshold":      [0.5, -2, 0.5, -2, -2],
    "value": [[0, 0], [30, 2], [0, 0], [4, 6], [1, 9]]
  }
}`

func TestTree(t *testing.T) {
	m, err := Load(strings.NewReader(treeJSON))
	require.NoError(t, err)
	assert.Equal(t, KindDecisionTree, m.Kind)
	assert.Equal(t, 3, m.Width())

	cases := []struct {
		x     []float64
		label int
		proba float64
	}{
		{[]float64{0.2, 9, 9}, 0, 2.0 / 32},
		{[]float64{0.9, 0, 0.1}, 1, 0.6},
		{[]float64{0.9, 0, 1}, 1, 0.9},
	}
	for _, tc := range cases {
		label, err := m.Predict(tc.x)
		require.NoError(t, err)
		assert.Equal(t, tc.label, label)
		p, ok, err := m.Probability(tc.x)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.InDelta(t, tc.proba, p, 1e-12)
	}

	_, err = m.Predict([]float64{1, 2})
	assert.ErrorIs(t, err, ErrWidthMismatch)
}

func TestLoad_Logistic(t *testing.T) {
	js := `{"kind":"logistic_regression","features":["a","b"],"classes":[0,1],
		"params":{"coef":[1.5,-2],"intercept":0.1}}`
	m, err := Load(strings.NewReader(js))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Features)
	label, err := m.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

func TestLoad_DefaultsClasses(t *testing.T) {
	m, err := Load(strings.NewReader(`{"kind":"logistic_regression","params":{"coef":[1]}}`))
	require.NoError(t, err)
	label, err := m.Predict([]float64{-3})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"bad json":        `{"kind":`,
		"unknown kind":    `{"kind":"svm","params":{}}`,
		"bad params":      `{"kind":"logistic_regression","params":{"coef":"x"}}`,
		"three classes":   `{"kind":"logistic_regression","classes":[0,1,2],"params":{"coef":[1]}}`,
		"feature count":   `{"kind":"logistic_regression","features":["a"],"params":{"coef":[1,2]}}`,
		"empty tree":      `{"kind":"decision_tree","params":{"n_features":1,"children_left":[]}}`,
		"one child":       `{"kind":"decision_tree","params":{"n_features":1,"children_left":[1,-1],"children_right":[-1,-1],"feature":[0,-2],"threshold":[0,0],"value":[[1,0],[1,0]]}}`,
		"backward child":  `{"kind":"decision_tree","params":{"n_features":1,"children_left":[0,-1],"children_right":[1,-1],"feature":[0,-2],"threshold":[0,0],"value":[[1,0],[1,0]]}}`,
		"bad feature":     `{"kind":"decision_tree","params":{"n_features":1,"children_left":[1,-1,-1],"children_right":[2,-1,-1],"feature":[4,-2,-2],"threshold":[0,0,0],"value":[[0,0],[1,0],[0,1]]}}`,
		"leaf class size": `{"kind":"decision_tree","params":{"n_features":1,"children_left":[-1],"children_right":[-1],"feature":[-2],"threshold":[0],"value":[[1]]}}`,
	}
	for name, js := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(js))
			assert.Error(t, err)
		})
	}
}
